package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/service"
	"github.com/wricardo/twenty48/game/session"
	"github.com/wricardo/twenty48/game/store"
	ws "github.com/wricardo/twenty48/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc  func(ctx context.Context) (*service.SessionInfo, error)
	GetSessionFunc     func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc   func(ctx context.Context, opts service.ListOptions) ([]*service.SessionInfo, error)
	DeleteSessionFunc  func(ctx context.Context, sessionID string) error
	MoveFunc           func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error)
	BulkMoveFunc       func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error)
	NewGameFunc        func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	GetBestScoreFunc   func(ctx context.Context) (*service.BestScoreInfo, error)
}

func (m *MockGameService) CreateSession(ctx context.Context) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx)
	}
	return &service.SessionInfo{ID: "test-session", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context, opts service.ListOptions) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, opts)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) NewGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.NewGameFunc != nil {
		return m.NewGameFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}, Page: opts.Page, PageSize: opts.Limit}, nil
}

func (m *MockGameService) GetBestScore(ctx context.Context) (*service.BestScoreInfo, error) {
	if m.GetBestScoreFunc != nil {
		return m.GetBestScoreFunc(ctx)
	}
	return &service.BestScoreInfo{Key: engine.BestScoreKey}, nil
}

func notFound(id string) error {
	return fmt.Errorf("session %s: %w", id, session.ErrSessionNotFound)
}

func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %q)", err, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockGameService{})
	w := httptest.NewRecorder()

	server.ServeHTTP(w, makeRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %q", resp["status"])
	}
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "Create session",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context) (*service.SessionInfo, error) {
					return &service.SessionInfo{
						ID:        "ab12",
						CreatedAt: time.Now(),
						GameState: &engine.GameState{Board: engine.BoardFromRows([]int{2, 0, 0, 2})},
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
				if resp.GameState == nil || resp.GameState.Board.CountTiles() != 2 {
					t.Error("Expected the new game's board in the response")
				}
			},
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	var got service.ListOptions
	mock := &MockGameService{
		ListSessionsFunc: func(ctx context.Context, opts service.ListOptions) ([]*service.SessionInfo, error) {
			got = opts
			return []*service.SessionInfo{{ID: "s1"}, {ID: "s2"}}, nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions?sort=score&order=asc&limit=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got.SortBy != "score" || got.Order != "asc" || got.Limit != 2 {
		t.Errorf("Query not forwarded: %+v", got)
	}

	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["count"].(float64) != 2 {
		t.Errorf("Expected count 2, got %v", resp["count"])
	}

	// A bad limit is ignored rather than rejected
	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions?limit=abc", nil))
	if w.Code != http.StatusOK || got.Limit != 0 {
		t.Errorf("Expected status 200 and no limit, got %d / %d", w.Code, got.Limit)
	}
}

func TestGetSession(t *testing.T) {
	mock := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, notFound(sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
	}
	server := setupTestServer(mock)

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/api/sessions/ab12", http.StatusOK},
		{"/api/sessions/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
		if w.Code != tt.expectedStatus {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.expectedStatus, w.Code)
		}
	}
}

func TestDeleteSession(t *testing.T) {
	deleted := ""
	mock := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return session.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "ab12" {
		t.Errorf("Expected ab12 to be deleted, got %q", deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/sessions/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		moveErr        error
		expectedStatus int
	}{
		{"valid direction", map[string]string{"direction": "left"}, nil, http.StatusOK},
		{"malformed body", "{not json", nil, http.StatusBadRequest},
		{"unknown session", map[string]string{"direction": "up"}, session.ErrSessionNotFound, http.StatusNotFound},
		{"internal failure", map[string]string{"direction": "up"}, fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDirection string
			mock := &MockGameService{
				MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					gotDirection = direction
					if tt.moveErr != nil {
						return nil, tt.moveErr
					}
					return &service.MoveResult{Success: true, Direction: direction, Moved: true, GameState: &engine.GameState{}}, nil
				},
			}
			server := setupTestServer(mock)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/move", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusOK && gotDirection != "left" {
				t.Errorf("Expected direction left, got %q", gotDirection)
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	var got []string
	mock := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string) (*service.BulkMoveResult, error) {
			got = moves
			return &service.BulkMoveResult{
				MovesExecuted:  2,
				RequestedMoves: len(moves),
				Success:        true,
				GameState:      &engine.GameState{},
			}, nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-move", map[string][]string{"moves": {"up", "left"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(got) != 2 || got[0] != "up" || got[1] != "left" {
		t.Errorf("Moves not forwarded: %v", got)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-move", map[string][]string{"moves": {}}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty moves, got %d", w.Code)
	}
}

func TestNewGame(t *testing.T) {
	mock := &MockGameService{
		NewGameFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return &engine.GameState{GameID: "fresh", BestScore: 64}, nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/new-game", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string           `json:"message"`
		State   engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State.GameID != "fresh" || resp.State.BestScore != 64 {
		t.Errorf("Unexpected state: %+v", resp.State)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query    string
		expected service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=x&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		var got service.HistoryOptions
		mock := &MockGameService{
			GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
				got = opts
				return &service.HistoryResponse{}, nil
			},
		}
		server := setupTestServer(mock)

		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))

		if w.Code != http.StatusOK {
			t.Errorf("%q: expected status 200, got %d", tt.query, w.Code)
		}
		if got != tt.expected {
			t.Errorf("%q: expected %+v, got %+v", tt.query, tt.expected, got)
		}
	}
}

func TestBestScore(t *testing.T) {
	mock := &MockGameService{
		GetBestScoreFunc: func(ctx context.Context) (*service.BestScoreInfo, error) {
			return &service.BestScoreInfo{BestScore: 2048, Key: engine.BestScoreKey}, nil
		},
	}
	server := setupTestServer(mock)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/best-score", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.BestScoreInfo
	parseResponse(t, w, &resp)
	if resp.BestScore != 2048 || resp.Key != "bestScore" {
		t.Errorf("Unexpected best score: %+v", resp)
	}
}

func TestUnknownRoute(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/nowhere", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if !strings.Contains(resp["error"], "/api/nowhere") {
		t.Errorf("Expected path in error, got %q", resp["error"])
	}
}

// newLiveServer wires the real session manager, service and hub
func newLiveServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()

	scores := store.NewMemoryStore()
	manager := session.NewManager(scores)
	manager.SetSeed(7)

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	manager.OnStateChange(hub.BroadcastState)

	svc := service.NewGameService(manager, scores)
	srv := httptest.NewServer(NewServer(svc, hub))
	t.Cleanup(srv.Close)

	return srv, manager
}

func postJSON(t *testing.T, url string, body interface{}, target interface{}) int {
	t.Helper()

	data, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestLiveGameFlow(t *testing.T) {
	srv, manager := newLiveServer(t)

	var info service.SessionInfo
	if code := postJSON(t, srv.URL+"/api/sessions", nil, &info); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}
	if info.GameState.Board.CountTiles() != engine.InitialTiles {
		t.Fatalf("Expected %d starting tiles, got %d", engine.InitialTiles, info.GameState.Board.CountTiles())
	}

	sess, err := manager.Get(info.ID)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if err := sess.Controller.Engine().SetState(&engine.GameState{
		GameID: "fixed",
		Board:  engine.BoardFromRows([]int{2, 2, 0, 0}),
	}); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	var move service.MoveResult
	if code := postJSON(t, srv.URL+"/api/sessions/"+info.ID+"/move", map[string]string{"direction": "ArrowLeft"}, &move); code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if !move.Moved || move.ScoreDelta != 4 || move.GameState.Score != 4 {
		t.Errorf("Unexpected move result: %+v", move)
	}
	if move.GameState.Board.CountTiles() != 2 {
		t.Errorf("Expected merge plus spawn to leave 2 tiles, got %d", move.GameState.Board.CountTiles())
	}

	var ignored service.MoveResult
	if code := postJSON(t, srv.URL+"/api/sessions/"+info.ID+"/move", map[string]string{"direction": "Enter"}, &ignored); code != http.StatusOK {
		t.Fatalf("Expected 200 for an ignored key, got %d", code)
	}
	if !ignored.Ignored || ignored.Reason != engine.IgnoredNotADirection {
		t.Errorf("Expected ignored input, got %+v", ignored)
	}
	if ignored.GameState.Score != 4 {
		t.Errorf("Ignored input must not change the score, got %d", ignored.GameState.Score)
	}

	resp, err := http.Get(srv.URL + "/api/best-score")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var best service.BestScoreInfo
	if err := json.NewDecoder(resp.Body).Decode(&best); err != nil {
		t.Fatal(err)
	}
	if best.BestScore != 4 {
		t.Errorf("Expected best score 4, got %d", best.BestScore)
	}

	if code := postJSON(t, srv.URL+"/api/sessions/zzzz/move", map[string]string{"direction": "up"}, nil); code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", code)
	}
}

func TestWebSocket(t *testing.T) {
	srv, manager := newLiveServer(t)

	// Letters in the ID so the upper-case dial really differs
	sess, err := manager.Create("b7ad")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	info := service.SessionInfo{ID: sess.ID}

	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	if _, resp, err := websocket.DefaultDialer.Dial(wsBase, nil); err == nil {
		t.Error("Expected dial without session to fail")
	} else if resp != nil && resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 without session, got %d", resp.StatusCode)
	}

	if _, resp, err := websocket.DefaultDialer.Dial(wsBase+"?session=nope", nil); err == nil {
		t.Error("Expected dial with unknown session to fail")
	} else if resp != nil && resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", resp.StatusCode)
	}

	for _, subscribeAs := range []string{info.ID, strings.ToUpper(info.ID)} {
		t.Run("subscribe as "+subscribeAs, func(t *testing.T) {
			conn, _, err := websocket.DefaultDialer.Dial(wsBase+"?session="+subscribeAs, nil)
			if err != nil {
				t.Fatalf("Failed to connect: %v", err)
			}
			defer conn.Close()

			readMessage := func() ws.Message {
				t.Helper()
				conn.SetReadDeadline(time.Now().Add(2 * time.Second))
				var msg ws.Message
				if err := conn.ReadJSON(&msg); err != nil {
					t.Fatalf("read: %v", err)
				}
				return msg
			}

			// Snapshot on connect
			first := readMessage()
			if first.Event != ws.EventStateUpdate || first.GameState == nil {
				t.Fatalf("Expected initial state_update, got %+v", first)
			}
			if first.SessionID != info.ID {
				t.Errorf("Expected snapshot for %s, got %s", info.ID, first.SessionID)
			}

			postJSON(t, srv.URL+"/api/sessions/"+subscribeAs+"/new-game", nil, nil)

			update := readMessage()
			if update.SessionID != info.ID || update.GameState == nil {
				t.Fatalf("Expected state_update for %s, got %+v", info.ID, update)
			}
			if update.GameState.Score != 0 || update.GameState.Board.CountTiles() != engine.InitialTiles {
				t.Errorf("Expected a fresh game, got %+v", update.GameState)
			}
		})
	}
}
