package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/twenty48/api"
	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/service"
	"github.com/wricardo/twenty48/game/session"
	"github.com/wricardo/twenty48/game/store"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content, got none")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// newLiveClient points a client at a real REST server backed by an in-memory store
func newLiveClient(t *testing.T) (*Client, *session.Manager) {
	t.Helper()

	scores := store.NewMemoryStore()
	manager := session.NewManager(scores)
	manager.SetSeed(3)
	svc := service.NewGameService(manager, scores)

	srv := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, "test"), manager
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL, "1.0.0")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"best_score": 256})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test")

	var response service.BestScoreInfo
	if err := client.apiCall(context.Background(), "GET", "/api/best-score", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response.BestScore != 256 {
		t.Errorf("Expected best score 256, got %d", response.BestScore)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "test")
		if err := client.apiCall(context.Background(), "GET", "/health", nil, nil); err == nil {
			t.Error("Expected error for unreachable server")
		}
	})

	t.Run("error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		}))
		defer server.Close()

		err := NewClient(server.URL, "test").apiCall(context.Background(), "GET", "/x", nil, nil)
		if err == nil || err.Error() != "session not found" {
			t.Errorf("Expected the server's error message, got %v", err)
		}
	})

	t.Run("plain status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL, "test").apiCall(context.Background(), "GET", "/x", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error") {
			t.Errorf("Expected 'API error', got %v", err)
		}
	})
}

func TestClient_SessionFlow(t *testing.T) {
	client, manager := newLiveClient(t)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callRequest("create_session", nil))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Created session: ") {
		t.Fatalf("Expected session ID in result, got: %s", text)
	}

	sessions := manager.List()
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	id := sessions[0].ID

	if err := sessions[0].Controller.Engine().SetState(&engine.GameState{
		GameID: "fixed",
		Board:  engine.BoardFromRows([]int{2, 2, 4, 0}),
	}); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	result, _ = client.handleMove(ctx, callRequest("move", map[string]interface{}{
		"session_id": id,
		"direction":  "left",
		"intent":     "merge the pair",
	}))
	text = resultText(t, result)
	for _, want := range []string{"✓ Moved left (+4)", "Score: 4", "Spawned"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in move output, got: %s", want, text)
		}
	}

	result, _ = client.handleBulkMove(ctx, callRequest("bulk_move", map[string]interface{}{
		"session_id": id,
		"moves":      []interface{}{"right", "left"},
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "Executed 2/2 moves") {
		t.Errorf("Expected bulk summary, got: %s", text)
	}

	result, _ = client.handleMoveHistory(ctx, callRequest("move_history", map[string]interface{}{
		"session_id": id,
		"order":      "asc",
		"limit":      float64(10),
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "Total: 3") || !strings.Contains(text, "1. left ✓ +4") {
		t.Errorf("Unexpected history output: %s", text)
	}

	result, _ = client.handleBestScore(ctx, callRequest("best_score", nil))
	if text = resultText(t, result); !strings.Contains(text, "Best score: ") {
		t.Errorf("Unexpected best score output: %s", text)
	}

	result, _ = client.handleListSessions(ctx, callRequest("list_sessions", map[string]interface{}{"sort": "score"}))
	if text = resultText(t, result); !strings.Contains(text, "Sessions (1)") || !strings.Contains(text, id) {
		t.Errorf("Unexpected list output: %s", text)
	}

	result, _ = client.handleNewGame(ctx, callRequest("new_game", map[string]interface{}{"session_id": id}))
	if text = resultText(t, result); !strings.Contains(text, "New game started") || !strings.Contains(text, "Score: 0") {
		t.Errorf("Unexpected new game output: %s", text)
	}

	result, _ = client.handleGetSession(ctx, callRequest("get_session", map[string]interface{}{"session_id": id}))
	if text = resultText(t, result); !strings.Contains(text, "Session: "+id) {
		t.Errorf("Unexpected session output: %s", text)
	}
}

func TestClient_ToolErrors(t *testing.T) {
	client, _ := newLiveClient(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]interface{}
	}{
		{"game_state without session", client.handleGameState, nil},
		{"game_state unknown session", client.handleGameState, map[string]interface{}{"session_id": "zzzz"}},
		{"move unknown session", client.handleMove, map[string]interface{}{"session_id": "zzzz", "direction": "up"}},
		{"bulk_move without moves", client.handleBulkMove, map[string]interface{}{"session_id": "zzzz"}},
		{"new_game unknown session", client.handleNewGame, map[string]interface{}{"session_id": "zzzz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(ctx, callRequest("x", tt.args))
			if err != nil {
				t.Fatalf("Tool errors are reported in the result, got %v", err)
			}
			if !result.IsError {
				t.Errorf("Expected an error result, got: %s", resultText(t, result))
			}
		})
	}
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		Board: engine.BoardFromRows(
			[]int{2, 0, 0, 128},
			[]int{0, 0, 0, 0},
			[]int{0, 4, 0, 0},
			[]int{0, 0, 0, 16},
		),
		Score:         300,
		BestScore:     1200,
		MaxTile:       128,
		TotalMoves:    42,
		PossibleMoves: []engine.Direction{engine.Up, engine.Left},
	}

	result := formatGameState(state)

	expectedFields := []string{
		"Score: 300 | Best: 1200 | Max tile: 128 | Moves: 42",
		"  2   .   . 128",
		"Possible moves: up,left",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := &engine.GameState{GameOver: true}

	result := formatGameState(state)

	if !strings.Contains(result, "GAME OVER") {
		t.Errorf("Expected 'GAME OVER' in result, got: %s", result)
	}
	if strings.Contains(result, "Possible moves") {
		t.Errorf("A finished game lists no moves, got: %s", result)
	}

	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected nil output: %s", got)
	}
}

func TestFormatMoveResult(t *testing.T) {
	tests := []struct {
		name   string
		result *service.MoveResult
		want   string
	}{
		{"moved", &service.MoveResult{Direction: "up", Moved: true, ScoreDelta: 8, GameState: &engine.GameState{}}, "✓ Moved up (+8)"},
		{"blocked", &service.MoveResult{Direction: "left", GameState: &engine.GameState{}}, "✗ Nothing moved left"},
		{"ignored", &service.MoveResult{Direction: "Enter", Ignored: true, Reason: engine.IgnoredNotADirection, GameState: &engine.GameState{}}, `Input "Enter" ignored (not_a_direction)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMoveResult(tt.result); !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in output, got: %s", tt.want, got)
			}
		})
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080", "test")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{"BOARD:", "MOVES:", "SPAWNS:", "GAME OVER:", "SCORING:", "[4,4,.,.]"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
