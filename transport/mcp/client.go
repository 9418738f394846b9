package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/twenty48/game/engine"
	"github.com/wricardo/twenty48/game/service"
)

// ServerName is the name announced to MCP clients
const ServerName = "2048"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL, version string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide numbered tiles on a 4x4 board. Equal tiles that collide merge into their sum,
which is added to your score. Reach 2048 and keep going until no move is possible.

AVAILABLE TOOLS:
- create_session: Start a new game in its own session
- list_sessions: List sessions (sort by created, last_accessed, score, max_tile, moves)
- get_session: Session details and board
- game_state: Current board, score and best score
- move: One move (up/down/left/right)
- bulk_move: Up to 50 moves in one call, stops when the game is over
- new_game: Start over in the same session (best score is kept)
- move_history: Paginated past moves
- best_score: Best score across all games
- game_instructions: Full rules and strategy notes

NOTE: The 'intent' parameter on move/bulk_move is for you; explain your reasoning there.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func directionEnum() []string {
	dirs := make([]string, len(engine.Directions))
	for i, d := range engine.Directions {
		dirs[i] = string(d)
	}
	return dirs
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with a freshly started game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sort": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"created", "last_accessed", "score", "max_tile", "moves"},
					"description": "Sort key (default created)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum sessions to return",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and best score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction; a new tile spawns if anything moved",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        directionEnum(),
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping when the game is over", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": directionEnum(),
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game in the session; the best score is kept",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "best_score",
		Description: "Get the best score reached across all games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBestScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool call arguments, never nil
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session: " + session.ID + "\n\n" + formatGameState(session.GameState)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	query := url.Values{}
	if sortBy, ok := args["sort"].(string); ok && sortBy != "" {
		query.Set("sort", sortBy)
	}
	if order, ok := args["order"].(string); ok && order != "" {
		query.Set("order", order)
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}

	path := "/api/sessions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, maxTile, status := 0, 0, "playing"
		if s.GameState != nil {
			score, maxTile = s.GameState.Score, s.GameState.MaxTile
			if s.GameState.GameOver {
				status = "game over"
			}
		}
		fmt.Fprintf(&b, "- %s (Score: %d, Max tile: %d, %s, Created: %s)\n",
			s.ID, score, maxTile, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/state")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, _ := args["direction"].(string)

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", path, map[string]string{"direction": direction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/bulk-move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	movesRaw, _ := args["moves"].([]interface{})
	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", path, map[string]interface{}{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID, _ := args["session_id"].(string)
	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/new-game")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page, ok := args["page"].(float64); ok {
		query.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		query.Set("order", order)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleBestScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.BestScoreInfo
	if err := c.apiCall(ctx, "GET", "/api/best-score", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Best score: %d\nHighest live tile: %d\nSessions: %d (%d still playing)",
		info.BestScore, info.HighestTile, info.LiveSessions, info.ActiveGames)
	if info.SessionID != "" {
		result += fmt.Sprintf("\nHeld by session: %s", info.SessionID)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `2048 - Complete Instructions

BOARD:
A 4x4 grid. Empty cells show as ".", tiles show their value. Every tile is a power of two.
A new game starts with two random tiles.

MOVES:
up, down, left, right. Every tile slides as far as it can toward that edge.
When a tile runs into a tile of the same value they merge into one tile of double the value,
and that value is added to your score. A tile produced by a merge does not merge again in the
same move, so [2,2,4,.] moved left becomes [4,4,.,.], not [8,.,.,.].

SPAWNS:
After every move that changed the board, one new tile appears on a random empty cell:
a 2 nine times out of ten, otherwise a 4. A move that changes nothing spawns nothing.

GAME OVER:
The game ends when the board is full and no two neighbouring tiles are equal.
The state reports game_over and possible_moves becomes empty.

SCORING:
score is the sum of all merge results in this game. best_score is the highest score ever
reached and survives new games and restarts.

STRATEGY NOTES:
- Keep your largest tile in a corner and build a descending chain along one edge
- Prefer two or three directions; use the fourth only when forced
- Check possible_moves before a bulk_move; a blocked direction wastes a step but changes nothing
- bulk_move stops early when the game ends and reports why

SESSIONS:
Each session holds one independent game with a short ID. new_game restarts that session's
game. Sessions idle for too long are cleaned up.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		session.LastAccessedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Score: %d | Best: %d | Max tile: %d | Moves: %d\n\n",
		state.Score, state.BestScore, state.MaxTile, state.TotalMoves)

	result.WriteString(state.Board.String())
	result.WriteString("\n")

	if state.LastSpawn != nil {
		fmt.Fprintf(&result, "\nLast spawn: %d at row %d, col %d", state.LastSpawn.Value, state.LastSpawn.Row, state.LastSpawn.Col)
	}

	if state.GameOver {
		result.WriteString("\nGAME OVER: no move can change the board")
	} else if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&result, "\nPossible moves: %s", joinDirections(state.PossibleMoves))
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	switch {
	case result.Ignored:
		fmt.Fprintf(&b, "- Input %q ignored (%s)\n", result.Direction, result.Reason)
	case result.Moved:
		fmt.Fprintf(&b, "✓ Moved %s (+%d)\n", result.Direction, result.ScoreDelta)
	default:
		fmt.Fprintf(&b, "✗ Nothing moved %s\n", result.Direction)
	}

	if result.Spawned != nil {
		fmt.Fprintf(&b, "Spawned %d at row %d, col %d\n", result.Spawned.Value, result.Spawned.Row, result.Spawned.Col)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d moves • Score %d → %d (+%d)\n",
		result.MovesExecuted, result.RequestedMoves, result.StartScore, result.EndScore, result.ScoreDelta)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	status := "✓"
	if !s.Moved {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s %s +%d score=%d max=%d", s.Idx, s.Dir, status, s.ScoreDelta, s.Score, s.MaxTile)
	if s.Spawned != nil {
		line += fmt.Sprintf(" spawn=%d@(%d,%d)", s.Spawned.Value, s.Spawned.Row, s.Spawned.Col)
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) • Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("(no moves yet)")
		return b.String()
	}

	for _, move := range history.Moves {
		status := "✓"
		if !move.Moved {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s +%d [Score: %d]\n",
			move.MoveNumber, move.Action, status, move.ScoreDelta, move.Score)
	}

	return b.String()
}

func joinDirections(dirs []engine.Direction) string {
	parts := make([]string, len(dirs))
	for i, d := range dirs {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}
