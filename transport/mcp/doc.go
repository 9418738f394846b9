// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// Client is a thin bridge: every tool call is turned into a request against
// the REST API and the JSON answer is rendered as plain text, with the board
// drawn as a 4x4 grid.
//
// Tools: create_session, list_sessions, get_session, game_state, move,
// bulk_move, new_game, move_history, best_score, game_instructions.
//
// The same MCP server can be served over stdio or mounted on the HTTP server
// at POST /mcp:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//	server.ServeStdio(client.GetMCPServer())
package mcp
