// Package service provides the business logic layer for the 2048 server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing, including input that is not a direction
//   - Bulk moves with stop reasons
//   - Paginated move history
//   - Best score reporting across sessions
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine wrapped in an
// engine.Controller with no spawn delay, so a move and its spawn complete
// within one call. Sessions share one best-score store.
//
// Usage:
//
//	scores := store.NewMemoryStore()
//	sessionMgr := session.NewManager(scores)
//	gameService := service.NewGameService(sessionMgr, scores)
//
//	info, err := gameService.CreateSession(ctx)
//	if err != nil {
//		log.Fatal().Err(err).Msg("create session")
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left")
package service
