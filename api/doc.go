// Package api serves the game over HTTP.
//
// Endpoints:
//
//	GET    /health
//	POST   /api/sessions                    create a session with a new game
//	GET    /api/sessions?sort&order&limit   list sessions
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/state
//	POST   /api/sessions/{id}/move          {"direction":"left"}
//	POST   /api/sessions/{id}/bulk-move     {"moves":["up","left"]}
//	POST   /api/sessions/{id}/new-game
//	GET    /api/sessions/{id}/history?page&limit&order
//	GET    /api/best-score
//	GET    /ws?session={id}                 live state_update stream
//
// Input that is not a direction is not an error: move answers 200 with
// "ignored": true and leaves the game untouched. Missing sessions map to 404
// and malformed bodies to 400.
//
// Every request gets chi's RequestID, RealIP and Recoverer middleware; the
// /api routes are also bounded by RequestTimeout and access-logged at debug
// level.
package api
