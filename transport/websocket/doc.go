// Package websocket pushes live game snapshots to browser renderers.
//
// A single Hub owns every connection. Clients subscribe to one session with
// the ?session= query parameter and receive a JSON Message for each change
// to that session's game:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//
// The hub is fed by the session manager:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	manager.OnStateChange(hub.BroadcastState)
//
// Broadcasts never block the caller. When the outbound queue is full the
// update is dropped, and a client that cannot keep up is disconnected.
// Clients are read-only; moves go through the REST or MCP surfaces.
package websocket
