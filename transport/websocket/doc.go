// Package websocket provides WebSocket transport for Dig Maze.
//
// A central Hub groups connections by session ID. The server clock hands
// every live-session update to Hub.Publish, which fans it out as JSON
// messages to the clients of that session:
//
//	{"type":"audio","session_id":"ab12","event":"dig","data":{...}}
//	{"type":"snapshot","session_id":"ab12","snapshot":{...}}
//
// Audio messages carry the game events a client maps to sound effects; the
// snapshot follows them so a renderer can draw the frame the sounds belong
// to. Clients steer the player by sending
//
//	{"type":"input","direction":"left"}
//
// which the hub passes to its InputHandler. Rejected input is answered with
// a {"type":"error"} message to that client only.
//
// Usage:
//
//	hub := websocket.NewHub(func(ctx context.Context, id, dir string) error {
//		_, err := gameService.SetDirection(ctx, id, dir)
//		return err
//	})
//	go hub.Run(ctx)
//
// Concurrency:
//
// The hub's event loop owns registration and broadcasting. Broadcasts are
// queued without blocking; when the queue is full the message is dropped
// so the game clock never waits on slow clients.
package websocket
