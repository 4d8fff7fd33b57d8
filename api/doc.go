// Package api provides the HTTP REST API for Dig Maze.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id","seed","live"})
//   - GET /api/sessions - List sessions (?sort=created|accessed|score&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Progress of several sessions (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/snapshot - Current frame (?format=ascii for a text board)
//   - POST /api/sessions/{id}/direction - Steer the player ({"direction":"left"})
//   - POST /api/sessions/{id}/advance - Step a manual session ({"ticks":30,"dt":0.033,"direction":"up"})
//   - POST /api/sessions/{id}/restart - Start over at level 1
//   - GET /api/sessions/{id}/events - Event log (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Validate and save a configuration
//   - GET /api/configs/{name} - Get one configuration
//
// WebSocket:
//   - GET /ws?session={id} - Subscribe to snapshots and audio cues
//
// Errors are returned as JSON with an HTTP status derived from the service
// error: 404 for unknown sessions and configs, 400 for bad directions and
// configs, 409 for stepping a live session by hand.
//
//	{"error": "session not found: ab12"}
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
