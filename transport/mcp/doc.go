// Package mcp exposes Dig Maze to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool calls the REST API, so an MCP
// process can run next to a remote game server. Tool arguments are coerced
// with spf13/cast because agents send numbers both as JSON numbers and as
// strings.
//
// MCP Tools:
//   - create_session: Create a session (config_id, seed, live)
//   - list_sessions: List all active sessions
//   - get_session: Session details with the current board
//   - snapshot: Current board rendered as text
//   - set_direction: Steer the player
//   - advance: Step a manual session, optionally setting a direction first
//   - restart: Start over at level 1
//   - event_log: Paginated event log
//   - list_configs: List available rule sets
//   - game_instructions: Rules and legend
//   - describe_cell: Content of one cell and who may enter it
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
