// Package service provides the business logic layer for Dig Maze.
//
// The service package implements:
//   - Multi-session game management
//   - Manual stepping and the live server clock
//   - Direction input parsing and validation
//   - Per-session event logs with localized messages
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns one engine, which is not safe for
// concurrent use, so every engine call happens under the session lock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionOptions{ConfigName: "easy"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.SetDirection(ctx, info.ID, "up")
//	result, err := gameService.Advance(ctx, info.ID, 30, 0)
//
// Live Sessions:
//
// Sessions created with Live set are not stepped through Advance. RunClock
// ticks them on a wall-clock interval and hands every update to a callback,
// which the server uses to broadcast snapshots over WebSocket.
package service
