// Package config provides configuration management for Dig Maze.
//
// Game configurations live in a directory as JSON or YAML files. The file
// name without extension is the config id used when creating sessions.
// Each file holds an engine.Config: board size and viewport, entity speeds,
// collision radii, scoring values and phase durations.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	easy, err := manager.LoadConfig("easy")
//	configs, err := manager.ListConfigs()
//
// The default configuration is classic when present, otherwise the first
// listed file, otherwise engine.DefaultConfig. Loaded configs are cached and
// shared between sessions, so callers must Clone before modifying one.
package config
