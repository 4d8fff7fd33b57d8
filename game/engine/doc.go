// Package engine provides the deterministic grid simulation behind Dig Maze.
//
// The engine package implements:
//   - Coordinate mapping between grid cells and world positions (Mapper)
//   - Randomized depth-first maze generation (GenerateMaze)
//   - The occupancy grid, the single source of truth for what is where (Grid)
//   - The per-entity movement state machine: idle, intending, in flight
//   - The adversary decision policy (AdversaryPolicy)
//   - Dig, collect and capture resolution
//   - Score, lives and level progression (Progression)
//
// Core Types:
//
// The Engine interface is implemented by GameEngine. A host calls Tick with
// the elapsed time once per frame and SetDirection whenever input changes.
// Renderers read Snapshot values, which are deep copies, and audio
// collaborators consume the Events listed in each TickResult.
//
// Usage:
//
//	config := engine.DefaultConfig()
//	seed := int64(42)
//	config.Seed = &seed
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.SetDirection(engine.DirUp)
//	result := gameEngine.Tick(1.0 / 30)
//	for _, ev := range result.Events {
//		fmt.Println(ev.Type)
//	}
//	snapshot := gameEngine.Snapshot()
//
// Board Layout:
//
// The outermost ring of cells is permanent border. Row 1 is an open top
// lane where adversaries spawn, the second-to-last row is an open bottom
// lane where the player spawns, and the maze fills the rows in between.
// Entrance lanes join the top lane to the maze and an exit lane joins the
// maze to the bottom lane.
//
// Concurrency:
//
// A GameEngine is single-threaded. Callers that share one between
// goroutines must serialize every call.
package engine
