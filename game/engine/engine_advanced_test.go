package engine

import (
	"math/rand"
	"reflect"
	"testing"
)

// playScript drives an engine with a pseudo-random input script and
// restarts it whenever the game ends.
func playScript(t *testing.T, e *GameEngine, inputSeed int64, ticks int, check func(tick int)) {
	t.Helper()
	inputs := rand.New(rand.NewSource(inputSeed))
	dirs := []Direction{DirNone, DirUp, DirRight, DirDown, DirLeft}

	for i := 0; i < ticks; i++ {
		if i%12 == 0 {
			e.SetDirection(dirs[inputs.Intn(len(dirs))])
		}
		e.Tick(testDT)
		if check != nil {
			check(i)
		}
		if e.Progress().Phase == PhaseOver {
			e.Restart()
		}
	}
}

func TestInvariantsHoldDuringPlay(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		config := createTestConfig(4)
		config.Seed = &seed
		config.CollectiblesRequired = 4
		config.InitialLives = 2
		e := createTestEngine(t, config)

		lastScore := 0
		playScript(t, e, seed*31, 6000, func(tick int) {
			if err := e.CheckInvariants(); err != nil {
				t.Fatalf("seed %d tick %d: %v", seed, tick, err)
			}
			progress := e.Progress()
			if progress.Score < lastScore {
				t.Fatalf("seed %d tick %d: score went from %d to %d", seed, tick, lastScore, progress.Score)
			}
			lastScore = progress.Score
			if progress.Phase == PhaseOver {
				// playScript restarts the game, which resets the score.
				lastScore = 0
			}
			if e.slowTimer > config.SlowdownDuration {
				t.Fatalf("seed %d tick %d: slowdown window %v exceeds %v", seed, tick, e.slowTimer, config.SlowdownDuration)
			}
		})
	}
}

func TestSameSeedSameGame(t *testing.T) {
	newGame := func() *GameEngine {
		return createTestEngine(t, createTestConfig(3))
	}
	a, b := newGame(), newGame()

	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatal("Expected identical initial snapshots")
	}

	var snapsA, snapsB []*Snapshot
	playScript(t, a, 11, 900, func(int) { snapsA = append(snapsA, a.Snapshot()) })
	playScript(t, b, 11, 900, func(int) { snapsB = append(snapsB, b.Snapshot()) })

	for i := range snapsA {
		if !reflect.DeepEqual(snapsA[i], snapsB[i]) {
			t.Fatalf("Expected identical snapshots at tick %d", i)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := createTestEngine(t, createTestConfig(3))
	config := createTestConfig(3)
	other := int64(8)
	config.Seed = &other
	b := createTestEngine(t, config)

	if reflect.DeepEqual(a.Maze().Walls, b.Maze().Walls) {
		t.Error("Expected different seeds to produce different mazes")
	}
	if b.Seed() != 8 {
		t.Errorf("Expected seed 8, got %d", b.Seed())
	}
}

func TestRestartProducesNewMaze(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	before := e.Maze().Walls
	e.Restart()
	if reflect.DeepEqual(before, e.Maze().Walls) {
		t.Error("Expected restart to continue the random sequence into a new maze")
	}
}

func TestLevelMazeIsPerfect(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	stats := AnalyzeMaze(e.Maze())
	if !stats.Connected() || !stats.Perfect() {
		t.Errorf("Expected a connected perfect maze, got %+v", stats)
	}

	// Entrances join the top lane, the exit joins the bottom lane.
	for _, entrance := range e.Maze().Entrances {
		below := Position{X: entrance.X + 1, Y: mazeTopOffset}
		if c, _ := e.grid.Get(below); c.Kind == Wall {
			t.Errorf("Expected entrance under column %d to be open", below.X)
		}
	}
	exit := Position{X: e.Maze().Exit.X + 1, Y: e.bottomLaneRow() - 1}
	if c, _ := e.grid.Get(exit); c.Kind == Wall {
		t.Errorf("Expected exit at %v to be open", exit)
	}
}

func TestCollectiblesFallBackToWalls(t *testing.T) {
	config := createTestConfig(0)
	config.Width = 5
	config.Height = 7
	config.ViewportWidth = 50
	config.ViewportHeight = 70
	config.CollectiblesRequired = 4
	e := createTestEngine(t, config)

	// A 3x3 maze opens only its middle column, so some items land on walls.
	if n := e.grid.CountOf(Collectible); n != 4 {
		t.Errorf("Expected 4 collectibles, got %d", n)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state, got %v", err)
	}

	var pocket *CollectibleItem
	for _, item := range e.collectibles {
		if item.Under == TunnelCell {
			pocket = item
			break
		}
	}
	if pocket == nil {
		t.Fatal("Expected an item set into a wall")
	}
	e.collect(pocket)
	if c, _ := e.grid.Get(pocket.Cell); c != TunnelCell {
		t.Errorf("Expected a tunnel where the item was, got %v", c)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state after collecting, got %v", err)
	}
}

func TestHelpers(t *testing.T) {
	if d := ManhattanDistance(Position{X: 1, Y: 1}, Position{X: 4, Y: 5}); d != 7 {
		t.Errorf("Expected distance 7, got %d", d)
	}

	e := createTestEngine(t, createTestConfig(3))
	snap := e.Snapshot()
	if n := CountCellKind(snap.Cells, Enemy); n != 3 {
		t.Errorf("Expected 3 enemy cells, got %d", n)
	}
	if GlyphFor(TunnelCell) != GlyphTunnel || GlyphFor(EmptyCell) != GlyphEmpty {
		t.Error("Expected glyphs for tunnel and empty cells")
	}
}
