package engine

import (
	"math/rand"
	"testing"
)

// corridorGrid returns a 5x7 bordered grid filled with walls except for the
// open cells given.
func corridorGrid(t *testing.T, open ...Position) *Grid {
	t.Helper()
	g := newTestGrid(t)
	for y := 1; y < 6; y++ {
		for x := 1; x < 4; x++ {
			g.Set(Position{X: x, Y: y}, WallCell)
		}
	}
	for _, p := range open {
		g.cells[p.Y*5+p.X] = EmptyCell
	}
	return g
}

func TestAdversaryNeverBacktracksWithAlternative(t *testing.T) {
	from := Position{X: 2, Y: 3}
	north := Position{X: 2, Y: 2}
	east := Position{X: 3, Y: 3}
	g := corridorGrid(t, from, north, east)

	policy := NewAdversaryPolicy(rand.New(rand.NewSource(99)))
	options := policy.Options(g, from)
	if len(options) != 2 || options[0] != DirUp || options[1] != DirRight {
		t.Fatalf("Expected options [up right], got %v", options)
	}

	for i := 0; i < 1000; i++ {
		if got := policy.Choose(g, from, north, true); got != DirRight {
			t.Fatalf("Expected east on evaluation %d, got %s", i, got)
		}
	}
}

func TestAdversaryBacktracksAtDeadEnd(t *testing.T) {
	from := Position{X: 2, Y: 3}
	north := Position{X: 2, Y: 2}
	g := corridorGrid(t, from, north)

	policy := NewAdversaryPolicy(rand.New(rand.NewSource(1)))
	if got := policy.Choose(g, from, north, true); got != DirUp {
		t.Errorf("Expected backtrack up at a dead end, got %s", got)
	}
}

func TestAdversaryWaitsWhenEnclosed(t *testing.T) {
	from := Position{X: 2, Y: 3}
	g := corridorGrid(t, from)

	policy := NewAdversaryPolicy(rand.New(rand.NewSource(1)))
	if got := policy.Choose(g, from, from, false); got != DirNone {
		t.Errorf("Expected no direction when enclosed, got %s", got)
	}
}

func TestAdversaryChoosesAmongForwardOptions(t *testing.T) {
	from := Position{X: 2, Y: 3}
	south := Position{X: 2, Y: 4}
	east := Position{X: 3, Y: 3}
	west := Position{X: 1, Y: 3}
	g := corridorGrid(t, from, south, east, west)

	policy := NewAdversaryPolicy(rand.New(rand.NewSource(5)))
	seen := make(map[Direction]int)
	for i := 0; i < 600; i++ {
		seen[policy.Choose(g, from, south, true)]++
	}

	if seen[DirDown] != 0 {
		t.Errorf("Expected no backtracking, got %d", seen[DirDown])
	}
	if seen[DirLeft] == 0 || seen[DirRight] == 0 {
		t.Errorf("Expected both forward options chosen, got %v", seen)
	}
}

func TestEnemyCanEnter(t *testing.T) {
	tests := []struct {
		cell Cell
		want bool
	}{
		{EmptyCell, true},
		{TunnelCell, true},
		{CollectibleCell(1), true},
		{PlayerCell, true},
		{WallCell, false},
		{BorderCell, false},
		{EnemyCell(2), false},
	}
	for _, tt := range tests {
		t.Run(tt.cell.String(), func(t *testing.T) {
			if got := EnemyCanEnter(tt.cell); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEnemiesStayOutOfWalls(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	walls := make(map[Position]bool)
	for _, p := range e.grid.AllCellsOf(Wall) {
		walls[p] = true
	}

	for i := 0; i < 900; i++ {
		e.Tick(testDT)
		if e.Progress().Phase != PhaseActive {
			break
		}
		for _, enemy := range e.enemies() {
			if walls[enemy.Occupied()] {
				t.Fatalf("Enemy %d entered wall %v", enemy.ID, enemy.Occupied())
			}
		}
	}
}

func TestEnemySpeedFollowsMultiplier(t *testing.T) {
	config := createTestConfig(1)
	e := createTestEngine(t, config)
	if got := e.EnemySpeed(); got != config.EnemySpeed*config.InitialMultiplier {
		t.Errorf("Expected enemy speed %v, got %v", config.EnemySpeed*config.InitialMultiplier, got)
	}
	e.progress.Multiplier = 1
	if got := e.EnemySpeed(); got != config.EnemySpeed {
		t.Errorf("Expected enemy speed %v, got %v", config.EnemySpeed, got)
	}
}

func TestBoxedInPlayerWaits(t *testing.T) {
	e := createOpenEngine(t, createTestConfig(0))
	relocate(e, e.player(), Position{X: 1, Y: 25})
	setCell(e, Position{X: 2, Y: 25}, BorderCell)
	setCell(e, Position{X: 1, Y: 24}, BorderCell)

	e.SetDirection(DirUp)
	e.Tick(testDT)
	player := e.player()
	if player.State != StateIdle {
		t.Errorf("Expected boxed-in player to stay idle, got %s", player.State)
	}
	if player.Wait <= 0 {
		t.Error("Expected boxed-in player to wait before retrying")
	}
}

func TestProgression(t *testing.T) {
	rules := DefaultConfig()

	t.Run("collect until cleared", func(t *testing.T) {
		p := NewProgression(rules)
		for i := 0; i < rules.CollectiblesRequired-1; i++ {
			if p.RecordCollect() {
				t.Fatalf("Expected no clear after %d items", i+1)
			}
		}
		if !p.RecordCollect() {
			t.Fatal("Expected the last item to clear the level")
		}
		if p.Phase != PhaseCleared {
			t.Errorf("Expected cleared, got %s", p.Phase)
		}
		want := rules.CollectiblesRequired*rules.CollectScore + rules.LevelClearBonus
		if p.Score != want {
			t.Errorf("Expected score %d, got %d", want, p.Score)
		}
		if p.RecordCollect() {
			t.Error("Expected collects to be ignored while cleared")
		}
		if p.Remaining() != rules.LevelClearDelay {
			t.Errorf("Expected delay %v, got %v", rules.LevelClearDelay, p.Remaining())
		}

		if tr := p.Advance(rules.LevelClearDelay / 2); tr != TransitionNone {
			t.Errorf("Expected no transition halfway, got %v", tr)
		}
		if tr := p.Advance(rules.LevelClearDelay); tr != TransitionNextLevel {
			t.Errorf("Expected next level, got %v", tr)
		}
		if p.Level != 2 || p.Collected != 0 || p.Phase != PhaseActive {
			t.Errorf("Expected active level 2, got %+v", p)
		}
	})

	t.Run("lose lives", func(t *testing.T) {
		p := NewProgression(rules)
		if phase := p.LoseLife(); phase != PhasePaused {
			t.Errorf("Expected paused, got %s", phase)
		}
		if phase := p.LoseLife(); phase != PhasePaused || p.Lives != rules.InitialLives-1 {
			t.Errorf("Expected a second capture during the freeze to be ignored, got %s with %d lives", phase, p.Lives)
		}
		if tr := p.Advance(rules.FreezeDuration); tr != TransitionResume {
			t.Errorf("Expected resume, got %v", tr)
		}

		p.Lives = 1
		if phase := p.LoseLife(); phase != PhaseOver {
			t.Errorf("Expected over, got %s", phase)
		}
		if p.Lives != 0 {
			t.Errorf("Expected 0 lives, got %d", p.Lives)
		}
		if tr := p.Advance(10); tr != TransitionNone || p.Phase != PhaseOver {
			t.Error("Expected over to be terminal")
		}
	})

	t.Run("score never decreases", func(t *testing.T) {
		p := NewProgression(rules)
		p.AddScore(30)
		p.AddScore(-100)
		if p.Score != 30 {
			t.Errorf("Expected score 30, got %d", p.Score)
		}
	})

	t.Run("reset", func(t *testing.T) {
		p := NewProgression(rules)
		p.AddScore(100)
		p.Level = 4
		p.Multiplier = 2
		p.Reset()
		if p.Score != 0 || p.Level != 1 || p.Multiplier != rules.InitialMultiplier || p.Lives != rules.InitialLives {
			t.Errorf("Expected initial values, got %+v", p)
		}
	})
}
