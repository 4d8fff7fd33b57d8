package engine

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const testDT = 1.0 / 30.0

func createTestConfig(enemies int) *Config {
	config := DefaultConfig()
	seed := int64(7)
	config.Seed = &seed
	config.EnemyCount = enemies
	return config
}

func createTestEngine(t *testing.T, config *Config) *GameEngine {
	t.Helper()
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

// createOpenEngine builds an engine and clears the whole interior so tests
// can lay out exactly the cells they need.
func createOpenEngine(t *testing.T, config *Config) *GameEngine {
	t.Helper()
	e := createTestEngine(t, config)
	for i, c := range e.grid.cells {
		switch c.Kind {
		case Wall, Tunnel, Collectible:
			e.grid.cells[i] = EmptyCell
		}
	}
	for _, ent := range e.entities {
		ent.Under = EmptyCell
	}
	e.collectibles = nil
	return e
}

func setCell(e *GameEngine, p Position, c Cell) {
	e.grid.cells[p.Y*e.config.Width+p.X] = c
}

// relocate moves an idle entity, and its spawn, to p.
func relocate(e *GameEngine, ent *Entity, p Position) {
	setCell(e, ent.Cell, ent.Under)
	ent.Cell, ent.Spawn, ent.Target, ent.Last = p, p, p, p
	ent.HasLast = false
	ent.Pos = e.mapper.ToWorld(p)
	ent.Under = EmptyCell
	setCell(e, p, ent.Tag())
}

// boxInBeside puts the first adversary right of the player's spawn with
// its only way out leading back to the player.
func boxInBeside(e *GameEngine) {
	relocate(e, e.enemies()[0], Position{X: 7, Y: 25})
	setCell(e, Position{X: 8, Y: 25}, WallCell)
	setCell(e, Position{X: 7, Y: 24}, WallCell)
}

func runTicks(e *GameEngine, n int) []Event {
	var events []Event
	for i := 0; i < n; i++ {
		events = append(events, e.Tick(testDT).Events...)
	}
	return events
}

func countEvents(events []Event, t EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig(3)
	e := createTestEngine(t, config)

	progress := e.Progress()
	if progress.Phase != PhaseActive {
		t.Errorf("Expected phase active, got %s", progress.Phase)
	}
	if progress.Lives != config.InitialLives {
		t.Errorf("Expected %d lives, got %d", config.InitialLives, progress.Lives)
	}
	if progress.Level != 1 || progress.Score != 0 {
		t.Errorf("Expected level 1 with score 0, got level %d score %d", progress.Level, progress.Score)
	}
	if progress.Multiplier != config.InitialMultiplier {
		t.Errorf("Expected multiplier %v, got %v", config.InitialMultiplier, progress.Multiplier)
	}

	if got := e.player().Cell; got != (Position{X: 6, Y: 25}) {
		t.Errorf("Expected player spawn (6,25), got %v", got)
	}
	for _, enemy := range e.enemies() {
		if enemy.Cell.Y != topLaneRow {
			t.Errorf("Expected enemy %d on the top lane, got %v", enemy.ID, enemy.Cell)
		}
	}

	if n := e.grid.CountOf(Collectible); n != config.CollectiblesRequired {
		t.Errorf("Expected %d collectibles on the grid, got %d", config.CollectiblesRequired, n)
	}
	if n := e.grid.CountOf(BorderWall); n != 2*config.Width+2*(config.Height-2) {
		t.Errorf("Expected border ring, got %d border cells", n)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent initial state, got %v", err)
	}

	first := e.Tick(testDT)
	if countEvents(first.Events, EventGameStart) != 1 {
		t.Errorf("Expected game_start on the first tick, got %v", first.Events)
	}
	if countEvents(e.Tick(testDT).Events, EventGameStart) != 0 {
		t.Error("Expected game_start only once")
	}
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	config := createTestConfig(3)
	config.Width = 2
	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for width 2")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	if e.Config().Name != "classic" {
		t.Errorf("Expected classic config, got %s", e.Config().Name)
	}
}

func TestPossibleMovesAtSpawn(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	moves := e.PossibleMoves()
	want := []Direction{DirUp, DirRight, DirLeft}
	if len(moves) != len(want) {
		t.Fatalf("Expected moves %v, got %v", want, moves)
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Errorf("Expected moves %v, got %v", want, moves)
		}
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	snap := e.Snapshot()

	if snap.Width != 13 || snap.Height != 27 || len(snap.Cells) != 27 {
		t.Fatalf("Expected 13x27 snapshot, got %dx%d", snap.Width, snap.Height)
	}
	if c, ok := snap.CellAt(Position{X: 6, Y: 25}); !ok || c != PlayerCell {
		t.Errorf("Expected player in snapshot, got %v", c)
	}
	if _, ok := snap.CellAt(Position{X: 13, Y: 0}); ok {
		t.Error("Expected out of range CellAt to fail")
	}

	snap.Cells[25][6] = EmptyCell
	snap.Enemies[0].Cell = Position{}
	if c, _ := e.grid.Get(Position{X: 6, Y: 25}); c != PlayerCell {
		t.Error("Expected snapshot mutation not to reach the engine")
	}
	if e.enemies()[0].Cell == (Position{}) {
		t.Error("Expected enemy views to be copies")
	}
}

func TestRenderASCII(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	rows := RenderASCII(e.Snapshot())

	if len(rows) != 27 {
		t.Fatalf("Expected 27 rows, got %d", len(rows))
	}
	if rows[0] != strings.Repeat("=", 13) {
		t.Errorf("Expected border top row, got %q", rows[0])
	}
	if rows[25][6] != '@' {
		t.Errorf("Expected player glyph at (6,25), got %q", rows[25])
	}
	if n := strings.Count(rows[1], "E"); n != 3 {
		t.Errorf("Expected 3 enemies on the top lane, got %d in %q", n, rows[1])
	}
}

// A player walking into a column of walls digs each one in turn.
func TestDigColumn(t *testing.T) {
	e := createOpenEngine(t, createTestConfig(0))
	player := e.player()
	if player.Cell != (Position{X: 6, Y: 25}) {
		t.Fatalf("Expected player at (6,25), got %v", player.Cell)
	}
	for y := 20; y <= 24; y++ {
		setCell(e, Position{X: 6, Y: y}, WallCell)
	}

	e.SetDirection(DirUp)
	var digs []Event
	for i := 0; i < 600; i++ {
		result := e.Tick(testDT)
		for _, ev := range result.Events {
			if ev.Type != EventDig {
				continue
			}
			digs = append(digs, ev)
			if !e.Slowed() {
				t.Errorf("Expected slowdown active after dig at %v", ev.Cell)
			}
			if e.slowTimer != e.config.SlowdownDuration {
				t.Errorf("Expected slowdown window restarted to %v, got %v", e.config.SlowdownDuration, e.slowTimer)
			}
			if got := e.PlayerSpeed(); got != e.config.PlayerSpeed*e.config.SlowdownFactor {
				t.Errorf("Expected halved speed %v, got %v", e.config.PlayerSpeed*e.config.SlowdownFactor, got)
			}
		}
		if err := e.CheckInvariants(); err != nil {
			t.Fatalf("Invariant broken at tick %d: %v", i, err)
		}
	}

	if len(digs) != 5 {
		t.Fatalf("Expected 5 digs, got %d", len(digs))
	}
	for i, ev := range digs {
		want := Position{X: 6, Y: 24 - i}
		if ev.Cell != want {
			t.Errorf("Expected dig %d at %v, got %v", i, want, ev.Cell)
		}
		if ev.Score != 10*(i+1) {
			t.Errorf("Expected score %d after dig %d, got %d", 10*(i+1), i, ev.Score)
		}
		if i > 0 && ev.Tick <= digs[i-1].Tick {
			t.Errorf("Expected digs on successive ticks, got %d after %d", ev.Tick, digs[i-1].Tick)
		}
	}
	for y := 20; y <= 24; y++ {
		c, _ := e.grid.Get(Position{X: 6, Y: y})
		if c.Kind != Tunnel && c.Kind != Player {
			t.Errorf("Expected tunnel at row %d, got %v", y, c)
		}
	}
	if e.Progress().Score != 50 {
		t.Errorf("Expected score 50, got %d", e.Progress().Score)
	}
	if e.Slowed() {
		t.Error("Expected slowdown to expire once digging stops")
	}
	if e.PlayerSpeed() != e.config.PlayerSpeed {
		t.Errorf("Expected full speed restored, got %v", e.PlayerSpeed())
	}
}

func TestTunnelsDoNotRefill(t *testing.T) {
	e := createOpenEngine(t, createTestConfig(0))
	setCell(e, Position{X: 6, Y: 24}, WallCell)

	e.SetDirection(DirUp)
	runTicks(e, 30)
	e.SetDirection(DirDown)
	runTicks(e, 60)

	if c, _ := e.grid.Get(Position{X: 6, Y: 24}); c != TunnelCell {
		t.Errorf("Expected tunnel to stay open, got %v", c)
	}
	if e.Progress().Score != e.config.DigScore {
		t.Errorf("Expected a single dig score, got %d", e.Progress().Score)
	}
}

func TestPlayerStopsAtBorder(t *testing.T) {
	e := createOpenEngine(t, createTestConfig(0))
	e.SetDirection(DirDown)
	runTicks(e, 30)

	if got := e.player().Cell; got != (Position{X: 6, Y: 25}) {
		t.Errorf("Expected player to stay put against the border, got %v", got)
	}
	if e.player().State != StateIdle {
		t.Errorf("Expected idle player, got %s", e.player().State)
	}
}

func TestMovementChainsWithoutPause(t *testing.T) {
	e := createOpenEngine(t, createTestConfig(0))
	e.SetDirection(DirLeft)

	// 120 units/s over 30-unit cells is four cells per second.
	runTicks(e, 30)
	if got := e.player().Cell.X; got != 6-4 && got != 6-3 {
		t.Errorf("Expected roughly four cells travelled, player at column %d", got)
	}
}

func TestCollectLastItemClearsLevel(t *testing.T) {
	config := createTestConfig(0)
	e := createOpenEngine(t, config)

	e.progress.Collected = config.CollectiblesRequired - 1
	item := &CollectibleItem{ID: 1, Cell: Position{X: 6, Y: 24}, Active: true}
	e.collectibles = []*CollectibleItem{item}
	setCell(e, item.Cell, CollectibleCell(1))

	e.SetDirection(DirUp)
	var cleared TickResult
	for i := 0; i < 60; i++ {
		result := e.Tick(testDT)
		if countEvents(result.Events, EventLevelCleared) > 0 {
			cleared = result
			break
		}
	}
	if cleared.Phase != PhaseCleared {
		t.Fatalf("Expected phase cleared, got %q", cleared.Phase)
	}
	if countEvents(cleared.Events, EventCollect) != 1 {
		t.Errorf("Expected collect alongside level_cleared, got %v", cleared.Events)
	}

	progress := e.Progress()
	if want := config.CollectScore + config.LevelClearBonus; progress.Score != want {
		t.Errorf("Expected score %d, got %d", want, progress.Score)
	}
	if math.Abs(progress.Multiplier-(config.InitialMultiplier+config.SpeedIncrement)) > 1e-9 {
		t.Errorf("Expected multiplier %v, got %v", config.InitialMultiplier+config.SpeedIncrement, progress.Multiplier)
	}
	if item.Active {
		t.Error("Expected item to be inactive")
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state after clear, got %v", err)
	}

	// The board stays frozen for the clear delay, then the next level starts.
	playerCell := e.player().Cell
	ticks := 0
	for e.Progress().Phase == PhaseCleared && ticks < 200 {
		e.Tick(testDT)
		ticks++
		if e.Progress().Phase == PhaseCleared && e.player().Cell != playerCell {
			t.Fatal("Expected no movement while cleared")
		}
	}
	if float64(ticks)*testDT < config.LevelClearDelay-testDT {
		t.Errorf("Expected clear delay of %vs, resumed after %d ticks", config.LevelClearDelay, ticks)
	}

	progress = e.Progress()
	if progress.Phase != PhaseActive || progress.Level != 2 || progress.Collected != 0 {
		t.Errorf("Expected active level 2 with nothing collected, got %+v", progress)
	}
	if n := e.grid.CountOf(Collectible); n != config.CollectiblesRequired {
		t.Errorf("Expected a fresh set of %d collectibles, got %d", config.CollectiblesRequired, n)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state on level 2, got %v", err)
	}
}

func TestCaptureOnLastLifeEndsGame(t *testing.T) {
	config := createTestConfig(1)
	config.InitialLives = 1
	e := createOpenEngine(t, config)
	boxInBeside(e)

	e.SetDirection(DirRight)
	var events []Event
	for i := 0; i < 60 && e.Progress().Phase != PhaseOver; i++ {
		events = append(events, e.Tick(testDT).Events...)
	}

	if e.Progress().Phase != PhaseOver {
		t.Fatalf("Expected phase over, got %s", e.Progress().Phase)
	}
	if countEvents(events, EventLifeLost) != 1 || countEvents(events, EventGameOver) != 1 {
		t.Errorf("Expected life_lost and game_over, got %v", events)
	}
	if e.Progress().Lives != 0 {
		t.Errorf("Expected 0 lives, got %d", e.Progress().Lives)
	}

	snapBefore := e.Snapshot()
	for i := 0; i < 120; i++ {
		if r := e.Tick(testDT); r.Phase != PhaseOver || len(r.Events) != 0 {
			t.Fatalf("Expected game to stay over silently, got %+v", r)
		}
	}
	if e.player().Cell != snapBefore.Player.Cell {
		t.Error("Expected no movement after game over")
	}
}

func TestEnemyCaptureFreezesThenResets(t *testing.T) {
	config := createTestConfig(1)
	e := createOpenEngine(t, config)
	enemy := e.enemies()[0]
	relocate(e, enemy, Position{X: 6, Y: 23})
	setCell(e, Position{X: 5, Y: 24}, WallCell)
	setCell(e, Position{X: 7, Y: 24}, WallCell)
	setCell(e, Position{X: 5, Y: 23}, WallCell)
	setCell(e, Position{X: 7, Y: 23}, WallCell)
	setCell(e, Position{X: 6, Y: 22}, WallCell)

	// The enemy's only way out leads down to the player.
	var lost []Event
	for i := 0; i < 120 && len(lost) == 0; i++ {
		for _, ev := range e.Tick(testDT).Events {
			if ev.Type == EventLifeLost {
				lost = append(lost, ev)
			}
		}
	}
	if len(lost) != 1 {
		t.Fatalf("Expected one capture, got %d", len(lost))
	}
	progress := e.Progress()
	if progress.Phase != PhasePaused || progress.Lives != config.InitialLives-1 {
		t.Fatalf("Expected paused with %d lives, got %+v", config.InitialLives-1, progress)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Fatalf("Expected consistent state while paused, got %v", err)
	}

	e.SetDirection(DirLeft)
	ticks := 0
	for e.Progress().Phase == PhasePaused && ticks < 200 {
		e.Tick(testDT)
		ticks++
	}
	if float64(ticks)*testDT < config.FreezeDuration-testDT {
		t.Errorf("Expected freeze of %vs, resumed after %d ticks", config.FreezeDuration, ticks)
	}
	if e.Progress().Phase != PhaseActive {
		t.Fatalf("Expected active after freeze, got %s", e.Progress().Phase)
	}
	if e.player().Cell != e.player().Spawn || enemy.Cell != enemy.Spawn {
		t.Errorf("Expected entities back at spawn, player %v enemy %v", e.player().Cell, enemy.Cell)
	}
	if e.Direction() != DirNone {
		t.Errorf("Expected input cleared on reset, got %s", e.Direction())
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state after reset, got %v", err)
	}
}

func TestAdjacentAdversaryIsNotCapture(t *testing.T) {
	config := createTestConfig(1)
	e := createOpenEngine(t, config)
	enemy := e.enemies()[0]
	relocate(e, enemy, Position{X: 6, Y: 24})
	setCell(e, Position{X: 5, Y: 24}, WallCell)
	setCell(e, Position{X: 7, Y: 24}, WallCell)
	setCell(e, Position{X: 6, Y: 23}, WallCell)

	e.SetDirection(DirUp)
	result := e.Tick(testDT)

	if countEvents(result.Events, EventLifeLost) != 0 {
		t.Fatalf("Expected no capture one cell apart, got %v", result.Events)
	}
	if result.Phase != PhaseActive || e.Progress().Lives != config.InitialLives {
		t.Errorf("Expected active with %d lives, got %+v", config.InitialLives, e.Progress())
	}
	if d := math.Hypot(e.player().Pos.X-enemy.Pos.X, e.player().Pos.Y-enemy.Pos.Y); d <= config.CollisionRadius {
		t.Errorf("Expected distance above %v after one tick, got %v", config.CollisionRadius, d)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state while closing in, got %v", err)
	}

	lost := 0
	for i := 0; i < 20 && lost == 0; i++ {
		lost += countEvents(e.Tick(testDT).Events, EventLifeLost)
	}
	if lost != 1 {
		t.Errorf("Expected one capture once within range, got %d", lost)
	}
}

func TestRestart(t *testing.T) {
	config := createTestConfig(1)
	config.InitialLives = 1
	e := createOpenEngine(t, config)
	boxInBeside(e)
	e.SetDirection(DirRight)
	for i := 0; i < 60 && e.Progress().Phase != PhaseOver; i++ {
		e.Tick(testDT)
	}
	if e.Progress().Phase != PhaseOver {
		t.Fatalf("Expected game over, got %s", e.Progress().Phase)
	}

	result := e.Restart()
	if countEvents(result.Events, EventGameStart) != 1 {
		t.Errorf("Expected game_start from restart, got %v", result.Events)
	}
	progress := e.Progress()
	if progress.Phase != PhaseActive || progress.Lives != 1 || progress.Score != 0 || progress.Level != 1 {
		t.Errorf("Expected a fresh game, got %+v", progress)
	}
	if err := e.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent state after restart, got %v", err)
	}
	if len(e.Tick(testDT).Events) != 0 {
		t.Error("Expected restart events not to repeat on the next tick")
	}
}

func TestCheckInvariantsDetectsDesync(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))

	setCell(e, Position{X: 1, Y: 25}, PlayerCell)
	if err := e.CheckInvariants(); !errors.Is(err, ErrDesync) {
		t.Errorf("Expected ErrDesync for a duplicate player, got %v", err)
	}
	setCell(e, Position{X: 1, Y: 25}, EmptyCell)

	item := e.collectibles[0]
	setCell(e, item.Cell, EmptyCell)
	if err := e.CheckInvariants(); !errors.Is(err, ErrDesync) {
		t.Errorf("Expected ErrDesync for a missing collectible, got %v", err)
	}
}

func TestNegativeTickIsIgnored(t *testing.T) {
	e := createTestEngine(t, createTestConfig(3))
	e.Tick(-5)
	if e.Snapshot().Elapsed != 0 {
		t.Errorf("Expected negative dt to be treated as zero, got elapsed %v", e.Snapshot().Elapsed)
	}
}
