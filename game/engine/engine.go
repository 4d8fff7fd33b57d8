package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/zyedidia/generic/mapset"
)

// Engine is the contract the service layer drives. Implementations are not
// safe for concurrent use; callers serialize access.
type Engine interface {
	// Simulation
	Tick(dt float64) TickResult
	SetDirection(dir Direction)
	Direction() Direction
	Restart() TickResult

	// Read-only views
	Snapshot() *Snapshot
	Progress() Progression
	Config() *Config
	Seed() int64

	// Debug
	CheckInvariants() error
}

// GameEngine runs one game: the board, the entity arena, the collectible
// arena and the progression state.
type GameEngine struct {
	config *Config
	seed   int64
	rng    *rand.Rand

	mapper *Mapper
	grid   *Grid
	maze   *Maze
	policy *AdversaryPolicy

	entities     []*Entity
	collectibles []*CollectibleItem
	progress     *Progression

	input     Direction
	slowTimer float64

	tick    uint64
	elapsed float64

	events       []Event
	interactions []interaction
}

// NewEngine validates the config and builds the first level.
func NewEngine(config *Config) (*GameEngine, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	mapper, err := NewMapper(config.Width, config.Height, config.ViewportWidth, config.ViewportHeight)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if config.Seed != nil {
		seed = *config.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	e := &GameEngine{
		config:   config,
		seed:     seed,
		rng:      rng,
		mapper:   mapper,
		grid:     NewGrid(mapper),
		policy:   NewAdversaryPolicy(rng),
		progress: NewProgression(config),
	}

	if err := e.buildLevel(); err != nil {
		return nil, err
	}
	e.emit(EventGameStart, e.player().Cell)

	return e, nil
}

// NewEngineWithDefaults creates an engine with DefaultConfig.
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return engine
}

// Board layout: row 0 and the last row are border, as are the first and
// last columns. Row 1 is the top lane, row Height-2 the bottom lane, and
// the maze fills the rows between them.
const (
	topLaneRow    = 1
	mazeTopOffset = 2
)

func (e *GameEngine) bottomLaneRow() int { return e.config.Height - 2 }

// buildLevel generates a fresh maze and places every entity and collectible.
func (e *GameEngine) buildLevel() error {
	cfg := e.config
	maze, err := GenerateMaze(cfg.Width-2, cfg.Height-4, e.rng)
	if err != nil {
		return fmt.Errorf("failed to generate level %d: %w", e.progress.Level, err)
	}
	e.maze = maze

	playerSpawn := Position{X: maze.Start.X + 1, Y: e.bottomLaneRow()}
	enemySpawns := e.enemySpawns(maze)

	spawns := mapset.New[Position]()
	spawns.Put(playerSpawn)
	for _, p := range enemySpawns {
		spawns.Put(p)
	}

	e.grid.Clear()
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := Position{X: x, Y: y}
			switch {
			case x == 0 || x == cfg.Width-1 || y == 0 || y == cfg.Height-1:
				e.grid.Set(p, BorderCell)
			case y == topLaneRow || y == e.bottomLaneRow():
			case spawns.Has(p):
			case maze.IsWall(Position{X: x - 1, Y: y - mazeTopOffset}):
				e.grid.Set(p, WallCell)
			}
		}
	}

	e.entities = e.entities[:0]
	e.entities = append(e.entities, &Entity{ID: 0, Kind: KindPlayer, Spawn: playerSpawn})
	for i, spawn := range enemySpawns {
		e.entities = append(e.entities, &Entity{ID: i + 1, Kind: KindEnemy, Spawn: spawn})
	}
	for _, ent := range e.entities {
		e.placeAtSpawn(ent)
	}

	e.placeCollectibles(spawns)
	e.slowTimer = 0
	e.interactions = e.interactions[:0]

	return nil
}

// enemySpawns spreads adversaries across the top lane, entrance columns first.
func (e *GameEngine) enemySpawns(maze *Maze) []Position {
	var cols []int
	taken := make(map[int]bool)
	for _, entrance := range maze.Entrances {
		col := entrance.X + 1
		if !taken[col] {
			taken[col] = true
			cols = append(cols, col)
		}
	}
	for x := 1; x < e.config.Width-1 && len(cols) < e.config.EnemyCount; x++ {
		if !taken[x] {
			taken[x] = true
			cols = append(cols, x)
		}
	}

	spawns := make([]Position, 0, e.config.EnemyCount)
	for i := 0; i < e.config.EnemyCount; i++ {
		spawns = append(spawns, Position{X: cols[i], Y: topLaneRow})
	}
	return spawns
}

// placeCollectibles scatters the level's collectibles over open maze cells,
// falling back to wall cells when the corridors are too few.
func (e *GameEngine) placeCollectibles(exclude mapset.Set[Position]) {
	var open, walls []Position
	for y := mazeTopOffset; y < e.bottomLaneRow(); y++ {
		for x := 1; x < e.config.Width-1; x++ {
			p := Position{X: x, Y: y}
			if exclude.Has(p) {
				continue
			}
			c, _ := e.grid.Get(p)
			switch c.Kind {
			case Empty:
				open = append(open, p)
			case Wall:
				walls = append(walls, p)
			}
		}
	}
	e.rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })
	e.rng.Shuffle(len(walls), func(i, j int) { walls[i], walls[j] = walls[j], walls[i] })
	candidates := append(open, walls...)

	count := e.config.SpawnedCollectibles()
	if count > len(candidates) {
		count = len(candidates)
	}

	e.collectibles = make([]*CollectibleItem, 0, count)
	for i := 0; i < count; i++ {
		item := &CollectibleItem{ID: i + 1, Cell: candidates[i], Active: true, Under: EmptyCell}
		if c, _ := e.grid.Get(item.Cell); c.Kind == Wall {
			// Set into a wall, the item sits in a dug pocket.
			item.Under = TunnelCell
		}
		e.grid.Set(item.Cell, CollectibleCell(item.ID))
		e.collectibles = append(e.collectibles, item)
	}
}

// placeAtSpawn puts an entity that is off the board back on its spawn cell.
func (e *GameEngine) placeAtSpawn(ent *Entity) {
	under, _ := e.grid.Get(ent.Spawn)
	if under.IsEntity() {
		under = EmptyCell
	}
	ent.Cell = ent.Spawn
	ent.Target = ent.Spawn
	ent.Pos = e.mapper.ToWorld(ent.Spawn)
	ent.Under = under
	ent.State = StateIdle
	ent.Facing = DirNone
	ent.HasLast = false
	ent.Last = ent.Spawn
	ent.Progress = 0
	ent.Contested = false
	ent.Wait = 0
	ent.Cooldown = 0
	e.grid.Set(ent.Spawn, ent.Tag())
}

// resetEntities returns every entity to its spawn, restoring what each one
// covered.
func (e *GameEngine) resetEntities() {
	for _, ent := range e.entities {
		e.grid.Set(ent.Occupied(), ent.Under)
	}
	for _, ent := range e.entities {
		e.placeAtSpawn(ent)
	}
	e.input = DirNone
	e.slowTimer = 0
}

// Tick advances the simulation by dt seconds.
func (e *GameEngine) Tick(dt float64) TickResult {
	if dt < 0 {
		dt = 0
	}
	e.tick++
	e.elapsed += dt

	switch e.progress.Phase {
	case PhaseActive:
		e.stepEntities(dt)
		e.resolve()
	case PhasePaused, PhaseCleared:
		switch e.progress.Advance(dt) {
		case TransitionResume:
			e.resetEntities()
		case TransitionNextLevel:
			if err := e.buildLevel(); err != nil {
				// Dimensions were validated at construction, so a rebuild cannot fail.
				panic(err)
			}
			e.input = DirNone
		}
	}

	return e.flush()
}

// SetDirection records the player's desired direction.
func (e *GameEngine) SetDirection(dir Direction) {
	e.input = dir
}

// Direction returns the player's current desired direction.
func (e *GameEngine) Direction() Direction {
	return e.input
}

// Restart begins a new game with the same config, continuing the random
// sequence so the next mazes differ.
func (e *GameEngine) Restart() TickResult {
	e.events = nil
	e.progress.Reset()
	e.input = DirNone
	if err := e.buildLevel(); err != nil {
		panic(err)
	}
	e.emit(EventGameStart, e.player().Cell)
	return e.flush()
}

// flush returns the events emitted since the last flush. Events emitted
// outside a tick, such as game_start from NewEngine, ride on the next one.
func (e *GameEngine) flush() TickResult {
	result := TickResult{Tick: e.tick, Phase: e.progress.Phase, Events: e.events}
	e.events = nil
	return result
}

// Progress returns a copy of the progression state.
func (e *GameEngine) Progress() Progression {
	return *e.progress
}

// Config returns the engine's config.
func (e *GameEngine) Config() *Config {
	return e.config
}

// Seed returns the seed the random source was created with.
func (e *GameEngine) Seed() int64 {
	return e.seed
}

// Maze returns the maze of the current level.
func (e *GameEngine) Maze() *Maze {
	return e.maze
}

// Grid exposes the occupancy grid.
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// Mapper exposes the coordinate mapper.
func (e *GameEngine) Mapper() *Mapper {
	return e.mapper
}

// PossibleMoves returns the directions the player could start moving in
// right now, digging included.
func (e *GameEngine) PossibleMoves() []Direction {
	var out []Direction
	from := e.player().Cell
	for _, d := range AllDirections {
		c, ok := e.grid.Get(from.Step(d))
		if ok && playerCanTarget(c) {
			out = append(out, d)
		}
	}
	return out
}

func (e *GameEngine) player() *Entity {
	return e.entities[0]
}

func (e *GameEngine) enemies() []*Entity {
	return e.entities[1:]
}

func (e *GameEngine) emit(t EventType, cell Position) {
	e.events = append(e.events, Event{
		Type:  t,
		Tick:  e.tick,
		Cell:  cell,
		Score: e.progress.Score,
		Lives: e.progress.Lives,
		Level: e.progress.Level,
	})
}

// CheckInvariants verifies that the grid and the arenas agree. A non-nil
// result wraps ErrDesync and always indicates a bug.
func (e *GameEngine) CheckInvariants() error {
	players := e.grid.AllCellsOf(Player)
	if len(players) != 1 || players[0] != e.player().Occupied() {
		return fmt.Errorf("%w: player at %v but grid has %v", ErrDesync, e.player().Occupied(), players)
	}

	if n := e.grid.CountOf(Enemy); n != len(e.enemies()) {
		return fmt.Errorf("%w: %d enemies but grid has %d enemy cells", ErrDesync, len(e.enemies()), n)
	}
	for _, ent := range e.enemies() {
		c, ok := e.grid.Get(ent.Occupied())
		if !ok || c != ent.Tag() {
			return fmt.Errorf("%w: enemy %d at %v but grid has %v", ErrDesync, ent.ID, ent.Occupied(), c)
		}
	}

	for _, item := range e.collectibles {
		c, _ := e.grid.Get(item.Cell)
		onGrid := c == CollectibleCell(item.ID)
		covered := false
		for _, ent := range e.entities {
			if ent.Occupied() == item.Cell && ent.Under == CollectibleCell(item.ID) {
				covered = true
			}
		}
		if item.Active && !onGrid && !covered {
			return fmt.Errorf("%w: collectible %d at %v missing from grid", ErrDesync, item.ID, item.Cell)
		}
		if !item.Active && (onGrid || covered) {
			return fmt.Errorf("%w: collected item %d still on grid at %v", ErrDesync, item.ID, item.Cell)
		}
	}

	if n := e.grid.CountOf(BorderWall); n != 2*e.config.Width+2*(e.config.Height-2) {
		return fmt.Errorf("%w: border has %d cells", ErrDesync, n)
	}

	return nil
}
