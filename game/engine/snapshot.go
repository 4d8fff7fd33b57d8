package engine

// EntityView is the read-only state of one entity as a renderer sees it.
type EntityView struct {
	ID     int        `json:"id"`
	Kind   EntityKind `json:"kind"`
	Cell   Position   `json:"cell"`
	Pos    Vec2       `json:"pos"`
	Facing Direction  `json:"facing"`
	State  MoveState  `json:"state"`
}

// ProgressView is the read-only progression state.
type ProgressView struct {
	Score      int     `json:"score"`
	Lives      int     `json:"lives"`
	Level      int     `json:"level"`
	Collected  int     `json:"collected"`
	Required   int     `json:"required"`
	Multiplier float64 `json:"multiplier"`
	Phase      Phase   `json:"phase"`
	Remaining  float64 `json:"phase_remaining,omitempty"`
}

// Snapshot is a deep copy of everything a renderer or UI may display.
// Mutating it has no effect on the engine.
type Snapshot struct {
	Tick     uint64       `json:"tick"`
	Elapsed  float64      `json:"elapsed"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	CellSize float64      `json:"cell_size"`
	Cells    [][]Cell     `json:"cells"`
	Player   EntityView   `json:"player"`
	Enemies  []EntityView `json:"enemies"`
	Progress ProgressView `json:"progress"`
	Input    Direction    `json:"input"`
	Slowed   bool         `json:"slowed"`
	Seed     int64        `json:"seed"`
}

// Snapshot captures the current state.
func (e *GameEngine) Snapshot() *Snapshot {
	snap := &Snapshot{
		Tick:     e.tick,
		Elapsed:  e.elapsed,
		Width:    e.config.Width,
		Height:   e.config.Height,
		CellSize: e.mapper.CellSize(),
		Cells:    e.grid.Rows(),
		Player:   viewOf(e.player()),
		Enemies:  make([]EntityView, 0, len(e.enemies())),
		Progress: ProgressView{
			Score:      e.progress.Score,
			Lives:      e.progress.Lives,
			Level:      e.progress.Level,
			Collected:  e.progress.Collected,
			Required:   e.progress.Required,
			Multiplier: e.progress.Multiplier,
			Phase:      e.progress.Phase,
			Remaining:  e.progress.Remaining(),
		},
		Input:  e.input,
		Slowed: e.Slowed(),
		Seed:   e.seed,
	}
	for _, ent := range e.enemies() {
		snap.Enemies = append(snap.Enemies, viewOf(ent))
	}
	return snap
}

func viewOf(ent *Entity) EntityView {
	return EntityView{
		ID:     ent.ID,
		Kind:   ent.Kind,
		Cell:   ent.Cell,
		Pos:    ent.Pos,
		Facing: ent.Facing,
		State:  ent.State,
	}
}

// CellAt returns the content of a cell in the snapshot.
func (s *Snapshot) CellAt(p Position) (Cell, bool) {
	if p.Y < 0 || p.Y >= len(s.Cells) || p.X < 0 || p.X >= len(s.Cells[p.Y]) {
		return Cell{}, false
	}
	return s.Cells[p.Y][p.X], true
}
