package engine

import (
	"fmt"
	"strings"
	"time"
)

// CellKind is the tag of a Cell.
type CellKind string

const (
	Empty       CellKind = "empty"
	Wall        CellKind = "wall"
	BorderWall  CellKind = "border"
	Player      CellKind = "player"
	Enemy       CellKind = "enemy"
	Collectible CellKind = "collectible"
	Tunnel      CellKind = "tunnel"

	// Validation constants
	MinGridWidth       = 5
	MinGridHeight      = 7
	MaxGridSize        = 200
	MaxEnemies         = 16
	MaxAdvanceTicks    = 10000
	DefaultTickSeconds = 1.0 / 30.0
)

// DefaultTickInterval is DefaultTickSeconds as a wall-clock interval.
const DefaultTickInterval = time.Second / 30

// Cell is the content of a single grid cell. ID is only meaningful for
// Enemy and Collectible cells.
type Cell struct {
	Kind CellKind `json:"kind"`
	ID   int      `json:"id,omitempty"`
}

// Cell constructors for the fixed set of kinds.
var (
	EmptyCell  = Cell{Kind: Empty}
	WallCell   = Cell{Kind: Wall}
	BorderCell = Cell{Kind: BorderWall}
	TunnelCell = Cell{Kind: Tunnel}
	PlayerCell = Cell{Kind: Player}
)

// EnemyCell returns the tag for the adversary with the given id.
func EnemyCell(id int) Cell { return Cell{Kind: Enemy, ID: id} }

// CollectibleCell returns the tag for the collectible with the given id.
func CollectibleCell(id int) Cell { return Cell{Kind: Collectible, ID: id} }

// IsOpen reports whether the cell holds terrain an entity can stand on.
func (c Cell) IsOpen() bool {
	return c.Kind == Empty || c.Kind == Tunnel
}

// IsEntity reports whether the cell is tagged with a moving entity.
func (c Cell) IsEntity() bool {
	return c.Kind == Player || c.Kind == Enemy
}

func (c Cell) String() string {
	switch c.Kind {
	case Enemy, Collectible:
		return fmt.Sprintf("%s(%d)", c.Kind, c.ID)
	default:
		return string(c.Kind)
	}
}

// Position is a grid coordinate: X is the column, Y is the row. Row 0 is the top row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the position one step in the given direction.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Vec2 is a continuous position in world units.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Direction is one of the four axis directions, or DirNone. Row 0 is the
// top of the board, so DirUp lowers Y. Input sources mapping a touch above
// the player to DirUp keep that convention.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirRight
	DirDown
	DirLeft
)

// AllDirections lists the axis directions in enumeration order.
var AllDirections = [4]Direction{DirUp, DirRight, DirDown, DirLeft}

// Delta returns the grid offset for the direction. Up decreases the row index.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

// MarshalText encodes the direction as its name.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, ok := ParseDirection(string(text))
	if !ok {
		return fmt.Errorf("unknown direction %q", string(text))
	}
	*d = parsed
	return nil
}

// ParseDirection maps a wire string to a Direction. The empty string and
// "none"/"stop" map to DirNone.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north", "u":
		return DirUp, true
	case "down", "south", "d":
		return DirDown, true
	case "left", "west", "l":
		return DirLeft, true
	case "right", "east", "r":
		return DirRight, true
	case "", "none", "stop":
		return DirNone, true
	}
	return DirNone, false
}

// DirectionBetween returns the axis direction leading from a to an adjacent b.
func DirectionBetween(a, b Position) Direction {
	for _, d := range AllDirections {
		if a.Step(d) == b {
			return d
		}
	}
	return DirNone
}

// MoveState is the movement state of an entity.
type MoveState string

const (
	StateIdle      MoveState = "idle"
	StateIntending MoveState = "intending"
	StateInFlight  MoveState = "in_flight"
)

// EntityKind distinguishes the player from adversaries.
type EntityKind string

const (
	KindPlayer EntityKind = "player"
	KindEnemy  EntityKind = "enemy"
)

// Phase is the global game phase.
type Phase string

const (
	PhaseActive  Phase = "active"
	PhasePaused  Phase = "paused"
	PhaseCleared Phase = "cleared"
	PhaseOver    Phase = "over"
)
