package engine

// Entity is the player or an adversary. Entities live in the engine's arena
// slice and refer to the board only by coordinate.
type Entity struct {
	ID     int        `json:"id"`
	Kind   EntityKind `json:"kind"`
	Cell   Position   `json:"cell"`
	Spawn  Position   `json:"spawn"`
	Pos    Vec2       `json:"pos"`
	Facing Direction  `json:"facing"`
	State  MoveState  `json:"state"`

	Last    Position `json:"last"`
	HasLast bool     `json:"has_last"`

	Target   Position `json:"target"`
	Progress float64  `json:"progress"`
	// Contested marks a flight into the opponent's cell. The grid keeps the
	// entity on Cell until it claims Target.
	Contested bool `json:"contested,omitempty"`

	// Under is the content the entity covers and restores when it leaves.
	Under Cell `json:"under"`

	// Wait delays the next decision after finding no valid direction.
	Wait float64 `json:"wait"`
	// Cooldown throttles adversary decisions.
	Cooldown float64 `json:"cooldown"`
}

// Tag returns the cell content the entity writes into the grid.
func (e *Entity) Tag() Cell {
	if e.Kind == KindPlayer {
		return PlayerCell
	}
	return EnemyCell(e.ID)
}

// Occupied returns the cell the grid records for the entity. While in
// flight this is already the target, unless the flight is contested.
func (e *Entity) Occupied() Position {
	if e.State == StateInFlight && !e.Contested {
		return e.Target
	}
	return e.Cell
}

// CollectibleItem is a collectible tracked in the engine's arena. Its ID is
// its 1-based index. Under is what the cell turns into once the item is
// collected: empty for corridor items, tunnel for items set into a wall.
type CollectibleItem struct {
	ID     int      `json:"id"`
	Cell   Position `json:"cell"`
	Active bool     `json:"active"`
	Under  Cell     `json:"under"`
}

// left returns what the item leaves behind.
func (c *CollectibleItem) left() Cell {
	if c.Under.Kind == Tunnel {
		return TunnelCell
	}
	return EmptyCell
}
