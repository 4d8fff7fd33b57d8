package engine

// Grid is the authoritative occupancy of every cell on the board, border
// included. Cells are stored row-major in a flat slice.
type Grid struct {
	mapper *Mapper
	cells  []Cell
}

// NewGrid creates an all-empty grid sized to the mapper.
func NewGrid(mapper *Mapper) *Grid {
	g := &Grid{
		mapper: mapper,
		cells:  make([]Cell, mapper.Cols()*mapper.Rows()),
	}
	g.Clear()
	return g
}

func (g *Grid) index(p Position) (int, bool) {
	if !g.mapper.IsValidCell(p) {
		return 0, false
	}
	return p.Y*g.mapper.Cols() + p.X, true
}

// Get returns the content of p.
func (g *Grid) Get(p Position) (Cell, bool) {
	i, ok := g.index(p)
	if !ok {
		return Cell{}, false
	}
	return g.cells[i], true
}

// Set overwrites the content of p. Border cells are permanent, and a wall
// may only turn into a tunnel, an entity, or a collectible placed on it.
func (g *Grid) Set(p Position, c Cell) bool {
	i, ok := g.index(p)
	if !ok {
		return false
	}
	if g.cells[i].Kind == BorderWall {
		return c.Kind == BorderWall
	}
	if g.cells[i].Kind == Wall {
		switch c.Kind {
		case Wall, Tunnel, Player, Enemy, Collectible:
		default:
			return false
		}
	}
	g.cells[i] = c
	return true
}

// Place writes c into p only when p is empty.
func (g *Grid) Place(p Position, c Cell) bool {
	i, ok := g.index(p)
	if !ok || g.cells[i].Kind != Empty {
		return false
	}
	g.cells[i] = c
	return true
}

// Remove empties p and returns what was there. Border cells cannot be removed.
func (g *Grid) Remove(p Position) (Cell, bool) {
	i, ok := g.index(p)
	if !ok || g.cells[i].Kind == BorderWall {
		return Cell{}, false
	}
	prev := g.cells[i]
	g.cells[i] = EmptyCell
	return prev, true
}

// Move transfers the content of from into to. It fails when from is empty
// or to is not.
func (g *Grid) Move(from, to Position) bool {
	fi, ok := g.index(from)
	if !ok {
		return false
	}
	ti, ok := g.index(to)
	if !ok {
		return false
	}
	if g.cells[fi].Kind == Empty || g.cells[fi].Kind == BorderWall || g.cells[ti].Kind != Empty {
		return false
	}
	g.cells[ti] = g.cells[fi]
	g.cells[fi] = EmptyCell
	return true
}

// AllCellsOf returns every position tagged with kind, in row-major order.
func (g *Grid) AllCellsOf(kind CellKind) []Position {
	var out []Position
	cols := g.mapper.Cols()
	for i, c := range g.cells {
		if c.Kind == kind {
			out = append(out, Position{X: i % cols, Y: i / cols})
		}
	}
	return out
}

// CountOf returns the number of cells tagged with kind.
func (g *Grid) CountOf(kind CellKind) int {
	n := 0
	for _, c := range g.cells {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Clear resets every cell, border included, to Empty.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = EmptyCell
	}
}

// Rows returns a copy of the grid as [row][col].
func (g *Grid) Rows() [][]Cell {
	cols := g.mapper.Cols()
	out := make([][]Cell, g.mapper.Rows())
	for y := range out {
		out[y] = make([]Cell, cols)
		copy(out[y], g.cells[y*cols:(y+1)*cols])
	}
	return out
}

// Mapper returns the coordinate mapper the grid is checked against.
func (g *Grid) Mapper() *Mapper { return g.mapper }
