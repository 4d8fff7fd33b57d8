package engine

import (
	"fmt"
	"math"
)

// DefaultCenterTolerance is the distance, in world units, within which an
// entity counts as resting on its cell center.
const DefaultCenterTolerance = 2.0

// Mapper converts between grid cells and continuous world positions. The
// transform is fixed at construction and never changes afterwards.
type Mapper struct {
	cols     int
	rows     int
	cellSize float64
	offsetX  float64
	offsetY  float64
}

// NewMapper derives the cell size and centering offsets for a cols x rows
// board shown in a viewportW x viewportH viewport.
func NewMapper(cols, rows int, viewportW, viewportH float64) (*Mapper, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidDimensions, cols, rows)
	}
	if viewportW <= 0 || viewportH <= 0 {
		return nil, fmt.Errorf("%w: viewport must be positive, got %.1fx%.1f", ErrInvalidDimensions, viewportW, viewportH)
	}

	cellSize := math.Min(viewportW/float64(cols), viewportH/float64(rows))

	return &Mapper{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		offsetX:  (viewportW-cellSize*float64(cols))/2 + cellSize/2,
		offsetY:  (viewportH-cellSize*float64(rows))/2 + cellSize/2,
	}, nil
}

// CellSize returns the edge length of one cell in world units.
func (m *Mapper) CellSize() float64 { return m.cellSize }

// Cols returns the grid width.
func (m *Mapper) Cols() int { return m.cols }

// Rows returns the grid height.
func (m *Mapper) Rows() int { return m.rows }

// ToWorld returns the world position of the center of cell.
func (m *Mapper) ToWorld(cell Position) Vec2 {
	return Vec2{
		X: m.offsetX + float64(cell.X)*m.cellSize,
		Y: m.offsetY + float64(cell.Y)*m.cellSize,
	}
}

// ToGrid returns the cell whose center is nearest to pos.
func (m *Mapper) ToGrid(pos Vec2) Position {
	return Position{
		X: int(math.Round((pos.X - m.offsetX) / m.cellSize)),
		Y: int(math.Round((pos.Y - m.offsetY) / m.cellSize)),
	}
}

// IsValidCell reports whether cell lies inside the grid.
func (m *Mapper) IsValidCell(cell Position) bool {
	return cell.X >= 0 && cell.X < m.cols && cell.Y >= 0 && cell.Y < m.rows
}

// IsCentered reports whether pos is within tolerance of the center of the
// cell it rounds to.
func (m *Mapper) IsCentered(pos Vec2, tolerance float64) bool {
	return Distance(pos, m.ToWorld(m.ToGrid(pos))) <= tolerance
}

// Distance returns the Euclidean distance between two world positions.
func Distance(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Lerp interpolates linearly between a and b; t is clamped to [0, 1].
func Lerp(a, b Vec2, t float64) Vec2 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
