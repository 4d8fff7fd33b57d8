package engine

import (
	"fmt"
	"math/rand"
)

// Maze is a generated wall grid for the playable interior. Walls is indexed
// [row][col]; true means wall.
type Maze struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Walls     [][]bool   `json:"walls"`
	Start     Position   `json:"start"`
	Entrances []Position `json:"entrances"`
	Exit      Position   `json:"exit"`

	lanes map[Position]bool
}

// GenerateMaze carves a perfect maze with a randomized depth-first
// backtracker over the odd-coordinate sublattice, then forces open the top
// entrances and the bottom exit. The same rng seed yields the same maze.
func GenerateMaze(width, height int, rng *rand.Rand) (*Maze, error) {
	if width <= 2 || height <= 2 {
		return nil, fmt.Errorf("%w: maze must be larger than 2x2, got %dx%d", ErrInvalidDimensions, width, height)
	}
	if rng == nil {
		return nil, fmt.Errorf("maze generation requires a random source")
	}

	walls := make([][]bool, height)
	for y := range walls {
		walls[y] = make([]bool, width)
		for x := range walls[y] {
			walls[y][x] = true
		}
	}

	m := &Maze{
		Width:  width,
		Height: height,
		Walls:  walls,
		Start:  Position{X: oddColumnNear(width, width/2), Y: 1},
		lanes:  make(map[Position]bool),
	}

	m.carve(rng)

	for _, col := range m.entranceColumns() {
		entrance := Position{X: col, Y: 0}
		m.Entrances = append(m.Entrances, entrance)
		for y := 0; y < height && walls[y][col]; y++ {
			walls[y][col] = false
			m.lanes[Position{X: col, Y: y}] = true
		}
	}

	m.Exit = Position{X: m.Start.X, Y: height - 1}
	for y := height - 1; y >= 0 && walls[y][m.Exit.X]; y-- {
		walls[y][m.Exit.X] = false
		m.lanes[Position{X: m.Exit.X, Y: y}] = true
	}

	return m, nil
}

// carve runs the iterative backtracker from Start.
func (m *Maze) carve(rng *rand.Rand) {
	steps := []Position{{X: 0, Y: -2}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 0}}

	m.Walls[m.Start.Y][m.Start.X] = false
	stack := []Position{m.Start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		var candidates []Position
		for _, s := range steps {
			next := Position{X: current.X + s.X, Y: current.Y + s.Y}
			if m.IsCarveNode(next) && m.Walls[next.Y][next.X] {
				candidates = append(candidates, next)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		next := candidates[rng.Intn(len(candidates))]
		m.Walls[(current.Y+next.Y)/2][(current.X+next.X)/2] = false
		m.Walls[next.Y][next.X] = false
		stack = append(stack, next)
	}
}

// entranceColumns returns the distinct entrance columns: the start column
// and the odd columns nearest the left and right thirds.
func (m *Maze) entranceColumns() []int {
	cols := []int{m.Start.X}
	for _, target := range []int{m.Width / 3, (2 * m.Width) / 3} {
		col := oddColumnNear(m.Width, target)
		seen := false
		for _, c := range cols {
			if c == col {
				seen = true
				break
			}
		}
		if !seen {
			cols = append(cols, col)
		}
	}
	return cols
}

// IsCarveNode reports whether p is an odd-coordinate node strictly inside
// the maze.
func (m *Maze) IsCarveNode(p Position) bool {
	return p.X > 0 && p.X < m.Width-1 && p.Y > 0 && p.Y < m.Height-1 &&
		p.X%2 == 1 && p.Y%2 == 1
}

// IsLane reports whether p was opened as part of an entrance or exit lane.
func (m *Maze) IsLane(p Position) bool {
	return m.lanes[p]
}

// IsWall reports whether p is a wall; out-of-range cells count as walls.
func (m *Maze) IsWall(p Position) bool {
	if p.X < 0 || p.X >= m.Width || p.Y < 0 || p.Y >= m.Height {
		return true
	}
	return m.Walls[p.Y][p.X]
}

// oddColumnNear returns the odd column closest to target that is strictly
// inside a maze of the given width.
func oddColumnNear(width, target int) int {
	col := target
	if col%2 == 0 {
		col--
	}
	if col < 1 {
		col = 1
	}
	for col >= width-1 && col > 1 {
		col -= 2
	}
	return col
}
