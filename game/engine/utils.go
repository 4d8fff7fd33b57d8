package engine

import (
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountCellKind counts the cells of a specific kind in a snapshot grid
func CountCellKind(cells [][]Cell, kind CellKind) int {
	count := 0
	for _, row := range cells {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// MazeStats summarizes the structure of a generated maze.
type MazeStats struct {
	OpenCells   int `json:"open_cells"`
	Reachable   int `json:"reachable"`
	CarveNodes  int `json:"carve_nodes"`
	Connections int `json:"connections"`
	LaneCells   int `json:"lane_cells"`
}

// Connected reports whether every open cell is reachable from the start.
func (s MazeStats) Connected() bool { return s.Reachable == s.OpenCells }

// Perfect reports whether the carved maze is a spanning tree of its carve
// nodes: exactly one connection fewer than nodes.
func (s MazeStats) Perfect() bool { return s.Connections == s.CarveNodes-1 }

// AnalyzeMaze flood-fills the maze from its start node and counts carve
// nodes and the wall openings that join them.
func AnalyzeMaze(m *Maze) MazeStats {
	var stats MazeStats
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := Position{X: x, Y: y}
			if m.IsWall(p) {
				continue
			}
			stats.OpenCells++
			switch {
			case m.IsLane(p):
				stats.LaneCells++
			case m.IsCarveNode(p):
				stats.CarveNodes++
			default:
				stats.Connections++
			}
		}
	}

	visited := mapset.New[Position]()
	queue := []Position{m.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if m.IsWall(current) || visited.Has(current) {
			continue
		}
		visited.Put(current)
		for _, d := range AllDirections {
			next := current.Step(d)
			if !m.IsWall(next) && !visited.Has(next) {
				queue = append(queue, next)
			}
		}
	}
	stats.Reachable = visited.Size()

	return stats
}

// Glyphs used by RenderASCII.
const (
	GlyphEmpty       = ' '
	GlyphWall        = '#'
	GlyphBorder      = '='
	GlyphTunnel      = '.'
	GlyphPlayer      = '@'
	GlyphEnemy       = 'E'
	GlyphCollectible = '*'
)

// GlyphFor returns the ASCII glyph for a cell.
func GlyphFor(c Cell) rune {
	switch c.Kind {
	case Wall:
		return GlyphWall
	case BorderWall:
		return GlyphBorder
	case Tunnel:
		return GlyphTunnel
	case Player:
		return GlyphPlayer
	case Enemy:
		return GlyphEnemy
	case Collectible:
		return GlyphCollectible
	}
	return GlyphEmpty
}

// RenderASCII renders the snapshot board one string per row.
func RenderASCII(s *Snapshot) []string {
	rows := make([]string, 0, len(s.Cells))
	for _, row := range s.Cells {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(GlyphFor(c))
		}
		rows = append(rows, b.String())
	}
	return rows
}
