// Command analyze prints quick, human-readable heuristics about Dig Maze
// rule sets. It summarizes board geometry and pacing, checks generated mazes
// for reachability, and replays a headless autopilot game to show how a
// config plays out.
//
// Usage:
//
//	analyze configs [dir]
//	analyze maze --config configs/classic.json --seed 42
//	analyze run --config configs/easy.yaml --seed 7 --ticks 3000
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/wricardo/digmaze/game/engine"
)

// configSummary is the pacing digest of one rule set.
type configSummary struct {
	Name           string
	Board          string
	CellSize       float64
	PlayerCellsSec float64
	EnemyCellsSec  float64
	CrossSeconds   float64
	Adversaries    int
	Gems           string
	Lives          int
}

// runReport is the outcome of an autopilot replay.
type runReport struct {
	Seed      int64
	Ticks     int
	Score     int
	Level     int
	Lives     int
	Phase     engine.Phase
	EventsBy  map[engine.EventType]int
	FinalSnap *engine.Snapshot
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	configFlag := &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "configs/classic.json", Usage: "Config file to load"}
	seedFlag := &cli.Int64Flag{Name: "seed", Aliases: []string{"s"}, Value: 1, Usage: "Random seed for the level"}

	return &cli.Command{
		Name:  "analyze",
		Usage: "Inspect Dig Maze configs and generated levels",
		Commands: []*cli.Command{
			{
				Name:      "configs",
				Usage:     "Summarize every config in a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := "configs"
					if cmd.Args().Len() > 0 {
						dir = cmd.Args().First()
					}
					return analyzeConfigs(cmd.Root().Writer, dir)
				},
			},
			{
				Name:  "maze",
				Usage: "Generate a level and report its maze structure",
				Flags: []cli.Flag{configFlag, seedFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					eng, err := buildEngine(cmd.String("config"), cmd.Int64("seed"))
					if err != nil {
						return err
					}
					out := cmd.Root().Writer
					printMazeStats(out, engine.AnalyzeMaze(eng.Maze()))
					printBoard(out, eng.Snapshot())
					return nil
				},
			},
			{
				Name:  "run",
				Usage: "Replay a headless autopilot game",
				Flags: []cli.Flag{
					configFlag,
					seedFlag,
					&cli.IntFlag{Name: "ticks", Value: 3000, Usage: "Maximum ticks to simulate"},
					&cli.FloatFlag{Name: "dt", Value: engine.DefaultTickSeconds, Usage: "Seconds per tick"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					eng, err := buildEngine(cmd.String("config"), cmd.Int64("seed"))
					if err != nil {
						return err
					}
					report := autopilot(eng, cmd.Int("ticks"), cmd.Float("dt"))
					out := cmd.Root().Writer
					printReport(out, report)
					printBoard(out, report.FinalSnap)
					return nil
				},
			},
		},
	}
}

func buildEngine(path string, seed int64) (*engine.GameEngine, error) {
	config, err := engine.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	config.Seed = &seed
	return engine.NewEngine(config)
}

func analyzeConfigs(out io.Writer, dir string) error {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no config files found in %s", dir)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", filepath.Base(file))
		config, err := engine.LoadConfig(file)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", color.FgRed.Sprint("✗"), err)
			continue
		}
		s, err := summarize(config)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", color.FgRed.Sprint("✗"), err)
			continue
		}
		fmt.Fprintf(out, "Name: %s\n", s.Name)
		fmt.Fprintf(out, "Board: %s (cell %.1fpx)\n", s.Board, s.CellSize)
		fmt.Fprintf(out, "Player: %.2f cells/s, crosses the board in %.1fs\n", s.PlayerCellsSec, s.CrossSeconds)
		fmt.Fprintf(out, "Adversaries: %d at %.2f cells/s\n", s.Adversaries, s.EnemyCellsSec)
		fmt.Fprintf(out, "Gems: %s\n", s.Gems)
		fmt.Fprintf(out, "Lives: %d\n", s.Lives)
		if s.EnemyCellsSec >= s.PlayerCellsSec {
			fmt.Fprintf(out, "%s adversaries start as fast as the player\n", color.FgYellow.Sprint("⚠️  WARNING:"))
		}
	}
	return nil
}

// summarize derives cell-based pacing from the pixel speeds of a config.
func summarize(config *engine.Config) (configSummary, error) {
	mapper, err := engine.NewMapper(config.Width, config.Height, config.ViewportWidth, config.ViewportHeight)
	if err != nil {
		return configSummary{}, err
	}
	cell := mapper.CellSize()
	player := config.PlayerSpeed * config.InitialMultiplier / cell
	enemy := config.EnemySpeed * config.InitialMultiplier / cell

	return configSummary{
		Name:           config.Name,
		Board:          fmt.Sprintf("%dx%d", config.Width, config.Height),
		CellSize:       cell,
		PlayerCellsSec: player,
		EnemyCellsSec:  enemy,
		CrossSeconds:   float64(config.Height-2) / player,
		Adversaries:    config.EnemyCount,
		Gems:           fmt.Sprintf("%d required, %d spawned", config.CollectiblesRequired, config.SpawnedCollectibles()),
		Lives:          config.InitialLives,
	}, nil
}

func printMazeStats(out io.Writer, stats engine.MazeStats) {
	fmt.Fprintf(out, "Open cells: %d (%d in lanes)\n", stats.OpenCells, stats.LaneCells)
	fmt.Fprintf(out, "Carve nodes: %d, connections: %d\n", stats.CarveNodes, stats.Connections)
	if stats.Connected() {
		fmt.Fprintf(out, "%s every open cell is reachable\n", color.FgGreen.Sprint("✅"))
	} else {
		fmt.Fprintf(out, "%s %d/%d open cells reachable\n", color.FgRed.Sprint("❌"), stats.Reachable, stats.OpenCells)
	}
	if stats.Perfect() {
		fmt.Fprintf(out, "%s maze is a spanning tree\n", color.FgGreen.Sprint("✅"))
	} else {
		fmt.Fprintf(out, "%s maze has loops or islands\n", color.FgRed.Sprint("❌"))
	}
}

// autopilot steers the player toward the nearest gem whenever it is free to
// pick a direction, and runs until the game ends or ticks run out.
func autopilot(eng *engine.GameEngine, ticks int, dt float64) runReport {
	report := runReport{
		Seed:     eng.Seed(),
		EventsBy: make(map[engine.EventType]int),
	}

	for report.Ticks < ticks {
		snap := eng.Snapshot()
		if snap.Progress.Phase == engine.PhaseOver {
			break
		}
		// Input is only read at cell centers, so steer from the cell the
		// player is closest to.
		eng.SetDirection(chooseMove(snap, eng.Mapper().ToGrid(snap.Player.Pos)))
		result := eng.Tick(dt)
		report.Ticks++
		for _, ev := range result.Events {
			report.EventsBy[ev.Type]++
		}
	}

	snap := eng.Snapshot()
	report.Score = snap.Progress.Score
	report.Level = snap.Progress.Level
	report.Lives = snap.Progress.Lives
	report.Phase = snap.Progress.Phase
	report.FinalSnap = snap
	return report
}

// chooseMove picks the step from cell that brings the player closest to a
// gem. Border walls and adversaries are never chosen; ties keep the order of
// engine.AllDirections.
func chooseMove(snap *engine.Snapshot, from engine.Position) engine.Direction {
	var moves []engine.Direction
	for _, d := range engine.AllDirections {
		c, ok := snap.CellAt(from.Step(d))
		if ok && c.Kind != engine.BorderWall && c.Kind != engine.Enemy {
			moves = append(moves, d)
		}
	}
	if len(moves) == 0 {
		return engine.DirNone
	}

	var gems []engine.Position
	for y, row := range snap.Cells {
		for x, c := range row {
			if c.Kind == engine.Collectible {
				gems = append(gems, engine.Position{X: x, Y: y})
			}
		}
	}
	if len(gems) == 0 {
		return moves[0]
	}

	best, bestDist := moves[0], -1
	for _, d := range moves {
		next := from.Step(d)
		for _, g := range gems {
			dist := engine.ManhattanDistance(next, g)
			if bestDist < 0 || dist < bestDist {
				best, bestDist = d, dist
			}
		}
	}
	return best
}

func printReport(out io.Writer, r runReport) {
	fmt.Fprintf(out, "Seed: %d\n", r.Seed)
	fmt.Fprintf(out, "Ticks: %d\n", r.Ticks)
	fmt.Fprintf(out, "Score: %d | Level: %d | Lives: %d | Phase: %s\n", r.Score, r.Level, r.Lives, r.Phase)

	types := make([]string, 0, len(r.EventsBy))
	for t := range r.EventsBy {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(out, "  %-14s %d\n", t, r.EventsBy[engine.EventType(t)])
	}
}

// printBoard draws the board, colored when out is a terminal wide enough to
// hold it.
func printBoard(out io.Writer, snap *engine.Snapshot) {
	colorize := false
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width < snap.Width {
			fmt.Fprintf(out, "(board is %d columns, terminal is %d; skipped)\n", snap.Width, width)
			return
		}
		colorize = true
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderBoard(snap, colorize))
}

var glyphColors = map[engine.CellKind]color.Color{
	engine.Wall:        color.FgWhite,
	engine.BorderWall:  color.FgDarkGray,
	engine.Tunnel:      color.FgYellow,
	engine.Player:      color.FgLightGreen,
	engine.Enemy:       color.FgLightRed,
	engine.Collectible: color.FgLightCyan,
}

func renderBoard(snap *engine.Snapshot, colorize bool) string {
	if !colorize {
		return strings.Join(engine.RenderASCII(snap), "\n") + "\n"
	}

	var b strings.Builder
	for _, row := range snap.Cells {
		for _, c := range row {
			glyph := string(engine.GlyphFor(c))
			if clr, ok := glyphColors[c.Kind]; ok {
				glyph = clr.Sprint(glyph)
			}
			b.WriteString(glyph)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
