// Command validate checks the game configuration files in a directory
// (../configs by default). For every *.json, *.yaml and *.yml file it checks:
//   - the file parses in its format
//   - the rules pass engine validation
//   - a dry run generates a maze that is fully connected and a spanning tree
//   - the level spawns the requested gems and adversaries without desync
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/digmaze/game/engine"
)

// dryRunSeeds are the seeds each config is generated with when it does not
// pin its own.
var dryRunSeeds = []int64{1, 7, 42, 1337}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file, then
// dry-runs level generation.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.DecodeConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid %s: %v", strings.TrimPrefix(strings.ToUpper(filepath.Ext(filePath)), "."), err)
		return result
	}

	if err := engine.ValidateConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	seeds := dryRunSeeds
	if config.Seed != nil {
		seeds = []int64{*config.Seed}
	}

	dry := dryRun(config, seeds)
	if !dry.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, dry.Errors...)

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Board: %dx%d", config.Width, config.Height)
		result.info("Adversaries: %d", config.EnemyCount)
		result.info("Gems: %d required, %d spawned", config.CollectiblesRequired, config.SpawnedCollectibles())
		result.info("Lives: %d", config.InitialLives)
	}

	return result
}

// dryRun builds a game for every seed and checks the generated maze and the
// initial occupancy.
func dryRun(base *engine.Config, seeds []int64) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	for _, seed := range seeds {
		config := base.Clone()
		s := seed
		config.Seed = &s

		eng, err := engine.NewEngine(config)
		if err != nil {
			result.fail("Seed %d: failed to build level: %v", seed, err)
			continue
		}

		stats := engine.AnalyzeMaze(eng.Maze())
		if !stats.Connected() {
			result.fail("Seed %d: %d/%d open cells reachable", seed, stats.Reachable, stats.OpenCells)
		}
		if !stats.Perfect() {
			result.fail("Seed %d: %d connections for %d carve nodes, not a spanning tree", seed, stats.Connections, stats.CarveNodes)
		}

		snap := eng.Snapshot()
		if got := engine.CountCellKind(snap.Cells, engine.Collectible); got != config.SpawnedCollectibles() {
			result.fail("Seed %d: spawned %d gems, expected %d", seed, got, config.SpawnedCollectibles())
		}
		if got := engine.CountCellKind(snap.Cells, engine.Enemy); got != config.EnemyCount {
			result.fail("Seed %d: placed %d adversaries, expected %d", seed, got, config.EnemyCount)
		}
		if err := eng.CheckInvariants(); err != nil {
			result.fail("Seed %d: %v", seed, err)
		}
	}

	if result.Valid {
		result.info("Dry run: %d seeds, mazes connected and perfect", len(seeds))
	}
	return result
}

// configFiles lists the config files in dir, sorted by name.
func configFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every config file in the directory given as the first
// argument, printing a concise report and exiting with non-zero status if
// any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
