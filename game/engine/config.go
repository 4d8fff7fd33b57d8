package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the rules and dimensions of a game. Speeds and radii are in
// world units, durations in seconds.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// Board size, border included, and the viewport the cell size is derived from.
	Width          int     `json:"width" yaml:"width"`
	Height         int     `json:"height" yaml:"height"`
	ViewportWidth  float64 `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height" yaml:"viewport_height"`

	PlayerSpeed      float64 `json:"player_speed" yaml:"player_speed"`
	EnemySpeed       float64 `json:"enemy_speed" yaml:"enemy_speed"`
	EnemyCount       int     `json:"enemy_count" yaml:"enemy_count"`
	SlowdownFactor   float64 `json:"slowdown_factor" yaml:"slowdown_factor"`
	SlowdownDuration float64 `json:"slowdown_duration" yaml:"slowdown_duration"`

	CollectRadius   float64 `json:"collect_radius" yaml:"collect_radius"`
	CollisionRadius float64 `json:"collision_radius" yaml:"collision_radius"`
	CenterTolerance float64 `json:"center_tolerance" yaml:"center_tolerance"`

	CollectiblesRequired int `json:"collectibles_required" yaml:"collectibles_required"`
	CollectiblesSpawned  int `json:"collectibles_spawned,omitempty" yaml:"collectibles_spawned,omitempty"`

	InitialLives      int     `json:"initial_lives" yaml:"initial_lives"`
	InitialMultiplier float64 `json:"initial_multiplier" yaml:"initial_multiplier"`
	SpeedIncrement    float64 `json:"speed_increment" yaml:"speed_increment"`

	DigScore        int `json:"dig_score" yaml:"dig_score"`
	CollectScore    int `json:"collect_score" yaml:"collect_score"`
	LevelClearBonus int `json:"level_clear_bonus" yaml:"level_clear_bonus"`

	DecisionInterval float64 `json:"decision_interval" yaml:"decision_interval"`
	FreezeDuration   float64 `json:"freeze_duration" yaml:"freeze_duration"`
	LevelClearDelay  float64 `json:"level_clear_delay" yaml:"level_clear_delay"`

	// Seed makes maze generation and adversary choices reproducible. When
	// nil a time-based seed is used.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DefaultConfig returns the classic rules.
func DefaultConfig() *Config {
	return &Config{
		Name:                 "classic",
		Description:          "Classic dig maze: 13x27 board, three adversaries, ten gems per level",
		Width:                13,
		Height:               27,
		ViewportWidth:        390,
		ViewportHeight:       810,
		PlayerSpeed:          120,
		EnemySpeed:           90,
		EnemyCount:           3,
		SlowdownFactor:       0.5,
		SlowdownDuration:     0.5,
		CollectRadius:        22,
		CollisionRadius:      18,
		CenterTolerance:      DefaultCenterTolerance,
		CollectiblesRequired: 10,
		InitialLives:         3,
		InitialMultiplier:    0.5,
		SpeedIncrement:       0.1,
		DigScore:             10,
		CollectScore:         50,
		LevelClearBonus:      500,
		DecisionInterval:     0.1,
		FreezeDuration:       1.5,
		LevelClearDelay:      2.0,
	}
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	if c.Seed != nil {
		seed := *c.Seed
		out.Seed = &seed
	}
	return &out
}

// SpawnedCollectibles returns how many collectibles a level places.
func (c *Config) SpawnedCollectibles() int {
	if c.CollectiblesSpawned > c.CollectiblesRequired {
		return c.CollectiblesSpawned
	}
	return c.CollectiblesRequired
}

// ValidateConfig checks a config for consistency before a game starts.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Width < MinGridWidth || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridWidth, MaxGridSize, config.Width)
	}
	if config.Height < MinGridHeight || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridHeight, MaxGridSize, config.Height)
	}
	if config.ViewportWidth <= 0 || config.ViewportHeight <= 0 {
		return fmt.Errorf("config validation: viewport must be positive, got %.1fx%.1f", config.ViewportWidth, config.ViewportHeight)
	}

	if config.PlayerSpeed <= 0 {
		return fmt.Errorf("config validation: player_speed must be positive, got %.2f", config.PlayerSpeed)
	}
	if config.EnemySpeed <= 0 {
		return fmt.Errorf("config validation: enemy_speed must be positive, got %.2f", config.EnemySpeed)
	}
	if config.EnemyCount < 0 || config.EnemyCount > MaxEnemies {
		return fmt.Errorf("config validation: enemy_count must be between 0 and %d, got %d", MaxEnemies, config.EnemyCount)
	}
	if config.EnemyCount > config.Width-2 {
		return fmt.Errorf("config validation: enemy_count %d does not fit the %d-cell top lane", config.EnemyCount, config.Width-2)
	}
	if config.SlowdownFactor <= 0 || config.SlowdownFactor > 1 {
		return fmt.Errorf("config validation: slowdown_factor must be in (0, 1], got %.2f", config.SlowdownFactor)
	}
	if config.SlowdownDuration < 0 {
		return fmt.Errorf("config validation: slowdown_duration cannot be negative, got %.2f", config.SlowdownDuration)
	}

	if config.CollectRadius <= 0 || config.CollisionRadius <= 0 {
		return fmt.Errorf("config validation: collect_radius and collision_radius must be positive")
	}
	if config.CollisionRadius > config.CollectRadius {
		return fmt.Errorf("config validation: collision_radius (%.1f) must not exceed collect_radius (%.1f)",
			config.CollisionRadius, config.CollectRadius)
	}
	if config.CenterTolerance < 0 {
		return fmt.Errorf("config validation: center_tolerance cannot be negative, got %.2f", config.CenterTolerance)
	}

	if config.CollectiblesRequired < 1 {
		return fmt.Errorf("config validation: collectibles_required must be at least 1, got %d", config.CollectiblesRequired)
	}
	if config.CollectiblesSpawned != 0 && config.CollectiblesSpawned < config.CollectiblesRequired {
		return fmt.Errorf("config validation: collectibles_spawned (%d) cannot be less than collectibles_required (%d)",
			config.CollectiblesSpawned, config.CollectiblesRequired)
	}
	interior := (config.Width - 2) * (config.Height - 4)
	if config.SpawnedCollectibles() > interior/2 {
		return fmt.Errorf("config validation: %d collectibles do not fit a %dx%d maze interior",
			config.SpawnedCollectibles(), config.Width-2, config.Height-4)
	}

	if config.InitialLives < 1 {
		return fmt.Errorf("config validation: initial_lives must be at least 1, got %d", config.InitialLives)
	}
	if config.InitialMultiplier <= 0 {
		return fmt.Errorf("config validation: initial_multiplier must be positive, got %.2f", config.InitialMultiplier)
	}
	if config.SpeedIncrement < 0 {
		return fmt.Errorf("config validation: speed_increment cannot be negative, got %.2f", config.SpeedIncrement)
	}
	if config.DigScore < 0 || config.CollectScore < 0 || config.LevelClearBonus < 0 {
		return fmt.Errorf("config validation: score values cannot be negative")
	}
	if config.DecisionInterval < 0 || config.FreezeDuration < 0 || config.LevelClearDelay < 0 {
		return fmt.Errorf("config validation: durations cannot be negative")
	}

	return nil
}

// DecodeConfig parses a config from JSON or YAML. format is a file
// extension such as ".json" or ".yaml".
func DecodeConfig(data []byte, format string) (*Config, error) {
	var config Config
	switch strings.ToLower(format) {
	case ".yaml", ".yml", "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}
	return &config, nil
}

// LoadConfig reads and validates a config file. The format follows the file
// extension.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodeConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config, nil
}
