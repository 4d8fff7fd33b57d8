package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing name", func(c *Config) { c.Name = "" }, "name is required"},
		{"narrow board", func(c *Config) { c.Width = 4 }, "width must be between"},
		{"short board", func(c *Config) { c.Height = 6 }, "height must be between"},
		{"huge board", func(c *Config) { c.Width = MaxGridSize + 1 }, "width must be between"},
		{"no viewport", func(c *Config) { c.ViewportWidth = 0 }, "viewport must be positive"},
		{"stopped player", func(c *Config) { c.PlayerSpeed = 0 }, "player_speed"},
		{"stopped enemies", func(c *Config) { c.EnemySpeed = -1 }, "enemy_speed"},
		{"too many enemies", func(c *Config) { c.EnemyCount = MaxEnemies + 1 }, "enemy_count"},
		{"enemies overflow lane", func(c *Config) { c.Width = 7; c.EnemyCount = 6 }, "top lane"},
		{"slowdown above one", func(c *Config) { c.SlowdownFactor = 1.5 }, "slowdown_factor"},
		{"collision beyond collect", func(c *Config) { c.CollisionRadius = 40 }, "collision_radius"},
		{"nothing to collect", func(c *Config) { c.CollectiblesRequired = 0 }, "collectibles_required"},
		{"spawn fewer than required", func(c *Config) { c.CollectiblesSpawned = 5 }, "collectibles_spawned"},
		{"too many collectibles", func(c *Config) { c.CollectiblesRequired = 200 }, "do not fit"},
		{"no lives", func(c *Config) { c.InitialLives = 0 }, "initial_lives"},
		{"zero multiplier", func(c *Config) { c.InitialMultiplier = 0 }, "initial_multiplier"},
		{"negative score", func(c *Config) { c.DigScore = -1 }, "score values"},
		{"negative freeze", func(c *Config) { c.FreezeDuration = -1 }, "durations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := ValidateConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.HasPrefix(err.Error(), "config validation:") {
				t.Errorf("Expected config validation prefix, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestSpawnedCollectibles(t *testing.T) {
	config := DefaultConfig()
	if got := config.SpawnedCollectibles(); got != config.CollectiblesRequired {
		t.Errorf("Expected %d spawned, got %d", config.CollectiblesRequired, got)
	}
	config.CollectiblesSpawned = 15
	if got := config.SpawnedCollectibles(); got != 15 {
		t.Errorf("Expected 15 spawned, got %d", got)
	}
}

func TestConfigClone(t *testing.T) {
	seed := int64(5)
	config := DefaultConfig()
	config.Seed = &seed

	clone := config.Clone()
	*clone.Seed = 9
	clone.Name = "changed"

	if *config.Seed != 5 || config.Name != "classic" {
		t.Error("Expected clone to be independent of the original")
	}
}

func TestDecodeConfig(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		data := []byte(`
name: yaml-test
width: 9
height: 15
viewport_width: 270
viewport_height: 450
enemy_count: 2
seed: 12
`)
		config, err := DecodeConfig(data, ".yaml")
		if err != nil {
			t.Fatalf("Failed to decode yaml: %v", err)
		}
		if config.Name != "yaml-test" || config.Width != 9 || config.EnemyCount != 2 {
			t.Errorf("Expected yaml fields decoded, got %+v", config)
		}
		if config.Seed == nil || *config.Seed != 12 {
			t.Errorf("Expected seed 12, got %v", config.Seed)
		}
	})

	t.Run("json", func(t *testing.T) {
		config, err := DecodeConfig([]byte(`{"name":"json-test","width":11,"player_speed":100}`), ".json")
		if err != nil {
			t.Fatalf("Failed to decode json: %v", err)
		}
		if config.Name != "json-test" || config.Width != 11 || config.PlayerSpeed != 100 {
			t.Errorf("Expected json fields decoded, got %+v", config)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := DecodeConfig([]byte(`{not json`), ".json"); err == nil {
			t.Error("Expected error for malformed json")
		}
		if _, err := DecodeConfig([]byte("name: [unclosed"), ".yml"); err == nil {
			t.Error("Expected error for malformed yaml")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "engine_config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	valid := filepath.Join(tempDir, "small.yaml")
	content := `name: small
width: 9
height: 15
viewport_width: 270
viewport_height: 450
player_speed: 120
enemy_speed: 80
enemy_count: 2
slowdown_factor: 0.5
slowdown_duration: 0.5
collect_radius: 22
collision_radius: 18
center_tolerance: 2
collectibles_required: 5
initial_lives: 3
initial_multiplier: 0.5
speed_increment: 0.1
dig_score: 10
collect_score: 50
level_clear_bonus: 500
decision_interval: 0.1
freeze_duration: 1.5
level_clear_delay: 2
`
	if err := os.WriteFile(valid, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(valid)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Name != "small" || config.CollectiblesRequired != 5 {
		t.Errorf("Expected small config, got %+v", config)
	}
	if _, err := NewEngine(config); err != nil {
		t.Errorf("Expected loaded config to start a game, got %v", err)
	}

	invalid := filepath.Join(tempDir, "broken.json")
	if err := os.WriteFile(invalid, []byte(`{"name":"broken","width":3}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	if _, err := LoadConfig(filepath.Join(tempDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
