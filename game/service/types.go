package service

import (
	"time"

	"github.com/wricardo/digmaze/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	ConfigName     string           `json:"config_name"`
	Live           bool             `json:"live"`
	Seed           int64            `json:"seed"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
	Config         *engine.Config   `json:"config"`
}

// CreateSessionOptions configures a new session
type CreateSessionOptions struct {
	ConfigName string `json:"config_id,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
	// Live sessions are ticked by the server clock; manual sessions only
	// move through Advance.
	Live bool `json:"live,omitempty"`
}

// AdvanceResult contains the result of stepping a session
type AdvanceResult struct {
	TicksRequested int              `json:"ticks_requested"`
	TicksRun       int              `json:"ticks_run"`
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`
	Phase          engine.Phase     `json:"phase"`
	ScoreDelta     int              `json:"score_delta"`
	Events         []GameEvent      `json:"events"`
	Snapshot       *engine.Snapshot `json:"snapshot"`
	PossibleMoves  []string         `json:"possible_moves,omitempty"`
}

// GameEvent is a logged engine event
type GameEvent struct {
	ID        string           `json:"id"`
	Type      engine.EventType `json:"type"` // "game_start", "dig", "collect", "life_lost", "level_cleared", "game_over"
	Message   string           `json:"message"`
	Tick      uint64           `json:"tick"`
	Cell      engine.Position  `json:"cell"`
	Score     int              `json:"score"`
	Lives     int              `json:"lives"`
	Level     int              `json:"level"`
	Timestamp time.Time        `json:"timestamp"`
}

// TickUpdate is produced for every live session on each clock tick
type TickUpdate struct {
	SessionID string           `json:"session_id"`
	Phase     engine.Phase     `json:"phase"`
	Events    []GameEvent      `json:"events,omitempty"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
}

// HistoryOptions configures event log retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a paginated event log
type HistoryResponse struct {
	Events      []GameEvent `json:"events"`
	TotalEvents int         `json:"total_events"`
	Page        int         `json:"page"`
	PageSize    int         `json:"page_size"`
	TotalPages  int         `json:"total_pages"`
	HasNext     bool        `json:"has_next"`
	HasPrevious bool        `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename             string `json:"filename"`
	ConfigID             string `json:"config_id"` // The identifier to use for session creation
	Name                 string `json:"name"`      // Display name
	Description          string `json:"description"`
	Width                int    `json:"width"`
	Height               int    `json:"height"`
	EnemyCount           int    `json:"enemy_count"`
	CollectiblesRequired int    `json:"collectibles_required"`
	InitialLives         int    `json:"initial_lives"`
}
