package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/digmaze/game/engine"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrLiveSession      = errors.New("session is driven by the server clock")
	// ErrSessionNotFound is returned by SessionManager implementations for
	// unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfigNotFound is returned by ConfigManager implementations for
	// unknown config names.
	ErrConfigNotFound = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SetDirection(ctx context.Context, sessionID, direction string) (*engine.Snapshot, error)
	Advance(ctx context.Context, sessionID string, ticks int, dt float64) (*AdvanceResult, error)
	Restart(ctx context.Context, sessionID string) (*AdvanceResult, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetEventLog(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Config, error)
	SaveConfig(ctx context.Context, configName string, config *engine.Config) error

	// Clock
	TickLive(ctx context.Context, dt float64) []*TickUpdate
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.Config) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Config
	SaveConfig(name string, config *engine.Config) error
}

// Session represents an active game session. The engine is not safe for
// concurrent use; every access goes through the session lock.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.Config
	ConfigID       string
	Live           bool
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu     sync.Mutex
	events []GameEvent
}

// Lock acquires exclusive access to the session's engine.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's engine.
func (s *Session) Unlock() { s.mu.Unlock() }
