package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/digmaze/game/engine"
)

// MaxTickSeconds caps a single manual step so a huge dt cannot tunnel an
// entity through several cells at once.
const MaxTickSeconds = 0.25

// Option configures the game service
type Option func(*gameServiceImpl)

// WithInvariantChecks makes the service verify grid and arena consistency
// after every tick and log any desync.
func WithInvariantChecks() Option {
	return func(s *gameServiceImpl) { s.checkInvariants = true }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex

	checkInvariants bool
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var base *engine.Config
	if opts.ConfigName != "" {
		var err error
		base, err = s.configs.LoadConfig(opts.ConfigName)
		if err != nil {
			return nil, s.configError(opts.ConfigName, err)
		}
	} else {
		base = s.configs.GetDefault()
	}

	// Every session gets its own copy so a seed override never leaks into
	// the cached config.
	config := base.Clone()
	if opts.Seed != nil {
		seed := *opts.Seed
		config.Seed = &seed
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := opts.ConfigName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	sess.Lock()
	defer sess.Unlock()
	sess.ConfigID = configID
	sess.Live = opts.Live

	log.Printf("[SESSION] created %s config=%s seed=%d live=%v", sess.ID, configID, sess.Engine.Seed(), opts.Live)

	return s.info(sess), nil
}

// configError explains a failed config lookup, listing what is available.
func (s *gameServiceImpl) configError(name string, err error) error {
	if !errors.Is(err, ErrConfigNotFound) {
		return fmt.Errorf("failed to load config %s: %w", name, err)
	}
	availableConfigs, listErr := s.configs.ListConfigs()
	if listErr == nil && len(availableConfigs) > 0 {
		var configIDs []string
		for _, cfg := range availableConfigs {
			configIDs = append(configIDs, cfg.ConfigID)
		}
		return fmt.Errorf("config '%s' not found. Available configs: %v: %w", name, configIDs, err)
	}
	return fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", name, err)
}

// info builds the public view of a session. The caller holds the session lock.
func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		Live:           sess.Live,
		Seed:           sess.Engine.Seed(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Snapshot:       sess.Engine.Snapshot(),
		Config:         sess.Config,
	}
}

// lookup fetches a session and marks it as accessed.
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSessionNotFound, sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		result = append(result, s.info(sess))
		sess.Unlock()
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Printf("[SESSION] deleted %s", sessionID)
	return nil
}

// SetDirection records the player's desired direction
func (s *gameServiceImpl) SetDirection(ctx context.Context, sessionID, direction string) (*engine.Snapshot, error) {
	dir, ok := engine.ParseDirection(direction)
	if !ok {
		return nil, fmt.Errorf("%w: %q (use up, down, left, right or none)", ErrInvalidDirection, direction)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	sess.Engine.SetDirection(dir)
	log.Printf("[INPUT] session=%s direction=%s", sessionID, dir)

	return sess.Engine.Snapshot(), nil
}

// Advance steps a manual session by ticks fixed steps of dt seconds. It
// stops early when the game ends.
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, ticks int, dt float64) (*AdvanceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Live {
		return nil, fmt.Errorf("cannot advance session %s: %w", sessionID, ErrLiveSession)
	}

	if ticks <= 0 {
		ticks = 1
	}
	if dt <= 0 {
		dt = engine.DefaultTickSeconds
	}
	if dt > MaxTickSeconds {
		dt = MaxTickSeconds
	}

	result := &AdvanceResult{
		TicksRequested: ticks,
		Events:         make([]GameEvent, 0),
	}
	if ticks > engine.MaxAdvanceTicks {
		result.Truncated = true
		result.Limit = engine.MaxAdvanceTicks
		ticks = engine.MaxAdvanceTicks
	}

	startScore := sess.Engine.Progress().Score
	for i := 0; i < ticks; i++ {
		if sess.Engine.Progress().Phase == engine.PhaseOver {
			result.StoppedReason = "game_over"
			break
		}
		if err := ctx.Err(); err != nil {
			result.StoppedReason = "canceled"
			break
		}

		tick := s.step(sess, dt)
		result.TicksRun++
		result.Events = append(result.Events, tick...)
	}

	progress := sess.Engine.Progress()
	result.Phase = progress.Phase
	result.ScoreDelta = progress.Score - startScore
	result.Snapshot = sess.Engine.Snapshot()
	for _, d := range sess.Engine.PossibleMoves() {
		result.PossibleMoves = append(result.PossibleMoves, d.String())
	}

	log.Printf("[TICK] session=%s ran=%d/%d phase=%s score=%d events=%d",
		sessionID, result.TicksRun, result.TicksRequested, result.Phase, progress.Score, len(result.Events))

	return result, nil
}

// step runs one engine tick and records its events. The caller holds the
// session lock.
func (s *gameServiceImpl) step(sess *Session, dt float64) []GameEvent {
	tick := sess.Engine.Tick(dt)
	if s.checkInvariants {
		if err := sess.Engine.CheckInvariants(); err != nil {
			log.Printf("[TICK] session=%s tick=%d invariant violation: %v", sess.ID, tick.Tick, err)
		}
	}
	return sess.record(tick.Events)
}

// Restart begins a new game in the session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*AdvanceResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	tick := sess.Engine.Restart()
	events := sess.record(tick.Events)
	if events == nil {
		events = make([]GameEvent, 0)
	}

	return &AdvanceResult{
		Phase:    tick.Phase,
		Events:   events,
		Snapshot: sess.Engine.Snapshot(),
	}, nil
}

// GetSnapshot returns the current rendering snapshot
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.Snapshot(), nil
}

// GetEventLog returns a page of the session's event log
func (s *gameServiceImpl) GetEventLog(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.eventPage(opts), nil
}

// TickLive advances every live session by dt and reports what changed.
// Finished games are skipped until they are restarted.
func (s *gameServiceImpl) TickLive(ctx context.Context, dt float64) []*TickUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var updates []*TickUpdate
	for _, sess := range s.sessions.List() {
		if ctx.Err() != nil {
			break
		}

		sess.Lock()
		if !sess.Live || sess.Engine.Progress().Phase == engine.PhaseOver {
			sess.Unlock()
			continue
		}
		events := s.step(sess, dt)
		updates = append(updates, &TickUpdate{
			SessionID: sess.ID,
			Phase:     sess.Engine.Progress().Phase,
			Events:    events,
			Snapshot:  sess.Engine.Snapshot(),
		})
		sess.Unlock()
	}

	return updates
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.Config, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.Config) error {
	return s.configs.SaveConfig(configName, config)
}

// RunClock ticks live sessions every interval until ctx is canceled,
// handing each update to onTick.
func RunClock(ctx context.Context, svc GameService, interval time.Duration, onTick func(*TickUpdate)) {
	if interval <= 0 {
		interval = engine.DefaultTickInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > MaxTickSeconds {
				dt = MaxTickSeconds
			}
			for _, update := range svc.TickLive(ctx, dt) {
				if onTick != nil {
					onTick(update)
				}
			}
		}
	}
}
