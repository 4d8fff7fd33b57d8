package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/leonelquinteros/gotext"

	"github.com/wricardo/digmaze/game/engine"
)

// maxEventLog bounds the per-session event log; the oldest entries go first.
const maxEventLog = 1000

// ConfigureLocale loads translations for event messages from dir. Without a
// call the untranslated source strings are used.
func ConfigureLocale(dir, lang string) {
	if dir == "" {
		return
	}
	if lang == "" {
		lang = "en_US"
	}
	gotext.Configure(dir, lang, "digmaze")
}

// eventMessage returns the human-readable text for an engine event.
func eventMessage(ev engine.Event) string {
	switch ev.Type {
	case engine.EventGameStart:
		return gotext.Get("Level %d started with %d lives", ev.Level, ev.Lives)
	case engine.EventDig:
		return gotext.Get("Dug through the wall at %s", ev.Cell)
	case engine.EventCollect:
		return gotext.Get("Collected a gem at %s, score %d", ev.Cell, ev.Score)
	case engine.EventLifeLost:
		return gotext.Get("Caught at %s, %d lives left", ev.Cell, ev.Lives)
	case engine.EventLevelCleared:
		return gotext.Get("Level %d cleared, score %d", ev.Level, ev.Score)
	case engine.EventGameOver:
		return gotext.Get("Game over with score %d", ev.Score)
	}
	return string(ev.Type)
}

// record converts engine events to log entries and appends them to the
// session log. The caller holds the session lock.
func (s *Session) record(events []engine.Event) []GameEvent {
	if len(events) == 0 {
		return nil
	}

	now := time.Now()
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, GameEvent{
			ID:        uuid.NewString(),
			Type:      ev.Type,
			Message:   eventMessage(ev),
			Tick:      ev.Tick,
			Cell:      ev.Cell,
			Score:     ev.Score,
			Lives:     ev.Lives,
			Level:     ev.Level,
			Timestamp: now,
		})
	}

	s.events = append(s.events, out...)
	if over := len(s.events) - maxEventLog; over > 0 {
		s.events = append([]GameEvent(nil), s.events[over:]...)
	}
	return out
}

// eventPage paginates the session log. The caller holds the session lock.
func (s *Session) eventPage(opts HistoryOptions) *HistoryResponse {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > maxEventLog {
		opts.Limit = maxEventLog
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	events := make([]GameEvent, len(s.events))
	copy(events, s.events)
	if opts.Order != "asc" {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}

	total := len(events)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	// Pages past the end are empty.
	start := total
	if opts.Page <= totalPages {
		start = (opts.Page - 1) * opts.Limit
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return &HistoryResponse{
		Events:      events[start:end],
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}
