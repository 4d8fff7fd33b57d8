package engine

// EventType names a discrete game event. Audio collaborators map these to
// sound effects.
type EventType string

const (
	EventGameStart    EventType = "game_start"
	EventDig          EventType = "dig"
	EventCollect      EventType = "collect"
	EventLifeLost     EventType = "life_lost"
	EventLevelCleared EventType = "level_cleared"
	EventGameOver     EventType = "game_over"
)

// Event is emitted during a tick.
type Event struct {
	Type  EventType `json:"type"`
	Tick  uint64    `json:"tick"`
	Cell  Position  `json:"cell"`
	Score int       `json:"score"`
	Lives int       `json:"lives"`
	Level int       `json:"level"`
}

// TickResult reports what a single tick did.
type TickResult struct {
	Tick   uint64  `json:"tick"`
	Phase  Phase   `json:"phase"`
	Events []Event `json:"events,omitempty"`
}

// interactionKind classifies movement outcomes the resolver must handle.
type interactionKind int

const (
	interactionDig interactionKind = iota
	interactionCrossing
)

type interaction struct {
	kind interactionKind
	cell Position
}
