package engine

// Transition is a phase change produced by Progression.Advance.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionResume
	TransitionNextLevel
)

// Progression tracks score, lives, level and the global phase. Only the
// engine's resolver and timers mutate it.
type Progression struct {
	Score      int     `json:"score"`
	Lives      int     `json:"lives"`
	Level      int     `json:"level"`
	Collected  int     `json:"collected"`
	Required   int     `json:"required"`
	Multiplier float64 `json:"multiplier"`
	Phase      Phase   `json:"phase"`

	timer float64
	rules *Config
}

// NewProgression returns the initial progression for the given rules.
func NewProgression(rules *Config) *Progression {
	p := &Progression{rules: rules}
	p.Reset()
	return p
}

// Reset restores the initial values of a new game.
func (p *Progression) Reset() {
	p.Score = 0
	p.Lives = p.rules.InitialLives
	p.Level = 1
	p.Collected = 0
	p.Required = p.rules.CollectiblesRequired
	p.Multiplier = p.rules.InitialMultiplier
	p.Phase = PhaseActive
	p.timer = 0
}

// AddScore adds non-negative points.
func (p *Progression) AddScore(points int) {
	if points > 0 {
		p.Score += points
	}
}

// RecordCollect credits a collected item and reports whether it cleared the
// level.
func (p *Progression) RecordCollect() bool {
	if p.Phase != PhaseActive {
		return false
	}
	p.AddScore(p.rules.CollectScore)
	p.Collected++
	if p.Collected < p.Required {
		return false
	}

	p.AddScore(p.rules.LevelClearBonus)
	p.Multiplier += p.rules.SpeedIncrement
	p.Phase = PhaseCleared
	p.timer = p.rules.LevelClearDelay
	return true
}

// LoseLife removes a life and returns the resulting phase: Paused while
// lives remain, Over once they run out.
func (p *Progression) LoseLife() Phase {
	if p.Phase != PhaseActive {
		return p.Phase
	}
	p.Lives--
	if p.Lives <= 0 {
		p.Lives = 0
		p.Phase = PhaseOver
		return p.Phase
	}
	p.Phase = PhasePaused
	p.timer = p.rules.FreezeDuration
	return p.Phase
}

// Advance runs the phase timer. The freeze and the level-clear delay always
// run to completion.
func (p *Progression) Advance(dt float64) Transition {
	switch p.Phase {
	case PhasePaused:
		p.timer -= dt
		if p.timer > 0 {
			return TransitionNone
		}
		p.timer = 0
		p.Phase = PhaseActive
		return TransitionResume
	case PhaseCleared:
		p.timer -= dt
		if p.timer > 0 {
			return TransitionNone
		}
		p.timer = 0
		p.Level++
		p.Collected = 0
		p.Phase = PhaseActive
		return TransitionNextLevel
	}
	return TransitionNone
}

// Remaining returns the time left on the current freeze or delay.
func (p *Progression) Remaining() float64 { return p.timer }
