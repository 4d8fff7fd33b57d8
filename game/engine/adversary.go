package engine

import "math/rand"

// AdversaryPolicy picks an adversary's next direction at a decision point.
// It is reactive-random: no lookahead and no path search.
type AdversaryPolicy struct {
	rng *rand.Rand
}

// NewAdversaryPolicy creates a policy drawing from rng.
func NewAdversaryPolicy(rng *rand.Rand) *AdversaryPolicy {
	return &AdversaryPolicy{rng: rng}
}

// EnemyCanEnter reports whether an adversary may target a cell with the given
// content. Heading into the player's cell is contested; whether it ends in a
// capture is left to the collision radius.
func EnemyCanEnter(c Cell) bool {
	switch c.Kind {
	case Empty, Tunnel, Collectible, Player:
		return true
	}
	return false
}

// Options returns every direction from cell whose target an adversary may
// enter, in AllDirections order.
func (p *AdversaryPolicy) Options(grid *Grid, from Position) []Direction {
	var out []Direction
	for _, d := range AllDirections {
		c, ok := grid.Get(from.Step(d))
		if ok && EnemyCanEnter(c) {
			out = append(out, d)
		}
	}
	return out
}

// Choose returns the direction for an adversary at from whose previous cell
// was last. Backtracking is only chosen when nothing else is open; a single
// remaining option is taken without a random draw. DirNone means wait.
func (p *AdversaryPolicy) Choose(grid *Grid, from, last Position, hasLast bool) Direction {
	options := p.Options(grid, from)
	if len(options) == 0 {
		return DirNone
	}

	back := DirNone
	if hasLast {
		back = DirectionBetween(from, last)
	}
	forward := make([]Direction, 0, len(options))
	canReturn := false
	for _, d := range options {
		if d == back {
			canReturn = true
			continue
		}
		forward = append(forward, d)
	}

	switch len(forward) {
	case 0:
		if canReturn {
			return back
		}
		return DirNone
	case 1:
		return forward[0]
	default:
		return forward[p.rng.Intn(len(forward))]
	}
}
