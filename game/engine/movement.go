package engine

// maxChainSteps bounds how many arrivals a single tick may chain.
const maxChainSteps = 4

// stepEntities advances the player, then every adversary, by dt.
func (e *GameEngine) stepEntities(dt float64) {
	if e.slowTimer > 0 {
		e.slowTimer -= dt
		if e.slowTimer < 0 {
			e.slowTimer = 0
		}
	}

	e.advance(e.player(), dt)
	for _, ent := range e.enemies() {
		if ent.Cooldown > 0 {
			ent.Cooldown -= dt
		}
		e.advance(ent, dt)
	}
}

// speedOf returns an entity's current speed in world units per second.
func (e *GameEngine) speedOf(ent *Entity) float64 {
	if ent.Kind == KindPlayer {
		if e.slowTimer > 0 {
			return e.config.PlayerSpeed * e.config.SlowdownFactor
		}
		return e.config.PlayerSpeed
	}
	return e.config.EnemySpeed * e.progress.Multiplier
}

// PlayerSpeed returns the player's current speed.
func (e *GameEngine) PlayerSpeed() float64 { return e.speedOf(e.player()) }

// EnemySpeed returns the adversaries' current speed.
func (e *GameEngine) EnemySpeed() float64 { return e.config.EnemySpeed * e.progress.Multiplier }

// Slowed reports whether the post-dig slowdown is active.
func (e *GameEngine) Slowed() bool { return e.slowTimer > 0 }

// advance runs the movement state machine of one entity for dt seconds.
// Leftover time after an arrival is spent on the next decision so movement
// chains without pausing at cell centers.
func (e *GameEngine) advance(ent *Entity, dt float64) {
	remaining := dt
	for i := 0; i < maxChainSteps && remaining > 0; i++ {
		switch ent.State {
		case StateInFlight:
			speed := e.speedOf(ent)
			cellSize := e.mapper.CellSize()
			step := speed * remaining / cellSize
			if ent.Progress+step < 1 {
				ent.Progress += step
				ent.Pos = Lerp(e.mapper.ToWorld(ent.Cell), e.mapper.ToWorld(ent.Target), ent.Progress)
				return
			}
			if ent.Contested && !e.claim(ent) {
				if ent.State == StateInFlight {
					// Held at the boundary until the opponent leaves or the
					// resolver sees the overlap.
					ent.Progress = 1
					ent.Pos = e.mapper.ToWorld(ent.Target)
					return
				}
				continue
			}
			remaining -= (1 - ent.Progress) * cellSize / speed
			e.arrive(ent)

		default:
			if ent.Wait > 0 {
				if remaining < ent.Wait {
					ent.Wait -= remaining
					return
				}
				remaining -= ent.Wait
				ent.Wait = 0
			}
			if !e.mapper.IsCentered(ent.Pos, e.config.CenterTolerance) {
				return
			}
			dir := e.decide(ent)
			if dir == DirNone || !e.begin(ent, dir) {
				return
			}
		}
	}
}

// decide returns the direction an idle entity wants to take.
func (e *GameEngine) decide(ent *Entity) Direction {
	if ent.Kind == KindPlayer {
		if e.input != DirNone && e.playerBoxedIn(ent) {
			ent.Wait = e.mapper.CellSize() / e.speedOf(ent)
			return DirNone
		}
		return e.input
	}

	if ent.Cooldown > 0 {
		return DirNone
	}
	ent.Cooldown = e.config.DecisionInterval
	dir := e.policy.Choose(e.grid, ent.Cell, ent.Last, ent.HasLast)
	if dir == DirNone {
		ent.Wait = e.mapper.CellSize() / e.speedOf(ent)
	}
	return dir
}

// playerCanTarget reports whether the player may aim at a cell: open
// terrain, a collectible, a diggable wall, or an adversary (capture).
func playerCanTarget(c Cell) bool {
	switch c.Kind {
	case Empty, Tunnel, Collectible, Wall, Enemy:
		return true
	}
	return false
}

func (e *GameEngine) playerBoxedIn(ent *Entity) bool {
	for _, d := range AllDirections {
		if c, ok := e.grid.Get(ent.Cell.Step(d)); ok && playerCanTarget(c) {
			return false
		}
	}
	return true
}

// begin moves an idle entity through Intending. It returns true when the
// entity ends up in flight.
func (e *GameEngine) begin(ent *Entity, dir Direction) bool {
	ent.State = StateIntending
	ent.Facing = dir
	target := ent.Cell.Step(dir)

	content, ok := e.grid.Get(target)
	if !ok || content.Kind == BorderWall {
		ent.State = StateIdle
		return false
	}

	switch ent.Kind {
	case KindPlayer:
		switch content.Kind {
		case Wall:
			e.grid.Set(target, TunnelCell)
			content = TunnelCell
			e.interactions = append(e.interactions, interaction{kind: interactionDig, cell: target})
		case Enemy:
			e.contest(ent, target)
			return true
		}
	case KindEnemy:
		if content.Kind == Player {
			e.contest(ent, target)
			return true
		}
		if !EnemyCanEnter(content) {
			ent.State = StateIdle
			return false
		}
	}

	// The grid sees the destination immediately; the continuous position
	// catches up during the flight.
	e.grid.Set(ent.Cell, ent.Under)
	e.grid.Set(target, ent.Tag())
	ent.Under = content
	ent.Target = target
	ent.Progress = 0
	ent.State = StateInFlight
	return true
}

// contest starts a flight toward the opponent's cell. The grid is left alone
// until the mover claims the cell on arrival.
func (e *GameEngine) contest(ent *Entity, target Position) {
	ent.Target = target
	ent.Progress = 0
	ent.State = StateInFlight
	ent.Contested = true
}

// claim tries to take the target of a contested flight. It returns false
// while the opponent still holds the cell, leaving the entity in flight, or
// after sending the entity back to its cell when something else took it.
func (e *GameEngine) claim(ent *Entity) bool {
	content, _ := e.grid.Get(ent.Target)

	opponent := Enemy
	if ent.Kind == KindEnemy {
		opponent = Player
	}
	if content.Kind == opponent {
		// Two contested flights aimed at each other have passed through
		// one another.
		if other := e.entityAt(content); other != nil && other.Contested && other.Target == ent.Cell {
			e.interactions = append(e.interactions, interaction{kind: interactionCrossing, cell: ent.Target})
		}
		return false
	}

	enterable := EnemyCanEnter(content)
	if ent.Kind == KindPlayer {
		enterable = content.IsOpen() || content.Kind == Collectible
	}
	ent.Contested = false
	if !enterable {
		ent.Target = ent.Cell
		ent.Progress = 0
		ent.Pos = e.mapper.ToWorld(ent.Cell)
		ent.State = StateIdle
		return false
	}

	e.grid.Set(ent.Cell, ent.Under)
	e.grid.Set(ent.Target, ent.Tag())
	ent.Under = content
	return true
}

// entityAt returns the entity whose tag is c.
func (e *GameEngine) entityAt(c Cell) *Entity {
	for _, ent := range e.entities {
		if ent.Tag() == c {
			return ent
		}
	}
	return nil
}

// arrive completes a flight.
func (e *GameEngine) arrive(ent *Entity) {
	ent.Last = ent.Cell
	ent.HasLast = true
	ent.Cell = ent.Target
	ent.Pos = e.mapper.ToWorld(ent.Cell)
	ent.Progress = 0
	ent.State = StateIdle
}
