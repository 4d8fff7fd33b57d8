package engine

// resolve applies the interactions produced by this tick's movement, then
// checks collection and capture against continuous positions.
func (e *GameEngine) resolve() {
	player := e.player()
	captured := false

	for _, in := range e.interactions {
		switch in.kind {
		case interactionDig:
			e.progress.AddScore(e.config.DigScore)
			// A new dig restarts the window; the factor never compounds.
			e.slowTimer = e.config.SlowdownDuration
			e.emit(EventDig, in.cell)
		case interactionCrossing:
			captured = true
		}
	}
	e.interactions = e.interactions[:0]

	for _, item := range e.collectibles {
		if !item.Active {
			continue
		}
		if Distance(player.Pos, e.mapper.ToWorld(item.Cell)) > e.config.CollectRadius {
			continue
		}
		e.collect(item)
		if e.progress.Phase == PhaseCleared {
			e.emit(EventLevelCleared, player.Cell)
			return
		}
	}

	if !captured {
		for _, ent := range e.enemies() {
			if Distance(player.Pos, ent.Pos) <= e.config.CollisionRadius {
				captured = true
				break
			}
		}
	}

	if captured {
		e.capture()
	}
}

// collect removes an item from the board, wherever it currently sits, and
// credits it.
func (e *GameEngine) collect(item *CollectibleItem) {
	item.Active = false
	tag := CollectibleCell(item.ID)
	if c, _ := e.grid.Get(item.Cell); c == tag {
		e.grid.Set(item.Cell, item.left())
	} else {
		for _, ent := range e.entities {
			if ent.Under == tag {
				ent.Under = item.left()
			}
		}
	}

	e.progress.RecordCollect()
	e.emit(EventCollect, item.Cell)
}

// capture costs the player a life and freezes the board, or ends the game.
func (e *GameEngine) capture() {
	cell := e.player().Cell
	phase := e.progress.LoseLife()
	e.input = DirNone
	e.emit(EventLifeLost, cell)
	if phase == PhaseOver {
		e.emit(EventGameOver, cell)
	}
}
