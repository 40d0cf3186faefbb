package domain

import (
	"slices"
	"strings"
)

// Apply runs an in-game action for requesterID
func (r *Room) Apply(requesterID string, action Action) error {
	if r.Status != StatusPlaying {
		return ErrGameNotPlaying
	}
	if r.Game.Phase == PhaseCollectingWords {
		return ErrInvalidPhase
	}

	switch a := action.(type) {
	case SubmitGuess:
		return r.submitGuess(requesterID, a)
	case VoteGuess:
		return r.voteGuess(requesterID, a)
	case EndTurn:
		return r.endTurn(requesterID)
	case GuessWord:
		return r.guessWord(requesterID, a)
	case NextTurn:
		return r.nextTurn(requesterID)
	default:
		return ErrUnknownAction
	}
}

func (r *Room) submitGuess(requesterID string, a SubmitGuess) error {
	g := r.Game
	if g.CurrentTurn != requesterID {
		return ErrNotYourTurn
	}
	if g.TurnStatus != TurnThinking {
		return ErrInvalidTurnStatus
	}
	guess := strings.TrimSpace(a.Guess)
	if guess == "" {
		return ErrEmptyGuess
	}

	g.CurrentGuess = guess
	g.TurnStatus = TurnVoting
	g.Votes = make(map[string]Vote)
	return nil
}

func (r *Room) voteGuess(requesterID string, a VoteGuess) error {
	g := r.Game
	if !a.Vote.Valid() {
		return ErrInvalidVote
	}
	if g.CurrentTurn == requesterID {
		return ErrCannotVoteOwnTurn
	}
	if g.TurnStatus != TurnVoting && g.TurnStatus != TurnResult {
		return ErrInvalidTurnStatus
	}
	if !r.HasPlayer(requesterID) {
		return ErrPlayerNotFound
	}

	g.Votes[requesterID] = a.Vote
	return nil
}

func (r *Room) endTurn(requesterID string) error {
	g := r.Game
	if g.CurrentTurn != requesterID {
		return ErrNotYourTurn
	}
	if g.TurnStatus != TurnVoting {
		return ErrInvalidTurnStatus
	}
	if g.Phase == PhaseFinalGuess {
		return ErrInvalidPhase
	}

	order := r.eligible()
	r.advance(order, slices.Index(order, g.CurrentTurn))
	return nil
}

func (r *Room) guessWord(requesterID string, a GuessWord) error {
	g := r.Game
	if g.CurrentTurn != requesterID {
		return ErrNotYourTurn
	}
	if g.TurnStatus != TurnVoting {
		return ErrInvalidTurnStatus
	}
	guess := strings.TrimSpace(a.Guess)
	if guess == "" {
		return ErrEmptyGuess
	}
	if g.IsEliminated(requesterID) {
		return ErrPlayerEliminated
	}

	g.TurnStatus = TurnResult
	g.GuessResult = true
	g.GuessedWord = guess
	g.Votes = make(map[string]Vote)
	return nil
}

// nextTurn resolves a guess from the votes cast on it. Any member may
// resolve, not only the guesser.
func (r *Room) nextTurn(requesterID string) error {
	g := r.Game
	if !r.HasPlayer(requesterID) {
		return ErrPlayerNotFound
	}
	if g.TurnStatus != TurnResult {
		return ErrInvalidTurnStatus
	}

	current := g.CurrentTurn
	if g.GuessResult && TallyVotes(g.Votes).Accepted() {
		if p, err := r.GetPlayer(current); err == nil {
			p.AddPoint()
		}
		r.finish(current)
		return nil
	}

	order := r.eligible()
	from := slices.Index(order, current)

	if g.Phase == PhaseFinalGuess {
		g.useFinalGuess(current)
		r.advance(order, from)
		return nil
	}

	g.eliminate(current)
	if r.remaining(order) == 0 {
		r.finish("")
		return nil
	}
	r.advance(order, from)
	return nil
}

// eligible returns the rotation order: members holding a secret word, in
// join order, minus the word master.
func (r *Room) eligible() []string {
	g := r.Game
	order := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ID == g.WordMaster {
			continue
		}
		if _, ok := g.WordFor(p.ID); !ok {
			continue
		}
		order = append(order, p.ID)
	}
	return order
}

// remaining counts players in order that rotation can still land on
func (r *Room) remaining(order []string) int {
	n := 0
	for _, id := range order {
		if !r.Game.skipped(id) {
			n++
		}
	}
	return n
}

// advance moves the turn forward from position from in order. Outside the
// final guess phase, landing at or before from completes a round, and
// completing the last round opens the final guess phase instead. With
// nobody left to take a turn the game ends in a draw.
func (r *Room) advance(order []string, from int) {
	g := r.Game
	next, ok := scan(order, from, g.skipped)
	if !ok {
		r.finish("")
		return
	}

	if g.Phase != PhaseFinalGuess && next <= from {
		g.CurrentRound++
		if g.CurrentRound > g.MaxRounds {
			r.enterFinalGuess(order)
			return
		}
	}

	g.startTurn(order[next])
}

// enterFinalGuess gives the first remaining player in rotation order the
// first final guess
func (r *Room) enterFinalGuess(order []string) {
	g := r.Game
	g.Phase = PhaseFinalGuess

	first, ok := scan(order, len(order)-1, g.skipped)
	if !ok {
		r.finish("")
		return
	}
	g.startTurn(order[first])
}

// afterDeparture repairs a live session after playerID left. order is the
// rotation as it was before the departure.
func (r *Room) afterDeparture(playerID string, order []string, rng Rand) {
	g := r.Game
	delete(g.Votes, playerID)

	if g.Phase == PhaseCollectingWords {
		delete(g.WordSubmissions, playerID)
		switch {
		case len(r.Players) < MinPlayers:
			r.finish("")
		case r.allSubmitted():
			r.assignSubmittedWords(rng)
		}
		return
	}

	from := slices.Index(order, playerID)
	if from < 0 {
		return
	}
	g.eliminate(playerID)

	if r.remaining(order) == 0 {
		r.finish("")
		return
	}
	if g.CurrentTurn == playerID {
		r.advance(order, from)
	}
}

// scan returns the index of the first entry after start, wrapping around,
// that skip does not reject. start itself is tried last; a start of -1
// scans from the beginning.
func scan(order []string, start int, skip func(string) bool) (int, bool) {
	n := len(order)
	for i := 1; i <= n; i++ {
		idx := (start + i) % n
		if !skip(order[idx]) {
			return idx, true
		}
	}
	return -1, false
}
