package domain

import (
	"fmt"
	"slices"
	"strings"
)

// maxDerangementAttempts bounds the shuffle-and-test loop before falling
// back to a rotation.
const maxDerangementAttempts = 100

// Rand is the randomness the engine needs. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// RandomDrawSize validates a RANDOM start and returns the category and the
// number of distinct words that must be drawn for it.
func (r *Room) RandomDrawSize(requesterID string) (category string, n int, err error) {
	if err := r.checkCanStart(requesterID, WordModeRandom); err != nil {
		return "", 0, err
	}
	if len(r.Players) < MinPlayers {
		return "", 0, ErrNotEnoughPlayers
	}
	if r.Config.Category == "" {
		return "", 0, ErrMissingCategory
	}
	return r.Config.Category, len(r.Players), nil
}

// StartRandom starts a RANDOM game with words drawn from the configured
// category. words must hold at least one distinct word per player.
func (r *Room) StartRandom(requesterID string, words []string, rng Rand) error {
	_, n, err := r.RandomDrawSize(requesterID)
	if err != nil {
		return err
	}
	if len(words) < n {
		return ErrNotEnoughWords
	}

	order := r.PlayerIDs()
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	g := newGameSession(PhaseAsking, r.Config)
	for i, id := range order {
		g.PlayerWords[id] = words[i]
	}
	g.startTurn(order[0])

	r.begin(g)
	return nil
}

// StartHostInput starts a HOST_INPUT game. The host supplies a word for every
// other player and sits out of the rotation.
func (r *Room) StartHostInput(requesterID string, words map[string]string, rng Rand) error {
	if err := r.checkCanStart(requesterID, WordModeHostInput); err != nil {
		return err
	}

	gamePlayers := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ID != requesterID {
			gamePlayers = append(gamePlayers, p.ID)
		}
	}
	if len(gamePlayers) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	for _, id := range gamePlayers {
		if strings.TrimSpace(words[id]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingWord, id)
		}
	}

	g := newGameSession(PhaseAsking, r.Config)
	g.WordMaster = requesterID
	for _, id := range gamePlayers {
		g.PlayerWords[id] = words[id]
	}
	g.startTurn(gamePlayers[rng.IntN(len(gamePlayers))])

	r.begin(g)
	return nil
}

// StartPlayerInput opens the word collection phase of a PLAYER_INPUT game
func (r *Room) StartPlayerInput(requesterID string) error {
	if err := r.checkCanStart(requesterID, WordModePlayerInput); err != nil {
		return err
	}
	if len(r.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}

	g := newGameSession(PhaseCollectingWords, r.Config)
	g.WordSubmissions = make(map[string]string)

	r.begin(g)
	return nil
}

// SubmitPlayerWord records a player's word during collection. A word that
// matches another player's pending word (ignoring case) purges every match
// and is itself discarded; the room is mutated and a *DuplicateWordError is
// returned. Once every member has submitted, words are dealt out so that
// nobody receives their own.
func (r *Room) SubmitPlayerWord(playerID, word string, rng Rand) error {
	if r.Status != StatusPlaying {
		return ErrGameNotPlaying
	}
	g := r.Game
	if g.Phase != PhaseCollectingWords {
		return ErrInvalidPhase
	}
	if !r.HasPlayer(playerID) {
		return ErrPlayerNotFound
	}

	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}

	normalized := strings.ToLower(word)
	var clashes []string
	for id, w := range g.WordSubmissions {
		if id != playerID && strings.ToLower(w) == normalized {
			clashes = append(clashes, id)
		}
	}
	if len(clashes) > 0 {
		for _, id := range clashes {
			delete(g.WordSubmissions, id)
		}
		slices.Sort(clashes)
		return &DuplicateWordError{Word: word, Cleared: clashes}
	}

	g.WordSubmissions[playerID] = word

	if r.allSubmitted() {
		r.assignSubmittedWords(rng)
	}

	return nil
}

// allSubmitted reports whether every member has a non-blank submission
func (r *Room) allSubmitted() bool {
	for _, p := range r.Players {
		if strings.TrimSpace(r.Game.WordSubmissions[p.ID]) == "" {
			return false
		}
	}
	return true
}

// assignSubmittedWords deals the submitted words as a derangement and opens
// the asking phase.
func (r *Room) assignSubmittedWords(rng Rand) {
	g := r.Game
	ids := r.PlayerIDs()

	perm := derangement(len(ids), rng)
	for i, id := range ids {
		g.PlayerWords[id] = g.WordSubmissions[ids[perm[i]]]
	}

	g.WordSubmissions = nil
	g.Phase = PhaseAsking
	g.startTurn(ids[rng.IntN(len(ids))])
}

// derangement returns a permutation of 0..n-1 with no fixed points, for
// n >= 2. Random shuffles are tried first; a rotation by one is the fallback
// and the only path for two players.
func derangement(n int, rng Rand) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	if n > 2 {
		for attempt := 0; attempt < maxDerangementAttempts; attempt++ {
			rng.Shuffle(n, func(i, j int) {
				perm[i], perm[j] = perm[j], perm[i]
			})
			if isDerangement(perm) {
				return perm
			}
		}
	}

	for i := range perm {
		perm[i] = (i + 1) % n
	}
	return perm
}

func isDerangement(perm []int) bool {
	for i, p := range perm {
		if i == p {
			return false
		}
	}
	return true
}
