package domain

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// firstRand never shuffles and always picks index 0, which makes turn order
// follow join order.
type firstRand struct{}

func (firstRand) IntN(int) int                 { return 0 }
func (firstRand) Shuffle(int, func(i, j int)) {}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*31+7))
}

// newTestRoom creates a lobby whose host is the first of ids.
func newTestRoom(t *testing.T, ids ...string) *Room {
	t.Helper()
	require.NotEmpty(t, ids)
	r := NewRoom("room-id", "ABCDEF", ids[0])
	for _, id := range ids {
		r.Join(NewPlayer(id, "name-"+id))
	}
	return r
}

func setMode(t *testing.T, r *Room, mode WordMode) {
	t.Helper()
	require.NoError(t, r.UpdateConfig(r.HostID, ConfigPatch{WordMode: &mode}))
}

func setRounds(t *testing.T, r *Room, rounds int) {
	t.Helper()
	require.NoError(t, r.UpdateConfig(r.HostID, ConfigPatch{MaxRounds: &rounds}))
}

// startRandom starts a RANDOM game with join-order turns and words w-<id>.
func startRandom(t *testing.T, r *Room) {
	t.Helper()
	setMode(t, r, WordModeRandom)
	category := "test"
	require.NoError(t, r.UpdateConfig(r.HostID, ConfigPatch{Category: &category}))

	words := make([]string, 0, len(r.Players))
	for _, id := range r.PlayerIDs() {
		words = append(words, "w-"+id)
	}
	require.NoError(t, r.StartRandom(r.HostID, words, firstRand{}))
}

func apply(t *testing.T, r *Room, who string, a Action) {
	t.Helper()
	require.NoError(t, r.Apply(who, a))
}

// missGuess has the current player guess wrongly and resolves it.
func missGuess(t *testing.T, r *Room) {
	t.Helper()
	who := r.Game.CurrentTurn
	apply(t, r, who, GuessWord{Guess: "wrong"})
	apply(t, r, r.Game.CurrentTurn, NextTurn{})
}

// requireUnchanged asserts that fn fails with want and leaves r untouched.
func requireUnchanged(t *testing.T, r *Room, want error, fn func() error) {
	t.Helper()
	before := r.Clone()
	err := fn()
	require.ErrorIs(t, err, want)
	require.Equal(t, before, r)
}
