package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerangement(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for seed := uint64(0); seed < 200; seed++ {
			perm := derangement(n, seeded(seed))

			require.Len(t, perm, n)
			require.True(t, isDerangement(perm), "n=%d seed=%d perm=%v", n, seed, perm)

			sorted := slices.Sorted(slices.Values(perm))
			for i, v := range sorted {
				require.Equal(t, i, v, "not a permutation: %v", perm)
			}
		}
	}
}

func TestDerangementFallsBackToRotation(t *testing.T) {
	// firstRand never shuffles, so every attempt is the identity
	assert.Equal(t, []int{1, 2, 3, 0}, derangement(4, firstRand{}))
	assert.Equal(t, []int{1, 0}, derangement(2, firstRand{}))
}

func TestStartRandom(t *testing.T) {
	r := newTestRoom(t, "a", "b", "c")
	setMode(t, r, WordModeRandom)

	_, _, err := r.RandomDrawSize("a")
	assert.ErrorIs(t, err, ErrMissingCategory)

	category := "animals"
	require.NoError(t, r.UpdateConfig("a", ConfigPatch{Category: &category}))

	got, n, err := r.RandomDrawSize("a")
	require.NoError(t, err)
	assert.Equal(t, "animals", got)
	assert.Equal(t, 3, n)

	require.NoError(t, r.StartRandom("a", []string{"cat", "dog", "owl"}, seeded(7)))

	assert.Equal(t, StatusPlaying, r.Status)
	g := r.Game
	assert.Equal(t, PhaseAsking, g.Phase)
	assert.Equal(t, TurnVoting, g.TurnStatus)
	assert.Equal(t, 1, g.CurrentRound)
	assert.Equal(t, DefaultMaxRounds, g.MaxRounds)
	assert.Equal(t, "animals", g.Category)
	assert.Contains(t, r.PlayerIDs(), g.CurrentTurn)
	assert.ElementsMatch(t, []string{"cat", "dog", "owl"}, slices.Collect(maps.Values(g.PlayerWords)))
}

func TestStartRandomNotEnoughWords(t *testing.T) {
	r := newTestRoom(t, "a", "b")
	setMode(t, r, WordModeRandom)
	category := "tiny"
	require.NoError(t, r.UpdateConfig("a", ConfigPatch{Category: &category}))

	requireUnchanged(t, r, ErrNotEnoughWords, func() error {
		return r.StartRandom("a", []string{"only"}, seeded(1))
	})
	assert.Equal(t, StatusLobby, r.Status)
	assert.Nil(t, r.Game)
}

func TestStartRejections(t *testing.T) {
	t.Run("wrong mode", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		requireUnchanged(t, r, ErrWrongWordMode, func() error {
			return r.StartRandom("a", []string{"x", "y"}, seeded(1))
		})
		requireUnchanged(t, r, ErrWrongWordMode, func() error {
			return r.StartHostInput("a", map[string]string{"b": "x"}, seeded(1))
		})
	})

	t.Run("non-host", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		requireUnchanged(t, r, ErrNotHost, func() error { return r.StartPlayerInput("b") })
	})

	t.Run("alone", func(t *testing.T) {
		r := newTestRoom(t, "a")
		requireUnchanged(t, r, ErrNotEnoughPlayers, func() error { return r.StartPlayerInput("a") })
	})

	t.Run("already started", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		require.NoError(t, r.StartPlayerInput("a"))
		requireUnchanged(t, r, ErrGameAlreadyStarted, func() error { return r.StartPlayerInput("a") })
	})
}

func TestStartHostInput(t *testing.T) {
	r := newTestRoom(t, "a", "b", "c")
	setMode(t, r, WordModeHostInput)

	require.NoError(t, r.StartHostInput("a", map[string]string{"b": "cat", "c": "dog", "stranger": "x"}, seeded(3)))

	g := r.Game
	assert.Equal(t, PhaseAsking, g.Phase)
	assert.Equal(t, "a", g.WordMaster)
	assert.Equal(t, map[string]string{"b": "cat", "c": "dog"}, g.PlayerWords)
	assert.Contains(t, []string{"b", "c"}, g.CurrentTurn)
	assert.Equal(t, []string{"b", "c"}, r.eligible())
}

func TestStartHostInputRejections(t *testing.T) {
	t.Run("missing word", func(t *testing.T) {
		r := newTestRoom(t, "a", "b", "c")
		setMode(t, r, WordModeHostInput)
		requireUnchanged(t, r, ErrMissingWord, func() error {
			return r.StartHostInput("a", map[string]string{"b": "cat", "c": "  "}, seeded(1))
		})
	})

	t.Run("host plus one", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		setMode(t, r, WordModeHostInput)
		requireUnchanged(t, r, ErrNotEnoughPlayers, func() error {
			return r.StartHostInput("a", map[string]string{"b": "cat"}, seeded(1))
		})
	})
}

func TestPlayerInputDealsEveryoneAnotherWord(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		ids := []string{"a", "b", "c", "d", "e"}[:2+int(seed%4)]
		r := newTestRoom(t, ids...)
		require.NoError(t, r.StartPlayerInput("a"))
		rng := seeded(seed)

		submitted := make(map[string]string, len(ids))
		for _, id := range ids {
			submitted[id] = "word-" + id
			require.NoError(t, r.SubmitPlayerWord(id, submitted[id], rng))
		}

		g := r.Game
		require.Equal(t, PhaseAsking, g.Phase, "seed=%d", seed)
		assert.Nil(t, g.WordSubmissions)
		assert.Contains(t, ids, g.CurrentTurn)
		assert.ElementsMatch(t, slices.Collect(maps.Values(submitted)), slices.Collect(maps.Values(g.PlayerWords)))
		for _, id := range ids {
			assert.NotEqual(t, submitted[id], g.PlayerWords[id], "seed=%d player=%s", seed, id)
		}
	}
}

func TestSubmitPlayerWordDuplicate(t *testing.T) {
	r := newTestRoom(t, "a", "b")
	require.NoError(t, r.StartPlayerInput("a"))
	rng := seeded(5)

	require.NoError(t, r.SubmitPlayerWord("a", "apple", rng))

	err := r.SubmitPlayerWord("b", "Apple", rng)
	var dup *DuplicateWordError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "Apple", dup.Word)
	assert.Equal(t, []string{"a"}, dup.Cleared)
	assert.ErrorIs(t, err, ErrDuplicateWord)
	assert.Equal(t, KindValidation, KindOf(err))

	assert.Empty(t, r.Game.WordSubmissions)
	assert.Equal(t, PhaseCollectingWords, r.Game.Phase)

	require.NoError(t, r.SubmitPlayerWord("b", "pear", rng))
	require.NoError(t, r.SubmitPlayerWord("a", "apple", rng))

	assert.Equal(t, PhaseAsking, r.Game.Phase)
	assert.Equal(t, map[string]string{"a": "pear", "b": "apple"}, r.Game.PlayerWords)
}

func TestSubmitPlayerWordReplacesOwn(t *testing.T) {
	r := newTestRoom(t, "a", "b", "c")
	require.NoError(t, r.StartPlayerInput("a"))
	rng := seeded(9)

	require.NoError(t, r.SubmitPlayerWord("a", "river", rng))
	require.NoError(t, r.SubmitPlayerWord("a", " RIVER ", rng))

	assert.Equal(t, map[string]string{"a": "RIVER"}, r.Game.WordSubmissions)
}

func TestSubmitPlayerWordRejections(t *testing.T) {
	t.Run("lobby", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		requireUnchanged(t, r, ErrGameNotPlaying, func() error {
			return r.SubmitPlayerWord("a", "x", seeded(1))
		})
	})

	t.Run("stranger", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		require.NoError(t, r.StartPlayerInput("a"))
		requireUnchanged(t, r, ErrPlayerNotFound, func() error {
			return r.SubmitPlayerWord("zzz", "x", seeded(1))
		})
	})

	t.Run("blank", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		require.NoError(t, r.StartPlayerInput("a"))
		requireUnchanged(t, r, ErrEmptyWord, func() error {
			return r.SubmitPlayerWord("a", "   ", seeded(1))
		})
	})

	t.Run("after assignment", func(t *testing.T) {
		r := newTestRoom(t, "a", "b")
		require.NoError(t, r.StartPlayerInput("a"))
		require.NoError(t, r.SubmitPlayerWord("a", "x", seeded(1)))
		require.NoError(t, r.SubmitPlayerWord("b", "y", seeded(1)))
		requireUnchanged(t, r, ErrInvalidPhase, func() error {
			return r.SubmitPlayerWord("a", "z", seeded(1))
		})
	})
}

func TestCollectingRejectsGameActions(t *testing.T) {
	r := newTestRoom(t, "a", "b")
	require.NoError(t, r.StartPlayerInput("a"))

	for _, a := range []Action{EndTurn{}, GuessWord{Guess: "x"}, NextTurn{}, VoteGuess{Vote: VoteYes}} {
		t.Run(fmt.Sprint(a.Type()), func(t *testing.T) {
			requireUnchanged(t, r, ErrInvalidPhase, func() error { return r.Apply("a", a) })
		})
	}
}
