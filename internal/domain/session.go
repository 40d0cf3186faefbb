package domain

import (
	"maps"
	"slices"
)

// GameSession is the live state of one game inside a room
type GameSession struct {
	Phase       Phase      `json:"phase"`
	TurnStatus  TurnStatus `json:"turnStatus"`
	CurrentTurn string     `json:"currentTurn,omitempty"`

	CurrentGuess string `json:"currentGuess,omitempty"` // question asked this turn
	GuessResult  bool   `json:"guessResult,omitempty"`  // true once the active player guessed their word
	GuessedWord  string `json:"guessedWord,omitempty"`

	PlayerWords     map[string]string `json:"playerWords"`
	WordSubmissions map[string]string `json:"wordSubmissions,omitempty"` // PLAYER_INPUT only, until assignment
	Category        string            `json:"wordSubmissionCategory,omitempty"`
	WordMaster      string            `json:"wordMaster,omitempty"` // HOST_INPUT host, never takes a turn

	Votes             map[string]Vote `json:"votes"`
	EliminatedPlayers []string        `json:"eliminatedPlayers"`
	FinalGuessUsed    []string        `json:"finalGuessUsed"`

	CurrentRound int `json:"currentRound"`
	MaxRounds    int `json:"maxRounds"`

	Winner string `json:"winner,omitempty"` // empty at FINISHED means a draw
}

func newGameSession(phase Phase, cfg RoomConfig) *GameSession {
	return &GameSession{
		Phase:             phase,
		TurnStatus:        TurnVoting,
		PlayerWords:       make(map[string]string),
		Category:          cfg.Category,
		Votes:             make(map[string]Vote),
		EliminatedPlayers: make([]string, 0),
		FinalGuessUsed:    make([]string, 0),
		CurrentRound:      1,
		MaxRounds:         cfg.MaxRounds,
	}
}

// IsEliminated reports whether playerID has been removed from rotation
func (g *GameSession) IsEliminated(playerID string) bool {
	return slices.Contains(g.EliminatedPlayers, playerID)
}

// HasUsedFinalGuess reports whether playerID already spent their final guess
func (g *GameSession) HasUsedFinalGuess(playerID string) bool {
	return slices.Contains(g.FinalGuessUsed, playerID)
}

// WordFor returns the secret word assigned to playerID
func (g *GameSession) WordFor(playerID string) (string, bool) {
	w, ok := g.PlayerWords[playerID]
	return w, ok
}

// skipped reports whether rotation passes over playerID in the current phase
func (g *GameSession) skipped(playerID string) bool {
	if g.IsEliminated(playerID) {
		return true
	}
	return g.Phase == PhaseFinalGuess && g.HasUsedFinalGuess(playerID)
}

func (g *GameSession) eliminate(playerID string) {
	if !g.IsEliminated(playerID) {
		g.EliminatedPlayers = append(g.EliminatedPlayers, playerID)
	}
}

func (g *GameSession) useFinalGuess(playerID string) {
	if !g.HasUsedFinalGuess(playerID) {
		g.FinalGuessUsed = append(g.FinalGuessUsed, playerID)
	}
}

// startTurn hands the turn to playerID with a clean slate
func (g *GameSession) startTurn(playerID string) {
	g.CurrentTurn = playerID
	g.TurnStatus = TurnVoting
	g.CurrentGuess = ""
	g.GuessResult = false
	g.GuessedWord = ""
	g.Votes = make(map[string]Vote)
}

func (g *GameSession) clone() *GameSession {
	c := *g
	c.PlayerWords = maps.Clone(g.PlayerWords)
	c.WordSubmissions = maps.Clone(g.WordSubmissions)
	c.Votes = maps.Clone(g.Votes)
	c.EliminatedPlayers = slices.Clone(g.EliminatedPlayers)
	c.FinalGuessUsed = slices.Clone(g.FinalGuessUsed)
	return &c
}
