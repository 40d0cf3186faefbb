package domain

// ActionType names an in-game action
type ActionType string

const (
	ActionSubmitGuess ActionType = "SUBMIT_GUESS"
	ActionVoteGuess   ActionType = "VOTE_GUESS"
	ActionEndTurn     ActionType = "END_TURN"
	ActionGuessWord   ActionType = "GUESS_WORD"
	ActionNextTurn    ActionType = "NEXT_TURN"
)

// Action is one of SubmitGuess, VoteGuess, EndTurn, GuessWord or NextTurn.
// The set is closed: only this package can add variants.
type Action interface {
	Type() ActionType
	sealed()
}

// SubmitGuess records the active player's free-text question.
type SubmitGuess struct {
	Guess string
}

// VoteGuess records a verdict on the active player's question or guess.
type VoteGuess struct {
	Vote Vote
}

// EndTurn passes the turn to the next eligible player.
type EndTurn struct{}

// GuessWord is the active player's attempt at their own secret word.
type GuessWord struct {
	Guess string
}

// NextTurn resolves a guess once votes are in.
type NextTurn struct{}

func (SubmitGuess) Type() ActionType { return ActionSubmitGuess }
func (VoteGuess) Type() ActionType   { return ActionVoteGuess }
func (EndTurn) Type() ActionType     { return ActionEndTurn }
func (GuessWord) Type() ActionType   { return ActionGuessWord }
func (NextTurn) Type() ActionType    { return ActionNextTurn }

func (SubmitGuess) sealed() {}
func (VoteGuess) sealed()   {}
func (EndTurn) sealed()     {}
func (GuessWord) sealed()   {}
func (NextTurn) sealed()    {}
