package domain

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	StatusLobby    RoomStatus = "LOBBY"    // Waiting for players, config editable
	StatusPlaying  RoomStatus = "PLAYING"  // A game session is live
	StatusFinished RoomStatus = "FINISHED" // Winner or draw decided
)

// String returns the string representation of the status
func (s RoomStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from current status to target status is valid
func (s RoomStatus) CanTransitionTo(target RoomStatus) bool {
	validTransitions := map[RoomStatus][]RoomStatus{
		StatusLobby:    {StatusPlaying},
		StatusPlaying:  {StatusFinished},
		StatusFinished: {StatusLobby},
	}

	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Phase represents the stage of a live game session
type Phase string

const (
	PhaseCollectingWords Phase = "COLLECTING_WORDS" // PLAYER_INPUT: waiting for every player's word
	PhaseAsking          Phase = "ASKING"           // Normal rounds of questions
	PhaseFinalGuess      Phase = "FINAL_GUESS"      // One last guess per remaining player
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// TurnStatus represents where the active player is within their turn
type TurnStatus string

const (
	TurnThinking TurnStatus = "THINKING"
	TurnVoting   TurnStatus = "VOTING"
	TurnResult   TurnStatus = "RESULT"
)

// String returns the string representation of the turn status
func (t TurnStatus) String() string {
	return string(t)
}
