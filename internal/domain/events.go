package domain

import "time"

// EventType represents the type of room event
type EventType string

const (
	EventRoomUpdated   EventType = "room_state_updated"
	EventRoomDismissed EventType = "room_dismissed"
	EventError         EventType = "error"
)

// GameEvent represents an event that occurred in a room
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	PlayerID  string      `json:"playerId,omitempty"` // If event is player-specific
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new room event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new player-specific room event
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// RoomStatePayload carries a full room snapshot
type RoomStatePayload struct {
	Room *Room `json:"room"`
}

// ErrorPayload tells one player that something they did was undone
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
