package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"whoami/internal/domain"
	"whoami/internal/words"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom       MessageType = "create_room"
	MsgJoinRoom         MessageType = "join_room"
	MsgLeaveRoom        MessageType = "leave_room"
	MsgUpdateConfig     MessageType = "update_config"
	MsgStartGame        MessageType = "start_game"
	MsgSubmitWords      MessageType = "submit_words"
	MsgSubmitPlayerWord MessageType = "submit_player_word"
	MsgGameAction       MessageType = "game_action"
	MsgEndGame          MessageType = "end_game"
	MsgResetGame        MessageType = "reset_game"
	MsgGetCategories    MessageType = "get_categories"
	MsgPing             MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected        MessageType = "connected"
	MsgError            MessageType = "error"
	MsgRoomStateUpdated MessageType = MessageType(domain.EventRoomUpdated)
	MsgRoomDismissed    MessageType = MessageType(domain.EventRoomDismissed)
	MsgCategoriesList   MessageType = "categories_list"
	MsgPong             MessageType = "pong"
)

// ClientMessage represents a message from client to server. Payload is
// decoded once Type is known.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CreateRoomPayload is the payload for create_room message
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload is the payload for join_room message
type JoinRoomPayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RoomPayload carries just a room code (start_game, end_game, reset_game)
type RoomPayload struct {
	Code string `json:"code"`
}

// UpdateConfigPayload is the payload for update_config message
type UpdateConfigPayload struct {
	Code   string             `json:"code"`
	Config domain.ConfigPatch `json:"config"`
}

// SubmitWordsPayload is the payload for submit_words message
type SubmitWordsPayload struct {
	Code        string            `json:"code"`
	PlayerWords map[string]string `json:"playerWords"`
}

// SubmitPlayerWordPayload is the payload for submit_player_word message
type SubmitPlayerWordPayload struct {
	Code string `json:"code"`
	Word string `json:"word"`
}

// GameActionPayload is the payload for game_action message
type GameActionPayload struct {
	Code   string     `json:"code"`
	Action WireAction `json:"action"`
}

// WireAction is a game action as clients send it
type WireAction struct {
	Type  domain.ActionType `json:"type"`
	Guess string            `json:"guess,omitempty"`
	Vote  string            `json:"vote,omitempty"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

// RoomDismissedPayload is the payload for room_dismissed message
type RoomDismissedPayload struct {
	Code string `json:"code"`
}

// CategoriesPayload is the payload for categories_list message
type CategoriesPayload struct {
	Categories []words.Category `json:"categories"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeValidation     = "VALIDATION_FAILED"
	ErrCodeDuplicateWord  = "DUPLICATE_WORD"
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeRateLimited    = "RATE_LIMITED"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// errInvalidAction marks a wire action that cannot become a domain action
var errInvalidAction = errors.New("invalid action")

// ToDomain validates a wire action and converts it into the closed set of
// domain actions
func (a WireAction) ToDomain() (domain.Action, error) {
	switch a.Type {
	case domain.ActionSubmitGuess:
		if strings.TrimSpace(a.Guess) == "" {
			return nil, fmt.Errorf("%w: guess is required", errInvalidAction)
		}
		return domain.SubmitGuess{Guess: a.Guess}, nil
	case domain.ActionVoteGuess:
		vote, err := domain.ParseVote(a.Vote)
		if err != nil {
			return nil, fmt.Errorf("%w: vote must be YES, NO or MAYBE", errInvalidAction)
		}
		return domain.VoteGuess{Vote: vote}, nil
	case domain.ActionEndTurn:
		return domain.EndTurn{}, nil
	case domain.ActionGuessWord:
		if strings.TrimSpace(a.Guess) == "" {
			return nil, fmt.Errorf("%w: guess is required", errInvalidAction)
		}
		return domain.GuessWord{Guess: a.Guess}, nil
	case domain.ActionNextTurn:
		return domain.NextTurn{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown action type %q", errInvalidAction, a.Type)
	}
}

// decodePayload unmarshals raw into v. An absent payload decodes as empty.
func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// errorCode maps a domain error onto a wire error code
func errorCode(err error) string {
	var dup *domain.DuplicateWordError
	if errors.As(err, &dup) {
		return ErrCodeDuplicateWord
	}

	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return ErrCodeNotFound
	case domain.KindUnauthorized:
		return ErrCodeUnauthorized
	case domain.KindInvalidState:
		return ErrCodeInvalidState
	case domain.KindValidation:
		return ErrCodeValidation
	default:
		return ErrCodeInternalError
	}
}
