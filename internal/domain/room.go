package domain

import (
	"slices"
	"strings"
	"time"
)

// Game defaults for a freshly created room
const (
	DefaultMaxRounds = 3
	DefaultTimerMin  = 3

	// MinPlayers is the smallest number of players that can play a game
	MinPlayers = 2
)

// WordMode selects how secret words are assigned
type WordMode string

const (
	WordModeRandom      WordMode = "RANDOM"       // Drawn from a category of the word source
	WordModeHostInput   WordMode = "HOST_INPUT"   // Host types a word for every other player
	WordModePlayerInput WordMode = "PLAYER_INPUT" // Players submit words, then receive someone else's
)

// Valid reports whether m is a known word mode
func (m WordMode) Valid() bool {
	return m == WordModeRandom || m == WordModeHostInput || m == WordModePlayerInput
}

// HostSelection is carried for clients; the engine does not act on it.
type HostSelection string

const (
	HostRoundRobin HostSelection = "ROUND_ROBIN"
	HostRandom     HostSelection = "RANDOM"
	HostFixed      HostSelection = "FIXED"
)

// Valid reports whether h is a known host selection
func (h HostSelection) Valid() bool {
	return h == HostRoundRobin || h == HostRandom || h == HostFixed
}

// RoomConfig holds host-editable room settings
type RoomConfig struct {
	HostSelection HostSelection `json:"hostSelection"`
	TimerMin      int           `json:"timerMin"`
	MaxRounds     int           `json:"maxRounds"`
	WordMode      WordMode      `json:"wordMode"`
	Category      string        `json:"wordCategory,omitempty"`
}

// DefaultRoomConfig returns the settings of a new room
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		HostSelection: HostRoundRobin,
		TimerMin:      DefaultTimerMin,
		MaxRounds:     DefaultMaxRounds,
		WordMode:      WordModePlayerInput,
	}
}

// ConfigPatch is a partial RoomConfig. Nil fields are left unchanged.
type ConfigPatch struct {
	HostSelection *HostSelection `json:"hostSelection,omitempty"`
	TimerMin      *int           `json:"timerMin,omitempty"`
	MaxRounds     *int           `json:"maxRounds,omitempty"`
	WordMode      *WordMode      `json:"wordMode,omitempty"`
	Category      *string        `json:"wordCategory,omitempty"`
}

func (p ConfigPatch) validate() error {
	if p.HostSelection != nil && !p.HostSelection.Valid() {
		return ErrInvalidConfig
	}
	if p.TimerMin != nil && *p.TimerMin < 0 {
		return ErrInvalidConfig
	}
	if p.MaxRounds != nil && *p.MaxRounds < 1 {
		return ErrInvalidConfig
	}
	if p.WordMode != nil && !p.WordMode.Valid() {
		return ErrInvalidConfig
	}
	return nil
}

func (c RoomConfig) merge(p ConfigPatch) RoomConfig {
	if p.HostSelection != nil {
		c.HostSelection = *p.HostSelection
	}
	if p.TimerMin != nil {
		c.TimerMin = *p.TimerMin
	}
	if p.MaxRounds != nil {
		c.MaxRounds = *p.MaxRounds
	}
	if p.WordMode != nil {
		c.WordMode = *p.WordMode
	}
	if p.Category != nil {
		c.Category = strings.TrimSpace(*p.Category)
	}
	return c
}

// Room is one game instance. Room methods are not safe for concurrent use;
// callers serialize access per room.
//
// Every method that returns an error leaves the room unchanged, except
// SubmitPlayerWord with a *DuplicateWordError.
type Room struct {
	ID        string       `json:"id"`
	Code      string       `json:"code"`
	Status    RoomStatus   `json:"status"`
	HostID    string       `json:"hostId"`
	Players   []Player     `json:"players"`
	Config    RoomConfig   `json:"config"`
	Game      *GameSession `json:"gameState,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	EndedAt   *time.Time   `json:"endedAt,omitempty"`
}

// NewRoom creates an empty room in the lobby
func NewRoom(id, code, hostID string) *Room {
	return &Room{
		ID:        id,
		Code:      code,
		Status:    StatusLobby,
		HostID:    hostID,
		Players:   make([]Player, 0),
		Config:    DefaultRoomConfig(),
		Game:      nil,
		CreatedAt: time.Now(),
	}
}

// Join adds a player. Joining twice with the same identity is a no-op.
func (r *Room) Join(p Player) {
	if r.HasPlayer(p.ID) {
		return
	}
	r.Players = append(r.Players, p)
}

// Leave removes a player and reports whether the room is now empty. A host
// departure hands the role to the first remaining player.
func (r *Room) Leave(playerID string, rng Rand) (empty bool, err error) {
	idx := r.playerIndex(playerID)
	if idx < 0 {
		return false, ErrPlayerNotFound
	}

	var order []string
	if r.Status == StatusPlaying && r.Game.Phase != PhaseCollectingWords {
		order = r.eligible()
	}

	r.Players = slices.Delete(r.Players, idx, idx+1)
	if len(r.Players) == 0 {
		return true, nil
	}

	if r.HostID == playerID {
		r.HostID = r.Players[0].ID
	}

	if r.Status == StatusPlaying {
		r.afterDeparture(playerID, order, rng)
	}

	return false, nil
}

// UpdateConfig merges patch into the room config (host only, lobby only)
func (r *Room) UpdateConfig(requesterID string, patch ConfigPatch) error {
	if r.Status != StatusLobby {
		return ErrGameAlreadyStarted
	}
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}
	if err := patch.validate(); err != nil {
		return err
	}

	r.Config = r.Config.merge(patch)
	return nil
}

// EndGame stops a running game without a winner (host only)
func (r *Room) EndGame(requesterID string) error {
	if r.Status != StatusPlaying {
		return ErrGameNotPlaying
	}
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}

	r.finish("")
	return nil
}

// Reset returns a finished room to the lobby (host only). Membership and
// scores are kept; the game session is discarded.
func (r *Room) Reset(requesterID string) error {
	if !r.Status.CanTransitionTo(StatusLobby) {
		return ErrGameNotFinished
	}
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}

	r.Status = StatusLobby
	r.Game = nil
	r.EndedAt = nil
	return nil
}

// IsHost checks if the given player is the host
func (r *Room) IsHost(playerID string) bool {
	return r.HostID == playerID
}

// HasPlayer reports whether playerID is a member
func (r *Room) HasPlayer(playerID string) bool {
	return r.playerIndex(playerID) >= 0
}

// GetPlayer returns a player by ID
func (r *Room) GetPlayer(playerID string) (*Player, error) {
	idx := r.playerIndex(playerID)
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}
	return &r.Players[idx], nil
}

// PlayerIDs returns member IDs in join order
func (r *Room) PlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// GetPlayerInfoList returns a list of all players as PlayerInfo
func (r *Room) GetPlayerInfoList() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.Players))
	for i := range r.Players {
		players = append(players, r.Players[i].ToInfo())
	}
	return players
}

// Clone returns a deep copy safe to hand to another goroutine
func (r *Room) Clone() *Room {
	c := *r
	c.Players = slices.Clone(r.Players)
	if r.EndedAt != nil {
		t := *r.EndedAt
		c.EndedAt = &t
	}
	if r.Game != nil {
		c.Game = r.Game.clone()
	}
	return &c
}

func (r *Room) playerIndex(playerID string) int {
	return slices.IndexFunc(r.Players, func(p Player) bool { return p.ID == playerID })
}

func (r *Room) checkCanStart(requesterID string, mode WordMode) error {
	if !r.Status.CanTransitionTo(StatusPlaying) {
		return ErrGameAlreadyStarted
	}
	if !r.IsHost(requesterID) {
		return ErrNotHost
	}
	if r.Config.WordMode != mode {
		return ErrWrongWordMode
	}
	return nil
}

func (r *Room) begin(g *GameSession) {
	r.Status = StatusPlaying
	r.Game = g
	r.EndedAt = nil
}

// finish ends the session. An empty winner is a draw.
func (r *Room) finish(winner string) {
	r.Status = StatusFinished
	r.Game.Winner = winner
	r.Game.CurrentTurn = ""
	now := time.Now()
	r.EndedAt = &now
}
