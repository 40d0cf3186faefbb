package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"whoami/internal/domain"
	"whoami/internal/words"
)

// DuplicateWordCode is the error code sent to players whose word was purged
const DuplicateWordCode = "DUPLICATE_WORD"

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetPlayerID() string
	Close() error
}

// RoomSession owns one room and admits one mutation at a time. Every
// successful mutation queues a snapshot of the room for broadcast.
//
// Cross-room scans (leave, counts, stale sweep) read a membership view that
// is published after each mutation under its own lock, so they never wait on
// a mutation in progress, such as a word draw.
type RoomSession struct {
	room   *domain.Room
	mu     sync.Mutex
	rng    domain.Rand
	words  words.Source
	closed bool

	viewMu       sync.RWMutex
	members      map[string]struct{}
	lastActivity time.Time
	dismissed    bool

	clients   map[string]ClientConnection // playerID -> client
	clientsMu sync.RWMutex
	logger    *slog.Logger

	// Event channel for broadcasting
	events    chan *domain.GameEvent
	done      chan struct{}
	closeOnce sync.Once
}

func newRoomSession(room *domain.Room, src words.Source, rng domain.Rand, logger *slog.Logger) *RoomSession {
	s := &RoomSession{
		room:         room,
		rng:          rng,
		words:        src,
		members:      make(map[string]struct{}),
		lastActivity: time.Now(),
		clients:      make(map[string]ClientConnection),
		logger:       logger.With("roomCode", room.Code),
		events:       make(chan *domain.GameEvent, 100),
		done:         make(chan struct{}),
	}

	s.publishView()
	go s.eventLoop()

	return s
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// Snapshot returns a copy of the room
func (s *RoomSession) Snapshot() *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Clone()
}

// PlayerCount returns the number of members as of the last mutation
func (s *RoomSession) PlayerCount() int {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return len(s.members)
}

// HasPlayer reports whether playerID was a member as of the last mutation.
// It does not wait for a mutation in progress.
func (s *RoomSession) HasPlayer(playerID string) bool {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	_, ok := s.members[playerID]
	return !s.dismissed && ok
}

// publishView copies membership out of the room (caller must hold mu)
func (s *RoomSession) publishView() {
	members := make(map[string]struct{}, len(s.room.Players))
	for _, p := range s.room.Players {
		members[p.ID] = struct{}{}
	}

	s.viewMu.Lock()
	s.members = members
	s.lastActivity = time.Now()
	s.dismissed = s.closed
	s.viewMu.Unlock()
}

// Join adds a player to the room
func (s *RoomSession) Join(player domain.Player) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		r.Join(player)
		return nil
	})
}

// UpdateConfig applies a config patch (host only, lobby only)
func (s *RoomSession) UpdateConfig(requesterID string, patch domain.ConfigPatch) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		return r.UpdateConfig(requesterID, patch)
	})
}

// StartGame starts a game in the room's configured word mode. RANDOM draws
// from the word source while the room is held, so nothing else can touch the
// room until the draw resolves. HOST_INPUT games are started by SubmitWords.
func (s *RoomSession) StartGame(ctx context.Context, requesterID string) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		switch r.Config.WordMode {
		case domain.WordModePlayerInput:
			return r.StartPlayerInput(requesterID)
		case domain.WordModeRandom:
			return s.startRandom(ctx, r, requesterID)
		case domain.WordModeHostInput:
			if r.Status != domain.StatusLobby {
				return domain.ErrGameAlreadyStarted
			}
			if !r.IsHost(requesterID) {
				return domain.ErrNotHost
			}
			return domain.ErrWordsRequired
		default:
			return domain.ErrInvalidConfig
		}
	})
}

func (s *RoomSession) startRandom(ctx context.Context, r *domain.Room, requesterID string) error {
	category, n, err := r.RandomDrawSize(requesterID)
	if err != nil {
		return err
	}

	drawn, err := s.words.Draw(ctx, category, n)
	if err != nil {
		return fmt.Errorf("draw words from %q: %w", category, err)
	}

	return r.StartRandom(requesterID, words.Displays(drawn), s.rng)
}

// SubmitWords starts a HOST_INPUT game with the host's words
func (s *RoomSession) SubmitWords(requesterID string, playerWords map[string]string) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		return r.StartHostInput(requesterID, playerWords, s.rng)
	})
}

// SubmitPlayerWord records a PLAYER_INPUT submission. A duplicate word still
// changes the room, so the snapshot is broadcast and returned together with
// the *domain.DuplicateWordError, and every player whose word was purged is
// told to submit again.
func (s *RoomSession) SubmitPlayerWord(playerID, word string) (*domain.Room, error) {
	room, err := s.mutate(func(r *domain.Room) error {
		return r.SubmitPlayerWord(playerID, word, s.rng)
	})

	var dup *domain.DuplicateWordError
	if errors.As(err, &dup) {
		for _, id := range dup.Cleared {
			s.queueEvent(domain.NewPlayerEvent(domain.EventError, s.room.Code, id, &domain.ErrorPayload{
				Code:    DuplicateWordCode,
				Message: dup.Error(),
			}))
		}
	}

	return room, err
}

// ApplyAction runs an in-game action
func (s *RoomSession) ApplyAction(requesterID string, action domain.Action) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		return r.Apply(requesterID, action)
	})
}

// EndGame stops the running game without a winner (host only)
func (s *RoomSession) EndGame(requesterID string) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		return r.EndGame(requesterID)
	})
}

// Reset returns a finished room to the lobby (host only)
func (s *RoomSession) Reset(requesterID string) (*domain.Room, error) {
	return s.mutate(func(r *domain.Room) error {
		return r.Reset(requesterID)
	})
}

// leave removes playerID. When the room empties the session is closed to
// further mutations and empty is true; the caller must drop it from the hub.
func (s *RoomSession) leave(playerID string) (snapshot *domain.Room, empty bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, domain.ErrRoomNotFound
	}

	before := s.room.Status
	empty, err = s.room.Leave(playerID, s.rng)
	if err != nil {
		return nil, false, err
	}
	s.UnregisterClient(playerID)

	if empty {
		s.closed = true
		s.publishView()
		return nil, true, nil
	}

	s.publishView()
	s.logTransition(before)
	snapshot = s.room.Clone()
	s.queueEvent(domain.NewEvent(domain.EventRoomUpdated, s.room.Code, &domain.RoomStatePayload{Room: snapshot}))
	return snapshot, false, nil
}

// mutate runs fn against the room under the session lock and broadcasts the
// result. A rejected mutation is not broadcast, except for a duplicate word.
func (s *RoomSession) mutate(fn func(r *domain.Room) error) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrRoomNotFound
	}

	before := s.room.Status
	err := fn(s.room)

	var dup *domain.DuplicateWordError
	if err != nil && !errors.As(err, &dup) {
		return nil, err
	}

	s.publishView()
	s.logTransition(before)

	snapshot := s.room.Clone()
	s.queueEvent(domain.NewEvent(domain.EventRoomUpdated, s.room.Code, &domain.RoomStatePayload{Room: snapshot}))

	return snapshot, err
}

// logTransition logs room status changes (caller must hold lock)
func (s *RoomSession) logTransition(before domain.RoomStatus) {
	after := s.room.Status
	if before == after {
		return
	}

	switch after {
	case domain.StatusPlaying:
		s.logger.Info("game started", "wordMode", s.room.Config.WordMode, "players", len(s.room.Players))
	case domain.StatusFinished:
		winner := s.room.Game.Winner
		s.logger.Info("game finished", "winner", winner, "draw", winner == "")
	case domain.StatusLobby:
		s.logger.Info("room reset")
	}
}

// isStale reports whether nobody is connected and nothing happened for timeout
func (s *RoomSession) isStale(now time.Time, timeout time.Duration) bool {
	s.viewMu.RLock()
	idle := now.Sub(s.lastActivity)
	s.viewMu.RUnlock()

	return s.ClientCount() == 0 && idle > timeout
}

// RegisterClient registers a client connection for a player
func (s *RoomSession) RegisterClient(playerID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[playerID] = client
}

// UnregisterClient removes a client connection
func (s *RoomSession) UnregisterClient(playerID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, playerID)
}

// ClientCount returns the number of registered connections
func (s *RoomSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// queueEvent adds an event to the broadcast queue
func (s *RoomSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to appropriate clients
func (s *RoomSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	// If player-specific, send only to that player
	if event.PlayerID != "" {
		if client, ok := s.clients[event.PlayerID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "playerID", event.PlayerID, "error", err)
			}
		}
		return
	}

	for playerID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "playerID", playerID, "error", err)
		}
	}
}

// Close shuts down the session and closes any connection still registered
func (s *RoomSession) Close() {
	s.closeOnce.Do(func() {
		s.viewMu.Lock()
		s.dismissed = true
		s.viewMu.Unlock()

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)

		s.clientsMu.Lock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clients = make(map[string]ClientConnection)
		s.clientsMu.Unlock()
	})
}
