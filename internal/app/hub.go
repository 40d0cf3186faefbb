package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	mathrand "math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"whoami/internal/domain"
	"whoami/internal/words"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// DefaultStaleTimeout is how long an abandoned room is kept
	DefaultStaleTimeout = 2 * time.Hour

	// DefaultCleanupInterval is how often stale rooms are swept
	DefaultCleanupInterval = 10 * time.Minute

	shardCount = 16
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Options tunes a GameHub. Zero values take the defaults.
type Options struct {
	RoomCodeLength  int
	StaleTimeout    time.Duration
	CleanupInterval time.Duration

	// NewRand returns the randomness for a new room. Each room gets its own
	// and only uses it under the room lock.
	NewRand func() domain.Rand
}

type hubShard struct {
	mu       sync.RWMutex
	sessions map[string]*RoomSession
}

// GameHub is the room registry. Rooms are spread over shards by code so
// that lookups in different rooms do not contend on one lock.
type GameHub struct {
	shards [shardCount]*hubShard
	opts   Options
	words  words.Source
	logger *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewGameHub creates a new game hub and starts its cleanup loop
func NewGameHub(src words.Source, opts Options, logger *slog.Logger) *GameHub {
	if opts.RoomCodeLength <= 0 {
		opts.RoomCodeLength = DefaultRoomCodeLength
	}
	if opts.StaleTimeout <= 0 {
		opts.StaleTimeout = DefaultStaleTimeout
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if opts.NewRand == nil {
		opts.NewRand = func() domain.Rand {
			return mathrand.New(mathrand.NewPCG(mathrand.Uint64(), mathrand.Uint64()))
		}
	}

	hub := &GameHub{
		opts:   opts,
		words:  src,
		logger: logger,
		done:   make(chan struct{}),
	}
	for i := range hub.shards {
		hub.shards[i] = &hubShard{sessions: make(map[string]*RoomSession)}
	}

	go hub.cleanupLoop()

	return hub
}

func (h *GameHub) shard(code string) *hubShard {
	return h.shards[xxhash.Sum64String(code)%shardCount]
}

// CreateRoom creates an empty lobby with a fresh code. hostID becomes host
// once it joins.
func (h *GameHub) CreateRoom(hostID string) (*RoomSession, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code := h.generateRoomCode()
		sh := h.shard(code)

		sh.mu.Lock()
		if _, exists := sh.sessions[code]; exists {
			sh.mu.Unlock()
			continue
		}
		room := domain.NewRoom(uuid.New().String(), code, hostID)
		session := newRoomSession(room, h.words, h.opts.NewRand(), h.logger)
		sh.sessions[code] = session
		sh.mu.Unlock()

		h.logger.Info("room created", "roomCode", code, "hostID", hostID)
		return session, nil
	}

	return nil, fmt.Errorf("failed to generate unique room code")
}

// Session returns the session for a room code
func (h *GameHub) Session(code string) (*RoomSession, error) {
	code = NormalizeCode(code)
	sh := h.shard(code)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	session, ok := sh.sessions[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return session, nil
}

// Remove drops a room from the registry and closes its session
func (h *GameHub) Remove(code string) {
	code = NormalizeCode(code)
	sh := h.shard(code)

	sh.mu.Lock()
	session, ok := sh.sessions[code]
	delete(sh.sessions, code)
	sh.mu.Unlock()

	if ok {
		session.Close()
		h.logger.Debug("room removed", "roomCode", code)
	}
}

// ForEachMatching calls fn for every room that match accepts, until fn
// returns false. fn runs without any registry lock held.
func (h *GameHub) ForEachMatching(match func(*RoomSession) bool, fn func(*RoomSession) bool) {
	for _, sh := range h.shards {
		sh.mu.RLock()
		matched := make([]*RoomSession, 0)
		for _, session := range sh.sessions {
			if match(session) {
				matched = append(matched, session)
			}
		}
		sh.mu.RUnlock()

		for _, session := range matched {
			if !fn(session) {
				return
			}
		}
	}
}

// Leave removes playerID from the room that holds it. When that empties the
// room it is removed and dismissed is true, with no snapshot.
func (h *GameHub) Leave(playerID string) (snapshot *domain.Room, code string, dismissed bool, err error) {
	// a room found by the scan may be dismissed before we lock it; scan again
	for attempts := 0; attempts < 3; attempts++ {
		var found *RoomSession
		h.ForEachMatching(
			func(s *RoomSession) bool { return s.HasPlayer(playerID) },
			func(s *RoomSession) bool { found = s; return false },
		)
		if found == nil {
			return nil, "", false, domain.ErrPlayerNotFound
		}

		snap, empty, leaveErr := found.leave(playerID)
		if leaveErr != nil {
			continue
		}

		if empty {
			h.Remove(found.Code())
			h.logger.Info("room dismissed", "roomCode", found.Code())
			return nil, found.Code(), true, nil
		}
		return snap, found.Code(), false, nil
	}

	return nil, "", false, domain.ErrPlayerNotFound
}

// Categories lists the word source's categories
func (h *GameHub) Categories(ctx context.Context) ([]words.Category, error) {
	cats, err := h.words.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// SessionCount returns the number of active rooms
func (h *GameHub) SessionCount() int {
	total := 0
	for _, sh := range h.shards {
		sh.mu.RLock()
		total += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return total
}

// TotalPlayerCount returns the number of players across all rooms
func (h *GameHub) TotalPlayerCount() int {
	total := 0
	h.ForEachMatching(
		func(*RoomSession) bool { return true },
		func(s *RoomSession) bool { total += s.PlayerCount(); return true },
	)
	return total
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		var sessions []*RoomSession
		for _, sh := range h.shards {
			sh.mu.Lock()
			for _, session := range sh.sessions {
				sessions = append(sessions, session)
			}
			sh.sessions = make(map[string]*RoomSession)
			sh.mu.Unlock()
		}

		for _, session := range sessions {
			session.Close()
		}
	})
}

// NormalizeCode canonicalizes a user-typed room code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateRoomCode generates a random room code
func (h *GameHub) generateRoomCode() string {
	b := make([]byte, h.opts.RoomCodeLength)
	rand.Read(b)

	code := make([]byte, h.opts.RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically cleans up stale rooms
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(h.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleRooms(time.Now())
		}
	}
}

// cleanupStaleRooms removes rooms nobody is connected to that have been idle
// for longer than the stale timeout
func (h *GameHub) cleanupStaleRooms(now time.Time) int {
	stale := make([]string, 0)
	h.ForEachMatching(
		func(s *RoomSession) bool { return s.isStale(now, h.opts.StaleTimeout) },
		func(s *RoomSession) bool { stale = append(stale, s.Code()); return true },
	)

	for _, code := range stale {
		h.Remove(code)
		h.logger.Info("stale room cleaned up", "roomCode", code)
	}
	return len(stale)
}
