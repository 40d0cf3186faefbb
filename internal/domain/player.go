package domain

import (
	"strings"
	"time"
)

// Player represents a member of a room. The connection identity doubles as
// the player ID.
type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewPlayer creates a new player with the given ID and display name
func NewPlayer(id, name string) Player {
	return Player{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Score:    0,
		JoinedAt: time.Now(),
	}
}

// AddPoint credits a correct guess. Scores only ever grow.
func (p *Player) AddPoint() {
	p.Score++
}

// PlayerInfo is a compact view used by listings
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:    p.ID,
		Name:  p.Name,
		Score: p.Score,
	}
}
