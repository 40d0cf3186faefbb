package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"whoami/internal/app"
	"whoami/internal/domain"
	"whoami/internal/words"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode    string              `json:"roomCode"`
	Status      domain.RoomStatus   `json:"status"`
	PlayerCount int                 `json:"playerCount"`
	Players     []domain.PlayerInfo `json:"players"`
}

// RoomExistsResponse is the response for checking if room exists
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// CategoriesResponse lists the word categories the dictionary offers
type CategoriesResponse struct {
	Categories []words.Category `json:"categories"`
}

const categoriesTimeout = 5 * time.Second

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	snapshot := session.Snapshot()
	s.sendSuccess(w, &GetRoomResponse{
		RoomCode:    snapshot.Code,
		Status:      snapshot.Status,
		PlayerCount: len(snapshot.Players),
		Players:     snapshot.GetPlayerInfoList(),
	})
}

// handleRoomExists handles GET /api/rooms/{roomCode}/exists
func (s *Server) handleRoomExists(w http.ResponseWriter, r *http.Request) {
	_, err := s.hub.Session(mux.Vars(r)["roomCode"])
	s.sendSuccess(w, &RoomExistsResponse{
		Exists: err == nil,
	})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		ActiveRooms:  s.hub.SessionCount(),
		TotalPlayers: s.hub.TotalPlayerCount(),
	})
}

// handleCategories handles GET /api/categories
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), categoriesTimeout)
	defer cancel()

	cats, err := s.hub.Categories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		s.sendError(w, http.StatusServiceUnavailable, "WORDS_UNAVAILABLE", "Word source unavailable")
		return
	}

	s.sendSuccess(w, &CategoriesResponse{Categories: cats})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.sendError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
}

// lookupRoom resolves the roomCode path variable, writing the error response
// itself when there is no such room
func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) (*app.RoomSession, bool) {
	session, err := s.hub.Session(mux.Vars(r)["roomCode"])
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return nil, false
	}
	return session, true
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	}); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}
