package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whoami/internal/app"
	"whoami/internal/config"
	"whoami/internal/domain"
	"whoami/internal/words"
)

func newTestServer(t *testing.T) (*Server, *app.GameHub) {
	t.Helper()

	catalog, err := words.ParseCatalog([]byte("fruit:\n  - apple\n  - pear\n  - plum\n"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewGameHub(catalog, app.Options{}, logger)
	t.Cleanup(hub.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0", Env: "development"},
		Game:   config.GameConfig{RoomCodeLength: 6, MessagesPerSecond: 10, MessageBurst: 20},
	}
	return NewServer(cfg, hub, logger), hub
}

func doGet(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doGet(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"status": "ok"}, resp.Data)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStats(t *testing.T) {
	s, hub := newTestServer(t)

	session, err := hub.CreateRoom("p1")
	require.NoError(t, err)
	_, err = session.Join(domain.NewPlayer("p1", "Alice"))
	require.NoError(t, err)
	_, err = session.Join(domain.NewPlayer("p2", "Bob"))
	require.NoError(t, err)

	_, resp := doGet(t, s, "/api/stats")
	assert.Equal(t, map[string]any{"activeRooms": 1.0, "totalPlayers": 2.0}, resp.Data)
}

func TestGetRoom(t *testing.T) {
	s, hub := newTestServer(t)

	session, err := hub.CreateRoom("p1")
	require.NoError(t, err)
	_, err = session.Join(domain.NewPlayer("p1", "Alice"))
	require.NoError(t, err)

	rec, resp := doGet(t, s, "/api/rooms/"+strings.ToLower(session.Code()))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{
		"roomCode":    session.Code(),
		"status":      string(domain.StatusLobby),
		"playerCount": 1.0,
		"players": []any{
			map[string]any{"id": "p1", "name": "Alice", "score": 0.0},
		},
	}, resp.Data)
}

func TestGetRoomNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doGet(t, s, "/api/rooms/NOPE42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ROOM_NOT_FOUND", resp.Error.Code)
}

func TestRoomExists(t *testing.T) {
	s, hub := newTestServer(t)

	session, err := hub.CreateRoom("p1")
	require.NoError(t, err)

	_, resp := doGet(t, s, "/api/rooms/"+session.Code()+"/exists")
	assert.Equal(t, map[string]any{"exists": true}, resp.Data)

	_, resp = doGet(t, s, "/api/rooms/NOPE42/exists")
	assert.Equal(t, map[string]any{"exists": false}, resp.Data)
}

func TestCategories(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doGet(t, s, "/api/categories")
	assert.Equal(t, http.StatusOK, rec.Code)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	cats, ok := data["categories"].([]any)
	require.True(t, ok)

	var names []string
	for _, c := range cats {
		names = append(names, c.(map[string]any)["name"].(string))
	}
	assert.Contains(t, names, "fruit")
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := doGet(t, s, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
