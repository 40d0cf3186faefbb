package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"whoami/internal/app"
	"whoami/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Size of the send channel buffer
	sendBufferSize = 256

	// Upper bound for a word source call made on behalf of one message
	requestTimeout = 5 * time.Second
)

// Client represents a WebSocket client connection. The connection identity
// is the player identity.
type Client struct {
	conn     *websocket.Conn
	hub      *app.GameHub
	playerID string
	limiter  *rate.Limiter
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool

	// code of the room this connection is registered with
	roomCode string
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.GameHub, playerID string, limiter *rate.Limiter, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		hub:      hub,
		playerID: playerID,
		limiter:  limiter,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("playerID", playerID),
	}
}

// GetPlayerID returns the player ID for this client
func (c *Client) GetPlayerID() string {
	return c.playerID
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.leaveRoom(false)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.sendError(ErrCodeRateLimited, "Too many messages, slow down")
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom(msg.Payload)
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgLeaveRoom:
		c.leaveRoom(true)
	case MsgUpdateConfig:
		c.handleUpdateConfig(msg.Payload)
	case MsgStartGame:
		c.handleStartGame(msg.Payload)
	case MsgSubmitWords:
		c.handleSubmitWords(msg.Payload)
	case MsgSubmitPlayerWord:
		c.handleSubmitPlayerWord(msg.Payload)
	case MsgGameAction:
		c.handleGameAction(msg.Payload)
	case MsgEndGame:
		c.handleEndGame(msg.Payload)
	case MsgResetGame:
		c.handleResetGame(msg.Payload)
	case MsgGetCategories:
		c.handleGetCategories()
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleCreateRoom creates a room and joins it as host
func (c *Client) handleCreateRoom(raw json.RawMessage) {
	var p CreateRoomPayload
	if err := decodePayload(raw, &p); err != nil || strings.TrimSpace(p.Name) == "" {
		c.sendError(ErrCodeInvalidMessage, "Name is required")
		return
	}

	c.leaveRoom(true)

	session, err := c.hub.CreateRoom(c.playerID)
	if err != nil {
		c.handleError(err)
		return
	}
	c.enterRoom(session, p.Name)
}

// handleJoinRoom joins an existing room
func (c *Client) handleJoinRoom(raw json.RawMessage) {
	var p JoinRoomPayload
	if err := decodePayload(raw, &p); err != nil || strings.TrimSpace(p.Code) == "" || strings.TrimSpace(p.Name) == "" {
		c.sendError(ErrCodeInvalidMessage, "Room code and name are required")
		return
	}

	session, err := c.hub.Session(p.Code)
	if err != nil {
		c.handleError(err)
		return
	}

	if c.currentRoom() != session.Code() {
		c.leaveRoom(true)
	}
	c.enterRoom(session, p.Name)
}

// enterRoom joins session and starts receiving its broadcasts
func (c *Client) enterRoom(session *app.RoomSession, name string) {
	session.RegisterClient(c.playerID, c)
	if _, err := session.Join(domain.NewPlayer(c.playerID, name)); err != nil {
		session.UnregisterClient(c.playerID)
		c.handleError(err)
		return
	}

	c.mu.Lock()
	c.roomCode = session.Code()
	c.mu.Unlock()

	c.logger.Info("player joined room", "roomCode", session.Code())
}

// leaveRoom removes this player from its room. notify tells the client when
// the room was dismissed behind it.
func (c *Client) leaveRoom(notify bool) {
	c.mu.Lock()
	code := c.roomCode
	c.roomCode = ""
	c.mu.Unlock()

	if code == "" {
		return
	}

	_, _, dismissed, err := c.hub.Leave(c.playerID)
	if err != nil {
		c.logger.Debug("leave failed", "roomCode", code, "error", err)
		return
	}

	c.logger.Info("player left room", "roomCode", code, "dismissed", dismissed)
	if dismissed && notify {
		c.Send(NewServerMessage(MsgRoomDismissed, &RoomDismissedPayload{Code: code}))
	}
}

func (c *Client) currentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode
}

// session resolves the room a message addresses, defaulting to the room
// this connection is in
func (c *Client) session(code string) (*app.RoomSession, bool) {
	if strings.TrimSpace(code) == "" {
		code = c.currentRoom()
	}
	session, err := c.hub.Session(code)
	if err != nil {
		c.handleError(err)
		return nil, false
	}
	return session, true
}

// handleUpdateConfig handles an update_config message
func (c *Client) handleUpdateConfig(raw json.RawMessage) {
	var p UpdateConfigPayload
	if err := decodePayload(raw, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid config")
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}
	_, err := session.UpdateConfig(c.playerID, p.Config)
	c.handleError(err)
}

// handleStartGame handles a start_game message
func (c *Client) handleStartGame(raw json.RawMessage) {
	var p RoomPayload
	if err := decodePayload(raw, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	_, err := session.StartGame(ctx, c.playerID)
	c.handleError(err)
}

// handleSubmitWords handles a submit_words message
func (c *Client) handleSubmitWords(raw json.RawMessage) {
	var p SubmitWordsPayload
	if err := decodePayload(raw, &p); err != nil || len(p.PlayerWords) == 0 {
		c.sendError(ErrCodeInvalidMessage, "playerWords is required")
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}
	_, err := session.SubmitWords(c.playerID, p.PlayerWords)
	c.handleError(err)
}

// handleSubmitPlayerWord handles a submit_player_word message
func (c *Client) handleSubmitPlayerWord(raw json.RawMessage) {
	var p SubmitPlayerWordPayload
	if err := decodePayload(raw, &p); err != nil || strings.TrimSpace(p.Word) == "" {
		c.sendError(ErrCodeInvalidMessage, "Word is required")
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}
	_, err := session.SubmitPlayerWord(c.playerID, p.Word)
	c.handleError(err)
}

// handleGameAction handles a game_action message
func (c *Client) handleGameAction(raw json.RawMessage) {
	var p GameActionPayload
	if err := decodePayload(raw, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid action")
		return
	}

	action, err := p.Action.ToDomain()
	if err != nil {
		c.sendError(ErrCodeInvalidMessage, err.Error())
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}
	_, err = session.ApplyAction(c.playerID, action)
	c.handleError(err)
}

// handleEndGame handles an end_game message
func (c *Client) handleEndGame(raw json.RawMessage) {
	var p RoomPayload
	if err := decodePayload(raw, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}
	_, err := session.EndGame(c.playerID)
	c.handleError(err)
}

// handleResetGame handles a reset_game message
func (c *Client) handleResetGame(raw json.RawMessage) {
	var p RoomPayload
	if err := decodePayload(raw, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	session, ok := c.session(p.Code)
	if !ok {
		return
	}
	_, err := session.Reset(c.playerID)
	c.handleError(err)
}

// handleGetCategories replies with the word categories
func (c *Client) handleGetCategories() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cats, err := c.hub.Categories(ctx)
	if err != nil {
		c.handleError(err)
		return
	}
	c.Send(NewServerMessage(MsgCategoriesList, &CategoriesPayload{Categories: cats}))
}

// handleError reports a rejected operation to this client only. Room state
// for successful operations reaches the client through the room broadcast.
func (c *Client) handleError(err error) {
	if err == nil {
		return
	}

	code := errorCode(err)
	if code == ErrCodeInternalError {
		c.logger.Error("request failed", "error", err)
		c.sendError(code, "Internal server error")
		return
	}

	c.logger.Debug("request rejected", "code", code, "error", err)
	c.sendError(code, err.Error())
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	c.Send(NewServerMessage(MsgConnected, &ConnectedPayload{PlayerID: c.playerID}))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}
