package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	readLimit      = 4096
)

// Client represents a single authenticated WebSocket connection.
type Client struct {
	id       string
	userID   string
	familyID string
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	topics   map[string]struct{} // guarded by hub.mu
	logger   *slog.Logger
}

// NewClient creates a Client for an authenticated user.
func NewClient(hub *Hub, conn *ws.Conn, userID, familyID string) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		userID:   userID,
		familyID: familyID,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		topics:   make(map[string]struct{}),
		logger:   hub.logger.With("client", id, "user_id", userID),
	}
}

// ID is the connection id clients echo back in the X-Socket-ID header.
func (c *Client) ID() string { return c.id }

// frame is a client to server message.
type frame struct {
	Event    string `json:"event"`
	FamilyID string `json:"familyId"`
}

// Run registers the client, greets it, starts the write pump and runs the
// read pump. It blocks until the connection closes, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.greet()

	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// greet queues the connected envelope. It runs before Register so the
// buffer is empty.
func (c *Client) greet() {
	data, err := json.Marshal(Envelope{
		Type: EventConnected,
		Data: map[string]string{"connectionId": c.id, "userId": c.userID, "familyId": c.familyID},
	})
	if err != nil {
		return
	}
	c.send <- data
}

// readPump handles subscription frames until the connection errors.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(readLimit)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame applies a join or leave request. Malformed frames and requests
// for another family's topic are logged and ignored.
func (c *Client) handleFrame(data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		c.logger.Warn("ignoring malformed frame", "error", err)
		return
	}

	topic := FamilyTopic(f.FamilyID)
	switch f.Event {
	case "join-family":
		if f.FamilyID != c.familyID {
			c.logger.Warn("ignoring join for foreign family", "family_id", f.FamilyID)
			return
		}
		if err := c.hub.Subscribe(c, topic); err != nil {
			c.logger.Warn("ignoring join", "topic", topic, "error", err)
			return
		}
		c.logger.Debug("joined topic", "topic", topic)
	case "leave-family":
		if err := c.hub.Unsubscribe(c, topic); err != nil {
			c.logger.Warn("ignoring leave", "topic", topic, "error", err)
			return
		}
		c.logger.Debug("left topic", "topic", topic)
	default:
		c.logger.Warn("ignoring unknown event", "event", f.Event)
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
