package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/famfeed/internal/metrics"
)

// Envelope is the frame sent to clients for every event.
type Envelope struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connected clients and their topic subscriptions.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and subscribes it to its own user topic.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.subscribeLocked(c, UserTopic(c.userID))
	h.mu.Unlock()
	metrics.SocketConnected()
}

// Unregister removes a client, drops every subscription it holds and closes
// its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for topic := range c.topics {
		h.unsubscribeLocked(c, topic)
	}
	close(c.send)
	metrics.SocketDisconnected()
}

// Subscribe adds c to topic. Malformed topics are rejected.
func (h *Hub) Subscribe(c *Client, topic string) error {
	if _, _, err := ParseTopic(topic); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return nil
	}
	h.subscribeLocked(c, topic)
	return nil
}

func (h *Hub) Unsubscribe(c *Client, topic string) error {
	if _, _, err := ParseTopic(topic); err != nil {
		return err
	}
	h.mu.Lock()
	h.unsubscribeLocked(c, topic)
	h.mu.Unlock()
	return nil
}

func (h *Hub) subscribeLocked(c *Client, topic string) {
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Client]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	c.topics[topic] = struct{}{}
}

func (h *Hub) unsubscribeLocked(c *Client, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.topics, topic)
}

// Publish delivers an event to every subscriber of topic without blocking.
// A subscriber whose buffer is full misses the event. For family topics the
// connection recorded in ctx by WithOrigin is skipped if the requesting user
// owns it.
func (h *Hub) Publish(ctx context.Context, topic, event string, payload any) {
	kind, _, err := ParseTopic(topic)
	if err != nil {
		h.logger.Warn("publish to malformed topic", "topic", topic, "event", event)
		return
	}

	data, err := json.Marshal(Envelope{Type: event, Topic: topic, Data: payload})
	if err != nil {
		h.logger.Error("marshal event", "event", event, "error", err)
		return
	}

	var skip origin
	if kind == KindFamily {
		skip = originFrom(ctx)
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		if skip.connID != "" && c.id == skip.connID && c.userID == skip.userID {
			continue
		}
		targets = append(targets, c)
	}
	// Sends happen under the read lock so Unregister cannot close a channel
	// mid-send; they never block.
	for _, c := range targets {
		select {
		case c.send <- data:
			metrics.EventPublished(event)
		default:
			metrics.EventDropped(event)
			h.logger.Debug("client buffer full, dropping event", "client", c.id, "event", event)
		}
	}
	h.mu.RUnlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of clients subscribed to topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
