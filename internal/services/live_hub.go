package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/commentary"
	"github.com/stitts-dev/club-sim/internal/engine"
	"github.com/stitts-dev/club-sim/internal/league"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage is one frame of a season's live feed
type LiveMessage struct {
	Type       string               `json:"type"`
	SeasonID   string               `json:"season_id"`
	Round      int                  `json:"round,omitempty"`
	Home       string               `json:"home,omitempty"`
	Away       string               `json:"away,omitempty"`
	Minute     int                  `json:"minute,omitempty"`
	Events     []engine.Event       `json:"events,omitempty"`
	Commentary []string             `json:"commentary,omitempty"`
	Summary    *league.RoundSummary `json:"summary,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

type liveFrame struct {
	seasonID uuid.UUID
	data     []byte
}

// Client is one WebSocket subscriber to a season
type Client struct {
	SeasonID uuid.UUID
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *LiveHub
}

// LiveHub fans out match minutes and round summaries to the subscribers of
// each season
type LiveHub struct {
	clients    map[*Client]bool
	seasons    map[uuid.UUID]map[*Client]bool
	broadcast  chan liveFrame
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logrus.Logger
	mutex      sync.RWMutex
}

func NewLiveHub(logger *logrus.Logger) *LiveHub {
	return &LiveHub{
		clients:    make(map[*Client]bool),
		seasons:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan liveFrame, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registration and broadcasts until ctx is cancelled
func (h *LiveHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			if h.seasons[client.SeasonID] == nil {
				h.seasons[client.SeasonID] = make(map[*Client]bool)
			}
			h.seasons[client.SeasonID][client] = true
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"season":        client.SeasonID.String(),
				"total_clients": total,
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.removeLocked(client)
			total := len(h.clients)
			h.mutex.Unlock()

			h.logger.WithFields(logrus.Fields{
				"season":        client.SeasonID.String(),
				"total_clients": total,
			}).Info("WebSocket client disconnected")

		case frame := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.seasons[frame.seasonID] {
				select {
				case client.Send <- frame.data:
				default:
					h.removeLocked(client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *LiveHub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	if subs := h.seasons[client.SeasonID]; subs != nil {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.seasons, client.SeasonID)
		}
	}
}

// Serve upgrades the request and subscribes it to the season's feed
func (h *LiveHub) Serve(w http.ResponseWriter, r *http.Request, seasonID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &Client{
		SeasonID: seasonID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      h,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Subscribers returns the number of clients following a season
func (h *LiveHub) Subscribers(seasonID uuid.UUID) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.seasons[seasonID])
}

// GetConnectionCount returns the total number of active connections
func (h *LiveHub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Publish queues a message for a season's subscribers. Seasons nobody
// follows are skipped before marshalling.
func (h *LiveHub) Publish(seasonID uuid.UUID, msg LiveMessage) {
	if h.Subscribers(seasonID) == 0 {
		return
	}
	msg.SeasonID = seasonID.String()
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	select {
	case h.broadcast <- liveFrame{seasonID: seasonID, data: data}:
	default:
		h.logger.WithField("season", seasonID.String()).Warn("Live feed backlog full, dropping frame")
	}
}

// MatchObserver adapts the hub to a season's minute observer
func (h *LiveHub) MatchObserver(seasonID uuid.UUID) league.MatchObserver {
	return func(f league.Fixture, minute int, events []engine.Event) {
		h.Publish(seasonID, LiveMessage{
			Type:       "minute",
			Round:      f.Round,
			Home:       f.Home.Name,
			Away:       f.Away.Name,
			Minute:     minute,
			Events:     detach(events),
			Commentary: commentary.MatchLog(events),
		})
	}
}

// PublishRound announces a completed round
func (h *LiveHub) PublishRound(seasonID uuid.UUID, summary *league.RoundSummary) {
	h.Publish(seasonID, LiveMessage{
		Type:    "round",
		Round:   summary.Round,
		Summary: summary,
	})
}

func detach(events []engine.Event) []engine.Event {
	out := make([]engine.Event, len(events))
	for i, e := range events {
		e.Player, e.PlayerIn = nil, nil
		out[i] = e
	}
	return out
}

// readPump discards client frames and keeps the connection alive
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.WithError(err).Error("Failed to write WebSocket message")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
