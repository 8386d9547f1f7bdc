package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *LiveHub {
	t.Helper()
	hub := NewLiveHub(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func subscribe(t *testing.T, hub *LiveHub, seasonID uuid.UUID) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, seasonID)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Subscribers(seasonID) == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

// frame decodes the fields the tests inspect; enum payloads are write-only
type frame struct {
	Type      string    `json:"type"`
	SeasonID  string    `json:"season_id"`
	Round     int       `json:"round"`
	Home      string    `json:"home"`
	Minute    int       `json:"minute"`
	Timestamp time.Time `json:"timestamp"`
	Summary   *struct {
		Round int `json:"round"`
	} `json:"summary"`
}

func readMessage(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg frame
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestLiveHub_PublishesOnlyToSeasonSubscribers(t *testing.T) {
	hub := startHub(t)
	followed, other := uuid.New(), uuid.New()
	conn := subscribe(t, hub, followed)

	hub.Publish(other, LiveMessage{Type: "minute", Minute: 1})
	hub.Publish(followed, LiveMessage{Type: "minute", Minute: 2})

	msg := readMessage(t, conn)
	assert.Equal(t, "minute", msg.Type)
	assert.Equal(t, 2, msg.Minute)
	assert.Equal(t, followed.String(), msg.SeasonID)
	assert.False(t, msg.Timestamp.IsZero())
	assert.Equal(t, 1, hub.GetConnectionCount())
}

func TestLiveHub_UnsubscribesOnClose(t *testing.T) {
	hub := startHub(t)
	id := uuid.New()
	conn := subscribe(t, hub, id)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers(id) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveHub_StreamsSeasonRound(t *testing.T) {
	hub := startHub(t)
	svc := NewSeasonService(SeasonDefaults{Seed: 3}, disabledCache(), nil, hub, quietLogger())
	ctx := context.Background()

	view, err := svc.CreateSeason(ctx, CreateSeasonRequest{})
	require.NoError(t, err)
	conn := subscribe(t, hub, view.ID)

	_, err = svc.PlayRound(ctx, view.ID)
	require.NoError(t, err)

	first := readMessage(t, conn)
	assert.Equal(t, "minute", first.Type)
	assert.Equal(t, 1, first.Minute)
	assert.Equal(t, 1, first.Round)
	assert.Equal(t, "Man City", first.Home)

	minutes := 1
	for {
		msg := readMessage(t, conn)
		if msg.Type == "round" {
			require.NotNil(t, msg.Summary)
			assert.Equal(t, 1, msg.Summary.Round)
			break
		}
		minutes++
	}
	assert.Equal(t, 2*90, minutes)
}
