package live

import (
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

	"kinbrio/internal/app/model"
)

// serveFeed upgrades every request into a feed client of org that expires at expiresAt.
func serveFeed(t *testing.T, hub *Hub, org uuid.UUID, expiresAt time.Time) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(conn, org, uuid.New(), expiresAt)
		if !hub.Attach(c) {
			_ = conn.Close()
			return
		}
		go c.WritePump()
		c.ReadPump()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPublishReachesOrganizationClients(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	org, other := uuid.New(), uuid.New()
	conn := dial(t, serveFeed(t, hub, org, time.Now().Add(time.Hour)))
	otherConn := dial(t, serveFeed(t, hub, other, time.Now().Add(time.Hour)))

	require.Eventually(t, func() bool { return hub.Clients(org) == 1 && hub.Clients(other) == 1 },
		2*time.Second, 10*time.Millisecond)

	hub.Publish(org, model.CategoryTask, "New Task 🚀", 1700000000)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(frame, &ev))
	assert.Equal(t, model.CategoryTask, ev.Category)
	assert.Equal(t, "New Task 🚀", ev.Body)
	assert.Equal(t, int64(1700000000), ev.Created)
	assert.JSONEq(t, `{"category":7,"body":"New Task 🚀","created":1700000000}`, string(frame))

	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = otherConn.ReadMessage()
	assert.Error(t, err, "other organizations receive nothing")
}

func TestPublishWithoutListenersIsNoop(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	hub.Publish(uuid.New(), model.CategoryTask, "nobody", 1)
	assert.Zero(t, hub.Clients(uuid.New()))
}

func TestExpiredSessionClosesStream(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	org := uuid.New()
	conn := dial(t, serveFeed(t, hub, org, time.Now().Add(100*time.Millisecond)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, CloseSessionExpired), err.Error())

	require.Eventually(t, func() bool { return hub.Clients(org) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	org := uuid.New()
	c := NewClient(nil, org, uuid.New(), time.Now().Add(time.Hour))
	c.send = make(chan []byte, 1)
	require.True(t, hub.Attach(c))
	require.Eventually(t, func() bool { return hub.Clients(org) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(org, model.CategoryBoard, "one", 1)
	hub.Publish(org, model.CategoryBoard, "two", 2)

	require.Eventually(t, func() bool { return hub.Clients(org) == 0 }, 2*time.Second, 10*time.Millisecond)

	first, ok := <-c.send
	require.True(t, ok)
	assert.Contains(t, string(first), `"one"`)
	_, ok = <-c.send
	assert.False(t, ok, "send channel is closed once dropped")
}

func TestShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	org := uuid.New()

	c := NewClient(nil, org, uuid.New(), time.Now().Add(time.Hour))
	require.True(t, hub.Attach(c))

	hub.Shutdown()

	_, ok := <-c.send
	assert.False(t, ok)
	assert.False(t, hub.Attach(NewClient(nil, org, uuid.New(), time.Now().Add(time.Hour))))
}

func TestIdleFeedRetires(t *testing.T) {
	hub := NewHub()
	defer hub.Shutdown()

	org := uuid.New()
	f := newFeed(org, hub.retire)
	f.idleTimeout = 10 * time.Millisecond
	hub.mu.Lock()
	hub.feeds[org] = f
	hub.mu.Unlock()

	go f.Run()

	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle feed did not stop")
	}

	hub.mu.RLock()
	_, ok := hub.feeds[org]
	hub.mu.RUnlock()
	assert.False(t, ok)
	assert.False(t, f.add(NewClient(nil, org, uuid.New(), time.Now().Add(time.Hour))))
}
