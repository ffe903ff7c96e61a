package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyTheRoom(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("room"))
	}))
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http")
	a, _, err := websocket.DefaultDialer.Dial(base+"?room=tx-1", nil)
	require.NoError(t, err)
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(base+"?room=tx-2", nil)
	require.NoError(t, err)
	defer b.Close()

	require.Eventually(t, func() bool { return hub.Count("tx-1") == 1 && hub.Count("tx-2") == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish("tx-1", []byte(`{"body":"is it still available?"}`))

	_ = a.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := a.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"body":"is it still available?"}`, string(msg))

	_ = b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = b.ReadMessage()
	assert.Error(t, err)
}

func TestClosedSocketLeavesRoom(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, "tx-9")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count("tx-9") == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count("tx-9") == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubscribeReceivesUntilCancelled(t *testing.T) {
	hub := NewHub(nil)
	ch, cancel := hub.Subscribe("transaction:7")
	assert.Equal(t, 1, hub.Count("transaction:7"))

	hub.Publish("transaction:7", []byte("ping"))
	assert.Equal(t, []byte("ping"), <-ch)

	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.Count("transaction:7"))
	cancel()
}
