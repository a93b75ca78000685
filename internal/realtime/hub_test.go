package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivankrstev/NojectServer-sub000/internal/outline"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		projectID := strings.TrimPrefix(r.URL.Path, "/ws/")
		hub.Serve(w, r, projectID)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, projectID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + projectID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_SubscribeHello(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dial(t, srv, "p1")

	hello := readJSON(t, conn)
	assert.Equal(t, "subscribed", hello["action"])
	assert.Equal(t, "p1", hello["projectId"])
	assert.NotEmpty(t, hello["sessionId"])
	assert.Equal(t, 1, hub.Subscribers("p1"))
}

func TestHub_BroadcastReachesProjectSubscribersOnly(t *testing.T) {
	hub, srv := newHubServer(t)
	connA := dial(t, srv, "p1")
	connB := dial(t, srv, "p2")
	readJSON(t, connA) // hello
	readJSON(t, connB)

	hub.Broadcast("p1", outline.Event{Op: "addTask", ProjectID: "p1", TaskIDs: []int{3}})

	got := readJSON(t, connA)
	assert.Equal(t, "addTask", got["op"])

	require.NoError(t, connB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := connB.ReadMessage()
	assert.Error(t, err, "subscriber of another project must not receive the event")
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub, srv := newHubServer(t)
	connA := dial(t, srv, "p1")
	connB := dial(t, srv, "p1")
	readJSON(t, connA)
	readJSON(t, connB)
	require.Equal(t, 2, hub.Subscribers("p1"))

	hub.Broadcast("p1", outline.Event{Op: "completeTask", ProjectID: "p1", TaskIDs: []int{1, 2}})

	for _, conn := range []*websocket.Conn{connA, connB} {
		got := readJSON(t, conn)
		assert.Equal(t, "completeTask", got["op"])
	}
}

func TestHub_DisconnectUnsubscribes(t *testing.T) {
	hub, srv := newHubServer(t)
	conn := dial(t, srv, "p1")
	readJSON(t, conn)
	require.Equal(t, 1, hub.Subscribers("p1"))

	require.NoError(t, conn.Close())

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers("p1") != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, hub.Subscribers("p1"))
}

func TestHub_BroadcastWithNoSubscribersIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("ghost", outline.Event{Op: "deleteTask", ProjectID: "ghost"})
	assert.Equal(t, 0, hub.Subscribers("ghost"))
}
