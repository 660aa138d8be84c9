package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngineManager struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (f *fakeEngineManager) StartEngine(uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, uid)
}

func (f *fakeEngineManager) StopEngine(uid string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, uid)
}

func (f *fakeEngineManager) snapshot() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...), append([]string(nil), f.stopped...)
}

func newTestHub(t *testing.T) (*Hub, *fakeEngineManager) {
	t.Helper()

	hub := NewHub(nil, zerolog.Nop())
	engines := &fakeEngineManager{}
	hub.SetEngineManager(engines)
	go hub.Run()
	t.Cleanup(hub.Shutdown)
	return hub, engines
}

func recvMessage(t *testing.T, c *Client) []byte {
	t.Helper()

	select {
	case data := <-c.send:
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHubDeliversToEveryConnectionOfUser(t *testing.T) {
	hub, _ := newTestHub(t)

	tab1 := NewClient(hub, nil, "u1")
	tab2 := NewClient(hub, nil, "u1")
	other := NewClient(hub, nil, "u2")
	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(other)

	hub.Publish("u1", &Event{Type: EventUnreadCounts, Payload: map[string]int64{"total": 3}})

	assert.JSONEq(t, `{"type":"unread_counts","payload":{"total":3}}`, string(recvMessage(t, tab1)))
	assert.JSONEq(t, `{"type":"unread_counts","payload":{"total":3}}`, string(recvMessage(t, tab2)))

	select {
	case data := <-other.send:
		t.Fatalf("event leaked to another user: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubEngineLifecycle(t *testing.T) {
	hub, engines := newTestHub(t)

	tab1 := NewClient(hub, nil, "u1")
	tab2 := NewClient(hub, nil, "u1")
	hub.Register(tab1)
	hub.Register(tab2)

	// Only the first connection starts the engine.
	require.Eventually(t, func() bool {
		started, _ := engines.snapshot()
		return len(started) == 1 && started[0] == "u1"
	}, 2*time.Second, 10*time.Millisecond)

	hub.unregister <- tab1
	time.Sleep(50 * time.Millisecond)
	_, stopped := engines.snapshot()
	assert.Empty(t, stopped, "engine stopped while a connection remained")

	hub.unregister <- tab2
	require.Eventually(t, func() bool {
		_, stopped := engines.snapshot()
		return len(stopped) == 1 && stopped[0] == "u1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub, _ := newTestHub(t)

	client := NewClient(hub, nil, "u1")
	hub.Register(client)
	hub.unregister <- client

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-client.send:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
