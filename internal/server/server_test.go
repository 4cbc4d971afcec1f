package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/herd/internal/config"
	"github.com/zeusync/herd/internal/core/events/bus"
	"github.com/zeusync/herd/internal/core/sim"
)

type fakeController struct {
	mu     sync.Mutex
	wolf   bool
	paused bool
}

func (f *fakeController) Snapshot() sim.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sim.Snapshot{Tick: 7, WolfActive: f.wolf, Paused: f.paused}
}

func (f *fakeController) ToggleWolf() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wolf = !f.wolf
	return f.wolf
}

func (f *fakeController) TogglePause() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = !f.paused
	return f.paused
}

func (f *fakeController) state() (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wolf, f.paused
}

func testServerConfig() config.Server {
	cfg := config.Default().Server
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.BroadcastInterval = 10 * time.Millisecond
	cfg.MaxClients = 2
	return cfg
}

func wsURL(addr string) string {
	return "ws://" + addr + "/ws"
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var raw struct {
		Message
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&raw))
	msg := raw.Message
	msg.Data = raw.Data
	return msg
}

func TestControlEndpoints(t *testing.T) {
	ctrl := &fakeController{}
	ts := httptest.NewServer(NewServer(testServerConfig(), ctrl).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/wolf", "application/json", nil)
	require.NoError(t, err)
	var res ControlResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ActionToggleWolf, res.Action)
	require.NotNil(t, res.WolfActive)
	assert.True(t, *res.WolfActive)
	assert.Nil(t, res.Paused)

	resp, err = http.Post(ts.URL+"/pause", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	wolf, paused := ctrl.state()
	assert.True(t, wolf)
	assert.True(t, paused)

	resp, err = http.Get(ts.URL + "/wolf")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSnapshotEndpoint(t *testing.T) {
	ts := httptest.NewServer(NewServer(testServerConfig(), &fakeController{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var snap sim.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, uint64(7), snap.Tick)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "herd_test_total", Help: "test"}).Inc()

	ts := httptest.NewServer(NewServer(testServerConfig(), &fakeController{}, WithGatherer(reg)).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "herd_test_total 1")
}

func TestLifecycle(t *testing.T) {
	srv := NewServer(testServerConfig(), &fakeController{})
	assert.Nil(t, srv.Addr())
	assert.ErrorIs(t, srv.Stop(), ErrServerNotRunning)

	require.NoError(t, srv.Start(context.Background()))
	assert.NotNil(t, srv.Addr())
	assert.ErrorIs(t, srv.Start(context.Background()), ErrServerAlreadyRunning)

	require.NoError(t, srv.Stop())
	assert.ErrorIs(t, srv.Stop(), ErrServerNotRunning)
	assert.ErrorIs(t, srv.Start(context.Background()), ErrServerClosed)
}

func TestStopsWithContext(t *testing.T) {
	srv := NewServer(testServerConfig(), &fakeController{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, srv.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return srv.Start(context.Background()) == ErrServerClosed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketStreamsSnapshotsAndEvents(t *testing.T) {
	b := bus.New()
	srv := NewServer(testServerConfig(), &fakeController{}, WithBus(b))
	require.NoError(t, srv.Start(context.Background()))
	defer func() { _ = srv.Stop() }()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.Addr().String()), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readMessage(t, conn)
	assert.Equal(t, MessageSnapshot, first.Type)
	var snap sim.Snapshot
	require.NoError(t, json.Unmarshal(first.Data.(json.RawMessage), &snap))
	assert.Equal(t, uint64(7), snap.Tick)

	require.NoError(t, b.Publish(bus.NewEvent(sim.EventAte, sim.EventSource, sim.Ate{Agent: "grazer-0", Tick: 3})))

	for {
		msg := readMessage(t, conn)
		if msg.Type != MessageEvent {
			continue
		}
		assert.Equal(t, sim.EventAte, msg.Event)
		var ate sim.Ate
		require.NoError(t, json.Unmarshal(msg.Data.(json.RawMessage), &ate))
		assert.Equal(t, sim.Ate{Agent: "grazer-0", Tick: 3}, ate)
		break
	}
}

func TestWebSocketControl(t *testing.T) {
	ctrl := &fakeController{}
	srv := NewServer(testServerConfig(), ctrl)
	require.NoError(t, srv.Start(context.Background()))
	defer func() { _ = srv.Stop() }()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.Addr().String()), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ControlMessage{Action: "dance"}))
	require.NoError(t, conn.WriteJSON(ControlMessage{Action: ActionTogglePause}))

	for {
		msg := readMessage(t, conn)
		if msg.Type != MessageControl {
			continue
		}
		var res ControlResult
		require.NoError(t, json.Unmarshal(msg.Data.(json.RawMessage), &res))
		assert.Equal(t, ActionTogglePause, res.Action, "unknown actions get no reply")
		require.NotNil(t, res.Paused)
		assert.True(t, *res.Paused)
		break
	}
	_, paused := ctrl.state()
	assert.True(t, paused)
}

func TestStopSendsNormalClose(t *testing.T) {
	srv := NewServer(testServerConfig(), &fakeController{})
	require.NoError(t, srv.Start(context.Background()))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv.Addr().String()), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, MessageSnapshot, readMessage(t, conn).Type)

	require.NoError(t, srv.Stop())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestAddrDuringStart(t *testing.T) {
	srv := NewServer(testServerConfig(), &fakeController{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = srv.Addr()
		}
	}()
	require.NoError(t, srv.Start(context.Background()))
	<-done
	assert.NotNil(t, srv.Addr())
	require.NoError(t, srv.Stop())
}

func TestMaxClients(t *testing.T) {
	srv := NewServer(testServerConfig(), &fakeController{})
	require.NoError(t, srv.Start(context.Background()))
	defer func() { _ = srv.Stop() }()
	u := wsURL(srv.Addr().String())

	for range 2 {
		conn, _, err := websocket.DefaultDialer.Dial(u, nil)
		require.NoError(t, err)
		defer conn.Close()
	}
	assert.Eventually(t, func() bool { return srv.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), ErrMaxClientsReached.Error()))
}
