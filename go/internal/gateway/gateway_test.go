package gateway

import (
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/arenaclock/go/internal/arena"
	"github.com/mcdev12/arenaclock/go/internal/clock"
	"github.com/mcdev12/arenaclock/go/internal/display"
	"github.com/mcdev12/arenaclock/go/internal/notify"
)

type fixture struct {
	engine   *clock.Engine
	registry *display.Registry
	arena    *arena.Arena
	service  *Service
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, DefaultConfig())
}

func newFixtureWithConfig(t *testing.T, cfg Config) *fixture {
	t.Helper()

	registry := display.NewRegistry()
	var service *Service
	engine := clock.NewEngine(clock.WithNotifier(notify.Func(func(ctx context.Context, u notify.TextureUpdate) error {
		return service.Notifier().TextureChanged(ctx, u)
	})))
	service = NewService(cfg, engine, registry)

	a, err := arena.Build(engine, registry, arena.Options{SideDisplays: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go service.Start(ctx)

	mux := http.NewServeMux()
	service.RegisterRoutes(mux)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return &fixture{engine: engine, registry: registry, arena: a, service: service, server: server}
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGetClocks(t *testing.T) {
	f := newFixture(t)
	f.engine.Tick(context.Background(), clock.Right)

	resp := f.get(t, "/api/clocks")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Clocks []struct {
			Side             string `json:"side"`
			GameClockSeconds int    `json:"game_clock_seconds"`
			GameClock        string `json:"game_clock"`
			ShotClock        string `json:"shot_clock"`
		} `json:"clocks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Clocks, 2)

	assert.Equal(t, "left", body.Clocks[0].Side)
	assert.Equal(t, "12:00", body.Clocks[0].GameClock)
	assert.Equal(t, "24", body.Clocks[0].ShotClock)
	assert.Equal(t, "right", body.Clocks[1].Side)
	assert.Equal(t, 719, body.Clocks[1].GameClockSeconds)
	assert.Equal(t, "11:59", body.Clocks[1].GameClock)
	assert.Equal(t, "23", body.Clocks[1].ShotClock)
}

func TestGetClock(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/api/clocks/RIGHT")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap clock.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, clock.Right, snap.Side)
	assert.Equal(t, "12:00", snap.GameClockText)

	resp = f.get(t, "/api/clocks/center")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListSurfaces(t *testing.T) {
	f := newFixture(t)
	f.engine.Tick(context.Background(), clock.Left)

	resp := f.get(t, "/api/surfaces")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SurfacesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Surfaces, 6)

	for _, s := range body.Surfaces {
		assert.True(t, strings.HasSuffix(s.TextureURL, "/texture.png"))
		switch s.Side {
		case "left":
			assert.Equal(t, uint64(1), s.Version)
			assert.True(t, s.NeedsUpdate)
		case "right":
			assert.Equal(t, uint64(0), s.Version)
		default:
			t.Fatalf("unexpected side %q", s.Side)
		}
	}
}

func TestGetTexture(t *testing.T) {
	f := newFixture(t)
	primary := f.arena.Hoops()[0].Primary

	resp := f.get(t, TextureURL(primary.ID))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.engine.Tick(context.Background(), clock.Left)

	resp = f.get(t, TextureURL(primary.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, display.FontSize*2, img.Bounds().Dx())

	resp = f.get(t, TextureURL(uuid.New()))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.get(t, "/api/surfaces/not-a-uuid/texture.png")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get(t, "/info")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "arena_clock", info["service"])
	assert.EqualValues(t, 0, info["total_connections"])
}

func TestWebSocketReceivesStateAndTextureUpdates(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/clock?side=left"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	readEvent := func() ClockEvent {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var ev ClockEvent
		require.NoError(t, conn.ReadJSON(&ev))
		return ev
	}

	state := readEvent()
	assert.Equal(t, EventTypeClockState, state.Type)
	assert.Equal(t, "left", state.Side)
	var snap clock.Snapshot
	require.NoError(t, json.Unmarshal(state.Data, &snap))
	assert.Equal(t, "12:00", snap.GameClockText)

	f.engine.Tick(context.Background(), clock.Right)
	f.engine.Tick(context.Background(), clock.Left)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		ev := readEvent()
		assert.Equal(t, EventTypeTextureUpdated, ev.Type)
		assert.Equal(t, "left", ev.Side)

		var payload TextureUpdatedPayload
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		assert.Equal(t, "12:00", payload.GameClock)
		assert.Equal(t, "24", payload.ShotClock)
		assert.Equal(t, uint64(1), payload.Version)
		ids[payload.SurfaceID] = true
	}
	assert.Len(t, ids, 3)

	stats := f.service.GetStats()
	assert.Equal(t, 1, stats["total_connections"])
}

func dialClock(t *testing.T, f *fixture, side string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/clock?side=" + side
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketStateComesFirstWhileTicking(t *testing.T) {
	f := newFixture(t)

	stop := make(chan struct{})
	ticking := make(chan struct{})
	go func() {
		defer close(ticking)
		for {
			select {
			case <-stop:
				return
			default:
				f.engine.Tick(context.Background(), clock.Left)
				time.Sleep(time.Millisecond)
			}
		}
	}()
	defer func() {
		close(stop)
		<-ticking
	}()

	for i := 0; i < 5; i++ {
		conn := dialClock(t, f, "left")
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var ev ClockEvent
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, EventTypeClockState, ev.Type, "connection %d", i)
	}
}

func TestWebSocketUsesConnectionClock(t *testing.T) {
	fc := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.ConnectionConfig.Clock = fc
	f := newFixtureWithConfig(t, cfg)

	conn := dialClock(t, f, "right")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev ClockEvent
	require.NoError(t, conn.ReadJSON(&ev))

	assert.Equal(t, EventTypeClockState, ev.Type)
	assert.True(t, fc.Now().Equal(ev.Timestamp))

	f.service.connectionManager.mu.RLock()
	defer f.service.connectionManager.mu.RUnlock()
	require.Len(t, f.service.connectionManager.sideConnections["right"], 1)
	for c := range f.service.connectionManager.sideConnections["right"] {
		assert.True(t, fc.Now().Equal(c.ConnectedAt))
	}
}

func TestWebSocketRejectsUnknownSide(t *testing.T) {
	f := newFixture(t)

	resp := f.get(t, "/ws/clock?side=middle")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTextureChangedReportsFullQueue(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.BroadcastBuffer = 1
	cm := NewConnectionManager(cfg)

	u := notify.TextureUpdate{Side: "left", SurfaceID: uuid.New(), Version: 1}
	require.NoError(t, cm.TextureChanged(context.Background(), u))
	assert.Error(t, cm.TextureChanged(context.Background(), u))
}

func TestNewTextureUpdatedEvent(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	ev, err := NewTextureUpdatedEvent(notify.TextureUpdate{
		Side:          "right",
		SurfaceID:     id,
		SurfaceName:   "side-1",
		Version:       3,
		GameClockText: "5.0",
		ShotClockText: "07",
		At:            at,
	})
	require.NoError(t, err)

	assert.Equal(t, EventTypeTextureUpdated, ev.Type)
	assert.Equal(t, "right", ev.Side)
	assert.Equal(t, at, ev.Timestamp)
	_, err = uuid.Parse(ev.ID)
	assert.NoError(t, err)

	var payload TextureUpdatedPayload
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, TextureUpdatedPayload{
		SurfaceID:   id.String(),
		SurfaceName: "side-1",
		Version:     3,
		GameClock:   "5.0",
		ShotClock:   "07",
		TextureURL:  "/api/surfaces/" + id.String() + "/texture.png",
	}, payload)
}
