package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/nbastats/internal/publisher"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesClients(t *testing.T) {
	s := NewServer(nil)
	go s.hub.Run()
	t.Cleanup(s.hub.Stop)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	a := dial(t, srv, "/ws/games")
	b := dial(t, srv, "/ws/games")
	waitFor(t, func() bool { return s.hub.ClientCount() == 2 })

	s.BroadcastGameUpdate([]byte(`{"nba_id":"0021400001"}`))

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(msg) != `{"nba_id":"0021400001"}` {
			t.Errorf("message = %s", msg)
		}
	}

	a.Close()
	waitFor(t, func() bool { return s.hub.ClientCount() == 1 })
}

func TestHealth(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/ws/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

type fakeStream struct {
	calls int
	ids   []string
}

func (f *fakeStream) XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd {
	f.calls++
	f.ids = append(f.ids, a.Streams[1])
	switch f.calls {
	case 1:
		return redis.NewXStreamSliceCmdResult([]redis.XStream{{
			Stream: a.Streams[0],
			Messages: []redis.XMessage{
				{ID: "1-0", Values: map[string]interface{}{"data": `{"n":1}`}},
				{ID: "2-0", Values: map[string]interface{}{"timestamp": "0"}},
			},
		}}, nil)
	case 2:
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	default:
		<-ctx.Done()
		return redis.NewXStreamSliceCmdResult(nil, ctx.Err())
	}
}

func TestRelayForwardsData(t *testing.T) {
	hub := NewHub()
	stream := &fakeStream{}
	relay := NewRelay(stream, publisher.StreamGameUpdates, hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	select {
	case msg := <-hub.broadcast:
		if string(msg) != `{"n":1}` {
			t.Errorf("broadcast = %s", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("nothing broadcast")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if len(stream.ids) < 3 || stream.ids[0] != "$" || stream.ids[1] != "2-0" {
		t.Errorf("read ids = %v", stream.ids)
	}
	if len(hub.broadcast) != 0 {
		t.Errorf("entries without data were broadcast")
	}
}
