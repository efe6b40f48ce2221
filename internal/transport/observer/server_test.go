package observer

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"blockstack.ai/internal/observerproto"
	"blockstack.ai/internal/sim/geom"
	"blockstack.ai/internal/sim/scene"
)

func dialSubscribed(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	sub := observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return conn
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestBroadcastReachesSubscriber(t *testing.T) {
	srv := NewServer(nil)
	ts := httptest.NewServer(srv.WSHandler())
	defer ts.Close()

	conn := dialSubscribed(t, wsURL(ts))
	defer conn.Close()

	sc := scene.New()
	sc.Set("b1", geom.Box{Min: geom.Vec3{0, 0, 0}, Max: geom.Vec3{10, 10, 10}})
	sc.Set("table1", geom.Box{Min: geom.Vec3{0, 0, -1}, Max: geom.Vec3{10, 10, 0}})

	// The subscriber registers asynchronously after the handshake, so keep
	// broadcasting until one read succeeds. The connection is read exactly
	// once: gorilla/websocket panics on a repeated read after a failed one,
	// so the retries live on the broadcast side instead.
	deadline := time.Now().Add(2 * time.Second)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			srv.SceneLoaded(sc)
			select {
			case <-stop:
				return
			case <-time.After(100 * time.Millisecond):
			}
		}
	}()
	_ = conn.SetReadDeadline(deadline)
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("no broadcast received: %v", err)
	}
	var got observerproto.SceneMsg
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Type != observerproto.TypeSceneInit {
		t.Errorf("type = %q, want %q", got.Type, observerproto.TypeSceneInit)
	}
	if len(got.Boxes) != 2 {
		t.Fatalf("boxes = %d, want 2", len(got.Boxes))
	}
	if got.Boxes[0].Label != "b1" || got.Boxes[0].Table {
		t.Errorf("box 0 = %+v", got.Boxes[0])
	}
	if got.Boxes[1].Label != "table1" || !got.Boxes[1].Table {
		t.Errorf("box 1 = %+v", got.Boxes[1])
	}
}

func TestHandshakeRejectsWrongFirstMessage(t *testing.T) {
	srv := NewServer(nil)
	ts := httptest.NewServer(srv.WSHandler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close after bad handshake")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:54321", true},
		{"[::1]:54321", true},
		{"192.168.1.5:1000", false},
		{"example.com:80", false},
		{"garbage", false},
	}
	for _, c := range cases {
		if got := isLoopbackRemote(c.addr); got != c.want {
			t.Errorf("isLoopbackRemote(%q) = %v, want %v", c.addr, got, c.want)
		}
	}
}
