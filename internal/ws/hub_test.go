package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crimewatch/config"
	"crimewatch/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestAlertHub_BroadcastToUser(t *testing.T) {
	h := NewAlertHub()
	a1, a2, b := NewClient(1, 4), NewClient(1, 4), NewClient(2, 4)
	h.Register(a1)
	h.Register(a2)
	h.Register(b)
	if h.ClientCount() != 3 {
		t.Fatalf("count = %d", h.ClientCount())
	}

	if n := h.BroadcastToUser(1, map[string]string{"type": "notification"}); n != 2 {
		t.Errorf("reached %d connections, want 2", n)
	}
	if n := h.BroadcastToUser(9, "nobody"); n != 0 {
		t.Errorf("user without sockets reached %d connections", n)
	}
	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.Send:
			if !strings.Contains(string(msg), "notification") {
				t.Errorf("msg = %s", msg)
			}
		default:
			t.Error("user 1 connection got nothing")
		}
	}
	if len(b.Send) != 0 {
		t.Error("user 2 must not receive user 1's alert")
	}

	a1.Close()
	a1.Close()
	if h.ClientCount() != 2 {
		t.Errorf("count after close = %d", h.ClientCount())
	}
	h.BroadcastToUser(1, "after close") // must not panic on the closed client
}

func TestAlertHub_SlowClientDrops(t *testing.T) {
	h := NewAlertHub()
	c := NewClient(1, 1)
	h.Register(c)
	h.BroadcastToUser(1, 1)
	if n := h.BroadcastToUser(1, 2); n != 0 {
		t.Errorf("full buffer counted as delivered (%d)", n)
	}
	if len(c.Send) != 1 {
		t.Errorf("buffered %d, want 1", len(c.Send))
	}
}

func TestServeAlerts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "s", AccessExpiry: time.Minute}
	hub := NewAlertHub()
	r := gin.New()
	r.GET("/ws/alerts", ServeAlerts(cfg, hub, NewUpgrader(nil)))
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/alerts")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status %d", resp.StatusCode)
	}

	tok, _ := auth.GenerateAccessToken(cfg, 7, "", "USER")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alerts?token=" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	hub.BroadcastToUser(7, map[string]interface{}{"type": "notification", "zone_id": 3})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(msg, &got); err != nil || got["zone_id"] != float64(3) {
		t.Errorf("msg = %s (%v)", msg, err)
	}
}

func TestUpgraderOrigins(t *testing.T) {
	u := NewUpgrader([]string{"https://app.example.com"})
	cases := map[string]bool{
		"":                        true,
		"https://app.example.com": true,
		"https://evil.example":    false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "http://api.example.com/ws/alerts", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if got := u.CheckOrigin(req); got != want {
			t.Errorf("origin %q: %v, want %v", origin, got, want)
		}
	}
}
