package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func TestClient_Connect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		// Keep connection open
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	client, err := NewClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if client.closed.Load() {
		t.Error("client should not be closed")
	}
}

func TestClient_Subscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer c.Close()

		// Read subscribe request
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}

		var req feedRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal request: %v", err)
			return
		}

		if req.Op != "subscribe" {
			t.Errorf("expected subscribe, got %s", req.Op)
		}
		if len(req.Tickers) != 2 {
			t.Errorf("expected 2 tickers, got %d", len(req.Tickers))
		}

		// Send subscription confirmation
		ack := feedMessage{
			Op:           "subscribed",
			ID:           req.ID,
			Subscription: 42,
		}
		if err := c.WriteJSON(ack); err != nil {
			t.Errorf("write ack: %v", err)
			return
		}

		// Push an evidence payload
		time.Sleep(50 * time.Millisecond)
		push := feedMessage{
			Op:           "evidence",
			Subscription: 42,
			Item:         json.RawMessage(`{"ticker":"AFRM","title":"Short interest climbs"}`),
		}
		if err := c.WriteJSON(push); err != nil {
			t.Errorf("write push: %v", err)
			return
		}

		// Keep connection open
		for {
			_, _, err := c.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	client, err := NewClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	ch, err := client.Subscribe(ctx, TickerFilter{
		Tickers: []string{"AFRM", "SQ"},
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Wait for the pushed payload
	select {
	case notif := <-ch:
		if notif.Subscription != 42 {
			t.Errorf("expected subscription 42, got %d", notif.Subscription)
		}
		var item struct {
			Ticker string `json:"ticker"`
		}
		if err := json.Unmarshal(notif.Payload, &item); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if item.Ticker != "AFRM" {
			t.Errorf("expected AFRM, got %s", item.Ticker)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for evidence push")
	}
}

func TestClient_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	client, err := NewClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.Close()
	if err != nil {
		t.Errorf("Close: %v", err)
	}

	if !client.closed.Load() {
		t.Error("client should be closed")
	}

	// Double close should be safe
	err = client.Close()
	if err != nil {
		t.Errorf("double Close: %v", err)
	}
}

func TestClient_SubscribeAfterClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	client, err := NewClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	client.Close()

	_, err = client.Subscribe(ctx, TickerFilter{})
	if err == nil {
		t.Error("expected error subscribing after close")
	}
}

func TestClient_CustomConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	config := &ClientConfig{
		ReconnectDelay:    100 * time.Millisecond,
		MaxReconnectDelay: 1 * time.Second,
		PingInterval:      5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Second,
	}

	ctx := context.Background()
	client, err := NewClient(ctx, wsURL, config)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if client.config.PingInterval != 5*time.Second {
		t.Errorf("expected PingInterval 5s, got %v", client.config.PingInterval)
	}
}
