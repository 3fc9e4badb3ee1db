package api

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	limiter := newRateLimiter(3, 1)

	for i := 0; i < 3; i++ {
		if !limiter.allow() {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if limiter.allow() {
		t.Error("request past the burst was allowed")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	limiter := newRateLimiter(5, 10)
	for i := 0; i < 5; i++ {
		limiter.allow()
	}
	if limiter.allow() {
		t.Fatal("exhausted limiter allowed a request")
	}

	// Backdate the last refill instead of sleeping.
	limiter.mu.Lock()
	limiter.lastRefill = time.Now().Add(-1 * time.Second)
	limiter.mu.Unlock()

	if !limiter.allow() {
		t.Error("limiter did not refill after a second")
	}
}

func TestRateLimiterRefillCapped(t *testing.T) {
	limiter := newRateLimiter(2, 100)
	limiter.mu.Lock()
	limiter.tokens = 0
	limiter.lastRefill = time.Now().Add(-time.Hour)
	limiter.mu.Unlock()

	limiter.allow()
	limiter.allow()
	if limiter.allow() {
		t.Error("refill exceeded the bucket capacity")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want SetIdentityPayload
	}{
		{
			name: "full payload",
			raw:  `{"name":"Alice","color":"#abc"}`,
			want: SetIdentityPayload{Name: "Alice", Color: "#abc"},
		},
		{
			name: "missing fields default",
			raw:  `{"name":"Alice"}`,
			want: SetIdentityPayload{Name: "Alice"},
		},
		{
			name: "absent payload",
			raw:  "",
			want: SetIdentityPayload{},
		},
		{
			name: "malformed payload",
			raw:  `{"name":`,
			want: SetIdentityPayload{},
		},
		{
			name: "wrong types ignored",
			raw:  `{"name":42}`,
			want: SetIdentityPayload{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p SetIdentityPayload
			decode(json.RawMessage(tt.raw), &p)
			if p != tt.want {
				t.Errorf("decode() = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestInboundMessageUnmarshal(t *testing.T) {
	raw := `{"type":"sendMessage","payload":{"text":"hello"}}`

	var msg InboundMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != InSendMessage {
		t.Errorf("Type = %q, want %q", msg.Type, InSendMessage)
	}

	var p SendMessagePayload
	decode(msg.Payload, &p)
	if p.Text != "hello" {
		t.Errorf("Text = %q, want %q", p.Text, "hello")
	}
}
