package broadcast

import (
	"context"
	"encoding/json"
	"testing"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
	"github.com/jasemontop/GlobalChatroom/events"
)

// sentinelFrame is pushed through the hub loop after the delivery under
// test. The loop is FIFO, so once every client holds the sentinel the
// earlier delivery has been fully processed.
const sentinelFrame = `{"type":"updateParties","payload":[]}`

func consumerFixture(t *testing.T, ids ...string) (*Module, map[string]*recorder) {
	t.Helper()
	m := &Module{hub: NewHub()}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go m.hub.Run(ctx)

	recs := make(map[string]*recorder, len(ids))
	for _, id := range ids {
		rec := &recorder{}
		recs[id] = rec
		m.hub.Register(&Client{ID: id, Conn: rec})
	}
	waitFor(t, func() bool { return m.hub.ClientCount() == len(ids) })
	return m, recs
}

func drain(t *testing.T, m *Module, recs map[string]*recorder) {
	t.Helper()
	m.hub.Deliver(nil, []byte(sentinelFrame))
	waitFor(t, func() bool {
		for _, rec := range recs {
			if string(rec.lastFrame()) != sentinelFrame {
				return false
			}
		}
		return true
	})
}

func noticeFrames(r *recorder) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, frame := range r.frames {
		if string(frame) != sentinelFrame {
			count++
		}
	}
	return count
}

// busTrip replays the JSON hop the EventBus performs between publisher and
// consumer.
func busTrip(t *testing.T, in, out any) {
	t.Helper()
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
}

func TestLeaveNoticeForEmptiedPartyReachesNobody(t *testing.T) {
	m, recs := consumerFixture(t, "a", "b")

	// The last member just left: the notice carries an empty, non-nil set.
	var event events.SystemNoticeEvent
	busTrip(t, events.SystemNoticeEvent{Recipients: []string{}, Text: "Alice left lobby"}, &event)
	if event.Recipients == nil {
		t.Fatal("empty recipient set decoded as nil")
	}

	if err := m.handleSystemNotice(context.Background(), event, nil); err != nil {
		t.Fatalf("handleSystemNotice: %v", err)
	}
	drain(t, m, recs)

	for id, rec := range recs {
		if got := noticeFrames(rec); got != 0 {
			t.Errorf("client %s got %d frames, want 0", id, got)
		}
	}
}

func TestGlobalNoticeReachesEveryone(t *testing.T) {
	m, recs := consumerFixture(t, "a", "b")

	var event events.SystemNoticeEvent
	busTrip(t, events.SystemNoticeEvent{Recipients: nil, Text: "Alice joined the chat"}, &event)

	if err := m.handleSystemNotice(context.Background(), event, nil); err != nil {
		t.Fatalf("handleSystemNotice: %v", err)
	}
	drain(t, m, recs)

	for id, rec := range recs {
		if got := noticeFrames(rec); got != 1 {
			t.Errorf("client %s got %d frames, want 1", id, got)
		}
	}
}

func TestMessageFanOutStaysInParty(t *testing.T) {
	m, recs := consumerFixture(t, "a", "b", "c")

	var event events.MessageSentEvent
	busTrip(t, events.MessageSentEvent{
		Recipients: []string{"a", "b"},
		Message:    domain.Message{ID: 1, Sender: "Alice", Text: "hi"},
	}, &event)

	if err := m.handleMessageSent(context.Background(), event, nil); err != nil {
		t.Fatalf("handleMessageSent: %v", err)
	}
	drain(t, m, recs)

	if got := noticeFrames(recs["a"]); got != 1 {
		t.Errorf("client a got %d frames, want 1", got)
	}
	if got := noticeFrames(recs["b"]); got != 1 {
		t.Errorf("client b got %d frames, want 1", got)
	}
	if got := noticeFrames(recs["c"]); got != 0 {
		t.Errorf("client c got %d frames, want 0", got)
	}
}
