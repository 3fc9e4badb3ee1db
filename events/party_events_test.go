package events

import (
	"encoding/json"
	"testing"
)

// The EventBus carries payloads as JSON, so the recipient-scope convention
// (nil = everyone, empty = nobody) has to survive a marshal/unmarshal hop.
func TestSystemNoticeRecipientScopeSurvivesBus(t *testing.T) {
	tests := []struct {
		name       string
		recipients []string
		wantNil    bool
		wantLen    int
	}{
		{name: "nil means everyone", recipients: nil, wantNil: true},
		{name: "empty means nobody", recipients: []string{}, wantNil: false, wantLen: 0},
		{name: "scoped set", recipients: []string{"a", "b"}, wantNil: false, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(SystemNoticeEvent{Recipients: tt.recipients, Text: "Alice left lobby"})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var decoded SystemNoticeEvent
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if gotNil := decoded.Recipients == nil; gotNil != tt.wantNil {
				t.Fatalf("Recipients nil = %v, want %v (wire: %s)", gotNil, tt.wantNil, raw)
			}
			if len(decoded.Recipients) != tt.wantLen {
				t.Errorf("len(Recipients) = %d, want %d", len(decoded.Recipients), tt.wantLen)
			}
		})
	}
}

func TestMessageSentRecipientScopeSurvivesBus(t *testing.T) {
	raw, err := json.Marshal(MessageSentEvent{Recipients: []string{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded MessageSentEvent
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Recipients == nil {
		t.Errorf("empty recipient set decoded as nil (wire: %s)", raw)
	}
}
