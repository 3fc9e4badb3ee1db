package broadcast

import "encoding/json"

// Outbound event types on the WebSocket wire.
const (
	WireConnected     = "connected"
	WireSystemMessage = "systemMessage"
	WireUpdateUsers   = "updateUsers"
	WireUpdateParties = "updateParties"
	WireChatMessage   = "chatMessage"
	WireChatImage     = "chatImage"
	WirePartyCreated  = "partyCreated"
	WirePartyJoined   = "partyJoined"
	WirePartyError    = "partyError"
	WireTyping        = "typing"
	WireDeleteMessage = "deleteMessage"
	WireReceiveInvite = "receiveInvite"
	WireError         = "error"
)

// Envelope is the wire format for every outbound WebSocket event.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TypingPayload is the outbound typing relay.
type TypingPayload struct {
	Sender   string `json:"username"`
	IsTyping bool   `json:"isTyping"`
	Party    string `json:"party"`
}

// DeletePayload is the outbound deletion notice.
type DeletePayload struct {
	ID int64 `json:"id"`
}

// InvitePayload is the outbound party invite.
type InvitePayload struct {
	From string `json:"from"`
}

// ConnectedPayload acknowledges a fresh connection with its assigned id.
type ConnectedPayload struct {
	ConnID string `json:"connId"`
}

// Encode marshals a typed payload into an envelope ready for the wire.
func Encode(wireType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: wireType, Payload: raw})
}

// EncodeError marshals an error envelope.
func EncodeError(message string) ([]byte, error) {
	return json.Marshal(Envelope{Type: WireError, Error: message})
}
