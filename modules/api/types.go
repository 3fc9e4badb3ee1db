package api

import (
	"encoding/json"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
)

// Inbound event types on the WebSocket wire.
const (
	InSetIdentity   = "setIdentity"
	InCreateParty   = "createParty"
	InJoinParty     = "joinParty"
	InLeaveParty    = "leaveParty"
	InSendMessage   = "sendMessage"
	InSendImage     = "sendImage"
	InDeleteMessage = "deleteMessage"
	InTyping        = "typing"
	InSendInvite    = "sendInvite"
)

// InboundMessage is the envelope clients send over the WebSocket.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetIdentityPayload sets the display name and color.
type SetIdentityPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PartyPayload names a party, with an optional password for create/join.
type PartyPayload struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// SendMessagePayload carries outbound text.
type SendMessagePayload struct {
	Text string `json:"text"`
}

// SendImagePayload carries pasted image data.
type SendImagePayload struct {
	ImageData string `json:"imageData"`
}

// DeleteMessagePayload names a message id to delete.
type DeleteMessagePayload struct {
	ID int64 `json:"id"`
}

// TypingPayload carries the typing flag.
type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// InvitePayload names the user to invite.
type InvitePayload struct {
	TargetUsername string `json:"targetUsername"`
}

// PartyListResponse is the REST snapshot of parties.
type PartyListResponse struct {
	Parties []domain.Summary `json:"parties"`
	Total   int              `json:"total"`
}

// UserListResponse is the REST presence snapshot.
type UserListResponse struct {
	Users []string `json:"users"`
	Total int      `json:"total"`
}

// ErrorResponse is the REST error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the REST health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
