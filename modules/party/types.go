package party

import domain "github.com/jasemontop/GlobalChatroom/domain/party"

// Service names registered in the ServiceContainer.
const (
	ServiceConnect       = "connect"
	ServiceDisconnect    = "disconnect"
	ServiceSetIdentity   = "set-identity"
	ServiceCreateParty   = "create-party"
	ServiceJoinParty     = "join-party"
	ServiceLeaveParty    = "leave-party"
	ServiceSendMessage   = "send-message"
	ServiceSendImage     = "send-image"
	ServiceDeleteMessage = "delete-message"
	ServiceSetTyping     = "set-typing"
	ServiceSendInvite    = "send-invite"
	ServiceListParties   = "list-parties"
	ServiceListUsers     = "list-users"
)

// ConnectRequest registers a new anonymous connection.
type ConnectRequest struct {
	ConnID string `json:"conn_id"`
}

// ConnectResponse acknowledges a connect.
type ConnectResponse struct {
	OK bool `json:"ok"`
}

// DisconnectRequest tears down a connection.
type DisconnectRequest struct {
	ConnID string `json:"conn_id"`
}

// DisconnectResponse acknowledges a disconnect.
type DisconnectResponse struct {
	OK bool `json:"ok"`
}

// SetIdentityRequest sets the display name and color for a connection.
type SetIdentityRequest struct {
	ConnID string `json:"conn_id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
}

// SetIdentityResponse acknowledges a set-identity. A blank name is not an
// error; it is simply not applied.
type SetIdentityResponse struct {
	Applied bool `json:"applied"`
}

// CreatePartyRequest creates a named party, optionally password-protected.
type CreatePartyRequest struct {
	ConnID   string `json:"conn_id"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// CreatePartyResponse carries the created name, or the user-facing failure.
type CreatePartyResponse struct {
	OK    bool   `json:"ok"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

// JoinPartyRequest joins a party, leaving any current one first.
type JoinPartyRequest struct {
	ConnID   string `json:"conn_id"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// JoinPartyResponse carries the joined name, or the user-facing failure.
type JoinPartyResponse struct {
	OK    bool   `json:"ok"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

// LeavePartyRequest leaves a named party. Non-membership is a no-op.
type LeavePartyRequest struct {
	ConnID string `json:"conn_id"`
	Name   string `json:"name"`
}

// LeavePartyResponse acknowledges a leave.
type LeavePartyResponse struct {
	OK bool `json:"ok"`
}

// SendMessageRequest routes a text message to the sender's party.
type SendMessageRequest struct {
	ConnID string `json:"conn_id"`
	Text   string `json:"text"`
}

// SendImageRequest routes a pasted image to the sender's party.
type SendImageRequest struct {
	ConnID    string `json:"conn_id"`
	ImageData string `json:"image_data"`
}

// SendResponse is shared by message and image sends. Notice carries the
// private "join a party" nudge when the sender is roomless.
type SendResponse struct {
	OK     bool   `json:"ok"`
	ID     int64  `json:"id,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// DeleteMessageRequest re-broadcasts a deletion notice for a message id.
type DeleteMessageRequest struct {
	ConnID    string `json:"conn_id"`
	MessageID int64  `json:"message_id"`
}

// DeleteMessageResponse acknowledges a delete broadcast.
type DeleteMessageResponse struct {
	OK bool `json:"ok"`
}

// SetTypingRequest relays typing state to party peers.
type SetTypingRequest struct {
	ConnID   string `json:"conn_id"`
	IsTyping bool   `json:"is_typing"`
}

// SetTypingResponse acknowledges a typing relay.
type SetTypingResponse struct {
	OK bool `json:"ok"`
}

// SendInviteRequest invites another user, looked up by display name.
type SendInviteRequest struct {
	ConnID         string `json:"conn_id"`
	TargetUsername string `json:"target_username"`
}

// SendInviteResponse carries the private failure notice when the target is
// not online.
type SendInviteResponse struct {
	OK     bool   `json:"ok"`
	Notice string `json:"notice,omitempty"`
}

// ListPartiesRequest asks for the current party-list snapshot.
type ListPartiesRequest struct{}

// ListPartiesResponse is the current party-list snapshot.
type ListPartiesResponse struct {
	Parties []domain.Summary `json:"parties"`
}

// ListUsersRequest asks for the current presence snapshot.
type ListUsersRequest struct{}

// ListUsersResponse is the current presence snapshot.
type ListUsersResponse struct {
	Users []string `json:"users"`
}
