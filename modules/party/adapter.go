package party

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
)

// PartyPort is the interface other modules use to reach the party
// coordinator.
type PartyPort interface {
	Connect(ctx context.Context, connID string) error
	Disconnect(ctx context.Context, connID string) error
	SetIdentity(ctx context.Context, connID, name, color string) (bool, error)
	CreateParty(ctx context.Context, connID, name, password string) (CreatePartyResponse, error)
	JoinParty(ctx context.Context, connID, name, password string) (JoinPartyResponse, error)
	LeaveParty(ctx context.Context, connID, name string) error
	SendMessage(ctx context.Context, connID, text string) (SendResponse, error)
	SendImage(ctx context.Context, connID, imageData string) (SendResponse, error)
	DeleteMessage(ctx context.Context, connID string, messageID int64) error
	SetTyping(ctx context.Context, connID string, isTyping bool) error
	SendInvite(ctx context.Context, connID, targetUsername string) (SendInviteResponse, error)
	ListParties(ctx context.Context) ([]domain.Summary, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// Adapter implements PartyPort using the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) PartyPort {
	if container == nil {
		panic("party: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Connect registers a new anonymous connection.
func (a *Adapter) Connect(ctx context.Context, connID string) error {
	req := ConnectRequest{ConnID: connID}
	var resp ConnectResponse
	return a.call(ctx, ServiceConnect, &req, &resp)
}

// Disconnect tears down a connection and its party membership.
func (a *Adapter) Disconnect(ctx context.Context, connID string) error {
	req := DisconnectRequest{ConnID: connID}
	var resp DisconnectResponse
	return a.call(ctx, ServiceDisconnect, &req, &resp)
}

// SetIdentity sets the display name and color for a connection. The bool
// reports whether the identity was applied (a blank name is dropped).
func (a *Adapter) SetIdentity(ctx context.Context, connID, name, color string) (bool, error) {
	req := SetIdentityRequest{ConnID: connID, Name: name, Color: color}
	var resp SetIdentityResponse
	if err := a.call(ctx, ServiceSetIdentity, &req, &resp); err != nil {
		return false, err
	}
	return resp.Applied, nil
}

// CreateParty creates a named party.
func (a *Adapter) CreateParty(ctx context.Context, connID, name, password string) (CreatePartyResponse, error) {
	req := CreatePartyRequest{ConnID: connID, Name: name, Password: password}
	var resp CreatePartyResponse
	if err := a.call(ctx, ServiceCreateParty, &req, &resp); err != nil {
		return CreatePartyResponse{}, err
	}
	return resp, nil
}

// JoinParty joins a party, leaving any current one first.
func (a *Adapter) JoinParty(ctx context.Context, connID, name, password string) (JoinPartyResponse, error) {
	req := JoinPartyRequest{ConnID: connID, Name: name, Password: password}
	var resp JoinPartyResponse
	if err := a.call(ctx, ServiceJoinParty, &req, &resp); err != nil {
		return JoinPartyResponse{}, err
	}
	return resp, nil
}

// LeaveParty leaves a named party.
func (a *Adapter) LeaveParty(ctx context.Context, connID, name string) error {
	req := LeavePartyRequest{ConnID: connID, Name: name}
	var resp LeavePartyResponse
	return a.call(ctx, ServiceLeaveParty, &req, &resp)
}

// SendMessage routes a text message to the sender's party.
func (a *Adapter) SendMessage(ctx context.Context, connID, text string) (SendResponse, error) {
	req := SendMessageRequest{ConnID: connID, Text: text}
	var resp SendResponse
	if err := a.call(ctx, ServiceSendMessage, &req, &resp); err != nil {
		return SendResponse{}, err
	}
	return resp, nil
}

// SendImage routes a pasted image to the sender's party.
func (a *Adapter) SendImage(ctx context.Context, connID, imageData string) (SendResponse, error) {
	req := SendImageRequest{ConnID: connID, ImageData: imageData}
	var resp SendResponse
	if err := a.call(ctx, ServiceSendImage, &req, &resp); err != nil {
		return SendResponse{}, err
	}
	return resp, nil
}

// DeleteMessage re-broadcasts a deletion notice for a message id.
func (a *Adapter) DeleteMessage(ctx context.Context, connID string, messageID int64) error {
	req := DeleteMessageRequest{ConnID: connID, MessageID: messageID}
	var resp DeleteMessageResponse
	return a.call(ctx, ServiceDeleteMessage, &req, &resp)
}

// SetTyping relays typing state to party peers.
func (a *Adapter) SetTyping(ctx context.Context, connID string, isTyping bool) error {
	req := SetTypingRequest{ConnID: connID, IsTyping: isTyping}
	var resp SetTypingResponse
	return a.call(ctx, ServiceSetTyping, &req, &resp)
}

// SendInvite invites another user by display name.
func (a *Adapter) SendInvite(ctx context.Context, connID, targetUsername string) (SendInviteResponse, error) {
	req := SendInviteRequest{ConnID: connID, TargetUsername: targetUsername}
	var resp SendInviteResponse
	if err := a.call(ctx, ServiceSendInvite, &req, &resp); err != nil {
		return SendInviteResponse{}, err
	}
	return resp, nil
}

// ListParties returns the current party-list snapshot.
func (a *Adapter) ListParties(ctx context.Context) ([]domain.Summary, error) {
	req := ListPartiesRequest{}
	var resp ListPartiesResponse
	if err := a.call(ctx, ServiceListParties, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Parties, nil
}

// ListUsers returns the current presence snapshot.
func (a *Adapter) ListUsers(ctx context.Context) ([]string, error) {
	req := ListUsersRequest{}
	var resp ListUsersResponse
	if err := a.call(ctx, ServiceListUsers, &req, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}
