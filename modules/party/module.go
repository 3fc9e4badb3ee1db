package party

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
	"github.com/jasemontop/GlobalChatroom/events"
)

// Module exposes the party coordinator as request-reply services and
// publishes fan-out events for the broadcast module.
type Module struct {
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new party module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		service: NewService(),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "party"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.SystemNoticeV1.ToBase(),
		events.UsersChangedV1.ToBase(),
		events.PartiesChangedV1.ToBase(),
		events.MessageSentV1.ToBase(),
		events.ImageSentV1.ToBase(),
		events.MessageDeletedV1.ToBase(),
		events.TypingV1.ToBase(),
		events.InviteSentV1.ToBase(),
	}
}

// Start initializes the party module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Party module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Party module stopped",
		"connections", m.service.ConnectionCount())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": m.service.ConnectionCount(),
			"parties":     len(m.service.Parties()),
		},
	}
}

// Service returns the underlying coordinator.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	register := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
		return nil
	}

	if err := register(ServiceConnect, helper.RegisterTypedRequestReplyService(
		container, ServiceConnect, json.Unmarshal, json.Marshal, m.handleConnect,
	)); err != nil {
		return err
	}
	if err := register(ServiceDisconnect, helper.RegisterTypedRequestReplyService(
		container, ServiceDisconnect, json.Unmarshal, json.Marshal, m.handleDisconnect,
	)); err != nil {
		return err
	}
	if err := register(ServiceSetIdentity, helper.RegisterTypedRequestReplyService(
		container, ServiceSetIdentity, json.Unmarshal, json.Marshal, m.handleSetIdentity,
	)); err != nil {
		return err
	}
	if err := register(ServiceCreateParty, helper.RegisterTypedRequestReplyService(
		container, ServiceCreateParty, json.Unmarshal, json.Marshal, m.handleCreateParty,
	)); err != nil {
		return err
	}
	if err := register(ServiceJoinParty, helper.RegisterTypedRequestReplyService(
		container, ServiceJoinParty, json.Unmarshal, json.Marshal, m.handleJoinParty,
	)); err != nil {
		return err
	}
	if err := register(ServiceLeaveParty, helper.RegisterTypedRequestReplyService(
		container, ServiceLeaveParty, json.Unmarshal, json.Marshal, m.handleLeaveParty,
	)); err != nil {
		return err
	}
	if err := register(ServiceSendMessage, helper.RegisterTypedRequestReplyService(
		container, ServiceSendMessage, json.Unmarshal, json.Marshal, m.handleSendMessage,
	)); err != nil {
		return err
	}
	if err := register(ServiceSendImage, helper.RegisterTypedRequestReplyService(
		container, ServiceSendImage, json.Unmarshal, json.Marshal, m.handleSendImage,
	)); err != nil {
		return err
	}
	if err := register(ServiceDeleteMessage, helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteMessage, json.Unmarshal, json.Marshal, m.handleDeleteMessage,
	)); err != nil {
		return err
	}
	if err := register(ServiceSetTyping, helper.RegisterTypedRequestReplyService(
		container, ServiceSetTyping, json.Unmarshal, json.Marshal, m.handleSetTyping,
	)); err != nil {
		return err
	}
	if err := register(ServiceSendInvite, helper.RegisterTypedRequestReplyService(
		container, ServiceSendInvite, json.Unmarshal, json.Marshal, m.handleSendInvite,
	)); err != nil {
		return err
	}
	if err := register(ServiceListParties, helper.RegisterTypedRequestReplyService(
		container, ServiceListParties, json.Unmarshal, json.Marshal, m.handleListParties,
	)); err != nil {
		return err
	}
	if err := register(ServiceListUsers, helper.RegisterTypedRequestReplyService(
		container, ServiceListUsers, json.Unmarshal, json.Marshal, m.handleListUsers,
	)); err != nil {
		return err
	}

	m.logger.Info("Registered party services")
	return nil
}

func (m *Module) handleConnect(_ context.Context, req ConnectRequest, _ *mono.Msg) (ConnectResponse, error) {
	m.service.Connect(req.ConnID)
	m.logger.Debug("Connection registered", "connID", req.ConnID)
	return ConnectResponse{OK: true}, nil
}

func (m *Module) handleDisconnect(_ context.Context, req DisconnectRequest, _ *mono.Msg) (DisconnectResponse, error) {
	res := m.service.Disconnect(req.ConnID)
	if res.HadIdentity {
		m.publishNotice(nil, res.Name+" left the chat")
		m.publish("UsersChanged", events.UsersChangedV1.Publish(m.eventBus,
			events.UsersChangedEvent{Users: res.Users}, nil))
	}
	m.publish("PartiesChanged", events.PartiesChangedV1.Publish(m.eventBus,
		events.PartiesChangedEvent{Parties: res.Parties}, nil))

	m.logger.Info("Connection removed", "connID", req.ConnID)
	return DisconnectResponse{OK: true}, nil
}

func (m *Module) handleSetIdentity(_ context.Context, req SetIdentityRequest, _ *mono.Msg) (SetIdentityResponse, error) {
	res, err := m.service.SetIdentity(req.ConnID, req.Name, req.Color)
	if errors.Is(err, domain.ErrEmptyInput) {
		return SetIdentityResponse{Applied: false}, nil
	}

	m.publishNotice(nil, res.Name+" joined the chat")
	m.publish("UsersChanged", events.UsersChangedV1.Publish(m.eventBus,
		events.UsersChangedEvent{Users: res.Users}, nil))
	m.publish("PartiesChanged", events.PartiesChangedV1.Publish(m.eventBus,
		events.PartiesChangedEvent{Parties: res.Parties}, nil))

	m.logger.Info("Identity set", "connID", req.ConnID, "name", res.Name)
	return SetIdentityResponse{Applied: true}, nil
}

func (m *Module) handleCreateParty(_ context.Context, req CreatePartyRequest, _ *mono.Msg) (CreatePartyResponse, error) {
	res, err := m.service.CreateParty(req.ConnID, req.Name, req.Password)
	if err != nil {
		return CreatePartyResponse{OK: false, Error: err.Error()}, nil
	}

	m.publish("PartiesChanged", events.PartiesChangedV1.Publish(m.eventBus,
		events.PartiesChangedEvent{Parties: res.Parties}, nil))

	m.logger.Info("Party created", "name", res.Name, "connID", req.ConnID)
	return CreatePartyResponse{OK: true, Name: res.Name}, nil
}

func (m *Module) handleJoinParty(_ context.Context, req JoinPartyRequest, _ *mono.Msg) (JoinPartyResponse, error) {
	res, err := m.service.JoinParty(req.ConnID, req.Name, req.Password)
	if err != nil {
		return JoinPartyResponse{OK: false, Error: err.Error()}, nil
	}

	m.publishNotice(res.Recipients, res.Notice)
	m.publish("PartiesChanged", events.PartiesChangedV1.Publish(m.eventBus,
		events.PartiesChangedEvent{Parties: res.Parties}, nil))

	m.logger.Info("Party joined", "name", res.Name, "connID", req.ConnID)
	return JoinPartyResponse{OK: true, Name: res.Name}, nil
}

func (m *Module) handleLeaveParty(_ context.Context, req LeavePartyRequest, _ *mono.Msg) (LeavePartyResponse, error) {
	res, err := m.service.LeaveParty(req.ConnID, req.Name)
	if err != nil {
		// Unknown party or non-member: nothing to do.
		return LeavePartyResponse{OK: true}, nil
	}

	m.publishNotice(res.Recipients, res.Notice)
	m.publish("PartiesChanged", events.PartiesChangedV1.Publish(m.eventBus,
		events.PartiesChangedEvent{Parties: res.Parties}, nil))

	m.logger.Info("Party left", "name", req.Name, "connID", req.ConnID)
	return LeavePartyResponse{OK: true}, nil
}

func (m *Module) handleSendMessage(_ context.Context, req SendMessageRequest, _ *mono.Msg) (SendResponse, error) {
	msg, recipients, err := m.service.SendMessage(req.ConnID, req.Text)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return SendResponse{OK: true}, nil
	case errors.Is(err, domain.ErrNoActiveParty):
		return SendResponse{OK: false, Notice: err.Error()}, nil
	}

	m.publish("MessageSent", events.MessageSentV1.Publish(m.eventBus,
		events.MessageSentEvent{Recipients: recipients, Message: msg}, nil))

	m.logger.Debug("Message routed", "id", msg.ID, "party", msg.Party)
	return SendResponse{OK: true, ID: msg.ID}, nil
}

func (m *Module) handleSendImage(_ context.Context, req SendImageRequest, _ *mono.Msg) (SendResponse, error) {
	msg, recipients, err := m.service.SendImage(req.ConnID, req.ImageData)
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return SendResponse{OK: true}, nil
	case errors.Is(err, domain.ErrNoActiveParty):
		return SendResponse{OK: false, Notice: err.Error()}, nil
	}

	m.publish("ImageSent", events.ImageSentV1.Publish(m.eventBus,
		events.ImageSentEvent{Recipients: recipients, Message: msg}, nil))

	m.logger.Debug("Image routed", "id", msg.ID, "party", msg.Party)
	return SendResponse{OK: true, ID: msg.ID}, nil
}

func (m *Module) handleDeleteMessage(_ context.Context, req DeleteMessageRequest, _ *mono.Msg) (DeleteMessageResponse, error) {
	recipients, err := m.service.DeleteMessage(req.ConnID, req.MessageID)
	if err != nil {
		return DeleteMessageResponse{OK: false}, nil
	}

	m.publish("MessageDeleted", events.MessageDeletedV1.Publish(m.eventBus,
		events.MessageDeletedEvent{Recipients: recipients, MessageID: req.MessageID}, nil))

	m.logger.Debug("Delete broadcast", "id", req.MessageID)
	return DeleteMessageResponse{OK: true}, nil
}

func (m *Module) handleSetTyping(_ context.Context, req SetTypingRequest, _ *mono.Msg) (SetTypingResponse, error) {
	res, err := m.service.SetTyping(req.ConnID)
	if err != nil {
		return SetTypingResponse{OK: true}, nil
	}

	m.publish("Typing", events.TypingV1.Publish(m.eventBus, events.TypingEvent{
		Recipients: res.Recipients,
		Sender:     res.Sender,
		IsTyping:   req.IsTyping,
		Party:      res.Party,
	}, nil))

	return SetTypingResponse{OK: true}, nil
}

func (m *Module) handleSendInvite(_ context.Context, req SendInviteRequest, _ *mono.Msg) (SendInviteResponse, error) {
	targetConnID, from, err := m.service.SendInvite(req.ConnID, req.TargetUsername)
	if err != nil {
		return SendInviteResponse{
			OK:     false,
			Notice: "User " + req.TargetUsername + " not found or offline.",
		}, nil
	}

	m.publish("InviteSent", events.InviteSentV1.Publish(m.eventBus,
		events.InviteSentEvent{TargetConnID: targetConnID, From: from}, nil))

	m.logger.Debug("Invite sent", "from", from, "target", req.TargetUsername)
	return SendInviteResponse{OK: true}, nil
}

func (m *Module) handleListParties(_ context.Context, _ ListPartiesRequest, _ *mono.Msg) (ListPartiesResponse, error) {
	return ListPartiesResponse{Parties: m.service.Parties()}, nil
}

func (m *Module) handleListUsers(_ context.Context, _ ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	return ListUsersResponse{Users: m.service.Users()}, nil
}

// publishNotice publishes a system notice to the given recipients, or to
// everyone when recipients is nil. An empty set means nobody is left to
// tell (the last member leaving a party), so no event goes out at all.
func (m *Module) publishNotice(recipients []string, text string) {
	if recipients != nil && len(recipients) == 0 {
		return
	}
	m.publish("SystemNotice", events.SystemNoticeV1.Publish(m.eventBus,
		events.SystemNoticeEvent{Recipients: recipients, Text: text}, nil))
}

// publish logs failed event publishes. Fan-out is best-effort; a lost event
// never fails the originating request.
func (m *Module) publish(name string, err error) {
	if err != nil {
		m.logger.Warn("Failed to publish event", "event", name, "error", err)
	}
}
