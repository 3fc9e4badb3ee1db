package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/jasemontop/GlobalChatroom/events"
)

// Module consumes party events and fans them out to WebSocket clients.
type Module struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new broadcast module.
func NewModule() *Module {
	return &Module{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Start initializes the module and starts the hub.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[broadcast] Module started - WebSocket hub running")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[broadcast] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// GetHub returns the WebSocket hub for the API module to use.
func (m *Module) GetHub() *Hub {
	return m.hub
}

// RegisterEventConsumers registers event handlers.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.SystemNoticeV1, m.handleSystemNotice, m,
	); err != nil {
		return fmt.Errorf("failed to register SystemNotice consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UsersChangedV1, m.handleUsersChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register UsersChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.PartiesChangedV1, m.handlePartiesChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register PartiesChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.ImageSentV1, m.handleImageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register ImageSent consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageDeletedV1, m.handleMessageDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TypingV1, m.handleTyping, m,
	); err != nil {
		return fmt.Errorf("failed to register Typing consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(
		registry, events.InviteSentV1, m.handleInviteSent, m,
	); err != nil {
		return fmt.Errorf("failed to register InviteSent consumer: %w", err)
	}

	log.Println("[broadcast] Registered party event consumers")
	return nil
}

// Event handlers

func (m *Module) handleSystemNotice(_ context.Context, event events.SystemNoticeEvent, _ *mono.Msg) error {
	return m.fanOut(event.Recipients, WireSystemMessage, event.Text)
}

func (m *Module) handleUsersChanged(_ context.Context, event events.UsersChangedEvent, _ *mono.Msg) error {
	return m.fanOut(nil, WireUpdateUsers, event.Users)
}

func (m *Module) handlePartiesChanged(_ context.Context, event events.PartiesChangedEvent, _ *mono.Msg) error {
	return m.fanOut(nil, WireUpdateParties, event.Parties)
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	return m.fanOut(event.Recipients, WireChatMessage, event.Message)
}

func (m *Module) handleImageSent(_ context.Context, event events.ImageSentEvent, _ *mono.Msg) error {
	return m.fanOut(event.Recipients, WireChatImage, event.Message)
}

func (m *Module) handleMessageDeleted(_ context.Context, event events.MessageDeletedEvent, _ *mono.Msg) error {
	return m.fanOut(event.Recipients, WireDeleteMessage, DeletePayload{ID: event.MessageID})
}

func (m *Module) handleTyping(_ context.Context, event events.TypingEvent, _ *mono.Msg) error {
	return m.fanOut(event.Recipients, WireTyping, TypingPayload{
		Sender:   event.Sender,
		IsTyping: event.IsTyping,
		Party:    event.Party,
	})
}

func (m *Module) handleInviteSent(_ context.Context, event events.InviteSentEvent, _ *mono.Msg) error {
	return m.fanOut([]string{event.TargetConnID}, WireReceiveInvite, InvitePayload{From: event.From})
}

// fanOut encodes one envelope and queues it for the hub loop. Encoding
// failures are returned so the framework can log them; delivery itself is
// best-effort.
func (m *Module) fanOut(recipients []string, wireType string, payload any) error {
	data, err := Encode(wireType, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", wireType, err)
	}
	m.hub.Deliver(recipients, data)
	return nil
}
