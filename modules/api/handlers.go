package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jasemontop/GlobalChatroom/modules/broadcast"
)

// Rate limiting constants for message and image sends.
const (
	messagesPerSecond = 10
	burstSize         = 20
)

// rateLimiter implements a simple token bucket rate limiter.
type rateLimiter struct {
	tokens     int
	maxTokens  int
	refillRate int // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newRateLimiter(maxTokens, refillRate int) *rateLimiter {
	return &rateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill)
	tokensToAdd := int(elapsed.Seconds()) * r.refillRate
	if tokensToAdd > 0 {
		r.tokens += tokensToAdd
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = now
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST snapshots
	api := m.app.Group("/api/v1")
	api.Get("/parties", m.listParties)
	api.Get("/users", m.listUsers)
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listParties handles GET /api/v1/parties.
func (m *Module) listParties(c *fiber.Ctx) error {
	parties, err := m.partyAdapter.ListParties(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list parties",
		})
	}
	return c.JSON(PartyListResponse{Parties: parties, Total: len(parties)})
}

// listUsers handles GET /api/v1/users.
func (m *Module) listUsers(c *fiber.Ctx) error {
	users, err := m.partyAdapter.ListUsers(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list users",
		})
	}
	return c.JSON(UserListResponse{Users: users, Total: len(users)})
}

// handleWebSocket handles WebSocket connections at /ws.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	limiter := newRateLimiter(burstSize, messagesPerSecond)

	if err := m.partyAdapter.Connect(context.Background(), connID); err != nil {
		slog.Error("Failed to register connection", "connID", connID, "error", err)
		return
	}

	client := &broadcast.Client{ID: connID, Conn: c}
	m.hub.Register(client)
	defer func() {
		m.hub.Unregister(client)
		if err := m.partyAdapter.Disconnect(context.Background(), connID); err != nil {
			slog.Error("Disconnect cleanup failed", "connID", connID, "error", err)
		}
		slog.Info("WebSocket client disconnected", "connID", connID)
	}()

	slog.Info("WebSocket client connected", "connID", connID)

	m.send(client, broadcast.WireConnected, broadcast.ConnectedPayload{ConnID: connID})
	m.sendSnapshots(client)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket read error", "connID", connID, "error", err)
			}
			break
		}

		var msg InboundMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			m.sendError(client, "Invalid message format")
			continue
		}

		m.dispatch(client, connID, limiter, msg)
	}
}

// dispatch routes one inbound envelope. Missing payload fields decode to zero
// values; the party module treats them as empty input rather than failing.
func (m *Module) dispatch(client *broadcast.Client, connID string, limiter *rateLimiter, msg InboundMessage) {
	ctx := context.Background()

	switch msg.Type {
	case InSetIdentity:
		var p SetIdentityPayload
		decode(msg.Payload, &p)
		if _, err := m.partyAdapter.SetIdentity(ctx, connID, p.Name, p.Color); err != nil {
			slog.Error("set-identity failed", "connID", connID, "error", err)
		}

	case InCreateParty:
		var p PartyPayload
		decode(msg.Payload, &p)
		resp, err := m.partyAdapter.CreateParty(ctx, connID, p.Name, p.Password)
		if err != nil {
			slog.Error("create-party failed", "connID", connID, "error", err)
			return
		}
		if !resp.OK {
			m.send(client, broadcast.WirePartyError, resp.Error)
			return
		}
		m.send(client, broadcast.WirePartyCreated, resp.Name)

	case InJoinParty:
		var p PartyPayload
		decode(msg.Payload, &p)
		resp, err := m.partyAdapter.JoinParty(ctx, connID, p.Name, p.Password)
		if err != nil {
			slog.Error("join-party failed", "connID", connID, "error", err)
			return
		}
		if !resp.OK {
			m.send(client, broadcast.WirePartyError, resp.Error)
			return
		}
		m.send(client, broadcast.WirePartyJoined, resp.Name)

	case InLeaveParty:
		var p PartyPayload
		decode(msg.Payload, &p)
		if err := m.partyAdapter.LeaveParty(ctx, connID, p.Name); err != nil {
			slog.Error("leave-party failed", "connID", connID, "error", err)
		}

	case InSendMessage:
		if !limiter.allow() {
			m.sendError(client, "Rate limit exceeded, please slow down")
			return
		}
		var p SendMessagePayload
		decode(msg.Payload, &p)
		resp, err := m.partyAdapter.SendMessage(ctx, connID, p.Text)
		if err != nil {
			slog.Error("send-message failed", "connID", connID, "error", err)
			return
		}
		if !resp.OK {
			m.send(client, broadcast.WireSystemMessage, resp.Notice)
		}

	case InSendImage:
		if !limiter.allow() {
			m.sendError(client, "Rate limit exceeded, please slow down")
			return
		}
		var p SendImagePayload
		decode(msg.Payload, &p)
		resp, err := m.partyAdapter.SendImage(ctx, connID, p.ImageData)
		if err != nil {
			slog.Error("send-image failed", "connID", connID, "error", err)
			return
		}
		if !resp.OK {
			m.send(client, broadcast.WireSystemMessage, resp.Notice)
		}

	case InDeleteMessage:
		var p DeleteMessagePayload
		decode(msg.Payload, &p)
		if err := m.partyAdapter.DeleteMessage(ctx, connID, p.ID); err != nil {
			slog.Error("delete-message failed", "connID", connID, "error", err)
		}

	case InTyping:
		var p TypingPayload
		decode(msg.Payload, &p)
		if err := m.partyAdapter.SetTyping(ctx, connID, p.IsTyping); err != nil {
			slog.Error("set-typing failed", "connID", connID, "error", err)
		}

	case InSendInvite:
		var p InvitePayload
		decode(msg.Payload, &p)
		resp, err := m.partyAdapter.SendInvite(ctx, connID, p.TargetUsername)
		if err != nil {
			slog.Error("send-invite failed", "connID", connID, "error", err)
			return
		}
		if !resp.OK {
			m.send(client, broadcast.WireSystemMessage, resp.Notice)
		}

	default:
		m.sendError(client, "Unknown message type: "+msg.Type)
	}
}

// sendSnapshots sends the current user and party lists to a fresh connection.
func (m *Module) sendSnapshots(client *broadcast.Client) {
	ctx := context.Background()
	if users, err := m.partyAdapter.ListUsers(ctx); err == nil {
		m.send(client, broadcast.WireUpdateUsers, users)
	}
	if parties, err := m.partyAdapter.ListParties(ctx); err == nil {
		m.send(client, broadcast.WireUpdateParties, parties)
	}
}

// decode unmarshals a payload, defaulting missing or malformed fields to
// zero values instead of raising structural errors.
func decode(raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, v)
}

// send writes one envelope directly to a connection, bypassing the hub but
// serialized against its writes.
func (m *Module) send(client *broadcast.Client, wireType string, payload any) {
	data, err := broadcast.Encode(wireType, payload)
	if err != nil {
		slog.Error("Failed to encode envelope", "type", wireType, "error", err)
		return
	}
	if err := client.Write(data); err != nil {
		slog.Error("Failed to send envelope", "type", wireType, "error", err)
	}
}

// sendError writes an error envelope directly to a connection.
func (m *Module) sendError(client *broadcast.Client, message string) {
	data, err := broadcast.EncodeError(message)
	if err != nil {
		slog.Error("Failed to encode error envelope", "error", err)
		return
	}
	if err := client.Write(data); err != nil {
		slog.Error("Failed to send error envelope", "error", err)
	}
}
