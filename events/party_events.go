package events

import (
	"github.com/go-monolith/mono/pkg/helper"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
)

// Fan-out events published by the party module and consumed by the broadcast
// module. Recipients carries the connection ids resolved under the party lock
// so the consumer never reads party state. A nil Recipients means every
// connected client; an empty set means nobody. The distinction must survive
// the bus, so Recipients never gets omitempty: nil marshals as null and an
// empty set as [].

// SystemNoticeEvent is an informational notice.
type SystemNoticeEvent struct {
	Recipients []string `json:"recipients"`
	Text       string   `json:"text"`
}

// UsersChangedEvent is the full presence snapshot, re-sent on every change.
type UsersChangedEvent struct {
	Users []string `json:"users"`
}

// PartiesChangedEvent is the full party-list snapshot.
type PartiesChangedEvent struct {
	Parties []domain.Summary `json:"parties"`
}

// MessageSentEvent is emitted when a text message is routed to a party.
type MessageSentEvent struct {
	Recipients []string       `json:"recipients"`
	Message    domain.Message `json:"message"`
}

// ImageSentEvent is emitted when a pasted image is routed to a party.
type ImageSentEvent struct {
	Recipients []string       `json:"recipients"`
	Message    domain.Message `json:"message"`
}

// MessageDeletedEvent re-broadcasts a deletion notice to the requester's
// party. The server does not verify authorship of the referenced id.
type MessageDeletedEvent struct {
	Recipients []string `json:"recipients"`
	MessageID  int64    `json:"message_id"`
}

// TypingEvent relays ephemeral typing state to party peers, never back to
// the sender.
type TypingEvent struct {
	Recipients []string `json:"recipients"`
	Sender     string   `json:"username"`
	IsTyping   bool     `json:"isTyping"`
	Party      string   `json:"party"`
}

// InviteSentEvent delivers a party invite to a single target connection.
type InviteSentEvent struct {
	TargetConnID string `json:"target_conn_id"`
	From         string `json:"from"`
}

// Event definitions for the party domain.
var (
	SystemNoticeV1 = helper.EventDefinition[SystemNoticeEvent](
		"party",
		"SystemNotice",
		"v1",
	)

	UsersChangedV1 = helper.EventDefinition[UsersChangedEvent](
		"party",
		"UsersChanged",
		"v1",
	)

	PartiesChangedV1 = helper.EventDefinition[PartiesChangedEvent](
		"party",
		"PartiesChanged",
		"v1",
	)

	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"party",
		"MessageSent",
		"v1",
	)

	ImageSentV1 = helper.EventDefinition[ImageSentEvent](
		"party",
		"ImageSent",
		"v1",
	)

	MessageDeletedV1 = helper.EventDefinition[MessageDeletedEvent](
		"party",
		"MessageDeleted",
		"v1",
	)

	TypingV1 = helper.EventDefinition[TypingEvent](
		"party",
		"Typing",
		"v1",
	)

	InviteSentV1 = helper.EventDefinition[InviteSentEvent](
		"party",
		"InviteSent",
		"v1",
	)
)
