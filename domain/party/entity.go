package party

// Connection is one live client link. It is created anonymous on connect,
// gains a display name and color on set-identity, and is destroyed on
// disconnect.
type Connection struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	CurrentParty string `json:"current_party,omitempty"`
}

// Identified reports whether the connection has set a display name.
func (c *Connection) Identified() bool {
	return c.Name != ""
}

// Party is a named chat channel. An empty Password means the party is public.
// A party with zero members must not exist; the directory deletes it in the
// same operation that empties it.
type Party struct {
	Name     string          `json:"name"`
	Password string          `json:"-"`
	Members  map[string]bool `json:"-"`
}

// Summary is the public view of a party used in party-list snapshots.
// The password itself is never exposed, only whether one is set.
type Summary struct {
	Name        string `json:"name"`
	IsPrivate   bool   `json:"isPrivate"`
	MemberCount int    `json:"users"`
}

// Message is an in-flight chat payload. It exists only as a broadcast; the
// server keeps no history. IDs are process-wide, strictly increasing from 1
// and never reused, so a later delete request can reference them.
type Message struct {
	ID           int64  `json:"id"`
	Sender       string `json:"username"`
	SenderConnID string `json:"senderId"`
	Color        string `json:"color"`
	Text         string `json:"message,omitempty"`
	Image        string `json:"image,omitempty"`
	Party        string `json:"-"`
}
