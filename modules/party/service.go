package party

import (
	"sort"
	"strings"
	"sync"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
)

const (
	// DefaultColor is used when a client sets no color of its own.
	DefaultColor = "#ffd700"

	// AnonymousName stands in for connections that never set an identity.
	AnonymousName = "Anonymous"
)

// Service owns the connection registry and the party directory. Every inbound
// operation runs to completion under one mutex, so no two operations ever
// observe a partially-mutated registry or directory. Event publishing happens
// in the module layer, after the state transition has committed.
type Service struct {
	mu      sync.Mutex
	conns   map[string]*domain.Connection
	parties map[string]*domain.Party
	nextID  int64
}

// NewService creates an empty coordinator.
func NewService() *Service {
	return &Service{
		conns:   make(map[string]*domain.Connection),
		parties: make(map[string]*domain.Party),
		nextID:  1,
	}
}

// IdentityResult describes the fallout of a successful set-identity.
type IdentityResult struct {
	Name    string
	Users   []string
	Parties []domain.Summary
}

// CreateResult describes a successful party creation.
type CreateResult struct {
	Name    string
	Parties []domain.Summary
}

// JoinResult describes a successful join, including who must hear the notice.
type JoinResult struct {
	Name       string
	Notice     string
	Recipients []string
	Parties    []domain.Summary
}

// LeaveResult describes a successful leave.
type LeaveResult struct {
	Notice     string
	Recipients []string
	Parties    []domain.Summary
}

// TypingResult carries a typing relay to party peers, sender excluded.
type TypingResult struct {
	Recipients []string
	Sender     string
	Party      string
}

// DisconnectResult describes the cleanup fallout of a closed connection.
type DisconnectResult struct {
	HadIdentity bool
	Name        string
	Users       []string
	Parties     []domain.Summary
}

// Connect registers an anonymous connection.
func (s *Service) Connect(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conns[connID] = &domain.Connection{ID: connID, Color: DefaultColor}
}

// SetIdentity stores the display name and color for a connection. A blank
// trimmed name is dropped silently.
func (s *Service) SetIdentity(connID, name, color string) (IdentityResult, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return IdentityResult{}, domain.ErrEmptyInput
	}
	if color == "" {
		color = DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.conn(connID)
	conn.Name = clean
	conn.Color = color

	return IdentityResult{
		Name:    clean,
		Users:   s.userListLocked(),
		Parties: s.partyListLocked(),
	}, nil
}

// CreateParty registers an empty party. The creator does not join it.
func (s *Service) CreateParty(connID, name, password string) (CreateResult, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return CreateResult{}, domain.ErrPartyNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.parties[clean]; exists {
		return CreateResult{}, domain.ErrPartyExists
	}

	s.parties[clean] = &domain.Party{
		Name:     clean,
		Password: strings.TrimSpace(password),
		Members:  make(map[string]bool),
	}

	return CreateResult{Name: clean, Parties: s.partyListLocked()}, nil
}

// JoinParty moves a connection into a party, leaving whatever party it was in
// before. Joining the current party again is a leave-then-rejoin; the joined
// notice fires again, which is acceptable since no stronger dedup is required.
func (s *Service) JoinParty(connID, name, password string) (JoinResult, error) {
	clean := strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	target, exists := s.parties[clean]
	if clean == "" || !exists {
		return JoinResult{}, domain.ErrPartyNotFound
	}
	if target.Password != "" && target.Password != password {
		return JoinResult{}, domain.ErrWrongPassword
	}

	conn := s.conn(connID)
	s.leaveCurrentLocked(conn)

	conn.CurrentParty = clean
	target.Members[connID] = true
	// A sole member rejoining its own party momentarily empties it, which
	// deletes it from the directory. Reinsert so the rejoin sticks.
	s.parties[clean] = target

	return JoinResult{
		Name:       clean,
		Notice:     s.displayName(conn) + " joined " + clean,
		Recipients: memberIDs(target),
		Parties:    s.partyListLocked(),
	}, nil
}

// LeaveParty removes a connection from a party it is a member of. Unknown
// parties and non-members are silent no-ops.
func (s *Service) LeaveParty(connID, name string) (LeaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, exists := s.parties[name]
	if !exists || !target.Members[connID] {
		return LeaveResult{}, domain.ErrEmptyInput
	}

	conn := s.conn(connID)
	delete(target.Members, connID)
	conn.CurrentParty = ""

	res := LeaveResult{
		Notice:     s.displayName(conn) + " left " + name,
		Recipients: memberIDs(target),
	}
	if len(target.Members) == 0 {
		delete(s.parties, name)
	}
	res.Parties = s.partyListLocked()
	return res, nil
}

// SendMessage routes a text message to the sender's current party. Blank text
// is dropped; a roomless sender gets ErrNoActiveParty and nothing is routed.
func (s *Service) SendMessage(connID, text string) (domain.Message, []string, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return domain.Message{}, nil, domain.ErrEmptyInput
	}
	return s.route(connID, func(msg *domain.Message) {
		msg.Text = clean
	})
}

// SendImage routes a pasted image to the sender's current party. No size or
// type validation is applied beyond presence.
func (s *Service) SendImage(connID, imageData string) (domain.Message, []string, error) {
	if imageData == "" {
		return domain.Message{}, nil, domain.ErrEmptyInput
	}
	return s.route(connID, func(msg *domain.Message) {
		msg.Image = imageData
	})
}

// route resolves the sender, allocates the next message id and computes the
// fan-out set under the lock.
func (s *Service) route(connID string, fill func(*domain.Message)) (domain.Message, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.conn(connID)
	target, exists := s.parties[conn.CurrentParty]
	if conn.CurrentParty == "" || !exists {
		return domain.Message{}, nil, domain.ErrNoActiveParty
	}

	msg := domain.Message{
		ID:           s.nextID,
		Sender:       s.displayName(conn),
		SenderConnID: connID,
		Color:        conn.Color,
		Party:        conn.CurrentParty,
	}
	s.nextID++
	fill(&msg)

	return msg, memberIDs(target), nil
}

// DeleteMessage re-emits a deletion notice to the requester's party. The
// server does not track message ownership, so any connection can request
// deletion of any id; author-only deletion is a client-side convention.
func (s *Service) DeleteMessage(connID string, id int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.conn(connID)
	target, exists := s.parties[conn.CurrentParty]
	if conn.CurrentParty == "" || !exists {
		return nil, domain.ErrNoActiveParty
	}
	return memberIDs(target), nil
}

// SetTyping computes the relay set for a typing indicator: every member of
// the sender's party except the sender. Roomless senders are a no-op. Stale
// indicators are not expired server-side; the client sends isTyping=false.
func (s *Service) SetTyping(connID string) (TypingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.conn(connID)
	target, exists := s.parties[conn.CurrentParty]
	if conn.CurrentParty == "" || !exists {
		return TypingResult{}, domain.ErrNoActiveParty
	}

	peers := make([]string, 0, len(target.Members))
	for id := range target.Members {
		if id != connID {
			peers = append(peers, id)
		}
	}
	sort.Strings(peers)

	return TypingResult{
		Recipients: peers,
		Sender:     s.displayName(conn),
		Party:      conn.CurrentParty,
	}, nil
}

// SendInvite resolves a display name to a live connection. Display names are
// not unique; the first match wins, matching the original behavior.
func (s *Service) SendInvite(connID, targetName string) (targetConnID, from string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = s.displayName(s.conn(connID))
	for id, conn := range s.conns {
		if conn.Name == targetName {
			return id, from, nil
		}
	}
	return "", from, domain.ErrInviteTargetOffline
}

// Disconnect removes a connection from the registry and cascades into the
// party directory, deleting the party if it just became empty.
func (s *Service) Disconnect(connID string) DisconnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, exists := s.conns[connID]
	if !exists {
		return DisconnectResult{}
	}

	s.leaveCurrentLocked(conn)
	delete(s.conns, connID)

	res := DisconnectResult{
		HadIdentity: conn.Identified(),
		Name:        conn.Name,
		Parties:     s.partyListLocked(),
	}
	if res.HadIdentity {
		res.Users = s.userListLocked()
	}
	return res
}

// Users returns the current presence snapshot: every identified display name.
func (s *Service) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userListLocked()
}

// Parties returns the current party-list snapshot.
func (s *Service) Parties() []domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partyListLocked()
}

// ConnectionCount returns the number of live connections.
func (s *Service) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// conn returns the registry entry for connID, registering an anonymous one
// if the transport never announced it. Missing fields default instead of
// erroring.
func (s *Service) conn(connID string) *domain.Connection {
	if conn, ok := s.conns[connID]; ok {
		return conn
	}
	conn := &domain.Connection{ID: connID, Color: DefaultColor}
	s.conns[connID] = conn
	return conn
}

// leaveCurrentLocked removes conn from its current party, if any, deleting
// the party on the member-count transition to zero.
func (s *Service) leaveCurrentLocked(conn *domain.Connection) {
	if conn.CurrentParty == "" {
		return
	}
	if current, ok := s.parties[conn.CurrentParty]; ok {
		delete(current.Members, conn.ID)
		if len(current.Members) == 0 {
			delete(s.parties, current.Name)
		}
	}
	conn.CurrentParty = ""
}

func (s *Service) displayName(conn *domain.Connection) string {
	if conn.Identified() {
		return conn.Name
	}
	return AnonymousName
}

func (s *Service) userListLocked() []string {
	users := make([]string, 0, len(s.conns))
	for _, conn := range s.conns {
		if conn.Identified() {
			users = append(users, conn.Name)
		}
	}
	sort.Strings(users)
	return users
}

func (s *Service) partyListLocked() []domain.Summary {
	list := make([]domain.Summary, 0, len(s.parties))
	for _, p := range s.parties {
		list = append(list, domain.Summary{
			Name:        p.Name,
			IsPrivate:   p.Password != "",
			MemberCount: len(p.Members),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func memberIDs(p *domain.Party) []string {
	ids := make([]string, 0, len(p.Members))
	for id := range p.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
