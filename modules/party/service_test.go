package party

import (
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/jasemontop/GlobalChatroom/domain/party"
)

func newTestService(connIDs ...string) *Service {
	svc := NewService()
	for _, id := range connIDs {
		svc.Connect(id)
	}
	return svc
}

func memberCount(t *testing.T, svc *Service, name string) int {
	t.Helper()
	for _, summary := range svc.Parties() {
		if summary.Name == name {
			return summary.MemberCount
		}
	}
	t.Fatalf("party %q not in snapshot", name)
	return 0
}

func TestSetIdentity(t *testing.T) {
	svc := newTestService("c1")

	res, err := svc.SetIdentity("c1", "  Alice  ", "#ff0000")
	require.NoError(t, err)
	require.Equal(t, "Alice", res.Name)
	require.Equal(t, []string{"Alice"}, res.Users)

	// Blank names are dropped without effect.
	_, err = svc.SetIdentity("c1", "   ", "#00ff00")
	require.ErrorIs(t, err, domain.ErrEmptyInput)
	require.Equal(t, []string{"Alice"}, svc.Users())
}

func TestSetIdentityDefaultsColor(t *testing.T) {
	svc := newTestService("c1")

	_, err := svc.SetIdentity("c1", "Alice", "")
	require.NoError(t, err)

	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")
	msg, _, err := svc.SendMessage("c1", "hi")
	require.NoError(t, err)
	require.Equal(t, DefaultColor, msg.Color)
}

func TestCreateParty(t *testing.T) {
	svc := newTestService("c1")

	res, err := svc.CreateParty("c1", " lobby ", "")
	require.NoError(t, err)
	require.Equal(t, "lobby", res.Name)
	require.Equal(t, []domain.Summary{{Name: "lobby", IsPrivate: false, MemberCount: 0}}, res.Parties)

	_, err = svc.CreateParty("c1", "", "")
	require.ErrorIs(t, err, domain.ErrPartyNameRequired)

	_, err = svc.CreateParty("c1", "   ", "")
	require.ErrorIs(t, err, domain.ErrPartyNameRequired)
}

func TestCreatePartyDuplicateLeavesOriginalUntouched(t *testing.T) {
	svc := newTestService("c1", "c2")

	_, err := svc.CreateParty("c1", "lobby", "")
	require.NoError(t, err)
	_, err = svc.JoinParty("c1", "lobby", "")
	require.NoError(t, err)

	_, err = svc.CreateParty("c2", "lobby", "other")
	require.ErrorIs(t, err, domain.ErrPartyExists)
	require.Equal(t, 1, memberCount(t, svc, "lobby"))
	require.False(t, svc.Parties()[0].IsPrivate)
}

func TestJoinPartyPasswordChecks(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, err := svc.CreateParty("c1", "vip", "x")
	require.NoError(t, err)

	// Mismatched password never joins.
	_, err = svc.JoinParty("c2", "vip", "y")
	require.ErrorIs(t, err, domain.ErrWrongPassword)
	require.Equal(t, 0, memberCount(t, svc, "vip"))

	// An empty supplied password never matches a non-empty one.
	_, err = svc.JoinParty("c2", "vip", "")
	require.ErrorIs(t, err, domain.ErrWrongPassword)
	require.Equal(t, 0, memberCount(t, svc, "vip"))

	// Retry with the right password succeeds.
	res, err := svc.JoinParty("c2", "vip", "x")
	require.NoError(t, err)
	require.Equal(t, "vip", res.Name)
	require.Equal(t, 1, memberCount(t, svc, "vip"))
}

func TestJoinPartyNotFound(t *testing.T) {
	svc := newTestService("c1")

	_, err := svc.JoinParty("c1", "ghost", "")
	require.ErrorIs(t, err, domain.ErrPartyNotFound)

	_, err = svc.JoinParty("c1", "", "")
	require.ErrorIs(t, err, domain.ErrPartyNotFound)
}

func TestJoinImplicitlyLeavesPreviousParty(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, _ = svc.CreateParty("c1", "one", "")
	_, _ = svc.CreateParty("c1", "two", "")

	// c2 keeps "one" alive so the implicit leave doesn't delete it.
	_, err := svc.JoinParty("c2", "one", "")
	require.NoError(t, err)
	_, err = svc.JoinParty("c1", "one", "")
	require.NoError(t, err)
	require.Equal(t, 2, memberCount(t, svc, "one"))

	_, err = svc.JoinParty("c1", "two", "")
	require.NoError(t, err)
	require.Equal(t, 1, memberCount(t, svc, "one"))
	require.Equal(t, 1, memberCount(t, svc, "two"))
}

func TestJoinOwnPartyIsLeaveThenRejoin(t *testing.T) {
	svc := newTestService("c1")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, err := svc.JoinParty("c1", "lobby", "")
	require.NoError(t, err)

	res, err := svc.JoinParty("c1", "lobby", "")
	require.NoError(t, err)
	require.Equal(t, []string{"c1"}, res.Recipients)
	require.Equal(t, 1, memberCount(t, svc, "lobby"))
}

func TestEmptyPartyIsGarbageCollected(t *testing.T) {
	svc := newTestService("c1")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")

	res, err := svc.LeaveParty("c1", "lobby")
	require.NoError(t, err)
	require.Empty(t, res.Recipients)
	require.Empty(t, res.Parties)
	require.Empty(t, svc.Parties())
}

func TestLeavePartyNoop(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")

	// Unknown party and non-membership are both silent no-ops.
	_, err := svc.LeaveParty("c1", "ghost")
	require.Error(t, err)
	_, err = svc.LeaveParty("c2", "lobby")
	require.Error(t, err)
	require.Equal(t, 1, memberCount(t, svc, "lobby"))
}

func TestConnectionBelongsToAtMostOneParty(t *testing.T) {
	svc := newTestService("c1", "c2")
	names := []string{"a", "b", "c"}
	for _, name := range names {
		_, err := svc.CreateParty("c1", name, "")
		require.NoError(t, err)
		// c2 anchors every party so earlier ones survive c1's moves.
		_, err = svc.JoinParty("c2", name, "")
		require.NoError(t, err)
		_, err = svc.JoinParty("c1", name, "")
		require.NoError(t, err)

		total := 0
		for _, summary := range svc.Parties() {
			total += summary.MemberCount
		}
		// Two connections, so never more than two memberships in total.
		require.LessOrEqual(t, total, 2)
	}
}

func TestMessageIDsStrictlyIncreasing(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, _ = svc.SetIdentity("c1", "Alice", "")
	_, _ = svc.SetIdentity("c2", "Bob", "")
	_, _ = svc.CreateParty("c1", "one", "")
	_, _ = svc.CreateParty("c1", "two", "")
	_, _ = svc.JoinParty("c1", "one", "")
	_, _ = svc.JoinParty("c2", "two", "")

	var last int64
	for i := 0; i < 10; i++ {
		for _, connID := range []string{"c1", "c2"} {
			msg, _, err := svc.SendMessage(connID, "hello")
			require.NoError(t, err)
			require.Greater(t, msg.ID, last)
			last = msg.ID
		}
	}
	// Deletions never free ids for reuse.
	_, err := svc.DeleteMessage("c1", 1)
	require.NoError(t, err)
	msg, _, err := svc.SendMessage("c1", "after delete")
	require.NoError(t, err)
	require.Equal(t, last+1, msg.ID)
}

func TestFirstMessageIDIsOne(t *testing.T) {
	svc := newTestService("c1")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")

	msg, _, err := svc.SendMessage("c1", "first")
	require.NoError(t, err)
	require.Equal(t, int64(1), msg.ID)
}

func TestRoomlessSendReachesNobody(t *testing.T) {
	svc := newTestService("c1")
	_, _ = svc.SetIdentity("c1", "Alice", "")

	msg, recipients, err := svc.SendMessage("c1", "hello")
	require.ErrorIs(t, err, domain.ErrNoActiveParty)
	require.Nil(t, recipients)
	require.Zero(t, msg.ID)

	// No id was consumed by the failed send.
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")
	msg, _, err = svc.SendMessage("c1", "hello")
	require.NoError(t, err)
	require.Equal(t, int64(1), msg.ID)
}

func TestEmptyMessageIsDropped(t *testing.T) {
	svc := newTestService("c1")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")

	_, _, err := svc.SendMessage("c1", "   ")
	require.ErrorIs(t, err, domain.ErrEmptyInput)

	_, _, err = svc.SendImage("c1", "")
	require.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestSendImage(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, _ = svc.SetIdentity("c1", "Alice", "#abc")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c2", "lobby", "")

	msg, recipients, err := svc.SendImage("c1", "data:image/png;base64,AAAA")
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,AAAA", msg.Image)
	require.Empty(t, msg.Text)
	require.Equal(t, "Alice", msg.Sender)
	require.ElementsMatch(t, []string{"c1", "c2"}, recipients)
}

func TestAnonymousSenderName(t *testing.T) {
	svc := newTestService("c1")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")

	msg, _, err := svc.SendMessage("c1", "hi")
	require.NoError(t, err)
	require.Equal(t, AnonymousName, msg.Sender)
}

func TestDeleteMessageRequiresParty(t *testing.T) {
	svc := newTestService("c1")

	_, err := svc.DeleteMessage("c1", 1)
	require.ErrorIs(t, err, domain.ErrNoActiveParty)
}

func TestTypingExcludesSender(t *testing.T) {
	svc := newTestService("c1", "c2", "c3")
	_, _ = svc.SetIdentity("c1", "Alice", "")
	_, _ = svc.CreateParty("c1", "lobby", "")
	for _, id := range []string{"c1", "c2", "c3"} {
		_, err := svc.JoinParty(id, "lobby", "")
		require.NoError(t, err)
	}

	res, err := svc.SetTyping("c1")
	require.NoError(t, err)
	require.Equal(t, "Alice", res.Sender)
	require.Equal(t, "lobby", res.Party)
	require.ElementsMatch(t, []string{"c2", "c3"}, res.Recipients)
	require.NotContains(t, res.Recipients, "c1")
}

func TestTypingRoomlessIsNoop(t *testing.T) {
	svc := newTestService("c1")

	_, err := svc.SetTyping("c1")
	require.ErrorIs(t, err, domain.ErrNoActiveParty)
}

func TestSendInvite(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, _ = svc.SetIdentity("c1", "Alice", "")
	_, _ = svc.SetIdentity("c2", "Bob", "")

	targetConnID, from, err := svc.SendInvite("c1", "Bob")
	require.NoError(t, err)
	require.Equal(t, "c2", targetConnID)
	require.Equal(t, "Alice", from)

	_, _, err = svc.SendInvite("c1", "Carol")
	require.ErrorIs(t, err, domain.ErrInviteTargetOffline)
}

func TestDisconnectCleansUpEverything(t *testing.T) {
	svc := newTestService("c1", "c2")
	_, _ = svc.SetIdentity("c1", "Alice", "")
	_, _ = svc.SetIdentity("c2", "Bob", "")
	_, _ = svc.CreateParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c1", "lobby", "")
	_, _ = svc.JoinParty("c2", "lobby", "")

	res := svc.Disconnect("c2")
	require.True(t, res.HadIdentity)
	require.Equal(t, "Bob", res.Name)
	require.Equal(t, []string{"Alice"}, res.Users)
	require.Equal(t, 1, memberCount(t, svc, "lobby"))

	// Last member dropping the link deletes the party.
	res = svc.Disconnect("c1")
	require.True(t, res.HadIdentity)
	require.Empty(t, res.Parties)
	require.Empty(t, svc.Parties())
	require.Zero(t, svc.ConnectionCount())
}

func TestDisconnectAnonymous(t *testing.T) {
	svc := newTestService("c1")

	res := svc.Disconnect("c1")
	require.False(t, res.HadIdentity)
	require.Empty(t, res.Users)

	// Unknown connections are ignored.
	res = svc.Disconnect("ghost")
	require.False(t, res.HadIdentity)
}

// TestLobbyScenario walks the end-to-end flow from the design notes: Alice
// creates a public lobby, Bob joins, Alice chats, Bob leaves, Alice
// disconnects.
func TestLobbyScenario(t *testing.T) {
	svc := newTestService("a", "b")

	_, err := svc.SetIdentity("a", "Alice", "")
	require.NoError(t, err)
	_, err = svc.CreateParty("a", "lobby", "")
	require.NoError(t, err)
	_, err = svc.JoinParty("a", "lobby", "")
	require.NoError(t, err)

	_, err = svc.SetIdentity("b", "Bob", "")
	require.NoError(t, err)
	join, err := svc.JoinParty("b", "lobby", "")
	require.NoError(t, err)
	require.Equal(t, "Bob joined lobby", join.Notice)
	require.ElementsMatch(t, []string{"a", "b"}, join.Recipients)

	msg, recipients, err := svc.SendMessage("a", "hi")
	require.NoError(t, err)
	require.Equal(t, int64(1), msg.ID)
	require.Equal(t, "Alice", msg.Sender)
	require.Equal(t, "hi", msg.Text)
	require.ElementsMatch(t, []string{"a", "b"}, recipients)

	leave, err := svc.LeaveParty("b", "lobby")
	require.NoError(t, err)
	require.Equal(t, "Bob left lobby", leave.Notice)
	require.Equal(t, 1, memberCount(t, svc, "lobby"))

	svc.Disconnect("a")
	require.Empty(t, svc.Parties())
}

func BenchmarkSendMessage(b *testing.B) {
	svc := newTestService("c1", "c2")
	_, _ = svc.SetIdentity("c1", "Alice", "")
	_, _ = svc.CreateParty("c1", "bench", "")
	_, _ = svc.JoinParty("c1", "bench", "")
	_, _ = svc.JoinParty("c2", "bench", "")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = svc.SendMessage("c1", "benchmark message")
	}
}
