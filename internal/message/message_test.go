package message

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/interchat/interchat/internal/proto"
)

func TestLog_SeedGreeting(t *testing.T) {
	t.Parallel()

	l := NewLog()
	m := l.SeedGreeting(100)

	require.Equal(t, RoleAssistant, m.Role)
	require.Equal(t, Greeting, m.Text)
	require.Equal(t, int64(100), m.Timestamp)
	require.Equal(t, 1, l.Len())
	require.Equal(t, 0, l.UserMessageCount())
}

func TestLog_AppendOrderAndIDs(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.SeedGreeting(1)
	l.AppendUser("bakiyem", 2)
	l.AppendAssistant("buyrun", 3, proto.BalanceCard{Balance: 10})
	l.AppendFallback(4)

	msgs := l.Messages()
	require.Len(t, msgs, 4)
	require.Equal(t, []string{"1", "2", "3", "4"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID, msgs[3].ID})
	require.Equal(t, FallbackReply, msgs[3].Text)
	require.Nil(t, msgs[3].Payload)
	require.Equal(t, 1, l.UserMessageCount())
}

func TestLog_AppendUserReturnsFullSequence(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.SeedGreeting(1)
	msgs := l.AppendUser("soru", 2)

	require.Len(t, msgs, 2)
	require.Equal(t, RoleUser, msgs[1].Role)
	require.Equal(t, "soru", msgs[1].Text)
}

func TestLog_ReplaceAll(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.SeedGreeting(1)
	l.AppendUser("eski", 2)

	l.ReplaceAll([]Message{
		{ID: "srv-m1", Role: RoleUser, Text: "sunucudan", Timestamp: 10},
		{ID: "srv-m2", Role: RoleAssistant, Text: "cevap", Timestamp: 11},
	})

	msgs := l.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "srv-m1", msgs[0].ID)

	// New appends continue numbering after the replaced history.
	l.AppendUser("yeni", 12)
	msgs = l.Messages()
	require.Equal(t, "3", msgs[2].ID)
}

func TestLog_MessagesReturnsCopy(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.SeedGreeting(1)

	msgs := l.Messages()
	msgs[0].Text = "tampered"

	require.Equal(t, Greeting, l.Messages()[0].Text)
}

func TestFromRecord(t *testing.T) {
	t.Parallel()

	m := FromRecord(proto.MessageRecord{
		ID:        "m1",
		Sender:    proto.SenderAssistant,
		Text:      "buyrun",
		Timestamp: 9,
	}, proto.BalanceCard{Balance: 5})

	require.Equal(t, "m1", m.ID)
	require.Equal(t, RoleAssistant, m.Role)
	require.Equal(t, int64(9), m.Timestamp)
	require.Equal(t, proto.BalanceCard{Balance: 5}, m.Payload)
}
