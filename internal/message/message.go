// Package message implements the per-session message log: an append-only
// sequence with optimistic local appends reconciled against the remote store.
package message

import (
	"strconv"

	"github.com/interchat/interchat/internal/proto"
)

const (
	// Greeting seeds every new session so a log is never empty.
	Greeting = "Merhaba! Ben InterChat, bankacılık işlemleriniz için buradayım. Size nasıl yardımcı olabilirim?"
	// FallbackReply is appended when a send fails, so every sent user
	// message gets a visible answer.
	FallbackReply = "⚠️ Bot cevap veremedi."
)

type Role = proto.Sender

const (
	RoleUser      = proto.SenderUser
	RoleAssistant = proto.SenderAssistant
)

// Message is one entry in a session's log. IDs are locally monotonic within
// the session until a server-issued id replaces them on fetch. SessionID is
// filled in by the session store; a log itself does not know which session
// owns it.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	Text      string
	Timestamp int64
	Payload   proto.Payload
}

// Log is the ordered message sequence for one session. Append order is the
// display order; timestamps are corrected to server time on reconciliation
// but never reorder the log. A Log is not safe for concurrent use: the
// session store serializes access to it.
type Log struct {
	messages []Message
	seq      int
}

func NewLog() *Log {
	return &Log{}
}

// SeedGreeting appends the fixed assistant greeting. Used only at session
// creation.
func (l *Log) SeedGreeting(now int64) Message {
	return l.append(Message{
		Role:      RoleAssistant,
		Text:      Greeting,
		Timestamp: now,
	})
}

// AppendUser appends a user message immediately and returns the updated
// sequence, which is what gets rendered before any network round trip
// completes.
func (l *Log) AppendUser(text string, now int64) []Message {
	l.append(Message{
		Role:      RoleUser,
		Text:      text,
		Timestamp: now,
	})
	return l.Messages()
}

// AppendAssistant appends a server-confirmed reply, with the server-assigned
// timestamp superseding any optimistic one.
func (l *Log) AppendAssistant(text string, timestamp int64, payload proto.Payload) Message {
	return l.append(Message{
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: timestamp,
		Payload:   payload,
	})
}

// AppendFallback appends the fixed apology reply used when an exchange fails.
// It carries no payload.
func (l *Log) AppendFallback(now int64) Message {
	return l.append(Message{
		Role:      RoleAssistant,
		Text:      FallbackReply,
		Timestamp: now,
	})
}

// ReplaceAll swaps in a history fetched from the remote store, wholesale.
func (l *Log) ReplaceAll(messages []Message) {
	l.messages = append([]Message(nil), messages...)
	l.seq = len(l.messages)
}

// Messages returns a copy of the sequence in display order.
func (l *Log) Messages() []Message {
	return append([]Message(nil), l.messages...)
}

func (l *Log) Len() int {
	return len(l.messages)
}

// UserMessageCount reports how many user-authored messages the log holds.
// The first user message is what titles a session and promotes it.
func (l *Log) UserMessageCount() int {
	n := 0
	for _, m := range l.messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

func (l *Log) append(m Message) Message {
	l.seq++
	if m.ID == "" {
		m.ID = strconv.Itoa(l.seq)
	}
	l.messages = append(l.messages, m)
	return m
}

// FromRecord converts a wire message record into a log message. The payload,
// already decoded by the gateway, is attached as-is.
func FromRecord(rec proto.MessageRecord, payload proto.Payload) Message {
	return Message{
		ID:        rec.ID,
		Role:      rec.Sender,
		Text:      rec.Text,
		Timestamp: rec.Timestamp,
		Payload:   payload,
	}
}
