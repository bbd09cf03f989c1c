package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/interchat/interchat/internal/proto"
)

type storedSession struct {
	ID        string
	UserID    string
	Title     string
	CreatedAt int64
	UpdatedAt int64
	Messages  []proto.MessageRecord
	seq       int
}

// memStore holds sessions and messages for all users, in memory only.
type memStore struct {
	mu       sync.Mutex
	sessions map[string][]*storedSession // keyed by user id
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string][]*storedSession)}
}

// listSessions returns a user's session summaries, most recently updated
// first.
func (m *memStore) listSessions(userID string) []proto.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := m.sessions[userID]
	out := make([]proto.Session, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, proto.Session{
			ID:        sess.ID,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].UpdatedAt > out[i].UpdatedAt {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (m *memStore) messages(userID, sessionID string) ([]proto.MessageRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.find(userID, sessionID)
	if sess == nil {
		return nil, false
	}
	return append([]proto.MessageRecord(nil), sess.Messages...), true
}

// record files a user message and its reply, creating the session under a
// server-issued id when the client-side id is unknown. It returns the session
// the exchange was filed under.
func (m *memStore) record(userID, sessionID, text, reply, payload string) *storedSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UnixMilli()
	sess := m.find(userID, sessionID)
	if sess == nil {
		sess = &storedSession{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     deriveTitle(text),
			CreatedAt: now,
		}
		m.sessions[userID] = append(m.sessions[userID], sess)
	}
	sess.UpdatedAt = now

	sess.seq++
	sess.Messages = append(sess.Messages, proto.MessageRecord{
		ID:        uuid.NewString(),
		Sender:    proto.SenderUser,
		Text:      text,
		Timestamp: now,
	})
	sess.seq++
	sess.Messages = append(sess.Messages, proto.MessageRecord{
		ID:        uuid.NewString(),
		Sender:    proto.SenderAssistant,
		Text:      reply,
		Timestamp: now,
		Payload:   payload,
	})
	return sess
}

func (m *memStore) rename(userID, sessionID, title string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.find(userID, sessionID)
	if sess == nil {
		return false
	}
	sess.Title = title
	sess.UpdatedAt = time.Now().UnixMilli()
	return true
}

func (m *memStore) delete(userID, sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions := m.sessions[userID]
	for i, sess := range sessions {
		if sess.ID == sessionID {
			m.sessions[userID] = append(sessions[:i], sessions[i+1:]...)
			return true
		}
	}
	return false
}

// find must be called with the lock held.
func (m *memStore) find(userID, sessionID string) *storedSession {
	for _, sess := range m.sessions[userID] {
		if sess.ID == sessionID {
			return sess
		}
	}
	return nil
}

func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= 30 {
		return text
	}
	return string(runes[:30]) + "…"
}
