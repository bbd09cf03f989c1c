// Package session is the authoritative in-memory index of chat sessions for
// the current credential: creation, provisional-session deduplication, title
// inference, recency ordering, and the policies for switching, renaming, and
// deleting sessions.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/interchat/interchat/internal/client"
	"github.com/interchat/interchat/internal/log"
	"github.com/interchat/interchat/internal/message"
	"github.com/interchat/interchat/internal/proto"
	"github.com/interchat/interchat/internal/pubsub"
)

// DefaultTitle is the placeholder a session carries until its first user
// message titles it.
const DefaultTitle = "Yeni Sohbet"

const titleLimit = 30

var (
	ErrNotFound     = errors.New("session not found")
	ErrNoSession    = errors.New("no current session")
	ErrLastSession  = errors.New("cannot delete the last remaining session")
	ErrProvisional  = errors.New("cannot delete a provisional session")
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrEmptyMessage = errors.New("message cannot be empty")
	ErrReplyPending = errors.New("a reply is still outstanding for this session")
	ErrRemote       = errors.New("remote store rejected the operation")
)

// Gateway is the remote surface the store needs. Implemented by
// [client.Client]; outcomes are typed so the store never handles a thrown
// failure.
type Gateway interface {
	ListSessions(ctx context.Context, userID string) client.ListOutcome
	FetchMessages(ctx context.Context, userID, sessionID string) client.FetchOutcome
	SendMessage(ctx context.Context, userID, sessionID, text string) client.SendOutcome
	RenameSession(ctx context.Context, userID, sessionID, title string) bool
	DeleteSession(ctx context.Context, userID, sessionID string) bool
}

// Session is one conversation. The ID is client-generated while the session
// is provisional and rewritten to the server-issued id on the first confirmed
// send.
type Session struct {
	ID          string
	Title       string
	CreatedAt   int64
	UpdatedAt   int64
	Provisional bool
	Log         *message.Log

	// fetched marks the log as locally authoritative: either the history was
	// fetched from the remote store, or this client wrote it itself.
	fetched bool
}

func (s *Session) summary() proto.Session {
	return proto.Session{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Store indexes all sessions for one user. All mutations go through its
// methods; gateway calls run outside the lock and their continuations target
// the session id captured at dispatch time.
type Store struct {
	mu        sync.Mutex
	gw        Gateway
	userID    string
	sessions  []*Session // display order: UpdatedAt descending, stable
	currentID string
	typing    map[string]bool

	broker    *pubsub.Broker[proto.Session]
	msgBroker *pubsub.Broker[message.Message]

	now func() int64
}

func NewStore(gw Gateway, userID string) *Store {
	return &Store{
		gw:        gw,
		userID:    userID,
		typing:    make(map[string]bool),
		broker:    pubsub.NewBroker[proto.Session](),
		msgBroker: pubsub.NewBroker[message.Message](),
		now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// Subscribe streams session lifecycle events.
func (s *Store) Subscribe(ctx context.Context) <-chan pubsub.Event[proto.Session] {
	return s.broker.Subscribe(ctx)
}

// SubscribeMessages streams message events across all sessions.
func (s *Store) SubscribeMessages(ctx context.Context) <-chan pubsub.Event[message.Message] {
	return s.msgBroker.Subscribe(ctx)
}

func (s *Store) Shutdown() {
	s.broker.Shutdown()
	s.msgBroker.Shutdown()
}

// Create makes a new provisional session, or switches to the existing empty
// one: two empty provisional sessions can never coexist, no matter how fast
// the button is hit.
func (s *Store) Create() proto.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.Provisional && sess.Log.UserMessageCount() == 0 {
			s.currentID = sess.ID
			return sess.summary()
		}
	}

	now := s.now()
	sess := &Session{
		ID:          uuid.NewString(),
		Title:       DefaultTitle,
		CreatedAt:   now,
		UpdatedAt:   now,
		Provisional: true,
		Log:         message.NewLog(),
		fetched:     true,
	}
	sess.Log.SeedGreeting(now)
	s.sessions = append([]*Session{sess}, s.sessions...)
	s.resort()
	s.currentID = sess.ID
	s.broker.Publish(pubsub.CreatedEvent, sess.summary())
	return sess.summary()
}

// Sessions returns session summaries in display order.
func (s *Store) Sessions() []proto.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]proto.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.summary()
	}
	return out
}

// Current returns the current session's summary, if there is one.
func (s *Store) Current() (proto.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.byID(s.currentID)
	if sess == nil {
		return proto.Session{}, false
	}
	return sess.summary(), true
}

// Provisional reports whether the session exists only on this client.
func (s *Store) Provisional(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.byID(id)
	return sess != nil && sess.Provisional
}

// IsTyping reports whether a reply is outstanding for the session.
func (s *Store) IsTyping(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing[id]
}

// Messages returns the session's log in display order.
func (s *Store) Messages(id string) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.byID(id)
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess.Log.Messages(), nil
}

// SwitchTo makes the session current. The first switch to a durable session
// whose history is not cached locally fetches it from the remote store; a
// failed fetch keeps whatever is already in memory. Provisional sessions are
// locally authoritative and never fetch.
func (s *Store) SwitchTo(ctx context.Context, id string) error {
	s.mu.Lock()
	sess := s.byID(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.currentID = id
	needsFetch := !sess.Provisional && !sess.fetched
	s.mu.Unlock()

	if !needsFetch {
		return nil
	}

	outcome := s.gw.FetchMessages(ctx, s.userID, id)
	if !outcome.Ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess = s.byID(id)
	if sess == nil {
		return nil
	}
	sess.Log.ReplaceAll(outcome.Messages)
	sess.fetched = true
	s.broker.Publish(pubsub.UpdatedEvent, sess.summary())
	return nil
}

// Rename updates the title locally right away and pushes the change to the
// remote store in the background. A remote failure does not roll the local
// title back; the copies are allowed to drift.
func (s *Store) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}

	s.mu.Lock()
	sess := s.byID(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	sess.Title = title
	provisional := sess.Provisional
	s.broker.Publish(pubsub.UpdatedEvent, sess.summary())
	s.mu.Unlock()

	// Nothing to rename remotely while the session is provisional; the title
	// travels with the first send's index refresh.
	if provisional {
		return nil
	}

	go func() {
		defer log.RecoverPanic("rename", nil)
		if !s.gw.RenameSession(ctx, s.userID, id, title) {
			slog.Warn("remote rename failed, keeping local title", "session_id", id)
		}
	}()
	return nil
}

// Delete removes a session, remote first. The last remaining session and
// provisional sessions are not deletable; both refusals are synchronous and
// make no remote call.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess := s.byID(id)
	if sess == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	if len(s.sessions) == 1 {
		s.mu.Unlock()
		return ErrLastSession
	}
	if sess.Provisional {
		s.mu.Unlock()
		return ErrProvisional
	}
	s.mu.Unlock()

	if !s.gw.DeleteSession(ctx, s.userID, id) {
		return ErrRemote
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.ID != id {
			continue
		}
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
		summary := sess.summary()
		if s.currentID == id && len(s.sessions) > 0 {
			// List is sorted, so the head is the most recently updated.
			s.currentID = s.sessions[0].ID
		}
		s.broker.Publish(pubsub.DeletedEvent, summary)
		break
	}
	return nil
}

// Send appends the user message to the current session optimistically and
// returns the updated sequence right away; the exchange with the remote store
// happens in the background and reconciles against the session id captured
// here, not against whatever is current when the reply lands.
func (s *Store) Send(ctx context.Context, text string) ([]message.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	sess := s.byID(s.currentID)
	if sess == nil {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	if s.typing[sess.ID] {
		s.mu.Unlock()
		return nil, ErrReplyPending
	}

	if sess.Log.UserMessageCount() == 0 {
		sess.Title = DeriveTitle(text)
	}

	now := s.now()
	msgs := sess.Log.AppendUser(text, now)
	sess.UpdatedAt = now
	s.resort()
	s.typing[sess.ID] = true
	sid := sess.ID

	sent := msgs[len(msgs)-1]
	sent.SessionID = sid
	s.msgBroker.Publish(pubsub.CreatedEvent, sent)
	s.broker.Publish(pubsub.UpdatedEvent, sess.summary())
	s.mu.Unlock()

	go s.dispatch(ctx, sid, text)
	return msgs, nil
}

func (s *Store) dispatch(ctx context.Context, sid, text string) {
	defer log.RecoverPanic("send", nil)
	outcome := s.gw.SendMessage(ctx, s.userID, sid, text)
	if promoted := s.reconcile(sid, outcome); promoted {
		// The session just gained its server identity; re-index so the local
		// list matches what the store now reports.
		s.LoadIndex(ctx)
	}
}

// reconcile lands a reply in the session it was sent from. It reports whether
// the exchange promoted a provisional session to durable on the server.
func (s *Store) reconcile(sid string, outcome client.SendOutcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer delete(s.typing, sid)

	sess := s.byID(sid)
	if sess == nil {
		// Deleted mid-flight; the reply has nowhere to land.
		slog.Warn("dropping reply for missing session", "session_id", sid)
		return false
	}

	wasProvisional := sess.Provisional
	now := s.now()

	var reply message.Message
	if outcome.Ok {
		if outcome.SessionID != "" && outcome.SessionID != sess.ID {
			if s.currentID == sess.ID {
				s.currentID = outcome.SessionID
			}
			sess.ID = outcome.SessionID
		}
		reply = sess.Log.AppendAssistant(outcome.Text, outcome.Timestamp, outcome.Payload)
		sess.UpdatedAt = max(outcome.Timestamp, now)
	} else {
		reply = sess.Log.AppendFallback(now)
		sess.UpdatedAt = now
	}

	// Promotion is one-way and survives the failure path: the user message
	// exists locally, so this session is no longer an empty draft.
	sess.Provisional = false
	sess.fetched = true
	s.resort()

	reply.SessionID = sess.ID
	s.msgBroker.Publish(pubsub.CreatedEvent, reply)
	s.broker.Publish(pubsub.UpdatedEvent, sess.summary())

	return wasProvisional && outcome.Ok
}

// LoadIndex replaces the durable session list with what the remote store
// reports, carrying over locally cached logs and prepending any session that
// is still provisional. A failed refresh keeps the list already in memory.
func (s *Store) LoadIndex(ctx context.Context) bool {
	outcome := s.gw.ListSessions(ctx, s.userID)
	if !outcome.Ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]*Session, len(s.sessions))
	for _, sess := range s.sessions {
		existing[sess.ID] = sess
	}

	var next []*Session
	for _, sess := range s.sessions {
		if sess.Provisional {
			next = append(next, sess)
		}
	}
	for _, remote := range outcome.Sessions {
		if local, ok := existing[remote.ID]; ok && !local.Provisional {
			local.Title = remote.Title
			local.CreatedAt = remote.CreatedAt
			local.UpdatedAt = remote.UpdatedAt
			next = append(next, local)
			continue
		}
		now := s.now()
		sess := &Session{
			ID:        remote.ID,
			Title:     remote.Title,
			CreatedAt: remote.CreatedAt,
			UpdatedAt: remote.UpdatedAt,
			Log:       message.NewLog(),
		}
		sess.Log.SeedGreeting(now)
		next = append(next, sess)
	}

	s.sessions = next
	s.resort()

	if s.byID(s.currentID) == nil {
		s.currentID = ""
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		}
	}
	return true
}

// Logout clears all local state. Remote data is left intact for the next
// login.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	s.currentID = ""
	s.typing = make(map[string]bool)
}

// DeriveTitle infers a session title from its first user message: the first
// 30 characters, with an ellipsis when truncated.
func DeriveTitle(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= titleLimit {
		return string(runes)
	}
	return string(runes[:titleLimit]) + "…"
}

// byID must be called with the lock held.
func (s *Store) byID(id string) *Session {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

// resort must be called with the lock held. The sort is stable: equal
// timestamps keep their prior relative order.
func (s *Store) resort() {
	sort.SliceStable(s.sessions, func(i, j int) bool {
		return s.sessions[i].UpdatedAt > s.sessions[j].UpdatedAt
	})
}
