package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/interchat/interchat/internal/message"
	"github.com/interchat/interchat/internal/proto"
)

// Outcome types: every remote operation degrades transport failures,
// non-success statuses, and malformed bodies to Ok=false. Callers never see
// an error from the gateway; they inspect the outcome and fall back.

type LoginOutcome struct {
	Ok      bool
	Token   string
	Message string
}

type ListOutcome struct {
	Ok       bool
	Sessions []proto.Session
}

type FetchOutcome struct {
	Ok       bool
	Messages []message.Message
}

type SendOutcome struct {
	Ok        bool
	Text      string
	Timestamp int64
	Payload   proto.Payload
	// SessionID is the id the store filed the exchange under. A provisional
	// session discovers its server-issued id here on first send.
	SessionID string
}

// Login exchanges credentials for a bearer token. The only call made without
// the bearer header.
func (c *Client) Login(ctx context.Context, customerNo, password string) LoginOutcome {
	rsp, err := c.post(ctx, "/auth/login", nil, jsonBody(proto.LoginRequest{
		CustomerNo: customerNo,
		Password:   password,
	}))
	if err != nil {
		slog.Warn("login request failed", "error", err)
		return LoginOutcome{}
	}
	defer rsp.Body.Close()
	if !is2xx(rsp.StatusCode) {
		slog.Warn("login rejected", "status", rsp.StatusCode)
		return LoginOutcome{}
	}
	var lr proto.LoginResponse
	if err := json.NewDecoder(rsp.Body).Decode(&lr); err != nil {
		slog.Warn("failed to decode login response", "error", err)
		return LoginOutcome{}
	}
	if !lr.Success || lr.Token == "" {
		return LoginOutcome{Message: lr.Message}
	}
	return LoginOutcome{Ok: true, Token: lr.Token, Message: lr.Message}
}

// ListSessions retrieves the ordered list of durable sessions for a user. On
// failure the caller keeps whatever list it already has in memory.
func (c *Client) ListSessions(ctx context.Context, userID string) ListOutcome {
	rsp, err := c.get(ctx, fmt.Sprintf("/sessions/%s", userID), nil)
	if err != nil {
		slog.Warn("failed to list sessions", "error", err)
		return ListOutcome{}
	}
	defer rsp.Body.Close()
	if !is2xx(rsp.StatusCode) {
		slog.Warn("failed to list sessions", "status", rsp.StatusCode)
		return ListOutcome{}
	}
	var sessions []proto.Session
	if err := json.NewDecoder(rsp.Body).Decode(&sessions); err != nil {
		slog.Warn("failed to decode sessions", "error", err)
		return ListOutcome{}
	}
	return ListOutcome{Ok: true, Sessions: sessions}
}

// FetchMessages retrieves a session's history. Each record's payload field is
// double-encoded on the wire; a decode failure drops the payload, never the
// message.
func (c *Client) FetchMessages(ctx context.Context, userID, sessionID string) FetchOutcome {
	rsp, err := c.get(ctx, fmt.Sprintf("/messages/%s/%s", userID, sessionID), nil)
	if err != nil {
		slog.Warn("failed to fetch messages", "session_id", sessionID, "error", err)
		return FetchOutcome{}
	}
	defer rsp.Body.Close()
	if !is2xx(rsp.StatusCode) {
		slog.Warn("failed to fetch messages", "session_id", sessionID, "status", rsp.StatusCode)
		return FetchOutcome{}
	}
	var records []proto.MessageRecord
	if err := json.NewDecoder(rsp.Body).Decode(&records); err != nil {
		slog.Warn("failed to decode messages", "session_id", sessionID, "error", err)
		return FetchOutcome{}
	}

	messages := make([]message.Message, len(records))
	for i, rec := range records {
		messages[i] = message.FromRecord(rec, c.decodePayload(rec.Payload))
		messages[i].SessionID = sessionID
	}
	return FetchOutcome{Ok: true, Messages: messages}
}

// SendMessage submits a user message and returns the assistant's reply. The
// caller appends the fallback reply when Ok is false.
func (c *Client) SendMessage(ctx context.Context, userID, sessionID, text string) SendOutcome {
	rsp, err := c.post(ctx, "/message", nil, jsonBody(proto.ChatRequest{
		Text:      text,
		UserID:    userID,
		SessionID: sessionID,
	}))
	if err != nil {
		slog.Warn("failed to send message", "session_id", sessionID, "error", err)
		return SendOutcome{}
	}
	defer rsp.Body.Close()
	if !is2xx(rsp.StatusCode) {
		slog.Warn("failed to send message", "session_id", sessionID, "status", rsp.StatusCode)
		return SendOutcome{}
	}
	var cr proto.ChatResponse
	if err := json.NewDecoder(rsp.Body).Decode(&cr); err != nil {
		slog.Warn("failed to decode chat response", "session_id", sessionID, "error", err)
		return SendOutcome{}
	}
	ts := cr.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return SendOutcome{
		Ok:        true,
		Text:      cr.Response,
		Timestamp: ts,
		Payload:   c.decodePayload(cr.Payload),
		SessionID: cr.SessionID,
	}
}

// RenameSession updates a session title remotely. Best-effort from the
// caller's point of view: a false return is logged and otherwise ignored.
func (c *Client) RenameSession(ctx context.Context, userID, sessionID, title string) bool {
	rsp, err := c.put(ctx, fmt.Sprintf("/session/%s/title", sessionID), nil, jsonBody(proto.RenameRequest{
		Title:  title,
		UserID: userID,
	}))
	if err != nil {
		slog.Warn("failed to rename session", "session_id", sessionID, "error", err)
		return false
	}
	defer rsp.Body.Close()
	return is2xx(rsp.StatusCode)
}

// DeleteSession removes a session remotely. The caller only removes its local
// copy when this returns true.
func (c *Client) DeleteSession(ctx context.Context, userID, sessionID string) bool {
	rsp, err := c.delete(ctx, fmt.Sprintf("/session/%s", sessionID), url.Values{"user_id": []string{userID}})
	if err != nil {
		slog.Warn("failed to delete session", "session_id", sessionID, "error", err)
		return false
	}
	defer rsp.Body.Close()
	return is2xx(rsp.StatusCode)
}

// Logout notifies the store that the credential is being discarded.
// Best-effort; failures are ignored because the token is stateless anyway.
func (c *Client) Logout(ctx context.Context) {
	rsp, err := c.post(ctx, "/auth/logout", nil, nil)
	if err != nil {
		slog.Debug("logout request failed", "error", err)
		return
	}
	rsp.Body.Close()
}

// Health checks the store's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	rsp, err := c.get(ctx, "/health", nil)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("server health check failed: %s", rsp.Status)
	}
	return nil
}
