package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/interchat/interchat/internal/message"
	"github.com/interchat/interchat/internal/proto"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "TRY")
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := New("not a url", "TRY")
	require.Error(t, err)

	_, err = New("/just/a/path", "TRY")
	require.Error(t, err)
}

func TestClient_BearerHeader(t *testing.T) {
	t.Parallel()

	var got string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]proto.Session{})
	}))

	c.ListSessions(context.Background(), "1")
	require.Empty(t, got)

	c.SetToken("abc123")
	c.ListSessions(context.Background(), "1")
	require.Equal(t, "Bearer abc123", got)
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		var req proto.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "demo" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(proto.LoginResponse{Message: "Müşteri numarası veya şifre hatalı"})
			return
		}
		_ = json.NewEncoder(w).Encode(proto.LoginResponse{
			Success:    true,
			CustomerNo: req.CustomerNo,
			Token:      "token-1",
		})
	}))

	outcome := c.Login(context.Background(), "17953063", "demo")
	require.True(t, outcome.Ok)
	require.Equal(t, "token-1", outcome.Token)

	outcome = c.Login(context.Background(), "17953063", "wrong")
	require.False(t, outcome.Ok)
	require.Empty(t, outcome.Token)
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()

	payload, err := proto.MarshalPayload(proto.BalanceCard{
		AccountID: 1,
		Balance:   100.5,
		Currency:  "TRY",
	})
	require.NoError(t, err)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/message", r.URL.Path)

		var req proto.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "bakiyem", req.Text)

		_ = json.NewEncoder(w).Encode(proto.ChatResponse{
			Response:  "Bakiyeniz aşağıdadır.",
			Timestamp: 1234,
			Payload:   payload,
			SessionID: "srv-1",
		})
	}))

	outcome := c.SendMessage(context.Background(), "1", "local-1", "bakiyem")
	require.True(t, outcome.Ok)
	require.Equal(t, "Bakiyeniz aşağıdadır.", outcome.Text)
	require.Equal(t, int64(1234), outcome.Timestamp)
	require.Equal(t, "srv-1", outcome.SessionID)

	card, ok := outcome.Payload.(proto.BalanceCard)
	require.True(t, ok)
	require.Equal(t, 100.5, card.Balance)
}

func TestClient_SendMessageDegradesOnFailure(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		require.False(t, c.SendMessage(context.Background(), "1", "s1", "soru").Ok)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		require.False(t, c.SendMessage(context.Background(), "1", "s1", "soru").Ok)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		c, err := New("http://127.0.0.1:1", "TRY")
		require.NoError(t, err)
		require.False(t, c.SendMessage(context.Background(), "1", "s1", "soru").Ok)
	})
}

func TestClient_SendMessageDropsBadPayloadOnly(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(proto.ChatResponse{
			Response:  "cevap",
			Timestamp: 7,
			Payload:   `{"type":"mystery_card","data":{}}`,
		})
	}))

	outcome := c.SendMessage(context.Background(), "1", "s1", "soru")
	require.True(t, outcome.Ok)
	require.Equal(t, "cevap", outcome.Text)
	require.Nil(t, outcome.Payload)
}

func TestClient_ListSessions(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/17953063", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]proto.Session{
			{ID: "s1", Title: "Bakiye", CreatedAt: 1, UpdatedAt: 9},
			{ID: "s2", Title: "Döviz", CreatedAt: 2, UpdatedAt: 5},
		})
	}))

	outcome := c.ListSessions(context.Background(), "17953063")
	require.True(t, outcome.Ok)
	require.Len(t, outcome.Sessions, 2)
	require.Equal(t, "s1", outcome.Sessions[0].ID)
}

func TestClient_FetchMessages(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/messages/17953063/s1", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]proto.MessageRecord{
			{ID: "m1", Sender: proto.SenderUser, Text: "bakiyem", Timestamp: 1},
			{ID: "m2", Sender: proto.SenderAssistant, Text: "buyrun", Timestamp: 2, Payload: "garbage"},
		})
	}))

	outcome := c.FetchMessages(context.Background(), "17953063", "s1")
	require.True(t, outcome.Ok)
	require.Len(t, outcome.Messages, 2)
	require.Equal(t, message.RoleUser, outcome.Messages[0].Role)
	require.Equal(t, "s1", outcome.Messages[0].SessionID)

	// The broken payload is dropped, the message itself survives.
	require.Equal(t, "buyrun", outcome.Messages[1].Text)
	require.Nil(t, outcome.Messages[1].Payload)
}

func TestClient_RenameAndDelete(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "PUT" && r.URL.Path == "/session/s1/title":
			var req proto.RenameRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "Yeni Başlık", req.Title)
			w.WriteHeader(http.StatusOK)
		case r.Method == "DELETE" && r.URL.Path == "/session/s1":
			require.Equal(t, "17953063", r.URL.Query().Get("user_id"))
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	require.True(t, c.RenameSession(context.Background(), "17953063", "s1", "Yeni Başlık"))
	require.False(t, c.RenameSession(context.Background(), "17953063", "s2", "Yeni Başlık"))
	require.True(t, c.DeleteSession(context.Background(), "17953063", "s1"))
	require.False(t, c.DeleteSession(context.Background(), "17953063", "s2"))
}
