package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/interchat/interchat/internal/config"
	"github.com/interchat/interchat/internal/message"
	"github.com/interchat/interchat/internal/server"
	"github.com/interchat/interchat/internal/session"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	srv := server.NewServer(server.DefaultAddr, "test-secret")
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	cfg := &config.Config{
		ServerURL:    hs.URL,
		HomeCurrency: "TRY",
		DataDir:      t.TempDir(),
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a
}

func waitIdle(t *testing.T, s *session.Store, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !s.IsTyping(id)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestApp_LoginBootstrapsSessionIndex(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.False(t, a.Authenticated())
	require.Nil(t, a.Store())

	require.NoError(t, a.Login(context.Background(), "17953063", "demo"))
	require.True(t, a.Authenticated())
	require.Equal(t, "17953063", a.Credential().CustomerNo)

	store := a.Store()
	require.NotNil(t, store)

	// One fresh provisional session with the greeting.
	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	require.Equal(t, session.DefaultTitle, sessions[0].Title)

	msgs, err := store.Messages(sessions[0].ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, message.Greeting, msgs[0].Text)
}

func TestApp_LoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	err := a.Login(context.Background(), "17953063", "wrong")
	require.Error(t, err)
	require.False(t, a.Authenticated())
}

func TestApp_SendAgainstStubStore(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.NoError(t, a.Login(context.Background(), "17953063", "demo"))
	store := a.Store()

	cur, ok := store.Current()
	require.True(t, ok)

	_, err := store.Send(context.Background(), "bakiyem nedir")
	require.NoError(t, err)
	waitIdle(t, store, cur.ID)

	// The provisional session was promoted under the server-issued id.
	require.Eventually(t, func() bool {
		now, ok := store.Current()
		return ok && now.ID != cur.ID && !store.Provisional(now.ID)
	}, 2*time.Second, 5*time.Millisecond)

	now, _ := store.Current()
	msgs, err := store.Messages(now.ID)
	require.NoError(t, err)
	last := msgs[len(msgs)-1]
	require.Equal(t, message.RoleAssistant, last.Role)
	require.NotNil(t, last.Payload)
}

func TestApp_CredentialSurvivesRestart(t *testing.T) {
	t.Parallel()

	srv := server.NewServer(server.DefaultAddr, "test-secret")
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	cfg := &config.Config{
		ServerURL:    hs.URL,
		HomeCurrency: "TRY",
		DataDir:      t.TempDir(),
	}

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Login(context.Background(), "17953063", "demo"))
	a.Shutdown()

	// A new app over the same data directory starts authenticated.
	b, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(b.Shutdown)
	require.True(t, b.Authenticated())
	require.Equal(t, "17953063", b.Credential().CustomerNo)
}

func TestApp_Logout(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.NoError(t, a.Login(context.Background(), "17953063", "demo"))

	a.Logout(context.Background())
	require.False(t, a.Authenticated())
	require.Nil(t, a.Store())

	err := a.SendQuickAction(context.Background(), "balance")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestApp_QuickAction(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.NoError(t, a.Login(context.Background(), "17953063", "demo"))
	store := a.Store()

	cur, _ := store.Current()
	require.NoError(t, a.SendQuickAction(context.Background(), "balance"))
	waitIdle(t, store, cur.ID)

	require.Error(t, a.SendQuickAction(context.Background(), "nope"))
}

func TestApp_DarkThemePersists(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.False(t, a.DarkTheme())
	a.SetDarkTheme(true)
	require.True(t, a.DarkTheme())
}
