package handlers

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/storage"
	"github.com/cory-johannsen/tavern/internal/testutil"
)

func newTestAuth(t *testing.T) (*AuthHandler, *testGame, *storage.MemoryAccounts) {
	t.Helper()
	g := newTestGame(t)
	accounts := storage.NewMemoryAccounts()
	return NewAuthHandler(accounts, g.h, zaptest.NewLogger(t)), g, accounts
}

// readBanner consumes the welcome banner and the first prompt.
func readBanner(c *testutil.TelnetClient) string {
	out := c.ReadUntil("to disconnect.", 2*time.Second)
	return out + c.ReadUntil("> ", 2*time.Second)
}

func TestAuthHandler_WelcomeBanner(t *testing.T) {
	h, _, _ := newTestAuth(t)
	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)

	out := readBanner(client)
	assert.Contains(t, out, "Pull up a chair")
	assert.Contains(t, out, "register")
}

func TestAuthHandler_Quit(t *testing.T) {
	h, _, _ := newTestAuth(t)
	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)

	readBanner(client)
	client.Send("quit")
	out := client.ReadUntil("Safe travels!", 2*time.Second)
	assert.Contains(t, out, "Safe travels!")
}

func TestAuthHandler_Help(t *testing.T) {
	h, _, _ := newTestAuth(t)
	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)

	readBanner(client)
	client.Send("help")
	out := client.ReadUntil("Disconnect", 2*time.Second)
	assert.Contains(t, out, "login <username> [password]")
}

func TestAuthHandler_UnknownCommand(t *testing.T) {
	h, _, _ := newTestAuth(t)
	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)

	readBanner(client)
	client.Send("dance")
	out := client.ReadUntil("help", 2*time.Second)
	assert.Contains(t, out, "Unknown command: dance")
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h, _, _ := newTestAuth(t)
	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)

	readBanner(client)
	client.Send("register ab secret1")
	assert.Contains(t, client.ReadUntil("characters.", 2*time.Second), "Username must be 3-32 characters.")

	client.Send("register alice 123")
	assert.Contains(t, client.ReadUntil("characters.", 2*time.Second), "Password must be at least 6 characters.")

	client.Send("register bad:name secret1")
	assert.Contains(t, client.ReadUntil("':'.", 2*time.Second), "must not contain spaces")

	client.Send("register")
	assert.Contains(t, client.ReadUntil("<password>", 2*time.Second), "Usage: register")
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h, _, accounts := newTestAuth(t)
	_, err := accounts.Create(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)
	readBanner(client)
	client.Send("register ALICE secret2")
	out := client.ReadUntil("taken.", 2*time.Second)
	assert.Contains(t, out, "That username is already taken.")
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	h, _, accounts := newTestAuth(t)
	_, err := accounts.Create(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)
	readBanner(client)

	client.Send("login nobody secret1")
	assert.Contains(t, client.ReadUntil("create one.", 2*time.Second), "Account not found.")

	client.Send("login alice wrong")
	assert.Contains(t, client.ReadUntil("Invalid password.", 2*time.Second), "Invalid password.")
}

func TestAuthHandler_RegisterLoginAndPlay(t *testing.T) {
	h, g, _ := newTestAuth(t)
	addr := testServer(t, h)
	client := testutil.NewTelnetClient(t, addr)

	readBanner(client)
	client.Send("register Alice secret1")
	client.ReadUntil("You may now 'login'.", 5*time.Second)

	client.ReadUntil("> ", 2*time.Second)
	client.Send("login alice")
	client.ReadUntil("Password: ", 2*time.Second)
	client.Send("secret1")
	client.ReadUntil("Welcome back, alice!", 5*time.Second)

	client.ReadUntil("(or 'random'): ", 2*time.Second)
	client.Send("Tamsin")
	client.ReadUntil("default=R]: ", 2*time.Second)
	client.Send("fighter")
	client.ReadUntil("[y/N]: ", 2*time.Second)
	client.Send("y")
	client.ReadUntil("The Tavern", 2*time.Second)
	client.ReadUntil("]> ", 2*time.Second)

	require.Eventually(t, func() bool {
		return slices.Contains(g.players.At("tavern"), "alice")
	}, 2*time.Second, 10*time.Millisecond)

	client.Send("quit")
	require.Eventually(t, func() bool {
		_, err := g.saves.Load(context.Background(), "alice", session.DefaultSlot)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return g.players.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewAuthHandler_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewAuthHandler(nil, nil, nil) })
}
