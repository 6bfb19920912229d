package handlers

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/game/action"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/gamedata"
	"github.com/cory-johannsen/tavern/internal/narration"
)

// testGame bundles a GameHandler over the default content with in-memory
// saves and the offline narrator.
type testGame struct {
	h       *GameHandler
	bundle  *gamedata.Bundle
	saves   *session.MemoryStore
	players *session.Manager
}

func newTestGame(t *testing.T) *testGame {
	t.Helper()
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	b, err := gamedata.Load(content.Default(), roller, config.GameConfig{ScriptInstructionLimit: 100000}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(b.Close)

	gw := narration.NewOffline(b.Rules)
	saves := session.NewMemoryStore()
	players := session.NewManager()
	h := NewGameHandler(b.Deps, b.Classes, saves, players,
		func(string) (narration.Gateway, error) { return gw, nil },
		action.Options{NarrationTimeout: time.Second},
		zaptest.NewLogger(t))
	return &testGame{h: h, bundle: b, saves: saves, players: players}
}

// newState builds a fresh game for a level 1 character of classID.
func (g *testGame) newState(t *testing.T, name, classID string) *session.State {
	t.Helper()
	class, err := g.bundle.Classes.Class(classID)
	require.NoError(t, err)
	c, err := character.New(name, class)
	require.NoError(t, err)
	st, err := session.New(g.bundle.Deps, c)
	require.NoError(t, err)
	return st
}

// play runs Play for account over a scripted console and returns the
// uncolored output.
func (g *testGame) play(t *testing.T, account string, lines ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	conn := telnet.NewStreamConn(in, out, false)
	err := g.h.Play(context.Background(), conn, account)
	return out.String(), err
}

// createFighter is the input that creates a fighter named name.
func createFighter(name string) []string {
	return []string{name, "fighter", "y"}
}

// testServer starts a Telnet acceptor with the given handler on a random port
// and returns the listening address. The acceptor is stopped on test cleanup.
func testServer(t *testing.T, handler telnet.SessionHandler) string {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := telnet.NewAcceptor(cfg, handler, logger)
	go func() { _ = acc.ListenAndServe() }()

	deadline := time.After(2 * time.Second)
	for {
		if acc.IsRunning() && acc.Addr() != "" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("acceptor did not start in time")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Cleanup(func() { acc.Stop() })
	return acc.Addr()
}
