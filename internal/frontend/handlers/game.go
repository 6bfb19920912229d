package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/game/action"
	"github.com/cory-johannsen/tavern/internal/game/command"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/narration"
)

// AutosaveTimeout bounds the save written when a player leaves.
const AutosaveTimeout = 5 * time.Second

// GatewayFactory builds the narrator for one player. Each player gets its
// own gateway so conversation memory is never shared.
type GatewayFactory func(account string) (narration.Gateway, error)

// GameHandler runs the character selection flow and the game loop for an
// authenticated account.
type GameHandler struct {
	deps     session.Deps
	classes  *ruleset.Registry
	saves    session.Store
	players  *session.Manager
	gateways GatewayFactory
	commands *command.Registry
	opts     action.Options
	logger   *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: deps must validate; every other argument must be non-nil.
// Postcondition: Returns a GameHandler ready to Play.
func NewGameHandler(
	deps session.Deps,
	classes *ruleset.Registry,
	saves session.Store,
	players *session.Manager,
	gateways GatewayFactory,
	opts action.Options,
	logger *zap.Logger,
) *GameHandler {
	if err := deps.Validate(); err != nil {
		panic("handlers.NewGameHandler: " + err.Error())
	}
	if classes == nil || saves == nil || players == nil || gateways == nil || logger == nil {
		panic("handlers.NewGameHandler: all dependencies must be non-nil")
	}
	return &GameHandler{
		deps:     deps,
		classes:  classes,
		saves:    saves,
		players:  players,
		gateways: gateways,
		commands: command.DefaultRegistry(),
		opts:     opts,
		logger:   logger,
	}
}

// playSession is one account's connected game.
type playSession struct {
	h        *GameHandler
	conn     *telnet.Conn
	account  string
	state    *session.State
	resolver *action.Resolver
	gateway  narration.Gateway
	logger   *zap.Logger
	slot     string

	// shownPrompt is the last prompt written by the game loop. The event
	// forwarder redraws it without touching game state.
	shownPrompt atomic.Value
}

// Play selects or creates a game for account and runs the command loop
// until the player quits or the connection ends.
//
// Precondition: account must be a normalized, non-empty username.
// Postcondition: The account is no longer registered with the player
// manager when Play returns. Returns nil on a clean quit.
func (h *GameHandler) Play(ctx context.Context, conn *telnet.Conn, account string) error {
	logger := h.logger.With(zap.String("account", account), zap.String("conn_id", conn.ID()))

	state, slot, err := h.chooseGame(ctx, conn, account)
	if err != nil || state == nil {
		return err
	}

	player, err := h.players.Add(account, state)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That account is already playing from another connection."))
		logger.Info("duplicate login refused")
		return nil
	}
	defer func() { _ = h.players.Remove(account) }()

	gw, err := h.gateways(account)
	if err != nil {
		logger.Error("building narrator", zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The storyteller is unavailable. Please try again later."))
		return fmt.Errorf("building narrator: %w", err)
	}

	ps := &playSession{
		h:        h,
		conn:     conn,
		account:  account,
		state:    state,
		resolver: action.NewResolver(gw, h.opts, logger),
		gateway:  gw,
		logger:   logger,
		slot:     slot,
	}
	h.players.Broadcast(state.Location, account,
		telnet.Colorf(telnet.Green, "%s arrives.", state.Character.Name))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ps.forwardEvents(player.Entity)
	}()

	start := time.Now()
	err = ps.loop(ctx)
	h.players.Broadcast(ps.state.Location, account,
		telnet.Colorf(telnet.Green, "%s leaves.", ps.state.Character.Name))
	_ = h.players.Remove(account)
	wg.Wait()

	// The request context may already be cancelled by shutdown.
	saveCtx, cancel := context.WithTimeout(context.Background(), AutosaveTimeout)
	defer cancel()
	if serr := ps.save(saveCtx, ps.slot); serr != nil {
		logger.Error("autosave failed", zap.String("slot", ps.slot), zap.Error(serr))
	} else {
		logger.Info("autosaved", zap.String("slot", ps.slot))
	}

	logger.Info("game ended", zap.Duration("duration", time.Since(start)), zap.Error(err))
	return err
}

// forwardEvents writes lines from other players until the entity closes.
func (ps *playSession) forwardEvents(e *session.Entity) {
	for line := range e.Events() {
		_ = ps.conn.WriteLine("\n" + line)
		if p, ok := ps.shownPrompt.Load().(string); ok {
			_ = ps.conn.WritePrompt(p)
		}
	}
}

func (ps *playSession) prompt() string {
	c := ps.state.Character
	tag := ""
	if ps.state.Combat != nil {
		tag = telnet.Colorize(telnet.ColorFailure, " COMBAT")
	}
	if _, ok := ps.resolver.Pending(); ok {
		tag += telnet.Colorize(telnet.BrightYellow, " ROLL")
	}
	return telnet.Colorf(telnet.BrightCyan, "[%s %d/%dhp %dg", c.Name, c.Health, c.MaxHealth, c.Gold) +
		tag + telnet.Colorize(telnet.BrightCyan, "]> ")
}

func (ps *playSession) loop(ctx context.Context) error {
	_ = ps.conn.WriteLine(RenderLocation(ps.state.View(), ps.others()))
	for {
		select {
		case <-ctx.Done():
			_ = ps.conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		prompt := ps.prompt()
		ps.shownPrompt.Store(prompt)
		if err := ps.conn.WritePrompt(prompt); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := ps.conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		quit, err := ps.dispatch(ctx, line)
		ps.h.players.Sync(ps.account)
		if err != nil {
			ps.reportError(err)
		}
		if quit {
			return nil
		}
	}
}

// dispatch runs one input line: a registered command, or free text for
// the action resolver.
func (ps *playSession) dispatch(ctx context.Context, line string) (bool, error) {
	parsed := command.Parse(line)
	cmd, ok := ps.h.commands.Resolve(parsed.Command)
	// "i look around" is prose, not the inventory command with arguments.
	if !ok || (cmd.Usage == "" && len(parsed.Args) > 0) {
		return false, ps.freeText(ctx, line)
	}
	fn, ok := commandHandlerMap[cmd.Handler]
	if !ok {
		return false, fmt.Errorf("command %q has no handler", cmd.Name)
	}
	res, err := fn(&commandContext{ctx: ctx, ps: ps, cmd: cmd, parsed: parsed})
	return res.quit, err
}

// freeText sends the line to the action resolver and shows the result.
func (ps *playSession) freeText(ctx context.Context, line string) error {
	resp, err := ps.resolver.Handle(ctx, ps.state, line)
	if err != nil {
		return err
	}
	return ps.show(resp)
}

func (ps *playSession) show(resp action.Response) error {
	if err := ps.conn.WriteLine(RenderResponse(resp)); err != nil {
		return err
	}
	if resp.End != nil && resp.End.Victory {
		ps.h.players.Broadcast(ps.state.Location, ps.account,
			telnet.Colorf(telnet.Yellow, "%s stands victorious over their foes.", ps.state.Character.Name))
	}
	return nil
}

// others returns the accounts of the other players at this location.
// Another player's State belongs to its own goroutine, so only account
// names are shown.
func (ps *playSession) others() []string {
	var out []string
	for _, a := range ps.h.players.At(ps.state.Location) {
		if a != ps.account {
			out = append(out, a)
		}
	}
	return out
}

// save writes the current game to slot.
func (ps *playSession) save(ctx context.Context, slot string) error {
	if err := ps.h.saves.Save(ctx, ps.account, slot, ps.state.Snapshot()); err != nil {
		return fmt.Errorf("saving slot %q: %w", slot, err)
	}
	ps.slot = slot
	return nil
}

// replace swaps in a loaded or newly created game.
func (ps *playSession) replace(st *session.State, slot string) error {
	if err := ps.h.players.Replace(ps.account, st); err != nil {
		return err
	}
	old := ps.state.Location
	ps.state = st
	ps.slot = slot
	ps.resolver.Clear()
	if old != st.Location {
		ps.h.players.Broadcast(old, ps.account, telnet.Colorf(telnet.Green, "%s leaves.", ps.account))
	}
	ps.h.players.Broadcast(st.Location, ps.account, telnet.Colorf(telnet.Green, "%s arrives.", st.Character.Name))
	ps.logger.Info("game replaced", zap.String("slot", slot), zap.String("character", st.Character.Name))
	return nil
}

// loadGame restores the game saved in slot for account.
func (h *GameHandler) loadGame(ctx context.Context, account, slot string) (*session.State, error) {
	snap, err := h.saves.Load(ctx, account, slot)
	if err != nil {
		return nil, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	st, err := session.Restore(snap, h.deps)
	if err != nil {
		return nil, fmt.Errorf("restoring slot %q: %w", slot, err)
	}
	return st, nil
}

// reportError turns a domain error into a line for the player. Unexpected
// errors are logged and shown generically.
func (ps *playSession) reportError(err error) {
	msg, known := userMessage(err)
	if !known {
		ps.logger.Error("command failed", zap.Error(err))
	}
	_ = ps.conn.WriteLine(telnet.Colorize(telnet.Red, msg))
}
