// Package handlers provides Telnet session handling and command processing.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/storage"
)

const welcomeBanner = `
` + telnet.Bold + telnet.BrightYellow + `
      )  (
     (   ) )       _____
      ) ( (       |_   _|_ ___   _____ _ __ _ __
    _______)_       | |/ _' \ \ / / _ \ '__| '_ \
 .-'---------|      | | (_| |\ V /  __/ |  | | | |
( C|/\/\/\/\/|      |_|\__,_| \_/ \___|_|  |_| |_|
 '-./\/\/\/\/|
   '_________'
    '-------'` + telnet.Reset + `

` + telnet.BrightCyan + `  Pull up a chair, traveler. The fire is warm and the ale is cold.` + telnet.Reset + `

  Type ` + telnet.Green + `login <username> [password]` + telnet.Reset + ` to connect.
  Type ` + telnet.Green + `register <username> <password>` + telnet.Reset + ` to create an account.
  Type ` + telnet.Green + `quit` + telnet.Reset + ` to disconnect.
`

// Account credential bounds enforced at registration.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 6
)

// AuthHandler implements telnet.SessionHandler and processes the
// authentication loop for a connected client before handing it to the game.
type AuthHandler struct {
	accounts storage.AccountStore
	game     *GameHandler
	logger   *zap.Logger
}

// NewAuthHandler creates an AuthHandler backed by the given account store.
//
// Precondition: accounts, game, and logger must be non-nil.
// Postcondition: Returns an AuthHandler ready to handle sessions.
func NewAuthHandler(accounts storage.AccountStore, game *GameHandler, logger *zap.Logger) *AuthHandler {
	if accounts == nil || game == nil || logger == nil {
		panic("handlers.NewAuthHandler: accounts, game and logger must be non-nil")
	}
	return &AuthHandler{
		accounts: accounts,
		game:     game,
		logger:   logger,
	}
}

// HandleSession implements telnet.SessionHandler. It shows the welcome banner
// and processes authentication commands until the player logs in or quits.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *AuthHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr()

	if err := conn.WriteLine(welcomeBanner); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Safe travels!"))
			h.logger.Info("client quit",
				zap.String("remote_addr", addr),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil

		case "login":
			acct, err := h.handleLogin(ctx, conn, args)
			if err != nil {
				return err
			}
			if acct.ID == "" {
				continue
			}
			h.logger.Info("player logged in",
				zap.String("remote_addr", addr),
				zap.String("username", acct.Username),
				zap.Duration("login_time", time.Since(start)),
			)
			return h.game.Play(ctx, conn, acct.Username)

		case "register":
			if err := h.handleRegister(ctx, conn, args); err != nil {
				return err
			}

		case "help":
			h.showHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", cmd))
		}
	}
}

// handleLogin authenticates a player. The password may follow the username
// or is read with echo suppressed.
//
// Postcondition: Returns (acct, nil) on success, (storage.Account{}, nil) if the error was
// shown to the user and the auth loop should continue, or (storage.Account{}, error) on fatal errors.
func (h *AuthHandler) handleLogin(ctx context.Context, conn *telnet.Conn, args []string) (storage.Account, error) {
	if len(args) < 1 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: login <username> [password]"))
		return storage.Account{}, nil
	}

	username := args[0]
	var password string
	if len(args) >= 2 {
		password = args[1]
	} else {
		_ = conn.WritePrompt("Password: ")
		pw, err := conn.ReadPassword()
		if err != nil {
			return storage.Account{}, fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimSpace(pw)
	}

	start := time.Now()
	acct, err := h.accounts.Authenticate(ctx, username, password)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAccountNotFound), errors.Is(err, storage.ErrInvalidUsername):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Account not found. Use 'register' to create one."))
			return storage.Account{}, nil
		case errors.Is(err, storage.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
			return storage.Account{}, nil
		default:
			h.logger.Error("authentication error", zap.Error(err), zap.Duration("elapsed", elapsed))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
			return storage.Account{}, nil
		}
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Welcome back, %s! [%s]", acct.Username, elapsed.Round(time.Millisecond)))
	return acct, nil
}

func (h *AuthHandler) handleRegister(ctx context.Context, conn *telnet.Conn, args []string) error {
	if len(args) < 2 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: register <username> <password>"))
	}

	username := args[0]
	password := args[1]

	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return conn.WriteLine(telnet.Colorf(telnet.Red, "Username must be %d-%d characters.", MinUsernameLen, MaxUsernameLen))
	}
	if _, err := storage.NormalizeUsername(username); err != nil {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Usernames must not contain spaces or ':'."))
	}
	if len(password) < MinPasswordLen {
		return conn.WriteLine(telnet.Colorf(telnet.Red, "Password must be at least %d characters.", MinPasswordLen))
	}

	start := time.Now()
	acct, err := h.accounts.Create(ctx, username, password)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That username is already taken."))
			return nil
		}
		h.logger.Error("registration error", zap.Error(err), zap.Duration("elapsed", elapsed))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		return nil
	}

	h.logger.Info("account registered", zap.String("username", acct.Username), zap.String("account_id", acct.ID))
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen,
		"Account created: %s. You may now 'login'. [%s]",
		acct.Username, elapsed.Round(time.Millisecond),
	))
	return nil
}

func (h *AuthHandler) showHelp(conn *telnet.Conn) {
	_ = conn.WriteLines(
		telnet.Colorize(telnet.BrightWhite, "Available commands:"),
		telnet.Colorize(telnet.Green, "  login <username> [password]")+"    Log in to your account",
		telnet.Colorize(telnet.Green, "  register <username> <password>")+" Create a new account",
		telnet.Colorize(telnet.Green, "  help")+"                           Show this help",
		telnet.Colorize(telnet.Green, "  quit")+"                           Disconnect",
	)
}
