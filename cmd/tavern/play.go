package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
)

var (
	playAccount string
	playNoColor bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a single-player game in this terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			// Log lines would interleave with the game on the terminal.
			level = "warn"
		}
		return runPlay(cmd.Context(), Options{ConfigPath: configPath, LogLevel: level}, playAccount, !playNoColor)
	},
}

func init() {
	playCmd.Flags().StringVar(&playAccount, "account", "local", "account that owns the local saves")
	playCmd.Flags().BoolVar(&playNoColor, "no-color", false, "disable ANSI colors")
}

func runPlay(ctx context.Context, opts Options, account string, color bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initializeApp(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	conn := telnet.NewStreamConn(os.Stdin, os.Stdout, color)
	err = app.Game.Play(ctx, conn, account)
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
