package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/frontend/telnet"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
	"github.com/cory-johannsen/tavern/internal/game/session"
)

// RandomNames is a list of fantasy character names suitable for random
// selection during character creation. All names are 2-32 characters and
// are not equal to "cancel" or "random" (case-insensitive).
var RandomNames = []string{
	"Aldric", "Brenna", "Cedric", "Daria", "Eamon",
	"Fenna", "Garrick", "Hilde", "Ivor", "Jessa",
	"Kestrel", "Lorcan", "Maren", "Nessa", "Osric",
	"Perrin", "Quill", "Rowena", "Soren", "Tamsin",
}

// Character name bounds.
const (
	MinNameLen = 2
	MaxNameLen = 32
)

// IsRandomInput reports whether the player's input at a list step requests random selection.
// Blank input, "r", and "random" (all case-insensitive) are treated as random.
// Exported for testing.
func IsRandomInput(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return lower == "" || lower == "r" || lower == "random"
}

func isCancel(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "cancel")
}

// saveSlot is one save listed on the selection screen.
type saveSlot struct {
	slot string
	snap session.Snapshot
}

// listSaves returns the account's readable saves in slot order. Saves that
// fail to load are logged and skipped.
func (h *GameHandler) listSaves(ctx context.Context, account string) ([]saveSlot, error) {
	slots, err := h.saves.List(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	out := make([]saveSlot, 0, len(slots))
	for _, slot := range slots {
		snap, err := h.saves.Load(ctx, account, slot)
		if err != nil {
			h.logger.Warn("skipping unreadable save",
				zap.String("account", account), zap.String("slot", slot), zap.Error(err))
			continue
		}
		out = append(out, saveSlot{slot: slot, snap: snap})
	}
	return out, nil
}

// chooseGame runs the game selection UI after login: continue a saved game
// or create a new character.
//
// Precondition: conn must be open.
// Postcondition: Returns the chosen game and its save slot, or a nil state
// when the player disconnects from the menu.
func (h *GameHandler) chooseGame(ctx context.Context, conn *telnet.Conn, account string) (*session.State, string, error) {
	for {
		saves, err := h.listSaves(ctx, account)
		if err != nil {
			return nil, "", err
		}

		if len(saves) == 0 {
			_ = conn.WriteLine(telnet.Colorize(telnet.BrightYellow,
				"\nYou have no saved games. Let's create a character."))
			st, err := h.createCharacter(ctx, conn)
			if err != nil {
				return nil, "", err
			}
			if st == nil {
				continue
			}
			return st, session.DefaultSlot, nil
		}

		_ = conn.WriteLine(telnet.Colorize(telnet.BrightWhite, "\nYour saved games:"))
		for i, s := range saves {
			_ = conn.WriteLine(fmt.Sprintf("  %s%d%s. %s",
				telnet.Green, i+1, telnet.Reset, FormatSaveSummary(s.slot, s.snap)))
		}
		_ = conn.WriteLine(fmt.Sprintf("  %s%d%s. Create a new character",
			telnet.Green, len(saves)+1, telnet.Reset))
		_ = conn.WriteLine(fmt.Sprintf("  %squit%s. Disconnect",
			telnet.Green, telnet.Reset))

		_ = conn.WritePrompt(telnet.Colorf(telnet.BrightWhite, "Select [1-%d]: ", len(saves)+1))
		line, err := conn.ReadLine()
		if err != nil {
			return nil, "", fmt.Errorf("reading game selection: %w", err)
		}
		line = strings.ToLower(strings.TrimSpace(line))

		if line == "quit" || line == "exit" {
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye."))
			return nil, "", nil
		}

		choice := 0
		if _, err := fmt.Sscanf(line, "%d", &choice); err != nil || choice < 1 || choice > len(saves)+1 {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid selection."))
			continue
		}

		if choice == len(saves)+1 {
			st, err := h.createCharacter(ctx, conn)
			if err != nil {
				return nil, "", err
			}
			if st != nil {
				return st, h.freeSlot(saves), nil
			}
			continue
		}

		selected := saves[choice-1]
		st, err := session.Restore(selected.snap, h.deps)
		if err != nil {
			h.logger.Error("restoring save", zap.String("slot", selected.slot), zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That save could not be restored."))
			continue
		}
		_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome back, %s.", st.Character.Name))
		return st, selected.slot, nil
	}
}

// freeSlot picks a slot name not used by any existing save, so a new
// character never overwrites an old game.
func (h *GameHandler) freeSlot(saves []saveSlot) string {
	used := make(map[string]bool, len(saves))
	for _, s := range saves {
		used[s.slot] = true
	}
	if !used[session.DefaultSlot] {
		return session.DefaultSlot
	}
	for i := 2; ; i++ {
		slot := fmt.Sprintf("%s%d", session.DefaultSlot, i)
		if !used[slot] {
			return slot
		}
	}
}

// createCharacter guides the player through naming and class selection.
// Returns (nil, nil) if the player cancels at any step.
//
// Precondition: h.classes must be non-empty.
// Postcondition: Returns a new game at the starting location or (nil, nil) on cancel.
func (h *GameHandler) createCharacter(ctx context.Context, conn *telnet.Conn) (*session.State, error) {
	_ = conn.WriteLine(telnet.Colorize(telnet.BrightCyan, "\n=== Character Creation ==="))
	_ = conn.WriteLine("Type 'cancel' at any prompt to return.\n")

	// Step 1: Character name
	_ = conn.WritePrompt(telnet.Colorize(telnet.BrightWhite,
		"Enter your character's name (or 'random'): "))
	nameLine, err := conn.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("reading character name: %w", err)
	}
	nameLine = strings.TrimSpace(nameLine)
	if isCancel(nameLine) {
		return nil, nil
	}
	if strings.EqualFold(nameLine, "random") {
		nameLine = RandomNames[h.deps.Roller.Source().Intn(len(RandomNames))]
		_ = conn.WriteLine(telnet.Colorf(telnet.Cyan, "Random name selected: %s", nameLine))
	}
	if len(nameLine) < MinNameLen || len(nameLine) > MaxNameLen {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Name must be %d-%d characters.", MinNameLen, MaxNameLen))
		return nil, nil
	}

	// Step 2: Class
	classes := h.classes.All()
	_ = conn.WriteLine(telnet.Colorize(telnet.BrightYellow, "\nChoose your class:"))
	for i, c := range classes {
		_ = conn.WriteLine(FormatClassOption(i+1, c))
	}
	_ = conn.WriteLine(fmt.Sprintf("  %sR%s. Random (default)", telnet.Green, telnet.Reset))
	_ = conn.WritePrompt(telnet.Colorf(telnet.BrightWhite,
		"Select class [1-%d/R, default=R]: ", len(classes)))
	classLine, err := conn.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("reading class selection: %w", err)
	}
	if isCancel(classLine) {
		return nil, nil
	}
	var class *ruleset.Class
	if IsRandomInput(classLine) {
		class = classes[h.deps.Roller.Source().Intn(len(classes))]
		_ = conn.WriteLine(telnet.Colorf(telnet.Cyan, "Random class selected: %s", class.Name))
	} else {
		class, err = pickClass(h.classes, classes, classLine)
		if err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid selection."))
			return nil, nil
		}
	}

	return h.buildAndConfirm(conn, nameLine, class)
}

// pickClass resolves a menu number or a class id.
func pickClass(reg *ruleset.Registry, classes []*ruleset.Class, line string) (*ruleset.Class, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	choice := 0
	if _, err := fmt.Sscanf(line, "%d", &choice); err == nil {
		if choice < 1 || choice > len(classes) {
			return nil, fmt.Errorf("class choice %d out of range", choice)
		}
		return classes[choice-1], nil
	}
	return reg.Class(line)
}

// buildAndConfirm builds the character, shows the preview and prompts for
// confirmation.
//
// Precondition: class must be non-nil.
// Postcondition: Returns a new game or (nil, nil) on decline or build failure.
func (h *GameHandler) buildAndConfirm(conn *telnet.Conn, name string, class *ruleset.Class) (*session.State, error) {
	start := time.Now()
	c, err := character.New(name, class)
	if err != nil {
		h.logger.Error("building character", zap.String("name", name), zap.Error(err))
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Error building character: %v", err))
		return nil, nil
	}
	st, err := session.New(h.deps, c)
	if err != nil {
		h.logger.Error("starting game", zap.String("name", name), zap.Error(err))
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Error starting game: %v", err))
		return nil, nil
	}

	_ = conn.WriteLine(telnet.Colorize(telnet.BrightCyan, "\n--- Character Preview ---"))
	_ = conn.WriteLine(RenderStatus(st.View()))
	_ = conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "Create this character? [y/N]: "))

	confirm, err := conn.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("reading confirmation: %w", err)
	}
	if !isYes(confirm) {
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Character creation cancelled."))
		return nil, nil
	}

	h.logger.Info("character created",
		zap.String("name", c.Name),
		zap.String("class", c.Class),
		zap.Duration("duration", time.Since(start)))
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "%s the %s is ready for adventure!", c.Name, class.Name))
	return st, nil
}
