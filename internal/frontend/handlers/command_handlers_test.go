package handlers_test

import (
	"testing"

	"github.com/cory-johannsen/tavern/internal/frontend/handlers"
	"github.com/cory-johannsen/tavern/internal/game/command"
)

// TestAllCommandHandlersAreWired asserts that every Handler constant
// registered in BuiltinCommands has a corresponding entry in the command
// dispatch map. Adding a new command to commands.go MUST be accompanied
// by a handler entry or this test fails.
//
// Postcondition: every cmd.Handler in BuiltinCommands() is a key in CommandHandlers().
func TestAllCommandHandlersAreWired(t *testing.T) {
	registered := handlers.CommandHandlers()
	for _, cmd := range command.BuiltinCommands() {
		if _, ok := registered[cmd.Handler]; !ok {
			t.Errorf("handler %q is in BuiltinCommands() but missing from CommandHandlers(); add it to command_handlers.go", cmd.Handler)
		}
	}
	if len(registered) != len(command.BuiltinCommands()) {
		t.Errorf("CommandHandlers() has %d entries for %d commands", len(registered), len(command.BuiltinCommands()))
	}
}
