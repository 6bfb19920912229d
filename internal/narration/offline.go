package narration

import (
	"context"
	"fmt"
	"strings"

	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/scripting"
)

// Offline is a deterministic Gateway for play without a model. Difficulty
// and random events come from the Lua rules; prose is templated.
type Offline struct {
	rules *scripting.Rules
}

// NewOffline returns an Offline narrator. A nil rules makes ProposeDifficulty
// fail, so callers fall back to their default DC.
func NewOffline(rules *scripting.Rules) *Offline {
	return &Offline{rules: rules}
}

// Narrate renders request in the voice of addressee.
func (o *Offline) Narrate(_ context.Context, request string, addressee Addressee, view View) (string, error) {
	if addressee != Narrator {
		if n, ok := view.NPC(string(addressee)); ok {
			return npcLine(n, request), nil
		}
	}
	loc := view.Location
	var b strings.Builder
	if request != "" {
		fmt.Fprintf(&b, "You %s. ", strings.TrimSuffix(lowerFirst(request), "."))
	}
	fmt.Fprintf(&b, "%s: %s", loc.Name, loc.Description)
	if len(view.Present) > 0 {
		names := make([]string, 0, len(view.Present))
		for _, n := range view.Present {
			names = append(names, n.Name)
		}
		fmt.Fprintf(&b, " %s %s here.", strings.Join(names, ", "), isAre(len(names)))
	}
	return b.String(), nil
}

func npcLine(n NPCView, request string) string {
	mood := RelationshipDescriptor(n.Relationship)
	var tone string
	switch mood {
	case "very friendly", "friendly":
		tone = "smiles warmly"
	case "neutral":
		tone = "regards you evenly"
	default:
		tone = "eyes you with suspicion"
	}
	line := fmt.Sprintf("%s %s. %q", n.Name, tone, n.Dialogue)
	if request != "" {
		line = fmt.Sprintf("You say: %q\n%s", request, line)
	}
	return line
}

// ProposeDifficulty consults the Lua difficulty table.
func (o *Offline) ProposeDifficulty(_ context.Context, skill string, view View) (int, error) {
	if o.rules == nil {
		return 0, fmt.Errorf("%w: no difficulty table loaded", ErrMalformed)
	}
	dc, ok := o.rules.Difficulty(skill, view.Character.Level, view.Location.ID)
	if !ok {
		return 0, fmt.Errorf("%w: difficulty table has no answer for %s", ErrMalformed, skill)
	}
	return dc, nil
}

// ProposeQuestVariation always returns ErrNoVariation.
func (o *Offline) ProposeQuestVariation(context.Context, quest.Quest) (quest.Variation, error) {
	return quest.Variation{}, ErrNoVariation
}

// RandomEvent draws an event for the player's location from the Lua events
// table; empty when the location has none.
func (o *Offline) RandomEvent(_ context.Context, view View) (string, error) {
	if o.rules == nil {
		return "", nil
	}
	return o.rules.RandomEvent(view.Location.ID), nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func isAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}
