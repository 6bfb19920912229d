// Package narration turns resolved game outcomes into prose. The Gateway is
// the only boundary to the language model; every numeric outcome is settled
// before a Gateway method is called.
package narration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/session"
)

var (
	// ErrNoAPIKey is returned when a remote narrator is built without credentials.
	ErrNoAPIKey = errors.New("narration: no api key configured")
	// ErrMalformed is returned when a model reply cannot be parsed.
	ErrMalformed = errors.New("narration: malformed reply")
	// ErrNoVariation is returned by narrators that do not vary quests.
	ErrNoVariation = errors.New("narration: quest variation unavailable")
)

// Addressee selects the voice of a narration: an NPC ID or Narrator.
type Addressee string

// Narrator is the game master voice used when no NPC is addressed.
const Narrator Addressee = "game"

// View is the read-only state handed to a Gateway.
type View = session.View

// Aliases for the view parts the prompts read.
type (
	NPCView   = session.NPCView
	QuestView = session.QuestView
	ItemView  = session.ItemView
	Companion = session.Companion
)

// Gateway produces prose and proposals from the model.
type Gateway interface {
	// Narrate answers request in the voice of addressee.
	Narrate(ctx context.Context, request string, addressee Addressee, view View) (string, error)
	// ProposeDifficulty suggests a DC in [8, 20] for a skill check.
	ProposeDifficulty(ctx context.Context, skill string, view View) (int, error)
	// ProposeQuestVariation retells base under a new title.
	ProposeQuestVariation(ctx context.Context, base quest.Quest) (quest.Variation, error)
	// RandomEvent describes a short unprompted happening; empty when none.
	RandomEvent(ctx context.Context, view View) (string, error)
}

var (
	difficultyPattern = regexp.MustCompile(`\b(1[0-9]|20|[8-9])\b`)
	jsonPattern       = regexp.MustCompile(`\{[\s\S]*\}`)
)

// ParseDifficulty extracts the first DC in [8, 20] from text.
func ParseDifficulty(text string) (int, error) {
	m := difficultyPattern.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: no difficulty in %q", ErrMalformed, text)
	}
	return strconv.Atoi(m)
}

// ParseVariation extracts the outermost JSON object from text and decodes it.
func ParseVariation(text string) (quest.Variation, error) {
	m := jsonPattern.FindString(text)
	if m == "" {
		return quest.Variation{}, fmt.Errorf("%w: no json object", ErrMalformed)
	}
	var v quest.Variation
	if err := json.Unmarshal([]byte(m), &v); err != nil {
		return quest.Variation{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// RelationshipDescriptor names a relationship value.
func RelationshipDescriptor(n int) string {
	switch {
	case n > 50:
		return "very friendly"
	case n > 20:
		return "friendly"
	case n > -20:
		return "neutral"
	case n > -50:
		return "unfriendly"
	default:
		return "hostile"
	}
}
