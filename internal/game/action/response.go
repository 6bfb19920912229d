package action

import (
	"strings"

	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/session"
)

// Response is everything one player action produced, in display order:
// mechanical Lines first, then Narration, then Event.
type Response struct {
	// Intent names the table entry that handled the input.
	Intent string
	Lines  []string
	// Narration is the prose, or an apology when NarrationErr is set.
	Narration    string
	NarrationErr error
	// Event is an optional random event appended after the narration.
	Event string

	Pending  *PendingRoll
	Check    *dice.Check
	Turn     *combat.TurnResult
	End      *session.CombatEnd
	Rested   int
	Accepted []*quest.Quest
}

// Text joins the response for display.
func (r Response) Text() string {
	parts := append([]string(nil), r.Lines...)
	if r.Narration != "" {
		parts = append(parts, r.Narration)
	}
	if r.Event != "" {
		parts = append(parts, r.Event)
	}
	return strings.Join(parts, "\n\n")
}

func (r *Response) line(s string) {
	r.Lines = append(r.Lines, s)
}
