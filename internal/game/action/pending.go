package action

import (
	"fmt"

	"github.com/cory-johannsen/tavern/internal/game/character"
)

// RollKind distinguishes what a PendingRoll resolves.
type RollKind string

// Pending roll kinds.
const (
	KindSkillCheck RollKind = "skill_check"
	KindAttack     RollKind = "attack"
)

// PendingRoll is a check waiting for the player to roll.
type PendingRoll struct {
	Kind       RollKind
	Modifier   int
	Difficulty int
	// Skill is set for skill checks.
	Skill character.Skill
	// TargetIndex and TargetName are set for attacks.
	TargetIndex int
	TargetName  string
	// Request is the player input that asked for the roll.
	Request string
}

// Prompt tells the player what the roll is for and how to make it.
func (p PendingRoll) Prompt() string {
	switch p.Kind {
	case KindAttack:
		return fmt.Sprintf("You ready an attack on %s (AC %d). Type 'roll' to roll 1d20%+d.",
			p.TargetName, p.Difficulty, p.Modifier)
	default:
		return fmt.Sprintf("This requires a %s check of difficulty %d. Type 'roll' to roll 1d20%+d.",
			titleCase(string(p.Skill)), p.Difficulty, p.Modifier)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
