package character

import (
	"errors"
	"strings"

	"github.com/cory-johannsen/tavern/internal/game/ruleset"
)

// New creates a level 1 character from a class template. The base ability
// array is copied verbatim and MaxHealth = HitDie + CON modifier, clamped to
// at least 1.
//
// Precondition: name must be non-empty after trimming; class must be non-nil.
// Postcondition: Health == MaxHealth >= 1; Level == 1; Experience == 0.
func New(name string, class *ruleset.Class) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}

	c := &Character{
		Name:             name,
		Class:            class.ID,
		ClassName:        class.Name,
		Level:            1,
		ExperienceToNext: StartingExperienceToNext,
		Gold:             class.StartingGold,
		Abilities: AbilityScores{
			Strength:     class.Abilities.Strength,
			Dexterity:    class.Abilities.Dexterity,
			Constitution: class.Abilities.Constitution,
			Intelligence: class.Abilities.Intelligence,
			Wisdom:       class.Abilities.Wisdom,
			Charisma:     class.Abilities.Charisma,
		},
	}
	c.MaxHealth = class.HitDie + c.Modifier(Constitution)
	if c.MaxHealth < 1 {
		c.MaxHealth = 1
	}
	c.Health = c.MaxHealth
	return c, nil
}
