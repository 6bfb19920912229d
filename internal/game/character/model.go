// Package character defines the player character stat block, its derived
// skill modifiers and the leveling curve.
package character

import "errors"

// Ability names one of the six ability scores.
type Ability string

const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// Abilities lists the six abilities in sheet order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Skill names one of the nine derived skills.
type Skill string

const (
	Bartering     Skill = "bartering"
	Intimidation  Skill = "intimidation"
	Persuasion    Skill = "persuasion"
	Athletics     Skill = "athletics"
	Acrobatics    Skill = "acrobatics"
	Stealth       Skill = "stealth"
	Investigation Skill = "investigation"
	Perception    Skill = "perception"
	Survival      Skill = "survival"
)

// Skills lists the nine skills in sheet order.
var Skills = []Skill{
	Bartering, Intimidation, Persuasion,
	Athletics,
	Acrobatics, Stealth,
	Investigation,
	Perception, Survival,
}

// SkillAbility maps each skill to the ability it derives from.
var SkillAbility = map[Skill]Ability{
	Bartering:     Charisma,
	Intimidation:  Charisma,
	Persuasion:    Charisma,
	Athletics:     Strength,
	Acrobatics:    Dexterity,
	Stealth:       Dexterity,
	Investigation: Intelligence,
	Perception:    Wisdom,
	Survival:      Wisdom,
}

// AbilityScores holds the six ability score values.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Score returns the raw score for ability; unknown abilities score 10.
func (a AbilityScores) Score(ability Ability) int {
	switch ability {
	case Strength:
		return a.Strength
	case Dexterity:
		return a.Dexterity
	case Constitution:
		return a.Constitution
	case Intelligence:
		return a.Intelligence
	case Wisdom:
		return a.Wisdom
	case Charisma:
		return a.Charisma
	}
	return 10
}

// AbilityModifier returns floor((score-10)/2).
//
// Postcondition: AbilityModifier(8) == -1, AbilityModifier(10) == 0,
// AbilityModifier(16) == 3.
func AbilityModifier(score int) int {
	d := score - 10
	if d < 0 {
		return -((-d + 1) / 2)
	}
	return d / 2
}

// ErrInsufficientGold is returned when a purchase exceeds the character's gold.
var ErrInsufficientGold = errors.New("insufficient gold")

// Character is the player's stat block.
//
// Invariant: Level >= 1; Experience >= 0; 0 <= Health <= MaxHealth; Gold >= 0.
// Derived skills are never stored; Bonuses holds only persistent additions.
type Character struct {
	Name             string        `json:"name"`
	Class            string        `json:"class"`
	ClassName        string        `json:"class_name"`
	Level            int           `json:"level"`
	Experience       int           `json:"experience"`
	ExperienceToNext int           `json:"experience_to_next"`
	Health           int           `json:"health"`
	MaxHealth        int           `json:"max_health"`
	Gold             int           `json:"gold"`
	Abilities        AbilityScores `json:"abilities"`
	Bonuses          map[Skill]int `json:"bonuses,omitempty"`
}

// Modifier returns the ability modifier for ability.
func (c *Character) Modifier(ability Ability) int {
	return AbilityModifier(c.Abilities.Score(ability))
}

// DerivedSkill returns the skill value computed from the current abilities.
func (c *Character) DerivedSkill(s Skill) int {
	ability, ok := SkillAbility[s]
	if !ok {
		return 0
	}
	return c.Modifier(ability)
}

// Skill returns the effective skill: the derived value plus any persistent bonus.
func (c *Character) Skill(s Skill) int {
	return c.DerivedSkill(s) + c.Bonuses[s]
}

// SkillSheet returns every effective skill value.
func (c *Character) SkillSheet() map[Skill]int {
	out := make(map[Skill]int, len(Skills))
	for _, s := range Skills {
		out[s] = c.Skill(s)
	}
	return out
}

// AddBonus permanently adds delta to skill s.
func (c *Character) AddBonus(s Skill, delta int) {
	if c.Bonuses == nil {
		c.Bonuses = make(map[Skill]int)
	}
	c.Bonuses[s] += delta
}

// ArmorClass is 10 plus the dexterity modifier.
func (c *Character) ArmorClass() int {
	return 10 + c.Modifier(Dexterity)
}

// AttackModifier is the melee attack bonus, the strength modifier.
func (c *Character) AttackModifier() int {
	return c.Modifier(Strength)
}
