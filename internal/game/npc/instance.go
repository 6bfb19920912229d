package npc

import "fmt"

// Instance is one enemy engaged in a combat session. It carries its own
// mutable health; the template it was cloned from is never modified.
type Instance struct {
	ID          string `json:"id"`
	TemplateID  string `json:"template_id"`
	Name        string `json:"name"`
	Level       int    `json:"level"`
	CurrentHP   int    `json:"current_hp"`
	MaxHP       int    `json:"max_hp"`
	AC          int    `json:"ac"`
	AttackBonus int    `json:"attack_bonus"`
	Damage      string `json:"damage"`
}

// InstanceID returns the deterministic id of the index-th clone of templateID.
func InstanceID(templateID string, index int) string {
	return fmt.Sprintf("%s_%d", templateID, index)
}

// NewInstance clones tmpl at full health as the index-th enemy of an encounter.
//
// Precondition: tmpl must be non-nil.
// Postcondition: CurrentHP == MaxHP == tmpl.MaxHP; ID == InstanceID(tmpl.ID, index).
func NewInstance(tmpl *Template, index int) *Instance {
	return &Instance{
		ID:          InstanceID(tmpl.ID, index),
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		Level:       tmpl.Level,
		CurrentHP:   tmpl.MaxHP,
		MaxHP:       tmpl.MaxHP,
		AC:          tmpl.AC,
		AttackBonus: tmpl.AttackBonus,
		Damage:      tmpl.Damage,
	}
}

// ApplyDamage subtracts n from CurrentHP, clamped at 0, and returns the
// damage actually dealt. Non-positive n is a no-op.
func (i *Instance) ApplyDamage(n int) int {
	if n <= 0 {
		return 0
	}
	if n > i.CurrentHP {
		n = i.CurrentHP
	}
	i.CurrentHP -= n
	return n
}

// Defeated reports whether the instance has been reduced to 0 health.
func (i *Instance) Defeated() bool {
	return i.CurrentHP <= 0
}
