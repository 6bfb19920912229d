package combat

import "github.com/cory-johannsen/tavern/internal/game/dice"

// Attack parameterizes one attack roll and its damage.
type Attack struct {
	// Label names the attack in the roll history.
	Label string
	// Modifier is added to the d20.
	Modifier int
	// ArmorClass is the target's AC.
	ArmorClass int
	// Formula is the NdM[+K] damage formula; its flat K is added to
	// DamageModifier.
	Formula string
	// DamageModifier is the ability bonus added to damage.
	DamageModifier int
}

// AttackResult is the outcome of ResolveAttack.
type AttackResult struct {
	Check    dice.Check
	Hit      bool
	Critical bool
	Damage   dice.Damage
	// Dealt is the non-negative damage to subtract from the target.
	Dealt int
}

// ResolveAttack is the single attack resolution used by both the player and
// the enemies. A natural 20 always hits and doubles the damage dice; the
// modifier is applied once.
//
// Postcondition: Dealt >= 0; Dealt == 0 when !Hit.
func (e *Engine) ResolveAttack(h *dice.History, a Attack) AttackResult {
	check := e.roller.Attack(h, a.Label, a.Modifier, a.ArmorClass)
	res := AttackResult{Check: check, Hit: check.Hit(), Critical: check.Natural20()}
	if !res.Hit {
		return res
	}
	mod := a.DamageModifier
	if f, ok := dice.ParseFormula(a.Formula); ok {
		mod += f.Modifier
	}
	res.Damage = e.roller.Damage(h, a.Label, a.Formula, mod, res.Critical)
	if res.Damage.Total > 0 {
		res.Dealt = res.Damage.Total
	}
	return res
}
