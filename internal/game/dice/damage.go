package dice

import (
	"fmt"
	"regexp"
	"strconv"
)

var formulaPattern = regexp.MustCompile(`(\d+)d(\d+)([+-]\d+)?`)

// Formula is a parsed "NdM[+K]" damage formula.
type Formula struct {
	Count    int
	Sides    int
	Modifier int
}

// ParseFormula extracts dice count, sides and the optional flat modifier
// from a damage formula such as "2d6+3".
//
// Postcondition: ok is false when no "NdM" group with Count >= 1 and
// Sides >= 1 can be found.
func ParseFormula(formula string) (Formula, bool) {
	m := formulaPattern.FindStringSubmatch(formula)
	if m == nil {
		return Formula{}, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return Formula{}, false
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 1 {
		return Formula{}, false
	}
	f := Formula{Count: count, Sides: sides}
	if m[3] != "" {
		mod, err := strconv.Atoi(m[3])
		if err != nil {
			return Formula{}, false
		}
		f.Modifier = mod
	}
	return f, true
}

// Dice returns the dice portion of the formula without its modifier, e.g. "1d8".
func (f Formula) Dice() string {
	return fmt.Sprintf("%dd%d", f.Count, f.Sides)
}

// Damage is the result of a damage roll.
//
// Invariant: Total == sum(Rolls) + Modifier.
type Damage struct {
	Formula  string `json:"formula"`
	Rolls    []int  `json:"rolls"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
	Critical bool   `json:"critical,omitempty"`
}

// String renders the damage as "1d8+2 → [5] = 7".
func (d Damage) String() string {
	crit := ""
	if d.Critical {
		crit = " critical"
	}
	return fmt.Sprintf("%s%+d → %v = %d%s", d.Formula, d.Modifier, d.Rolls, d.Total, crit)
}

// DamageRoll rolls the dice of formula and adds modifier. Any flat modifier
// embedded in the formula is ignored here; callers extract it with
// ParseFormula and pass it as modifier.
//
// A malformed formula yields zero dice and zero damage. The total may be
// negative for a large negative modifier; callers clamp health.
func DamageRoll(src Source, formula string, modifier int) Damage {
	f, ok := ParseFormula(formula)
	if !ok {
		return Damage{Formula: formula, Rolls: []int{}}
	}
	r := RollDice(src, f.Count, f.Sides)
	return Damage{
		Formula:  formula,
		Rolls:    r.Rolls,
		Modifier: modifier,
		Total:    r.Total + modifier,
	}
}

// CriticalDamage rolls the dice of formula twice and applies modifier once.
func CriticalDamage(src Source, formula string, modifier int) Damage {
	d := DamageRoll(src, formula, modifier)
	if len(d.Rolls) == 0 {
		return d
	}
	extra := DamageRoll(src, formula, 0)
	d.Rolls = append(d.Rolls, extra.Rolls...)
	d.Total += extra.Total
	d.Critical = true
	return d
}
