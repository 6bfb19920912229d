// Package dice implements the d20 resolution rules used by the tavern engine:
// single and multi-die rolls, skill and attack checks, damage rolls, and the
// bounded roll history kept for audit.
package dice

import "fmt"

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollDie returns a uniformly distributed value in [1, sides].
//
// Precondition: sides >= 1; src must be non-nil.
// Postcondition: 1 <= result <= sides.
func RollDie(src Source, sides int) int {
	return src.Intn(sides) + 1
}

// DiceRoll is the result of rolling several identical dice.
type DiceRoll struct {
	Total int   `json:"total"`
	Rolls []int `json:"rolls"`
}

// RollDice rolls count dice of the given sides and sums them.
//
// Precondition: count >= 0; sides >= 1.
// Postcondition: len(result.Rolls) == count, in roll order, and
// result.Total == sum(result.Rolls).
func RollDice(src Source, count, sides int) DiceRoll {
	out := DiceRoll{Rolls: make([]int, 0, count)}
	for i := 0; i < count; i++ {
		v := RollDie(src, sides)
		out.Rolls = append(out.Rolls, v)
		out.Total += v
	}
	return out
}

// Check is the outcome of a d20 roll against a difficulty.
//
// Invariant: Total == Roll + Modifier; Success == (Total >= Difficulty);
// Margin == |Total - Difficulty|.
type Check struct {
	Roll       int  `json:"roll"`
	Modifier   int  `json:"modifier"`
	Total      int  `json:"total"`
	Difficulty int  `json:"difficulty"`
	Success    bool `json:"success"`
	Margin     int  `json:"margin"`
}

// Natural20 reports whether the d20 came up 20.
func (c Check) Natural20() bool {
	return c.Roll == 20
}

// Hit reports whether the check lands as an attack. A natural 20 always hits.
func (c Check) Hit() bool {
	return c.Success || c.Natural20()
}

// String renders the check in the form "1d20+3 → [12] = 15 vs 15 (success)".
func (c Check) String() string {
	verdict := "failure"
	if c.Success {
		verdict = "success"
	}
	return fmt.Sprintf("1d20%+d → [%d] = %d vs %d (%s)", c.Modifier, c.Roll, c.Total, c.Difficulty, verdict)
}

// SkillCheck rolls 1d20, adds modifier and compares against difficulty.
//
// Postcondition: the returned Check satisfies its invariant.
func SkillCheck(src Source, modifier, difficulty int) Check {
	roll := RollDie(src, 20)
	total := roll + modifier
	margin := total - difficulty
	if margin < 0 {
		margin = -margin
	}
	return Check{
		Roll:       roll,
		Modifier:   modifier,
		Total:      total,
		Difficulty: difficulty,
		Success:    total >= difficulty,
		Margin:     margin,
	}
}

// AttackRoll is a SkillCheck framed as an attack against an armor class.
// Use Check.Hit to apply the natural-20 rule.
func AttackRoll(src Source, attackModifier, armorClass int) Check {
	return SkillCheck(src, attackModifier, armorClass)
}
