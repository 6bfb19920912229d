package scripting

import (
	lua "github.com/yuin/gopher-lua"
)

// RulesSet is the script set holding the difficulty and random event hooks.
const RulesSet = "rules"

const (
	minDifficulty = 8
	maxDifficulty = 20
)

// Rules exposes the content/scripts hooks as typed calls.
type Rules struct {
	mgr *Manager
}

// NewRules wraps mgr, which must have RulesSet loaded for the hooks to fire.
func NewRules(mgr *Manager) *Rules {
	return &Rules{mgr: mgr}
}

// Difficulty calls difficulty(skill, level, location).
//
// Postcondition: ok is false when the hook is missing, errors or returns a
// non-number; otherwise dc is clamped to [8, 20].
func (r *Rules) Difficulty(skill string, level int, location string) (dc int, ok bool) {
	ret, _ := r.mgr.CallHook(RulesSet, "difficulty", lua.LString(skill), lua.LNumber(level), lua.LString(location))
	n, isNum := ret.(lua.LNumber)
	if !isNum {
		return 0, false
	}
	dc = int(n)
	if dc < minDifficulty {
		dc = minDifficulty
	}
	if dc > maxDifficulty {
		dc = maxDifficulty
	}
	return dc, true
}

// RandomEvent calls random_event(location); empty when none applies.
func (r *Rules) RandomEvent(location string) string {
	ret, _ := r.mgr.CallHook(RulesSet, "random_event", lua.LString(location))
	if s, ok := ret.(lua.LString); ok {
		return string(s)
	}
	return ""
}
