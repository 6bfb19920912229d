package session

import (
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
)

// StartCombat begins a fight against count instances of templateID.
//
// Postcondition: returns (false, err wrapping combat.ErrUnknownEnemy) for an
// unknown template and (false, combat.ErrCombatActive) while a session
// exists; neither mutates the state.
func (s *State) StartCombat(templateID string, count int) (bool, error) {
	if s.Combat != nil {
		return false, combat.ErrCombatActive
	}
	sess, err := s.deps.Combat.Start(templateID, count)
	if err != nil {
		return false, err
	}
	s.Combat = sess
	return true, nil
}

// CombatEnd describes what EndCombat granted.
type CombatEnd struct {
	Victory  bool
	Reward   combat.Reward
	LevelUps []character.LevelUp
}

// EndCombat clears the active session. On victory the summed enemy rewards
// are granted, running the leveling loop.
func (s *State) EndCombat(victory bool) CombatEnd {
	out := CombatEnd{Victory: victory}
	if s.Combat == nil {
		return out
	}
	if victory {
		out.Reward = s.deps.Combat.Rewards(s.Combat)
		s.Character.AddGold(out.Reward.Gold)
		out.LevelUps = s.Character.GrantExperience(out.Reward.Experience)
	}
	s.Combat = nil
	return out
}

// Attack runs one full combat round against the enemy at target and ends
// combat when it resolves.
func (s *State) Attack(target int) (combat.TurnResult, *CombatEnd, error) {
	if s.Combat == nil {
		return combat.TurnResult{}, nil, combat.ErrNoTarget
	}
	res, err := s.deps.Combat.ProcessTurn(s.Combat, s.History, s.Character, s.Weapon(), target)
	if err != nil {
		return res, nil, err
	}
	if res.Outcome == combat.Ongoing {
		return res, nil, nil
	}
	end := s.EndCombat(res.Outcome == combat.Victory)
	return res, &end, nil
}
