package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/dice"
)

// PlayerAttack resolves the player's attack on the enemy at target using the
// STR modifier and weapon's damage formula. It does not advance the phase.
//
// Precondition: s.PlayerTurn; weapon is a NdM[+K] formula.
// Postcondition: the target's health is reduced and clamped at 0; one entry
// is appended to s.Log.
func (e *Engine) PlayerAttack(s *Session, h *dice.History, player *character.Character, weapon string, target int) (LogEntry, error) {
	if !s.PlayerTurn {
		return LogEntry{}, ErrNotPlayerTurn
	}
	enemy, err := s.Enemy(target)
	if err != nil {
		return LogEntry{}, err
	}
	mod := player.AttackModifier()
	res := e.ResolveAttack(h, Attack{
		Label:          fmt.Sprintf("%s attacks %s", player.Name, enemy.Name),
		Modifier:       mod,
		ArmorClass:     enemy.AC,
		Formula:        weapon,
		DamageModifier: mod,
	})
	enemy.ApplyDamage(res.Dealt)
	entry := e.logEntry(s, player.Name, enemy.Name, res, enemy.CurrentHP, enemy.Defeated())
	return entry, nil
}

// EnemyAttack resolves the attack of the enemy at index against the player's
// armor class. It returns nil when that enemy is already defeated.
//
// Precondition: !s.PlayerTurn.
// Postcondition: player health is reduced and clamped at 0.
func (e *Engine) EnemyAttack(s *Session, h *dice.History, player *character.Character, index int) (*LogEntry, error) {
	if s.PlayerTurn {
		return nil, ErrNotEnemyTurn
	}
	if index < 0 || index >= len(s.Enemies) {
		return nil, fmt.Errorf("enemy %d: %w", index, ErrNoTarget)
	}
	enemy := s.Enemies[index]
	if enemy.Defeated() {
		return nil, nil
	}
	res := e.ResolveAttack(h, Attack{
		Label:      fmt.Sprintf("%s attacks %s", enemy.Name, player.Name),
		Modifier:   enemy.AttackBonus,
		ArmorClass: player.ArmorClass(),
		Formula:    enemy.Damage,
	})
	player.ApplyDamage(res.Dealt)
	entry := e.logEntry(s, enemy.Name, player.Name, res, player.Health, player.Dead())
	return &entry, nil
}

// EnemyPhase lets every living enemy attack once in start order.
//
// Postcondition: s.PlayerTurn is false.
func (e *Engine) EnemyPhase(s *Session, h *dice.History, player *character.Character) []LogEntry {
	s.PlayerTurn = false
	var out []LogEntry
	for i := range s.Enemies {
		entry, err := e.EnemyAttack(s, h, player, i)
		if err != nil || entry == nil {
			continue
		}
		out = append(out, *entry)
	}
	return out
}

// TurnResult summarizes one full round.
type TurnResult struct {
	Player  LogEntry
	Enemies []LogEntry
	Outcome Outcome
}

// ProcessTurn runs one round: the player's attack, the victory check, the
// enemy phase, the round bookkeeping, and finally the defeat check.
//
// Postcondition: on Victory no enemy has acted; otherwise s.Round has been
// incremented and s.PlayerTurn is true.
func (e *Engine) ProcessTurn(s *Session, h *dice.History, player *character.Character, weapon string, target int) (TurnResult, error) {
	entry, err := e.PlayerAttack(s, h, player, weapon, target)
	if err != nil {
		return TurnResult{}, err
	}
	res := TurnResult{Player: entry}
	if s.AllDefeated() {
		res.Outcome = Victory
		e.logger.Info("combat won", zap.Int("round", s.Round))
		return res, nil
	}

	res.Enemies = e.EnemyPhase(s, h, player)
	s.Round++
	s.PlayerTurn = true

	if player.Dead() {
		res.Outcome = Defeat
		e.logger.Info("combat lost", zap.Int("round", s.Round))
	}
	return res, nil
}

func (e *Engine) logEntry(s *Session, attacker, target string, res AttackResult, hp int, defeated bool) LogEntry {
	entry := LogEntry{
		Round:    s.Round,
		Attacker: attacker,
		Target:   target,
		Check:    res.Check,
		Hit:      res.Hit,
		Critical: res.Critical && res.Hit,
		Dice:     res.Damage.Rolls,
		Damage:   res.Dealt,
		TargetHP: hp,
		Defeated: defeated,
	}
	s.Log = append(s.Log, entry)
	e.logger.Debug("combat attack",
		zap.String("attacker", attacker),
		zap.String("target", target),
		zap.Bool("hit", entry.Hit),
		zap.Int("damage", entry.Damage),
		zap.Int("target_hp", hp),
	)
	return entry
}
