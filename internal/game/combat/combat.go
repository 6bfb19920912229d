// Package combat implements the turn-based combat engine: one player against
// a session of enemy instances, resolved with the d20 rules in package dice.
package combat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/npc"
)

var (
	// ErrUnknownEnemy is returned when starting combat with an unregistered template.
	ErrUnknownEnemy = errors.New("unknown enemy")
	// ErrCombatActive is returned when starting combat while a session exists.
	ErrCombatActive = errors.New("combat already active")
	// ErrNotPlayerTurn is returned when the player acts outside the player phase.
	ErrNotPlayerTurn = errors.New("not the player's turn")
	// ErrNotEnemyTurn is returned when an enemy acts during the player phase.
	ErrNotEnemyTurn = errors.New("not the enemies' turn")
	// ErrNoTarget is returned when the chosen target does not exist or is defeated.
	ErrNoTarget = errors.New("no valid target")
)

// Outcome is the state of a session after a turn resolves.
type Outcome int

const (
	Ongoing Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// LogEntry records one resolved attack.
type LogEntry struct {
	Round    int        `json:"round"`
	Attacker string     `json:"attacker"`
	Target   string     `json:"target"`
	Check    dice.Check `json:"check"`
	Hit      bool       `json:"hit"`
	Critical bool       `json:"critical,omitempty"`
	Dice     []int      `json:"dice,omitempty"`
	Damage   int        `json:"damage"`
	// TargetHP is the target's health after the attack.
	TargetHP int  `json:"target_hp"`
	Defeated bool `json:"defeated,omitempty"`
}

// String renders the entry as a single combat log line.
func (l LogEntry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s attacks %s: %s", l.Attacker, l.Target, l.Check)
	switch {
	case !l.Hit:
		b.WriteString(", miss")
	case l.Critical:
		fmt.Fprintf(&b, ", critical hit for %d damage %v", l.Damage, l.Dice)
	default:
		fmt.Fprintf(&b, ", hit for %d damage %v", l.Damage, l.Dice)
	}
	if l.Defeated {
		fmt.Fprintf(&b, "; %s is defeated", l.Target)
	}
	return b.String()
}

// Session is one combat encounter.
//
// Invariant: Round >= 1; Enemies keeps its start order for the whole session;
// Log is append-only.
type Session struct {
	Enemies    []*npc.Instance `json:"enemies"`
	Round      int             `json:"round"`
	PlayerTurn bool            `json:"player_turn"`
	Log        []LogEntry      `json:"log"`
}

// Enemy returns the enemy at index if it exists and is still standing.
func (s *Session) Enemy(index int) (*npc.Instance, error) {
	if index < 0 || index >= len(s.Enemies) {
		return nil, fmt.Errorf("target %d: %w", index, ErrNoTarget)
	}
	e := s.Enemies[index]
	if e.Defeated() {
		return nil, fmt.Errorf("%s is already defeated: %w", e.Name, ErrNoTarget)
	}
	return e, nil
}

// AllDefeated reports whether every enemy is at 0 health.
func (s *Session) AllDefeated() bool {
	for _, e := range s.Enemies {
		if !e.Defeated() {
			return false
		}
	}
	return true
}

// Living returns the indexes of enemies still standing, in start order.
func (s *Session) Living() []int {
	var out []int
	for i, e := range s.Enemies {
		if !e.Defeated() {
			out = append(out, i)
		}
	}
	return out
}

// FindTarget returns the index of the first living enemy whose name or ID
// occurs in text, or the first living enemy when none is named. It returns
// -1 when every enemy is defeated.
func (s *Session) FindTarget(text string) int {
	text = strings.ToLower(text)
	first := -1
	for i, e := range s.Enemies {
		if e.Defeated() {
			continue
		}
		if first < 0 {
			first = i
		}
		if strings.Contains(text, strings.ToLower(e.Name)) || strings.Contains(text, strings.ToLower(e.ID)) {
			return i
		}
	}
	return first
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Round: s.Round, PlayerTurn: s.PlayerTurn, Log: append([]LogEntry(nil), s.Log...)}
	for _, e := range s.Enemies {
		cp := *e
		out.Enemies = append(out.Enemies, &cp)
	}
	return out
}
