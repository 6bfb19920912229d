package combat

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/npc"
)

// Engine resolves combat for any number of sessions. It holds no session
// state of its own and is safe for concurrent use.
type Engine struct {
	roller    *dice.Roller
	templates *npc.Registry
	logger    *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: roller, templates and logger must be non-nil.
func NewEngine(roller *dice.Roller, templates *npc.Registry, logger *zap.Logger) *Engine {
	if roller == nil || templates == nil || logger == nil {
		panic("combat.NewEngine: roller, templates and logger must not be nil")
	}
	return &Engine{roller: roller, templates: templates, logger: logger}
}

// Templates returns the enemy registry.
func (e *Engine) Templates() *npc.Registry {
	return e.templates
}

// Start clones count instances of templateID at full health into a new
// session in the player phase of round 1. A count below 1 is treated as 1.
//
// Postcondition: Returns ErrUnknownEnemy if templateID is not registered.
func (e *Engine) Start(templateID string, count int) (*Session, error) {
	tmpl, ok := e.templates.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("starting combat with %q: %w", templateID, ErrUnknownEnemy)
	}
	if count < 1 {
		count = 1
	}
	s := &Session{Round: 1, PlayerTurn: true}
	for i := 0; i < count; i++ {
		s.Enemies = append(s.Enemies, npc.NewInstance(tmpl, i))
	}
	e.logger.Info("combat started", zap.String("enemy", templateID), zap.Int("count", count))
	return s, nil
}

// MatchEnemy returns the template whose name or ID occurs in text. When
// several match, the longest match wins so "bandit leader" picks the leader
// over the plain bandit.
func (e *Engine) MatchEnemy(text string) (*npc.Template, bool) {
	text = strings.ToLower(text)
	var best *npc.Template
	bestLen := 0
	for _, t := range e.templates.All() {
		for _, key := range []string{strings.ToLower(t.Name), strings.ToLower(t.ID), strings.ReplaceAll(t.ID, "_", " ")} {
			if len(key) > bestLen && strings.Contains(text, key) {
				best, bestLen = t, len(key)
			}
		}
	}
	return best, best != nil
}

// Reward is the total experience and gold granted for a victory.
type Reward struct {
	Experience int `json:"exp"`
	Gold       int `json:"gold"`
}

// Rewards sums the template rewards of every enemy in s, exactly once per
// instance. Instances whose template is no longer registered contribute nothing.
func (e *Engine) Rewards(s *Session) Reward {
	var r Reward
	for _, inst := range s.Enemies {
		tmpl, ok := e.templates.Template(inst.TemplateID)
		if !ok {
			e.logger.Warn("reward for unknown enemy template", zap.String("template", inst.TemplateID))
			continue
		}
		r.Experience += tmpl.ExpReward
		r.Gold += tmpl.GoldReward
	}
	return r
}

// EnemyNames lists the distinct enemy names in s, sorted.
func EnemyNames(s *Session) []string {
	seen := map[string]bool{}
	var out []string
	for _, inst := range s.Enemies {
		if !seen[inst.Name] {
			seen[inst.Name] = true
			out = append(out, inst.Name)
		}
	}
	sort.Strings(out)
	return out
}
