package action

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/narration"
)

// SkillVocabulary is the order in which skills are searched for in input.
var SkillVocabulary = []character.Skill{
	character.Intimidation,
	character.Persuasion,
	character.Athletics,
	character.Stealth,
	character.Investigation,
	character.Perception,
	character.Survival,
}

var (
	combatVerbs      = []string{"attack", "hit", "strike"}
	combatStartVerbs = []string{"attack", "fight", "battle"}
	travelPhrases    = []string{"go to", "travel to", "visit", "head to"}
	restWords        = []string{"rest", "sleep"}
	acceptPhrases    = []string{"accept quest", "take quest"}
)

// plan is what an intent decided. Mutations have already happened; the
// resolver narrates afterwards when narrate is set.
type plan struct {
	narrate   bool
	request   string
	addressee narration.Addressee
}

// intent is one row of the dispatch table.
type intent struct {
	name   string
	match  func(r *Resolver, s *session.State, lower string) bool
	handle func(ctx context.Context, r *Resolver, s *session.State, input string, resp *Response) (plan, error)
}

// intents is checked in order; the first match handles the input.
var intents = []intent{
	{name: "combat", match: matchCombat, handle: handleCombat},
	{name: "combat-start", match: matchCombatStart, handle: handleCombatStart},
	{name: "skill-check", match: matchSkill, handle: handleSkill},
	{name: "travel", match: matchTravel, handle: handleTravel},
	{name: "conversation", match: func(*Resolver, *session.State, string) bool { return true }, handle: handleConversation},
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// containsWord reports whether any of words appears as a whole word, so
// "forest" does not read as "rest".
func containsWord(lower string, words []string) bool {
	for _, f := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func matchCombat(_ *Resolver, s *session.State, _ string) bool {
	return s.Combat != nil
}

func handleCombat(_ context.Context, _ *Resolver, s *session.State, input string, resp *Response) (plan, error) {
	if !containsAny(strings.ToLower(input), combatVerbs) {
		return plan{narrate: true, request: input, addressee: narration.Narrator}, nil
	}
	idx := s.Combat.FindTarget(input)
	enemy, err := s.Combat.Enemy(idx)
	if err != nil {
		return plan{}, err
	}
	p := &PendingRoll{
		Kind:        KindAttack,
		Modifier:    s.Character.AttackModifier(),
		Difficulty:  enemy.AC,
		TargetIndex: idx,
		TargetName:  enemy.Name,
		Request:     input,
	}
	resp.Pending = p
	resp.line(p.Prompt())
	return plan{}, nil
}

func matchCombatStart(r *Resolver, s *session.State, lower string) bool {
	if !containsAny(lower, combatStartVerbs) {
		return false
	}
	_, ok := s.Deps().Combat.MatchEnemy(lower)
	return ok
}

func handleCombatStart(_ context.Context, _ *Resolver, s *session.State, input string, resp *Response) (plan, error) {
	tmpl, _ := s.Deps().Combat.MatchEnemy(input)
	if _, err := s.StartCombat(tmpl.ID, 1); err != nil {
		return plan{}, err
	}
	resp.line(fmt.Sprintf("Combat started! You face %s!", strings.Join(combat.EnemyNames(s.Combat), " and ")))
	return plan{narrate: true, request: input, addressee: narration.Narrator}, nil
}

func findSkill(lower string) (character.Skill, bool) {
	for _, sk := range SkillVocabulary {
		if strings.Contains(lower, string(sk)) {
			return sk, true
		}
	}
	return "", false
}

func matchSkill(_ *Resolver, _ *session.State, lower string) bool {
	_, ok := findSkill(lower)
	return ok
}

func handleSkill(ctx context.Context, r *Resolver, s *session.State, input string, resp *Response) (plan, error) {
	skill, _ := findSkill(strings.ToLower(input))
	dc := r.difficulty(ctx, s, skill)
	p := &PendingRoll{
		Kind:       KindSkillCheck,
		Skill:      skill,
		Modifier:   s.Character.Skill(skill),
		Difficulty: dc,
		Request:    input,
	}
	resp.Pending = p
	resp.line(p.Prompt())
	return plan{}, nil
}

func matchTravel(_ *Resolver, s *session.State, lower string) bool {
	if !containsAny(lower, travelPhrases) {
		return false
	}
	_, ok := s.Deps().World.FindLocation(lower)
	return ok
}

func handleTravel(_ context.Context, _ *Resolver, s *session.State, input string, resp *Response) (plan, error) {
	loc, _ := s.Deps().World.FindLocation(input)
	if _, err := s.Travel(loc.ID); err != nil {
		return plan{}, err
	}
	resp.line(fmt.Sprintf("You travel to %s.", loc.Name))
	return plan{narrate: true, request: input, addressee: narration.Narrator}, nil
}

func handleConversation(_ context.Context, _ *Resolver, s *session.State, input string, _ *Response) (plan, error) {
	to := narration.Narrator
	if n, ok := s.Deps().World.FindNPC(input); ok {
		to = narration.Addressee(n.ID)
	}
	return plan{narrate: true, request: input, addressee: to}, nil
}
