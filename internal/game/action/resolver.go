// Package action turns free-text player input into game operations. Input
// is matched against an ordered intent table; checks are stored as a
// PendingRoll until the player rolls; narration runs after every numeric
// change has been applied.
package action

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/narration"
)

// ErrBusy is returned when an action arrives while another is resolving.
var ErrBusy = errors.New("action: another action is in progress")

// DefaultDifficulty is used whenever the gateway cannot propose one.
const DefaultDifficulty = 12

// Options tunes a Resolver.
type Options struct {
	// NarrationTimeout bounds each gateway call; 0 uses 30s.
	NarrationTimeout time.Duration
	// RandomEventChance is the probability in [0, 1] of a random event per action.
	RandomEventChance float64
}

// Resolver dispatches one player's actions. It owns that player's pending
// roll and serializes their actions.
type Resolver struct {
	gateway narration.Gateway
	opts    Options
	logger  *zap.Logger

	busy    sync.Mutex
	pending *PendingRoll
}

// NewResolver creates a Resolver.
//
// Precondition: gateway and logger must be non-nil.
func NewResolver(gateway narration.Gateway, opts Options, logger *zap.Logger) *Resolver {
	if gateway == nil {
		panic("action.NewResolver: gateway must not be nil")
	}
	if logger == nil {
		panic("action.NewResolver: logger must not be nil")
	}
	if opts.NarrationTimeout <= 0 {
		opts.NarrationTimeout = 30 * time.Second
	}
	return &Resolver{gateway: gateway, opts: opts, logger: logger}
}

// Pending returns a copy of the stored roll, if any. It reports false while
// an action is resolving.
func (r *Resolver) Pending() (PendingRoll, bool) {
	if !r.busy.TryLock() {
		return PendingRoll{}, false
	}
	defer r.busy.Unlock()
	if r.pending == nil {
		return PendingRoll{}, false
	}
	return *r.pending, true
}

// Clear drops any stored roll, as after loading a different game.
func (r *Resolver) Clear() {
	r.busy.Lock()
	defer r.busy.Unlock()
	r.pending = nil
}

// Handle resolves free-text input against s.
//
// Postcondition: returns ErrBusy without touching s when another call is in
// flight. A narration failure never fails Handle; it replaces the prose.
func (r *Resolver) Handle(ctx context.Context, s *session.State, input string) (Response, error) {
	if !r.busy.TryLock() {
		return Response{}, ErrBusy
	}
	defer r.busy.Unlock()

	input = strings.TrimSpace(input)
	if input == "" {
		return Response{Lines: []string{"You stand quietly. Say or do something."}}, nil
	}
	lower := strings.ToLower(input)

	var resp Response
	var p plan
	for _, in := range intents {
		if !in.match(r, s, lower) {
			continue
		}
		resp.Intent = in.name
		var err error
		p, err = in.handle(ctx, r, s, input, &resp)
		if err != nil {
			return resp, fmt.Errorf("%s: %w", in.name, err)
		}
		break
	}
	r.logger.Debug("intent", zap.String("intent", resp.Intent), zap.String("input", input))
	if resp.Pending != nil {
		r.pending = resp.Pending
	}

	r.postHoc(s, lower, &resp)

	if p.narrate {
		r.narrate(ctx, s, p.request, p.addressee, &resp)
	}
	r.maybeEvent(ctx, s, &resp)
	return resp, nil
}

// postHoc applies the rest and quest-acceptance triggers found in input.
func (r *Resolver) postHoc(s *session.State, lower string, resp *Response) {
	if s.Combat == nil && containsWord(lower, restWords) {
		resp.Rested = s.Rest()
		resp.line(fmt.Sprintf("You rest and recover %d health (%d/%d).", resp.Rested, s.Character.Health, s.Character.MaxHealth))
	}
	if containsAny(lower, acceptPhrases) {
		q, ok := s.Quests.FindByTitle(s.Deps().Quests, lower)
		if !ok {
			return
		}
		out, err := s.AcceptQuest(q.ID)
		if err != nil {
			r.logger.Warn("accepting quest", zap.String("quest", q.ID), zap.Error(err))
			return
		}
		switch out {
		case quest.Accepted:
			resp.Accepted = append(resp.Accepted, q)
			resp.line(fmt.Sprintf("Quest accepted: %s.", q.Title))
		case quest.AcceptAlreadyActive:
			resp.line(fmt.Sprintf("You are already on the quest %s.", q.Title))
		case quest.AcceptAlreadyCompleted:
			resp.line(fmt.Sprintf("You have already completed %s.", q.Title))
		}
	}
}

// ExecutePendingRoll rolls and resolves the stored check.
//
// Postcondition: returns ErrBusy without touching s when another call is in
// flight; with no pending roll it returns an explanatory line and no error.
func (r *Resolver) ExecutePendingRoll(ctx context.Context, s *session.State) (Response, error) {
	if !r.busy.TryLock() {
		return Response{}, ErrBusy
	}
	defer r.busy.Unlock()

	if r.pending == nil {
		return Response{Intent: "roll", Lines: []string{"There is nothing to roll for right now."}}, nil
	}
	p := *r.pending
	r.pending = nil

	resp := Response{Intent: "roll"}
	switch p.Kind {
	case KindAttack:
		return r.resolveAttack(ctx, s, p, resp)
	default:
		return r.resolveSkill(ctx, s, p, resp)
	}
}

func (r *Resolver) resolveSkill(ctx context.Context, s *session.State, p PendingRoll, resp Response) (Response, error) {
	label := fmt.Sprintf("%s check", titleCase(string(p.Skill)))
	check := s.Deps().Roller.SkillCheck(s.History, label, p.Modifier, p.Difficulty)
	resp.Check = &check
	resp.line(fmt.Sprintf("%s: %s", label, check))

	verdict := "fails"
	if check.Success {
		verdict = "succeeds"
	}
	to := narration.Narrator
	if n, ok := s.Deps().World.FindNPC(p.Request); ok {
		to = narration.Addressee(n.ID)
	}
	request := fmt.Sprintf("%s\n[The %s %s: rolled %d, total %d against difficulty %d.]",
		p.Request, label, verdict, check.Roll, check.Total, check.Difficulty)
	r.narrate(ctx, s, request, to, &resp)
	return resp, nil
}

func (r *Resolver) resolveAttack(ctx context.Context, s *session.State, p PendingRoll, resp Response) (Response, error) {
	if s.Combat == nil {
		resp.line("The fight is already over.")
		return resp, nil
	}
	target := p.TargetIndex
	if e, err := s.Combat.Enemy(target); err != nil || e.Defeated() {
		target = s.Combat.FindTarget(p.TargetName)
	}
	turn, end, err := s.Attack(target)
	if err != nil {
		return resp, fmt.Errorf("attack: %w", err)
	}
	resp.Turn = &turn
	resp.End = end
	resp.line(turn.Player.String())
	for _, e := range turn.Enemies {
		resp.line(e.String())
	}
	if end != nil {
		resp.Lines = append(resp.Lines, endLines(end)...)
	}

	r.narrate(ctx, s, fmt.Sprintf("%s\n[%s]", p.Request, strings.Join(resp.Lines, " ")), narration.Narrator, &resp)
	return resp, nil
}

func endLines(end *session.CombatEnd) []string {
	if !end.Victory {
		return []string{"You have been defeated! Rest to recover your strength."}
	}
	out := []string{fmt.Sprintf("Victory! You gain %d experience and %d gold.", end.Reward.Experience, end.Reward.Gold)}
	for _, up := range end.LevelUps {
		out = append(out, fmt.Sprintf("Level up! You are now level %d with %d max health.", up.Level, up.MaxHealth))
	}
	return out
}

func (r *Resolver) difficulty(ctx context.Context, s *session.State, skill character.Skill) int {
	cctx, cancel := context.WithTimeout(ctx, r.opts.NarrationTimeout)
	defer cancel()
	dc, err := r.gateway.ProposeDifficulty(cctx, string(skill), s.View())
	if err != nil || dc < 8 || dc > 20 {
		r.logger.Warn("difficulty proposal failed, using default",
			zap.String("skill", string(skill)), zap.Int("proposed", dc), zap.Error(err))
		return DefaultDifficulty
	}
	return dc
}

func (r *Resolver) narrate(ctx context.Context, s *session.State, request string, to narration.Addressee, resp *Response) {
	cctx, cancel := context.WithTimeout(ctx, r.opts.NarrationTimeout)
	defer cancel()
	text, err := r.gateway.Narrate(cctx, request, to, s.View())
	if err != nil {
		r.logger.Warn("narration failed", zap.String("addressee", string(to)), zap.Error(err))
		resp.NarrationErr = err
		resp.Narration = Apology(err)
		return
	}
	resp.Narration = text
}

func (r *Resolver) maybeEvent(ctx context.Context, s *session.State, resp *Response) {
	if r.opts.RandomEventChance <= 0 {
		return
	}
	if float64(s.Deps().Roller.Source().Intn(1000)) >= r.opts.RandomEventChance*1000 {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, r.opts.NarrationTimeout)
	defer cancel()
	ev, err := r.gateway.RandomEvent(cctx, s.View())
	if err != nil {
		r.logger.Warn("random event failed", zap.Error(err))
		return
	}
	resp.Event = ev
}

// Apology is the prose shown when narration fails.
func Apology(err error) string {
	return fmt.Sprintf("The storyteller loses their thread for a moment (%v). What happened stands all the same.", err)
}
