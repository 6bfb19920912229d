package narration

import (
	"context"
	"sync"

	"github.com/cory-johannsen/tavern/internal/game/quest"
)

// Call records one Gateway invocation made against a Mock.
type Call struct {
	Method    string
	Request   string
	Addressee Addressee
	Skill     string
	Quest     string
	View      View
}

// Mock is a scriptable Gateway for tests. Nil Func fields return canned
// defaults; Err, when set, is returned by every method.
type Mock struct {
	NarrateFunc    func(ctx context.Context, request string, addressee Addressee, view View) (string, error)
	DifficultyFunc func(ctx context.Context, skill string, view View) (int, error)
	VariationFunc  func(ctx context.Context, base quest.Quest) (quest.Variation, error)
	EventFunc      func(ctx context.Context, view View) (string, error)
	Err            error

	mu    sync.Mutex
	calls []Call
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns a copy of every recorded call in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsTo returns the recorded calls of method.
func (m *Mock) CallsTo(method string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Narrate implements Gateway.
func (m *Mock) Narrate(ctx context.Context, request string, addressee Addressee, view View) (string, error) {
	m.record(Call{Method: "Narrate", Request: request, Addressee: addressee, View: view})
	if m.Err != nil {
		return "", m.Err
	}
	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, request, addressee, view)
	}
	return "narrated: " + request, nil
}

// ProposeDifficulty implements Gateway. The default is 12.
func (m *Mock) ProposeDifficulty(ctx context.Context, skill string, view View) (int, error) {
	m.record(Call{Method: "ProposeDifficulty", Skill: skill, View: view})
	if m.Err != nil {
		return 0, m.Err
	}
	if m.DifficultyFunc != nil {
		return m.DifficultyFunc(ctx, skill, view)
	}
	return 12, nil
}

// ProposeQuestVariation implements Gateway. The default is ErrNoVariation.
func (m *Mock) ProposeQuestVariation(ctx context.Context, base quest.Quest) (quest.Variation, error) {
	m.record(Call{Method: "ProposeQuestVariation", Quest: base.ID})
	if m.Err != nil {
		return quest.Variation{}, m.Err
	}
	if m.VariationFunc != nil {
		return m.VariationFunc(ctx, base)
	}
	return quest.Variation{}, ErrNoVariation
}

// RandomEvent implements Gateway. The default is no event.
func (m *Mock) RandomEvent(ctx context.Context, view View) (string, error) {
	m.record(Call{Method: "RandomEvent", View: view})
	if m.Err != nil {
		return "", m.Err
	}
	if m.EventFunc != nil {
		return m.EventFunc(ctx, view)
	}
	return "", nil
}
