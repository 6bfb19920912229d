package quest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownQuest is returned for a quest ID that is neither a base quest
	// nor a registered variation.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrNotActive is returned when progressing or completing a quest that is
	// not in the active list.
	ErrNotActive = errors.New("quest is not active")
	// ErrNoRumors is returned when no quest is eligible to become a rumor.
	ErrNoRumors = errors.New("no rumors to hear")
)

// Status is derived from which list of a Log holds a quest ID.
type Status string

// Quest statuses.
const (
	StatusNone      Status = "none"
	StatusRumor     Status = "rumor"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// AcceptOutcome reports what Accept did.
type AcceptOutcome int

// Accept outcomes.
const (
	Accepted AcceptOutcome = iota
	AcceptAlreadyActive
	AcceptAlreadyCompleted
)

// Progress is an active quest and its current count.
type Progress struct {
	QuestID string `json:"quest_id"`
	Count   int    `json:"count"`
}

// Log is one player's quest ledger.
//
// Invariant: a quest ID appears in at most one of Rumors, Active and Completed.
type Log struct {
	Rumors    []string   `json:"rumors"`
	Active    []Progress `json:"active"`
	Completed []string   `json:"completed"`
	// Variants holds the quest variations generated for this player, keyed by ID.
	Variants map[string]*Quest `json:"variants,omitempty"`
}

// Lookup resolves id against the player's variations first, then cat.
func (l *Log) Lookup(cat *Catalog, id string) (*Quest, bool) {
	if q, ok := l.Variants[id]; ok {
		return q, true
	}
	return cat.Quest(id)
}

// Status reports which list holds id.
func (l *Log) Status(id string) Status {
	switch {
	case l.activeIndex(id) >= 0:
		return StatusActive
	case contains(l.Completed, id):
		return StatusCompleted
	case contains(l.Rumors, id):
		return StatusRumor
	default:
		return StatusNone
	}
}

// Progress returns the active entry for id.
func (l *Log) Progress(id string) (Progress, bool) {
	if i := l.activeIndex(id); i >= 0 {
		return l.Active[i], true
	}
	return Progress{}, false
}

// Accept moves id into the active list with a count of 0, removing it from
// rumors. A quest can be accepted straight from its giver without being heard
// as a rumor first.
//
// Postcondition: on Accepted, Status(id) == StatusActive; otherwise the log is
// unchanged.
func (l *Log) Accept(cat *Catalog, id string) (AcceptOutcome, error) {
	if _, ok := l.Lookup(cat, id); !ok {
		return 0, fmt.Errorf("accepting %q: %w", id, ErrUnknownQuest)
	}
	switch l.Status(id) {
	case StatusActive:
		return AcceptAlreadyActive, nil
	case StatusCompleted:
		return AcceptAlreadyCompleted, nil
	}
	l.Rumors = remove(l.Rumors, id)
	l.Active = append(l.Active, Progress{QuestID: id})
	return Accepted, nil
}

// Advance adds n to the active quest's count, clamped at its goal, and
// reports whether the goal has been reached.
//
// Precondition: n >= 0.
func (l *Log) Advance(cat *Catalog, id string, n int) (count int, done bool, err error) {
	i := l.activeIndex(id)
	if i < 0 {
		return 0, false, fmt.Errorf("advancing %q: %w", id, ErrNotActive)
	}
	q, ok := l.Lookup(cat, id)
	if !ok {
		return 0, false, fmt.Errorf("advancing %q: %w", id, ErrUnknownQuest)
	}
	goal := q.Goal()
	c := l.Active[i].Count + n
	if c > goal {
		c = goal
	}
	l.Active[i].Count = c
	return c, c >= goal, nil
}

// Complete moves id from active to completed and returns its definition.
//
// Postcondition: on success, Status(id) == StatusCompleted.
func (l *Log) Complete(cat *Catalog, id string) (*Quest, error) {
	i := l.activeIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("completing %q: %w", id, ErrNotActive)
	}
	q, ok := l.Lookup(cat, id)
	if !ok {
		return nil, fmt.Errorf("completing %q: %w", id, ErrUnknownQuest)
	}
	l.Active = append(l.Active[:i], l.Active[i+1:]...)
	l.Completed = append(l.Completed, id)
	return q, nil
}

// ActiveOfType returns the first active quest whose type is one of types.
func (l *Log) ActiveOfType(cat *Catalog, types ...Type) (*Quest, bool) {
	for _, p := range l.Active {
		q, ok := l.Lookup(cat, p.QuestID)
		if !ok {
			continue
		}
		for _, t := range types {
			if q.Type == t {
				return q, true
			}
		}
	}
	return nil, false
}

// FindByTitle returns the first rumored or base quest whose title occurs in
// text, case-insensitively. Rumors are searched first so that variations are
// matched by their own titles.
func (l *Log) FindByTitle(cat *Catalog, text string) (*Quest, bool) {
	text = strings.ToLower(text)
	for _, id := range l.Rumors {
		if q, ok := l.Lookup(cat, id); ok && strings.Contains(text, strings.ToLower(q.Title)) {
			return q, true
		}
	}
	for _, q := range cat.All() {
		if strings.Contains(text, strings.ToLower(q.Title)) {
			return q, true
		}
	}
	return nil, false
}

// RumorCandidates returns the base quests marked as rumors that the player
// has not yet heard, accepted or completed, in content order.
func (l *Log) RumorCandidates(cat *Catalog) []*Quest {
	var out []*Quest
	for _, q := range cat.All() {
		if !q.Rumor || l.Status(q.ID) != StatusNone || l.heardVariantOf(q.ID) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Clone returns a deep copy of l.
func (l *Log) Clone() Log {
	out := Log{
		Rumors:    append([]string(nil), l.Rumors...),
		Active:    append([]Progress(nil), l.Active...),
		Completed: append([]string(nil), l.Completed...),
	}
	if len(l.Variants) > 0 {
		out.Variants = make(map[string]*Quest, len(l.Variants))
		for id, q := range l.Variants {
			cp := *q
			out.Variants[id] = &cp
		}
	}
	return out
}

// heardVariantOf reports whether a variation of base is in any list.
func (l *Log) heardVariantOf(base string) bool {
	for id, q := range l.Variants {
		if q.Base == base && l.Status(id) != StatusNone {
			return true
		}
	}
	return false
}

func (l *Log) activeIndex(id string) int {
	for i, p := range l.Active {
		if p.QuestID == id {
			return i
		}
	}
	return -1
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
