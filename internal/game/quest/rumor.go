package quest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/tavern/internal/game/dice"
)

// ErrInvalidVariation is returned when a proposed variation changes anything
// other than the title and description.
var ErrInvalidVariation = errors.New("invalid quest variation")

// Variation is a proposed retelling of a base quest.
type Variation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Reward      Reward `json:"reward"`
}

// Varier proposes thematic variations of base quests.
type Varier interface {
	ProposeQuestVariation(ctx context.Context, base Quest) (Variation, error)
}

// Validate checks that v keeps base's type and reward and retitles it.
func (v Variation) Validate(base *Quest) error {
	if v.Type != base.Type {
		return fmt.Errorf("%w: type %q differs from %q", ErrInvalidVariation, v.Type, base.Type)
	}
	if v.Reward != base.Reward {
		return fmt.Errorf("%w: reward changed", ErrInvalidVariation)
	}
	if v.Title == "" || v.Title == base.Title {
		return fmt.Errorf("%w: title must be new", ErrInvalidVariation)
	}
	return nil
}

// Apply builds the variation quest with a fresh ID derived from base's.
func (v Variation) Apply(base *Quest) *Quest {
	q := *base
	q.ID = VariationID(base.ID)
	q.Base = base.ID
	q.Title = v.Title
	if v.Description != "" {
		q.Description = v.Description
	}
	q.Rumor = false
	return &q
}

// VariationID returns a unique quest ID derived from base.
func VariationID(base string) string {
	return base + "_variation_" + uuid.NewString()
}

// RumorResult describes a rumor added by GenerateRumor.
type RumorResult struct {
	Quest *Quest
	// Varied is true when the rumor is a generated variation.
	Varied bool
	// VariationErr holds why a variation was discarded, if one was requested.
	VariationErr error
}

// GenerateRumor picks a candidate uniformly with src and adds it to the
// rumor list. When varier is non-nil it is asked for a variation first; any
// error or invalid proposal falls back to the base quest.
//
// Postcondition: on success exactly one ID has been appended to Rumors.
// Returns ErrNoRumors when RumorCandidates is empty.
func (l *Log) GenerateRumor(ctx context.Context, cat *Catalog, src dice.Source, varier Varier) (RumorResult, error) {
	candidates := l.RumorCandidates(cat)
	if len(candidates) == 0 {
		return RumorResult{}, ErrNoRumors
	}
	base := candidates[src.Intn(len(candidates))]

	res := RumorResult{Quest: base}
	if varier != nil {
		v, err := varier.ProposeQuestVariation(ctx, *base)
		if err == nil {
			err = v.Validate(base)
		}
		if err != nil {
			res.VariationErr = err
		} else {
			q := v.Apply(base)
			if l.Variants == nil {
				l.Variants = make(map[string]*Quest)
			}
			l.Variants[q.ID] = q
			res.Quest = q
			res.Varied = true
		}
	}
	l.Rumors = append(l.Rumors, res.Quest.ID)
	return res, nil
}
