package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/quest"
)

// Relationship deltas applied by the ledger.
const (
	PurchaseRelationship = 2
	AcceptRelationship   = 5
	CompleteRelationship = 10
	// MaxHuntKills is the most kill-quest progress one hunt can make.
	MaxHuntKills = 3
)

// Purchase describes a completed Buy.
type Purchase struct {
	Item   *inventory.ItemDef
	Price  int
	Seller string
}

// Price returns what itemID costs the player after bartering.
func (s *State) Price(item *inventory.ItemDef) int {
	return inventory.FinalPrice(item.Price, s.Character.Skill(character.Bartering))
}

// Buy purchases one itemID from npcID.
//
// Postcondition: on error nothing is mutated; on success gold is deducted,
// the item stack is incremented and the seller's relationship rises by
// PurchaseRelationship.
func (s *State) Buy(npcID, itemID string) (Purchase, error) {
	seller, ok := s.deps.World.NPC(npcID)
	if !ok {
		return Purchase{}, fmt.Errorf("buying from %q: %w", npcID, ErrUnknownNPC)
	}
	item, ok := s.deps.Items.Item(itemID)
	if !ok {
		return Purchase{}, fmt.Errorf("buying %q: %w", itemID, ErrUnknownItem)
	}
	if !seller.Sells(itemID) {
		return Purchase{}, fmt.Errorf("%s does not sell %s: %w", seller.Name, item.Name, ErrNotForSale)
	}
	price := s.Price(item)
	if err := s.Character.SpendGold(price); err != nil {
		return Purchase{}, fmt.Errorf("buying %s for %d gold: %w", item.Name, price, err)
	}
	s.Inventory.Add(itemID, 1)
	s.AdjustRelationship(npcID, PurchaseRelationship)
	return Purchase{Item: item, Price: price, Seller: npcID}, nil
}

// UseItem consumes one healing item and returns the health restored.
func (s *State) UseItem(itemID string) (int, error) {
	item, ok := s.deps.Items.Item(itemID)
	if !ok {
		return 0, fmt.Errorf("using %q: %w", itemID, ErrUnknownItem)
	}
	if item.Kind != inventory.KindConsumable || item.Heal <= 0 {
		return 0, fmt.Errorf("using %s: %w", item.Name, ErrNotUsable)
	}
	if err := s.Inventory.Remove(itemID, 1); err != nil {
		return 0, err
	}
	return s.Character.Heal(item.Heal), nil
}

// AcceptQuest activates questID and raises the giver's relationship by
// AcceptRelationship. Accepting an active or completed quest is a no-op
// reported through the outcome.
func (s *State) AcceptQuest(questID string) (quest.AcceptOutcome, error) {
	out, err := s.Quests.Accept(s.deps.Quests, questID)
	if err != nil || out != quest.Accepted {
		return out, err
	}
	if q, ok := s.Quests.Lookup(s.deps.Quests, questID); ok && q.Giver != "" {
		s.AdjustRelationship(q.Giver, AcceptRelationship)
	}
	return out, nil
}

// Completion describes a completed quest and what it granted.
type Completion struct {
	Quest    *quest.Quest
	LevelUps []character.LevelUp
}

// CompleteQuest grants questID's reward, moves it to completed and raises
// the giver's relationship by CompleteRelationship.
func (s *State) CompleteQuest(questID string) (Completion, error) {
	q, err := s.Quests.Complete(s.deps.Quests, questID)
	if err != nil {
		return Completion{}, err
	}
	s.Character.AddGold(q.Reward.Gold)
	ups := s.Character.GrantExperience(q.Reward.Experience)
	if q.Reward.Item != "" {
		s.Inventory.Add(q.Reward.Item, 1)
	}
	if q.Giver != "" {
		s.AdjustRelationship(q.Giver, CompleteRelationship)
	}
	return Completion{Quest: q, LevelUps: ups}, nil
}

// HuntResult describes one hunting trip.
type HuntResult struct {
	Quest  *quest.Quest
	Killed int
	Count  int
	Goal   int
	// Completion is set when the hunt finished the quest.
	Completion *Completion
}

// Hunt progresses the first active kill quest by a random 1 to MaxHuntKills,
// clamped at its target, moving the player to the quest's location and
// completing the quest when the target is reached.
func (s *State) Hunt() (HuntResult, error) {
	q, ok := s.Quests.ActiveOfType(s.deps.Quests, quest.TypeKill)
	if !ok {
		return HuntResult{}, fmt.Errorf("hunting: %w", ErrNoQuest)
	}
	s.moveTo(q.Location)
	killed := s.deps.Roller.Die(MaxHuntKills)
	count, done, err := s.Quests.Advance(s.deps.Quests, q.ID, killed)
	if err != nil {
		return HuntResult{}, err
	}
	res := HuntResult{Quest: q, Killed: killed, Count: count, Goal: q.Goal()}
	if done {
		c, err := s.CompleteQuest(q.ID)
		if err != nil {
			return res, err
		}
		res.Completion = &c
	}
	return res, nil
}

// Investigate finishes the first active explore or retrieve quest, moving
// the player to its location.
func (s *State) Investigate() (Completion, error) {
	q, ok := s.Quests.ActiveOfType(s.deps.Quests, quest.TypeExplore, quest.TypeRetrieve)
	if !ok {
		return Completion{}, fmt.Errorf("investigating: %w", ErrNoQuest)
	}
	s.moveTo(q.Location)
	return s.CompleteQuest(q.ID)
}

// Rest fully heals the character and returns the health restored.
func (s *State) Rest() int {
	before := s.Character.Health
	s.Character.FullHeal()
	return s.Character.Health - before
}

// Recruit adds npcID to the party for its recruit cost.
//
// Postcondition: on error nothing is mutated.
func (s *State) Recruit(npcID string) (Companion, error) {
	n, ok := s.deps.World.NPC(npcID)
	if !ok {
		return Companion{}, fmt.Errorf("recruiting %q: %w", npcID, ErrUnknownNPC)
	}
	if !n.Recruitable() {
		return Companion{}, fmt.Errorf("%s %w", n.Name, ErrNotRecruitable)
	}
	if s.InParty(npcID) {
		return Companion{}, fmt.Errorf("%s is %w", n.Name, ErrAlreadyInParty)
	}
	if err := s.Character.SpendGold(n.Recruit.Cost); err != nil {
		return Companion{}, fmt.Errorf("recruiting %s for %d gold: %w", n.Name, n.Recruit.Cost, err)
	}
	level := n.Recruit.Level
	if level < 1 {
		level = 1
	}
	c := Companion{ID: n.ID, Name: n.Name, Level: level, Health: n.Recruit.Health, MaxHealth: n.Recruit.Health}
	s.Party = append(s.Party, c)
	return c, nil
}

// GenerateRumor adds one rumor to the quest log. A non-nil varier is asked
// for a variation first; failures fall back to the base quest.
func (s *State) GenerateRumor(ctx context.Context, varier quest.Varier) (quest.RumorResult, error) {
	return s.Quests.GenerateRumor(ctx, s.deps.Quests, s.deps.Roller.Source(), varier)
}

// Gossip returns the rumors currently heard, generating one first when none
// are pending.
func (s *State) Gossip(ctx context.Context, varier quest.Varier) ([]*quest.Quest, *quest.RumorResult, error) {
	var generated *quest.RumorResult
	if len(s.Quests.Rumors) == 0 {
		res, err := s.GenerateRumor(ctx, varier)
		switch {
		case errors.Is(err, quest.ErrNoRumors):
		case err != nil:
			return nil, nil, err
		default:
			generated = &res
		}
	}
	return s.Rumors(), generated, nil
}

// Rumors resolves the rumor list to quest definitions.
func (s *State) Rumors() []*quest.Quest {
	var out []*quest.Quest
	for _, id := range s.Quests.Rumors {
		if q, ok := s.Quests.Lookup(s.deps.Quests, id); ok {
			out = append(out, q)
		}
	}
	return out
}

func (s *State) moveTo(locationID string) {
	if locationID == "" {
		return
	}
	if _, ok := s.deps.World.Location(locationID); ok {
		s.Location = locationID
	}
}
