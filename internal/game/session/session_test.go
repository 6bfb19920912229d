package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/npc"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/game/world"
)

// faces is a Source that yields the given die faces in order, cycling.
type faces struct {
	vals []int
	i    int
}

func (f *faces) Intn(n int) int {
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return (v - 1) % n
}

func seq(vals ...int) *faces { return &faces{vals: vals} }

func testDeps(t testing.TB, src dice.Source) session.Deps {
	t.Helper()
	fsys := content.Default()
	w, err := world.Load(fsys)
	require.NoError(t, err)
	defs, err := inventory.LoadItems(fsys, "items")
	require.NoError(t, err)
	items, err := inventory.RegistryFrom(defs)
	require.NoError(t, err)
	qs, err := quest.LoadQuests(fsys, "quests")
	require.NoError(t, err)
	cat, err := quest.NewCatalog(qs)
	require.NoError(t, err)
	tmpls, err := npc.LoadTemplates(fsys, "enemies")
	require.NoError(t, err)
	enemies, err := npc.NewRegistry(tmpls)
	require.NoError(t, err)
	roller := dice.NewLoggedRoller(src, zap.NewNop())
	return session.Deps{
		World:  w,
		Items:  items,
		Quests: cat,
		Combat: combat.NewEngine(roller, enemies, zap.NewNop()),
		Roller: roller,
	}
}

func newState(t testing.TB, src dice.Source) *session.State {
	t.Helper()
	c, err := character.New("Aria", &ruleset.Class{
		ID: "fighter", Name: "Fighter", HitDie: 10, StartingGold: 50,
		Abilities: ruleset.Abilities{Strength: 16, Dexterity: 13, Constitution: 15, Intelligence: 10, Wisdom: 12, Charisma: 11},
	})
	require.NoError(t, err)
	s, err := session.New(testDeps(t, src), c)
	require.NoError(t, err)
	return s
}

func TestNew_StartsInTavern(t *testing.T) {
	s := newState(t, seq(1))
	assert.Equal(t, world.StartLocation, s.Location)
	assert.Nil(t, s.Combat)
	assert.Equal(t, 0, s.History.Len())
}

func TestNew_RejectsMissingDeps(t *testing.T) {
	_, err := session.New(session.Deps{}, &character.Character{})
	assert.Error(t, err)
}

func TestRelationship_FallsBackToBase(t *testing.T) {
	s := newState(t, seq(1))
	assert.Equal(t, 50, s.Relationship("greg"))
	assert.Equal(t, 55, s.AdjustRelationship("greg", 5))
	assert.Equal(t, 55, s.Relationship("greg"))
	assert.Equal(t, 100, s.AdjustRelationship("greg", 1000))
	assert.Equal(t, 0, s.Relationship("nobody"))
}

func TestBuy(t *testing.T) {
	s := newState(t, seq(1))

	p, err := s.Buy("merchant", "potion")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Price)
	assert.Equal(t, 35, s.Character.Gold)
	assert.Equal(t, 1, s.Inventory.Count("potion"))
	assert.Equal(t, 32, s.Relationship("merchant"))

	_, err = s.Buy("merchant", "potion")
	require.NoError(t, err)
	assert.Equal(t, []inventory.Stack{{ItemID: "potion", Count: 2}}, s.Inventory.Stacks)
}

func TestBuy_InsufficientGoldMutatesNothing(t *testing.T) {
	s := newState(t, seq(1))
	s.Character.Gold = 10
	_, err := s.Buy("merchant", "sword")
	assert.True(t, errors.Is(err, session.ErrInsufficientGold))
	assert.Equal(t, 10, s.Character.Gold)
	assert.Equal(t, 0, s.Inventory.Count("sword"))
	assert.Equal(t, 30, s.Relationship("merchant"))
}

func TestBuy_NotForSale(t *testing.T) {
	s := newState(t, seq(1))
	_, err := s.Buy("merchant", "scroll")
	assert.True(t, errors.Is(err, session.ErrNotForSale))
	_, err = s.Buy("nobody", "scroll")
	assert.True(t, errors.Is(err, session.ErrUnknownNPC))
	_, err = s.Buy("merchant", "dragon_egg")
	assert.True(t, errors.Is(err, session.ErrUnknownItem))
}

func TestBuy_BarteringDiscount(t *testing.T) {
	s := newState(t, seq(1))
	s.Character.AddBonus(character.Bartering, 20)
	s.Character.Gold = 100
	p, err := s.Buy("merchant", "sword")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Price)
}

func TestAcceptAndCompleteQuest(t *testing.T) {
	s := newState(t, seq(1))
	s.Quests.Rumors = []string{"tower_quest"}

	out, err := s.AcceptQuest("tower_quest")
	require.NoError(t, err)
	assert.Equal(t, quest.Accepted, out)
	assert.Equal(t, 25, s.Relationship("mage"))

	out, err = s.AcceptQuest("tower_quest")
	require.NoError(t, err)
	assert.Equal(t, quest.AcceptAlreadyActive, out)
	assert.Equal(t, 25, s.Relationship("mage"), "re-accept is a no-op")

	done, err := s.CompleteQuest("tower_quest")
	require.NoError(t, err)
	assert.Equal(t, "tower_quest", done.Quest.ID)
	assert.Equal(t, 125, s.Character.Gold)
	assert.Equal(t, 40, s.Character.Experience)
	assert.Equal(t, 1, s.Inventory.Count("scroll"))
	assert.Equal(t, 35, s.Relationship("mage"))
	assert.Equal(t, quest.StatusCompleted, s.Quests.Status("tower_quest"))
}

func TestCompleteQuest_TriggersLevelUp(t *testing.T) {
	s := newState(t, seq(1))
	s.Character.Experience = 60
	_, err := s.AcceptQuest("bandit_quest")
	require.NoError(t, err)
	done, err := s.CompleteQuest("bandit_quest")
	require.NoError(t, err)
	require.Len(t, done.LevelUps, 1)
	assert.Equal(t, 2, s.Character.Level)
	assert.Equal(t, 10, s.Character.Experience)
}

func TestHunt_ClampsAndAutoCompletes(t *testing.T) {
	s := newState(t, seq(3))
	_, err := s.AcceptQuest("bandit_quest")
	require.NoError(t, err)
	s.Quests.Active[0].Count = 2

	res, err := s.Hunt()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Killed)
	assert.Equal(t, 3, res.Count, "clamped at the target, not 5")
	require.NotNil(t, res.Completion)
	assert.Equal(t, "forest", s.Location)
	assert.Equal(t, quest.StatusCompleted, s.Quests.Status("bandit_quest"))
	assert.Equal(t, 150, s.Character.Gold)
}

func TestHunt_PartialProgress(t *testing.T) {
	s := newState(t, seq(1))
	_, err := s.AcceptQuest("bandit_quest")
	require.NoError(t, err)
	res, err := s.Hunt()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Nil(t, res.Completion)
	assert.Equal(t, quest.StatusActive, s.Quests.Status("bandit_quest"))
}

func TestHunt_RequiresKillQuest(t *testing.T) {
	s := newState(t, seq(1))
	_, err := s.Hunt()
	assert.True(t, errors.Is(err, session.ErrNoQuest))
	assert.Equal(t, world.StartLocation, s.Location)
}

func TestInvestigate(t *testing.T) {
	s := newState(t, seq(1))
	_, err := s.Investigate()
	assert.True(t, errors.Is(err, session.ErrNoQuest))

	_, err = s.AcceptQuest("tower_quest")
	require.NoError(t, err)
	done, err := s.Investigate()
	require.NoError(t, err)
	assert.Equal(t, "tower_quest", done.Quest.ID)
	assert.Equal(t, "tower", s.Location)
}

func TestRestAndUseItem(t *testing.T) {
	s := newState(t, seq(1))
	s.Character.Health = 2
	assert.Equal(t, s.Character.MaxHealth-2, s.Rest())
	assert.Equal(t, s.Character.MaxHealth, s.Character.Health)

	s.Character.Health = 1
	_, err := s.UseItem("potion")
	assert.Error(t, err, "not carried")
	s.Inventory.Add("potion", 1)
	healed, err := s.UseItem("potion")
	require.NoError(t, err)
	assert.Equal(t, s.Character.MaxHealth-1, healed)
	assert.Equal(t, 0, s.Inventory.Count("potion"))

	s.Inventory.Add("rope", 1)
	_, err = s.UseItem("rope")
	assert.True(t, errors.Is(err, session.ErrNotUsable))
}

func TestRecruit(t *testing.T) {
	s := newState(t, seq(1))
	_, err := s.Recruit("rogue")
	assert.True(t, errors.Is(err, session.ErrInsufficientGold))
	assert.Empty(t, s.Party)

	s.Character.Gold = 250
	c, err := s.Recruit("rogue")
	require.NoError(t, err)
	assert.Equal(t, session.Companion{ID: "rogue", Name: "Shadow", Level: 1, Health: 60, MaxHealth: 60}, c)
	assert.Equal(t, 150, s.Character.Gold)

	_, err = s.Recruit("rogue")
	assert.True(t, errors.Is(err, session.ErrAlreadyInParty))
	assert.Equal(t, 150, s.Character.Gold)

	_, err = s.Recruit("greg")
	assert.True(t, errors.Is(err, session.ErrNotRecruitable))
}

func TestGossip_GeneratesOnlyWhenEmpty(t *testing.T) {
	s := newState(t, seq(1))
	rumors, gen, err := s.Gossip(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, gen)
	require.Len(t, rumors, 1)

	rumors, gen, err = s.Gossip(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, gen)
	assert.Len(t, rumors, 1)
}

func TestTravel(t *testing.T) {
	s := newState(t, seq(1))
	l, err := s.Travel("market")
	require.NoError(t, err)
	assert.Equal(t, "Market Square", l.Name)
	_, err = s.Travel("moon")
	assert.True(t, errors.Is(err, session.ErrUnknownLocation))
	assert.Equal(t, "market", s.Location)
}

func TestWeapon_FirstCarriedWeapon(t *testing.T) {
	s := newState(t, seq(1))
	assert.Equal(t, "1d4", s.Weapon())
	s.Inventory.Add("sword", 1)
	assert.Equal(t, "1d8", s.Weapon())
}

func TestView_IsACopy(t *testing.T) {
	s := newState(t, seq(1))
	s.Inventory.Add("rope", 1)
	before, ok := s.View().NPC("guard")
	require.True(t, ok)
	assert.Equal(t, 40, before.Relationship, "unmet NPCs fall back to their base relationship")

	_, err := s.AcceptQuest("bandit_quest")
	require.NoError(t, err)

	v := s.View()
	assert.Equal(t, "The Tavern", v.Location.Name)
	require.Len(t, v.Inventory, 1)
	assert.Equal(t, "Rope", v.Inventory[0].Name)
	require.Len(t, v.Quests, 1)
	assert.Equal(t, 3, v.Quests[0].Goal)
	assert.Len(t, v.Present, 3)
	guard, ok := v.NPC("guard")
	require.True(t, ok)
	assert.Equal(t, 40+session.AcceptRelationship, guard.Relationship)
	assert.Equal(t, "town", guard.Location)

	v.Character.Gold = 9999
	assert.NotEqual(t, 9999, s.Character.Gold)
}
