package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tavern/internal/game/character"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/storage/postgres"
	"github.com/cory-johannsen/tavern/internal/testutil"
)

func testSnapshot(name string, level int) session.Snapshot {
	h := dice.NewHistory(5)
	h.Push(dice.Record{Kind: dice.KindSkillCheck, Label: "Stealth check", Rolls: []int{14}, Total: 15, Difficulty: 13, Success: true})
	return session.Snapshot{
		Version: session.SnapshotVersion,
		Character: &character.Character{
			Name: name, Class: "fighter", Level: level, Experience: 10, ExperienceToNext: 150,
			Health: 12, MaxHealth: 14, Gold: 70,
		},
		Quests:    quest.Log{Rumors: []string{"tower_quest"}},
		Relations: map[string]int{"greg": 55},
		Location:  "market",
		History:   h,
	}
}

func TestSaveRepository_RoundTrip(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()
	account := uniqueName("acct")

	require.NoError(t, repo.Save(ctx, account, session.DefaultSlot, testSnapshot("Aria", 2)))
	got, err := repo.Load(ctx, account, session.DefaultSlot)
	require.NoError(t, err)

	assert.Equal(t, "Aria", got.Character.Name)
	assert.Equal(t, 2, got.Character.Level)
	assert.Equal(t, "market", got.Location)
	assert.Equal(t, 55, got.Relations["greg"])
	assert.Equal(t, []string{"tower_quest"}, got.Quests.Rumors)
	require.Equal(t, 1, got.History.Len())
	assert.Equal(t, "Stealth check", got.History.Records()[0].Label)
}

func TestSaveRepository_OverwriteListDelete(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()
	account := uniqueName("acct")

	require.NoError(t, repo.Save(ctx, account, "b", testSnapshot("Aria", 1)))
	require.NoError(t, repo.Save(ctx, account, "a", testSnapshot("Aria", 1)))
	require.NoError(t, repo.Save(ctx, account, "a", testSnapshot("Aria", 3)))

	slots, err := repo.List(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slots)

	got, err := repo.Load(ctx, account, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Character.Level)

	require.NoError(t, repo.Delete(ctx, account, "a"))
	require.NoError(t, repo.Delete(ctx, account, "a"))
	_, err = repo.Load(ctx, account, "a")
	assert.ErrorIs(t, err, session.ErrSaveNotFound)

	slots, err = repo.List(ctx, uniqueName("empty"))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSaveRepository_RejectsEmptySnapshot(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	err := repo.Save(context.Background(), "acct", "slot", session.Snapshot{})
	assert.Error(t, err)
}
