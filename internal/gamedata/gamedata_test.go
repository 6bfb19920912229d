package gamedata_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/gamedata"
)

func TestLoad_DefaultContent(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	b, err := gamedata.Load(content.Default(), roller, config.GameConfig{HistoryLimit: 7, ScriptInstructionLimit: 100000}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(b.Close)

	require.NoError(t, b.Deps.Validate())
	assert.Equal(t, 7, b.Deps.HistoryLimit)
	assert.Len(t, b.Classes.All(), 10)
	_, ok := b.Deps.World.NPC("greg")
	assert.True(t, ok)

	dc, ok := b.Rules.Difficulty("stealth", 1, "tavern")
	require.True(t, ok)
	assert.Equal(t, 12, dc)
}

func TestLoad_MissingCategory(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	_, err := gamedata.Load(fstest.MapFS{}, roller, config.GameConfig{}, zap.NewNop())
	assert.Error(t, err)
}
