package npc_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/npc"
)

func TestLoadTemplates_DefaultContent(t *testing.T) {
	tmpls, err := npc.LoadTemplates(content.Default(), "enemies")
	require.NoError(t, err)
	reg, err := npc.NewRegistry(tmpls)
	require.NoError(t, err)
	require.Len(t, reg.All(), 4)

	leader, ok := reg.Template("bandit_leader")
	require.True(t, ok)
	assert.Equal(t, "Bandit Leader", leader.Name)
	assert.Equal(t, 3, leader.Level)
	assert.Equal(t, 80, leader.MaxHP)
	assert.Equal(t, 15, leader.AC)
	assert.Equal(t, 6, leader.AttackBonus)
	assert.Equal(t, "1d8+2", leader.Damage)
	assert.Equal(t, 75, leader.ExpReward)
	assert.Equal(t, 30, leader.GoldReward)
	assert.Equal(t, "medium", leader.Difficulty)

	_, ok = reg.Template("dragon")
	assert.False(t, ok)
}

func TestTemplate_Validate(t *testing.T) {
	good := npc.Template{ID: "x", Name: "X", Level: 1, MaxHP: 5, AC: 10, Damage: "1d4"}
	require.NoError(t, good.Validate())

	cases := map[string]func(*npc.Template){
		"id":     func(t *npc.Template) { t.ID = "" },
		"name":   func(t *npc.Template) { t.Name = "" },
		"level":  func(t *npc.Template) { t.Level = 0 },
		"max_hp": func(t *npc.Template) { t.MaxHP = 0 },
		"ac":     func(t *npc.Template) { t.AC = 0 },
		"damage": func(t *npc.Template) { t.Damage = "claws" },
		"reward": func(t *npc.Template) { t.GoldReward = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tmpl := good
			mutate(&tmpl)
			assert.Error(t, tmpl.Validate())
		})
	}
}

func TestLoadTemplates_RejectsInvalid(t *testing.T) {
	fsys := fstest.MapFS{
		"enemies/bad.yaml": &fstest.MapFile{Data: []byte("- id: slime\n  name: Slime\n  level: 1\n  max_hp: 0\n  ac: 8\n  damage: 1d4\n")},
	}
	_, err := npc.LoadTemplates(fsys, "enemies")
	assert.Error(t, err)
}

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	a := &npc.Template{ID: "a"}
	_, err := npc.NewRegistry([]*npc.Template{a, a})
	assert.Error(t, err)
}

func TestNewInstance_ClonesTemplate(t *testing.T) {
	tmpl := &npc.Template{ID: "bandit_leader", Name: "Bandit Leader", Level: 3, MaxHP: 80, AC: 15, AttackBonus: 6, Damage: "1d8+2"}
	inst := npc.NewInstance(tmpl, 1)
	assert.Equal(t, "bandit_leader_1", inst.ID)
	assert.Equal(t, "bandit_leader", inst.TemplateID)
	assert.Equal(t, 80, inst.CurrentHP)

	inst.ApplyDamage(30)
	assert.Equal(t, 80, tmpl.MaxHP, "template must stay immutable")
	assert.Equal(t, 50, inst.CurrentHP)
}

func TestInstance_ApplyDamage_ClampsAtZero_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(1, 200).Draw(rt, "hp")
		hits := rapid.SliceOf(rapid.IntRange(-10, 100)).Draw(rt, "hits")
		inst := npc.NewInstance(&npc.Template{ID: "t", MaxHP: hp}, 0)
		dealt := 0
		for _, h := range hits {
			dealt += inst.ApplyDamage(h)
		}
		assert.GreaterOrEqual(rt, inst.CurrentHP, 0)
		assert.Equal(rt, hp-dealt, inst.CurrentHP)
		assert.Equal(rt, inst.CurrentHP == 0, inst.Defeated())
	})
}
