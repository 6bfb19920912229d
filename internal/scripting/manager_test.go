package scripting_test

import (
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tavern/content"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func luaFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys["scripts/"+name] = &fstest.MapFile{Data: []byte(src)}
	}
	return fsys
}

func hasLevel(logs *observer.ObservedLogs, lvl zapcore.Level) bool {
	for _, e := range logs.All() {
		if e.Level == lvl {
			return true
		}
	}
	return false
}

func TestSandbox_UnsafeGlobalsRemoved(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
	assert.NoError(t, L.DoString(`assert(string.upper("a") == "A")`))
}

func TestManager_CallHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("s", luaFS(map[string]string{
		"a.lua": `base_val = 10`,
		"b.lua": `function add(a, b) return a + b + base_val end`,
	}), "scripts", 0))

	ret, err := mgr.CallHook("s", "add", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(17), ret)
}

func TestManager_MissingSetOrHook_ReturnsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook("nope", "hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zap.InfoLevel))

	require.NoError(t, mgr.Load("s", luaFS(map[string]string{"a.lua": `x = 1`}), "scripts", 0))
	ret, err = mgr.CallHook("s", "missing")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_RuntimeError_LoggedNotPropagated(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load("s", luaFS(map[string]string{
		"bad.lua": `function bad() error("boom") end`,
	}), "scripts", 0))
	ret, err := mgr.CallHook("s", "bad")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.True(t, hasLevel(logs, zap.WarnLevel))
}

func TestManager_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	err := mgr.Load("s", luaFS(map[string]string{"bad.lua": `this is not lua @@`}), "scripts", 0)
	assert.Error(t, err)
}

func TestManager_InstructionBudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("s", luaFS(map[string]string{
		"loop.lua": `
			function spin() while true do end end
			function small() local n = 0 for i = 1, 10 do n = n + i end return n end
		`,
	}), "scripts", 500))

	ret, _ := mgr.CallHook("s", "spin")
	assert.Equal(t, lua.LNil, ret)
	for i := 0; i < 200; i++ {
		ret, _ = mgr.CallHook("s", "small")
		require.Equal(t, lua.LNumber(55), ret, "call %d", i)
	}
}

func TestManager_ConcurrentCalls(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load("s", luaFS(map[string]string{
		"h.lua": `function add(a, b) return a + b end`,
	}), "scripts", 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				ret, err := mgr.CallHook("s", "add", lua.LNumber(1), lua.LNumber(2))
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestEngineModules(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load("s", luaFS(map[string]string{
		"m.lua": `
			function roll() engine.log.info("rolling") return engine.dice.roll("2d6+1") end
			function die() return engine.dice.die(4) end
		`,
	}), "scripts", 0))

	ret, err := mgr.CallHook("s", "roll")
	require.NoError(t, err)
	tbl, ok := ret.(*lua.LTable)
	require.True(t, ok)
	total := int(tbl.RawGetString("total").(lua.LNumber))
	assert.GreaterOrEqual(t, total, 3)
	assert.LessOrEqual(t, total, 13)
	assert.Equal(t, 2, tbl.RawGetString("dice").(*lua.LTable).Len())
	assert.True(t, hasLevel(logs, zap.InfoLevel))

	ret, err = mgr.CallHook("s", "die")
	require.NoError(t, err)
	n := int(ret.(lua.LNumber))
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 4)
}

func TestNewManager_PanicsOnNil(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() { scripting.NewManager(nil, zap.NewNop()) })
	assert.Panics(t, func() { scripting.NewManager(roller, nil) })
}

func loadRules(t *testing.T) *scripting.Rules {
	t.Helper()
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(scripting.RulesSet, content.Default(), "scripts", 0))
	return scripting.NewRules(mgr)
}

func TestRules_Difficulty_DefaultContent(t *testing.T) {
	rules := loadRules(t)

	dc, ok := rules.Difficulty("stealth", 1, "forest")
	require.True(t, ok)
	assert.Equal(t, 15, dc)

	dc, ok = rules.Difficulty("unknown_skill", 1, "nowhere")
	require.True(t, ok)
	assert.Equal(t, 12, dc)
}

func TestRules_Difficulty_AlwaysInRange(t *testing.T) {
	rules := loadRules(t)
	rapid.Check(t, func(rt *rapid.T) {
		skill := rapid.SampledFrom([]string{"stealth", "persuasion", "survival", "athletics", "x"}).Draw(rt, "skill")
		level := rapid.IntRange(1, 30).Draw(rt, "level")
		loc := rapid.SampledFrom([]string{"tavern", "forest", "tower", "market", ""}).Draw(rt, "location")
		dc, ok := rules.Difficulty(skill, level, loc)
		require.True(rt, ok)
		assert.GreaterOrEqual(rt, dc, 8)
		assert.LessOrEqual(rt, dc, 20)
	})
}

func TestRules_RandomEvent(t *testing.T) {
	rules := loadRules(t)
	assert.NotEmpty(t, rules.RandomEvent("tavern"))
	assert.NotEmpty(t, rules.RandomEvent("tower"))
	assert.Empty(t, rules.RandomEvent("town"))
}

func TestRules_MissingSet_NotOK(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, ok := scripting.NewRules(mgr).Difficulty("stealth", 1, "tavern")
	assert.False(t, ok)
}
