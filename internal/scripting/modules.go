package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the engine global: engine.log and engine.dice.
func (m *Manager) registerModules(L *lua.LState) {
	engine := L.NewTable()

	logTbl := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	} {
		logFn := fn
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			logFn("lua: " + L.CheckString(1))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	diceTbl := L.NewTable()
	L.SetField(diceTbl, "roll", L.NewFunction(m.luaRoll))
	L.SetField(diceTbl, "die", L.NewFunction(m.luaDie))
	L.SetField(engine, "dice", diceTbl)

	L.SetGlobal("engine", engine)
}

// luaRoll implements engine.dice.roll(expr) -> {total, dice, modifier}.
// A malformed expression raises a Lua error.
func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(nil, L.CheckString(1))
	if err != nil {
		L.RaiseError("engine.dice.roll: %s", err.Error())
		return 0
	}
	t := L.NewTable()
	L.SetField(t, "total", lua.LNumber(res.Total()))
	L.SetField(t, "modifier", lua.LNumber(res.Modifier))
	diceT := L.NewTable()
	for _, d := range res.Dice {
		diceT.Append(lua.LNumber(d))
	}
	L.SetField(t, "dice", diceT)
	L.Push(t)
	return 1
}

// luaDie implements engine.dice.die(sides) -> [1, sides].
func (m *Manager) luaDie(L *lua.LState) int {
	sides := L.CheckInt(1)
	if sides < 1 {
		L.ArgError(1, "sides must be >= 1")
		return 0
	}
	L.Push(lua.LNumber(m.roller.Die(sides)))
	return 1
}
