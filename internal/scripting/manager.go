package scripting

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/game/dice"
)

type vm struct {
	mu    sync.Mutex
	state *lua.LState
	limit int
}

// Manager owns one sandboxed LState per script set and dispatches hooks.
//
// Manager is safe for concurrent CallHook. Calls into the same set are
// serialized; different sets run concurrently.
type Manager struct {
	mu     sync.RWMutex
	sets   map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		sets:   make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// Load creates a VM for set, registers the engine.* modules, then executes
// every *.lua file in dir of fsys in lexicographic order. Loading a set twice
// replaces the previous VM.
//
// Precondition: set must be non-empty.
func (m *Manager) Load(set string, fsys fs.FS, dir string, instLimit int) error {
	L := NewSandboxedState()
	m.registerModules(L)

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", dir, set, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			files = append(files, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	for _, p := range files {
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: reading %q for %q: %w", p, set, err)
		}
		release := withBudget(L, instLimit)
		err = L.DoString(string(src))
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", p, set, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.sets[set]; ok {
		old.mu.Lock()
		old.state.Close()
		old.mu.Unlock()
	}
	m.sets[set] = &vm{state: L, limit: instLimit}
	m.mu.Unlock()
	m.logger.Debug("scripting: loaded script set", zap.String("set", set), zap.Int("files", len(files)))
	return nil
}

// CallHook calls the named Lua global function in set's VM with a fresh
// instruction budget. Returns (LNil, nil) when the set or hook does not
// exist. Lua runtime errors are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(set, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.sets[set]
	m.mu.RUnlock()
	if !ok {
		m.logger.Info("scripting: no VM for set", zap.String("set", set), zap.String("hook", hook))
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.state.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	release := withBudget(v.state, v.limit)
	err := v.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	release()
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("set", set),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.state.Get(-1)
	v.state.Pop(1)
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for set, v := range m.sets {
		v.mu.Lock()
		v.state.Close()
		v.mu.Unlock()
		delete(m.sets, set)
	}
}
