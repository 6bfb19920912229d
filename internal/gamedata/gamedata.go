// Package gamedata loads a content tree into the shared rules every player
// session runs against.
package gamedata

import (
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tavern/internal/config"
	"github.com/cory-johannsen/tavern/internal/game/combat"
	"github.com/cory-johannsen/tavern/internal/game/dice"
	"github.com/cory-johannsen/tavern/internal/game/inventory"
	"github.com/cory-johannsen/tavern/internal/game/npc"
	"github.com/cory-johannsen/tavern/internal/game/quest"
	"github.com/cory-johannsen/tavern/internal/game/ruleset"
	"github.com/cory-johannsen/tavern/internal/game/session"
	"github.com/cory-johannsen/tavern/internal/game/world"
	"github.com/cory-johannsen/tavern/internal/scripting"
)

// Bundle is the loaded content.
type Bundle struct {
	Deps    session.Deps
	Classes *ruleset.Registry
	Scripts *scripting.Manager
	Rules   *scripting.Rules
}

// Load decodes every content category in fsys and loads content/scripts
// into the rules script set.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a Bundle whose Deps pass Validate, or the first
// loading error. Close releases the Lua VMs.
func Load(fsys fs.FS, roller *dice.Roller, cfg config.GameConfig, logger *zap.Logger) (*Bundle, error) {
	w, err := world.Load(fsys)
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}
	defs, err := inventory.LoadItems(fsys, "items")
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	items, err := inventory.RegistryFrom(defs)
	if err != nil {
		return nil, fmt.Errorf("indexing items: %w", err)
	}
	qs, err := quest.LoadQuests(fsys, "quests")
	if err != nil {
		return nil, fmt.Errorf("loading quests: %w", err)
	}
	quests, err := quest.NewCatalog(qs)
	if err != nil {
		return nil, fmt.Errorf("indexing quests: %w", err)
	}
	tmpls, err := npc.LoadTemplates(fsys, "enemies")
	if err != nil {
		return nil, fmt.Errorf("loading enemies: %w", err)
	}
	enemies, err := npc.NewRegistry(tmpls)
	if err != nil {
		return nil, fmt.Errorf("indexing enemies: %w", err)
	}
	cls, err := ruleset.LoadClasses(fsys, "classes")
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	classes, err := ruleset.NewRegistry(cls)
	if err != nil {
		return nil, fmt.Errorf("indexing classes: %w", err)
	}

	scripts := scripting.NewManager(roller, logger)
	if err := scripts.Load(scripting.RulesSet, fsys, "scripts", cfg.ScriptInstructionLimit); err != nil {
		scripts.Close()
		return nil, fmt.Errorf("loading scripts: %w", err)
	}

	b := &Bundle{
		Deps: session.Deps{
			World:        w,
			Items:        items,
			Quests:       quests,
			Combat:       combat.NewEngine(roller, enemies, logger),
			Roller:       roller,
			HistoryLimit: cfg.HistoryLimit,
		},
		Classes: classes,
		Scripts: scripts,
		Rules:   scripting.NewRules(scripts),
	}
	logger.Info("content loaded",
		zap.Int("locations", len(w.Locations())),
		zap.Int("npcs", len(w.NPCs())),
		zap.Int("items", len(defs)),
		zap.Int("quests", len(qs)),
		zap.Int("enemies", len(tmpls)),
		zap.Int("classes", len(cls)),
	)
	return b, nil
}

// Close releases the script VMs.
func (b *Bundle) Close() {
	b.Scripts.Close()
}
