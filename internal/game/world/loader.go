package world

import (
	"fmt"
	"io/fs"

	"github.com/cory-johannsen/tavern/content"
)

// LoadLocations decodes and validates every location file in dir of fsys.
//
// Postcondition: Returns all validated locations or the first error encountered.
func LoadLocations(fsys fs.FS, dir string) ([]*Location, error) {
	locs, err := content.DecodeAll[*Location](fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading locations: %w", err)
	}
	for _, l := range locs {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("validating locations: %w", err)
		}
	}
	return locs, nil
}

// LoadNPCs decodes and validates every NPC file in dir of fsys.
//
// Postcondition: Returns all validated NPCs or the first error encountered.
func LoadNPCs(fsys fs.FS, dir string) ([]*NPC, error) {
	npcs, err := content.DecodeAll[*NPC](fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading npcs: %w", err)
	}
	for _, n := range npcs {
		if err := n.Validate(); err != nil {
			return nil, fmt.Errorf("validating npcs: %w", err)
		}
	}
	return npcs, nil
}

// Load reads locations and NPCs from the "locations" and "npcs" directories
// of fsys and builds a World.
func Load(fsys fs.FS) (*World, error) {
	locs, err := LoadLocations(fsys, "locations")
	if err != nil {
		return nil, err
	}
	npcs, err := LoadNPCs(fsys, "npcs")
	if err != nil {
		return nil, err
	}
	return New(locs, npcs)
}
