// Package content embeds the default tavern game data and decodes YAML
// content directories.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed classes enemies items npcs locations quests scripts
var embedded embed.FS

// Default returns the embedded content tree.
func Default() fs.FS {
	return embedded
}

// Open returns an fs.FS rooted at dir, or the embedded tree when dir is empty.
//
// Postcondition: the returned FS contains the category subdirectories
// (classes, enemies, items, npcs, locations, quests, scripts).
func Open(dir string) fs.FS {
	if dir == "" {
		return embedded
	}
	return os.DirFS(dir)
}

// DecodeAll reads every .yaml/.yml file in dir (sorted by name), decodes each
// as a YAML list of T, and returns the concatenation.
//
// Postcondition: Returns the decoded entries in file then list order, or the
// first read/parse error encountered.
func DecodeAll[T any](fsys fs.FS, dir string) ([]T, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n := e.Name(); strings.HasSuffix(n, ".yaml") || strings.HasSuffix(n, ".yml") {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var out []T
	for _, n := range names {
		p := path.Join(dir, n)
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var batch []T
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}
