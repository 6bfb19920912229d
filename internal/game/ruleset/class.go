// Package ruleset holds the static class templates used during character
// creation.
package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/cory-johannsen/tavern/content"
)

// Abilities is the base ability array a class seeds at creation.
type Abilities struct {
	Strength     int `yaml:"strength"`
	Dexterity    int `yaml:"dexterity"`
	Constitution int `yaml:"constitution"`
	Intelligence int `yaml:"intelligence"`
	Wisdom       int `yaml:"wisdom"`
	Charisma     int `yaml:"charisma"`
}

// Class defines a playable character class.
//
// Precondition: ID and Name must be non-empty; HitDie >= 1 after loading.
type Class struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Description  string    `yaml:"description"`
	HitDie       int       `yaml:"hit_die"`
	StartingGold int       `yaml:"starting_gold"`
	Abilities    Abilities `yaml:"abilities"`
}

// Validate reports every problem with c joined into one error.
func (c *Class) Validate() error {
	var errs []string
	if c.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if c.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if c.HitDie < 1 {
		errs = append(errs, fmt.Sprintf("hit_die must be >= 1, got %d", c.HitDie))
	}
	if c.StartingGold < 0 {
		errs = append(errs, fmt.Sprintf("starting_gold must be >= 0, got %d", c.StartingGold))
	}
	if len(errs) > 0 {
		return fmt.Errorf("class %q: %s", c.ID, strings.Join(errs, "; "))
	}
	return nil
}

// LoadClasses decodes and validates every class file in dir of fsys.
//
// Postcondition: Returns all parsed classes in file order or a non-nil error.
func LoadClasses(fsys fs.FS, dir string) ([]*Class, error) {
	classes, err := content.DecodeAll[*Class](fsys, dir)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return classes, nil
}

// ErrUnknownClass is returned for a class ID that is not registered.
var ErrUnknownClass = errors.New("unknown class")

// Registry provides ordered lookup of classes by ID.
type Registry struct {
	order []*Class
	byID  map[string]*Class
}

// NewRegistry indexes classes, preserving their order for menus.
//
// Precondition: class IDs must be unique.
func NewRegistry(classes []*Class) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Class, len(classes))}
	for _, c := range classes {
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate class id %q", c.ID)
		}
		r.byID[c.ID] = c
		r.order = append(r.order, c)
	}
	return r, nil
}

// Class returns the class for id.
func (r *Registry) Class(id string) (*Class, error) {
	c, ok := r.byID[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, id)
	}
	return c, nil
}

// All returns the classes in load order.
func (r *Registry) All() []*Class {
	out := make([]*Class, len(r.order))
	copy(out, r.order)
	return out
}
