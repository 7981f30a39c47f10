// Package catalog holds the closed, per-class table of battle powers.
//
// A Catalog is immutable once built and is shared by reference across all battles.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownClass is returned when a class has no catalog entry.
var ErrUnknownClass = errors.New("unknown class")

// ClassID identifies a playable class. The set of valid IDs is closed.
type ClassID string

const (
	Warrior ClassID = "warrior"
	Mage    ClassID = "mage"
	Rogue   ClassID = "rogue"
	Cleric  ClassID = "cleric"
)

// AllClassIDs lists every valid ClassID in presentation order.
var AllClassIDs = []ClassID{Warrior, Mage, Rogue, Cleric}

// Valid reports whether id is a member of the closed class enumeration.
func (id ClassID) Valid() bool {
	for _, c := range AllClassIDs {
		if c == id {
			return true
		}
	}
	return false
}

// ParseClassID converts a class name as supplied by the metadata collaborator
// ("Warrior", " mage ") into a ClassID.
//
// Postcondition: Returns a valid ClassID, or an error wrapping ErrUnknownClass.
func ParseClassID(name string) (ClassID, error) {
	id := ClassID(strings.ToLower(strings.TrimSpace(name)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	return id, nil
}

// Class is the immutable definition of one playable class.
type Class struct {
	ID          ClassID `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Powers      []Power `yaml:"powers" json:"powers"`
}

// Validate checks the class and every power it owns.
//
// Postcondition: nil return guarantees a valid ID, a non-empty name, at least one
// power, and that every power passes Power.Validate.
func (c *Class) Validate() error {
	if !c.ID.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownClass, c.ID)
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", c.ID)
	}
	if len(c.Powers) == 0 {
		return fmt.Errorf("class %q: must define at least one power", c.ID)
	}
	for i, p := range c.Powers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("class %q power %d: %w", c.ID, i, err)
		}
	}
	return nil
}

// Catalog indexes class definitions by ClassID.
//
// Invariant: each ClassID appears at most once and every entry is valid.
type Catalog struct {
	classes map[ClassID]*Class
	order   []ClassID
}

// New builds a Catalog from the given classes.
//
// Postcondition: Returns an error on any invalid class or duplicate ClassID.
func New(classes ...*Class) (*Catalog, error) {
	c := &Catalog{classes: make(map[ClassID]*Class, len(classes))}
	for _, cls := range classes {
		if cls == nil {
			return nil, errors.New("catalog: nil class")
		}
		if err := cls.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.classes[cls.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate class %q", cls.ID)
		}
		c.classes[cls.ID] = cls
		c.order = append(c.order, cls.ID)
	}
	return c, nil
}

// Class returns the definition for id.
//
// Postcondition: Returns the class, or an error wrapping ErrUnknownClass.
func (c *Catalog) Class(id ClassID) (*Class, error) {
	cls, ok := c.classes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, id)
	}
	return cls, nil
}

// PowersFor returns the ordered powers of class id.
//
// Postcondition: Returns a copy of the power list, or an error wrapping ErrUnknownClass.
func (c *Catalog) PowersFor(id ClassID) ([]Power, error) {
	cls, err := c.Class(id)
	if err != nil {
		return nil, err
	}
	out := make([]Power, len(cls.Powers))
	copy(out, cls.Powers)
	return out, nil
}

// Power returns the power at index i of class id.
//
// Postcondition: ok is false when the class is unknown or i is out of range.
func (c *Catalog) Power(id ClassID, i int) (Power, bool) {
	cls, ok := c.classes[id]
	if !ok || i < 0 || i >= len(cls.Powers) {
		return Power{}, false
	}
	return cls.Powers[i], true
}

// Classes returns all classes in registration order.
func (c *Catalog) Classes() []*Class {
	out := make([]*Class, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.classes[id])
	}
	return out
}
