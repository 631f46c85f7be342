package vcard

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Entity is one contact parsed from a BEGIN:VCARD ... END:VCARD block.
type Entity struct {
	// Version is the source VERSION value, empty when the block had none.
	Version    string      `json:"version" yaml:"version"`
	Index      int         `json:"index" yaml:"index"`
	Properties *Properties `json:"properties" yaml:"properties"`
	// Rejected holds keys dropped by the key grammar while parsing.
	Rejected []*KeyError `json:"-" yaml:"-"`
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	c := &Entity{
		Version:    e.Version,
		Index:      e.Index,
		Properties: e.Properties.Clone(),
	}
	if len(e.Rejected) > 0 {
		c.Rejected = make([]*KeyError, len(e.Rejected))
		for i, ke := range e.Rejected {
			cp := *ke
			c.Rejected[i] = &cp
		}
	}
	return c
}

// Collection is the ordered set of entities of one loaded document.
// It is not safe for concurrent use.
type Collection struct {
	Entities []*Entity `json:"entities" yaml:"entities"`
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entities)
}

// Entity returns the entity at index i.
func (c *Collection) Entity(i int) (*Entity, error) {
	if i < 0 || i >= c.Len() {
		return nil, fmt.Errorf("%w: %d", ErrEntityIndex, i)
	}
	return c.Entities[i], nil
}

// SetProperty sets key to value on the entity at index. New keys must pass the
// key grammar and are appended; existing keys keep their position.
func (c *Collection) SetProperty(index int, key, value string) error {
	e, err := c.Entity(index)
	if err != nil {
		return err
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%s: %w", key, ErrLineBreak)
	}
	if !e.Properties.Has(key) && !ValidKey(key) {
		return &KeyError{Index: index, Key: key}
	}
	if e.Properties == nil {
		e.Properties = NewProperties()
	}
	e.Properties.Set(key, value)
	return nil
}

// Rejected combines the key errors of all entities, or returns nil.
func (c *Collection) Rejected() error {
	if c == nil {
		return nil
	}
	var err error
	for _, e := range c.Entities {
		for _, ke := range e.Rejected {
			err = multierr.Append(err, ke)
		}
	}
	return err
}

// Valid reports whether every property of every entity passes validation.
func (c *Collection) Valid() bool {
	if c == nil {
		return false
	}
	for _, e := range c.Entities {
		for _, ok := range ValidateEntity(e) {
			if !ok {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{Entities: make([]*Entity, len(c.Entities))}
	for i, e := range c.Entities {
		out.Entities[i] = e.Clone()
	}
	return out
}
