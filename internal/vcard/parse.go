package vcard

import "strings"

// SplitEntities divides raw text into one block per entity. Entities are
// separated by a blank line; blocks holding only whitespace are dropped.
func SplitEntities(raw string) []string {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var blocks []string
	for _, block := range strings.Split(raw, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// ParseEntity turns one entity block into an Entity. BEGIN and END lines are
// dropped, VERSION sets Entity.Version, and keys failing ValidKey are recorded
// in Entity.Rejected instead of being stored.
func ParseEntity(block string, index int) *Entity {
	e := &Entity{Index: index, Properties: NewProperties()}

	for n, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "BEGIN") || strings.HasPrefix(line, "END") {
			continue
		}

		key, value, _ := strings.Cut(line, ":")
		if strings.HasPrefix(line, "VERSION") {
			e.Version = value
			continue
		}
		if !ValidKey(key) {
			e.Rejected = append(e.Rejected, &KeyError{Index: index, Line: n + 1, Key: key})
			continue
		}
		e.Properties.Set(key, value)
	}
	return e
}

// Load parses every entity in raw. Rejected keys do not fail the load; they are
// available from Collection.Rejected. ErrNoEntities is returned when raw holds
// no entity blocks.
func Load(raw string) (*Collection, error) {
	blocks := SplitEntities(raw)
	if len(blocks) == 0 {
		return nil, ErrNoEntities
	}
	c := &Collection{Entities: make([]*Entity, 0, len(blocks))}
	for i, block := range blocks {
		c.Entities = append(c.Entities, ParseEntity(block, i))
	}
	return c, nil
}
