package vcard

import "encoding/json"

// Property is a single key/value line of an entity.
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Properties is an insertion-ordered mapping of property keys to raw values.
// Setting an existing key replaces its value in place.
type Properties struct {
	keys   []string
	values map[string]string
}

// NewProperties builds Properties from pairs, applying them in order.
func NewProperties(pairs ...Property) *Properties {
	p := &Properties{values: make(map[string]string, len(pairs))}
	for _, kv := range pairs {
		p.Set(kv.Key, kv.Value)
	}
	return p
}

func (p *Properties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set replaces the value of key, or appends key when it is new. A nil
// *Properties is read-only; Set panics on it.
func (p *Properties) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *Properties) Delete(key string) {
	if p == nil {
		return
	}
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Pairs returns the properties in insertion order.
func (p *Properties) Pairs() []Property {
	if p == nil {
		return nil
	}
	out := make([]Property, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, Property{Key: k, Value: p.values[k]})
	}
	return out
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return NewProperties()
	}
	return NewProperties(p.Pairs()...)
}

// Equal reports whether both hold the same pairs in the same order.
func (p *Properties) Equal(o *Properties) bool {
	if p.Len() != o.Len() {
		return false
	}
	if p.Len() == 0 {
		return true
	}
	for i, k := range p.keys {
		if o.keys[i] != k || o.values[k] != p.values[k] {
			return false
		}
	}
	return true
}

func (p *Properties) MarshalJSON() ([]byte, error) {
	pairs := p.Pairs()
	if pairs == nil {
		pairs = []Property{}
	}
	return json.Marshal(pairs)
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	var pairs []Property
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	*p = *NewProperties(pairs...)
	return nil
}

// MarshalYAML renders the properties as an ordered sequence.
func (p *Properties) MarshalYAML() (interface{}, error) {
	return p.Pairs(), nil
}
