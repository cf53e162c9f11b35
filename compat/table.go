package compat

import "sort"

// Table maps package (group) names to compatibility transforms.
// The zero value and nil are empty tables.
type Table struct {
	transforms map[string]Transform
}

// NewTable creates a table from the given entries. The map is copied.
func NewTable(entries map[string]Transform) *Table {
	t := &Table{transforms: make(map[string]Transform, len(entries))}
	for name, fn := range entries {
		if fn != nil {
			t.transforms[name] = fn
		}
	}
	return t
}

// DefaultTable returns the built-in table: @angular/core guarantees
// compatibility with its next major.
func DefaultTable() *Table {
	return NewTable(map[string]Transform{
		"@angular/core": MajorCompatGuarantee(DefaultPrereleaseMinors),
	})
}

// With returns a copy of t with name mapped to fn.
func (t *Table) With(name string, fn Transform) *Table {
	var entries map[string]Transform
	if t != nil {
		entries = make(map[string]Transform, len(t.transforms)+1)
		for k, v := range t.transforms {
			entries[k] = v
		}
	} else {
		entries = make(map[string]Transform, 1)
	}
	entries[name] = fn
	return NewTable(entries)
}

// Lookup returns the transform registered for name.
func (t *Table) Lookup(name string) (Transform, bool) {
	if t == nil {
		return nil, false
	}
	fn, ok := t.transforms[name]
	return fn, ok
}

// Extend applies the transform registered for name to rng. Names without an
// entry get rng back unchanged.
func (t *Table) Extend(name, rng string) string {
	fn, ok := t.Lookup(name)
	if !ok {
		return rng
	}
	return fn(rng)
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.transforms))
	for name := range t.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.transforms)
}
