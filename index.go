package recordcache

import (
	"fmt"

	"github.com/unkn0wn-root/recordcache/internal/keys"
)

// Index is one configured secondary index: a name and the ordered record
// fields whose values build the secondary key.
type Index struct {
	Name   string
	Fields []string
}

// Catalog holds the secondary indexes of one Cache instance. It is built
// once at construction and immutable afterwards.
type Catalog struct {
	order  []Index
	byName map[string][]string
}

func newCatalog(defs []IndexConfig) (*Catalog, error) {
	t := &Catalog{byName: make(map[string][]string, len(defs))}
	for i, d := range defs {
		if d.Name == "" {
			return nil, &ConfigError{
				Path:   fmt.Sprintf("indexes[%d].name", i),
				Reason: "must not be empty",
			}
		}
		if len(d.Fields) == 0 {
			return nil, &ConfigError{
				Path:   fmt.Sprintf("indexes[%d].fields", i),
				Reason: "must name at least one field",
			}
		}
		for j, f := range d.Fields {
			if f == "" {
				return nil, &ConfigError{
					Path:   fmt.Sprintf("indexes[%d].fields[%d]", i, j),
					Reason: "must not be empty",
				}
			}
		}
		if _, dup := t.byName[d.Name]; dup {
			return nil, &ConfigError{
				Path:   fmt.Sprintf("indexes[%d].name", i),
				Reason: fmt.Sprintf("duplicate index %q", d.Name),
			}
		}
		fields := append([]string(nil), d.Fields...)
		t.order = append(t.order, Index{Name: d.Name, Fields: fields})
		t.byName[d.Name] = fields
	}
	return t, nil
}

// Empty reports whether no indexes are configured.
func (t *Catalog) Empty() bool { return len(t.order) == 0 }

// Has reports whether the named index is configured.
func (t *Catalog) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// All returns the indexes in configuration order. Callers must not mutate
// the returned slice.
func (t *Catalog) All() []Index { return t.order }

// Key builds the secondary cache key for the named index from values given
// in field order. It validates arity and each value (non-empty, no key
// separator).
func (t *Catalog) Key(name string, values []string) (string, error) {
	fields, ok := t.byName[name]
	if !ok {
		return "", &UnknownIndexError{Name: name}
	}
	if len(values) != len(fields) {
		return "", &IndexKeyError{
			Index:  name,
			Reason: fmt.Sprintf("expected %d value(s), got %d", len(fields), len(values)),
		}
	}
	for i, v := range values {
		if err := keys.Check(v); err != nil {
			return "", &IndexKeyError{Index: name, Field: fields[i], Reason: err.Error()}
		}
	}
	return keys.Secondary(name, values), nil
}
