package recordcache

import (
	"fmt"
)

// ConfigError reports an invalid configuration value. It is returned at
// construction time only; a constructed Cache never raises it.
type ConfigError struct {
	Path   string // dotted path into the config, e.g. "indexes[2].fields"
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("recordcache: config %s: %s", e.Path, e.Reason)
}

// UnknownIndexError reports a fetch or store that referenced an index name
// not present in the catalog. No network call is made before it is returned.
type UnknownIndexError struct {
	Name string
}

func (e *UnknownIndexError) Error() string {
	return fmt.Sprintf("recordcache: no such index %q", e.Name)
}

// IndexKeyError reports that a secondary key could not be built: a missing
// or empty record field, a value containing the key separator, or a value
// count that does not match the index definition. Field is empty when the
// problem is not tied to a single field.
type IndexKeyError struct {
	Index  string
	Field  string
	Reason string
}

func (e *IndexKeyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("recordcache: index %q field %q: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("recordcache: index %q: %s", e.Index, e.Reason)
}

// DecodeError reports stored bytes that the codec could not decode. The
// cache does not attempt recovery; the entry is left in place.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("recordcache: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
