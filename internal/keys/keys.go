// Package keys builds and validates secondary cache keys.
//
// A secondary key is the index name and its field values joined with the
// separator: "<index>:<v1>:<v2>". Values must be non-empty and must not
// contain the separator: a value with ":" inside would make the pairs
// ("a:b","c") and ("a","b:c") build the same key.
package keys

import (
	"fmt"
	"strings"
)

// Separator joins the index name and field values inside a secondary key.
const Separator = ":"

// Secondary returns the cache key for the named index and its values.
// Values must already be validated with Check.
func Secondary(index string, values []string) string {
	return index + Separator + strings.Join(values, Separator)
}

// Check validates a single field value for use in a secondary key.
func Check(value string) error {
	if value == "" {
		return fmt.Errorf("empty value")
	}
	if strings.Contains(value, Separator) {
		return fmt.Errorf("value %q contains the key separator %q", value, Separator)
	}
	return nil
}
