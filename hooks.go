package recordcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
//
// key is the storage key that was consulted: a primary id for direct
// fetches, a derived index key for index fetches.
type Hooks interface {
	// A stored record was found and decoded.
	Hit(key string)

	// No entry exists for the key.
	Miss(key string)

	// The negative marker was found: the id was looked up before and
	// confirmed missing from the source of truth.
	Negative(key string)

	// Stored bytes failed to decode. The error is also returned to the
	// caller; the hook exists so operators can count corruption.
	DecodeError(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                {}
func (NopHooks) Miss(string)               {}
func (NopHooks) Negative(string)           {}
func (NopHooks) DecodeError(string, error) {}
