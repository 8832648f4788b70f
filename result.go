package recordcache

// State classifies what a fetch found at a key.
type State uint8

const (
	// Absent means the key is not in the cache. The caller decides whether
	// to consult the source of truth.
	Absent State = iota

	// Negative means the key was looked up before and confirmed missing
	// from the source of truth (a stored negative marker).
	Negative

	// Found means an encoded record was present and decoded.
	Found
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Negative:
		return "negative"
	case Found:
		return "found"
	default:
		return "unknown"
	}
}

// Result is the outcome of one fetch. Record is meaningful only when
// State == Found; otherwise it is the zero value of R.
type Result[R any] struct {
	State  State
	Record R
}

// Hit reports whether a record was found.
func (r Result[R]) Hit() bool { return r.State == Found }
