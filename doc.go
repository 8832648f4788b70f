// Package recordcache implements a read-through record cache in front of a
// backing key-value store (Redis first). It caches encoded records by primary
// id, remembers confirmed "not in the source of truth" lookups via negative
// markers, and resolves secondary (derived) keys to records in a single
// atomic server-side step.
//
// Components:
//   - Provider: byte store with TTL, multi-get, atomic indirect resolve and
//     ordered batches (Redis, or BigCache/Ristretto for local use).
//   - Codec[R]: (de)serializes R <-> []byte.
//   - Catalog: configured secondary indexes (name -> ordered record fields).
//   - Registry: one shared Redis client per {host, port, db} identity.
//
// Keys:
//
//	<id>                      - primary entries (encoded record)
//	<index>:<v1>:<v2>:...     - secondary entries (value is the primary id)
//
// Every fetch classifies the raw value into one of three states:
//
//	Absent    - key not in the cache
//	Negative  - looked up before, confirmed missing from the source of truth
//	Found     - decoded record
//
// The negative marker is the reserved wire value "0"; codecs must never
// produce it for a legitimate record.
package recordcache
