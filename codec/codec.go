// Package codec provides pluggable record serialization.
//
// One caveat applies to every codec used with the record cache: the wire
// value "0" (the single byte 0x30) is reserved as the negative marker.
// Struct records are safe with any codec here, but identity-style codecs
// (Bytes, String) and bare numeric record types can emit exactly "0" for
// a legitimate value, which a fetch would then misread as Negative.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
