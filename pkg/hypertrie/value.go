package hypertrie

import (
	"encoding/binary"
	"math"
)

// Value is a set of types that can be stored in a hypertrie. Zero value of
// the type is the default one, it's never stored and denotes missing entry.
type Value interface {
	bool | int64 | uint64 | float64
}

// isBool reports whether V is a boolean value type. Boolean hypertries store
// keys only, all present entries have implicit true value.
func isBool[V Value]() bool {
	var v V
	_, ok := any(v).(bool)
	return ok
}

// trueValue returns true for boolean V and panics otherwise.
func trueValue[V Value]() V {
	var v V
	switch p := any(&v).(type) {
	case *bool:
		*p = true
	default:
		panic("bug: true value requested for non-boolean hypertrie")
	}
	return v
}

// isZero reports whether v is the default (absent) value.
func isZero[V Value](v V) bool {
	var z V
	return v == z
}

// appendValue appends fixed-size little-endian encoding of v to buf. Boolean
// values contribute nothing since they're implied by key presence.
func appendValue[V Value](buf []byte, v V) []byte {
	switch x := any(v).(type) {
	case bool:
		return buf
	case int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(x))
	case uint64:
		return binary.LittleEndian.AppendUint64(buf, x)
	case float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
	default:
		panic("bug: unsupported value type")
	}
}
