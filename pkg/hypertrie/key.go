package hypertrie

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// KeyPart is a single coordinate of a key.
type KeyPart = uint64

// Key is an ordered tuple of key parts, its length is equal to the depth of
// the hypertrie it's used with.
type Key []KeyPart

// Entry is a key with an associated value.
type Entry[V Value] struct {
	Key   Key
	Value V
}

// SliceKeyPart is either a fixed key part or a wildcard.
type SliceKeyPart struct {
	KeyPart  KeyPart
	Wildcard bool
}

// SliceKey is a partial key used for slicing, wildcard positions are kept
// in the result.
type SliceKey []SliceKeyPart

// Any is a wildcard slice key part.
var Any = SliceKeyPart{Wildcard: true}

// Fixed returns a fixed slice key part.
func Fixed(kp KeyPart) SliceKeyPart {
	return SliceKeyPart{KeyPart: kp}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, kp := range k {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(kp, 10))
	}
	b.WriteByte(')')
	return b.String()
}

// Equals checks whether two keys are the same.
func (k Key) Equals(other Key) bool {
	return slices.Equal(k, other)
}

// Compare compares keys lexicographically.
func (k Key) Compare(other Key) int {
	return slices.Compare(k, other)
}

// without returns a copy of k with position pos removed.
func (k Key) without(pos int) Key {
	res := make(Key, 0, len(k)-1)
	res = append(res, k[:pos]...)
	return append(res, k[pos+1:]...)
}

// String implements fmt.Stringer.
func (sk SliceKey) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range sk {
		if i != 0 {
			b.WriteByte(',')
		}
		if p.Wildcard {
			b.WriteByte('*')
		} else {
			b.WriteString(strconv.FormatUint(p.KeyPart, 10))
		}
	}
	b.WriteByte(')')
	return b.String()
}

// ParseSliceKey parses comma-separated slice key, "*" denotes a wildcard,
// e.g. "1,*,*".
func ParseSliceKey(s string) (SliceKey, error) {
	parts := strings.Split(s, ",")
	res := make(SliceKey, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "*" {
			res = append(res, Any)
			continue
		}
		kp, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid slice key part %q: %w", p, err)
		}
		res = append(res, Fixed(kp))
	}
	return res, nil
}

// fixedCount returns the number of fixed positions in sk.
func (sk SliceKey) fixedCount() int {
	var n int
	for _, p := range sk {
		if !p.Wildcard {
			n++
		}
	}
	return n
}

// fullKey converts sk without wildcards into a Key.
func (sk SliceKey) fullKey() Key {
	k := make(Key, len(sk))
	for i := range sk {
		k[i] = sk[i].KeyPart
	}
	return k
}

// without returns a copy of sk with position pos removed.
func (sk SliceKey) without(pos int) SliceKey {
	res := make(SliceKey, 0, len(sk)-1)
	res = append(res, sk[:pos]...)
	return append(res, sk[pos+1:]...)
}

// cacheKey returns compact representation of sk used as a cache key.
func (sk SliceKey) cacheKey() string {
	return sk.String()
}
