package hypertrie

import (
	"encoding/binary"

	"github.com/twmb/murmur3"
)

// entryHash computes the contribution of a single entry to an identifier.
// Two lowest bits are always clear, so XOR of any number of contributions
// never touches the tag bits.
func entryHash[V Value](key Key, v V) uint64 {
	buf := make([]byte, 0, 8*len(key)+8)
	for _, kp := range key {
		buf = binary.LittleEndian.AppendUint64(buf, kp)
	}
	buf = appendValue(buf, v)
	return murmur3.SeedSum64(IdentifierSeed, buf) &^ uint64(tagMask)
}
