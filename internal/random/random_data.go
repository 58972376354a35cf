/*
Package random provides deterministic generators of hypertrie keys and entry
sets used in tests.
*/
package random

import (
	"math/rand"
)

// New returns a new deterministic source of random data.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Key returns a random key of the given depth with key parts in [1, maxPart].
func Key(r *rand.Rand, depth int, maxPart uint64) []uint64 {
	k := make([]uint64, depth)
	for i := range k {
		k[i] = 1 + uint64(r.Int63n(int64(maxPart)))
	}
	return k
}

// Keys returns n distinct random keys of the given depth with key parts in
// [1, maxPart]. maxPart^depth must be at least n.
func Keys(r *rand.Rand, n, depth int, maxPart uint64) [][]uint64 {
	seen := make(map[string]struct{}, n)
	res := make([][]uint64, 0, n)
	for len(res) < n {
		k := Key(r, depth, maxPart)
		s := string(encode(k))
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, k)
	}
	return res
}

// Shuffle returns a shuffled copy of keys.
func Shuffle(r *rand.Rand, keys [][]uint64) [][]uint64 {
	res := make([][]uint64, len(keys))
	copy(res, keys)
	r.Shuffle(len(res), func(i, j int) { res[i], res[j] = res[j], res[i] })
	return res
}

func encode(k []uint64) []byte {
	buf := make([]byte, 0, 8*len(k))
	for _, kp := range k {
		for i := 0; i < 8; i++ {
			buf = append(buf, byte(kp>>(8*i)))
		}
	}
	return buf
}
