package hypertrie

import (
	"fmt"
)

// Identifier is a content hash of a node's entry set. The lowest bit tags
// single-entry nodes, the second one marks in-place identifiers of boolean
// depth-1 single-entry nodes that carry their key part in the remaining bits
// instead of a hash. Zero Identifier denotes an empty relation.
type Identifier uint64

const (
	// IdentifierSeed is the seed of per-entry hash function.
	IdentifierSeed uint64 = 0x9e3779b97f4a7c15

	singleEntryTag Identifier = 1 << 0
	inPlaceTag     Identifier = 1 << 1
	tagMask                   = singleEntryTag | inPlaceTag

	// MaxInPlaceKeyPart is the maximum key part that can be packed into an
	// in-place identifier.
	MaxInPlaceKeyPart KeyPart = 1<<62 - 1
)

// EmptyIdentifier identifies an empty relation.
const EmptyIdentifier Identifier = 0

// IsEmpty checks whether id denotes an empty relation.
func (id Identifier) IsEmpty() bool {
	return id == EmptyIdentifier
}

// IsSingleEntry checks whether id belongs to a single-entry node (including
// in-place ones).
func (id Identifier) IsSingleEntry() bool {
	return id&singleEntryTag != 0
}

// IsFull checks whether id belongs to a full node.
func (id Identifier) IsFull() bool {
	return !id.IsEmpty() && !id.IsSingleEntry()
}

// IsInPlace checks whether id is an in-place identifier that doesn't refer
// to any stored node.
func (id Identifier) IsInPlace() bool {
	return id&tagMask == tagMask
}

// InPlaceKeyPart returns the key part packed into an in-place identifier.
func (id Identifier) InPlaceKeyPart() KeyPart {
	if !id.IsInPlace() {
		panic(fmt.Sprintf("bug: %s is not an in-place identifier", id))
	}
	return KeyPart(id >> 2)
}

// String implements fmt.Stringer.
func (id Identifier) String() string {
	switch {
	case id.IsEmpty():
		return "empty"
	case id.IsInPlace():
		return fmt.Sprintf("inplace:%d", id.InPlaceKeyPart())
	case id.IsSingleEntry():
		return fmt.Sprintf("sen:%016x", uint64(id))
	default:
		return fmt.Sprintf("fn:%016x", uint64(id))
	}
}

// canInPlace reports whether a single entry with the given key can be packed
// into an in-place identifier for V.
func canInPlace[V Value](key Key) bool {
	return len(key) == 1 && isBool[V]() && key[0] <= MaxInPlaceKeyPart
}

func inPlaceIdentifier(kp KeyPart) Identifier {
	return Identifier(kp<<2) | tagMask
}

// RawHash returns untagged XOR-combinable hash of the entry set id denotes.
// Raw hashes are modified with AddEntry, RemoveEntry and ChangeValue and turned
// back into identifiers with Retag.
func RawHash[V Value](id Identifier) uint64 {
	if id.IsInPlace() {
		return entryHash(Key{id.InPlaceKeyPart()}, trueValue[V]())
	}
	return uint64(id &^ tagMask)
}

// AddEntry adds the contribution of an entry to an untagged raw hash (see
// RawHash).
func AddEntry[V Value](raw uint64, key Key, v V) uint64 {
	return raw ^ entryHash(key, v)
}

// RemoveEntry removes the contribution of an entry from raw hash. It's the
// inverse of AddEntry for the same entry.
func RemoveEntry[V Value](raw uint64, key Key, v V) uint64 {
	return raw ^ entryHash(key, v)
}

// ChangeValue replaces the contribution of (key, oldV) with (key, newV).
func ChangeValue[V Value](raw uint64, key Key, oldV, newV V) uint64 {
	if isBool[V]() {
		panic("bug: value change requested for boolean hypertrie")
	}
	return AddEntry(RemoveEntry(raw, key, oldV), key, newV)
}

// tagIdentifier produces an identifier from raw hash of a set with count
// entries. sole must be the only entry of the set if count is 1, it's used
// for in-place packing.
func tagIdentifier[V Value](raw uint64, count int, sole *Entry[V]) Identifier {
	switch {
	case count == 0:
		if raw != 0 {
			panic("bug: non-zero hash for an empty entry set")
		}
		return EmptyIdentifier
	case count == 1:
		if sole != nil && canInPlace[V](sole.Key) {
			return inPlaceIdentifier(sole.Key[0])
		}
		return Identifier(raw) | singleEntryTag
	default:
		if raw == 0 {
			panic("bug: identifier collision with an empty entry set")
		}
		return Identifier(raw)
	}
}

// Retag turns a raw hash of a set with count entries into an identifier. sole
// must point to the only entry of the set when count is 1, it allows to pack
// the entry in place, nil sole always produces a stored single-entry
// identifier.
func Retag[V Value](raw uint64, count int, sole *Entry[V]) Identifier {
	return tagIdentifier(raw, count, sole)
}

// SingleEntryIdentifier returns an identifier of a relation containing the
// only entry.
func SingleEntryIdentifier[V Value](key Key, v V) Identifier {
	e := Entry[V]{Key: key, Value: v}
	return tagIdentifier(entryHash(key, v), 1, &e)
}

// EntrySetIdentifier returns an identifier of a relation containing exactly
// the given (distinct) entries.
func EntrySetIdentifier[V Value](entries []Entry[V]) Identifier {
	var raw uint64
	for _, e := range entries {
		raw = AddEntry(raw, e.Key, e.Value)
	}
	var sole *Entry[V]
	if len(entries) == 1 {
		sole = &entries[0]
	}
	return tagIdentifier(raw, len(entries), sole)
}

// Combine merges identifiers of two disjoint non-empty entry sets into an
// identifier of their union which is always a full one.
func Combine[V Value](a, b Identifier) Identifier {
	if a.IsEmpty() || b.IsEmpty() {
		panic("bug: can't combine empty identifiers")
	}
	return tagIdentifier[V](RawHash[V](a)^RawHash[V](b), 2, nil)
}
