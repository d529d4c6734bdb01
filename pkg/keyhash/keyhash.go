// Package keyhash supplies the pluggable key-hash function the Table treats
// as an external, fixed-contract dependency. This package only pins down
// the Go shape (a plain func(key []byte) int32) and ships a default
// implementation so the Table is usable out of the box.
package keyhash

import "github.com/cespare/xxhash/v2"

// Func computes a 32-bit hash of a key. Implementations need not be
// cryptographically strong; they only need reasonable distribution across
// the int32 space, since poor distribution shows up as HashOffsets
// collision chains, not correctness bugs.
type Func func(key []byte) int32

// XXHash32 is the default Func, truncating the 64-bit xxhash digest of key
// to its low 32 bits.
func XXHash32(key []byte) int32 {
	return int32(xxhash.Sum64(key))
}
