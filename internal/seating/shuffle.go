// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package seating

// HashSeed reduces a string to a 32-bit seed using the rolling hash
// hash = hash*31 + c, truncated to 32 bits at every step. The recurrence
// (and the LCG below) is fixed: changing either would silently reorder
// every previously printed assignment plan.
func HashSeed(s string) int32 {
	var hash uint32
	for i := 0; i < len(s); i++ {
		hash = hash*31 + uint32(s[i])
	}
	return int32(hash)
}

// lcgState is a linear congruential generator: x <- (x*1103515245 + 12345) mod 2^31.
type lcgState struct {
	x uint64
}

func newLCG(seed int32) *lcgState {
	s := int64(seed)
	if s < 0 {
		s = -s
	}
	if s == 0 {
		s = 1
	}
	return &lcgState{x: uint64(s)}
}

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// next returns the next pseudo-random value in [0, 2^31).
func (l *lcgState) next() uint64 {
	l.x = (l.x*lcgMultiplier + lcgIncrement) % lcgModulus
	return l.x
}

// ShuffleWithSeed returns a new slice containing a deterministic
// Fisher-Yates permutation of xs, driven by the LCG seeded from seed.
// Same (xs, seed) always yields the same permutation; distinct seeds
// almost surely yield distinct permutations for len(xs) >= 4.
func ShuffleWithSeed(xs []int, seed int32) []int {
	out := append([]int(nil), xs...)
	gen := newLCG(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(gen.next() % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SeedFromKey derives a shuffle seed from a string key such as
// "{eventID}:{categoryID}". It takes no integer seed; a caller with an
// operator-supplied seed uses that value directly instead.
func SeedFromKey(key string) int32 {
	return HashSeed(key)
}
