package grammar

import "math/bits"

// LiveMask holds one bit per rule. Bit n set means rule n may still start at
// the owning cell. It is a scan cache only; the matcher never trusts it.
type LiveMask []uint64

// maskWords returns the word count needed to hold one bit per rule.
func maskWords(rules int) int {
	if rules < 1 {
		rules = 1
	}
	return (rules + 63) / 64
}

// IsLive reports whether bit n is set. Bits outside the mask read as dead.
func (m LiveMask) IsLive(n int) bool {
	if n < 0 || n/64 >= len(m) {
		return false
	}
	return m[n/64]&(1<<(uint(n)%64)) != 0
}

// Kill clears bit n.
func (m LiveMask) Kill(n int) {
	if n < 0 || n/64 >= len(m) {
		return
	}
	m[n/64] &^= 1 << (uint(n) % 64)
}

// SetAll sets every bit.
func (m LiveMask) SetAll() {
	for i := range m {
		m[i] = ^uint64(0)
	}
}

// Count returns the number of set bits.
func (m LiveMask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}
