package pool

import (
	"sort"

	"github.com/holiman/uint256"
)

// History is one user's sparse lock timeline within a pool. An entry at
// sequence N holds the amount the user's lock was set to as of the start of
// distribution N; sequences without an entry inherit the closest earlier one.
type History struct {
	amounts map[uint64]*uint256.Int
	seqs    []uint64 // strictly ascending
	changed map[uint64]bool
}

// NewHistory creates an empty timeline.
func NewHistory() *History {
	return &History{
		amounts: make(map[uint64]*uint256.Int),
		changed: make(map[uint64]bool),
	}
}

// Record sets the lock amount as of the start of distribution seq. Repeated
// records at the same seq overwrite the amount without growing the change list.
func (h *History) Record(seq uint64, amount *uint256.Int) error {
	if n := len(h.seqs); n > 0 && h.seqs[n-1] > seq {
		return ErrSequenceRegression
	}
	h.amounts[seq] = amount.Clone()
	if !h.changed[seq] {
		h.seqs = append(h.seqs, seq)
		h.changed[seq] = true
	}
	return nil
}

// Preceding returns the largest change sequence strictly less than target.
// Runs in O(log k) over the k recorded changes.
func (h *History) Preceding(target uint64) (uint64, bool) {
	// First index whose value is greater than target.
	low := sort.Search(len(h.seqs), func(i int) bool { return h.seqs[i] > target })

	idx := low - 1
	if h.changed[target] {
		// target itself sits at low-1.
		idx = low - 2
	}
	if idx < 0 {
		return 0, false
	}
	return h.seqs[idx], true
}

// ChangedAt reports whether a change was recorded at seq.
func (h *History) ChangedAt(seq uint64) bool { return h.changed[seq] }

// At returns the amount recorded at exactly seq.
func (h *History) At(seq uint64) (*uint256.Int, bool) {
	amt, ok := h.amounts[seq]
	if !ok {
		return new(uint256.Int), false
	}
	return amt.Clone(), true
}

// LockAt reconstructs the lock held immediately before distribution seq was
// created. A recorded zero at seq means the user had fully unlocked; with no
// entry at seq the closest earlier change applies; with no earlier change the
// user held nothing.
func (h *History) LockAt(seq uint64) *uint256.Int {
	if amt, ok := h.amounts[seq]; ok && !amt.IsZero() {
		return amt.Clone()
	}
	if h.changed[seq] {
		return new(uint256.Int)
	}
	if prev, ok := h.Preceding(seq); ok {
		return h.amounts[prev].Clone()
	}
	return new(uint256.Int)
}

// Latest returns the most recently recorded amount, or zero.
func (h *History) Latest() *uint256.Int {
	if len(h.seqs) == 0 {
		return new(uint256.Int)
	}
	return h.amounts[h.seqs[len(h.seqs)-1]].Clone()
}

// Seqs returns a copy of the ascending change sequences.
func (h *History) Seqs() []uint64 {
	out := make([]uint64, len(h.seqs))
	copy(out, h.seqs)
	return out
}

// Len returns the number of recorded changes.
func (h *History) Len() int { return len(h.seqs) }
