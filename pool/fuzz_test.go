package pool

import (
	"testing"

	"github.com/holiman/uint256"
)

// FuzzPrecedingMatchesLinearScan builds a history from the fuzz input, one
// byte per change (the gap to the previous sequence), and checks the binary
// search against a linear scan for every target.
func FuzzPrecedingMatchesLinearScan(f *testing.F) {
	f.Add([]byte{1, 0, 2, 5})
	f.Add([]byte{0, 0, 0})
	f.Add([]byte{9})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, gaps []byte) {
		h := NewHistory()
		var seqs []uint64
		seq := uint64(0)
		for _, g := range gaps {
			seq += uint64(g % 8)
			if err := h.Record(seq, uint256.NewInt(uint64(g))); err != nil {
				t.Fatalf("Record(%d): %v", seq, err)
			}
			if len(seqs) == 0 || seqs[len(seqs)-1] != seq {
				seqs = append(seqs, seq)
			}
		}

		for target := uint64(0); target <= seq+1; target++ {
			want, wantOK := linearPreceding(seqs, target)
			got, ok := h.Preceding(target)
			if ok != wantOK || got != want {
				t.Fatalf("Preceding(%d) = (%d, %v), want (%d, %v); seqs %v",
					target, got, ok, want, wantOK, seqs)
			}
		}
	})
}
