package distribution

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Record is the exported form of one distribution and its claims.
type Record struct {
	Sequence            uint64
	SourceAsset         common.Address
	PayoutAsset         common.Address
	TotalAmount         string // decimal
	Mode                Mode
	SnapshotLockerCount uint64
	SnapshotTotalLocked string // decimal
	Initiator           common.Address
	CreatedAt           time.Time
	Claimed             []common.Address // address order
}

// Export returns every distribution in sequence order.
func (l *Ledger) Export() []Record {
	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		var claimed []common.Address
		for u := range r.claimed {
			claimed = append(claimed, u)
		}
		sort.Slice(claimed, func(i, j int) bool { return bytes.Compare(claimed[i][:], claimed[j][:]) < 0 })

		d := r.dist
		out = append(out, Record{
			Sequence:            d.Sequence,
			SourceAsset:         d.SourceAsset,
			PayoutAsset:         d.PayoutAsset,
			TotalAmount:         d.TotalAmount.Dec(),
			Mode:                d.Mode,
			SnapshotLockerCount: d.SnapshotLockerCount,
			SnapshotTotalLocked: d.SnapshotTotalLocked.Dec(),
			Initiator:           d.Initiator,
			CreatedAt:           d.CreatedAt,
			Claimed:             claimed,
		})
	}
	return out
}

// ImportLedger rebuilds a ledger from exported records, which must be
// contiguous from sequence 1.
func ImportLedger(records []Record) (*Ledger, error) {
	l := NewLedger()
	for _, rec := range records {
		if rec.Sequence != l.NextSeq() {
			return nil, fmt.Errorf("%w: sequence %d, expected %d", ErrInvalidRecord, rec.Sequence, l.NextSeq())
		}
		total, err := uint256.FromDecimal(rec.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: distribution %d total: %w", ErrInvalidRecord, rec.Sequence, err)
		}
		snapTotal, err := uint256.FromDecimal(rec.SnapshotTotalLocked)
		if err != nil {
			return nil, fmt.Errorf("%w: distribution %d snapshot: %w", ErrInvalidRecord, rec.Sequence, err)
		}
		if _, err := l.Create(Params{
			SourceAsset:         rec.SourceAsset,
			PayoutAsset:         rec.PayoutAsset,
			TotalAmount:         total,
			Mode:                rec.Mode,
			SnapshotLockerCount: rec.SnapshotLockerCount,
			SnapshotTotalLocked: snapTotal,
			Initiator:           rec.Initiator,
			CreatedAt:           rec.CreatedAt,
		}); err != nil {
			return nil, fmt.Errorf("%w: distribution %d: %w", ErrInvalidRecord, rec.Sequence, err)
		}
		for _, u := range rec.Claimed {
			if err := l.MarkClaimed(rec.Sequence, u); err != nil {
				return nil, fmt.Errorf("%w: distribution %d: %w", ErrInvalidRecord, rec.Sequence, err)
			}
		}
	}
	return l, nil
}
