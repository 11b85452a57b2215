// Package events defines the records the dividend engine emits for every
// state change, and the sinks that receive them.
package events

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Event is a record of one state change.
type Event interface {
	// Name is the short event name.
	Name() string
	// Signature is the canonical typed signature, e.g. "PoolCreated(address)".
	Signature() string
}

// Topic returns the keccak-256 hash of e's signature, the identifier an EVM
// host would index the event under.
func Topic(e Event) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(e.Signature()))
	var out common.Hash
	h.Sum(out[:0])
	return out
}

// PoolCreated is emitted when a pool is allocated for an asset.
type PoolCreated struct {
	Asset common.Address
}

func (PoolCreated) Name() string      { return "PoolCreated" }
func (PoolCreated) Signature() string { return "PoolCreated(address)" }

// TokensLocked is emitted after a user's lock grows.
type TokensLocked struct {
	Asset   common.Address
	User    common.Address
	Amount  *uint256.Int
	NewLock *uint256.Int
	Seq     uint64 // distribution the change takes effect for
}

func (TokensLocked) Name() string { return "TokensLocked" }
func (TokensLocked) Signature() string {
	return "TokensLocked(address,address,uint256,uint256,uint256)"
}

// TokensUnlocked is emitted after a user's lock shrinks.
type TokensUnlocked struct {
	Asset   common.Address
	User    common.Address
	Amount  *uint256.Int
	NewLock *uint256.Int
	Seq     uint64
}

func (TokensUnlocked) Name() string { return "TokensUnlocked" }
func (TokensUnlocked) Signature() string {
	return "TokensUnlocked(address,address,uint256,uint256,uint256)"
}

// DividendsDistributed is emitted when a distribution is created.
type DividendsDistributed struct {
	Seq         uint64
	Initiator   common.Address
	SourceAsset common.Address
	PayoutAsset common.Address
	Amount      *uint256.Int
	Mode        string
}

func (DividendsDistributed) Name() string { return "DividendsDistributed" }
func (DividendsDistributed) Signature() string {
	return "DividendsDistributed(uint256,address,address,address,uint256,uint8)"
}

// DividendClaimed is emitted after a claim has been paid.
type DividendClaimed struct {
	Seq         uint64
	User        common.Address
	PayoutAsset common.Address
	Amount      *uint256.Int
}

func (DividendClaimed) Name() string { return "DividendClaimed" }
func (DividendClaimed) Signature() string {
	return "DividendClaimed(uint256,address,address,uint256)"
}

// CustomPayout is emitted for each recipient paid by a custom distribution.
type CustomPayout struct {
	Initiator   common.Address
	PayoutAsset common.Address
	User        common.Address
	Amount      *uint256.Int
	Index       int
}

func (CustomPayout) Name() string { return "CustomPayout" }
func (CustomPayout) Signature() string {
	return "CustomPayout(address,address,address,uint256,uint256)"
}

// CustomDistributed closes a custom distribution with the number of
// recipients actually paid.
type CustomDistributed struct {
	Initiator   common.Address
	PayoutAsset common.Address
	TotalAmount *uint256.Int
	Paid        int
	Requested   int
}

func (CustomDistributed) Name() string { return "CustomDistributed" }
func (CustomDistributed) Signature() string {
	return "CustomDistributed(address,address,uint256,uint256,uint256)"
}

// BatchTruncated is emitted when a batch stops early on its budget.
type BatchTruncated struct {
	Op        string
	User      common.Address
	Processed int
	Requested int
	Used      uint64
}

func (BatchTruncated) Name() string { return "BatchTruncated" }
func (BatchTruncated) Signature() string {
	return "BatchTruncated(string,address,uint256,uint256,uint256)"
}
