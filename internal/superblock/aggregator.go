package superblock

import (
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// supermajorityNumerator/Denominator set the bar votes must reach, at
// least two thirds of the committee rounded up, before a superblock is considered consolidated by consensus
// (spec.md §4.7 "votes are aggregated until a supermajority is reached").
const (
	supermajorityNumerator   = 2
	supermajorityDenominator = 3
)

// Vote is one committee member's signature over a candidate superblock
// hash (spec.md §4.7, §6 AddSuperBlockVote).
type Vote struct {
	SuperblockIndex uint32              `json:"superblockIndex"`
	SuperblockHash  types.Hash          `json:"superblockHash"`
	Voter           types.PublicKeyHash `json:"voter"`
	Signature       []byte              `json:"signature"`
	PublicKey       []byte              `json:"publicKey"`
}

// Aggregator collects votes for a single candidate superblock index and
// reports once a supermajority of the signing committee agrees on the
// same superblock hash.
type Aggregator struct {
	index     uint32
	committee map[types.PublicKeyHash]struct{}
	votes     map[types.Hash]map[types.PublicKeyHash]struct{} // superblock hash -> voters agreeing
}

// NewAggregator starts vote collection for superblock index, restricted
// to committee (as selected by SelectCommittee for that index).
func NewAggregator(index uint32, committee []types.PublicKeyHash) *Aggregator {
	set := make(map[types.PublicKeyHash]struct{}, len(committee))
	for _, pkh := range committee {
		set[pkh] = struct{}{}
	}
	return &Aggregator{index: index, committee: set, votes: make(map[types.Hash]map[types.PublicKeyHash]struct{})}
}

// AddVote validates and records a single vote, rejecting votes for the
// wrong index, from a non-committee member, or with a bad signature.
func (a *Aggregator) AddVote(v Vote) error {
	if v.SuperblockIndex != a.index {
		return types.ErrWrongBlocksForSuperblock(v.SuperblockIndex, a.index, a.index)
	}
	if _, ok := a.committee[v.Voter]; !ok {
		return types.ErrNotEligible()
	}
	pub, err := xcrypto.ParsePublicKey(v.PublicKey)
	if err != nil {
		return types.ErrVerifyTransactionSignatureFail(v.SuperblockHash, err.Error())
	}
	if xcrypto.PKHFromPublicKey(pub) != v.Voter {
		return types.ErrTxPublicKeyHashMismatch(xcrypto.PKHFromPublicKey(pub), v.Voter)
	}
	if !xcrypto.Verify(pub, v.SuperblockHash, v.Signature) {
		return types.ErrVerifyTransactionSignatureFail(v.SuperblockHash, "vote signature does not verify")
	}

	voters, ok := a.votes[v.SuperblockHash]
	if !ok {
		voters = make(map[types.PublicKeyHash]struct{})
		a.votes[v.SuperblockHash] = voters
	}
	voters[v.Voter] = struct{}{}
	return nil
}

// Consolidated reports the superblock hash that has reached supermajority
// agreement among the committee, if any.
func (a *Aggregator) Consolidated() (types.Hash, bool) {
	needed := ceilFrac(len(a.committee), supermajorityNumerator, supermajorityDenominator)
	for hash, voters := range a.votes {
		if len(voters) >= needed {
			return hash, true
		}
	}
	return types.Hash{}, false
}

// VoteCount reports how many committee members have voted for hash so
// far, for progress reporting.
func (a *Aggregator) VoteCount(hash types.Hash) int {
	return len(a.votes[hash])
}

func ceilFrac(total, num, den int) int {
	if den == 0 {
		return total
	}
	return (total*num + den - 1) / den
}
