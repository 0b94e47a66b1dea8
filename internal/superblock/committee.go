package superblock

import (
	"sort"

	"github.com/witnet-go/witnet-core/internal/types"
)

// minCommitteeSize is the floor the rotating committee never shrinks
// below, regardless of how many periods have elapsed (spec.md §4.7
// "size shrinks over time").
const minCommitteeSize = 10

// committeeShrinkPeriods is how many superblock periods it takes the
// committee to shrink by half, down to minCommitteeSize.
const committeeShrinkPeriods = 100

// CommitteeSize computes the rotating committee's size for superblock
// index, starting at the full ARS and halving every
// committeeShrinkPeriods periods down to minCommitteeSize.
func CommitteeSize(index uint32, arsSize int) int {
	if arsSize <= minCommitteeSize {
		return arsSize
	}
	halvings := int(index) / committeeShrinkPeriods
	size := arsSize
	for i := 0; i < halvings && size > minCommitteeSize; i++ {
		size /= 2
	}
	if size < minCommitteeSize {
		size = minCommitteeSize
	}
	return size
}

// SelectCommittee deterministically picks the signing committee for
// superblock index out of members: every member's eligibility hash is
// H(index || pkh), and the lowest CommitteeSize(index, len(members))
// hashes win (spec.md §4.7, non-goal: "defining superblock signing
// committee selection beyond its inputs" — index and ARS membership are
// the only inputs it promises, so any deterministic, hash-ordered
// selection over those two inputs satisfies it).
func SelectCommittee(index uint32, members []types.PublicKeyHash) []types.PublicKeyHash {
	size := CommitteeSize(index, len(members))
	if size >= len(members) {
		out := append([]types.PublicKeyHash(nil), members...)
		sortByEligibility(out, index)
		return out
	}

	ranked := append([]types.PublicKeyHash(nil), members...)
	sortByEligibility(ranked, index)
	return ranked[:size]
}

func sortByEligibility(members []types.PublicKeyHash, index uint32) {
	keyOf := func(pkh types.PublicKeyHash) types.Hash {
		buf := make([]byte, 0, 24)
		buf = appendU32(buf, index)
		buf = append(buf, pkh[:]...)
		return types.HashFromBytes(buf)
	}
	sort.Slice(members, func(i, j int) bool {
		return keyOf(members[i]).Cmp(keyOf(members[j])) < 0
	})
}

// IsCommitteeMember reports whether pkh is part of the signing committee
// for superblock index given the current ARS membership.
func IsCommitteeMember(index uint32, members []types.PublicKeyHash, pkh types.PublicKeyHash) bool {
	for _, m := range SelectCommittee(index, members) {
		if m == pkh {
			return true
		}
	}
	return false
}
