package superblock

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

type votingMember struct {
	priv *xcrypto.PrivateKey
	pkh  types.PublicKeyHash
}

func newVotingCommittee(t *testing.T, n int) []votingMember {
	t.Helper()
	out := make([]votingMember, n)
	for i := range out {
		priv, err := xcrypto.GeneratePrivateKey()
		if err != nil {
			t.Fatalf("GeneratePrivateKey: %v", err)
		}
		out[i] = votingMember{priv: priv, pkh: xcrypto.PKHFromPublicKey(priv.PubKey())}
	}
	return out
}

func voteFrom(m votingMember, index uint32, hash types.Hash) Vote {
	return Vote{
		SuperblockIndex: index,
		SuperblockHash:  hash,
		Voter:           m.pkh,
		Signature:       xcrypto.Sign(m.priv, hash),
		PublicKey:       m.priv.PubKey().SerializeCompressed(),
	}
}

func pkhsOf(members []votingMember) []types.PublicKeyHash {
	out := make([]types.PublicKeyHash, len(members))
	for i, m := range members {
		out[i] = m.pkh
	}
	return out
}

func TestAggregatorReachesSupermajority(t *testing.T) {
	members := newVotingCommittee(t, 3)
	agg := NewAggregator(5, pkhsOf(members))
	hash := types.HashFromBytes([]byte("candidate superblock"))

	if _, ok := agg.Consolidated(); ok {
		t.Fatal("should not be consolidated before any votes")
	}

	if err := agg.AddVote(voteFrom(members[0], 5, hash)); err != nil {
		t.Fatalf("AddVote(0): %v", err)
	}
	if _, ok := agg.Consolidated(); ok {
		t.Fatal("one of three votes should not reach a 2/3 supermajority")
	}

	if err := agg.AddVote(voteFrom(members[1], 5, hash)); err != nil {
		t.Fatalf("AddVote(1): %v", err)
	}
	got, ok := agg.Consolidated()
	if !ok {
		t.Fatal("two of three votes should reach a 2/3 supermajority")
	}
	if got != hash {
		t.Errorf("consolidated hash = %s, want %s", got, hash)
	}
}

func TestAggregatorRejectsWrongIndex(t *testing.T) {
	members := newVotingCommittee(t, 3)
	agg := NewAggregator(5, pkhsOf(members))
	hash := types.HashFromBytes([]byte("candidate"))

	v := voteFrom(members[0], 6, hash)
	if err := agg.AddVote(v); err == nil {
		t.Error("expected a vote for the wrong superblock index to be rejected")
	}
}

func TestAggregatorRejectsNonCommitteeVoter(t *testing.T) {
	members := newVotingCommittee(t, 3)
	outsider := newVotingCommittee(t, 1)[0]
	agg := NewAggregator(5, pkhsOf(members))
	hash := types.HashFromBytes([]byte("candidate"))

	if err := agg.AddVote(voteFrom(outsider, 5, hash)); err == nil {
		t.Error("expected a vote from a non-committee member to be rejected")
	}
}

func TestAggregatorRejectsBadSignature(t *testing.T) {
	members := newVotingCommittee(t, 3)
	agg := NewAggregator(5, pkhsOf(members))
	hash := types.HashFromBytes([]byte("candidate"))

	v := voteFrom(members[0], 5, hash)
	v.Signature = voteFrom(members[1], 5, types.HashFromBytes([]byte("other"))).Signature
	if err := agg.AddVote(v); err == nil {
		t.Error("expected a signature over a different hash to be rejected")
	}
}

func TestAggregatorVoteCount(t *testing.T) {
	members := newVotingCommittee(t, 4)
	agg := NewAggregator(1, pkhsOf(members))
	hash := types.HashFromBytes([]byte("candidate"))

	_ = agg.AddVote(voteFrom(members[0], 1, hash))
	_ = agg.AddVote(voteFrom(members[1], 1, hash))

	if got := agg.VoteCount(hash); got != 2 {
		t.Errorf("VoteCount = %d, want 2", got)
	}
}
