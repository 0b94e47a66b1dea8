package superblock

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

func membersN(n int) []types.PublicKeyHash {
	out := make([]types.PublicKeyHash, n)
	for i := range out {
		out[i][0] = byte(i)
		out[i][1] = byte(i >> 8)
	}
	return out
}

func TestCommitteeSizeShrinksOverTime(t *testing.T) {
	tests := []struct {
		name    string
		index   uint32
		arsSize int
		want    int
	}{
		{"small ARS stays whole", 0, 8, 8},
		{"full size at period 0", 0, 1000, 1000},
		{"halved after one shrink period", committeeShrinkPeriods, 1000, 500},
		{"halved twice after two shrink periods", committeeShrinkPeriods * 2, 1000, 250},
		{"never below floor", committeeShrinkPeriods * 20, 1000, minCommitteeSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CommitteeSize(tt.index, tt.arsSize)
			if got != tt.want {
				t.Errorf("CommitteeSize(%d, %d) = %d, want %d", tt.index, tt.arsSize, got, tt.want)
			}
		})
	}
}

func TestSelectCommitteeIsDeterministic(t *testing.T) {
	members := membersN(50)
	a := SelectCommittee(7, members)
	b := SelectCommittee(7, members)

	if len(a) != len(b) {
		t.Fatalf("committee size differs across calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("committee order differs at index %d", i)
		}
	}
}

func TestSelectCommitteeChangesAcrossIndices(t *testing.T) {
	members := membersN(50)
	a := SelectCommittee(1, members)
	b := SelectCommittee(2, members)

	identical := true
	for i := range a {
		if a[i] != b[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Error("expected committee selection to vary across superblock indices")
	}
}

func TestSelectCommitteeNeverExceedsMembership(t *testing.T) {
	members := membersN(5)
	committee := SelectCommittee(0, members)
	if len(committee) != 5 {
		t.Errorf("committee of %d members from a 5-member ARS, want 5", len(committee))
	}
}

func TestIsCommitteeMemberAgreesWithSelectCommittee(t *testing.T) {
	members := membersN(50)
	committee := SelectCommittee(3, members)

	for _, m := range committee {
		if !IsCommitteeMember(3, members, m) {
			t.Errorf("member %s selected into the committee but IsCommitteeMember says no", m)
		}
	}

	var outsider types.PublicKeyHash
	for i := range outsider {
		outsider[i] = 0xff
	}
	if IsCommitteeMember(3, members, outsider) {
		t.Error("a PKH outside the ARS must never be reported as a committee member")
	}
}
