package reputation

import (
	"testing"

	"github.com/witnet-go/witnet-core/internal/types"
)

func TestBlockEligibilityTargetFixture(t *testing.T) {
	// 512 active identities, mining_backup_factor=8: target = floor(maxU32 * 8 / 512).
	got := BlockEligibilityTarget(512, 8)
	want := types.HashWithFirstU32(0x03ff_ffff)
	if got != want {
		t.Errorf("BlockEligibilityTarget(512, 8) = %s, want %s", got, want)
	}
}

func TestBlockEligibilityTargetFloorsZeroIdentities(t *testing.T) {
	// Zero active identities must not divide by zero; treated as one.
	got := BlockEligibilityTarget(0, 8)
	want := BlockEligibilityTarget(1, 8)
	if got != want {
		t.Errorf("BlockEligibilityTarget(0, 8) = %s, want %s (same as 1 identity)", got, want)
	}
}

func TestCommitEligibilityTargetFixture(t *testing.T) {
	// One identity with 1023 reputation in the ARS, committer pkh holds
	// zero reputation and is not itself in the ARS: total_active_reputation
	// = 1023, active_identities = 1, so denom = 1024 and, with
	// witnesses=1, round=0: target = floor(maxU32 * 1 * 1 * 1 / 1024).
	e := NewEngine(100)
	var repHolder, committer types.PublicKeyHash
	repHolder[0] = 1
	committer[0] = 2
	e.Gain(repHolder, 1023)

	got := CommitEligibilityTarget(e, committer, 1, 0)
	want := types.HashWithFirstU32(0x003f_ffff)
	if got != want {
		t.Errorf("CommitEligibilityTarget = %s, want %s", got, want)
	}
}

func TestApplyMinimumDifficultyFloorClampsEarlyEpochs(t *testing.T) {
	tight := types.HashWithFirstU32(1)
	floor := uint32(0x0007_ffff)

	got := ApplyMinimumDifficultyFloor(tight, floor, 10, 750)
	want := types.HashWithFirstU32(floor)
	if got != want {
		t.Errorf("expected the floor to win before epochsWithMinimumDifficulty, got %s want %s", got, want)
	}
}

func TestApplyMinimumDifficultyFloorInactiveAfterWindow(t *testing.T) {
	tight := types.HashWithFirstU32(1)
	got := ApplyMinimumDifficultyFloor(tight, 0x0007_ffff, 800, 750)
	if got != tight {
		t.Errorf("floor must not apply once past epochsWithMinimumDifficulty, got %s want %s", got, tight)
	}
}
