package validation

import (
	"errors"
	"testing"

	"github.com/witnet-go/witnet-core/internal/tally"
	"github.com/witnet-go/witnet-core/internal/types"
)

// TestValidateGenesisBlockFixture exercises spec.md §8 S7: a genesis block
// built over a bootstrap hash validates against that same hash. The
// rejection of mutated genesis blocks is covered by the tests below.
func TestValidateGenesisBlockFixture(t *testing.T) {
	bootstrapHash := types.HashFromBytes([]byte("bootstrap"))
	b := types.GenesisBlock(bootstrapHash, nil)

	if err := ValidateGenesisBlock(b, bootstrapHash); err != nil {
		t.Fatalf("a freshly built genesis block must validate, got %v", err)
	}
}

func TestValidateGenesisBlockRejectsExtraTransaction(t *testing.T) {
	bootstrapHash := types.HashFromBytes([]byte("bootstrap"))
	b := types.GenesisBlock(bootstrapHash, nil)
	b.ValueTransfers = append(b.ValueTransfers, types.Transaction{Kind: types.KindValueTransfer, ValueTransfer: &types.VTTransactionBody{}})

	err := ValidateGenesisBlock(b, bootstrapHash)
	if !errors.Is(err, types.ErrGenesisBlockMismatch()) {
		t.Errorf("ValidateGenesisBlock = %v, want GenesisBlockMismatch", err)
	}
}

func TestValidateGenesisBlockRejectsWrongEpoch(t *testing.T) {
	bootstrapHash := types.HashFromBytes([]byte("bootstrap"))
	b := types.GenesisBlock(bootstrapHash, nil)
	b.Header.Beacon.Epoch = 1

	err := ValidateGenesisBlock(b, bootstrapHash)
	if !errors.Is(err, types.ErrGenesisBlockMismatch()) {
		t.Errorf("ValidateGenesisBlock = %v, want GenesisBlockMismatch", err)
	}
}

func TestValidateGenesisBlockRejectsHashMismatch(t *testing.T) {
	bootstrapHash := types.HashFromBytes([]byte("bootstrap"))
	b := types.GenesisBlock(bootstrapHash, nil)

	err := ValidateGenesisBlock(b, types.HashFromBytes([]byte("different")))
	if !errors.Is(err, types.ErrGenesisBlockHashMismatch(types.Hash{}, types.Hash{})) {
		t.Errorf("ValidateGenesisBlock = %v, want GenesisBlockHashMismatch", err)
	}
}

// TestCheckTalliesCompleteFlagsMissingTally guards against the block
// validator silently admitting a block that never closes out a DR sitting
// in TALLY stage at the tip (spec.md §4.5).
func TestCheckTalliesCompleteFlagsMissingTally(t *testing.T) {
	pending := types.HashFromBytes([]byte("dr-pending-tally"))

	err := checkTalliesComplete(map[types.Hash]bool{}, []types.Hash{pending})
	if !errors.Is(err, types.ErrMissingExpectedTallies(nil)) {
		t.Errorf("checkTalliesComplete = %v, want MissingExpectedTallies", err)
	}
}

func TestCheckTalliesCompleteAcceptsFullCoverage(t *testing.T) {
	ptr := types.HashFromBytes([]byte("dr-covered"))
	seen := map[types.Hash]bool{ptr: true}

	if err := checkTalliesComplete(seen, []types.Hash{ptr}); err != nil {
		t.Errorf("expected a fully covered TALLY-stage pointer to pass, got %v", err)
	}
}

func TestCheckTalliesCompleteIgnoresExtraTallies(t *testing.T) {
	// A block may tally a DR that just entered TALLY stage this epoch
	// (not yet reflected in the tip snapshot the hook was built from);
	// the completeness check only flags omissions, never surplus.
	seen := map[types.Hash]bool{types.HashFromBytes([]byte("extra")): true}

	if err := checkTalliesComplete(seen, nil); err != nil {
		t.Errorf("expected no error when every TALLY-stage pointer is empty, got %v", err)
	}
}

// TestValidateBlockRejectsDuplicateTallyPointer exercises the block-level
// duplicate-dr_pointer check: two tally transactions for the same DR in one
// block must be rejected even if each individually would validate.
func TestValidateBlockRejectsDuplicateTallyPointer(t *testing.T) {
	drPointer := types.HashFromBytes([]byte("dr-double-tallied"))
	tallyTx := types.Transaction{
		Kind:  types.KindTally,
		Tally: &types.TallyTransactionBody{DRPointer: drPointer},
	}

	ctx := &Context{
		DRPointerStage: func(types.Hash) (string, bool) { return "TALLY", true },
		TallyRecompute: func(types.Hash) (tally.Outcome, types.PublicKeyHash, error) {
			return tally.Outcome{}, types.PublicKeyHash{}, nil
		},
	}

	_, err := validateTallies([]types.Transaction{tallyTx, tallyTx}, nil, ctx)
	if !errors.Is(err, types.ErrDuplicatedTally(drPointer)) {
		t.Errorf("validateTallies = %v, want DuplicatedTally", err)
	}
}

func TestValidateTalliesFlagsMissingAndAcceptsCoverage(t *testing.T) {
	drPointer := types.HashFromBytes([]byte("dr-tallied"))
	pending := types.HashFromBytes([]byte("dr-still-pending"))
	tallyTx := types.Transaction{
		Kind:  types.KindTally,
		Tally: &types.TallyTransactionBody{DRPointer: drPointer},
	}

	ctx := &Context{
		DRPointerStage: func(types.Hash) (string, bool) { return "TALLY", true },
		TallyRecompute: func(types.Hash) (tally.Outcome, types.PublicKeyHash, error) {
			return tally.Outcome{}, types.PublicKeyHash{}, nil
		},
	}

	if _, err := validateTallies([]types.Transaction{tallyTx}, []types.Hash{drPointer}, ctx); err != nil {
		t.Errorf("expected full coverage to pass, got %v", err)
	}

	_, err := validateTallies([]types.Transaction{tallyTx}, []types.Hash{drPointer, pending}, ctx)
	if !errors.Is(err, types.ErrMissingExpectedTallies(nil)) {
		t.Errorf("validateTallies = %v, want MissingExpectedTallies", err)
	}
}
