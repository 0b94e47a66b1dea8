package validation

import (
	"github.com/witnet-go/witnet-core/internal/reputation"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/utxo"
	"github.com/witnet-go/witnet-core/internal/wire"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// Context carries everything a transaction validator needs beyond the
// transaction itself: the mutable utxo diff, the epoch clock, consensus
// parameters and the reputation engine snapshot (spec.md §4.2's contract
// signature).
type Context struct {
	Diff               *utxo.Diff
	Epoch              uint32
	EpochStartTimestamp uint64
	Params             ConsensusParams
	Reputation         *reputation.Engine
	CurrentBlockNumber uint32
	// DRPointerStage reports whether a dr_pointer is currently known and
	// in the given stage; wired to the data request pool by the caller.
	DRPointerStage func(drPointer types.Hash) (stage string, known bool)
	// SeenCommitPKH / SeenRevealPKH let the validator reject duplicates
	// already admitted earlier in the same block or mempool batch.
	SeenCommitPKH func(drPointer types.Hash, pkh types.PublicKeyHash) bool
	SeenRevealPKH func(drPointer types.Hash, pkh types.PublicKeyHash) bool
	// DRWitnessesAndRound resolves a dr_pointer to its requested witness
	// count and current commit round, for eligibility target computation.
	DRWitnessesAndRound func(drPointer types.Hash) (witnesses uint16, round uint32, err error)
	// DROutput resolves a dr_pointer to the DataRequestOutput it was
	// created with, for collateral and reward bookkeeping by later stages.
	DROutput func(drPointer types.Hash) (types.DataRequestOutput, error)
	// CommitByPKH resolves the commit a reveal or tally must match.
	CommitByPKH func(drPointer types.Hash, pkh types.PublicKeyHash) (types.Transaction, bool)
	// TallyRecompute independently re-derives a data request's tally
	// outcome and the pkh its change output is owed to.
	TallyRecompute TallyRecompute
	// BlockReward and FeesCollected are the mint transaction's economic
	// envelope, computed by the block validator from all sibling
	// transactions before the mint itself is checked.
	BlockReward   uint64
	FeesCollected uint64
	// StakeBalance resolves a validator's currently staked value and next
	// expected nonce (spec.md supplemented stake/unstake ledger).
	StakeBalance func(validator types.PublicKeyHash) (staked uint64, nextNonce uint64)
	// RecordStake applies a stake/unstake delta to the ledger once the
	// transaction carrying it has been fully validated.
	RecordStake func(validator, withdrawer types.PublicKeyHash, delta int64, nonce uint64)
}

// drOutputFor resolves a dr_pointer's DataRequestOutput via ctx.DROutput,
// failing with DataRequestNotFound when the hook is unset or the pointer is
// unknown.
func (ctx *Context) drOutputFor(drPointer types.Hash) (types.DataRequestOutput, error) {
	if ctx.DROutput == nil {
		return types.DataRequestOutput{}, types.ErrDataRequestNotFound(drPointer)
	}
	return ctx.DROutput(drPointer)
}

// Result is what a valid transaction produces: fee and weight, for the
// caller to accumulate per-block totals.
type Result struct {
	Fee    uint64
	Weight uint64
}

// ValidateTransaction dispatches on tx.Kind to the per-variant rules from
// spec.md §4.2; the rules several kinds share (signatures, time locks,
// zero-value outputs) are checked inside each per-kind validator.
func ValidateTransaction(tx *types.Transaction, ctx *Context) (Result, error) {
	switch tx.Kind {
	case types.KindValueTransfer:
		return validateValueTransfer(tx, ctx)
	case types.KindDataRequest:
		return validateDataRequest(tx, ctx)
	case types.KindCommit:
		return validateCommit(tx, ctx)
	case types.KindReveal:
		return validateReveal(tx, ctx)
	case types.KindTally:
		return validateTally(tx, ctx)
	case types.KindMint:
		return validateMint(tx, ctx)
	case types.KindStake:
		return validateStake(tx, ctx)
	case types.KindUnstake:
		return validateUnstake(tx, ctx)
	default:
		return Result{}, types.ErrOutputNotFound(types.OutputPointer{})
	}
}

// checkSignaturesCount enforces "#signatures == #inputs (or ==1 for
// Unstake)".
func checkSignaturesCount(got, want int) error {
	if got != want {
		return types.ErrMismatchingSignaturesNumber(got, want)
	}
	return nil
}

// checkNoZeroValueOutputs rejects any output with value==0, unless the
// caller has already special-cased the zero-witness tally (spec.md §3).
func checkNoZeroValueOutputs(outputs []types.ValueTransferOutput) error {
	for i, o := range outputs {
		if o.Value == 0 {
			return types.ErrZeroValueOutput(i)
		}
	}
	return nil
}

// checkTimeLocks enforces that every spent VTO's time_lock has elapsed by
// the epoch's start timestamp (spec.md §4.2).
func checkTimeLocks(inputs []types.Input, ctx *Context) error {
	for _, in := range inputs {
		vto, _, ok := ctx.Diff.Get(in.OutputPointer)
		if !ok {
			return types.ErrOutputNotFound(in.OutputPointer)
		}
		if vto.TimeLock > ctx.EpochStartTimestamp {
			return types.ErrTimeLock(in.OutputPointer, vto.TimeLock, ctx.EpochStartTimestamp)
		}
	}
	return nil
}

// consumeInputs resolves and consumes every input against the diff,
// failing with OutputNotFound on a double-spend or unknown pointer
// (spec.md §4.1 double-spend detection), and returns the summed value.
func consumeInputs(inputs []types.Input, ctx *Context) (uint64, error) {
	var total uint64
	for _, in := range inputs {
		vto, _, ok := ctx.Diff.Get(in.OutputPointer)
		if !ok {
			return 0, types.ErrOutputNotFound(in.OutputPointer)
		}
		next := total + vto.Value
		if next < total {
			return 0, types.ErrInputValueOverflow()
		}
		total = next
		ctx.Diff.Consume(in.OutputPointer)
	}
	return total, nil
}

func sumOutputs(outputs []types.ValueTransferOutput) (uint64, error) {
	var total uint64
	for _, o := range outputs {
		next := total + o.Value
		if next < total {
			return 0, types.ErrOutputValueOverflow()
		}
		total = next
	}
	return total, nil
}

// verifyInputSignatures checks that every input is signed by the pkh that
// owns the referenced output, given the body hash being signed.
func verifyInputSignatures(inputs []types.Input, sigs []types.TransactionSignature, bodyHash types.Hash, ctx *Context) error {
	if err := checkSignaturesCount(len(sigs), len(inputs)); err != nil {
		return err
	}
	for i, in := range inputs {
		vto, _, ok := ctx.Diff.Get(in.OutputPointer)
		if !ok {
			return types.ErrOutputNotFound(in.OutputPointer)
		}
		if err := xcrypto.VerifyTransactionSignature(bodyHash, sigs[i], vto.PKH); err != nil {
			return err
		}
	}
	return nil
}

func createOutputs(txID types.Hash, outputs []types.ValueTransferOutput, ctx *Context) {
	for i, o := range outputs {
		ptr := types.OutputPointer{TransactionID: txID, OutputIndex: uint32(i)}
		ctx.Diff.Create(ptr, o)
	}
}

// bodyHashAndID is the common first step of every per-kind validator:
// transactions are identified by, and sign over, their body hash.
func bodyHashAndID(tx *types.Transaction) types.Hash {
	return wire.TransactionBodyHash(tx)
}
