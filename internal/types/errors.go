package types

import "fmt"

// BlockError is raised by the block validator (spec.md §4.5, §7). Every
// variant carries the fields a caller needs to log or test against instead
// of parsing a message string.
type BlockError struct {
	Kind    string
	Fields  map[string]any
	Wrapped error
}

func (e *BlockError) Error() string {
	if len(e.Fields) == 0 {
		return "block error: " + e.Kind
	}
	return fmt.Sprintf("block error: %s %v", e.Kind, e.Fields)
}

func (e *BlockError) Unwrap() error { return e.Wrapped }

func (e *BlockError) Is(target error) bool {
	other, ok := target.(*BlockError)
	return ok && other.Kind == e.Kind
}

func newBlockErr(kind string, fields map[string]any) *BlockError {
	return &BlockError{Kind: kind, Fields: fields}
}

// Block error constructors, one per spec.md §7 BlockError variant.
func ErrCandidateFromDifferentEpoch(got, want uint32) error {
	return newBlockErr("CandidateFromDifferentEpoch", map[string]any{"got": got, "want": want})
}
func ErrPreviousHashMismatch(got, want Hash) error {
	return newBlockErr("PreviousHashMismatch", map[string]any{"got": got, "want": want})
}
func ErrNotValidPoe() error { return newBlockErr("NotValidPoe", nil) }
func ErrNotValidMerkleTree(kind string) error {
	return newBlockErr("NotValidMerkleTree", map[string]any{"txKind": kind})
}
func ErrBlockEligibilityDoesNotMeetTarget(proofHash, target Hash) error {
	return newBlockErr("BlockEligibilityDoesNotMeetTarget", map[string]any{"proofHash": proofHash, "target": target})
}
func ErrMismatchedMintValue(mintValue, feesValue, rewardValue uint64) error {
	return newBlockErr("MismatchedMintValue", map[string]any{
		"mint_value": mintValue, "fees_value": feesValue, "reward_value": rewardValue,
	})
}
func ErrTooSplitMint(value, minimum uint64) error {
	return newBlockErr("TooSplitMint", map[string]any{"value": value, "minimum": minimum})
}
func ErrBlockPublicKeyHashMismatch(got, want PublicKeyHash) error {
	return newBlockErr("PublicKeyHashMismatch", map[string]any{"got": got, "want": want})
}
func ErrBlockVerifySignatureFail(reason string) error {
	return newBlockErr("VerifySignatureFail", map[string]any{"reason": reason})
}
func ErrTotalVtWeightLimitExceeded(total, max uint64) error {
	return newBlockErr("TotalVtWeightLimitExceeded", map[string]any{"total": total, "max": max})
}
func ErrTotalDrWeightLimitExceeded(total, max uint64) error {
	return newBlockErr("TotalDrWeightLimitExceeded", map[string]any{"total": total, "max": max})
}
func ErrMissingExpectedTallies(missing []Hash) error {
	return newBlockErr("MissingExpectedTallies", map[string]any{"missing": missing})
}
func ErrGenesisBlockHashMismatch(got, want Hash) error {
	return newBlockErr("GenesisBlockHashMismatch", map[string]any{"got": got, "want": want})
}
func ErrGenesisBlockMismatch() error { return newBlockErr("GenesisBlockMismatch", nil) }
func ErrGenesisValueOverflow() error { return newBlockErr("GenesisValueOverflow", nil) }
func ErrBlockFromFuture(epoch, currentEpoch uint32) error {
	return newBlockErr("BlockFromFuture", map[string]any{"epoch": epoch, "current": currentEpoch})
}
func ErrBlockOlderThanTip(epoch, tipEpoch uint32) error {
	return newBlockErr("BlockOlderThanTip", map[string]any{"epoch": epoch, "tip": tipEpoch})
}

// TransactionError is raised by the transaction validator (spec.md §4.2, §7).
type TransactionError struct {
	Kind   string
	Fields map[string]any
}

func (e *TransactionError) Error() string {
	if len(e.Fields) == 0 {
		return "transaction error: " + e.Kind
	}
	return fmt.Sprintf("transaction error: %s %v", e.Kind, e.Fields)
}

func (e *TransactionError) Is(target error) bool {
	other, ok := target.(*TransactionError)
	return ok && other.Kind == e.Kind
}

func newTxErr(kind string, fields map[string]any) *TransactionError {
	return &TransactionError{Kind: kind, Fields: fields}
}

func ErrNoInputs() error { return newTxErr("NoInputs", nil) }
func ErrOutputNotFound(ptr OutputPointer) error {
	return newTxErr("OutputNotFound", map[string]any{"outputPointer": ptr})
}
func ErrMismatchingSignaturesNumber(got, want int) error {
	return newTxErr("MismatchingSignaturesNumber", map[string]any{"got": got, "want": want})
}
func ErrNegativeFee() error { return newTxErr("NegativeFee", nil) }
func ErrInputValueOverflow() error  { return newTxErr("InputValueOverflow", nil) }
func ErrOutputValueOverflow() error { return newTxErr("OutputValueOverflow", nil) }
func ErrFeeOverflow() error         { return newTxErr("FeeOverflow", nil) }
func ErrZeroValueOutput(index int) error {
	return newTxErr("ZeroValueOutput", map[string]any{"index": index})
}
func ErrValueTransferWeightLimitExceeded(weight, max uint64) error {
	return newTxErr("ValueTransferWeightLimitExceeded", map[string]any{"weight": weight, "max": max})
}
func ErrDataRequestWeightLimitExceeded(weight, max uint64) error {
	return newTxErr("DataRequestWeightLimitExceeded", map[string]any{"weight": weight, "max": max})
}
func ErrNoReward() error { return newTxErr("NoReward", nil) }
func ErrInsufficientWitnesses() error { return newTxErr("InsufficientWitnesses", nil) }
func ErrInvalidCollateral(reason string) error {
	return newTxErr("InvalidCollateral", map[string]any{"reason": reason})
}
func ErrCollateralPkhMismatch(got, want PublicKeyHash) error {
	return newTxErr("CollateralPkhMismatch", map[string]any{"got": got, "want": want})
}
func ErrCollateralNotMature(ptr OutputPointer, matureAt, current uint32) error {
	return newTxErr("CollateralNotMature", map[string]any{"outputPointer": ptr, "matureAt": matureAt, "current": current})
}
func ErrIncorrectCollateral(got, want uint64) error {
	return newTxErr("IncorrectCollateral", map[string]any{"got": got, "want": want})
}
func ErrNegativeCollateral() error { return newTxErr("NegativeCollateral", nil) }
func ErrTimeLock(ptr OutputPointer, lockedUntil, now uint64) error {
	return newTxErr("TimeLock", map[string]any{"outputPointer": ptr, "lockedUntil": lockedUntil, "now": now})
}
func ErrSeveralCommitOutputs() error { return newTxErr("SeveralCommitOutputs", nil) }
func ErrDuplicatedCommit(pkh PublicKeyHash, drPointer Hash) error {
	return newTxErr("DuplicatedCommit", map[string]any{"pkh": pkh, "drPointer": drPointer})
}
func ErrDuplicatedReveal(pkh PublicKeyHash, drPointer Hash) error {
	return newTxErr("DuplicatedReveal", map[string]any{"pkh": pkh, "drPointer": drPointer})
}
func ErrDuplicatedTally(drPointer Hash) error {
	return newTxErr("DuplicatedTally", map[string]any{"drPointer": drPointer})
}
func ErrMismatchedCommitment(got, want Hash) error {
	return newTxErr("MismatchedCommitment", map[string]any{"got": got, "want": want})
}
func ErrCommitNotFound(pkh PublicKeyHash, drPointer Hash) error {
	return newTxErr("CommitNotFound", map[string]any{"pkh": pkh, "drPointer": drPointer})
}
func ErrRevealNotFound(pkh PublicKeyHash, drPointer Hash) error {
	return newTxErr("RevealNotFound", map[string]any{"pkh": pkh, "drPointer": drPointer})
}
func ErrDataRequestNotFound(drPointer Hash) error {
	return newTxErr("DataRequestNotFound", map[string]any{"drPointer": drPointer})
}
func ErrVerifyTransactionSignatureFail(hash Hash, msg string) error {
	return newTxErr("VerifyTransactionSignatureFail", map[string]any{"hash": hash, "msg": msg})
}
func ErrTxPublicKeyHashMismatch(got, want PublicKeyHash) error {
	return newTxErr("PublicKeyHashMismatch", map[string]any{"got": got, "want": want})
}
func ErrInvalidDataRequestPoe() error { return newTxErr("InvalidDataRequestPoe", nil) }
func ErrDataRequestEligibilityDoesNotMeetTarget(targetHash, proofHash Hash) error {
	return newTxErr("DataRequestEligibilityDoesNotMeetTarget", map[string]any{
		"target_hash": targetHash, "proof_hash": proofHash,
	})
}
func ErrMismatchedConsensus() error { return newTxErr("MismatchedConsensus", nil) }
func ErrWrongNumberOutputs(got, want int) error {
	return newTxErr("WrongNumberOutputs", map[string]any{"got": got, "want": want})
}
func ErrInvalidTallyChange(got, want uint64) error {
	return newTxErr("InvalidTallyChange", map[string]any{"got": got, "want": want})
}
func ErrInvalidReward(value, expected uint64) error {
	return newTxErr("InvalidReward", map[string]any{"value": value, "expected_value": expected})
}
func ErrInvalidTimeLock(got uint64) error {
	return newTxErr("InvalidTimeLock", map[string]any{"got": got})
}
func ErrMultipleRewards(pkh PublicKeyHash) error {
	return newTxErr("MultipleRewards", map[string]any{"pkh": pkh})
}
func ErrDishonestReward() error { return newTxErr("DishonestReward", nil) }
func ErrMismatchingOutOfConsensusCount(got, want int) error {
	return newTxErr("MismatchingOutOfConsensusCount", map[string]any{"got": got, "want": want})
}
func ErrMismatchingRewardedWitnesses(got, want int) error {
	return newTxErr("MismatchingRewardedWitnesses", map[string]any{"got": got, "want": want})
}
func ErrMismatchingErrorCount(got, want int) error {
	return newTxErr("MismatchingErrorCount", map[string]any{"got": got, "want": want})
}

// Stake/unstake transaction errors, added for the stake nonce ledger
// feature supplemented from the original source's validator staking path.
func ErrInvalidStakeValue(value, minimum uint64) error {
	return newTxErr("InvalidStakeValue", map[string]any{"value": value, "minimum": minimum})
}
func ErrWrongStakeNonce(got, want uint64) error {
	return newTxErr("WrongStakeNonce", map[string]any{"got": got, "want": want})
}
func ErrUnstakeNotMature(unlockEpoch, currentEpoch uint32) error {
	return newTxErr("UnstakeNotMature", map[string]any{"unlockEpoch": unlockEpoch, "currentEpoch": currentEpoch})
}
func ErrInsufficientStake(validator PublicKeyHash, requested, staked uint64) error {
	return newTxErr("InsufficientStake", map[string]any{"validator": validator, "requested": requested, "staked": staked})
}
func ErrStakeWithdrawerMismatch(got, want PublicKeyHash) error {
	return newTxErr("StakeWithdrawerMismatch", map[string]any{"got": got, "want": want})
}

// DataRequestError is raised by the data request pool (spec.md §4.3, §7).
type DataRequestError struct {
	Kind   string
	Fields map[string]any
}

func (e *DataRequestError) Error() string {
	if len(e.Fields) == 0 {
		return "data request error: " + e.Kind
	}
	return fmt.Sprintf("data request error: %s %v", e.Kind, e.Fields)
}

func (e *DataRequestError) Is(target error) bool {
	other, ok := target.(*DataRequestError)
	return ok && other.Kind == e.Kind
}

func newDrErr(kind string, fields map[string]any) *DataRequestError {
	return &DataRequestError{Kind: kind, Fields: fields}
}

func ErrNotCommitStage(drPointer Hash) error {
	return newDrErr("NotCommitStage", map[string]any{"drPointer": drPointer})
}
func ErrNotRevealStage(drPointer Hash) error {
	return newDrErr("NotRevealStage", map[string]any{"drPointer": drPointer})
}
func ErrNotTallyStage(drPointer Hash) error {
	return newDrErr("NotTallyStage", map[string]any{"drPointer": drPointer})
}
func ErrNoRetrievalSources() error  { return newDrErr("NoRetrievalSources", nil) }
func ErrMalformedRetrieval(reason string) error {
	return newDrErr("MalformedRetrieval", map[string]any{"reason": reason})
}
func ErrInvalidRadType(kind RADRetrieveKind) error {
	return newDrErr("InvalidRadType", map[string]any{"kind": kind})
}

// ChainManagerError is raised by the chain manager actor (spec.md §4.6, §7).
type ChainManagerError struct {
	Kind   string
	Fields map[string]any
}

func (e *ChainManagerError) Error() string {
	if len(e.Fields) == 0 {
		return "chain manager error: " + e.Kind
	}
	return fmt.Sprintf("chain manager error: %s %v", e.Kind, e.Fields)
}

func (e *ChainManagerError) Is(target error) bool {
	other, ok := target.(*ChainManagerError)
	return ok && other.Kind == e.Kind
}

func ErrChainNotReady() error {
	return &ChainManagerError{Kind: "ChainNotReady"}
}
func ErrNotSynced(currentState string) error {
	return &ChainManagerError{Kind: "NotSynced", Fields: map[string]any{"current_state": currentState}}
}
func ErrNotEligible() error {
	return &ChainManagerError{Kind: "NotEligible"}
}
func ErrWrongBlocksForSuperblock(wrongIndex, consolidatedSuperblockIndex, currentSuperblockIndex uint32) error {
	return &ChainManagerError{Kind: "WrongBlocksForSuperblock", Fields: map[string]any{
		"wrong_index":                   wrongIndex,
		"consolidated_superblock_index": consolidatedSuperblockIndex,
		"current_superblock_index":      currentSuperblockIndex,
	}}
}
