package validation

import "github.com/witnet-go/witnet-core/internal/types"

var allowedRetrieveKinds = map[types.RADRetrieveKind]bool{
	types.RADRetrieveHTTPGet:  true,
	types.RADRetrieveHTTPPost: true,
	types.RADRetrieveRNG:      true,
}

var allowedReducers = map[types.RADReducer]bool{
	types.RADReducerMode:         true,
	types.RADReducerAverageMean:  true,
	types.RADReducerHashConcat:   true,
	types.RADReducerStdDeviation: true,
}

// TAPIActive reports whether a given RAD retrieve kind requires a
// threshold-activated protocol feature the caller has not yet signaled
// active (spec.md §4.2 "subject to TAPI activation").
type TAPIActive func(kind types.RADRetrieveKind) bool

// validateDataRequest implements spec.md §4.2 "Data-request transaction".
func validateDataRequest(tx *types.Transaction, ctx *Context) (Result, error) {
	body := tx.DataRequest
	if len(body.Inputs) == 0 {
		return Result{}, types.ErrNoInputs()
	}
	if len(body.Outputs) > 1 {
		return Result{}, types.ErrSeveralCommitOutputs()
	}

	txID := bodyHashAndID(tx)

	// Change output pkh must equal the first input's owning pkh.
	if len(body.Outputs) == 1 {
		firstVTO, _, ok := ctx.Diff.Get(body.Inputs[0].OutputPointer)
		if !ok {
			return Result{}, types.ErrOutputNotFound(body.Inputs[0].OutputPointer)
		}
		if body.Outputs[0].PKH != firstVTO.PKH {
			return Result{}, types.ErrTxPublicKeyHashMismatch(body.Outputs[0].PKH, firstVTO.PKH)
		}
	}
	if err := checkNoZeroValueOutputs(body.Outputs); err != nil {
		return Result{}, err
	}
	if err := checkTimeLocks(body.Inputs, ctx); err != nil {
		return Result{}, err
	}
	if err := verifyInputSignatures(body.Inputs, tx.Signatures, txID, ctx); err != nil {
		return Result{}, err
	}

	if err := validateDataRequestOutput(body.DataRequestOutput, ctx); err != nil {
		return Result{}, err
	}
	if err := validateRADRequest(body.DataRequestOutput.DataRequest); err != nil {
		return Result{}, err
	}

	inputValue, err := consumeInputs(body.Inputs, ctx)
	if err != nil {
		return Result{}, err
	}
	changeValue, err := sumOutputs(body.Outputs)
	if err != nil {
		return Result{}, err
	}
	drValue := body.DataRequestOutput.TotalLocked()
	totalOut := drValue + changeValue
	if totalOut < drValue {
		return Result{}, types.ErrFeeOverflow()
	}
	if totalOut > inputValue {
		return Result{}, types.ErrNegativeFee()
	}
	fee := inputValue - totalOut

	weight := DataRequestWeight(len(body.DataRequestOutput.DataRequest.Retrieve), body.DataRequestOutput.Witnesses)
	if weight > ctx.Params.MaxDRWeight {
		return Result{}, types.ErrDataRequestWeightLimitExceeded(weight, ctx.Params.MaxDRWeight)
	}

	createOutputs(txID, body.Outputs, ctx)
	return Result{Fee: fee, Weight: weight}, nil
}

// validateDataRequestOutput checks the economic envelope (spec.md §4.2).
func validateDataRequestOutput(o types.DataRequestOutput, ctx *Context) error {
	if o.Witnesses < 1 {
		return types.ErrInsufficientWitnesses()
	}
	if o.WitnessReward < 1 {
		return types.ErrNoReward()
	}
	if o.MinConsensusPercentage <= 50 || o.MinConsensusPercentage >= 100 {
		return types.ErrMismatchedConsensus()
	}
	if o.Collateral != 0 && o.Collateral < ctx.Params.CollateralMinimum {
		return types.ErrInvalidCollateral("below collateral_minimum")
	}
	total := o.TotalLocked()
	if total < uint64(o.Witnesses)*o.WitnessReward {
		return types.ErrFeeOverflow()
	}
	return nil
}

// EffectiveCollateral returns the DR's collateral, substituting
// collateral_minimum for the zero sentinel (spec.md §4.2).
func EffectiveCollateral(o types.DataRequestOutput, params ConsensusParams) uint64 {
	if o.Collateral == 0 {
		return params.CollateralMinimum
	}
	return o.Collateral
}

// validateRADRequest decodes and whitelist-checks the embedded retrieval
// script shape; it does not execute retrieval (spec.md §1 non-goal).
func validateRADRequest(rad types.RADRequest) error {
	if len(rad.Retrieve) == 0 {
		return types.ErrNoRetrievalSources()
	}
	for _, r := range rad.Retrieve {
		if !allowedRetrieveKinds[r.Kind] {
			return types.ErrInvalidRadType(r.Kind)
		}
		switch r.Kind {
		case types.RADRetrieveHTTPGet, types.RADRetrieveHTTPPost:
			if r.URL == "" {
				return types.ErrMalformedRetrieval("missing url for http retrieval")
			}
		case types.RADRetrieveRNG:
			if r.URL != "" {
				return types.ErrMalformedRetrieval("rng retrieval must not carry a url")
			}
		}
	}
	if !allowedReducers[rad.Aggregate.Reducer] {
		return types.ErrMalformedRetrieval("unsupported aggregate reducer")
	}
	if !allowedReducers[rad.Tally.Reducer] {
		return types.ErrMalformedRetrieval("unsupported tally reducer")
	}
	return nil
}

// DataRequestWeight is a linear function of the number of retrieval
// sources times witnesses, 500 per retrieval per witness; script byte
// length does not enter it.
func DataRequestWeight(numRetrievals int, witnesses uint16) uint64 {
	const perRetrieval = 500
	return uint64(numRetrievals) * perRetrieval * uint64(witnesses)
}
