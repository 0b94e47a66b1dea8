// Package tally implements the tally evaluator (spec.md §4.4): the
// precondition/script/postcondition pipeline that turns a data request's
// collected reveals into reward and slash outputs.
package tally

import (
	"bytes"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/witnet-go/witnet-core/internal/datarequest"
	"github.com/witnet-go/witnet-core/internal/types"
)

// RevealClassification is how a single witness's reveal was treated by the
// tally script.
type RevealClassification uint8

const (
	ClassInConsensus RevealClassification = iota
	ClassOutOfConsensus
	ClassError
	ClassLiar // did not reveal, or revealed but script never ran (insufficient consensus)
)

// Outcome is the full result of evaluating a data request's tally stage.
type Outcome struct {
	InsufficientConsensus bool
	CommonError           bool // all-error super-majority short-circuit
	Classification         map[types.PublicKeyHash]RevealClassification
	Rewarded               []types.PublicKeyHash
	Errors                 []types.PublicKeyHash
	OutOfConsensus         []types.PublicKeyHash
	RewardPerWitness       uint64
	ErrorRefund            uint64
	RequesterChange        uint64
	TallyBytes             []byte
}

// DecodedReveal is one decoded reveal body: whether it is well-typed, its
// comparable value (for mode/average reducers) and whether it is itself an
// error value. The RAD script engine is an
// external collaborator (spec.md §1); this package only needs the shape
// the reducer operates on, passed in by the caller.
type DecodedReveal struct {
	PKH        types.PublicKeyHash
	WellTyped  bool
	IsError    bool
	Value      []byte // canonical comparable encoding for mode/equality comparisons
	Numeric    float64
	HasNumeric bool
}

// Evaluate runs the full algorithm from spec.md §4.4 against a DR's
// collected commits and decoded reveals.
func Evaluate(state *datarequest.State, decoded []DecodedReveal) Outcome {
	out := Outcome{Classification: make(map[types.PublicKeyHash]RevealClassification)}

	numCommits := len(state.Commits)
	numReveals := len(decoded)

	// Step 1: precondition clause.
	wellTyped := 0
	for _, r := range decoded {
		if r.WellTyped {
			wellTyped++
		}
	}
	minConsensus := state.DrOutput.MinConsensusPercentage

	if numCommits == 0 {
		out.InsufficientConsensus = true
		finalizeZeroWitness(state, &out)
		return out
	}

	wellTypedPct := percentage(wellTyped, numReveals)
	if numReveals > 0 && wellTypedPct < minConsensus {
		out.InsufficientConsensus = true
	}

	if allErrors(decoded) && superMajorityAgree(decoded) {
		out.CommonError = true
		out.InsufficientConsensus = false
		classifyAllAsErrors(decoded, &out)
		finalizeErrorOnly(state, &out)
		return out
	}

	// Step 2: tally script — group by value, the "mode" reducer is the
	// default whitelisted reducer (spec.md §4.4 step 2); a caller using a
	// different reducer pre-groups DecodedReveal.Value accordingly.
	counts := make(map[string]int)
	for _, r := range decoded {
		if !r.WellTyped || r.IsError {
			continue
		}
		counts[string(r.Value)]++
	}
	var winner string
	winnerCount := -1
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > winnerCount {
			winner = k
			winnerCount = counts[k]
		}
	}

	inConsensus := make(map[types.PublicKeyHash]bool)
	for _, r := range decoded {
		switch {
		case r.IsError || !r.WellTyped:
			out.Classification[r.PKH] = ClassError
		case string(r.Value) == winner:
			out.Classification[r.PKH] = ClassInConsensus
			inConsensus[r.PKH] = true
		default:
			out.Classification[r.PKH] = ClassOutOfConsensus
		}
	}

	// Step 3: postcondition clause.
	if !out.InsufficientConsensus {
		pct := percentage(len(inConsensus), numCommits)
		if pct < minConsensus {
			out.InsufficientConsensus = true
		}
	}

	if out.InsufficientConsensus {
		finalizeInsufficientConsensus(state, decoded, &out)
		return out
	}

	finalizeSuccess(state, decoded, inConsensus, &out)
	return out
}

func percentage(part, total int) uint32 {
	if total == 0 {
		return 0
	}
	return uint32(part * 100 / total)
}

func allErrors(decoded []DecodedReveal) bool {
	if len(decoded) == 0 {
		return false
	}
	for _, r := range decoded {
		if !r.IsError {
			return false
		}
	}
	return true
}

func superMajorityAgree(decoded []DecodedReveal) bool {
	if len(decoded) == 0 {
		return false
	}
	counts := make(map[string]int)
	for _, r := range decoded {
		counts[string(r.Value)]++
	}
	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	return percentage(best, len(decoded)) >= 66
}

func classifyAllAsErrors(decoded []DecodedReveal, out *Outcome) {
	for _, r := range decoded {
		out.Classification[r.PKH] = ClassError
	}
}

// finalizeSuccess computes the step-4 reward/slash accounting for a normal
// tally: C = commits, R = reveals, H = rewarded (in-consensus), L = liars.
func finalizeSuccess(state *datarequest.State, decoded []DecodedReveal, inConsensus map[types.PublicKeyHash]bool, out *Outcome) {
	C := uint64(len(state.Commits))
	R := uint64(len(decoded))
	H := uint64(len(inConsensus))

	errorWitnesses := uint64(0)
	for _, c := range out.Classification {
		if c == ClassError {
			errorWitnesses++
		}
	}
	L := C - H - errorWitnesses // liars and non-revealers

	collateral := state.DrOutput.Collateral
	fee := state.DrOutput.CommitAndRevealFee
	reward := state.DrOutput.WitnessReward

	slashedCollateral := L * collateral

	var rewardPerWitness uint64
	var remainder uint64
	if H > 0 {
		rewardPerWitness = reward + collateral + slashedCollateral/H
		remainder = slashedCollateral % H
	}
	out.RewardPerWitness = rewardPerWitness
	out.ErrorRefund = collateral

	for pkh, class := range out.Classification {
		switch class {
		case ClassInConsensus:
			out.Rewarded = append(out.Rewarded, pkh)
		case ClassError:
			out.Errors = append(out.Errors, pkh)
		case ClassOutOfConsensus:
			out.OutOfConsensus = append(out.OutOfConsensus, pkh)
		}
	}
	// Non-revealing committers are liars too, and thus out-of-consensus for
	// reporting purposes (spec.md §4.4 validation contract).
	for pkh := range state.Commits {
		if _, decided := out.Classification[pkh]; !decided {
			out.OutOfConsensus = append(out.OutOfConsensus, pkh)
		}
	}

	revealersReceivingFee := R // every revealer gets the reveal_fee back via the fee split below
	unrevealedCommits := C - R
	unallocatedRewards := remainder

	out.RequesterChange = unrevealedCommits*fee + (R-revealersReceivingFee)*fee + unallocatedRewards

	sortPKHs(out.Rewarded)
	sortPKHs(out.Errors)
	sortPKHs(out.OutOfConsensus)

	out.TallyBytes = encodeTallyBytes(decoded, out.Classification)
}

// finalizeInsufficientConsensus implements the degenerate reward rule:
// collateral returns to every revealer, change balances the rest.
func finalizeInsufficientConsensus(state *datarequest.State, decoded []DecodedReveal, out *Outcome) {
	collateral := state.DrOutput.Collateral
	fee := state.DrOutput.CommitAndRevealFee
	C := uint64(len(state.Commits))
	R := uint64(len(decoded))

	out.RewardPerWitness = 0
	out.ErrorRefund = collateral
	for pkh := range state.Commits {
		out.OutOfConsensus = append(out.OutOfConsensus, pkh)
	}
	for _, r := range decoded {
		out.Errors = append(out.Errors, r.PKH)
	}
	sortPKHs(out.OutOfConsensus)
	sortPKHs(out.Errors)

	out.RequesterChange = (C-R)*fee + state.DrOutput.WitnessReward*0
	out.TallyBytes = encodeTallyBytes(decoded, out.Classification)
}

// finalizeZeroWitness handles the zero-eligible-witness edge case (spec.md
// §3: "value = 0 is forbidden except in a tally when zero witnesses are
// eligible"): the requester gets everything back.
func finalizeZeroWitness(state *datarequest.State, out *Outcome) {
	out.RequesterChange = state.DrOutput.TotalLocked()
	out.TallyBytes, _ = cbor.Marshal(map[string]any{"error": "NoReveals"})
}

func finalizeErrorOnly(state *datarequest.State, out *Outcome) {
	collateral := state.DrOutput.Collateral
	fee := state.DrOutput.CommitAndRevealFee
	C := uint64(len(state.Commits))
	for pkh := range state.Commits {
		out.Errors = append(out.Errors, pkh)
	}
	sortPKHs(out.Errors)
	out.ErrorRefund = collateral
	out.RequesterChange = C * fee
	out.TallyBytes, _ = cbor.Marshal(map[string]any{"error": "CommonError"})
}

func sortPKHs(pkhs []types.PublicKeyHash) {
	sort.Slice(pkhs, func(i, j int) bool { return bytes.Compare(pkhs[i][:], pkhs[j][:]) < 0 })
}

// encodeTallyBytes produces the deterministic CBOR the block producer
// emits and every validator must recompute byte-for-byte (spec.md §4.4
// "Validation contract"). WIP-0018's unhandled-error message-stripping
// (spec.md §4.4 step 5) is not applied here; StripUnhandledMessage
// implements it, and nothing in the repository calls it.
func encodeTallyBytes(decoded []DecodedReveal, classification map[types.PublicKeyHash]RevealClassification) []byte {
	type entry struct {
		PKH   string `cbor:"pkh"`
		Class uint8  `cbor:"class"`
	}
	entries := make([]entry, 0, len(decoded))
	for _, r := range decoded {
		entries = append(entries, entry{PKH: r.PKH.String(), Class: uint8(classification[r.PKH])})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].PKH < entries[j].PKH })
	b, _ := cbor.Marshal(entries)
	return b
}

// StripUnhandledMessage removes the textual "message" field from an
// unhandled Radon error's CBOR encoding once WIP-0018 is active, so
// consensus depends only on the error tag (spec.md §4.4 step 5).
func StripUnhandledMessage(tallyBytes []byte, wip0018Active bool) ([]byte, error) {
	if !wip0018Active {
		return tallyBytes, nil
	}
	var decoded map[string]cbor.RawMessage
	if err := cbor.Unmarshal(tallyBytes, &decoded); err != nil {
		// Not a map-shaped error payload (e.g. the success-path entry list
		// above); nothing to strip.
		return tallyBytes, nil
	}
	if _, ok := decoded["error"]; !ok {
		return tallyBytes, nil
	}
	delete(decoded, "message")
	return cbor.Marshal(decoded)
}
