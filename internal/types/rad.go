package types

// RADRetrieveKind enumerates the supported external-fetch retrieval kinds.
// The RAD script engine itself is an external collaborator (spec.md §1);
// validation only needs to decode and whitelist-check these tags.
type RADRetrieveKind string

const (
	RADRetrieveHTTPGet  RADRetrieveKind = "HttpGet"
	RADRetrieveHTTPPost RADRetrieveKind = "HttpPost"
	RADRetrieveRNG      RADRetrieveKind = "Rng"
	RADRetrieveHTTPHead RADRetrieveKind = "HttpHead" // rejected by validation; chain.TAPIEngine.RetrieveKindGate reports its TAPI bit
)

// RADReducer names the whitelisted script operators a tally/aggregate stage may apply (spec.md §4.2, §4.4).
type RADReducer string

const (
	RADReducerMode          RADReducer = "Mode"
	RADReducerAverageMean   RADReducer = "AverageMean"
	RADReducerHashConcat    RADReducer = "HashConcatenate"
	RADReducerStdDeviation  RADReducer = "StdDeviation" // filter-only in practice, listed for validation symmetry
)

// RADRetrieve is one external data source the witnessing committee fetches.
type RADRetrieve struct {
	Kind        RADRetrieveKind `json:"kind"`
	URL         string          `json:"url,omitempty"`
	Script      []byte          `json:"script"`
	Body        []byte          `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// RADFilter is one stage of the tally script's filtering pipeline.
type RADFilter struct {
	Operator RADReducer `json:"operator"`
	Args     []byte     `json:"args,omitempty"`
}

// RADAggregate is the per-witness aggregation stage (applied to the raw
// retrieved values before commit/reveal).
type RADAggregate struct {
	Filters []RADFilter `json:"filters,omitempty"`
	Reducer RADReducer  `json:"reducer"`
}

// RADTally is the cross-witness tally stage (applied to the set of reveals).
type RADTally struct {
	Filters []RADFilter `json:"filters,omitempty"`
	Reducer RADReducer  `json:"reducer"`
}

// RADRequest is the embedded description of what to fetch and how to
// combine it; it is opaque bytes to everyone except the validator, which
// only needs to decode its shape (spec.md §4.2).
type RADRequest struct {
	TimeLock uint64        `json:"timeLock,omitempty"`
	Retrieve []RADRetrieve `json:"retrieve"`
	Aggregate RADAggregate `json:"aggregate"`
	Tally     RADTally     `json:"tally"`
}
