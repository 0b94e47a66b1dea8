package types

// DataRequestOutput is the economic envelope of a data request: how many
// witnesses it wants, what it pays, and how much collateral each witness
// must lock (spec.md §3).
type DataRequestOutput struct {
	DataRequest            RADRequest `json:"dataRequest"`
	Witnesses              uint16     `json:"witnesses"`
	WitnessReward          uint64     `json:"witnessReward"`
	CommitAndRevealFee     uint64     `json:"commitAndRevealFee"`
	MinConsensusPercentage uint32     `json:"minConsensusPercentage"`
	Collateral             uint64     `json:"collateral"`
}

// TotalLocked is the sum every successful commit+reveal round pays out of
// the DR's own locked value: witnesses * (reward + 2*fee).
func (o DataRequestOutput) TotalLocked() uint64 {
	return uint64(o.Witnesses) * (o.WitnessReward + 2*o.CommitAndRevealFee)
}

// VTTransactionBody is a value-transfer: N inputs, M outputs, fee is the
// difference.
type VTTransactionBody struct {
	Inputs  []Input               `json:"inputs"`
	Outputs []ValueTransferOutput `json:"outputs"`
}

// DRTransactionBody creates a new data request.
type DRTransactionBody struct {
	Inputs            []Input               `json:"inputs"`
	Outputs           []ValueTransferOutput `json:"outputs"` // at most one, the change output
	DataRequestOutput DataRequestOutput     `json:"dataRequestOutput"`
}

// VRFProof is the (opaque) proof a committer produces over (vrf_input, dr_pointer).
type VRFProof struct {
	Proof     []byte        `json:"proof"`
	PKH       PublicKeyHash `json:"pkh"`
	PublicKey []byte        `json:"publicKey"`
}

// CommitTransactionBody is a witness's eligibility proof plus a hash
// commitment to the value it will reveal later, backed by collateral.
type CommitTransactionBody struct {
	DRPointer        Hash     `json:"drPointer"`
	Proof            VRFProof `json:"proof"`
	Commitment       Hash     `json:"commitment"` // Hash(reveal_signature)
	CollateralInputs []Input  `json:"collateralInputs"`
	ChangeOutput     *ValueTransferOutput `json:"changeOutput,omitempty"`
}

// RevealTransactionBody discloses the value a committer fetched.
type RevealTransactionBody struct {
	DRPointer  Hash          `json:"drPointer"`
	RevealBody []byte        `json:"revealBytes"`
	PKH        PublicKeyHash `json:"pkh"`
}

// TallyTransactionBody closes a data request: rewards, refunds, and the
// accounting of who was in/out of consensus.
type TallyTransactionBody struct {
	DRPointer        Hash                  `json:"drPointer"`
	TallyBytes        []byte                `json:"tallyBytes"`
	Outputs           []ValueTransferOutput `json:"outputs"`
	OutOfConsensusPKH []PublicKeyHash       `json:"outOfConsensusPkhs"`
	ErrorWitnessesPKH []PublicKeyHash       `json:"errorWitnessesPkhs"`
}

// MintTransactionBody is the leading, inputless transaction of every block.
type MintTransactionBody struct {
	Epoch   uint32                `json:"epoch"`
	Outputs []ValueTransferOutput `json:"outputs"`
}

// StakeTransactionBody locks coins toward validator power.
type StakeTransactionBody struct {
	Inputs     []Input       `json:"inputs"`
	ChangeOutput *ValueTransferOutput `json:"changeOutput,omitempty"`
	Validator  PublicKeyHash `json:"validator"`
	Withdrawer PublicKeyHash `json:"withdrawer"`
	Value      uint64        `json:"value"`
	Nonce      uint64        `json:"nonce"`
}

// UnstakeTransactionBody unlocks coins from validator power after a
// withdrawal time-lock.
type UnstakeTransactionBody struct {
	Validator  PublicKeyHash `json:"validator"`
	Withdrawer PublicKeyHash `json:"withdrawer"`
	Value      uint64        `json:"value"`
	Nonce      uint64        `json:"nonce"`
	Output     ValueTransferOutput `json:"output"`
}

// TransactionKind tags the sum type below.
type TransactionKind uint8

const (
	KindMint TransactionKind = iota
	KindValueTransfer
	KindDataRequest
	KindCommit
	KindReveal
	KindTally
	KindStake
	KindUnstake
)

func (k TransactionKind) String() string {
	switch k {
	case KindMint:
		return "Mint"
	case KindValueTransfer:
		return "ValueTransfer"
	case KindDataRequest:
		return "DataRequest"
	case KindCommit:
		return "Commit"
	case KindReveal:
		return "Reveal"
	case KindTally:
		return "Tally"
	case KindStake:
		return "Stake"
	case KindUnstake:
		return "Unstake"
	default:
		return "Unknown"
	}
}

// Transaction is a tagged union over the eight transaction kinds. Exactly
// one of the body pointers is non-nil, matching the active Kind. Using an
// explicit tag plus per-kind struct (rather than an interface hierarchy)
// keeps validator dispatch a single switch and avoids forcing unrelated
// kinds (Commit's VRF, VT's fee arithmetic) to share a base type.
type Transaction struct {
	Kind TransactionKind `json:"kind"`

	Mint          *MintTransactionBody    `json:"mint,omitempty"`
	ValueTransfer *VTTransactionBody      `json:"valueTransfer,omitempty"`
	DataRequest   *DRTransactionBody      `json:"dataRequest,omitempty"`
	Commit        *CommitTransactionBody  `json:"commit,omitempty"`
	Reveal        *RevealTransactionBody  `json:"reveal,omitempty"`
	Tally         *TallyTransactionBody   `json:"tally,omitempty"`
	Stake         *StakeTransactionBody   `json:"stake,omitempty"`
	Unstake       *UnstakeTransactionBody `json:"unstake,omitempty"`

	// Signatures, one per input except Unstake (which signs as a whole).
	Signatures []TransactionSignature `json:"signatures,omitempty"`
}

// TransactionSignature pairs a DER/compact signature with the public key
// that must recover to the spent output's pkh.
type TransactionSignature struct {
	Signature []byte `json:"signature"`
	PublicKey []byte `json:"publicKey"`
}
