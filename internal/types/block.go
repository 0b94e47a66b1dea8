package types

// Checkpoint is an epoch paired with the hash of the block that closed it.
type Checkpoint struct {
	Epoch         uint32 `json:"epoch"`
	HashPrevBlock Hash   `json:"hashPrevBlock"`
}

// Beacon is the shortest identifier of a chain tip: the block checkpoint
// alone. LastBeacon (the wire message) additionally carries the highest
// superblock checkpoint, see LastBeacon below.
type Beacon struct {
	Checkpoint Checkpoint `json:"checkpoint"`
}

// LastBeacon is the message peers exchange to describe their chain tip.
type LastBeacon struct {
	HighestBlockCheckpoint      Checkpoint `json:"highestBlockCheckpoint"`
	HighestSuperBlockCheckpoint Checkpoint `json:"highestSuperBlockCheckpoint"`
}

// BlockEligibilityClaim is a block producer's VRF proof that it won the
// per-epoch mining lottery.
type BlockEligibilityClaim struct {
	Proof VRFProof `json:"proof"`
}

// MerkleRoots has one root per transaction kind, in the fixed ordering
// validators must apply: mint, value_transfer, data_request, commit,
// reveal, tally, stake, unstake.
type MerkleRoots struct {
	Mint          Hash `json:"mint"`
	ValueTransfer Hash `json:"valueTransfer"`
	DataRequest   Hash `json:"dataRequest"`
	Commit        Hash `json:"commit"`
	Reveal        Hash `json:"reveal"`
	Tally         Hash `json:"tally"`
	Stake         Hash `json:"stake"`
	Unstake       Hash `json:"unstake"`
}

// BlockHeader carries everything needed to validate a block cheaply,
// before looking at any transaction body.
type BlockHeader struct {
	Signals     uint32                `json:"signals"` // TAPI signaling bitfield
	Beacon      Checkpoint            `json:"beacon"`
	MerkleRoots MerkleRoots           `json:"merkleRoots"`
	Proof       BlockEligibilityClaim `json:"proof"`
	BnLastEpoch *uint32               `json:"bnLastEpoch,omitempty"`
}

// Block is a full block: header, producer signature over the header, and
// the transaction bodies in fixed kind order.
type Block struct {
	Header   BlockHeader          `json:"header"`
	BlockSig TransactionSignature `json:"blockSig"`

	Mint           *Transaction `json:"mint"`
	ValueTransfers []Transaction `json:"valueTransfers,omitempty"`
	DataRequests   []Transaction `json:"dataRequests,omitempty"`
	Commits        []Transaction `json:"commits,omitempty"`
	Reveals        []Transaction `json:"reveals,omitempty"`
	Tallies        []Transaction `json:"tallies,omitempty"`
	Stakes         []Transaction `json:"stakes,omitempty"`
	Unstakes       []Transaction `json:"unstakes,omitempty"`
}

// AllTransactions returns every transaction in the block in the fixed
// validation order (spec.md §5 ordering guarantee): mint, value_transfer,
// data_request, commit, reveal, tally, stake, unstake.
func (b *Block) AllTransactions() []Transaction {
	total := 1 + len(b.ValueTransfers) + len(b.DataRequests) + len(b.Commits) +
		len(b.Reveals) + len(b.Tallies) + len(b.Stakes) + len(b.Unstakes)
	out := make([]Transaction, 0, total)
	if b.Mint != nil {
		out = append(out, *b.Mint)
	}
	out = append(out, b.ValueTransfers...)
	out = append(out, b.DataRequests...)
	out = append(out, b.Commits...)
	out = append(out, b.Reveals...)
	out = append(out, b.Tallies...)
	out = append(out, b.Stakes...)
	out = append(out, b.Unstakes...)
	return out
}

// Epoch returns the block's epoch, the canonical field mining/validation
// code reads instead of reaching into Header.Beacon directly.
func (b *Block) Epoch() uint32 { return b.Header.Beacon.Epoch }

// BootstrapHash is the fixed hash_prev_block every genesis block declares.
var BootstrapHash = Hash{} // all-zero; overridden per network by config

// GenesisBlock builds the distinct, signature-less genesis block (spec.md
// §4.5): no inputs, outputs only, hash_prev_block == bootstrap hash.
func GenesisBlock(bootstrapHash Hash, outputs []ValueTransferOutput) *Block {
	return &Block{
		Header: BlockHeader{
			Beacon: Checkpoint{Epoch: 0, HashPrevBlock: bootstrapHash},
		},
		Mint: &Transaction{
			Kind: KindMint,
			Mint: &MintTransactionBody{Epoch: 0, Outputs: outputs},
		},
	}
}
