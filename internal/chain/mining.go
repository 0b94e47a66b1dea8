package chain

import (
	"log"

	"github.com/witnet-go/witnet-core/internal/reputation"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/validation"
	"github.com/witnet-go/witnet-core/internal/wire"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

// Miner is the external signer/VRF-prover identity a node mines under; it
// is consumed as a collaborator rather than owned (spec.md §1 signature
// manager), mirroring xcrypto.Signer.
type Miner struct {
	PrivateKey *xcrypto.PrivateKey
	PKH        types.PublicKeyHash
}

// SetMiner configures the identity attemptMining signs candidate blocks
// and eligibility proofs with. A nil miner disables mining even if
// cfg.MiningEnabled is set.
func (m *Manager) SetMiner(miner *Miner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.miner = miner
}

// attemptMining implements the block-building part of spec.md §4.6
// "Mining": when the node's VRF proof meets the block eligibility target,
// it builds and signs a candidate block holding up to maxTxPerBlock value
// transfers and maxTxPerBlock data requests from the mempool. It does not
// create commits for eligible data requests and does not author tally
// transactions. Not-eligible is logged at debug level;
// this core has no log-level distinction so it is simply skipped quietly
// (spec.md §7 propagation policy).
func (m *Manager) attemptMining(epoch uint32) {
	if m.miner == nil {
		return
	}

	alpha := validation.VRFInput(m.chainState.Tip.HashPrevBlock, types.HashWithFirstU32(epoch))
	proof, _, err := xcrypto.VRFProve(m.miner.PrivateKey, alpha)
	if err != nil {
		log.Printf("[ChainManager] mining: VRF prove failed: %v", err)
		return
	}
	target := reputation.BlockEligibilityTarget(m.chainState.Reputation.ActiveIdentitiesCount(), m.cfg.Params.MiningBackupFactor)
	proofHash := xcrypto.VRFProofHash(proof.Proof)
	if !proofHash.LessOrEqual(target) {
		return // not eligible this epoch
	}

	vts := m.mempool.DrainValueTransfers(maxTxPerBlock)
	drs := m.mempool.DataRequests
	if len(drs) > maxTxPerBlock {
		drs = drs[:maxTxPerBlock]
	}

	// The mint output assumes zero fees and nothing adjusts it afterwards:
	// a candidate whose transactions carry fees fails mint validation
	// (block reward plus fees) when it is applied.
	mintOutputs := []types.ValueTransferOutput{{PKH: m.miner.PKH, Value: m.cfg.BlockReward(epoch)}}

	candidate := &types.Block{
		Header: types.BlockHeader{
			Beacon: types.Checkpoint{Epoch: epoch, HashPrevBlock: m.chainState.Tip.HashPrevBlock},
			Proof:  types.BlockEligibilityClaim{Proof: proof},
		},
		Mint: &types.Transaction{
			Kind: types.KindMint,
			Mint: &types.MintTransactionBody{Epoch: epoch, Outputs: mintOutputs},
		},
		ValueTransfers: vts,
		DataRequests:   drs,
	}
	candidate.Header.MerkleRoots = wire.MerkleRootsOf(candidate)

	headerHash := wire.BlockHash(candidate)
	sig := xcrypto.Sign(m.miner.PrivateKey, headerHash)
	candidate.BlockSig = types.TransactionSignature{
		Signature: sig,
		PublicKey: m.miner.PrivateKey.PubKey().SerializeCompressed(),
	}

	log.Printf("[ChainManager] mined eligible candidate block for epoch %d (%d vts, %d drs)",
		epoch, len(vts), len(drs))
	m.candidates = append(m.candidates, candidate)
}

const maxTxPerBlock = 50
