// Package node drives a chain.Manager with wall-clock epochs and outbound
// peer polling, grounded on the teacher's mempool.Poller ticker loop
// (internal/mempool/poller.go): a context-cancellable goroutine gated on a
// single time.Ticker, here re-purposed from a 3-second mempool scan to the
// 45-second epoch cadence spec.md §4.6 assumes.
package node

import (
	"context"
	"log"
	"time"

	"github.com/witnet-go/witnet-core/internal/chain"
	"github.com/witnet-go/witnet-core/internal/peer"
	"github.com/witnet-go/witnet-core/internal/types"
)

// EpochClock computes checkpoints from a genesis timestamp and a fixed
// epoch length, matching the EpochStartTimestamp assumption chain.Manager
// bakes in (internal/chain/blocks.go's epochLengthSecs).
type EpochClock struct {
	GenesisTimestamp int64
	EpochLengthSecs  uint64
}

// EpochLength is the canonical epoch duration every manager assumes.
const EpochLength = 45 * time.Second

// CheckpointAt returns the epoch the given unix timestamp falls in.
func (c EpochClock) CheckpointAt(unixSecs int64) uint32 {
	if unixSecs <= c.GenesisTimestamp {
		return 0
	}
	return uint32(uint64(unixSecs-c.GenesisTimestamp) / c.EpochLengthSecs)
}

// Ticker drives a chain.Manager with epoch notifications and periodic
// peer beacon polling (spec.md §4.6's wall-clock notifier and
// peer-beacon consensus collaborators).
type Ticker struct {
	manager *chain.Manager
	clock   EpochClock
	peers   []*peer.Client

	nowFunc func() time.Time
}

// NewTicker builds a ticker for manager, polling peers every epoch.
func NewTicker(manager *chain.Manager, clock EpochClock, peers []*peer.Client) *Ticker {
	return &Ticker{manager: manager, clock: clock, peers: peers, nowFunc: time.Now}
}

// Run blocks, firing one epoch tick every EpochLength until ctx is
// cancelled. Each tick polls every configured peer for its LastBeacon,
// feeds the consensus into the manager, then fires EpochNotification.
func (t *Ticker) Run(ctx context.Context) {
	log.Println("[node] starting epoch ticker")

	ticker := time.NewTicker(EpochLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[node] stopping epoch ticker")
			return
		case now := <-ticker.C:
			t.tick(now)
		}
	}
}

func (t *Ticker) tick(now time.Time) {
	epoch := t.clock.CheckpointAt(now.Unix())

	beacons := t.pollPeerBeacons()
	if len(beacons) > 0 {
		t.manager.PeersBeacons(beacons)
	}

	checkpoint := types.Checkpoint{Epoch: epoch, HashPrevBlock: t.manager.Tip().HashPrevBlock}
	t.manager.EpochNotification(checkpoint, uint64(now.Unix()))
}

func (t *Ticker) pollPeerBeacons() []*types.LastBeacon {
	beacons := make([]*types.LastBeacon, len(t.peers))
	for i, p := range t.peers {
		beacon, err := p.GetLastBeacon()
		if err != nil {
			log.Printf("[node] peer %s unreachable: %v", p.Addr(), err)
			continue
		}
		beacons[i] = beacon
	}
	return beacons
}
