package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/witnet-go/witnet-core/internal/chain"
	"github.com/witnet-go/witnet-core/internal/peer"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/validation"
)

type jsonRPCResponse struct {
	Result json.RawMessage `json:"result"`
}

// emptyBlocksServer answers every getBlocks call with an empty batch, so
// FetchRange can run to completion without needing a manager past
// WaitingConsensus.
func emptyBlocksServer(t *testing.T) *peer.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := json.Marshal([]*types.Block{})
		_ = json.NewEncoder(w).Encode(jsonRPCResponse{Result: raw})
	}))
	t.Cleanup(srv.Close)
	return peer.NewClient(peer.Config{Addr: strings.TrimPrefix(srv.URL, "http://")})
}

func testManager() *chain.Manager {
	genesis := types.GenesisBlock(types.HashFromBytes([]byte("bootstrap")), nil)
	return chain.NewManager(chain.Config{Params: validation.DefaultParams}, genesis)
}

func TestFetchRangeCompletesOnEmptyBatches(t *testing.T) {
	client := emptyBlocksServer(t)
	fetcher := NewFetcher(testManager(), client)

	if err := fetcher.FetchRange(context.Background(), 0, 250); err != nil {
		t.Fatalf("FetchRange: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.GetProgress().IsRunning && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	progress := fetcher.GetProgress()
	if progress.IsRunning {
		t.Fatal("fetch did not complete within the deadline")
	}
	if progress.TotalFetched != 0 {
		t.Errorf("expected no blocks fetched from an empty-batch server, got %d", progress.TotalFetched)
	}
}

func TestFetchRangeRejectsConcurrentRun(t *testing.T) {
	client := emptyBlocksServer(t)
	fetcher := NewFetcher(testManager(), client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := fetcher.FetchRange(ctx, 0, 1000); err != nil {
		t.Fatalf("first FetchRange: %v", err)
	}
	if err := fetcher.FetchRange(ctx, 0, 1000); err == nil {
		t.Error("expected a second concurrent FetchRange to be rejected")
	}
}
