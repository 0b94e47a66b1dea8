package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/witnet-go/witnet-core/internal/api"
	"github.com/witnet-go/witnet-core/internal/chain"
	"github.com/witnet-go/witnet-core/internal/node"
	"github.com/witnet-go/witnet-core/internal/peer"
	"github.com/witnet-go/witnet-core/internal/storage"
	"github.com/witnet-go/witnet-core/internal/sync"
	"github.com/witnet-go/witnet-core/internal/types"
	"github.com/witnet-go/witnet-core/internal/validation"
	"github.com/witnet-go/witnet-core/internal/xcrypto"
)

func main() {
	log.Println("Starting witnet-core node...")

	// ─── Required environment variables ─────────────────────────────
	dbURL := requireEnv("DATABASE_URL")

	store, err := storage.Connect(context.Background(), dbURL)
	if err != nil {
		log.Printf("Warning: failed to connect to PostgreSQL, continuing without persistence: %v", err)
	} else {
		defer store.Close()
		if err := store.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: schema init failed: %v", err)
		}
	}

	cfg := chain.Config{
		Params:             validation.DefaultParams,
		SuperblockPeriod:   10,
		OutboundPeerLimit:  8,
		ConsensusThreshold: 60,
		MiningEnabled:      getEnvOrDefault("MINING_ENABLED", "false") == "true",
		BlockReward:        validation.DefaultBlockReward(250_000_000_000, 1_750_000),
	}

	genesis := types.GenesisBlock(types.BootstrapHash, nil)
	manager := chain.NewManager(cfg, genesis)

	if cfg.MiningEnabled {
		priv, err := loadOrGenerateMinerKey()
		if err != nil {
			log.Fatalf("FATAL: failed to set up mining identity: %v", err)
		}
		manager.SetMiner(&chain.Miner{PrivateKey: priv, PKH: xcrypto.PKHFromPublicKey(priv.PubKey())})
	}

	peers := connectPeers(getEnvOrDefault("PEER_ADDRS", ""))
	var fetcher *sync.Fetcher
	if len(peers) > 0 {
		fetcher = sync.NewFetcher(manager, peers[0])
	}

	clock := node.EpochClock{GenesisTimestamp: requireEnvInt64("GENESIS_TIMESTAMP"), EpochLengthSecs: 45}
	ticker := node.NewTicker(manager, clock, peers)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ticker.Run(ctx)

	wsHub := api.NewHub()
	go wsHub.Run()

	r := api.SetupRouter(manager, store, wsHub, fetcher)

	port := getEnvOrDefault("PORT", "5339")
	log.Printf("node API listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func connectPeers(addrs string) []*peer.Client {
	if addrs == "" {
		return nil
	}
	var clients []*peer.Client
	for _, addr := range strings.Split(addrs, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		clients = append(clients, peer.NewClient(peer.Config{Addr: addr}))
	}
	return clients
}

func loadOrGenerateMinerKey() (*xcrypto.PrivateKey, error) {
	if hexKey := os.Getenv("MINER_PRIVATE_KEY"); hexKey != "" {
		return xcrypto.PrivateKeyFromHex(hexKey)
	}
	log.Println("MINER_PRIVATE_KEY not set, generating an ephemeral mining identity")
	return xcrypto.GeneratePrivateKey()
}

func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: required environment variable %s is not set", key)
	}
	return val
}

func requireEnvInt64(key string) int64 {
	v, err := strconv.ParseInt(requireEnv(key), 10, 64)
	if err != nil {
		log.Fatalf("FATAL: %s must be an integer unix timestamp: %v", key, err)
	}
	return v
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
