package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/witnet-go/witnet-core/internal/chain"
	"github.com/witnet-go/witnet-core/internal/storage"
	"github.com/witnet-go/witnet-core/internal/superblock"
	"github.com/witnet-go/witnet-core/internal/sync"
	"github.com/witnet-go/witnet-core/internal/types"
)

// APIHandler exposes a node's chain manager over HTTP/JSON (spec.md §6
// node-facing operations), grounded on the teacher's APIHandler
// (internal/api/routes.go) but fronting a chain.Manager instead of a
// Bitcoin RPC client and forensics store.
type APIHandler struct {
	manager *chain.Manager
	store   *storage.Store
	wsHub   *Hub
	fetcher *sync.Fetcher
}

// SetupRouter wires the public and bearer-protected route groups.
func SetupRouter(manager *chain.Manager, store *storage.Store, wsHub *Hub, fetcher *sync.Fetcher) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var.
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{manager: manager, store: store, wsHub: wsHub, fetcher: fetcher}

	// ── Public endpoints (no auth): read-only chain queries peers and
	// explorers both rely on ──────────────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
		pub.GET("/beacon", handler.handleGetLastBeacon)
		pub.GET("/dataRequests/:pointer", handler.handleGetDataRequest)
		pub.GET("/balance/:pkh", handler.handleGetBalance)
		pub.GET("/stakes", handler.handleGetStakes)
		pub.GET("/superblock", handler.handleGetLastSuperblock)
		pub.GET("/sync/progress", handler.handleSyncProgress)
	}

	// ── Protected endpoints: mutate mempool/chain state, or trigger a
	// backfill, so they sit behind bearer auth and a rate limit ────────
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	auth.Use(NewRateLimiter(60, 10).Middleware())
	{
		auth.POST("/transactions", handler.handleAddTransaction)
		auth.POST("/blocks", handler.handleAddBlocks)
		auth.POST("/beacons", handler.handlePeerBeacons)
		auth.POST("/sync", handler.handleStartSync)
		auth.POST("/superblock/votes", handler.handleAddSuperBlockVote)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  h.manager.State().String(),
		"tip":    h.manager.Tip(),
	})
}

func (h *APIHandler) handleGetLastBeacon(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.OwnLastBeacon())
}

func (h *APIHandler) handleGetDataRequest(c *gin.Context) {
	pointer := c.Param("pointer")
	hash, err := types.HashFromHex(pointer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dr_pointer: " + err.Error()})
		return
	}

	summary, ok := h.manager.DataRequestSummary(hash)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "data request not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *APIHandler) handleGetBalance(c *gin.Context) {
	pkh, err := types.PKHFromHex(c.Param("pkh"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pkh: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pkh": pkh.String(), "balance": h.manager.UTXOBalance(pkh)})
}

func (h *APIHandler) handleGetStakes(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.StakeSnapshot())
}

func (h *APIHandler) handleGetLastSuperblock(c *gin.Context) {
	sb, ok := h.manager.LastSuperblock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no superblock consolidated yet"})
		return
	}
	c.JSON(http.StatusOK, sb)
}

func (h *APIHandler) handleAddSuperBlockVote(c *gin.Context) {
	var v superblock.Vote
	if err := c.ShouldBindJSON(&v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vote: " + err.Error()})
		return
	}
	if err := h.manager.AddSuperBlockVote(v); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

func (h *APIHandler) handleSyncProgress(c *gin.Context) {
	if h.fetcher == nil {
		c.JSON(http.StatusOK, gin.H{"isRunning": false})
		return
	}
	c.JSON(http.StatusOK, h.fetcher.GetProgress())
}

func (h *APIHandler) handleAddTransaction(c *gin.Context) {
	var tx types.Transaction
	if err := c.ShouldBindJSON(&tx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction: " + err.Error()})
		return
	}
	if err := h.manager.AddTransaction(tx, true); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "admitted"})
}

func (h *APIHandler) handleAddBlocks(c *gin.Context) {
	var req struct {
		FromPeer int            `json:"fromPeer"`
		Blocks   []*types.Block `json:"blocks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blocks: " + err.Error()})
		return
	}
	if err := h.manager.AddBlocks(req.FromPeer, req.Blocks); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if h.wsHub != nil {
		for _, b := range req.Blocks {
			if payload, err := json.Marshal(b); err == nil {
				h.wsHub.Broadcast(payload)
			}
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "applied", "count": len(req.Blocks)})
}

func (h *APIHandler) handlePeerBeacons(c *gin.Context) {
	var beacons []*types.LastBeacon
	if err := c.ShouldBindJSON(&beacons); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid beacons: " + err.Error()})
		return
	}
	h.manager.PeersBeacons(beacons)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *APIHandler) handleStartSync(c *gin.Context) {
	if h.fetcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no peer configured for sync"})
		return
	}
	var req struct {
		FromEpoch uint32 `json:"fromEpoch"`
		ToEpoch   uint32 `json:"toEpoch" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range: " + err.Error()})
		return
	}
	if err := h.fetcher.FetchRange(c.Request.Context(), req.FromEpoch, req.ToEpoch); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}
