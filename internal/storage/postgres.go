// Package storage persists chain state snapshots to PostgreSQL, grounded
// on the teacher's db.PostgresStore (internal/db/postgres.go): the same
// pgxpool connect/init-schema/upsert shape, here persisting consolidated
// blocks, finished data requests and stake balances instead of CoinJoin
// heuristics and evidence edges.
package storage

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/witnet-go/witnet-core/internal/chain"
	"github.com/witnet-go/witnet-core/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// Store is the persistence layer a node uses to checkpoint chain state it
// would otherwise have to rebuild by replaying every block since genesis.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx connection pool and verifies it with a ping.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	log.Println("[storage] connected to PostgreSQL")
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates every table this store needs, idempotently.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("storage: init schema: %w", err)
	}
	log.Println("[storage] schema initialized")
	return nil
}

// SaveBlock records a consolidated block's checkpoint (spec.md §4.6
// consolidation).
func (s *Store) SaveBlock(ctx context.Context, b *types.Block, blockHash types.Hash) error {
	const sql = `
		INSERT INTO blocks (epoch, block_hash, prev_block_hash, num_transactions)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (epoch) DO UPDATE
		SET block_hash = EXCLUDED.block_hash, prev_block_hash = EXCLUDED.prev_block_hash,
			num_transactions = EXCLUDED.num_transactions;
	`
	_, err := s.pool.Exec(ctx, sql,
		b.Header.Beacon.Epoch, blockHash.String(), b.Header.Beacon.HashPrevBlock.String(), len(b.AllTransactions()))
	return err
}

// SaveFinishedDataRequest archives a data request that just reached TALLY
// (spec.md §4.3 archive).
func (s *Store) SaveFinishedDataRequest(ctx context.Context, drPointer types.Hash, requester types.PublicKeyHash, summary chain.DataRequestSummary) error {
	const sql = `
		INSERT INTO data_requests (dr_pointer, requester, witnesses, round, num_commits, num_reveals, stage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dr_pointer) DO UPDATE
		SET stage = EXCLUDED.stage, num_commits = EXCLUDED.num_commits, num_reveals = EXCLUDED.num_reveals;
	`
	_, err := s.pool.Exec(ctx, sql,
		drPointer.String(), requester.String(), summary.Witnesses, summary.Round, summary.Commits, summary.Reveals, summary.Stage)
	return err
}

// SaveSuperblock records a newly consolidated superblock checkpoint
// (spec.md §4.7).
func (s *Store) SaveSuperblock(ctx context.Context, superblockIndex uint32, lastBlock types.Checkpoint) error {
	const sql = `
		INSERT INTO superblocks (superblock_index, last_block_epoch, last_block_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (superblock_index) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, sql, superblockIndex, lastBlock.Epoch, lastBlock.HashPrevBlock.String())
	return err
}

// SaveStakes upserts every validator's current stake balance.
func (s *Store) SaveStakes(ctx context.Context, snapshot []chain.StakeSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const sql = `
		INSERT INTO stake_entries (validator_pkh, withdrawer, value, next_nonce)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (validator_pkh, withdrawer) DO UPDATE
		SET value = EXCLUDED.value, next_nonce = EXCLUDED.next_nonce, updated_at = NOW();
	`
	for _, e := range snapshot {
		if _, err := tx.Exec(ctx, sql, e.Validator.String(), e.Withdrawer.String(), e.Value, e.NextNonce); err != nil {
			return fmt.Errorf("storage: save stake entry: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// DataRequestPage is a paginated slice of archived data requests, for the
// node API's explorer-style queries.
type DataRequestPage struct {
	DrPointer string `json:"drPointer"`
	Requester string `json:"requester"`
	Witnesses int    `json:"witnesses"`
	Stage     string `json:"stage"`
}

// ListFinishedDataRequests returns up to limit archived data requests,
// most recent first.
func (s *Store) ListFinishedDataRequests(ctx context.Context, page, limit int) ([]DataRequestPage, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	const sql = `
		SELECT dr_pointer, requester, witnesses, stage
		FROM data_requests
		ORDER BY finished_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DataRequestPage{}
	for rows.Next() {
		var r DataRequestPage
		if err := rows.Scan(&r.DrPointer, &r.Requester, &r.Witnesses, &r.Stage); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Pool exposes the underlying connection pool to subsystems that need
// direct access, e.g. a future reorg-recovery job.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }
