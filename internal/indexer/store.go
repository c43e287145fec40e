package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"piverse/internal/types"
)

const defaultListLimit = 100

// Store archives committed chain events in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// EventRow is one archived event.
type EventRow struct {
	ID         string            `json:"id"`
	Height     int64             `json:"height"`
	TxIndex    int               `json:"txIndex"`
	EventIndex int               `json:"eventIndex"`
	Type       string            `json:"type"`
	GameID     *uint64           `json:"gameId,omitempty"`
	User       *string           `json:"user,omitempty"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Type       string
	GameID     *uint64
	User       string
	FromHeight int64
	Limit      int
}

// InsertBlock writes a committed block and its events in one transaction.
// Re-inserting a height already archived is a no-op.
func (s *Store) InsertBlock(ctx context.Context, b types.CommittedBlock) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
INSERT INTO committed_blocks (height, block_time, tx_count, event_count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (height) DO NOTHING`, b.Height, b.Time.UTC(), len(b.Txs), b.EventCount())
	if err != nil {
		return fmt.Errorf("insert block %d: %w", b.Height, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, txe := range b.Txs {
		for i, ev := range txe.Events {
			attrs := attributeMap(ev)
			raw, err := json.Marshal(attrs)
			if err != nil {
				return err
			}
			batch.Queue(`
INSERT INTO chain_events (id, height, tx_index, event_index, event_type, game_id, user_addr, attributes)
VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8)`,
				NewID(), b.Height, txe.Index, i, ev.Type, gameIDOf(attrs), userOf(attrs), raw)
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert events for block %d: %w", b.Height, err)
		}
	}
	return tx.Commit(ctx)
}

// LatestHeight is the highest archived block, or 0.
func (s *Store) LatestHeight(ctx context.Context) (int64, error) {
	var h int64
	err := s.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(height), 0) FROM committed_blocks`).Scan(&h)
	return h, err
}

func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]EventRow, error) {
	limit := f.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var gameID *string
	if f.GameID != nil {
		v := strconv.FormatUint(*f.GameID, 10)
		gameID = &v
	}
	rows, err := s.Pool.Query(ctx, `
SELECT id, height, tx_index, event_index, event_type, game_id::text, user_addr, attributes, created_at
FROM chain_events
WHERE ($1 = '' OR event_type = $1)
  AND ($2::text IS NULL OR game_id = $2::text::numeric)
  AND ($3 = '' OR user_addr = $3)
  AND height >= $4
ORDER BY height, tx_index, event_index
LIMIT $5`, f.Type, gameID, f.User, f.FromHeight, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var (
			row   EventRow
			gid   *string
			attrs []byte
		)
		if err := rows.Scan(&row.ID, &row.Height, &row.TxIndex, &row.EventIndex, &row.Type, &gid, &row.User, &attrs, &row.CreatedAt); err != nil {
			return nil, err
		}
		if gid != nil {
			v, err := strconv.ParseUint(*gid, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("decode game_id of %s: %w", row.ID, err)
			}
			row.GameID = &v
		}
		if err := json.Unmarshal(attrs, &row.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes of %s: %w", row.ID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func attributeMap(ev abci.Event) map[string]string {
	m := make(map[string]string, len(ev.Attributes))
	for _, a := range ev.Attributes {
		m[a.Key] = a.Value
	}
	return m
}

// gameIDOf returns the canonical decimal game id, or nil when the event
// carries none. Ids span the full uint64 range.
func gameIDOf(attrs map[string]string) *string {
	raw, ok := attrs["gameId"]
	if !ok {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	s := strconv.FormatUint(v, 10)
	return &s
}

func userOf(attrs map[string]string) *string {
	if u, ok := attrs["user"]; ok && u != "" {
		return &u
	}
	return nil
}
