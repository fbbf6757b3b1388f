package audit

import (
	"context"
	"embed"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// Store mirrors audit entries into Postgres for querying across table
// lifetimes. It is optional; the JSONL log remains the source of truth.
type Store struct{ *pgxpool.Pool }

// OpenStore connects to the audit database.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool}, nil
}

// Migrate applies the embedded schema.
func (s *Store) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = s.Exec(ctx, string(sqlBytes))
	return err
}

// Insert persists one entry.
func (s *Store) Insert(ctx context.Context, entry Entry) error {
	stacks, err := json.Marshal(entry.Stacks)
	if err != nil {
		return err
	}
	_, err = s.Exec(ctx, `
        INSERT INTO audit_entries
            (at, table_id, hand_id, stage, event, seat_id, action, amount, pot, stack, hole_cards, stacks)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
    `, entry.At, entry.TableID, entry.HandID, entry.Stage, entry.Event, entry.SeatID,
		entry.Action, entry.Amount, entry.Pot, entry.Stack, entry.HoleCards, stacks)
	return err
}

// Close releases the pool.
func (s *Store) Close() {
	s.Pool.Close()
}
