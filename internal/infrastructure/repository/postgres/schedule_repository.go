package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

// ScheduleRepository persists deferred message deletions. The sweeper
// drains due rows and removes them after the transport delete.
type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS scheduled_deletions (
	chat_id BIGINT NOT NULL,
	message_id BIGINT NOT NULL,
	delete_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (chat_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_scheduled_deletions_delete_at ON scheduled_deletions(delete_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// ScheduleDelete records or reschedules one message deletion.
func (r *ScheduleRepository) ScheduleDelete(ctx context.Context, ref domain.MessageRef, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO scheduled_deletions (chat_id, message_id, delete_at)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id, message_id) DO UPDATE SET delete_at = EXCLUDED.delete_at
`, ref.ChatID, ref.MessageID, at.UTC())
	if err != nil {
		return fmt.Errorf("insert scheduled deletion: %w", err)
	}
	return nil
}

// DueDeletions lists messages whose deletion time has passed, oldest first.
func (r *ScheduleRepository) DueDeletions(ctx context.Context, now time.Time, limit int) ([]domain.MessageRef, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT chat_id, message_id
FROM scheduled_deletions
WHERE delete_at <= $1
ORDER BY delete_at
LIMIT $2
`, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query due deletions: %w", err)
	}
	defer rows.Close()

	var refs []domain.MessageRef
	for rows.Next() {
		var ref domain.MessageRef
		if err := rows.Scan(&ref.ChatID, &ref.MessageID); err != nil {
			return nil, fmt.Errorf("scan due deletion: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due deletions: %w", err)
	}
	return refs, nil
}

func (r *ScheduleRepository) Remove(ctx context.Context, ref domain.MessageRef) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM scheduled_deletions
WHERE chat_id = $1 AND message_id = $2
`, ref.ChatID, ref.MessageID)
	if err != nil {
		return fmt.Errorf("remove scheduled deletion: %w", err)
	}
	return nil
}
