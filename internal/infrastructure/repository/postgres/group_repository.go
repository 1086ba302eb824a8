package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

// GroupRepository reads per-chat configuration. The configuration service
// owns writes; this core only queries.
type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across bot instances.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS groups (
	chat_id BIGINT PRIMARY KEY,
	admin_user_id BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS group_sources (
	chat_id BIGINT NOT NULL REFERENCES groups(chat_id) ON DELETE CASCADE,
	position INT NOT NULL,
	source_id TEXT NOT NULL,
	PRIMARY KEY (chat_id, position)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// GetGroupConfig returns the chat's admin and its source list in
// configured order.
func (r *GroupRepository) GetGroupConfig(ctx context.Context, chatID int64) (*domain.GroupConfig, error) {
	cfg := domain.GroupConfig{ChatID: chatID}

	row := r.db.QueryRowContext(ctx, `
SELECT admin_user_id
FROM groups
WHERE chat_id = $1
`, chatID)
	if err := row.Scan(&cfg.AdminUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrGroupNotFound, "get group config", err)
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT source_id
FROM group_sources
WHERE chat_id = $1
ORDER BY position
`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query group sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sourceID string
		if err := rows.Scan(&sourceID); err != nil {
			return nil, fmt.Errorf("scan group source: %w", err)
		}
		cfg.SourceIDs = append(cfg.SourceIDs, sourceID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group sources: %w", err)
	}

	return &cfg, nil
}
