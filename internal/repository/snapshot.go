package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"royale-wrapped/internal/domain"
)

// SnapshotRepository stores the raw upstream payloads per player tag
// so repeated requests within the TTL skip the Clash Royale API.
type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(db *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

func (r *SnapshotRepository) Get(ctx context.Context, tag string) (*domain.Snapshot, error) {
	const query = `
		SELECT tag, player_json, battle_log_json, fetched_at, created_at, updated_at
		FROM snapshots WHERE tag = ?`

	var snap domain.Snapshot
	err := r.db.QueryRowContext(ctx, query, tag).Scan(
		&snap.Tag,
		&snap.PlayerJSON,
		&snap.BattleLogJSON,
		&snap.FetchedAt,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("tag", tag).Msg("failed to load snapshot")
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &snap, nil
}

func (r *SnapshotRepository) Upsert(ctx context.Context, snap *domain.Snapshot) error {
	const query = `
		INSERT INTO snapshots (tag, player_json, battle_log_json, fetched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tag) DO UPDATE SET
			player_json = excluded.player_json,
			battle_log_json = excluded.battle_log_json,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		snap.Tag,
		snap.PlayerJSON,
		snap.BattleLogJSON,
		snap.FetchedAt,
		now,
		now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("tag", snap.Tag).Msg("failed to upsert snapshot")
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// IsStale reports whether the snapshot for tag is missing or older
// than ttl.
func (r *SnapshotRepository) IsStale(ctx context.Context, tag string, ttl time.Duration) (bool, error) {
	const query = `SELECT fetched_at FROM snapshots WHERE tag = ?`

	var fetchedAt time.Time
	err := r.db.QueryRowContext(ctx, query, tag).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check snapshot age: %w", err)
	}

	stale := time.Since(fetchedAt) > ttl
	r.logger.Debug().
		Str("tag", tag).
		Time("fetched_at", fetchedAt).
		Dur("ttl", ttl).
		Bool("stale", stale).
		Msg("snapshot freshness checked")
	return stale, nil
}
