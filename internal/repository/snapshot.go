package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slippi-ranks/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("snapshot not found")

type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Save stores snapshot and its entries in one transaction, assigning an ID when
// the snapshot has none.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *domain.LeaderboardSnapshot) error {
	id := snapshot.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO leaderboard_snapshots (id, taken_at) VALUES (?, ?)`,
		id, snapshot.TakenAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_entries
			(snapshot_id, position, code, display_tag, tier_label, rating, wins, losses, characters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range snapshot.Entries {
		characters, err := json.Marshal(nonNil(entry.CharacterIDs))
		if err != nil {
			return fmt.Errorf("failed to encode characters: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			id, i, entry.Code, entry.DisplayTag, entry.TierLabel,
			entry.Rating, entry.Wins, entry.Losses, string(characters),
		); err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", entry.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	snapshot.ID = id
	r.logger.Debug().Str("snapshot_id", id).Int("entries", len(snapshot.Entries)).Msg("snapshot stored")
	return nil
}

// Latest returns the newest stored snapshot, or ErrNotFound when there is none.
func (r *SnapshotRepository) Latest(ctx context.Context) (*domain.LeaderboardSnapshot, error) {
	snapshots, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, ErrNotFound
	}
	return &snapshots[0], nil
}

// List returns up to limit snapshots, newest first.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]domain.LeaderboardSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, taken_at FROM leaderboard_snapshots ORDER BY taken_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}

	var result []domain.LeaderboardSnapshot
	for rows.Next() {
		var (
			id      string
			takenAt time.Time
		)
		if err := rows.Scan(&id, &takenAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		result = append(result, domain.LeaderboardSnapshot{ID: id, TakenAt: takenAt.UTC()})
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		entries, err := r.entries(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Entries = entries
	}
	return result, nil
}

func (r *SnapshotRepository) entries(ctx context.Context, snapshotID string) ([]domain.PlayerProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, display_tag, tier_label, rating, wins, losses, characters
		FROM snapshot_entries
		WHERE snapshot_id = ?
		ORDER BY position`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.PlayerProfile{}
	for rows.Next() {
		var (
			p          domain.PlayerProfile
			characters string
		)
		if err := rows.Scan(&p.Code, &p.DisplayTag, &p.TierLabel, &p.Rating, &p.Wins, &p.Losses, &characters); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := json.Unmarshal([]byte(characters), &p.CharacterIDs); err != nil {
			r.logger.Warn().Err(err).Str("snapshot_id", snapshotID).Str("code", p.Code).Msg("bad characters column")
		}
		p.CharacterIDs = nonNil(p.CharacterIDs)
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// KnownPlayers lists every code seen in a stored leaderboard with its most recent
// display tag.
func (r *SnapshotRepository) KnownPlayers(ctx context.Context) ([]domain.KnownPlayer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.code, e.display_tag
		FROM snapshot_entries e
		JOIN leaderboard_snapshots s ON s.id = e.snapshot_id
		WHERE s.taken_at = (
			SELECT MAX(s2.taken_at)
			FROM snapshot_entries e2
			JOIN leaderboard_snapshots s2 ON s2.id = e2.snapshot_id
			WHERE e2.code = e.code
		)
		GROUP BY e.code
		ORDER BY e.code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query known players: %w", err)
	}
	defer rows.Close()

	var players []domain.KnownPlayer
	for rows.Next() {
		var p domain.KnownPlayer
		if err := rows.Scan(&p.Code, &p.DisplayTag); err != nil {
			return nil, fmt.Errorf("failed to scan known player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
