package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/pkg/log"
)

var ErrNotFound = errors.New("catalog entry not found")

var _ core.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo indexes saved snapshots by kind and time.
type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// Record inserts entry, filling ID and CreatedAt when empty. Recording the
// same path twice replaces the earlier row.
func (r *CatalogRepo) Record(ctx context.Context, entry core.CatalogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO snapshots (id, kind, name, path, query, result_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id = excluded.id,
			kind = excluded.kind,
			name = excluded.name,
			query = excluded.query,
			result_count = excluded.result_count,
			created_at = excluded.created_at`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Kind.String(), entry.Name, entry.Path, entry.Query, entry.ResultCount, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert catalog entry: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("id", entry.ID).Str("path", entry.Path).Msg("catalogued snapshot")
	return nil
}

// List returns the newest entries first. KindUnknown lists every kind and a
// non-positive limit means no limit.
func (r *CatalogRepo) List(ctx context.Context, kind core.Kind, limit int) ([]core.CatalogEntry, error) {
	query := `SELECT id, kind, name, path, query, result_count, created_at FROM snapshots`
	var args []any
	if kind != core.KindUnknown {
		query += ` WHERE kind = ?`
		args = append(args, kind.String())
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var entries []core.CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *CatalogRepo) Get(ctx context.Context, id string) (core.CatalogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, name, path, query, result_count, created_at FROM snapshots WHERE id = ?`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CatalogEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (core.CatalogEntry, error) {
	var (
		entry core.CatalogEntry
		kind  string
	)
	if err := s.Scan(&entry.ID, &kind, &entry.Name, &entry.Path, &entry.Query, &entry.ResultCount, &entry.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("failed to scan catalog entry: %w", err)
	}
	parsed, err := core.ParseKind(kind)
	if err != nil {
		return entry, fmt.Errorf("catalog entry %s: %w", entry.ID, err)
	}
	entry.Kind = parsed
	return entry, nil
}
