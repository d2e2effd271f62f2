// Package sources stores the resource pack folders the scanner ingests.
package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrSourceNotFound = errors.New("asset source not found")

// Source is one asset root and its optional data root.
type Source struct {
	ID             int64  `json:"id"`
	AssetRoot      string `json:"assetRoot"`
	DataRoot       string `json:"dataRoot,omitempty"`
	Enabled        bool   `json:"enabled"`
	LastIngestedAt string `json:"lastIngestedAt,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

const selectColumns = "id, asset_root, data_root, enabled, COALESCE(last_ingested_at, ''), created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (Source, error) {
	var source Source
	var enabledInt int
	if err := row.Scan(
		&source.ID,
		&source.AssetRoot,
		&source.DataRoot,
		&enabledInt,
		&source.LastIngestedAt,
		&source.CreatedAt,
		&source.UpdatedAt,
	); err != nil {
		return Source{}, err
	}
	source.Enabled = enabledInt == 1
	return source, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (r *Repository) List(ctx context.Context) ([]Source, error) {
	return r.list(ctx, "SELECT "+selectColumns+" FROM asset_sources ORDER BY id")
}

// ListEnabled returns enabled sources in the order they were added, which is
// the order they are ingested in.
func (r *Repository) ListEnabled(ctx context.Context) ([]Source, error) {
	return r.list(ctx, "SELECT "+selectColumns+" FROM asset_sources WHERE enabled = 1 ORDER BY id")
}

func (r *Repository) list(ctx context.Context, query string) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list asset sources: %w", err)
	}
	defer rows.Close()

	items := make([]Source, 0)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset source row: %w", err)
		}
		items = append(items, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset source rows: %w", err)
	}

	return items, nil
}

func (r *Repository) Add(ctx context.Context, assetRoot string, dataRoot string) (Source, error) {
	if strings.TrimSpace(assetRoot) == "" {
		return Source{}, errors.New("asset root is required")
	}

	timestamp := now()
	result, err := r.db.ExecContext(
		ctx,
		"INSERT INTO asset_sources(asset_root, data_root, enabled, created_at, updated_at) VALUES (?, ?, 1, ?, ?)",
		assetRoot,
		dataRoot,
		timestamp,
		timestamp,
	)
	if err != nil {
		return Source{}, fmt.Errorf("insert asset source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Source{}, fmt.Errorf("read asset source id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Source, error) {
	source, err := scanSource(r.db.QueryRowContext(
		ctx,
		"SELECT "+selectColumns+" FROM asset_sources WHERE id = ?",
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Source{}, ErrSourceNotFound
		}
		return Source{}, fmt.Errorf("get asset source %d: %w", id, err)
	}
	return source, nil
}

func (r *Repository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	enabledInt := 0
	if enabled {
		enabledInt = 1
	}

	return r.update(ctx, id, "UPDATE asset_sources SET enabled = ?, updated_at = ? WHERE id = ?", enabledInt, now(), id)
}

// MarkIngested stamps the sources that took part in a successful ingestion.
func (r *Repository) MarkIngested(ctx context.Context, ids []int64) error {
	timestamp := now()
	for _, id := range ids {
		if err := r.update(ctx, id, "UPDATE asset_sources SET last_ingested_at = ?, updated_at = ? WHERE id = ?", timestamp, timestamp, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) update(ctx context.Context, id int64, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update asset source %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated asset source count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSourceNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM asset_sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete asset source %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted asset source count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSourceNotFound
	}

	return nil
}
