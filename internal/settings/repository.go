// Package settings persists named ranking option profiles.
package settings

import (
	"blockcolors/internal/ranking"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultProfile = "default"

var ErrProfileNotFound = errors.New("settings profile not found")

type Profile struct {
	Name      string          `json:"name"`
	Options   ranking.Options `json:"options"`
	UpdatedAt string          `json:"updatedAt"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

func profileName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultProfile
	}
	return trimmed
}

// Save stores normalized options under name, replacing any previous value.
func (r *Repository) Save(ctx context.Context, name string, options ranking.Options) (Profile, error) {
	profile := Profile{
		Name:      profileName(name),
		Options:   options.Normalized(),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(profile.Options)
	if err != nil {
		return Profile{}, fmt.Errorf("encode profile %s: %w", profile.Name, err)
	}

	if _, err := r.db.ExecContext(
		ctx,
		`INSERT INTO comparison_settings(name, options_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET options_json = excluded.options_json, updated_at = excluded.updated_at`,
		profile.Name,
		string(payload),
		profile.UpdatedAt,
	); err != nil {
		return Profile{}, fmt.Errorf("save profile %s: %w", profile.Name, err)
	}
	return profile, nil
}

// Get reads a profile. Fields missing from the stored JSON keep their
// defaults.
func (r *Repository) Get(ctx context.Context, name string) (Profile, error) {
	profile := Profile{Name: profileName(name)}
	var payload string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT options_json, updated_at FROM comparison_settings WHERE name = ?",
		profile.Name,
	).Scan(&payload, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("get profile %s: %w", profile.Name, err)
	}

	options := ranking.DefaultOptions()
	if err := json.Unmarshal([]byte(payload), &options); err != nil {
		return Profile{}, fmt.Errorf("decode profile %s: %w", profile.Name, err)
	}
	profile.Options = options.Normalized()
	return profile, nil
}

// Options returns the named profile's options, or the defaults when the
// profile has never been saved.
func (r *Repository) Options(ctx context.Context, name string) (ranking.Options, error) {
	profile, err := r.Get(ctx, name)
	if errors.Is(err, ErrProfileNotFound) {
		return ranking.DefaultOptions(), nil
	}
	if err != nil {
		return ranking.Options{}, err
	}
	return profile.Options, nil
}

func (r *Repository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM comparison_settings ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}
	return names, nil
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	name = profileName(name)
	result, err := r.db.ExecContext(ctx, "DELETE FROM comparison_settings WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted profile count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
