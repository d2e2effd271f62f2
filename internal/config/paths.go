package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const AppSlug = "blockcolors"

type Paths struct {
	BaseDir     string
	DBPath      string
	DatabaseDir string
}

// ResolvePaths creates the per-user directories. A non-empty override is
// used as the base directory instead of the user config dir.
func ResolvePaths(appSlug string, override string) (Paths, error) {
	baseDir := strings.TrimSpace(override)
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve user config dir: %w", err)
		}
		baseDir = filepath.Join(configDir, appSlug)
	}

	databaseDir := filepath.Join(baseDir, "databases")
	dbPath := filepath.Join(databaseDir, "assets.db")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create app config dir: %w", err)
	}

	if err := os.MkdirAll(databaseDir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create database dir: %w", err)
	}

	return Paths{
		BaseDir:     baseDir,
		DBPath:      dbPath,
		DatabaseDir: databaseDir,
	}, nil
}

// AssetDBPath names a separate asset database, so several packs can be kept
// side by side and switched between.
func (p Paths) AssetDBPath(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return p.DBPath
	}
	if filepath.Ext(name) == "" {
		name += ".db"
	}
	return filepath.Join(p.DatabaseDir, filepath.Base(name))
}
