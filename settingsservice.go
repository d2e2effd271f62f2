package main

import (
	"blockcolors/internal/ranking"
	"blockcolors/internal/settings"
	"blockcolors/internal/sources"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type SettingsService struct {
	sources  *sources.Repository
	profiles *settings.Repository
}

func NewSettingsService(sourceRepo *sources.Repository, profiles *settings.Repository) *SettingsService {
	return &SettingsService{sources: sourceRepo, profiles: profiles}
}

func (s *SettingsService) ListSources() ([]sources.Source, error) {
	return s.sources.List(context.Background())
}

func (s *SettingsService) AddSource(assetRoot string, dataRoot string) (sources.Source, error) {
	cleanedAssets, err := normalizePath(assetRoot)
	if err != nil {
		return sources.Source{}, err
	}

	cleanedData := ""
	if strings.TrimSpace(dataRoot) != "" {
		if cleanedData, err = normalizePath(dataRoot); err != nil {
			return sources.Source{}, err
		}
	}

	return s.sources.Add(context.Background(), cleanedAssets, cleanedData)
}

func (s *SettingsService) RemoveSource(id int64) error {
	err := s.sources.Delete(context.Background(), id)
	if errors.Is(err, sources.ErrSourceNotFound) {
		return fmt.Errorf("asset source %d does not exist", id)
	}
	return err
}

func (s *SettingsService) SetSourceEnabled(id int64, enabled bool) error {
	err := s.sources.SetEnabled(context.Background(), id, enabled)
	if errors.Is(err, sources.ErrSourceNotFound) {
		return fmt.Errorf("asset source %d does not exist", id)
	}
	return err
}

func (s *SettingsService) SaveProfile(name string, options ranking.Options) (settings.Profile, error) {
	return s.profiles.Save(context.Background(), name, options)
}

// GetProfile returns a saved profile, or the defaults under that name.
func (s *SettingsService) GetProfile(name string) (settings.Profile, error) {
	profile, err := s.profiles.Get(context.Background(), name)
	if errors.Is(err, settings.ErrProfileNotFound) {
		return settings.Profile{Name: name, Options: ranking.DefaultOptions()}, nil
	}
	return profile, err
}

func (s *SettingsService) ListProfiles() ([]string, error) {
	return s.profiles.List(context.Background())
}

func (s *SettingsService) DeleteProfile(name string) error {
	err := s.profiles.Delete(context.Background(), name)
	if errors.Is(err, settings.ErrProfileNotFound) {
		return fmt.Errorf("profile %q does not exist", name)
	}
	return err
}

func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	return filepath.Clean(absPath), nil
}
