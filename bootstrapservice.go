package main

import (
	"blockcolors/internal/corpus"
	"blockcolors/internal/harmony"
	"blockcolors/internal/ranking"
	"blockcolors/internal/scanner"
	"blockcolors/internal/settings"
	"blockcolors/internal/sources"
	"context"
)

type StartupSnapshot struct {
	ScanStatus    scanner.Status         `json:"scanStatus"`
	Sources       []sources.Source       `json:"sources"`
	Profiles      []string               `json:"profiles"`
	Options       ranking.Options        `json:"options"`
	Namespaces    []string               `json:"namespaces"`
	Biomes        []string               `json:"biomes"`
	Relationships []harmony.Relationship `json:"relationships"`
	Entries       int                    `json:"entries"`
}

// BootstrapService gathers everything a front end needs on first paint.
type BootstrapService struct {
	store    *corpus.Store
	sources  *sources.Repository
	profiles *settings.Repository
	scanner  *scanner.Service
}

func NewBootstrapService(
	store *corpus.Store,
	sourceRepo *sources.Repository,
	profiles *settings.Repository,
	scannerService *scanner.Service,
) *BootstrapService {
	return &BootstrapService{
		store:    store,
		sources:  sourceRepo,
		profiles: profiles,
		scanner:  scannerService,
	}
}

func (s *BootstrapService) GetInitialState(profile string) (StartupSnapshot, error) {
	ctx := context.Background()

	sourceList, err := s.sources.List(ctx)
	if err != nil {
		return StartupSnapshot{}, err
	}
	profileNames, err := s.profiles.List(ctx)
	if err != nil {
		return StartupSnapshot{}, err
	}
	options, err := s.profiles.Options(ctx, profile)
	if err != nil {
		return StartupSnapshot{}, err
	}

	current := s.store.Current()
	return StartupSnapshot{
		ScanStatus:    s.scanner.GetStatus(),
		Sources:       sourceList,
		Profiles:      profileNames,
		Options:       options,
		Namespaces:    current.Namespaces(),
		Biomes:        current.Biomes(),
		Relationships: harmony.Relationships(),
		Entries:       current.Len(),
	}, nil
}
