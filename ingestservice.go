package main

import (
	"blockcolors/internal/assets"
	"blockcolors/internal/corpus"
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// IngestService drives one-off ingestion: load packs into a loader, write
// them to the asset database, and publish the corpus.
type IngestService struct {
	db     *sql.DB
	store  *corpus.Store
	loader *assets.Loader
	log    logrus.FieldLogger
}

func NewIngestService(database *sql.DB, store *corpus.Store, log logrus.FieldLogger) *IngestService {
	return &IngestService{
		db:     database,
		store:  store,
		loader: assets.NewLoader(log),
		log:    log,
	}
}

func (s *IngestService) Ingest(assetRoot string, dataRoot string) error {
	assetRoot, err := normalizePath(assetRoot)
	if err != nil {
		return err
	}
	if dataRoot != "" {
		if dataRoot, err = normalizePath(dataRoot); err != nil {
			return err
		}
	}
	return s.loader.LoadAssets(context.Background(), assetRoot, dataRoot)
}

func (s *IngestService) PersistTextures(mode assets.DecodeMode) (assets.WriteTotals, error) {
	return assets.NewWriter(s.log).PersistTextures(context.Background(), s.db, s.loader, mode)
}

// LoadCorpus reads the asset database and makes it the live corpus.
func (s *IngestService) LoadCorpus() (int, error) {
	next, err := corpus.Load(context.Background(), s.db)
	if err != nil {
		return 0, err
	}
	s.store.Swap(next)
	return next.Len(), nil
}

// ApplyBiomeTint replaces the live corpus with the untinted corpus whose
// grass and foliage textures carry the biome's colors. Selecting the biome
// already applied keeps the live corpus.
func (s *IngestService) ApplyBiomeTint(biome string) error {
	changed, err := s.store.ApplyBiome(biome, corpus.DefaultTintTargets)
	if err != nil {
		return fmt.Errorf("apply biome tint: %w", err)
	}
	if changed {
		s.log.WithField("biome", biome).Debug("biome tint applied")
	}
	return nil
}

func (s *IngestService) Biomes() []string {
	return s.store.Current().Biomes()
}
