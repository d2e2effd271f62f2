// Package scanner ingests the enabled asset sources into the asset
// database and publishes the resulting corpus.
package scanner

import (
	"blockcolors/internal/assets"
	"blockcolors/internal/corpus"
	"blockcolors/internal/sources"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const EventProgress = "scanner:progress"

var (
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrCorpusNotReloaded means the asset database was rewritten but the
	// live corpus still holds the previous generation.
	ErrCorpusNotReloaded = errors.New("asset database updated but corpus not reloaded")
)

type Progress struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	At      string `json:"at"`
}

type Status struct {
	Running     bool               `json:"running"`
	Watching    bool               `json:"watching"`
	LastRunAt   string             `json:"lastRunAt"`
	LastError   string             `json:"lastError,omitempty"`
	LastSources int                `json:"lastSources"`
	LastTotals  assets.WriteTotals `json:"lastTotals"`
	Generation  uint64             `json:"generation"`
}

// Result describes one completed scan.
type Result struct {
	Sources int                `json:"sources"`
	Totals  assets.WriteTotals `json:"totals"`
	Entries int                `json:"entries"`
}

type Emitter func(eventName string, payload any)

type Service struct {
	mu          sync.Mutex
	running     bool
	lastRun     time.Time
	lastError   string
	lastSources int
	lastTotals  assets.WriteTotals
	emit        Emitter
	db          *sql.DB
	sources     *sources.Repository
	store       *corpus.Store
	mode        assets.DecodeMode
	log         logrus.FieldLogger
	watch       *watchState
}

func NewService(database *sql.DB, repo *sources.Repository, store *corpus.Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		db:      database,
		sources: repo,
		store:   store,
		mode:    assets.DecodeFloat,
		log:     log.WithField("component", "scanner"),
	}
}

func (s *Service) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

// SetDecodeMode selects the pixel format later scans store.
func (s *Service) SetDecodeMode(mode assets.DecodeMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

// Run performs a full scan and waits for it to finish.
func (s *Service) Run(ctx context.Context) (Result, error) {
	if err := s.begin(); err != nil {
		return Result{}, err
	}
	result, err := s.performScan(ctx)
	s.finish(result, err)
	return result, err
}

// TriggerFullScan starts a full scan in the background.
func (s *Service) TriggerFullScan() error {
	if err := s.begin(); err != nil {
		return err
	}

	go func() {
		result, err := s.performScan(context.Background())
		s.finish(result, err)
	}()
	return nil
}

// Reload publishes the asset database as it is, without ingesting.
func (s *Service) Reload(ctx context.Context) (int, error) {
	next, err := corpus.Load(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("load corpus: %w", err)
	}
	s.store.Swap(next)
	return next.Len(), nil
}

func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:     s.running,
		Watching:    s.watch != nil,
		LastError:   s.lastError,
		LastSources: s.lastSources,
		LastTotals:  s.lastTotals,
		Generation:  s.store.Current().Generation(),
	}
	if !s.lastRun.IsZero() {
		status.LastRunAt = s.lastRun.UTC().Format(time.RFC3339)
	}

	return status
}

func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrScanInProgress
	}
	s.running = true
	s.lastError = ""
	return nil
}

func (s *Service) finish(result Result, err error) {
	s.mu.Lock()
	s.running = false
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
		s.lastRun = time.Now().UTC()
		s.lastSources = result.Sources
		s.lastTotals = result.Totals
	}
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Error("scan failed")
		s.emitProgress(Progress{
			Phase:   "failed",
			Message: err.Error(),
			Percent: 100,
			Status:  "failed",
			At:      time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	s.emitProgress(Progress{
		Phase: "done",
		Message: fmt.Sprintf(
			"Scan complete: %d sources, %d solid and %d non-solid textures, %d skipped",
			result.Sources,
			result.Totals.SolidTextures,
			result.Totals.NonSolidTextures,
			result.Totals.Skipped,
		),
		Percent: 100,
		Status:  "completed",
		At:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Service) performScan(ctx context.Context) (Result, error) {
	s.emitProgress(Progress{
		Phase:   "start",
		Message: "Starting full scan",
		Percent: 5,
		Status:  "running",
		At:      time.Now().UTC().Format(time.RFC3339),
	})

	enabled, err := s.sources.ListEnabled(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(enabled) == 0 {
		s.emitProgress(Progress{
			Phase:   "done",
			Message: "No enabled asset sources configured",
			Percent: 100,
			Status:  "completed",
			At:      time.Now().UTC().Format(time.RFC3339),
		})
		return Result{}, nil
	}

	loader := assets.NewLoader(s.log)
	ids := make([]int64, 0, len(enabled))
	for i, source := range enabled {
		s.emitProgress(Progress{
			Phase:   "ingest",
			Message: fmt.Sprintf("Ingesting %s", source.AssetRoot),
			Percent: 10 + ((i * 60) / len(enabled)),
			Status:  "running",
			At:      time.Now().UTC().Format(time.RFC3339),
		})

		if err := loader.LoadAssets(ctx, source.AssetRoot, source.DataRoot); err != nil {
			return Result{}, fmt.Errorf("ingest %s: %w", source.AssetRoot, err)
		}
		ids = append(ids, source.ID)
	}

	s.emitProgress(Progress{
		Phase:   "persist",
		Message: "Writing textures",
		Percent: 75,
		Status:  "running",
		At:      time.Now().UTC().Format(time.RFC3339),
	})

	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()

	totals, err := assets.NewWriter(s.log).PersistTextures(ctx, s.db, loader, mode)
	if err != nil {
		return Result{}, err
	}
	if err := s.sources.MarkIngested(ctx, ids); err != nil {
		return Result{}, err
	}

	s.emitProgress(Progress{
		Phase:   "load",
		Message: "Loading corpus",
		Percent: 90,
		Status:  "running",
		At:      time.Now().UTC().Format(time.RFC3339),
	})

	entries, err := s.Reload(ctx)
	if err != nil {
		return Result{Sources: len(enabled), Totals: totals}, fmt.Errorf("%w: %w", ErrCorpusNotReloaded, err)
	}

	return Result{Sources: len(enabled), Totals: totals, Entries: entries}, nil
}

func (s *Service) emitProgress(progress Progress) {
	s.mu.Lock()
	emitter := s.emit
	s.mu.Unlock()

	if emitter != nil {
		emitter(EventProgress, progress)
	}
}
