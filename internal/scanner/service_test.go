package scanner

import (
	"blockcolors/internal/assets"
	"blockcolors/internal/corpus"
	"blockcolors/internal/db"
	"blockcolors/internal/sources"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writePNG(t *testing.T, path string, fill color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir for %s: %v", path, err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, fill)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func addCubeBlock(t *testing.T, root string, name string, fill color.NRGBA) {
	t.Helper()
	writeFile(t, filepath.Join(root, "minecraft", "models", "block", "cube_all.json"), `{"textures": {"particle": "#all"}}`)
	writeFile(t, filepath.Join(root, "minecraft", "models", "block", name+".json"),
		`{"parent": "minecraft:block/cube_all", "textures": {"all": "minecraft:block/`+name+`"}}`)
	writePNG(t, filepath.Join(root, "minecraft", "textures", "block", name+".png"), fill)
}

type fixture struct {
	database *sql.DB
	repo     *sources.Repository
	store    *corpus.Store
	service  *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database, err := db.Bootstrap(filepath.Join(t.TempDir(), "assets.db"))
	if err != nil {
		t.Fatalf("bootstrap db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})
	repo := sources.NewRepository(database)
	store := corpus.NewStore(nil)
	return fixture{
		database: database,
		repo:     repo,
		store:    store,
		service:  NewService(database, repo, store, nil),
	}
}

func TestRunIngestsEnabledSources(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	root := t.TempDir()
	addCubeBlock(t, root, "stone", color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	addCubeBlock(t, root, "dirt", color.NRGBA{R: 130, G: 90, B: 60, A: 255})

	source, err := f.repo.Add(ctx, root, "")
	if err != nil {
		t.Fatalf("add source: %v", err)
	}

	var mu sync.Mutex
	phases := make([]string, 0)
	f.service.SetEmitter(func(eventName string, payload any) {
		progress, ok := payload.(Progress)
		if eventName != EventProgress || !ok {
			t.Errorf("unexpected event %s %T", eventName, payload)
			return
		}
		mu.Lock()
		phases = append(phases, progress.Phase)
		mu.Unlock()
	})

	result, err := f.service.Run(ctx)
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}
	if result.Sources != 1 || result.Entries != 2 || result.Totals.SolidTextures != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if !f.store.Loaded() || f.store.Current().Len() != 2 {
		t.Fatal("expected the store to hold the new corpus")
	}

	mu.Lock()
	last := phases[len(phases)-1]
	mu.Unlock()
	if last != "done" {
		t.Fatalf("expected final phase done, got %v", phases)
	}

	status := f.service.GetStatus()
	if status.Running || status.LastRunAt == "" || status.LastError != "" || status.LastSources != 1 {
		t.Fatalf("unexpected status %+v", status)
	}

	got, err := f.repo.GetByID(ctx, source.ID)
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if got.LastIngestedAt == "" {
		t.Fatal("expected source to be stamped as ingested")
	}
}

func TestRunReportsLoadFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.repo.Add(ctx, filepath.Join(t.TempDir(), "missing"), ""); err != nil {
		t.Fatalf("add source: %v", err)
	}

	if _, err := f.service.Run(ctx); err == nil {
		t.Fatal("expected scan to fail")
	}
	status := f.service.GetStatus()
	if status.LastError == "" || status.Running {
		t.Fatalf("expected failure recorded, got %+v", status)
	}
	if f.store.Loaded() {
		t.Fatal("expected no corpus after a failed scan")
	}
}

func TestRunStoresByteModePixels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	root := t.TempDir()
	addCubeBlock(t, root, "stone", color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	if _, err := f.repo.Add(ctx, root, ""); err != nil {
		t.Fatalf("add source: %v", err)
	}

	f.service.SetDecodeMode(assets.DecodeBytes)
	if _, err := f.service.Run(ctx); err != nil {
		t.Fatalf("run scan: %v", err)
	}

	var format string
	if err := f.database.QueryRowContext(ctx, "SELECT pixel_format FROM solid_textures WHERE name = 'block/stone'").Scan(&format); err != nil {
		t.Fatalf("read pixel format: %v", err)
	}
	if format != corpus.PixelFormatUint8 {
		t.Fatalf("expected %s, got %s", corpus.PixelFormatUint8, format)
	}
	if f.store.Current().Len() != 1 {
		t.Fatalf("expected byte pixels to load, got %d entries", f.store.Current().Len())
	}
}

func TestRunReportsReloadFailureAfterPersist(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	root := t.TempDir()
	addCubeBlock(t, root, "stone", color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	if _, err := f.repo.Add(context.Background(), root, ""); err != nil {
		t.Fatalf("add source: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.service.SetEmitter(func(eventName string, payload any) {
		if progress, ok := payload.(Progress); ok && progress.Phase == "load" {
			cancel()
		}
	})

	_, err := f.service.Run(ctx)
	if !errors.Is(err, ErrCorpusNotReloaded) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected reload failure, got %v", err)
	}
	if status := f.service.GetStatus(); !strings.Contains(status.LastError, ErrCorpusNotReloaded.Error()) {
		t.Fatalf("expected partial state in last error, got %q", status.LastError)
	}
	if f.store.Loaded() {
		t.Fatal("expected the live corpus to be left alone")
	}

	var count int
	if err := f.database.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM solid_textures").Scan(&count); err != nil {
		t.Fatalf("count textures: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the database to hold the new textures, got %d", count)
	}
}

func TestRunWithoutSources(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result, err := f.service.Run(context.Background())
	if err != nil {
		t.Fatalf("run scan: %v", err)
	}
	if result.Sources != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestRunRejectsConcurrentScan(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.service.begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := f.service.Run(context.Background()); !errors.Is(err, ErrScanInProgress) {
		t.Fatalf("expected scan in progress, got %v", err)
	}
	if err := f.service.TriggerFullScan(); !errors.Is(err, ErrScanInProgress) {
		t.Fatalf("expected trigger to be refused, got %v", err)
	}
}

func TestWatchRescansOnChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	root := t.TempDir()
	addCubeBlock(t, root, "stone", color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	if _, err := f.repo.Add(ctx, root, ""); err != nil {
		t.Fatalf("add source: %v", err)
	}
	if _, err := f.service.Run(ctx); err != nil {
		t.Fatalf("initial scan: %v", err)
	}

	if err := f.service.StartWatching(ctx, 50*time.Millisecond); err != nil {
		t.Fatalf("start watching: %v", err)
	}
	defer f.service.StopWatching()
	if err := f.service.StartWatching(ctx, 0); !errors.Is(err, ErrAlreadyWatching) {
		t.Fatalf("expected second watch to be refused, got %v", err)
	}

	addCubeBlock(t, root, "gold_block", color.NRGBA{R: 250, G: 210, B: 60, A: 255})

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := f.store.Current().Lookup("minecraft:block/gold_block"); ok {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected the watcher to pick up the new block")
}
