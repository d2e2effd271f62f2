package main

import (
	"blockcolors/internal/config"
	"blockcolors/internal/corpus"
	"blockcolors/internal/db"
	"blockcolors/internal/ranking"
	"blockcolors/internal/scanner"
	"blockcolors/internal/settings"
	"blockcolors/internal/sources"
	"database/sql"
	"encoding/json"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	baseDir  string
	database string
	verbose  bool
	json     bool
}

// app wires the services every command shares.
type app struct {
	log       *logrus.Logger
	db        *sql.DB
	store     *corpus.Store
	scanner   *scanner.Service
	ingest    *IngestService
	ranking   *RankingService
	settings  *SettingsService
	scan      *ScannerService
	bootstrap *BootstrapService
}

func openApp(opts *globalOptions) (*app, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	paths, err := config.ResolvePaths(config.AppSlug, opts.baseDir)
	if err != nil {
		return nil, err
	}

	sqliteDB, err := db.Bootstrap(paths.AssetDBPath(opts.database))
	if err != nil {
		return nil, err
	}

	store := corpus.NewStore(nil)
	sourceRepo := sources.NewRepository(sqliteDB)
	profileRepo := settings.NewRepository(sqliteDB)
	scannerDomain := scanner.NewService(sqliteDB, sourceRepo, store, log)
	scannerDomain.SetEmitter(func(eventName string, payload any) {
		if progress, ok := payload.(scanner.Progress); ok {
			log.WithFields(logrus.Fields{"event": eventName, "percent": progress.Percent}).Info(progress.Message)
		}
	})

	ingestService := NewIngestService(sqliteDB, store, log)
	return &app{
		log:       log,
		db:        sqliteDB,
		store:     store,
		scanner:   scannerDomain,
		ingest:    ingestService,
		ranking:   NewRankingService(ranking.NewEngine(store), profileRepo, ingestService),
		settings:  NewSettingsService(sourceRepo, profileRepo),
		scan:      NewScannerService(scannerDomain),
		bootstrap: NewBootstrapService(store, sourceRepo, profileRepo, scannerDomain),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// loadCorpus publishes whatever the asset database already holds.
func (a *app) loadCorpus() error {
	if a.store.Loaded() {
		return nil
	}
	entries, err := a.scan.Reload()
	if err != nil {
		return err
	}
	a.log.WithField("entries", entries).Debug("corpus loaded")
	return nil
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// withApp opens the app for the duration of one command.
func withApp(opts *globalOptions, run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(opts)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "blockcolors",
		Short:         "Match Minecraft block textures by color",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.baseDir, "data-dir", "", "state directory (default: user config dir)")
	root.PersistentFlags().StringVar(&opts.database, "db", "", "asset database name")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON")

	root.AddCommand(
		newIngestCommand(opts),
		newScanCommand(opts),
		newWatchCommand(opts),
		newSourcesCommand(opts),
		newRankCommand(opts),
		newHarmonyCommand(opts),
		newBiomesCommand(opts),
		newProfileCommand(opts),
		newStatusCommand(opts),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
