package main

import (
	"blockcolors/internal/assets"
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newIngestCommand(opts *globalOptions) *cobra.Command {
	var rawBytes bool
	cmd := &cobra.Command{
		Use:   "ingest <asset-root> [data-root]",
		Short: "Ingest one resource pack into the asset database",
		Args:  cobra.RangeArgs(1, 2),
	}
	cmd.Flags().BoolVar(&rawBytes, "bytes", false, "store 8-bit sRGB pixels instead of linear floats")

	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		dataRoot := ""
		if len(args) == 2 {
			dataRoot = args[1]
		}
		if err := a.ingest.Ingest(args[0], dataRoot); err != nil {
			if kind, ok := assets.FailureOf(err); ok {
				return fmt.Errorf("ingest stopped (%s): %w", kind, err)
			}
			return err
		}

		totals, err := a.ingest.PersistTextures(decodeMode(rawBytes))
		if err != nil {
			return err
		}
		entries, err := a.ingest.LoadCorpus()
		if err != nil {
			return err
		}

		if opts.json {
			return writeJSON(cmd.OutOrStdout(), totals)
		}
		fmt.Fprintf(
			cmd.OutOrStdout(),
			"ingested %d namespace(s): %d solid, %d non-solid, %d skipped, %d biomes; corpus has %d entries\n",
			totals.Namespaces, totals.SolidTextures, totals.NonSolidTextures, totals.Skipped, totals.Biomes, entries,
		)
		return nil
	})
	return cmd
}

func decodeMode(rawBytes bool) assets.DecodeMode {
	if rawBytes {
		return assets.DecodeBytes
	}
	return assets.DecodeFloat
}

func newScanCommand(opts *globalOptions) *cobra.Command {
	var rawBytes bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Re-ingest every enabled asset source",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&rawBytes, "bytes", false, "store 8-bit sRGB pixels instead of linear floats")
	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		a.scan.SetDecodeMode(decodeMode(rawBytes))
		result, err := a.scan.RunScan()
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(
			cmd.OutOrStdout(),
			"scanned %d source(s): %d solid, %d non-solid, %d skipped; corpus has %d entries\n",
			result.Sources, result.Totals.SolidTextures, result.Totals.NonSolidTextures, result.Totals.Skipped, result.Entries,
		)
		return nil
	})
	return cmd
}

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var (
		debounce time.Duration
		rawBytes bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan, then re-scan whenever an enabled source changes",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before a rescan")
	cmd.Flags().BoolVar(&rawBytes, "bytes", false, "store 8-bit sRGB pixels instead of linear floats")

	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if a.log.GetLevel() < logrus.InfoLevel {
			a.log.SetLevel(logrus.InfoLevel)
		}
		a.scan.SetDecodeMode(decodeMode(rawBytes))
		if _, err := a.scan.RunScan(); err != nil {
			a.log.WithError(err).Warn("initial scan failed")
		}
		if err := a.scan.StartWatching(debounce); err != nil {
			return err
		}
		defer a.scan.StopWatching()

		fmt.Fprintln(cmd.OutOrStdout(), "watching asset sources, press Ctrl+C to stop")
		<-ctx.Done()
		return nil
	})
	return cmd
}

func newSourcesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage the asset sources used by scan and watch",
	}

	add := &cobra.Command{
		Use:   "add <asset-root> [data-root]",
		Short: "Register an asset source",
		Args:  cobra.RangeArgs(1, 2),
	}
	add.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		dataRoot := ""
		if len(args) == 2 {
			dataRoot = args[1]
		}
		source, err := a.settings.AddSource(args[0], dataRoot)
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), source)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added source %d: %s\n", source.ID, source.AssetRoot)
		return nil
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "List asset sources",
		Args:  cobra.NoArgs,
	}
	list.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		items, err := a.settings.ListSources()
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), items)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tENABLED\tASSETS\tDATA\tINGESTED")
		for _, item := range items {
			fmt.Fprintf(w, "%d\t%t\t%s\t%s\t%s\n", item.ID, item.Enabled, item.AssetRoot, item.DataRoot, item.LastIngestedAt)
		}
		return w.Flush()
	})

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an asset source",
		Args:  cobra.ExactArgs(1),
	}
	remove.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return a.settings.RemoveSource(id)
	})

	toggle := func(use string, enabled bool) *cobra.Command {
		sub := &cobra.Command{
			Use:   use + " <id>",
			Short: use + " an asset source",
			Args:  cobra.ExactArgs(1),
		}
		sub.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.settings.SetSourceEnabled(id, enabled)
		})
		return sub
	}

	cmd.AddCommand(add, list, remove, toggle("enable", true), toggle("disable", false))
	return cmd
}

func newBiomesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biomes",
		Short: "List biomes available for tinting",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.loadCorpus(); err != nil {
			return err
		}
		biomes := a.ingest.Biomes()
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), biomes)
		}
		for _, biome := range biomes {
			fmt.Fprintln(cmd.OutOrStdout(), biome)
		}
		return nil
	})
	return cmd
}

func newStatusCommand(opts *globalOptions) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print sources, profiles and corpus state as JSON",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&profile, "profile", "", "profile whose options to include")
	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.loadCorpus(); err != nil {
			return err
		}
		snapshot, err := a.bootstrap.GetInitialState(profile)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), snapshot)
	})
	return cmd
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", value, err)
	}
	return id, nil
}
