package main

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/comparator"
	"blockcolors/internal/harmony"
	"blockcolors/internal/ranking"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// optionFlags overrides profile options for one command. Only flags the
// user actually set are applied.
type optionFlags struct {
	samples      int
	images       int
	space        string
	comparator   string
	weights      []float64
	factors      []float64
	noise        bool
	nonSolid     bool
	kernelRadius int
	cutoffs      bool
	colorCutoff  float64
	kernelCutoff float64
	controlList  string
	whitelist    bool
}

func (f *optionFlags) bind(flags *pflag.FlagSet) {
	flags.IntVar(&f.samples, "samples", 1, "sample grid size (1-8)")
	flags.IntVar(&f.images, "images", 16, "entries to show")
	flags.StringVar(&f.space, "space", "oklab", "color space: oklab, oklch, srgb, linear-rgb, hsv")
	flags.StringVar(&f.comparator, "comparator", "mean", "comparator: euclidean, mean, nearest, hue")
	flags.Float64SliceVar(&f.weights, "weights", nil, "average, color-difference and kernel weights")
	flags.Float64SliceVar(&f.factors, "factors", nil, "per-channel distance factors")
	flags.BoolVar(&f.noise, "noise", false, "rank by texture noise as well as color")
	flags.BoolVar(&f.nonSolid, "non-solid", false, "include non-solid blocks")
	flags.IntVar(&f.kernelRadius, "kernel-radius", 1, "kernel sampler radius (1-2)")
	flags.BoolVar(&f.cutoffs, "cutoffs", false, "hide entries beyond the noise cutoffs")
	flags.Float64Var(&f.colorCutoff, "color-cutoff", 0, "maximum color-difference distance")
	flags.Float64Var(&f.kernelCutoff, "kernel-cutoff", 0, "maximum kernel distance")
	flags.StringVar(&f.controlList, "control", "", "access control list, e.g. \"#leaves,tnt\"")
	flags.BoolVar(&f.whitelist, "whitelist", false, "show only controlled blocks instead of hiding them")
}

func (f *optionFlags) apply(flags *pflag.FlagSet, options ranking.Options) (ranking.Options, error) {
	if flags.Changed("samples") {
		options.Samples = f.samples
	}
	if flags.Changed("images") {
		options.Images = f.images
	}
	if flags.Changed("space") {
		space, err := colorspace.ParseSpace(f.space)
		if err != nil {
			return options, err
		}
		options.Space = space
	}
	if flags.Changed("comparator") {
		kind, err := comparator.ParseKind(f.comparator)
		if err != nil {
			return options, err
		}
		options.Comparator = kind
	}
	if flags.Changed("weights") {
		if len(f.weights) != 3 {
			return options, fmt.Errorf("--weights needs 3 values, got %d", len(f.weights))
		}
		copy(options.Weights[:], f.weights)
	}
	if flags.Changed("factors") {
		if len(f.factors) != 3 {
			return options, fmt.Errorf("--factors needs 3 values, got %d", len(f.factors))
		}
		copy(options.Factors[:], f.factors)
	}
	if flags.Changed("noise") {
		options.EnableNoise = f.noise
	}
	if flags.Changed("non-solid") {
		options.IncludeNonSolid = f.nonSolid
	}
	if flags.Changed("kernel-radius") {
		options.KernelRadius = f.kernelRadius
	}
	if flags.Changed("cutoffs") {
		options.EnableCutoffs = f.cutoffs
	}
	if flags.Changed("color-cutoff") {
		options.ColorCutoff = f.colorCutoff
	}
	if flags.Changed("kernel-cutoff") {
		options.KernelCutoff = f.kernelCutoff
	}
	if flags.Changed("control") {
		options.ControlList = f.controlList
	}
	if flags.Changed("whitelist") {
		options.Blacklist = !f.whitelist
	}
	return options.Normalized(), nil
}

func newRankCommand(opts *globalOptions) *cobra.Command {
	var (
		profile string
		biome   string
		limit   int
		skip    []int
		flags   optionFlags
	)
	cmd := &cobra.Command{
		Use:   "rank <#rrggbb | namespace:block/texture>",
		Short: "Rank corpus textures by similarity to a color or texture",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&profile, "profile", "", "settings profile to start from")
	cmd.Flags().StringVar(&biome, "biome", "", "tint grass and foliage for this biome (ns:biome)")
	cmd.Flags().IntVar(&limit, "limit", 0, "entries to show (default: profile image count)")
	cmd.Flags().IntSliceVar(&skip, "skip", nil, "ranks to hide, as printed in the RANK column")
	flags.bind(cmd.Flags())

	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.loadCorpus(); err != nil {
			return err
		}
		base, err := a.settings.GetProfile(profile)
		if err != nil {
			return err
		}
		options, err := flags.apply(cmd.Flags(), base.Options)
		if err != nil {
			return err
		}

		positions := make([]int, 0, len(skip))
		for _, rank := range skip {
			positions = append(positions, rank-1)
		}

		response, err := a.ranking.MakeOrdering(RankRequest{
			Reference: args[0],
			Profile:   profile,
			Options:   &options,
			Biome:     biome,
			Limit:     limit,
			Skip:      positions,
		})
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), response)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d entries\n", response.Reference, len(response.Entries), response.Total)
		return printEntries(cmd.OutOrStdout(), response.Entries)
	})
	return cmd
}

func newHarmonyCommand(opts *globalOptions) *cobra.Command {
	var (
		relationship string
		mode         string
		profile      string
		limit        int
		list         bool
	)
	cmd := &cobra.Command{
		Use:   "harmony <#rrggbb>",
		Short: "Rank textures for every color of a hue relationship",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().StringVar(&relationship, "relationship", "complementary", "relationship name")
	cmd.Flags().StringVar(&mode, "mode", "oklch", "hue rotation space: oklch or hsv")
	cmd.Flags().StringVar(&profile, "profile", "", "settings profile")
	cmd.Flags().IntVar(&limit, "limit", 5, "entries per color")
	cmd.Flags().BoolVar(&list, "list", false, "list relationships and exit")

	cmd.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		if list {
			relationships := harmony.Relationships()
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), relationships)
			}
			for _, item := range relationships {
				offsets := make([]float64, 0, len(item.Members))
				for _, member := range item.Members {
					offsets = append(offsets, member.Offset)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", item.Name, offsets)
			}
			return nil
		}
		if len(args) == 0 {
			return errors.New("a base color is required")
		}
		if err := a.loadCorpus(); err != nil {
			return err
		}

		response, err := a.ranking.RankHarmony(HarmonyRequest{
			Color:        args[0],
			Relationship: relationship,
			Mode:         mode,
			Profile:      profile,
			Limit:        limit,
		})
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), response)
		}
		for _, member := range response.Members {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %+.0f° %s\n", response.Relationship, member.Offset, member.Color)
			if err := printEntries(cmd.OutOrStdout(), member.Entries); err != nil {
				return err
			}
		}
		return nil
	})
	return cmd
}

func newProfileCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved comparison settings",
	}

	var flags optionFlags
	save := &cobra.Command{
		Use:   "save [name]",
		Short: "Save options as a profile, starting from its current values",
		Args:  cobra.MaximumNArgs(1),
	}
	flags.bind(save.Flags())
	save.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		current, err := a.settings.GetProfile(name)
		if err != nil {
			return err
		}
		options, err := flags.apply(cmd.Flags(), current.Options)
		if err != nil {
			return err
		}
		profile, err := a.settings.SaveProfile(name, options)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), profile)
	})

	show := &cobra.Command{
		Use:   "show [name]",
		Short: "Print a profile",
		Args:  cobra.MaximumNArgs(1),
	}
	show.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		profile, err := a.settings.GetProfile(name)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), profile)
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
	}
	list.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		names, err := a.settings.ListProfiles()
		if err != nil {
			return err
		}
		if opts.json {
			return writeJSON(cmd.OutOrStdout(), names)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	})

	remove := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
	}
	remove.RunE = withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
		return a.settings.DeleteProfile(args[0])
	})

	cmd.AddCommand(save, show, list, remove)
	return cmd
}

func printEntries(out io.Writer, entries []ranking.VisibleEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tTEXTURE\tSCORE\tAVG\tCOLOR\tKERNEL")
	for _, item := range entries {
		fmt.Fprintf(
			w,
			"%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\n",
			item.Index+1,
			item.Entry.Name,
			item.Entry.Score,
			item.Entry.DistAvg,
			item.Entry.DistColor,
			item.Entry.DistKernel,
		)
	}
	return w.Flush()
}
