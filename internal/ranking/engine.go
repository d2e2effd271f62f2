// Package ranking orders every texture of a corpus by its distance to a
// reference color or texture.
package ranking

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"blockcolors/internal/sampler"
	"errors"
	"fmt"
	"sort"
)

var ErrCorpusNotLoaded = errors.New("corpus not loaded")

// Entry is one ranked texture. Image refers into the corpus the pass ran
// against.
type Entry struct {
	Name       string          `json:"name"`
	Image      corpus.ImageRef `json:"-"`
	Solid      bool            `json:"solid"`
	Average    colorspace.Vec3 `json:"average"`
	DistAvg    float64         `json:"distAvg"`
	DistColor  float64         `json:"distColor"`
	DistKernel float64         `json:"distKernel"`
	Score      float64         `json:"score"`
}

// Ranges reports the per-channel ranges observed in one pass.
type Ranges struct {
	Average MinMax `json:"average"`
	Color   MinMax `json:"color"`
	Kernel  MinMax `json:"kernel"`
}

type Result struct {
	Generation uint64  `json:"generation"`
	Entries    []Entry `json:"entries"`
	Ranges     Ranges  `json:"ranges"`
}

// Engine ranks against whatever corpus the store currently holds.
type Engine struct {
	store *corpus.Store
}

func NewEngine(store *corpus.Store) *Engine {
	return &Engine{store: store}
}

func (e *Engine) Corpus() *corpus.Corpus {
	return e.store.Current()
}

func (e *Engine) MakeOrdering(ref Reference, opts Options) (Result, error) {
	if !e.store.Loaded() {
		return Result{}, ErrCorpusNotLoaded
	}
	return MakeOrdering(e.store.Current(), ref, opts)
}

// MakeOrdering scores every corpus texture against ref and returns them
// sorted ascending by composite score. Ties keep corpus iteration order.
// Non-solid textures take part only when opts.IncludeNonSolid is set.
func MakeOrdering(c *corpus.Corpus, ref Reference, opts Options) (Result, error) {
	opts = opts.Normalized()
	cmp := opts.BuildComparator()
	extra := ref.HasTexture()

	reference := ref.Average.Sample()
	var referenceDifference, referenceKernel sampler.Samples
	if extra {
		referenceDifference = ref.Difference.Sample()
		referenceKernel = ref.Kernel.Sample()
	}

	entries := make([]Entry, 0, c.Len())
	for _, item := range c.Entries() {
		if !item.Solid && !opts.IncludeNonSolid {
			continue
		}

		img, err := c.Image(item.Ref)
		if err != nil {
			return Result{}, err
		}

		samples := sampler.Grid(img, opts.Space, opts.Samples).Sample()
		distAvg, err := cmp.Compare(reference, samples)
		if err != nil {
			return Result{}, fmt.Errorf("compare %s: %w", item.QualifiedName(), err)
		}

		entry := Entry{
			Name:    item.QualifiedName(),
			Image:   item.Ref,
			Solid:   item.Solid,
			Average: samples.First(),
			DistAvg: distAvg,
		}

		if extra {
			difference := sampler.ColorDifference(img, opts.Space).Sample()
			if entry.DistColor, err = cmp.Compare(referenceDifference, difference); err != nil {
				return Result{}, fmt.Errorf("compare %s color difference: %w", item.QualifiedName(), err)
			}
			kernel := sampler.Kernel(img, opts.Space, opts.KernelRadius).Sample()
			if entry.DistKernel, err = cmp.Compare(referenceKernel, kernel); err != nil {
				return Result{}, fmt.Errorf("compare %s kernel: %w", item.QualifiedName(), err)
			}
		}

		entries = append(entries, entry)
	}

	ranges := observedRanges(entries)
	weights := opts.Weights
	if !opts.EnableNoise || !extra {
		weights[1] = 0
		weights[2] = 0
	}

	for i := range entries {
		entries[i].Score = weights[0]*ranges.Average.Normalize(entries[i].DistAvg) +
			weights[1]*ranges.Color.Normalize(entries[i].DistColor) +
			weights[2]*ranges.Kernel.Normalize(entries[i].DistKernel)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score < entries[j].Score
	})

	return Result{Generation: c.Generation(), Entries: entries, Ranges: ranges}, nil
}

func observedRanges(entries []Entry) Ranges {
	average := make([]float64, len(entries))
	color := make([]float64, len(entries))
	kernel := make([]float64, len(entries))
	for i, entry := range entries {
		average[i] = entry.DistAvg
		color[i] = entry.DistColor
		kernel[i] = entry.DistKernel
	}
	return Ranges{
		Average: newMinMax(average),
		Color:   newMinMax(color),
		Kernel:  newMinMax(kernel),
	}
}
