package ranking

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/comparator"
	"blockcolors/internal/corpus"
	"blockcolors/internal/sampler"
)

const (
	defaultSamples = 1
	maxSamples     = 8
	defaultImages  = 16
	maxImages      = 1024
)

// Options is the full set of comparison parameters. It is what gets saved
// as a settings profile.
type Options struct {
	Samples         int              `json:"samples"`
	Images          int              `json:"images"`
	Space           colorspace.Space `json:"space"`
	Comparator      comparator.Kind  `json:"comparator"`
	Factors         [3]float64       `json:"factors"`
	ChromaWeight    float64          `json:"chromaWeight"`
	ValueWeight     float64          `json:"valueWeight"`
	Weights         [3]float64       `json:"weights"`
	EnableNoise     bool             `json:"enableNoise"`
	IncludeNonSolid bool             `json:"includeNonSolid"`
	KernelRadius    int              `json:"kernelRadius"`
	EnableCutoffs   bool             `json:"enableCutoffs"`
	ColorCutoff     float64          `json:"colorCutoff"`
	KernelCutoff    float64          `json:"kernelCutoff"`
	ControlList     string           `json:"controlList"`
	Blacklist       bool             `json:"blacklist"`
}

func DefaultOptions() Options {
	return Options{
		Samples:      defaultSamples,
		Images:       defaultImages,
		Space:        colorspace.OkLab,
		Comparator:   comparator.KindMeanSample,
		Factors:      [3]float64{1, 1, 1},
		ChromaWeight: comparator.DefaultChromaWeight,
		ValueWeight:  comparator.DefaultValueWeight,
		Weights:      [3]float64{0.5, 0.15, 0.40},
		KernelRadius: sampler.MinKernelRadius,
		ControlList:  corpus.DefaultControlList,
		Blacklist:    true,
	}
}

// Normalized clamps every field into its supported range.
func (o Options) Normalized() Options {
	if o.Samples < 1 {
		o.Samples = defaultSamples
	}
	if o.Samples > maxSamples {
		o.Samples = maxSamples
	}
	if o.Images < 1 {
		o.Images = defaultImages
	}
	if o.Images > maxImages {
		o.Images = maxImages
	}
	for i := range o.Weights {
		o.Weights[i] = clamp01(o.Weights[i])
	}
	for i := range o.Factors {
		if o.Factors[i] < 0 {
			o.Factors[i] = 0
		}
	}
	if o.Factors == ([3]float64{}) {
		o.Factors = [3]float64{1, 1, 1}
	}
	if o.ChromaWeight < 0 {
		o.ChromaWeight = 0
	}
	if o.ValueWeight < 0 {
		o.ValueWeight = 0
	}
	if o.KernelRadius < sampler.MinKernelRadius {
		o.KernelRadius = sampler.MinKernelRadius
	}
	if o.KernelRadius > sampler.MaxKernelRadius {
		o.KernelRadius = sampler.MaxKernelRadius
	}
	if o.ColorCutoff < 0 {
		o.ColorCutoff = 0
	}
	if o.KernelCutoff < 0 {
		o.KernelCutoff = 0
	}
	if o.Comparator == comparator.KindHueAware && !o.Space.HasHue() {
		o.Comparator = comparator.KindMeanSample
	}
	// euclidean only accepts a single sample per side
	if o.Comparator == comparator.KindEuclidean && o.Samples != 1 {
		o.Comparator = comparator.KindMeanSample
	}
	return o
}

func (o Options) BuildComparator() comparator.Comparator {
	return comparator.Comparator{
		Kind:         o.Comparator,
		Factors:      o.Factors,
		ChromaWeight: o.ChromaWeight,
		ValueWeight:  o.ValueWeight,
	}
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
