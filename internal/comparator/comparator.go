// Package comparator turns two sample sequences into a scalar distance.
package comparator

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/sampler"
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var ErrSpaceMismatch = errors.New("samples are in different color spaces")

type Kind int

const (
	KindEuclidean Kind = iota
	KindMeanSample
	KindNearestSample
	KindHueAware
)

var kindNames = map[Kind]string{
	KindEuclidean:     "euclidean",
	KindMeanSample:    "mean",
	KindNearestSample: "nearest",
	KindHueAware:      "hue",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown comparator kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "euclidean", "single":
		return KindEuclidean, nil
	case "mean", "mean-sample", "":
		return KindMeanSample, nil
	case "nearest", "nearest-sample":
		return KindNearestSample, nil
	case "hue", "hue-aware":
		return KindHueAware, nil
	default:
		return KindMeanSample, fmt.Errorf("unknown comparator %q", value)
	}
}

const (
	DefaultChromaWeight = 1.0
	DefaultValueWeight  = 1.0
)

// Comparator is a closed set of distance functions selected by Kind.
// Factors weight the three channels for the euclidean kinds; ChromaWeight
// and ValueWeight balance the hue-aware distance.
type Comparator struct {
	Kind         Kind       `json:"kind"`
	Factors      [3]float64 `json:"factors"`
	ChromaWeight float64    `json:"chromaWeight"`
	ValueWeight  float64    `json:"valueWeight"`
}

func New(kind Kind) Comparator {
	return Comparator{
		Kind:         kind,
		Factors:      [3]float64{1, 1, 1},
		ChromaWeight: DefaultChromaWeight,
		ValueWeight:  DefaultValueWeight,
	}
}

// ForSpace picks the comparator a color mode uses by default: hue-aware for
// polar spaces, mean-sample euclidean otherwise.
func ForSpace(space colorspace.Space) Comparator {
	if space.HasHue() {
		return New(KindHueAware)
	}
	return New(KindMeanSample)
}

// Compare measures the distance between two sample sets. Sets of different
// lengths indicate a wiring bug and panic.
func (c Comparator) Compare(a sampler.Samples, b sampler.Samples) (float64, error) {
	if len(a.Values) != len(b.Values) {
		panic(fmt.Sprintf("comparator: sample count mismatch %d != %d", len(a.Values), len(b.Values)))
	}
	if a.Space != b.Space {
		return 0, fmt.Errorf("compare %v with %v: %w", a.Space, b.Space, ErrSpaceMismatch)
	}
	if len(a.Values) == 0 {
		return 0, nil
	}

	switch c.Kind {
	case KindEuclidean:
		if len(a.Values) != 1 {
			panic(fmt.Sprintf("comparator: euclidean expects one sample per side, got %d", len(a.Values)))
		}
		return euclidean(a.Values[0], b.Values[0]), nil
	case KindMeanSample:
		total := 0.0
		for i := range a.Values {
			total += c.weightedEuclidean(a.Values[i], b.Values[i])
		}
		return total / float64(len(a.Values)), nil
	case KindNearestSample:
		nearest := math.Inf(1)
		for i := range a.Values {
			nearest = math.Min(nearest, c.weightedEuclidean(a.Values[i], b.Values[i]))
		}
		return nearest, nil
	case KindHueAware:
		layout, err := hueLayoutFor(a.Space)
		if err != nil {
			return 0, err
		}
		total := 0.0
		for i := range a.Values {
			total += c.hueDistance(layout, a.Values[i], b.Values[i])
		}
		return total / float64(len(a.Values)), nil
	default:
		panic(fmt.Sprintf("comparator: unhandled kind %v", c.Kind))
	}
}

func euclidean(a colorspace.Vec3, b colorspace.Vec3) float64 {
	return floats.Distance(a[:], b[:], 2)
}

func (c Comparator) weightedEuclidean(a colorspace.Vec3, b colorspace.Vec3) float64 {
	factors := c.Factors
	if factors == ([3]float64{}) {
		factors = [3]float64{1, 1, 1}
	}
	var scaledA, scaledB [3]float64
	for i := range factors {
		weight := math.Sqrt(math.Max(factors[i], 0))
		scaledA[i] = a[i] * weight
		scaledB[i] = b[i] * weight
	}
	return floats.Distance(scaledA[:], scaledB[:], 2)
}

// hueLayout names the channel roles of a polar space.
type hueLayout struct {
	hue   int
	value int
	// radius returns the distance from the neutral axis.
	radius func(v colorspace.Vec3) float64
}

func hueLayoutFor(space colorspace.Space) (hueLayout, error) {
	switch space {
	case colorspace.OkLch:
		return hueLayout{
			hue:    2,
			value:  0,
			radius: func(v colorspace.Vec3) float64 { return v[1] },
		}, nil
	case colorspace.HSV:
		return hueLayout{
			hue:    0,
			value:  2,
			radius: func(v colorspace.Vec3) float64 { return v[1] * v[2] },
		}, nil
	default:
		return hueLayout{}, fmt.Errorf("hue-aware comparison in %v: %w", space, ErrSpaceMismatch)
	}
}

// hueDistance is the chord between the two colors on the chroma plane,
// combined with the difference along the value axis.
func (c Comparator) hueDistance(layout hueLayout, a colorspace.Vec3, b colorspace.Vec3) float64 {
	radiusA := layout.radius(a)
	radiusB := layout.radius(b)
	deltaHue := colorspace.HueDelta(a[layout.hue], b[layout.hue]) * (math.Pi / 180)

	chord := radiusA*radiusA + radiusB*radiusB - 2*radiusA*radiusB*math.Cos(deltaHue)
	if chord < 0 {
		chord = 0
	}
	valueDiff := a[layout.value] - b[layout.value]

	return math.Sqrt(c.ChromaWeight*chord + c.ValueWeight*valueDiff*valueDiff)
}
