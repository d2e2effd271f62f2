package comparator

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/sampler"
	"errors"
	"math"
	"testing"
)

func samples(space colorspace.Space, values ...colorspace.Vec3) sampler.Samples {
	return sampler.Samples{Space: space, Values: values}
}

func TestEuclideanSingleSample(t *testing.T) {
	t.Parallel()

	got, err := New(KindEuclidean).Compare(
		samples(colorspace.OkLab, colorspace.Vec3{0, 0, 0}),
		samples(colorspace.OkLab, colorspace.Vec3{3, 4, 0}),
	)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if math.Abs(got-5) > 1e-12 {
		t.Fatalf("expected 5, got %f", got)
	}
}

func TestEuclideanPanicsOnMultipleSamples(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for more than one sample")
		}
	}()
	a := samples(colorspace.OkLab, colorspace.Vec3{}, colorspace.Vec3{})
	_, _ = New(KindEuclidean).Compare(a, a)
}

func TestLengthMismatchPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for sample count mismatch")
		}
	}()
	_, _ = New(KindMeanSample).Compare(
		samples(colorspace.OkLab, colorspace.Vec3{}),
		samples(colorspace.OkLab, colorspace.Vec3{}, colorspace.Vec3{}),
	)
}

func TestSpaceMismatchIsAnError(t *testing.T) {
	t.Parallel()

	_, err := New(KindMeanSample).Compare(
		samples(colorspace.OkLab, colorspace.Vec3{}),
		samples(colorspace.SRGB, colorspace.Vec3{}),
	)
	if !errors.Is(err, ErrSpaceMismatch) {
		t.Fatalf("expected ErrSpaceMismatch, got %v", err)
	}
}

func TestMeanAndNearest(t *testing.T) {
	t.Parallel()

	a := samples(colorspace.LinearRGB, colorspace.Vec3{0, 0, 0}, colorspace.Vec3{0, 0, 0})
	b := samples(colorspace.LinearRGB, colorspace.Vec3{1, 0, 0}, colorspace.Vec3{0, 3, 0})

	mean, err := New(KindMeanSample).Compare(a, b)
	if err != nil {
		t.Fatalf("compare mean: %v", err)
	}
	if math.Abs(mean-2) > 1e-12 {
		t.Fatalf("expected mean 2, got %f", mean)
	}

	nearest, err := New(KindNearestSample).Compare(a, b)
	if err != nil {
		t.Fatalf("compare nearest: %v", err)
	}
	if math.Abs(nearest-1) > 1e-12 {
		t.Fatalf("expected nearest 1, got %f", nearest)
	}
}

func TestMeanChannelFactors(t *testing.T) {
	t.Parallel()

	c := New(KindMeanSample)
	c.Factors = [3]float64{0, 4, 1}

	got, err := c.Compare(
		samples(colorspace.LinearRGB, colorspace.Vec3{0, 0, 0}),
		samples(colorspace.LinearRGB, colorspace.Vec3{10, 1, 0}),
	)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	// The first channel is ignored and the second is weighted by 4.
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("expected 2, got %f", got)
	}
}

func TestHueAwareAcrossSeam(t *testing.T) {
	t.Parallel()

	c := New(KindHueAware)
	// Same lightness and chroma, hues 10 degrees apart across 0.
	a := samples(colorspace.OkLch, colorspace.Vec3{0.5, 0.1, 355})
	b := samples(colorspace.OkLch, colorspace.Vec3{0.5, 0.1, 5})

	got, err := c.Compare(a, b)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	want := 2 * 0.1 * math.Sin(5*math.Pi/180)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected chord %f, got %f", want, got)
	}
}

func TestHueAwareMatchesOkLabDistance(t *testing.T) {
	t.Parallel()

	// With unit weights the chord plus lightness term is the OkLab euclidean
	// distance.
	linearA := colorspace.Vec3{0.8, 0.2, 0.1}
	linearB := colorspace.Vec3{0.1, 0.5, 0.7}
	labA := colorspace.LinearToOkLab(linearA)
	labB := colorspace.LinearToOkLab(linearB)

	hue, err := New(KindHueAware).Compare(
		samples(colorspace.OkLch, colorspace.OkLabToOkLch(labA)),
		samples(colorspace.OkLch, colorspace.OkLabToOkLch(labB)),
	)
	if err != nil {
		t.Fatalf("compare hue: %v", err)
	}
	plain, err := New(KindEuclidean).Compare(
		samples(colorspace.OkLab, labA),
		samples(colorspace.OkLab, labB),
	)
	if err != nil {
		t.Fatalf("compare euclidean: %v", err)
	}
	if math.Abs(hue-plain) > 1e-9 {
		t.Fatalf("expected %f, got %f", plain, hue)
	}
}

func TestHueAwareHSVLayout(t *testing.T) {
	t.Parallel()

	c := New(KindHueAware)
	c.ChromaWeight = 0

	got, err := c.Compare(
		samples(colorspace.HSV, colorspace.Vec3{0, 1, 0.25}),
		samples(colorspace.HSV, colorspace.Vec3{180, 1, 0.75}),
	)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected value-only distance 0.5, got %f", got)
	}
}

func TestHueAwareRejectsCartesianSpaces(t *testing.T) {
	t.Parallel()

	a := samples(colorspace.OkLab, colorspace.Vec3{})
	if _, err := New(KindHueAware).Compare(a, a); !errors.Is(err, ErrSpaceMismatch) {
		t.Fatalf("expected ErrSpaceMismatch, got %v", err)
	}
}

func TestForSpace(t *testing.T) {
	t.Parallel()

	if got := ForSpace(colorspace.OkLch).Kind; got != KindHueAware {
		t.Fatalf("expected hue-aware for oklch, got %v", got)
	}
	if got := ForSpace(colorspace.OkLab).Kind; got != KindMeanSample {
		t.Fatalf("expected mean for oklab, got %v", got)
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindEuclidean, KindMeanSample, KindNearestSample, KindHueAware} {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("parse %q: %v", kind.String(), err)
		}
		if parsed != kind {
			t.Fatalf("expected %v, got %v", kind, parsed)
		}
	}
	if _, err := ParseKind("manhattan"); err == nil {
		t.Fatal("expected error for unknown comparator")
	}
}
