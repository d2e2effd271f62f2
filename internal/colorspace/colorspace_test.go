package colorspace

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lucasb-eyer/go-colorful"
)

const roundTripTolerance = 1e-5

func linearGrid() []Vec3 {
	steps := []float64{0, 0.001, 0.02, 0.18, 0.5, 0.73, 0.99, 1}
	values := make([]Vec3, 0, len(steps)*len(steps)*len(steps))
	for _, r := range steps {
		for _, g := range steps {
			for _, b := range steps {
				values = append(values, Vec3{r, g, b})
			}
		}
	}
	return values
}

func approxEqual(t *testing.T, got Vec3, want Vec3, tolerance float64) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, tolerance)); diff != "" {
		t.Fatalf("vector mismatch (-want +got):\n%s", diff)
	}
}

func TestOkLabRoundTrip(t *testing.T) {
	t.Parallel()

	for _, linear := range linearGrid() {
		lab := LinearToOkLab(linear)
		approxEqual(t, OkLabToLinear(lab), linear, roundTripTolerance)
		approxEqual(t, LinearToOkLab(OkLabToLinear(lab)), lab, roundTripTolerance)
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	t.Parallel()

	for _, linear := range linearGrid() {
		encoded := LinearToSRGB(linear)
		approxEqual(t, SRGBToLinear(encoded), linear, roundTripTolerance)
		approxEqual(t, LinearToSRGB(SRGBToLinear(encoded)), encoded, roundTripTolerance)
	}
}

func TestHSVRoundTrip(t *testing.T) {
	t.Parallel()

	for _, linear := range linearGrid() {
		hsv := LinearToHSV(linear)
		approxEqual(t, HSVToLinear(hsv), linear, roundTripTolerance)
	}

	chromatic := []Vec3{{0, 1, 1}, {45, 0.5, 0.8}, {120, 0.25, 0.3}, {210, 0.9, 0.6}, {359.5, 0.7, 0.4}}
	for _, hsv := range chromatic {
		approxEqual(t, LinearToHSV(HSVToLinear(hsv)), hsv, roundTripTolerance)
	}
}

func TestOkLchRoundTrip(t *testing.T) {
	t.Parallel()

	for _, linear := range linearGrid() {
		lab := LinearToOkLab(linear)
		lch := OkLabToOkLch(lab)
		if lch[2] < 0 || lch[2] >= 360 {
			t.Fatalf("hue %f outside [0,360)", lch[2])
		}
		approxEqual(t, OkLchToOkLab(lch), lab, roundTripTolerance)
	}
}

func TestSRGBMatchesColorful(t *testing.T) {
	t.Parallel()

	for _, linear := range linearGrid() {
		reference := colorful.LinearRgb(linear[0], linear[1], linear[2])
		approxEqual(t, LinearToSRGB(linear), Vec3{reference.R, reference.G, reference.B}, 1e-9)
	}
}

func TestHSVMatchesColorful(t *testing.T) {
	t.Parallel()

	for _, linear := range linearGrid() {
		h, s, v := colorful.Color{R: linear[0], G: linear[1], B: linear[2]}.Hsv()
		got := LinearToHSV(linear)
		if got[1] == 0 {
			// hue is undefined for greys; only compare s and v
			h = got[0]
		}
		approxEqual(t, got, Vec3{h, s, v}, 1e-9)
	}
}

func TestOkLabKnownValues(t *testing.T) {
	t.Parallel()

	approxEqual(t, LinearToOkLab(Vec3{1, 1, 1}), Vec3{1, 0, 0}, 1e-4)
	approxEqual(t, LinearToOkLab(Vec3{0, 0, 0}), Vec3{0, 0, 0}, 1e-12)
	approxEqual(t, LinearToOkLab(Vec3{1, 0, 0}), Vec3{0.627955, 0.224863, 0.125846}, 1e-4)
}

func TestWrapHueAndDelta(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0}, {360, 0}, {-30, 330}, {725, 5}, {-720, 0},
	}
	for _, tc := range cases {
		if got := WrapHue(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("WrapHue(%f): expected %f, got %f", tc.in, tc.want, got)
		}
	}

	if got := HueDelta(350, 10); math.Abs(got-20) > 1e-9 {
		t.Fatalf("expected +20 across the seam, got %f", got)
	}
	if got := HueDelta(10, 350); math.Abs(got+20) > 1e-9 {
		t.Fatalf("expected -20 across the seam, got %f", got)
	}
}

func TestConvertRoutesThroughLinear(t *testing.T) {
	t.Parallel()

	linear := Vec3{0.2, 0.4, 0.6}
	hsv := Convert(linear, LinearRGB, HSV)
	lch := Convert(hsv, HSV, OkLch)
	approxEqual(t, Convert(lch, OkLch, LinearRGB), linear, roundTripTolerance)
}

func TestParseSpace(t *testing.T) {
	t.Parallel()

	for _, space := range []Space{LinearRGB, SRGB, OkLab, OkLch, HSV} {
		parsed, err := ParseSpace(space.String())
		if err != nil {
			t.Fatalf("parse %q: %v", space.String(), err)
		}
		if parsed != space {
			t.Fatalf("expected %v, got %v", space, parsed)
		}
	}
	if _, err := ParseSpace("cmyk"); err == nil {
		t.Fatal("expected error for unknown space")
	}
}

func TestFromPacked(t *testing.T) {
	t.Parallel()

	approxEqual(t, FromPacked(0xFF8000), Vec3{1, 128.0 / 255, 0}, 1e-12)
}
