package colorspace

import (
	"fmt"
	"math"
	"strings"
)

// Vec3 is a three channel color. The meaning of each channel depends on the
// Space it was produced in.
type Vec3 [3]float64

type Space int

const (
	LinearRGB Space = iota
	SRGB
	OkLab
	OkLch
	HSV
)

var spaceNames = map[Space]string{
	LinearRGB: "linear-rgb",
	SRGB:      "srgb",
	OkLab:     "oklab",
	OkLch:     "oklch",
	HSV:       "hsv",
}

func (s Space) String() string {
	if name, ok := spaceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("space(%d)", int(s))
}

func (s Space) MarshalText() ([]byte, error) {
	if _, ok := spaceNames[s]; !ok {
		return nil, fmt.Errorf("unknown color space %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Space) UnmarshalText(text []byte) error {
	parsed, err := ParseSpace(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSpace accepts the canonical names plus a few loose spellings used on
// the command line.
func ParseSpace(value string) (Space, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "linear-rgb", "linear", "linrgb", "rgb":
		return LinearRGB, nil
	case "srgb":
		return SRGB, nil
	case "oklab", "":
		return OkLab, nil
	case "oklch":
		return OkLch, nil
	case "hsv":
		return HSV, nil
	default:
		return OkLab, fmt.Errorf("unknown color space %q", value)
	}
}

// HasHue reports whether one of the channels of the space is an angle.
func (s Space) HasHue() bool {
	return s == OkLch || s == HSV
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]}
}

func (v Vec3) Sqrt() Vec3 {
	return Vec3{math.Sqrt(v[0]), math.Sqrt(v[1]), math.Sqrt(v[2])}
}

func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Convert routes through linear RGB, so any pair of spaces is supported.
func Convert(v Vec3, from Space, to Space) Vec3 {
	if from == to {
		return v
	}
	return FromLinear(ToLinear(v, from), to)
}

func FromLinear(v Vec3, to Space) Vec3 {
	switch to {
	case SRGB:
		return LinearToSRGB(v)
	case OkLab:
		return LinearToOkLab(v)
	case OkLch:
		return OkLabToOkLch(LinearToOkLab(v))
	case HSV:
		return LinearToHSV(v)
	default:
		return v
	}
}

func ToLinear(v Vec3, from Space) Vec3 {
	switch from {
	case SRGB:
		return SRGBToLinear(v)
	case OkLab:
		return OkLabToLinear(v)
	case OkLch:
		return OkLabToLinear(OkLchToOkLab(v))
	case HSV:
		return HSVToLinear(v)
	default:
		return v
	}
}

func LinearToSRGB(v Vec3) Vec3 {
	return Vec3{linearToSRGBChannel(v[0]), linearToSRGBChannel(v[1]), linearToSRGBChannel(v[2])}
}

func SRGBToLinear(v Vec3) Vec3 {
	return Vec3{srgbToLinearChannel(v[0]), srgbToLinearChannel(v[1]), srgbToLinearChannel(v[2])}
}

func linearToSRGBChannel(channel float64) float64 {
	if channel <= 0.0031308 {
		return channel * 12.92
	}
	return 1.055*math.Pow(channel, 1.0/2.4) - 0.055
}

func srgbToLinearChannel(channel float64) float64 {
	if channel <= 0.04045 {
		return channel / 12.92
	}
	return math.Pow((channel+0.055)/1.055, 2.4)
}

// SRGB8ToLinear converts one 8-bit encoded channel.
func SRGB8ToLinear(channel uint8) float64 {
	return srgbToLinearChannel(float64(channel) / 255)
}

func LinearToOkLab(v Vec3) Vec3 {
	l := 0.4122214708*v[0] + 0.5363325363*v[1] + 0.0514459929*v[2]
	m := 0.2119034982*v[0] + 0.6806995451*v[1] + 0.1073969566*v[2]
	s := 0.0883024619*v[0] + 0.2817188376*v[1] + 0.6299787005*v[2]

	lRoot := math.Cbrt(l)
	mRoot := math.Cbrt(m)
	sRoot := math.Cbrt(s)

	return Vec3{
		0.2104542553*lRoot + 0.7936177850*mRoot - 0.0040720468*sRoot,
		1.9779984951*lRoot - 2.4285922050*mRoot + 0.4505937099*sRoot,
		0.0259040371*lRoot + 0.7827717662*mRoot - 0.8086757660*sRoot,
	}
}

func OkLabToLinear(v Vec3) Vec3 {
	lPrime := v[0] + 0.3963377774*v[1] + 0.2158037573*v[2]
	mPrime := v[0] - 0.1055613458*v[1] - 0.0638541728*v[2]
	sPrime := v[0] - 0.0894841775*v[1] - 1.2914855480*v[2]

	l := lPrime * lPrime * lPrime
	m := mPrime * mPrime * mPrime
	s := sPrime * sPrime * sPrime

	return Vec3{
		4.0767416621*l - 3.3077115913*m + 0.2309699292*s,
		-1.2684380046*l + 2.6097574011*m - 0.3413193965*s,
		-0.0041960863*l - 0.7034186147*m + 1.7076147010*s,
	}
}

// OkLabToOkLch returns (L, C, h) with h in degrees.
func OkLabToOkLch(v Vec3) Vec3 {
	chroma := math.Hypot(v[1], v[2])
	hue := math.Atan2(v[2], v[1]) * (180 / math.Pi)
	return Vec3{v[0], chroma, WrapHue(hue)}
}

func OkLchToOkLab(v Vec3) Vec3 {
	radians := v[2] * (math.Pi / 180)
	return Vec3{v[0], v[1] * math.Cos(radians), v[1] * math.Sin(radians)}
}

// LinearToHSV returns (h, s, v) with h in degrees. The transform is applied
// to the components as given; no transfer curve is involved.
func LinearToHSV(v Vec3) Vec3 {
	r, g, b := v[0], v[1], v[2]
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case maxC == r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case maxC == g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}

	saturation := 0.0
	if maxC != 0 {
		saturation = delta / maxC
	}

	return Vec3{WrapHue(hue), saturation, maxC}
}

func HSVToLinear(v Vec3) Vec3 {
	hue := WrapHue(v[0])
	saturation := v[1]
	value := v[2]

	chroma := value * saturation
	sector := hue / 60
	x := chroma * (1 - math.Abs(math.Mod(sector, 2)-1))
	m := value - chroma

	var r, g, b float64
	switch {
	case sector < 1:
		r, g, b = chroma, x, 0
	case sector < 2:
		r, g, b = x, chroma, 0
	case sector < 3:
		r, g, b = 0, chroma, x
	case sector < 4:
		r, g, b = 0, x, chroma
	case sector < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	return Vec3{r + m, g + m, b + m}
}

// WrapHue maps any angle in degrees onto [0, 360).
func WrapHue(hue float64) float64 {
	wrapped := math.Mod(hue, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	if wrapped >= 360 {
		wrapped -= 360
	}
	return wrapped
}

// HueDelta is the shortest signed angle from a to b, in [-180, 180].
func HueDelta(a float64, b float64) float64 {
	delta := math.Mod(b-a, 360)
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return delta
}

// FromPacked converts a 0xRRGGBB integer into normalized channels.
func FromPacked(packed int64) Vec3 {
	return Vec3{
		float64((packed>>16)&0xFF) / 255,
		float64((packed>>8)&0xFF) / 255,
		float64(packed&0xFF) / 255,
	}
}
