// Package harmony builds color relationships (complementary, triadic, ...)
// around a base color and ranks the corpus for every member.
package harmony

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/ranking"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRelationship = errors.New("unknown color relationship")

// Mode is the space the hue is rotated in.
type Mode int

const (
	ModeOkLch Mode = iota
	ModeHSV
)

func (m Mode) String() string {
	if m == ModeHSV {
		return "hsv"
	}
	return "oklch"
}

func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "oklch", "oklab":
		return ModeOkLch, nil
	case "hsv":
		return ModeHSV, nil
	default:
		return ModeOkLch, fmt.Errorf("unknown hue mode %q", value)
	}
}

// Member is one color of a relationship. Offset is its hue angle relative
// to the other members; Color is linear RGB.
type Member struct {
	Offset float64         `json:"offset"`
	Color  colorspace.Vec3 `json:"color"`
}

type Relationship struct {
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

var catalog = []struct {
	name    string
	offsets []float64
}{
	{"Complementary", []float64{0, 180}},
	{"Analogous 30", []float64{-60, -30, 0, 30, 60}},
	{"Analogous 40", []float64{-80, -40, 0, 40, 80}},
	{"Split-Complementary", []float64{-150, 0, 150}},
	{"Triadic", []float64{-120, 0, 120}},
	{"Square", []float64{0, 90, 180, 270}},
	{"Tetradic 30", []float64{0, 30, 180, 210}},
	{"Tetradic 60", []float64{0, 60, 180, 240}},
	{"Accent Complement", []float64{0, 150, 180, 210}},
	{"Clash", []float64{0, 90}},
	{"Pentadic", []float64{0, 72, 144, 216, 288}},
	{"Hexadic", []float64{0, 60, 120, 180, 240, 300}},
	{"Custom", nil},
}

// Relationships returns a fresh copy of every named relationship.
func Relationships() []Relationship {
	out := make([]Relationship, 0, len(catalog))
	for _, item := range catalog {
		out = append(out, Custom(item.name, item.offsets...))
	}
	return out
}

// Lookup matches names case-insensitively, with spaces and dashes
// interchangeable.
func Lookup(name string) (Relationship, error) {
	want := slug(name)
	for _, item := range catalog {
		if slug(item.name) == want {
			return Custom(item.name, item.offsets...), nil
		}
	}
	return Relationship{}, fmt.Errorf("%q: %w", name, ErrUnknownRelationship)
}

func Custom(name string, offsets ...float64) Relationship {
	members := make([]Member, len(offsets))
	for i, offset := range offsets {
		members[i] = Member{Offset: offset}
	}
	return Relationship{Name: name, Members: members}
}

func slug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(value)
}

// Rotate turns the hue of a linear RGB color by degrees.
func Rotate(linear colorspace.Vec3, degrees float64, mode Mode) colorspace.Vec3 {
	switch mode {
	case ModeHSV:
		hsv := colorspace.LinearToHSV(linear)
		hsv[0] = colorspace.WrapHue(hsv[0] + degrees)
		return colorspace.HSVToLinear(hsv)
	default:
		lch := colorspace.OkLabToOkLch(colorspace.LinearToOkLab(linear))
		lch[2] = colorspace.WrapHue(lch[2] + degrees)
		return colorspace.OkLabToLinear(colorspace.OkLchToOkLab(lch))
	}
}

// Update sets member index to color and recomputes every other member from
// it using the offset differences.
func (r *Relationship) Update(index int, color colorspace.Vec3, mode Mode) error {
	if len(r.Members) == 0 {
		return nil
	}
	if index < 0 || index >= len(r.Members) {
		return fmt.Errorf("update %s member %d: index out of range", r.Name, index)
	}

	r.Members[index].Color = color
	base := r.Members[index].Offset
	for i := range r.Members {
		if i == index {
			continue
		}
		r.Members[i].Color = Rotate(color, r.Members[i].Offset-base, mode)
	}
	return nil
}

// Ranking pairs a member with the corpus ordering for its color.
type Ranking struct {
	Member Member         `json:"member"`
	Result ranking.Result `json:"result"`
}

// RankRelationship runs one ranking pass per member color.
func RankRelationship(engine *ranking.Engine, r Relationship, opts ranking.Options) ([]Ranking, error) {
	out := make([]Ranking, 0, len(r.Members))
	for _, member := range r.Members {
		result, err := engine.MakeOrdering(ranking.ColorReference(member.Color, opts), opts)
		if err != nil {
			return nil, fmt.Errorf("rank %s offset %.0f: %w", r.Name, member.Offset, err)
		}
		out = append(out, Ranking{Member: member, Result: result})
	}
	return out, nil
}
