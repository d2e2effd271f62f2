package ranking

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"blockcolors/internal/sampler"
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrUnknownTexture = errors.New("texture not found in corpus")

// Reference is what every corpus image is compared against. Difference and
// Kernel are set only for image references; a plain color has no texture.
type Reference struct {
	Name       string
	Average    sampler.Sampler
	Difference *sampler.Sampler
	Kernel     *sampler.Sampler
}

func (r Reference) HasTexture() bool {
	return r.Difference != nil && r.Kernel != nil
}

// ColorReference replicates a linear RGB color across the sample grid.
func ColorReference(linear colorspace.Vec3, opts Options) Reference {
	opts = opts.Normalized()
	return Reference{Average: sampler.FromLinearRGB(linear, opts.Space, opts.Samples)}
}

// ImageReference samples a corpus texture. The samplers borrow the image
// from c, so the reference is only valid against the same generation.
func ImageReference(c *corpus.Corpus, name string, opts Options) (Reference, error) {
	opts = opts.Normalized()

	entry, ok := c.Lookup(name)
	if !ok {
		return Reference{}, fmt.Errorf("reference %q: %w", name, ErrUnknownTexture)
	}
	img, err := c.Image(entry.Ref)
	if err != nil {
		return Reference{}, fmt.Errorf("reference %q: %w", name, err)
	}

	difference := sampler.ColorDifference(img, opts.Space)
	kernel := sampler.Kernel(img, opts.Space, opts.KernelRadius)
	return Reference{
		Name:       entry.QualifiedName(),
		Average:    sampler.Grid(img, opts.Space, opts.Samples),
		Difference: &difference,
		Kernel:     &kernel,
	}, nil
}

// ParseReferenceColor reads "#rrggbb" (or "#rgb") as sRGB and returns it in
// linear RGB.
func ParseReferenceColor(value string) (colorspace.Vec3, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	color, err := colorful.Hex(value)
	if err != nil {
		return colorspace.Vec3{}, fmt.Errorf("parse reference color %q: %w", value, err)
	}
	r, g, b := color.LinearRgb()
	return colorspace.Vec3{r, g, b}, nil
}
