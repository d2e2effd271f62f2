// Package sampler reduces images to a small set of representative colors.
//
// A Sampler is a closed set of variants selected by Kind. Sample computes a
// fresh result on every call, so the same Sampler can be reused across
// ranking passes.
package sampler

import (
	"blockcolors/internal/colorspace"
	"blockcolors/internal/corpus"
	"fmt"
)

type Kind int

const (
	KindSingleValue Kind = iota
	KindGrid
	KindColorDifference
	KindKernel
)

func (k Kind) String() string {
	switch k {
	case KindSingleValue:
		return "single-value"
	case KindGrid:
		return "grid"
	case KindColorDifference:
		return "color-difference"
	case KindKernel:
		return "kernel"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	MinKernelRadius = 1
	MaxKernelRadius = 2
)

// Samples is a sequence of colors tagged with the space they live in.
type Samples struct {
	Space  colorspace.Space
	Values []colorspace.Vec3
}

func (s Samples) Len() int {
	return len(s.Values)
}

// First returns the first value, or the zero vector for an empty sequence.
func (s Samples) First() colorspace.Vec3 {
	if len(s.Values) == 0 {
		return colorspace.Vec3{}
	}
	return s.Values[0]
}

type Sampler struct {
	kind   Kind
	space  colorspace.Space
	image  *corpus.Image
	value  colorspace.Vec3
	count  int
	grid   int
	radius int
}

// SingleValue replicates a color that is already expressed in space.
func SingleValue(space colorspace.Space, value colorspace.Vec3, count int) Sampler {
	if count < 1 {
		count = 1
	}
	return Sampler{kind: KindSingleValue, space: space, value: value, count: count}
}

// FromLinearRGB converts a linear color into space and replicates it grid²
// times so it lines up with a Grid sampler of the same size.
func FromLinearRGB(linear colorspace.Vec3, space colorspace.Space, grid int) Sampler {
	grid = clampGrid(grid)
	return SingleValue(space, colorspace.FromLinear(linear, space), grid*grid)
}

func Grid(img *corpus.Image, space colorspace.Space, grid int) Sampler {
	return Sampler{kind: KindGrid, space: space, image: img, grid: clampGrid(grid)}
}

func ColorDifference(img *corpus.Image, space colorspace.Space) Sampler {
	return Sampler{kind: KindColorDifference, space: space, image: img}
}

func Kernel(img *corpus.Image, space colorspace.Space, radius int) Sampler {
	if radius < MinKernelRadius {
		radius = MinKernelRadius
	}
	if radius > MaxKernelRadius {
		radius = MaxKernelRadius
	}
	return Sampler{kind: KindKernel, space: space, image: img, radius: radius}
}

func (s Sampler) Kind() Kind {
	return s.kind
}

func (s Sampler) Space() colorspace.Space {
	return s.space
}

func (s Sampler) Sample() Samples {
	switch s.kind {
	case KindSingleValue:
		values := make([]colorspace.Vec3, s.count)
		for i := range values {
			values[i] = s.value
		}
		return Samples{Space: s.space, Values: values}
	case KindGrid:
		return Samples{Space: s.space, Values: gridAverages(s.image, s.space, s.grid)}
	case KindColorDifference:
		return Samples{Space: s.space, Values: []colorspace.Vec3{colorDifference(s.image, s.space)}}
	case KindKernel:
		return Samples{Space: s.space, Values: []colorspace.Vec3{kernelDifference(s.image, s.space, s.radius)}}
	default:
		panic(fmt.Sprintf("sampler: unhandled kind %v", s.kind))
	}
}

func clampGrid(grid int) int {
	if grid < 1 {
		return 1
	}
	return grid
}

// cellBounds splits length into count spans; the last one takes the
// remainder of the integer division.
func cellBounds(length int, count int, index int) (int, int) {
	step := length / count
	start := step * index
	end := start + step
	if index == count-1 {
		end = length
	}
	return start, end
}

func gridAverages(img *corpus.Image, space colorspace.Space, grid int) []colorspace.Vec3 {
	averages := make([]colorspace.Vec3, 0, grid*grid)
	for row := 0; row < grid; row++ {
		for column := 0; column < grid; column++ {
			if img == nil {
				averages = append(averages, colorspace.Vec3{})
				continue
			}
			startY, endY := cellBounds(img.Height, grid, row)
			startX, endX := cellBounds(img.Width, grid, column)
			averages = append(averages, regionAverage(img, space, startX, endX, startY, endY))
		}
	}
	return averages
}

// regionAverage is the alpha weighted mean of the region in space. A region
// with no alpha yields the zero vector.
func regionAverage(img *corpus.Image, space colorspace.Space, startX, endX, startY, endY int) colorspace.Vec3 {
	var total colorspace.Vec3
	alpha := 0.0
	for y := startY; y < endY; y++ {
		for x := startX; x < endX; x++ {
			color, a := img.At(x, y)
			if a == 0 {
				continue
			}
			total = total.Add(colorspace.FromLinear(color, space).Scale(a))
			alpha += a
		}
	}
	if alpha == 0 {
		return colorspace.Vec3{}
	}
	return total.Scale(1 / alpha)
}

func imageAverage(img *corpus.Image, space colorspace.Space) colorspace.Vec3 {
	return regionAverage(img, space, 0, img.Width, 0, img.Height)
}

// colorDifference is the per channel, alpha weighted RMS deviation of every
// pixel from the image average.
func colorDifference(img *corpus.Image, space colorspace.Space) colorspace.Vec3 {
	if img == nil || img.Empty() {
		return colorspace.Vec3{}
	}

	average := imageAverage(img, space)
	var total colorspace.Vec3
	alpha := 0.0
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			color, a := img.At(x, y)
			if a == 0 {
				continue
			}
			diff := colorspace.FromLinear(color, space).Sub(average)
			total = total.Add(diff.Mul(diff).Scale(a))
			alpha += a
		}
	}
	if alpha == 0 {
		return colorspace.Vec3{}
	}
	return total.Scale(1 / alpha).Sqrt()
}

// kernelDifference measures local contrast: every pixel's neighborhood
// average is compared with the image average. Neighborhoods wrap around the
// image edges.
func kernelDifference(img *corpus.Image, space colorspace.Space, radius int) colorspace.Vec3 {
	if img == nil || img.Empty() {
		return colorspace.Vec3{}
	}

	converted := make([]colorspace.Vec3, img.Width*img.Height)
	alphas := make([]float64, img.Width*img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			color, a := img.At(x, y)
			converted[y*img.Width+x] = colorspace.FromLinear(color, space)
			alphas[y*img.Width+x] = a
		}
	}

	average := imageAverage(img, space)
	var total colorspace.Vec3
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			var local colorspace.Vec3
			alpha := 0.0
			for j := -radius; j <= radius; j++ {
				for i := -radius; i <= radius; i++ {
					index := wrap(y+j, img.Height)*img.Width + wrap(x+i, img.Width)
					a := alphas[index]
					if a == 0 {
						continue
					}
					local = local.Add(converted[index].Scale(a))
					alpha += a
				}
			}
			if alpha == 0 {
				continue
			}
			diff := local.Scale(1 / alpha).Sub(average)
			total = total.Add(diff.Mul(diff))
		}
	}

	return total.Sqrt().Scale(1 / float64(img.Width*img.Height))
}

func wrap(value int, length int) int {
	value %= length
	if value < 0 {
		value += length
	}
	return value
}
