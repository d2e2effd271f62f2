package ranking

import "gonum.org/v1/gonum/floats"

// MinMax is the observed range of one distance channel during a pass.
type MinMax struct {
	Min float64
	Max float64
}

func newMinMax(values []float64) MinMax {
	if len(values) == 0 {
		return MinMax{}
	}
	return MinMax{Min: floats.Min(values), Max: floats.Max(values)}
}

// Normalize maps value into [0,1] over the range. A flat range maps to 0.
func (m MinMax) Normalize(value float64) float64 {
	span := m.Max - m.Min
	if span == 0 {
		return 0
	}
	return (value - m.Min) / span
}
