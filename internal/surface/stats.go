package surface

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats summarises a depth field.
type FieldStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Stats computes summary statistics over the field. An empty field yields zero stats.
func (df *DepthField) Stats() FieldStats {
	if df.Empty() {
		return FieldStats{}
	}
	mean, std := stat.MeanStdDev(df.Data, nil)
	if len(df.Data) < 2 {
		// sample stddev is undefined for one value
		std = 0
	}
	return FieldStats{
		Min:    floats.Min(df.Data),
		Max:    floats.Max(df.Data),
		Mean:   mean,
		StdDev: std,
	}
}
