package comparables

import (
	"math"
	"sort"
)

const (
	lowerQuartile = 0.25
	upperQuartile = 0.75
	maxDistance   = 2
)

// robustScale centres each column on its median and divides by its
// interquartile range, in place. A zero range leaves the column unscaled.
func robustScale(x [][]float64) {
	if len(x) == 0 {
		return
	}
	col := make([]float64, len(x))
	for j := range x[0] {
		for i := range x {
			col[i] = x[i][j]
		}
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		med := quantile(sorted, 0.5)
		iqr := quantile(sorted, upperQuartile) - quantile(sorted, lowerQuartile)
		if iqr == 0 {
			iqr = 1
		}
		for i := range x {
			x[i][j] = (x[i][j] - med) / iqr
		}
	}
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}

// DistanceMatrix returns pairwise cosine distances between the rows of x.
// Rows with zero norm have similarity 0 to everything. The result is
// symmetric with a zero diagonal and values clipped to [0,2].
func DistanceMatrix(x [][]float64) [][]float64 {
	n := len(x)
	norms := make([]float64, n)
	for i, row := range x {
		var s float64
		for _, v := range row {
			s += v * v
		}
		norms[i] = math.Sqrt(s)
	}

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var sim float64
			if norms[i] > 0 && norms[j] > 0 {
				sim = dot(x[i], x[j]) / (norms[i] * norms[j])
			}
			v := math.Min(math.Max(1-sim, 0), maxDistance)
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func abs(v float64) float64 { return math.Abs(v) }
