package domain

import "math"

// BuildHistogram buckets values into bins of equal width between their
// minimum and maximum. It returns nil for no values or bins <= 0. When all
// values are equal a single bin holds them.
func BuildHistogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []HistogramBin{{Min: lo, Max: hi, Count: int64(len(values))}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Min = lo + float64(i)*width
		out[i].Max = lo + float64(i+1)*width
	}
	out[bins-1].Max = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}

	return out
}
