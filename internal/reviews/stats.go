package reviews

import (
	"math"
	"strconv"
)

// Count returns the number of records.
func Count(c Collection) int {
	return len(c)
}

// Average returns the mean rating rounded to one decimal place, or 0 for an
// empty collection.
func Average(c Collection) float64 {
	if len(c) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(c))
	return math.Round(mean*10) / 10
}

// FormatAverage renders an average with exactly one decimal, e.g. "4.0".
func FormatAverage(avg float64) string {
	return strconv.FormatFloat(avg, 'f', 1, 64)
}
