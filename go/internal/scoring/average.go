package scoring

import (
	"math"
	"strconv"
	"strings"
)

var fibonacci = []int{0, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89}

// Numeric parses a card value. Non-numeric cards such as "?" or "coffee" report false.
func Numeric(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Round1 rounds to one decimal, half away from zero, and never returns negative zero.
func Round1(x float64) float64 {
	r := math.Round(x*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

// Average is the mean of the numeric values rounded to one decimal, or nil when there are none.
// Reveal persists exactly this value as an issue's final score.
func Average(values []string) *float64 {
	var sum float64
	n := 0
	for _, v := range values {
		f, ok := Numeric(v)
		if !ok {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return nil
	}
	avg := Round1(sum / float64(n))
	return &avg
}

// AverageInts is Average over integer samples, used for confidence votes.
func AverageInts(values []int) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	avg := Round1(float64(sum) / float64(len(values)))
	return &avg
}

// ClosestFibonacci returns the deck number nearest to avg; ties resolve to the smaller card.
func ClosestFibonacci(avg float64) int {
	best := fibonacci[0]
	for _, f := range fibonacci[1:] {
		if math.Abs(float64(f)-avg) < math.Abs(float64(best)-avg) {
			best = f
		}
	}
	return best
}

// HasConsensus reports whether at least two votes were cast and all are identical.
func HasConsensus(values []string) bool {
	if len(values) < 2 {
		return false
	}
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// VoteSpread is max minus min over the numeric values, or 0 with fewer than two of them.
func VoteSpread(values []string) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range values {
		f, ok := Numeric(v)
		if !ok {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
		n++
	}
	if n < 2 {
		return 0
	}
	return hi - lo
}
