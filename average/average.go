// Package average computes descriptive averages over a list of numbers.
//
// Every function accepts an empty or nil slice. Scalar results are then an
// invalid Value and Mode returns an empty slice; nothing panics.
package average

import (
	"sort"

	"github.com/montanaflynn/stats"
)

// Averages bundles the five measures computed by GetAverages.
type Averages struct {
	Mean     Value     `json:"mean"`
	Median   Value     `json:"median"`
	Mode     []float64 `json:"mode"`
	Range    Value     `json:"range"`
	Midrange Value     `json:"midrange"`
}

// Map returns the averages keyed by name. Missing scalars map to nil.
func (a Averages) Map() map[string]interface{} {
	m := map[string]interface{}{
		"mode": a.Mode,
	}
	for name, v := range map[string]Value{
		"mean":     a.Mean,
		"median":   a.Median,
		"range":    a.Range,
		"midrange": a.Midrange,
	} {
		if f, ok := v.Get(); ok {
			m[name] = f
		} else {
			m[name] = nil
		}
	}
	return m
}

// Mean returns the arithmetic mean of numbers.
func Mean(numbers []float64) Value {
	sum, err := stats.Sum(numbers)
	if err != nil || len(numbers) == 0 {
		return Value{}
	}
	return Some(sum / float64(len(numbers)))
}

// Median returns the middle value of the sorted numbers, or the mean of the
// two middle values when the count is even. numbers is not reordered.
func Median(numbers []float64) Value {
	n := len(numbers)
	if n == 0 {
		return Value{}
	}
	s := append([]float64(nil), numbers...)
	sort.Float64s(s)
	if n%2 == 1 {
		return Some(s[n/2])
	}
	return Mean([]float64{s[n/2-1], s[n/2]})
}

// Mode returns every value that occurs the maximum number of times, in
// order of first occurrence.
func Mode(numbers []float64) []float64 {
	counts := make(map[float64]int, len(numbers))
	order := make([]float64, 0, len(numbers))
	max := 0
	for _, v := range numbers {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
		if counts[v] > max {
			max = counts[v]
		}
	}

	modes := make([]float64, 0, 1)
	for _, v := range order {
		if counts[v] == max {
			modes = append(modes, v)
		}
	}
	return modes
}

// Range returns the difference between the largest and smallest values.
func Range(numbers []float64) Value {
	min, max, ok := bounds(numbers)
	if !ok {
		return Value{}
	}
	return Some(max - min)
}

// Midrange returns the mean of the largest and smallest values.
func Midrange(numbers []float64) Value {
	min, max, ok := bounds(numbers)
	if !ok {
		return Value{}
	}
	return Mean([]float64{min, max})
}

// GetAverages computes all five measures over the same input.
func GetAverages(numbers []float64) Averages {
	return Averages{
		Mean:     Mean(numbers),
		Median:   Median(numbers),
		Mode:     Mode(numbers),
		Range:    Range(numbers),
		Midrange: Midrange(numbers),
	}
}

// bounds reports min and max; ok is false for empty input (stats.ErrEmptyInput).
func bounds(numbers []float64) (min, max float64, ok bool) {
	min, err := stats.Min(numbers)
	if err != nil {
		return 0, 0, false
	}
	max, err = stats.Max(numbers)
	if err != nil {
		return 0, 0, false
	}
	return min, max, true
}
