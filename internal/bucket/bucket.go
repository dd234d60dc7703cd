// Package bucket converts experiment variation weights and coverage into the
// numeric ranges used for hash-based assignment, and models the namespace
// windows that partition traffic across mutually exclusive experiments.
package bucket

// Range is a half-open interval [Start, End) on the unit line. Ranges are only
// ever used for containment tests; they are never sorted or merged.
type Range struct {
	Start float64
	End   float64
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Start && v < r.End
}

// EvenWeights returns an even 1/n split for n variations.
func EvenWeights(n int) []float64 {
	weights := make([]float64, n)
	if n == 0 {
		return weights
	}
	w := 1.0 / float64(n)
	for i := range weights {
		weights[i] = w
	}
	return weights
}

// Ranges computes one bucket range per weight, in input order. Each range
// starts where the previous weight ended and spans coverage*weight, so the
// ranges stay aligned with the full-coverage layout: raising coverage only
// widens each variation's slice, it never moves a user between variations.
//
// Example: weights = [0.5, 0.5], coverage = 0.8
//   - variation 0 -> [0.0, 0.4)
//   - variation 1 -> [0.5, 0.9)
func Ranges(weights []float64, coverage float64) []Range {
	ranges := make([]Range, len(weights))
	cumulative := 0.0
	for i, w := range weights {
		ranges[i] = Range{Start: cumulative, End: cumulative + coverage*w}
		cumulative += w
	}
	return ranges
}

// Index returns the position of the first range containing v, or -1 when v
// falls outside every range (for example in a coverage gap).
func Index(ranges []Range, v float64) int {
	for i, r := range ranges {
		if r.Contains(v) {
			return i
		}
	}
	return -1
}

// Namespace is an inclusive-exclusive numeric window identified by ID.
// Experiments sharing a namespace ID with disjoint windows never expose the
// same user to more than one of them.
type Namespace struct {
	ID         string
	RangeStart float64
	RangeEnd   float64
}

// Contains reports whether v falls inside the half-open window
// [RangeStart, RangeEnd).
func (n Namespace) Contains(v float64) bool {
	return v >= n.RangeStart && v < n.RangeEnd
}
