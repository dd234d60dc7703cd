package gobucket

import (
	"net/url"
	"strconv"
)

// VariationSource supplies externally forced variation indexes, keyed by
// experiment tracking key. The canonical implementation reads a page URL's
// query string (QA links force a variation by naming the tracking key), but
// the evaluator only ever sees this interface, so hosts without URLs can plug
// in their own source.
type VariationSource interface {
	// ForcedVariation returns the forced variation index for trackingKey and
	// whether one is present.
	ForcedVariation(trackingKey string) (int, bool)
}

// QuerySource reads forced variations from URL query parameters: a parameter
// named after the tracking key whose value parses as an integer forces that
// variation index. Non-integer values are ignored.
type QuerySource struct {
	values url.Values
}

// NewQuerySource builds a QuerySource from a raw URL. An unparsable URL
// yields an empty source rather than an error: a bad QA link must never break
// evaluation.
func NewQuerySource(rawURL string) *QuerySource {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &QuerySource{values: url.Values{}}
	}
	return &QuerySource{values: u.Query()}
}

// ForcedVariation implements VariationSource.
func (q *QuerySource) ForcedVariation(trackingKey string) (int, bool) {
	if q == nil || !q.values.Has(trackingKey) {
		return 0, false
	}
	id, err := strconv.Atoi(q.values.Get(trackingKey))
	if err != nil {
		return 0, false
	}
	return id, true
}
