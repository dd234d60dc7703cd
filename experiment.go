package gobucket

import (
	"github.com/TimurManjosov/gobucket/internal/bucket"
	"github.com/TimurManjosov/gobucket/internal/hashing"
	"github.com/TimurManjosov/gobucket/internal/telemetry"
)

// Run evaluates an experiment for the current user and returns the
// assignment. The evaluation is total: every ineligibility degrades to an
// InExperiment=false result, never an error. The tracking callback fires
// exactly once, only on the path that actually buckets the user, and no
// internal locks are held while it runs.
//
// Gate order (each failure is an early return):
//  1. fewer than two variations, or the client is disabled
//  2. externally forced variation (URL query string / custom source)
//  3. context forced variation
//  4. override merge (weights, coverage, force, status -> active)
//  5. experiment inactive
//  6. empty bucketing attribute
//  7. namespace membership (raw numeric attribute, not a hash)
//  8. include predicate (false or panic excludes)
//  9. condition (fails closed without a configured evaluator)
//     10-13. bucket ranges from weights+coverage, hash, range containment
//  14. forced variation index on the experiment itself
//  15. QA mode
//  16. success: build result, fire tracking callback
func (c *Client) Run(exp *Experiment) ExperimentResult {
	res := c.run(c.current.Load(), exp)
	label := "out"
	if res.InExperiment {
		label = "in"
	}
	telemetry.ExperimentEvaluations.WithLabelValues(label).Inc()
	return res
}

// run evaluates exp against one consistent snapshot. Feature evaluation calls
// it with the snapshot it already loaded so a feature's rule walk and its
// delegated experiments observe identical definitions.
func (c *Client) run(s *state, exp *Experiment) ExperimentResult {
	var notIn ExperimentResult

	if len(exp.Variations) < 2 || !s.enabled {
		return notIn
	}

	if s.source != nil {
		if id, ok := s.source.ForcedVariation(exp.TrackingKey); ok {
			return ExperimentResult{VariationID: id}
		}
	}

	if id, ok := s.forced[exp.TrackingKey]; ok {
		return ExperimentResult{VariationID: id}
	}

	if o := s.overrides[exp.TrackingKey]; o != nil {
		exp = o.apply(exp)
	}

	if !exp.IsActive() {
		return notIn
	}

	idValue := coerceString(s.attributes["id"])
	rawAttr, hasAttr := s.attributes[exp.hashAttributeOrDefault()]
	attributeValue := idValue
	if hasAttr {
		attributeValue = coerceString(rawAttr)
	} else {
		rawAttr = s.attributes["id"]
	}
	if attributeValue == "" {
		return notIn
	}

	if exp.Namespace != nil {
		n, ok := coerceNumber(rawAttr)
		if !ok || !exp.Namespace.window().Contains(n) {
			return notIn
		}
	}

	if exp.Include != nil && !safeInclude(exp.Include) {
		return notIn
	}

	if len(exp.Condition) > 0 {
		if c.conditions == nil {
			return notIn
		}
		ok, err := c.conditions.Eval(exp.Condition, s.attributes)
		if err != nil || !ok {
			return notIn
		}
	}

	weights := exp.Weights
	if weights == nil {
		weights = bucket.EvenWeights(len(exp.Variations))
	}
	coverage := 1.0
	if exp.Coverage != nil {
		coverage = *exp.Coverage
	}

	ranges := bucket.Ranges(weights, coverage)
	h := hashing.Bucket(idValue + exp.TrackingKey)
	i := bucket.Index(ranges, h)
	if i < 0 {
		return notIn
	}

	if exp.Force != nil {
		return ExperimentResult{VariationID: *exp.Force}
	}

	if s.qaMode {
		return notIn
	}

	result := ExperimentResult{InExperiment: true, VariationID: i, Value: exp.Variations[i]}
	if c.track != nil {
		telemetry.TrackingCalls.Inc()
		c.track(exp, result)
	}
	return result
}

// safeInclude runs the caller-supplied include predicate, converting a panic
// into a false result so evaluation stays total.
func safeInclude(include func() bool) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return include()
}
