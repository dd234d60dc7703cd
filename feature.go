package gobucket

import (
	"github.com/TimurManjosov/gobucket/internal/hashing"
	"github.com/TimurManjosov/gobucket/internal/telemetry"
)

// Feature resolves a feature by ID for the current user. An unknown ID is an
// ordinary result (Source = SourceUnknownFeature, nil value), never an error.
//
// The feature's rules are walked in order; the first rule that produces a
// result wins:
//   - a rule whose condition does not match is skipped
//   - a rule with a forced value returns it, unless a coverage roll on the
//     "id" attribute excludes the user
//   - any other rule is run as an experiment; an in-experiment result returns
//     the assigned variation's value
//
// When no rule produces a result the feature's default value applies.
func (c *Client) Feature(id string) FeatureResult {
	res := c.evalFeature(c.current.Load(), id)
	telemetry.FeatureEvaluations.WithLabelValues(string(res.Source)).Inc()
	return res
}

func (c *Client) evalFeature(s *state, id string) FeatureResult {
	f, ok := s.features[id]
	if !ok {
		return FeatureResult{Source: SourceUnknownFeature}
	}

	for i := range f.Rules {
		rule := &f.Rules[i]

		if len(rule.Condition) > 0 {
			if c.conditions == nil {
				continue
			}
			match, err := c.conditions.Eval(rule.Condition, s.attributes)
			if err != nil || !match {
				continue
			}
		}

		if rule.Force != nil {
			if rule.Coverage != nil {
				// Coverage rolls always hash the "id" attribute, regardless of
				// any hashAttribute on the rule.
				idValue := coerceString(s.attributes["id"])
				if idValue == "" {
					continue
				}
				if hashing.Bucket(idValue+id) > *rule.Coverage {
					continue
				}
			}
			return FeatureResult{Value: rule.Force, Source: SourceForce}
		}

		exp := &Experiment{
			TrackingKey:   id,
			Variations:    rule.Variations,
			Coverage:      rule.Coverage,
			Weights:       rule.Weights,
			HashAttribute: rule.HashAttribute,
			Namespace:     rule.Namespace,
		}
		if rule.Key != "" {
			exp.TrackingKey = rule.Key
		}

		res := c.run(s, exp)
		if res.InExperiment {
			return FeatureResult{Value: res.Value, Source: SourceExperiment}
		}
	}

	return FeatureResult{Value: f.DefaultValue, Source: SourceDefaultValue}
}
