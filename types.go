package gobucket

import (
	"encoding/json"
	"fmt"

	"github.com/TimurManjosov/gobucket/internal/bucket"
)

// FeatureValue is the value a feature or variation resolves to. It is always
// one of the JSON shapes: string, float64, bool, []any, map[string]any or nil.
type FeatureValue = any

// FeatureSet maps feature IDs to their definitions.
type FeatureSet map[string]*Feature

// OverrideSet maps experiment tracking keys to partial experiment overrides.
type OverrideSet map[string]*ExperimentOverride

// Feature is a named configuration unit with a default value and an ordered
// rule list. Rule order is significant: the first rule that produces a result
// wins.
type Feature struct {
	DefaultValue FeatureValue `json:"defaultValue,omitempty"`
	Rules        []Rule       `json:"rules,omitempty"`
}

// Rule is one ordered entry inside a feature. A rule either forces a value
// (optionally gated by a coverage roll) or delegates to an experiment built
// from its experiment-shaped fields.
type Rule struct {
	Condition     json.RawMessage `json:"condition,omitempty"`
	Force         FeatureValue    `json:"force,omitempty"`
	Coverage      *float64        `json:"coverage,omitempty"`
	Key           string          `json:"key,omitempty"`
	Variations    []FeatureValue  `json:"variations,omitempty"`
	Weights       []float64       `json:"weights,omitempty"`
	HashAttribute string          `json:"hashAttribute,omitempty"`
	Namespace     *Namespace      `json:"namespace,omitempty"`
}

// Experiment is an A/B test definition. Variations must have at least two
// entries for any bucketing to occur.
type Experiment struct {
	TrackingKey   string          `json:"trackingKey"`
	Variations    []FeatureValue  `json:"variations"`
	Weights       []float64       `json:"weights,omitempty"`
	Coverage      *float64        `json:"coverage,omitempty"`
	HashAttribute string          `json:"hashAttribute,omitempty"`
	Namespace     *Namespace      `json:"namespace,omitempty"`
	Active        *bool           `json:"active,omitempty"`
	Force         *int            `json:"force,omitempty"`
	Condition     json.RawMessage `json:"condition,omitempty"`

	// Include is a caller-supplied eligibility predicate. A false return or a
	// panic inside it excludes the user.
	Include func() bool `json:"-"`
}

// IsActive reports the experiment's active flag, defaulting to true when the
// definition leaves it unset.
func (e *Experiment) IsActive() bool {
	return e.Active == nil || *e.Active
}

// hashAttributeOrDefault returns the attribute used for bucketing eligibility,
// defaulting to "id".
func (e *Experiment) hashAttributeOrDefault() string {
	if e.HashAttribute != "" {
		return e.HashAttribute
	}
	return "id"
}

// ExperimentStatus is the lifecycle state carried by an override.
type ExperimentStatus string

const (
	StatusRunning ExperimentStatus = "running"
	StatusStopped ExperimentStatus = "stopped"
	StatusDraft   ExperimentStatus = "draft"
)

// ExperimentOverride is a partial experiment definition used to patch a live
// experiment at evaluation time, keyed by tracking key. Overrides let the
// backend pause, stop or re-weight a shipped experiment without a new client
// release.
type ExperimentOverride struct {
	Weights  []float64        `json:"weights,omitempty"`
	Status   ExperimentStatus `json:"status,omitempty"`
	Coverage *float64         `json:"coverage,omitempty"`
	Force    *int             `json:"force,omitempty"`
}

// apply merges the override into a copy of exp, leaving the original untouched.
func (o *ExperimentOverride) apply(exp *Experiment) *Experiment {
	merged := *exp
	if o.Weights != nil {
		merged.Weights = o.Weights
	}
	if o.Coverage != nil {
		merged.Coverage = o.Coverage
	}
	if o.Force != nil {
		merged.Force = o.Force
	}
	if o.Status != "" {
		active := o.Status == StatusRunning
		merged.Active = &active
	}
	return &merged
}

// Namespace is an inclusive-exclusive numeric window partitioning traffic
// across mutually exclusive experiments. Definitions payloads encode it either
// as an object or as a ["id", start, end] tuple.
type Namespace struct {
	ID         string  `json:"id"`
	RangeStart float64 `json:"rangeStart"`
	RangeEnd   float64 `json:"rangeEnd"`
}

// UnmarshalJSON accepts both the object form and the compact tuple form.
func (n *Namespace) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err == nil {
		if len(tuple) != 3 {
			return fmt.Errorf("namespace tuple must have 3 elements, got %d", len(tuple))
		}
		if err := json.Unmarshal(tuple[0], &n.ID); err != nil {
			return fmt.Errorf("namespace id: %w", err)
		}
		if err := json.Unmarshal(tuple[1], &n.RangeStart); err != nil {
			return fmt.Errorf("namespace range start: %w", err)
		}
		if err := json.Unmarshal(tuple[2], &n.RangeEnd); err != nil {
			return fmt.Errorf("namespace range end: %w", err)
		}
		return nil
	}
	type plain Namespace
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*n = Namespace(obj)
	return nil
}

// window converts the definition into the containment-check form.
func (n *Namespace) window() bucket.Namespace {
	return bucket.Namespace{ID: n.ID, RangeStart: n.RangeStart, RangeEnd: n.RangeEnd}
}

// ExperimentResult reports the outcome of running an experiment for one user.
type ExperimentResult struct {
	// InExperiment is true only when the user was actually bucketed into a
	// variation; every gating failure reports false.
	InExperiment bool `json:"inExperiment"`
	// VariationID is the chosen (or forced) variation index, 0 by default.
	VariationID int `json:"variationId"`
	// Value is the variation's value, populated only when a variation was
	// actually chosen.
	Value FeatureValue `json:"value,omitempty"`
}

// FeatureSource identifies which path produced a feature result.
type FeatureSource string

const (
	SourceForce          FeatureSource = "force"
	SourceExperiment     FeatureSource = "experiment"
	SourceDefaultValue   FeatureSource = "defaultValue"
	SourceUnknownFeature FeatureSource = "unknownFeature"
)

// FeatureResult reports the resolved value of a feature and where it came
// from. Unknown features are an ordinary data path, never an error.
type FeatureResult struct {
	Value  FeatureValue  `json:"value"`
	Source FeatureSource `json:"source"`
}

// TrackingCallback is the caller-supplied exposure side effect, invoked
// synchronously exactly once per evaluation that buckets the user into a
// variation. The SDK holds no locks while calling it, so the callback may
// block or re-enter the SDK.
type TrackingCallback func(exp *Experiment, result ExperimentResult)

// ConditionEvaluator decides whether a condition document matches a user's
// attributes. The condition grammar is deliberately not fixed by the core;
// see the condition package for the jsonlogic-backed implementation.
type ConditionEvaluator interface {
	Eval(condition json.RawMessage, attributes map[string]any) (bool, error)
}
