package gobucket

import (
	"testing"

	"github.com/TimurManjosov/gobucket/internal/condition"
)

func clientWithFeatures(features FeatureSet, opts ...Option) *Client {
	c := New(opts...)
	c.SetDefinitions(&Definitions{Features: features, Overrides: OverrideSet{}})
	return c
}

func TestFeature_Unknown(t *testing.T) {
	c := clientWithFeatures(FeatureSet{}, WithAttributes(map[string]any{"id": "user123"}))

	res := c.Feature("missing")
	if res.Value != nil {
		t.Errorf("Value = %v, want nil", res.Value)
	}
	if res.Source != SourceUnknownFeature {
		t.Errorf("Source = %q, want %q", res.Source, SourceUnknownFeature)
	}
}

func TestFeature_DefaultValueNoRules(t *testing.T) {
	c := clientWithFeatures(
		FeatureSet{"flag1": {DefaultValue: "A"}},
		WithAttributes(map[string]any{"id": "user123"}),
	)

	res := c.Feature("flag1")
	if res.Value != "A" || res.Source != SourceDefaultValue {
		t.Errorf("got %+v, want value A from defaultValue", res)
	}
}

func TestFeature_ForceRule(t *testing.T) {
	c := clientWithFeatures(
		FeatureSet{"flag1": {
			DefaultValue: "off",
			Rules:        []Rule{{Force: "on"}},
		}},
		WithAttributes(map[string]any{"id": "user123"}),
	)

	res := c.Feature("flag1")
	if res.Value != "on" || res.Source != SourceForce {
		t.Errorf("got %+v, want forced on", res)
	}
}

func TestFeature_ForceRuleCoverage(t *testing.T) {
	// hash("user123flag1") = 0.195
	attrs := map[string]any{"id": "user123"}

	included := clientWithFeatures(FeatureSet{"flag1": {
		DefaultValue: "off",
		Rules:        []Rule{{Force: "on", Coverage: floatPtr(0.2)}},
	}}, WithAttributes(attrs))
	if res := included.Feature("flag1"); res.Value != "on" || res.Source != SourceForce {
		t.Errorf("got %+v, want forced on (0.195 <= 0.2)", res)
	}

	excluded := clientWithFeatures(FeatureSet{"flag1": {
		DefaultValue: "off",
		Rules:        []Rule{{Force: "on", Coverage: floatPtr(0.1)}},
	}}, WithAttributes(attrs))
	if res := excluded.Feature("flag1"); res.Value != "off" || res.Source != SourceDefaultValue {
		t.Errorf("got %+v, want default off (0.195 > 0.1)", res)
	}
}

func TestFeature_ForceRuleCoverageEmptyID(t *testing.T) {
	c := clientWithFeatures(FeatureSet{"flag1": {
		DefaultValue: "off",
		Rules:        []Rule{{Force: "on", Coverage: floatPtr(1.0)}},
	}})

	// Without an id attribute the coverage roll cannot run; the rule is skipped.
	if res := c.Feature("flag1"); res.Value != "off" || res.Source != SourceDefaultValue {
		t.Errorf("got %+v, want default off", res)
	}
}

func TestFeature_ExperimentRule(t *testing.T) {
	c := clientWithFeatures(FeatureSet{"checkout": {
		DefaultValue: "classic",
		Rules: []Rule{{
			Variations: []FeatureValue{"classic", "streamlined"},
		}},
	}}, WithAttributes(map[string]any{"id": "user123"}))

	res := c.Feature("checkout")
	// hash("user123checkout") = 0.066 -> variation 0
	if res.Source != SourceExperiment {
		t.Fatalf("Source = %q, want %q", res.Source, SourceExperiment)
	}
	if res.Value != "classic" {
		t.Errorf("Value = %v, want classic", res.Value)
	}
}

func TestFeature_ExperimentRuleKeyOverride(t *testing.T) {
	var trackedKey string
	c := clientWithFeatures(FeatureSet{"flag1": {
		Rules: []Rule{{
			Key:        "exp1",
			Variations: []FeatureValue{"v0", "v1"},
		}},
	}},
		WithAttributes(map[string]any{"id": "user123"}),
		WithTrackingCallback(func(e *Experiment, _ ExperimentResult) { trackedKey = e.TrackingKey }),
	)

	res := c.Feature("flag1")
	// hash("user123exp1") = 0.536 -> variation 1
	if res.Value != "v1" || res.Source != SourceExperiment {
		t.Errorf("got %+v, want v1 from experiment", res)
	}
	if trackedKey != "exp1" {
		t.Errorf("tracking key = %q, want rule key exp1", trackedKey)
	}
}

func TestFeature_ExperimentRuleNotInFallsThrough(t *testing.T) {
	// Single-variation rule can never bucket; the walk continues to the next
	// rule and then the default.
	c := clientWithFeatures(FeatureSet{"flag1": {
		DefaultValue: "fallback",
		Rules: []Rule{
			{Variations: []FeatureValue{"lonely"}},
			{Force: "second"},
		},
	}}, WithAttributes(map[string]any{"id": "user123"}))

	if res := c.Feature("flag1"); res.Value != "second" || res.Source != SourceForce {
		t.Errorf("got %+v, want second rule's forced value", res)
	}
}

func TestFeature_RuleOrderFirstMatchWins(t *testing.T) {
	c := clientWithFeatures(FeatureSet{"flag1": {
		DefaultValue: "off",
		Rules: []Rule{
			{Force: "first"},
			{Force: "second"},
		},
	}}, WithAttributes(map[string]any{"id": "user123"}))

	if res := c.Feature("flag1"); res.Value != "first" {
		t.Errorf("got %+v, want first rule to win", res)
	}
}

func TestFeature_ConditionSkipsRule(t *testing.T) {
	features := FeatureSet{"flag1": {
		DefaultValue: "off",
		Rules: []Rule{{
			Condition: []byte(`{"==": [{"var": "plan"}, "premium"]}`),
			Force:     "on",
		}},
	}}

	premium := clientWithFeatures(features,
		WithAttributes(map[string]any{"id": "user123", "plan": "premium"}),
		WithConditionEvaluator(condition.New()),
	)
	if res := premium.Feature("flag1"); res.Value != "on" || res.Source != SourceForce {
		t.Errorf("got %+v, want forced on for premium", res)
	}

	free := clientWithFeatures(features,
		WithAttributes(map[string]any{"id": "user123", "plan": "free"}),
		WithConditionEvaluator(condition.New()),
	)
	if res := free.Feature("flag1"); res.Value != "off" || res.Source != SourceDefaultValue {
		t.Errorf("got %+v, want default off for free plan", res)
	}
}

func TestFeature_ConditionWithoutEvaluatorSkipsRule(t *testing.T) {
	c := clientWithFeatures(FeatureSet{"flag1": {
		DefaultValue: "off",
		Rules: []Rule{{
			Condition: []byte(`{"==": [1, 1]}`),
			Force:     "on",
		}},
	}}, WithAttributes(map[string]any{"id": "user123"}))

	if res := c.Feature("flag1"); res.Value != "off" || res.Source != SourceDefaultValue {
		t.Errorf("got %+v, want rule skipped without an evaluator", res)
	}
}

func TestFeature_NilDefaultValue(t *testing.T) {
	c := clientWithFeatures(FeatureSet{"flag1": {}}, WithAttributes(map[string]any{"id": "user123"}))

	res := c.Feature("flag1")
	if res.Value != nil || res.Source != SourceDefaultValue {
		t.Errorf("got %+v, want nil default", res)
	}
}
