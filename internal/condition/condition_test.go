package condition

import (
	"encoding/json"
	"errors"
	"testing"
)

func evalOrFatal(t *testing.T, cond string, attrs map[string]any) bool {
	t.Helper()
	match, err := New().Eval(json.RawMessage(cond), attrs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return match
}

func TestEval_SimpleEquality(t *testing.T) {
	attrs := map[string]any{"country": "US", "plan": "premium"}

	if !evalOrFatal(t, `{"==": [{"var": "country"}, "US"]}`, attrs) {
		t.Error("expected country == US to match")
	}
	if evalOrFatal(t, `{"==": [{"var": "country"}, "CA"]}`, attrs) {
		t.Error("expected country == CA not to match")
	}
}

func TestEval_CompoundExpression(t *testing.T) {
	attrs := map[string]any{"age": 25, "isBeta": true}

	cond := `{"and": [{">": [{"var": "age"}, 18]}, {"var": "isBeta"}]}`
	if !evalOrFatal(t, cond, attrs) {
		t.Error("expected adult beta tester to match")
	}

	attrs["isBeta"] = false
	if evalOrFatal(t, cond, attrs) {
		t.Error("expected non-beta user not to match")
	}
}

func TestEval_MissingAttribute(t *testing.T) {
	if evalOrFatal(t, `{"==": [{"var": "plan"}, "premium"]}`, map[string]any{}) {
		t.Error("missing attribute should not match")
	}
}

func TestEval_EmptyCondition(t *testing.T) {
	_, err := New().Eval(json.RawMessage("  "), map[string]any{})
	if !errors.Is(err, ErrEmptyCondition) {
		t.Errorf("expected ErrEmptyCondition, got %v", err)
	}
}

func TestEval_InvalidCondition(t *testing.T) {
	_, err := New().Eval(json.RawMessage(`{"==": [`), map[string]any{})
	if !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("expected ErrInvalidCondition, got %v", err)
	}
}

func TestEval_NilAttributes(t *testing.T) {
	match, err := New().Eval(json.RawMessage(`{"==": [1, 1]}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !match {
		t.Error("constant-true condition should match with nil attributes")
	}
}

func TestValidate(t *testing.T) {
	if err := New().Validate(json.RawMessage(`{"==": [{"var": "x"}, 1]}`)); err != nil {
		t.Errorf("valid condition rejected: %v", err)
	}
	if err := New().Validate(json.RawMessage(`not json`)); err == nil {
		t.Error("invalid condition accepted")
	}
	if err := New().Validate(json.RawMessage("")); !errors.Is(err, ErrEmptyCondition) {
		t.Errorf("expected ErrEmptyCondition, got %v", err)
	}
}

func TestEval_SemverOperators(t *testing.T) {
	attrs := map[string]any{"appVersion": "1.10.0"}

	// Lexicographic comparison would call "1.10.0" < "1.9.0"; semver must not.
	if !evalOrFatal(t, `{"semver_gt": [{"var": "appVersion"}, "1.9.0"]}`, attrs) {
		t.Error("expected 1.10.0 > 1.9.0 under semver ordering")
	}
	if !evalOrFatal(t, `{"semver_gte": [{"var": "appVersion"}, "1.10.0"]}`, attrs) {
		t.Error("expected 1.10.0 >= 1.10.0")
	}
	if evalOrFatal(t, `{"semver_eq": [{"var": "appVersion"}, "2.0.0"]}`, attrs) {
		t.Error("expected 1.10.0 != 2.0.0")
	}
	if !evalOrFatal(t, `{"semver_lt": [{"var": "appVersion"}, "2.0.0"]}`, attrs) {
		t.Error("expected 1.10.0 < 2.0.0")
	}
}

func TestEval_SemverInvalidVersion(t *testing.T) {
	attrs := map[string]any{"appVersion": "not-a-version"}
	if evalOrFatal(t, `{"semver_gte": [{"var": "appVersion"}, "1.0.0"]}`, attrs) {
		t.Error("invalid version should evaluate to false")
	}
}
