package gobucket

import "testing"

func TestQuerySource(t *testing.T) {
	src := NewQuerySource("https://app.example.com/page?exp1=2&exp2=no&theme=dark")

	if id, ok := src.ForcedVariation("exp1"); !ok || id != 2 {
		t.Errorf("exp1 = (%d, %v), want (2, true)", id, ok)
	}
	if _, ok := src.ForcedVariation("exp2"); ok {
		t.Error("non-integer value must not force a variation")
	}
	if _, ok := src.ForcedVariation("absent"); ok {
		t.Error("absent parameter must not force a variation")
	}
}

func TestQuerySource_ZeroIsForceable(t *testing.T) {
	src := NewQuerySource("https://app.example.com/?exp1=0")
	if id, ok := src.ForcedVariation("exp1"); !ok || id != 0 {
		t.Errorf("exp1 = (%d, %v), want (0, true)", id, ok)
	}
}

func TestQuerySource_BadURL(t *testing.T) {
	src := NewQuerySource("://not-a-url")
	if _, ok := src.ForcedVariation("exp1"); ok {
		t.Error("unparsable URL must yield an empty source")
	}
}
