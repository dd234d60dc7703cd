package gobucket

import "testing"

func TestCoerceString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"user123", "user123"},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{int(7), "7"},
		{int64(9), "9"},
		{true, "true"},
		{false, "false"},
		{nil, ""},
		{[]any{"a"}, ""},
		{map[string]any{"a": 1}, ""},
	}
	for _, c := range cases {
		if got := coerceString(c.in); got != c.want {
			t.Errorf("coerceString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCoerceNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{float64(1.5), 1.5, true},
		{int(42), 42, true},
		{"0.25", 0.25, true},
		{"42", 42, true},
		{"user123", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{[]any{1.0}, 0, false},
	}
	for _, c := range cases {
		got, ok := coerceNumber(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("coerceNumber(%v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
