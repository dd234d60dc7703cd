package condition

import (
	"github.com/Masterminds/semver/v3"
	"github.com/diegoholiveira/jsonlogic/v3"
)

// Semver comparison operators for version targeting, e.g.
//
//	{"semver_gte": [{"var": "appVersion"}, "2.4.0"]}
//
// Plain string comparison misorders versions ("1.10.0" < "1.9.0"), so rules
// targeting app releases need these. Invalid versions evaluate to false.

func registerSemverOperators() {
	jsonlogic.AddOperator("semver_eq", semverOp(func(cmp int) bool { return cmp == 0 }))
	jsonlogic.AddOperator("semver_gt", semverOp(func(cmp int) bool { return cmp > 0 }))
	jsonlogic.AddOperator("semver_gte", semverOp(func(cmp int) bool { return cmp >= 0 }))
	jsonlogic.AddOperator("semver_lt", semverOp(func(cmp int) bool { return cmp < 0 }))
	jsonlogic.AddOperator("semver_lte", semverOp(func(cmp int) bool { return cmp <= 0 }))
}

func semverOp(match func(cmp int) bool) func(values, data any) any {
	return func(values, data any) any {
		args, ok := values.([]any)
		if !ok || len(args) != 2 {
			return false
		}
		left, ok := parseVersion(args[0])
		if !ok {
			return false
		}
		right, ok := parseVersion(args[1])
		if !ok {
			return false
		}
		return match(left.Compare(right))
	}
}

func parseVersion(v any) (*semver.Version, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	parsed, err := semver.NewVersion(s)
	if err != nil {
		return nil, false
	}
	return parsed, true
}
