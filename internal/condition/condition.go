// Package condition provides the jsonlogic-backed condition evaluator for
// feature rules and experiments. The core deliberately treats the condition
// grammar as pluggable; this package is the default grammar: JSON Logic
// (jsonlogic.com) evaluated against the user attribute map, extended with
// semver comparison operators for version targeting.
package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/diegoholiveira/jsonlogic/v3"
)

// ErrInvalidCondition is returned when a condition document is not valid JSON Logic.
var ErrInvalidCondition = errors.New("invalid condition: not valid JSON Logic")

// ErrEmptyCondition is returned when a condition document is empty or whitespace.
var ErrEmptyCondition = errors.New("invalid condition: empty or whitespace")

var registerOnce sync.Once

// JSONLogic evaluates JSON Logic condition documents. The zero value is
// ready to use and safe for concurrent use.
type JSONLogic struct{}

// New returns a JSONLogic evaluator with the semver operators registered.
func New() *JSONLogic {
	registerOnce.Do(registerSemverOperators)
	return &JSONLogic{}
}

// Eval evaluates a condition against the user attributes. The result follows
// JavaScript-like truthiness, matching how sibling SDKs interpret rule
// results.
func (*JSONLogic) Eval(condition json.RawMessage, attributes map[string]any) (bool, error) {
	if strings.TrimSpace(string(condition)) == "" {
		return false, ErrEmptyCondition
	}

	dataBytes, err := json.Marshal(attributes)
	if err != nil {
		return false, err
	}

	ruleReader := bytes.NewReader(condition)
	dataReader := bytes.NewReader(dataBytes)
	var resultBuf bytes.Buffer

	if err := jsonlogic.Apply(ruleReader, dataReader, &resultBuf); err != nil {
		return false, ErrInvalidCondition
	}

	var result any
	if err := json.Unmarshal(resultBuf.Bytes(), &result); err != nil {
		return false, err
	}

	return isTruthy(result), nil
}

// Validate checks that a condition document is well-formed JSON Logic.
func (*JSONLogic) Validate(condition json.RawMessage) error {
	if strings.TrimSpace(string(condition)) == "" {
		return ErrEmptyCondition
	}

	var rule any
	if err := json.Unmarshal(condition, &rule); err != nil {
		return ErrInvalidCondition
	}

	ruleReader := bytes.NewReader(condition)
	dataReader := strings.NewReader("{}")
	var resultBuf bytes.Buffer

	if err := jsonlogic.Apply(ruleReader, dataReader, &resultBuf); err != nil {
		return ErrInvalidCondition
	}

	return nil
}

// isTruthy follows JavaScript-like truthiness rules.
// Returns true for non-zero numbers, non-empty strings, non-empty arrays/objects, and true boolean.
func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
