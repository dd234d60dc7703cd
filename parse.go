package gobucket

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Definitions is the already-parsed payload the SDK evaluates against:
// features keyed by ID and experiment overrides keyed by tracking key. The
// ETag is a weak validator over the raw payload, used by the fetch
// collaborators for conditional requests and change notification.
type Definitions struct {
	Features  FeatureSet  `json:"features"`
	Overrides OverrideSet `json:"overrides,omitempty"`
	ETag      string      `json:"-"`
}

// ParseDefinitions decodes a definitions payload and stamps it with a weak
// ETag derived from the raw bytes. Missing sections decode to empty sets so
// callers never see nil maps.
func ParseDefinitions(data []byte) (*Definitions, error) {
	var defs Definitions
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}
	if defs.Features == nil {
		defs.Features = FeatureSet{}
	}
	if defs.Overrides == nil {
		defs.Overrides = OverrideSet{}
	}
	sum := sha256.Sum256(data)
	defs.ETag = `W/"` + hex.EncodeToString(sum[:]) + `"`
	return &defs, nil
}
