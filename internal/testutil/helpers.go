// Package testutil provides shared helpers for gobucket tests.
package testutil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/TimurManjosov/gobucket/internal/api"
)

// NewDevServer starts a dev server over httptest seeded with the given
// definitions payload and registers cleanup.
func NewDevServer(t *testing.T, adminKey string, payload []byte) (*api.Server, *httptest.Server) {
	t.Helper()
	srv := api.NewServer(adminKey, 0, payload)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

// DefinitionsJSON marshals a features/overrides pair into a definitions
// payload, failing the test on marshal errors.
func DefinitionsJSON(t *testing.T, features, overrides map[string]any) []byte {
	t.Helper()
	doc := map[string]any{"features": features}
	if overrides != nil {
		doc["overrides"] = overrides
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal definitions: %v", err)
	}
	return raw
}
