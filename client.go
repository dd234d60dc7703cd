// Package gobucket is the client-side evaluation core of a feature-flag and
// experimentation SDK. A Client holds a locally cached set of feature and
// experiment definitions plus the current user's attributes, and
// deterministically resolves feature values and A/B assignments. Bucketing is
// bit-for-bit compatible with the sibling SDKs in other languages: the same
// user sees the same variation no matter which client evaluates them.
//
// Fetching definitions, on-disk caching and transport are collaborators, not
// part of this package; they hand the Client already-parsed payloads through
// OnFetched and OnFetchFailed. See the fetch and filedata packages.
package gobucket

import (
	"sync"
	"sync/atomic"

	"github.com/TimurManjosov/gobucket/internal/telemetry"
)

// state is one immutable evaluation snapshot. Every evaluation loads exactly
// one state pointer and reads only from it, so a concurrent definitions
// refresh can never produce a torn read mixing pre- and post-refresh data.
// All mutation is copy-on-write followed by a single pointer swap.
type state struct {
	features   FeatureSet
	overrides  OverrideSet
	attributes map[string]any
	forced     map[string]int
	source     VariationSource
	enabled    bool
	qaMode     bool
	etag       string
}

// Client is one SDK instance. Instances are independent: a process may hold
// several (for example one per tenant) with no shared state between them.
// All methods are safe for concurrent use.
type Client struct {
	current atomic.Pointer[state]

	// writeMu serializes copy-on-write updates; readers never take it.
	writeMu sync.Mutex

	track      TrackingCallback
	conditions ConditionEvaluator
	apiKey     string

	listenerMu sync.Mutex
	listeners  map[int]func(ok bool)
	nextID     int
}

// New creates a Client with an empty definition set. Definitions arrive later
// through OnFetched (or SetDefinitions in tests and tools).
func New(opts ...Option) *Client {
	c := &Client{listeners: make(map[int]func(ok bool))}
	s := &state{
		features:   FeatureSet{},
		overrides:  OverrideSet{},
		attributes: map[string]any{},
		forced:     map[string]int{},
		enabled:    true,
	}
	for _, opt := range opts {
		opt(c, s)
	}
	c.current.Store(s)
	return c
}

// Features returns the feature set of the current snapshot.
func (c *Client) Features() FeatureSet {
	return c.current.Load().features
}

// Overrides returns the experiment override set of the current snapshot.
func (c *Client) Overrides() OverrideSet {
	return c.current.Load().overrides
}

// ETag returns the validator of the currently loaded definitions, or "" when
// none have been loaded yet.
func (c *Client) ETag() string {
	return c.current.Load().etag
}

// mutate applies fn to a copy of the current state and swaps it in. The swap
// is a single pointer store: in-flight evaluations keep the snapshot they
// already loaded.
func (c *Client) mutate(fn func(next *state)) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	next := *c.current.Load()
	fn(&next)
	c.current.Store(&next)
}

// SetDefinitions replaces the feature and override sets wholesale.
func (c *Client) SetDefinitions(defs *Definitions) {
	c.mutate(func(next *state) {
		next.features = defs.Features
		next.overrides = defs.Overrides
		next.etag = defs.ETag
	})
}

// SetAttributes replaces the user attribute map.
func (c *Client) SetAttributes(attributes map[string]any) {
	c.mutate(func(next *state) { next.attributes = attributes })
}

// SetForcedVariations replaces the forced-variation map.
func (c *Client) SetForcedVariations(forced map[string]int) {
	c.mutate(func(next *state) { next.forced = forced })
}

// SetEnabled toggles evaluation. A disabled client reports every experiment
// as not-in-experiment.
func (c *Client) SetEnabled(enabled bool) {
	c.mutate(func(next *state) { next.enabled = enabled })
}

// SetQAMode toggles QA mode: bucketing still runs but users are reported as
// not in the experiment and exposure tracking is suppressed.
func (c *Client) SetQAMode(qaMode bool) {
	c.mutate(func(next *state) { next.qaMode = qaMode })
}

// APIKey returns the key the fetch collaborator should authenticate with.
func (c *Client) APIKey() string { return c.apiKey }

// OnFetched is the definitions-refresh entry point. It parses the payload,
// atomically replaces the snapshot's feature and override sets, and, for
// remotely sourced refreshes, notifies registered refresh handlers. Cache
// reads (isRemote=false) replace the snapshot silently. A parse failure
// leaves the current snapshot untouched.
func (c *Client) OnFetched(data []byte, isRemote bool) error {
	defs, err := ParseDefinitions(data)
	if err != nil {
		if isRemote {
			c.notifyRefresh(false)
		}
		return err
	}
	c.SetDefinitions(defs)
	telemetry.DefinitionUpdates.Inc()
	if isRemote {
		c.notifyRefresh(true)
	}
	return nil
}

// OnFetchFailed reports a failed refresh. Remote failures reach refresh
// handlers; cache misses are silent and the current snapshot stays
// authoritative.
func (c *Client) OnFetchFailed(err error, isRemote bool) {
	if isRemote {
		c.notifyRefresh(false)
	}
}

// OnRefresh registers a handler invoked with true after every successful
// remote definitions replacement and false after every remote failure. The
// returned function unregisters it.
func (c *Client) OnRefresh(fn func(ok bool)) func() {
	c.listenerMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenerMu.Unlock()
	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

// notifyRefresh snapshots the handler list under the lock, then invokes the
// handlers without holding it: handlers are caller-supplied and may block or
// re-enter the SDK.
func (c *Client) notifyRefresh(ok bool) {
	c.listenerMu.Lock()
	handlers := make([]func(ok bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		handlers = append(handlers, fn)
	}
	c.listenerMu.Unlock()
	for _, fn := range handlers {
		fn(ok)
	}
}
