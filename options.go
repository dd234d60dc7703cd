package gobucket

// Option configures a Client at construction time.
type Option func(c *Client, s *state)

// WithAttributes sets the initial user attribute map.
func WithAttributes(attributes map[string]any) Option {
	return func(c *Client, s *state) { s.attributes = attributes }
}

// WithForcedVariations sets the initial forced-variation map (tracking key to
// variation index).
func WithForcedVariations(forced map[string]int) Option {
	return func(c *Client, s *state) { s.forced = forced }
}

// WithTrackingCallback sets the exposure tracking side effect.
func WithTrackingCallback(fn TrackingCallback) Option {
	return func(c *Client, s *state) { c.track = fn }
}

// WithConditionEvaluator plugs in a condition matcher. Without one, an
// experiment carrying a condition is never run and a rule carrying one is
// skipped.
func WithConditionEvaluator(ce ConditionEvaluator) Option {
	return func(c *Client, s *state) { c.conditions = ce }
}

// WithURL reads forced variations from the query string of rawURL, the usual
// QA-link mechanism in browser-adjacent hosts.
func WithURL(rawURL string) Option {
	return func(c *Client, s *state) { s.source = NewQuerySource(rawURL) }
}

// WithVariationSource plugs in a custom forced-variation source in place of
// the URL query string.
func WithVariationSource(src VariationSource) Option {
	return func(c *Client, s *state) { s.source = src }
}

// WithAPIKey records the key fetch collaborators authenticate with.
func WithAPIKey(key string) Option {
	return func(c *Client, s *state) { c.apiKey = key }
}

// WithQAMode starts the client in QA mode.
func WithQAMode(qaMode bool) Option {
	return func(c *Client, s *state) { s.qaMode = qaMode }
}

// WithEnabled starts the client enabled or disabled.
func WithEnabled(enabled bool) Option {
	return func(c *Client, s *state) { s.enabled = enabled }
}

// WithDefinitions seeds the client with an initial definitions payload,
// typically a cache restore performed before the first remote fetch.
func WithDefinitions(defs *Definitions) Option {
	return func(c *Client, s *state) {
		s.features = defs.Features
		s.overrides = defs.Overrides
		s.etag = defs.ETag
	}
}
