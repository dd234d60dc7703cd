// Package fetch is the remote refresh collaborator: it polls a definitions
// endpoint on a schedule and feeds the payloads to the SDK client. The client
// only ever sees the Sink interface; transport, retries and the local cache
// file live entirely here.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Sink consumes definition payloads. Successful payloads arrive through
// OnFetched with isRemote=true for network results and false for cache
// restores; failures mirror that split through OnFetchFailed.
type Sink interface {
	OnFetched(data []byte, isRemote bool) error
	OnFetchFailed(err error, isRemote bool)
}

// Options configures a Poller.
type Options struct {
	URL       string        // definitions endpoint base URL
	APIKey    string        // bearer key, empty for unauthenticated endpoints
	Interval  time.Duration // poll interval, defaults to one minute
	CacheFile string        // local cache path, empty disables caching
	Client    *http.Client  // defaults to a 30s-timeout client
	MaxTries  uint          // retry attempts per poll, defaults to 3
}

// Poller periodically fetches definitions and delivers them to the sink.
type Poller struct {
	sink       Sink
	url        string
	apiKey     string
	interval   time.Duration
	cacheFile  string
	client     *http.Client
	maxTries   uint
	instanceID string

	etag string // last seen validator; worker-goroutine only

	done   chan struct{}
	wg     sync.WaitGroup
	closed int32
}

// errNotModified marks a 304 response inside a poll cycle.
var errNotModified = errors.New("definitions not modified")

// New creates a Poller. Call Start to begin polling and Close to stop.
func New(sink Sink, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 3
	}
	return &Poller{
		sink:       sink,
		url:        opts.URL,
		apiKey:     opts.APIKey,
		interval:   opts.Interval,
		cacheFile:  opts.CacheFile,
		client:     opts.Client,
		maxTries:   opts.MaxTries,
		instanceID: uuid.NewString(),
		done:       make(chan struct{}),
	}
}

// Start restores the cache file (if any), performs an immediate poll, then
// polls on the configured interval until Close.
func (p *Poller) Start() {
	p.restoreCache()
	p.wg.Add(1)
	go p.worker()
}

// Close stops polling and waits for the in-flight poll to finish. Safe to
// call more than once.
func (p *Poller) Close() {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

func (p *Poller) worker() {
	defer p.wg.Done()

	p.poll()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll fetches once with retry and routes the outcome to the sink.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	data, err := backoff.Retry(ctx, p.fetchOnce,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(p.maxTries),
	)
	if errors.Is(err, errNotModified) {
		return
	}
	if err != nil {
		p.sink.OnFetchFailed(err, true)
		return
	}

	if err := p.sink.OnFetched(data, true); err != nil {
		// Parse failures already reached the sink's failure path; nothing to
		// cache from a bad payload.
		return
	}
	p.writeCache(data)
}

func (p *Poller) fetchOnce() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, p.url+"/v1/definitions", nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	if p.etag != "" {
		req.Header.Set("If-None-Match", p.etag)
	}
	req.Header.Set("X-Instance-Id", p.instanceID)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch definitions: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, backoff.Permanent(errNotModified)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch definitions: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	p.etag = resp.Header.Get("ETag")
	return body, nil
}

// cacheEnvelope wraps the cached payload with an integrity checksum so a
// truncated or corrupted file is detected instead of fed to the client.
type cacheEnvelope struct {
	Checksum uint64          `json:"checksum"`
	Payload  json.RawMessage `json:"payload"`
}

func (p *Poller) restoreCache() {
	if p.cacheFile == "" {
		return
	}
	raw, err := os.ReadFile(p.cacheFile)
	if err != nil {
		// Missing cache is the normal first-run state; stay silent.
		return
	}
	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		p.sink.OnFetchFailed(fmt.Errorf("decode cache: %w", err), false)
		return
	}
	if xxhash.Sum64(env.Payload) != env.Checksum {
		p.sink.OnFetchFailed(errors.New("cache checksum mismatch"), false)
		return
	}
	_ = p.sink.OnFetched(env.Payload, false)
}

func (p *Poller) writeCache(data []byte) {
	if p.cacheFile == "" {
		return
	}
	env := cacheEnvelope{Checksum: xxhash.Sum64(data), Payload: data}
	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("cache encode: %v", err)
		return
	}
	tmp := p.cacheFile + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		log.Printf("cache write: %v", err)
		return
	}
	if err := os.Rename(tmp, p.cacheFile); err != nil {
		log.Printf("cache rename: %v", err)
	}
}
