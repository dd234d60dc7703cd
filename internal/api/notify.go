package api

import "sync"

type subCh = chan string // carries new ETags

// notifier fans definition-change ETags out to SSE listeners.
type notifier struct {
	mu   sync.Mutex
	subs map[subCh]struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[subCh]struct{})}
}

// subscribe registers a listener and returns its channel and an unsubscribe func.
func (n *notifier) subscribe() (subCh, func()) {
	ch := make(subCh, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	unsub := func() {
		n.mu.Lock()
		delete(n.subs, ch)
		close(ch)
		n.mu.Unlock()
	}
	return ch, unsub
}

// publish notifies all listeners (non-blocking).
func (n *notifier) publish(etag string) {
	n.mu.Lock()
	for ch := range n.subs {
		select {
		case ch <- etag:
		default: // if client is slow, skip instead of blocking
		}
	}
	n.mu.Unlock()
}
