// Package closingclient provides an HttpClient whose Close aborts the
// requests in flight. Client.Close of restclient reaches it through
// HTTPTransport.Close, so pending futures fail at once.
package closingclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/starius/restclient"
)

var ErrClosing = errors.New("restclient is closing")

type ClosingClient struct {
	impl restclient.HttpClient

	mu       sync.Mutex
	closing  bool
	inflight map[uint64]context.CancelFunc
	nextKey  uint64

	wg sync.WaitGroup
}

func New(impl restclient.HttpClient) *ClosingClient {
	return &ClosingClient{
		impl:     impl,
		inflight: make(map[uint64]context.CancelFunc),
	}
}

func (c *ClosingClient) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())

	key, ok := c.track(cancel)
	if !ok {
		cancel()
		return nil, ErrClosing
	}
	defer c.untrack(key)

	return c.impl.Do(req.Clone(ctx))
}

// track registers cancel of a new request. The WaitGroup counter grows
// under mu together with the closing check, so Close never races with it.
func (c *ClosingClient) track(cancel context.CancelFunc) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return 0, false
	}
	c.wg.Add(1)
	key := c.nextKey
	c.nextKey++
	c.inflight[key] = cancel
	return key, true
}

func (c *ClosingClient) untrack(key uint64) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	c.wg.Done()
}

// Inflight returns the number of requests being sent.
func (c *ClosingClient) Inflight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

func (c *ClosingClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}

// Close cancels all requests in flight and waits for Do calls to return.
// Later calls of Do fail with ErrClosing.
func (c *ClosingClient) Close() error {
	c.mu.Lock()
	cancels := c.inflight
	c.inflight = map[uint64]context.CancelFunc{}
	c.closing = true
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	c.impl.CloseIdleConnections()
	c.wg.Wait()

	if closer, ok := c.impl.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
