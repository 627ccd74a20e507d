// Package httpclient provides pooled HTTP clients used for engine calls.
package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// Pool manages a pool of HTTP clients so concurrent engine calls reuse
// transports instead of building one per call.
type Pool struct {
	clients chan *http.Client
	factory func() *http.Client
	mu      sync.RWMutex
	closed  bool
}

// NewPool creates a new HTTP client pool
func NewPool(maxClients int, requestTimeout time.Duration) *Pool {
	pool := &Pool{
		clients: make(chan *http.Client, maxClients),
		factory: func() *http.Client { return newTunedClient(requestTimeout) },
	}

	// Pre-populate the pool
	for i := 0; i < maxClients; i++ {
		pool.clients <- pool.factory()
	}

	return pool
}

// newTunedClient creates an HTTP client with pooled keep-alive transport
func newTunedClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  false,
			DisableKeepAlives:   false,
		},
	}
}

// NewStreamingClient creates an HTTP client without an overall timeout, for
// requests whose response body is a long-lived stream. Cancellation is the
// caller's context's job.
func NewStreamingClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		},
	}
}

// Get retrieves an HTTP client from the pool
func (p *Pool) Get() *http.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return p.factory()
	}

	select {
	case client := <-p.clients:
		return client
	default:
		// Pool is empty, create a new client
		return p.factory()
	}
}

// Put returns an HTTP client to the pool
func (p *Pool) Put(client *http.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}

	select {
	case p.clients <- client:
	default:
		// Pool is full, discard the client
	}
}

// Close closes the pool and cleans up resources
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.clients)
}
