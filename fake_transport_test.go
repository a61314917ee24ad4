package restclient

import (
	"context"
	"sync"
)

// fakeTransport records requests and answers with a canned envelope.
type fakeTransport struct {
	mu       sync.Mutex
	requests []*Request

	status int
	body   string
	err    error
}

func (f *fakeTransport) respond(req *Request) (*Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return &Envelope{StatusCode: status, Body: f.body}, nil
}

func (f *fakeTransport) Send(ctx context.Context, req *Request) (*Envelope, error) {
	return f.respond(req)
}

func (f *fakeTransport) SendAsync(ctx context.Context, req *Request) *Future[*Envelope] {
	future := NewFuture[*Envelope]()
	go func() {
		future.Complete(f.respond(req))
	}()
	return future
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) last() *Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}
