package restclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Transport sends requests built by the client. Timeouts, retries and
// connection reuse are its business.
type Transport interface {
	// Send blocks until the response is read or sending fails.
	Send(ctx context.Context, req *Request) (*Envelope, error)

	// SendAsync returns at once. The future is completed by the transport.
	SendAsync(ctx context.Context, req *Request) *Future[*Envelope]
}

// HttpClient is the subset of *http.Client used by HTTPTransport.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

const defaultMaxBody = 10 * 1024 * 1024

// HTTPTransport implements Transport on top of an HttpClient.
type HTTPTransport struct {
	Client HttpClient

	// MaxBody limits the size of response bodies. Zero means 10 MiB.
	MaxBody int64
}

// NewHTTPTransport returns a transport which does not follow redirects,
// so that 3xx responses reach the status handlers.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		Client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (t *HTTPTransport) newHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		request.Header[k] = append([]string(nil), vs...)
	}
	if req.Body != nil {
		body := bytes.NewReader(req.Body)
		snapshot := *body
		request.ContentLength = int64(len(req.Body))
		request.Body = io.NopCloser(body)
		request.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	}
	return request, nil
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Envelope, error) {
	request, err := t.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := t.Client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	maxBody := t.MaxBody
	if maxBody == 0 {
		maxBody = defaultMaxBody
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Envelope{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       string(body),
	}, nil
}

// SendAsync runs Send on a new goroutine.
func (t *HTTPTransport) SendAsync(ctx context.Context, req *Request) *Future[*Envelope] {
	f := NewFuture[*Envelope]()
	go func() {
		f.Complete(t.Send(ctx, req))
	}()
	return f
}

func (t *HTTPTransport) Close() error {
	t.Client.CloseIdleConnections()

	if closer, ok := t.Client.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}

	return nil
}
