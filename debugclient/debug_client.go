// Package debugclient logs every request of a restclient as a curl command
// together with the dumped response.
package debugclient

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"sync/atomic"

	"go.uber.org/zap"
	"moul.io/http2curl"

	"github.com/starius/restclient"
)

type DebugClient struct {
	impl   restclient.HttpClient
	logger *zap.Logger
	n      uint64

	// DumpBodies includes response bodies into the log.
	DumpBodies bool
}

// New wraps impl. Pass the result to restclient.CustomClient.
func New(impl restclient.HttpClient, logger *zap.Logger) *DebugClient {
	return &DebugClient{
		impl:       impl,
		logger:     logger,
		DumpBodies: true,
	}
}

func (c *DebugClient) Do(req *http.Request) (*http.Response, error) {
	n := atomic.AddUint64(&c.n, 1)

	curl, err := http2curl.GetCurlCommand(req)
	if err != nil {
		return nil, fmt.Errorf("failed to render request %d as curl: %w", n, err)
	}
	c.logger.Debug("client request",
		zap.Uint64("n", n),
		zap.String("curl", curl.String()),
	)

	res, err := c.impl.Do(req)
	if err != nil {
		c.logger.Debug("client request failed", zap.Uint64("n", n), zap.Error(err))
		return nil, err
	}

	resDump, err := httputil.DumpResponse(res, c.DumpBodies)
	if err != nil {
		return nil, fmt.Errorf("failed to dump response %d: %w", n, err)
	}
	c.logger.Debug("server response",
		zap.Uint64("n", n),
		zap.Int("status", res.StatusCode),
		zap.ByteString("dump", resDump),
	)

	return res, nil
}

func (c *DebugClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}
