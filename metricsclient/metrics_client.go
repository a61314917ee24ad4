// Package metricsclient counts requests of a restclient in Prometheus.
package metricsclient

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/starius/restclient"
)

type MetricsClient struct {
	impl restclient.HttpClient

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// New wraps impl and registers the collectors in registerer
// (prometheus.DefaultRegisterer if nil). namespace prefixes metric names.
func New(impl restclient.HttpClient, registerer prometheus.Registerer, namespace string) *MetricsClient {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &MetricsClient{
		impl: impl,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total number of requests by HTTP method and status code",
			},
			[]string{"method", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Duration of requests in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		inflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "client_requests_inflight",
				Help:      "Current number of requests being sent",
			},
		),
	}
}

func (c *MetricsClient) Do(req *http.Request) (*http.Response, error) {
	c.inflight.Inc()
	defer c.inflight.Dec()

	t1 := time.Now()
	res, err := c.impl.Do(req)
	c.duration.WithLabelValues(req.Method).Observe(time.Since(t1).Seconds())

	status := "error"
	if err == nil {
		status = strconv.Itoa(res.StatusCode)
	}
	c.requests.WithLabelValues(req.Method, status).Inc()

	return res, err
}

func (c *MetricsClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}
