package metricsclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starius/restclient"
)

type ItemAPI struct {
	GetItem    func(id string) (*restclient.Response[map[string]string], error)
	DeleteItem func(id string) error
}

var itemMethods = []restclient.Method{
	{Name: "GetItem", Verbs: []restclient.Verb{restclient.GET("/item/{id}")}, Params: []restclient.Param{restclient.Path("id")}},
	{Name: "DeleteItem", Verbs: []restclient.Verb{restclient.DELETE("/item/{id}")}, Params: []restclient.Param{restclient.Path("id")}},
}

func TestMetricsClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/item/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/item/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":"1"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	registry := prometheus.NewRegistry()
	mc := New(http.DefaultClient, registry, "books")

	api, _, err := restclient.New[ItemAPI](itemMethods, server.URL, restclient.CustomClient(mc))
	require.NoError(t, err)

	res, err := api.GetItem("1")
	require.NoError(t, err)
	assert.Equal(t, "1", res.Value()["id"])

	res, err = api.GetItem("missing")
	require.NoError(t, err)
	assert.True(t, res.IsError())

	require.NoError(t, api.DeleteItem("1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(mc.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.requests.WithLabelValues("GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.requests.WithLabelValues("DELETE", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(mc.inflight))
	assert.Equal(t, 2, testutil.CollectAndCount(mc.duration))

	metrics, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.GetName())
	}
	assert.Contains(t, names, "books_client_requests_total")
	assert.Contains(t, names, "books_client_request_duration_seconds")
}
