package debugclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/starius/restclient"
)

type Greeting struct {
	Text string `json:"text"`
}

type GreeterAPI struct {
	Hello func(name string, greeting Greeting) (Greeting, error)
}

var greeterMethods = []restclient.Method{
	{
		Name:   "Hello",
		Verbs:  []restclient.Verb{restclient.POST("/hello")},
		Params: []restclient.Param{restclient.Query("name"), restclient.Body()},
	},
}

func TestDebugClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(strings.Replace(string(body), "hi", "hi "+r.URL.Query().Get("name"), 1)))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	debugClient := New(http.DefaultClient, zap.New(core))

	api, client, err := restclient.New[GreeterAPI](greeterMethods, server.URL, restclient.CustomClient(debugClient))
	require.NoError(t, err)
	defer client.Close()

	res, err := api.Hello("Bob", Greeting{Text: "hi"})
	require.NoError(t, err)
	require.Equal(t, "hi Bob", res.Text)

	requests := logs.FilterMessage("client request").All()
	require.Len(t, requests, 1)
	curl := requests[0].ContextMap()["curl"].(string)
	require.Contains(t, curl, "curl -X 'POST'")
	require.Contains(t, curl, `-d '{"text":"hi"}'`)
	require.Contains(t, curl, "/hello?name=Bob")

	responses := logs.FilterMessage("server response").All()
	require.Len(t, responses, 1)
	fields := responses[0].ContextMap()
	require.Equal(t, int64(200), fields["status"])
	require.Contains(t, fields["dump"], `{"text":"hi Bob"}`)
}
