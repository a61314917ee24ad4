package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starius/restclient"
	rcerrors "github.com/starius/restclient/errors"
)

type WhoAmIAPI struct {
	WhoAmI func() (string, error)
}

var whoAmIMethods = []restclient.Method{
	{Name: "WhoAmI", Verbs: []restclient.Verb{restclient.GET("/whoami")}},
}

func TestSignerToken(t *testing.T) {
	secret := []byte("communication secret")
	issued := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	signer := &Signer{
		Secret:   secret,
		Subject:  "alice",
		Lifetime: time.Hour,
		Now:      func() time.Time { return issued },
	}

	_, err := signer.Token()
	require.NoError(t, err)

	signer.Now = nil
	token, err := signer.Token()
	require.NoError(t, err)
	claims, err := Verify(token, secret)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)

	_, err = Verify(token, []byte("other secret"))
	require.Error(t, err)

	_, err = (&Signer{}).Token()
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestBearerPerCall(t *testing.T) {
	secret := []byte("communication secret")

	var mu sync.Mutex
	var tokens []string
	mux := http.NewServeMux()
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(HttpHeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "no token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := Verify(token, secret)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		mu.Lock()
		tokens = append(tokens, token)
		mu.Unlock()
		w.Write([]byte(`"` + claims.Subject + `"`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	var tick int64
	signer := &Signer{
		Secret:  secret,
		Subject: "bob",
		Now: func() time.Time {
			tick++
			return time.Now().Add(time.Duration(tick) * time.Second)
		},
	}
	api, _, err := restclient.New[WhoAmIAPI](whoAmIMethods, server.URL, signer.Option())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		name, err := api.WhoAmI()
		require.NoError(t, err)
		require.Equal(t, "bob", name)
	}
	require.Len(t, tokens, 2)
	require.NotEqual(t, tokens[0], tokens[1])

	broken, _, err := restclient.New[WhoAmIAPI](whoAmIMethods, server.URL, (&Signer{}).Option())
	require.NoError(t, err)
	_, err = broken.WhoAmI()
	require.ErrorIs(t, err, ErrEmptySecret)
	kind, ok := rcerrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, rcerrors.KindRequest, kind)
}
