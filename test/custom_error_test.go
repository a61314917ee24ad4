package restclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starius/restclient"
	rcerrors "github.com/starius/restclient/errors"
	"github.com/starius/restclient/example"
)

// APIError is returned by the exception handler below.
type APIError struct {
	Cause error
}

func (e *APIError) Error() string {
	return "api call failed: " + e.Cause.Error()
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

func TestErrorBodies(t *testing.T) {
	server := newBookServer(t, nil)
	api := newBookClient(t, server.URL)

	res, err := api.GetBook(context.Background(), "missing")
	require.NoError(t, err)
	require.True(t, res.IsError())

	var errRes example.ErrorResponse
	require.NoError(t, res.DecodeRaw(&restclient.JSONCodec{}, &errRes))
	require.Equal(t, "no such book", errRes.Error)
}

func TestCustomExceptionHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/book/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "1", "title": `))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	var handled []error
	api := newBookClient(t, server.URL, restclient.WithExceptionHandler(func(err error) error {
		handled = append(handled, err)
		return &APIError{Cause: err}
	}))

	_, err := api.UpdateBook(context.Background(), "1", example.Book{Title: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.True(t, rcerrors.IsDecode(err))
	require.Len(t, handled, 1)

	// Wrapped results report decode failures of success bodies as well.
	_, err = api.GetBook(context.Background(), "1")
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, handled, 2)

	// A swallowing handler turns failures into zero values.
	quiet := newBookClient(t, server.URL, restclient.WithExceptionHandler(func(err error) error {
		return nil
	}))
	book, err := quiet.UpdateBook(context.Background(), "1", example.Book{Title: "x"})
	require.NoError(t, err)
	require.Equal(t, example.Book{}, book)
}
