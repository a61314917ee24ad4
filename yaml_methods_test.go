package restclient

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/starius/restclient/errors"
)

const booksYAML = `
GetBook:
  get: /book/{id}
  params:
    - path: id
UpdateBook:
  put: /book/{id}
  params:
    - path: id
    - header: X-Token
    - body:
UploadCover:
  post: /book/{id}/cover
  content_type: multipart/form-data
  params:
    - path: id
    - part: cover
`

func TestLoadMethods(t *testing.T) {
	methods, err := LoadMethods(strings.NewReader(booksYAML))
	require.NoError(t, err)

	want := []Method{
		{Name: "GetBook", Verbs: []Verb{{Method: "GET", Path: "/book/{id}"}}, Params: []Param{Path("id")}},
		{Name: "UpdateBook", Verbs: []Verb{{Method: "PUT", Path: "/book/{id}"}}, Params: []Param{Path("id"), Header("X-Token"), Body()}},
		{Name: "UploadCover", Verbs: []Verb{{Method: "POST", Path: "/book/{id}/cover", ContentType: ContentMultipart}}, Params: []Param{Path("id"), PartParam("cover")}},
	}
	if diff := cmp.Diff(want, methods); diff != "" {
		t.Errorf("unexpected methods (-want +got):\n%s", diff)
	}

	_, err = NewClient(methods, "http://example.com")
	require.NoError(t, err)
}

func TestLoadMethodsAmbiguous(t *testing.T) {
	methods, err := LoadMethods(strings.NewReader("Broken:\n  get: /a\n  post: /a\n"))
	require.NoError(t, err)
	require.Len(t, methods[0].Verbs, 2)

	_, err = NewClient(methods, "http://example.com")
	require.True(t, rcerrors.IsConfig(err))
	require.Contains(t, err.Error(), "ambiguous verb")
}

func TestLoadMethodsErrors(t *testing.T) {
	for _, input := range []string{
		"GetBook:\n  patch: /a\n",
		"GetBook:\n  get: /a\n  params:\n    - cookie: a\n",
		"GetBook:\n  get: /a\n  params:\n    - query: a\n      path: b\n",
		"- not a map",
	} {
		_, err := LoadMethods(strings.NewReader(input))
		require.Error(t, err, input)
		require.True(t, rcerrors.IsConfig(err), input)
	}
}

func TestWriteMethodsRoundTrip(t *testing.T) {
	methods, err := LoadMethods(strings.NewReader(booksYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteMethods(&buf, methods))

	again, err := LoadMethods(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(methods, again); diff != "" {
		t.Errorf("round trip changed methods (-want +got):\n%s", diff)
	}

	err = WriteMethods(&buf, []Method{{Name: "Patch", Verbs: []Verb{{Method: "PATCH"}}}})
	require.Error(t, err)
}
