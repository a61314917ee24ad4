package restclient

import (
	"net/url"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// pipes is an integer encoded as a number of "|".
type pipes int

func (p pipes) MarshalText() ([]byte, error) {
	text := make([]byte, int(p))
	for i := range text {
		text[i] = '|'
	}
	return text, nil
}

func argValues(args ...interface{}) []reflect.Value {
	values := make([]reflect.Value, len(args))
	for i, arg := range args {
		values[i] = reflect.ValueOf(arg)
	}
	return values
}

func TestExtractStringsOverwrite(t *testing.T) {
	params := []Param{Path("id"), Path("id"), Query("id")}
	got, err := extractStrings(params, argValues("first", "second", "query"), RolePath)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"id": "second"}, got)
}

func TestExtractValues(t *testing.T) {
	var missing *string
	params := []Param{Query("page"), Query("lang"), Query("mark"), Query("skip"), Field("title")}
	got, err := extractValues(params, argValues(2, "en", pipes(3), missing, "War"), RoleQuery, RoleQueryMap)
	require.NoError(t, err)
	require.Equal(t, url.Values{
		"page": {"2"},
		"lang": {"en"},
		"mark": {"|||"},
	}, got)
}

type bookFilter struct {
	Author string   `schema:"author"`
	Tags   []string `schema:"tag"`
	Year   int      `schema:"year,omitempty"`
}

func TestExtractValuesMapRoles(t *testing.T) {
	params := []Param{Query("author"), QueryMap(), QueryMap()}
	args := argValues(
		"ignored",
		bookFilter{Author: "Tolstoy", Tags: []string{"novel", "war"}},
		map[string]string{"lang": "ru"},
	)
	got, err := extractValues(params, args, RoleQuery, RoleQueryMap)
	require.NoError(t, err)
	require.Equal(t, url.Values{
		"author": {"Tolstoy"},
		"tag":    {"novel", "war"},
		"lang":   {"ru"},
	}, got)
}

func TestExpandMap(t *testing.T) {
	got, err := expandMap(reflect.ValueOf(map[string][]string{"a": {"1", "2"}}))
	require.NoError(t, err)
	require.Equal(t, url.Values{"a": {"1", "2"}}, got)

	got, err = expandMap(reflect.ValueOf(&bookFilter{Author: "Gogol", Year: 1842}))
	require.NoError(t, err)
	require.Equal(t, "Gogol", got.Get("author"))
	require.Equal(t, "1842", got.Get("year"))

	_, err = expandMap(reflect.ValueOf(map[int]string{1: "a"}))
	require.Error(t, err)

	_, err = expandMap(reflect.ValueOf(42))
	require.Error(t, err)
}

func TestExtractHeaders(t *testing.T) {
	params := []Param{Header("X-Token"), HeaderMap()}
	got, err := extractHeaders(params, argValues("abc", map[string]string{"X-Trace": "t1"}))
	require.NoError(t, err)
	require.Equal(t, map[string]string{"X-Token": "abc", "X-Trace": "t1"}, got)
}

func TestExtractBodyLastWins(t *testing.T) {
	var nothing *testBook
	params := []Param{Body(), Query("q"), Body(), Body()}
	body, has := extractBody(params, argValues(testBook{Name: "a"}, "q", testBook{Name: "b"}, nothing))
	require.True(t, has)
	require.Equal(t, testBook{Name: "b"}, body)

	_, has = extractBody([]Param{Query("q")}, argValues("q"))
	require.False(t, has)
}

func TestExtractParts(t *testing.T) {
	part := BytesPart("a.txt", "text/plain", []byte("hello"))
	params := []Param{PartParam("file"), PartParam("other")}
	got := extractParts(params, []reflect.Value{reflect.ValueOf(&part).Elem(), reflect.Zero(partType)})
	require.Len(t, got, 1)
	require.Equal(t, "a.txt", got["file"].PartName())
}
