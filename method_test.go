package restclient

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	rcerrors "github.com/starius/restclient/errors"
)

func TestResolveVerb(t *testing.T) {
	cases := []struct {
		name    string
		verbs   []Verb
		want    string
		wantErr string
	}{
		{
			name:  "single",
			verbs: []Verb{GET("/books")},
			want:  "GET",
		},
		{
			name:    "none",
			wantErr: "no verb declared",
		},
		{
			name:    "ambiguous",
			verbs:   []Verb{GET("/books"), POST("/books")},
			wantErr: "ambiguous verb, found GET, POST",
		},
		{
			name:    "unsupported",
			verbs:   []Verb{{Method: "PATCH", Path: "/books"}},
			wantErr: `unsupported verb "PATCH"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verb, err := resolveVerb(&Method{Name: "GetBooks", Verbs: tc.verbs})
			if tc.wantErr != "" {
				require.Error(t, err)
				require.True(t, rcerrors.IsConfig(err))
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, verb.Method)
		})
	}
}

func TestCompileMethod(t *testing.T) {
	desc, err := compileMethod(Method{
		Name:   "GetBook",
		Verbs:  []Verb{GET("/book/{id}")},
		Params: []Param{Path("id"), Query("lang")},
	})
	require.NoError(t, err)
	require.Equal(t, "GET", desc.verb)
	require.Equal(t, ContentJSON, desc.contentType)
	require.Equal(t, []string{"id"}, desc.pathKeys)

	desc, err = compileMethod(Method{
		Name:   "CreateBook",
		Verbs:  []Verb{POST("/book", ContentForm)},
		Params: []Param{Field("title")},
	})
	require.NoError(t, err)
	require.Equal(t, ContentForm, desc.contentType)
}

func TestCompileMethodErrors(t *testing.T) {
	cases := []struct {
		name    string
		method  Method
		wantErr string
	}{
		{
			name:    "no name",
			method:  Method{Verbs: []Verb{GET("/")}},
			wantErr: "malformed declaration",
		},
		{
			name:    "query without key",
			method:  Method{Name: "M", Verbs: []Verb{GET("/")}, Params: []Param{{Role: RoleQuery}}},
			wantErr: "malformed declaration",
		},
		{
			name:    "unknown role",
			method:  Method{Name: "M", Verbs: []Verb{GET("/")}, Params: []Param{{Role: "cookie", Key: "a"}}},
			wantErr: "malformed declaration",
		},
		{
			name:    "body with key",
			method:  Method{Name: "M", Verbs: []Verb{POST("/")}, Params: []Param{{Role: RoleBody, Key: "x"}}},
			wantErr: "takes no key",
		},
		{
			name:    "undeclared path key",
			method:  Method{Name: "M", Verbs: []Verb{GET("/book/{id}")}},
			wantErr: "uses {id}",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileMethod(tc.method)
			require.Error(t, err)
			require.True(t, rcerrors.IsConfig(err))
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

type testBook struct {
	Name string `json:"name"`
}

func TestBindFuncShapes(t *testing.T) {
	cases := []struct {
		name        string
		fn          interface{}
		wantShape   shape
		wantContext bool
		wantResult  reflect.Type
	}{
		{
			name:      "none",
			fn:        func(string) error { return nil },
			wantShape: shapeNone,
		},
		{
			name:        "value with context",
			fn:          func(context.Context, string) (testBook, error) { return testBook{}, nil },
			wantShape:   shapeValue,
			wantContext: true,
			wantResult:  reflect.TypeOf(testBook{}),
		},
		{
			name:       "wrapped",
			fn:         func(string) (*Response[[]testBook], error) { return nil, nil },
			wantShape:  shapeWrapped,
			wantResult: reflect.TypeOf([]testBook{}),
		},
		{
			name:       "future",
			fn:         func(string) (*Future[*testBook], error) { return nil, nil },
			wantShape:  shapeFuture,
			wantResult: reflect.TypeOf(&testBook{}),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desc, err := compileMethod(Method{Name: "M", Verbs: []Verb{GET("/")}, Params: []Param{Query("q")}})
			require.NoError(t, err)
			require.NoError(t, desc.bindFunc(reflect.TypeOf(tc.fn)))
			require.Equal(t, tc.wantShape, desc.shape)
			require.Equal(t, tc.wantContext, desc.hasContext)
			require.Equal(t, tc.wantResult, desc.resultType)
		})
	}
}

func TestBindFuncErrors(t *testing.T) {
	cases := []struct {
		name   string
		params []Param
		fn     interface{}
	}{
		{"argument count", []Param{Query("q")}, func(string, string) error { return nil }},
		{"variadic", []Param{Query("q")}, func(...string) error { return nil }},
		{"no error", []Param{Query("q")}, func(string) string { return "" }},
		{"second not error", []Param{Query("q")}, func(string) (string, string) { return "", "" }},
		{"three results", []Param{Query("q")}, func(string) (string, string, error) { return "", "", nil }},
		{"part not Part", []Param{PartParam("file")}, func(string) error { return nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			desc, err := compileMethod(Method{Name: "M", Verbs: []Verb{POST("/", ContentMultipart)}, Params: tc.params})
			require.NoError(t, err)
			err = desc.bindFunc(reflect.TypeOf(tc.fn))
			require.Error(t, err)
			require.True(t, rcerrors.IsConfig(err))
		})
	}
}
