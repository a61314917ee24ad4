package example

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/starius/restclient"
)

// BookAPI is the client side of the book server.
type BookAPI struct {
	ListBooks      func(ctx context.Context, filter *BookFilter) ([]Book, error)
	GetBook        func(ctx context.Context, id string) (*restclient.Response[Book], error)
	GetBookAsync   func(ctx context.Context, id string) (*restclient.Future[Book], error)
	CreateBook     func(ctx context.Context, token string, book Book) (Book, error)
	CreateBookForm func(ctx context.Context, title, author string, year int) (Book, error)
	UpdateBook     func(ctx context.Context, id string, book Book) (Book, error)
	DeleteBook     func(ctx context.Context, id string) error
	UploadCover    func(ctx context.Context, id string, cover restclient.Part) (CoverInfo, error)
	Since          func(ctx context.Context, t *timestamppb.Timestamp) (*durationpb.Duration, error)
}

var BookMethods = []restclient.Method{
	{
		Name:   "ListBooks",
		Verbs:  []restclient.Verb{restclient.GET("/books")},
		Params: []restclient.Param{restclient.QueryMap()},
	},
	{
		Name:   "GetBook",
		Verbs:  []restclient.Verb{restclient.GET("/book/{id}")},
		Params: []restclient.Param{restclient.Path("id")},
	},
	{
		Name:   "GetBookAsync",
		Verbs:  []restclient.Verb{restclient.GET("/book/{id}")},
		Params: []restclient.Param{restclient.Path("id")},
	},
	{
		Name:   "CreateBook",
		Verbs:  []restclient.Verb{restclient.POST("/book")},
		Params: []restclient.Param{restclient.Header("X-Token"), restclient.Body()},
	},
	{
		Name:   "CreateBookForm",
		Verbs:  []restclient.Verb{restclient.POST("/book/form", restclient.ContentForm)},
		Params: []restclient.Param{restclient.Field("title"), restclient.Field("author"), restclient.Field("year")},
	},
	{
		Name:   "UpdateBook",
		Verbs:  []restclient.Verb{restclient.PUT("/book/{id}")},
		Params: []restclient.Param{restclient.Path("id"), restclient.Body()},
	},
	{
		Name:   "DeleteBook",
		Verbs:  []restclient.Verb{restclient.DELETE("/book/{id}")},
		Params: []restclient.Param{restclient.Path("id")},
	},
	{
		Name:   "UploadCover",
		Verbs:  []restclient.Verb{restclient.PUT("/book/{id}/cover", restclient.ContentMultipart)},
		Params: []restclient.Param{restclient.Path("id"), restclient.PartParam("cover")},
	},
	{
		Name:   "Since",
		Verbs:  []restclient.Verb{restclient.POST("/since")},
		Params: []restclient.Param{restclient.Body()},
	},
}

// NewBookClient returns a bound BookAPI. Protobuf bodies are sent as
// protojson, everything else as JSON.
func NewBookClient(baseURL string, opts ...restclient.Option) (*BookAPI, *restclient.Client, error) {
	codec := &restclient.ProtoJSONCodec{}
	opts = append([]restclient.Option{
		restclient.WithEncoder(codec),
		restclient.WithDecoder(codec),
	}, opts...)
	return restclient.New[BookAPI](BookMethods, baseURL, opts...)
}

// ExportAPI downloads the catalog as CSV.
type ExportAPI struct {
	ExportBooks func(ctx context.Context, author string) ([][]string, error)
}

//go:embed export.yaml
var exportYAML []byte

func ExportMethods() ([]restclient.Method, error) {
	return restclient.LoadMethods(bytes.NewReader(exportYAML))
}

func NewExportClient(baseURL string, opts ...restclient.Option) (*ExportAPI, *restclient.Client, error) {
	methods, err := ExportMethods()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load export methods: %w", err)
	}
	opts = append([]restclient.Option{restclient.WithDecoder(restclient.CSVDecoder{})}, opts...)
	return restclient.New[ExportAPI](methods, baseURL, opts...)
}
