/*
Package restclient builds HTTP clients from declarations of remote methods.

How to use this package. Describe the remote API as a Go struct whose
exported fields are functions. Each field is one remote method:

	type BookAPI struct {
		GetBook    func(ctx context.Context, id string) (Book, error)
		ListBooks  func(ctx context.Context, filter *BookFilter) ([]Book, error)
		CreateBook func(ctx context.Context, token string, book Book) (*restclient.Response[Book], error)
		Preload    func(ctx context.Context, id string) (*restclient.Future[Book], error)
		DeleteBook func(ctx context.Context, id string) error
	}

The leading context.Context is optional. The results select how the
response is returned:

	error                    the body is ignored
	(T, error)               the body is decoded into T
	(*Response[T], error)    decoded value plus raw status and body
	(*Future[T], error)      the call returns at once, Future completes later

A status code >= 300 is not an error by itself. For (T, error) the zero
value is returned, for *Response[T] IsError reports it and Raw keeps the
body verbatim. Futures decode the body whatever the status.

Then write the table of methods. A method has exactly one verb and one
Param per function argument (not counting the context), in the same order:

	var BookMethods = []restclient.Method{
		{
			Name:   "GetBook",
			Verbs:  []restclient.Verb{restclient.GET("/book/{id}")},
			Params: []restclient.Param{restclient.Path("id")},
		},
		{
			Name:   "ListBooks",
			Verbs:  []restclient.Verb{restclient.GET("/books")},
			Params: []restclient.Param{restclient.QueryMap()},
		},
		{
			Name:   "CreateBook",
			Verbs:  []restclient.Verb{restclient.POST("/book")},
			Params: []restclient.Param{restclient.Header("X-Token"), restclient.Body()},
		},
		...
	}

Roles of parameters:

	Query(key)    query parameter
	Path(key)     replaces {key} in the path template
	Header(key)   request header, overrides client headers of the same name
	Body()        encoded with the client Encoder (JSON by default)
	Field(key)    field of application/x-www-form-urlencoded body
	PartParam(key) file of multipart/form-data body, must implement Part
	QueryMap(), FieldMap(), HeaderMap()
	              struct (gorilla/schema tags) or string map expanded
	              into several values

Values of query, path, header and field parameters are encoded with
encoding.TextMarshaler if implemented and fmt.Sprint otherwise. Nil
arguments are left out of the request. Later parameters with the same key
overwrite earlier ones. GET and DELETE requests never carry a body.

The same table can be written in YAML and read with LoadMethods:

	GetBook:
	  get: /book/{id}
	  params:
	    - path: id

Now create the client and bind the struct:

	api, client, err := restclient.New[BookAPI](BookMethods, "http://127.0.0.1:8080",
		restclient.WithHeaderFunc("Authorization", signer.Bearer),
		restclient.WithStatusHandler(restclient.IsError, restclient.LogStatusHandler(logger)),
	)
	if err != nil {
		panic(err)
	}
	defer client.Close()

	book, err := api.GetBook(ctx, "42")

All declarations are checked by New: a method with no verb or with more
than one verb, a path template using an undeclared key or a function type
not matching the params is a configuration error, and nothing is sent.

Transport and decode failures of synchronous calls go to the exception
handler (WithExceptionHandler). The default one returns them as
*errors.ClientError; a handler returning nil makes the call return the
zero value. Status handlers run for synchronous calls only.

Requests are sent by a Transport. The default one, HTTPTransport, wraps an
HttpClient which may be replaced with CustomClient, e.g. with the clients
from packages debugclient (curl logging), closingclient (Close aborts
calls in flight) or metricsclient (Prometheus metrics).

Client.OpenAPI describes the bound methods as an OpenAPI 3 document.
*/
package restclient
