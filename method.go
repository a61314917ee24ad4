package restclient

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	rcerrors "github.com/starius/restclient/errors"
)

// Content types recognized by the request builder.
const (
	ContentJSON      = "application/json"
	ContentText      = "text/plain"
	ContentMultipart = "multipart/form-data"
	ContentForm      = "application/x-www-form-urlencoded"
)

// Role is the slot a call argument fills in the request.
type Role string

const (
	RoleQuery  Role = "query"
	RolePath   Role = "path"
	RoleHeader Role = "header"
	RoleBody   Role = "body"
	RoleField  Role = "field"
	RolePart   Role = "part"

	// Map roles expand a struct (gorilla/schema tags) or a string map
	// into several query parameters, form fields or headers.
	RoleQueryMap  Role = "querymap"
	RoleFieldMap  Role = "fieldmap"
	RoleHeaderMap Role = "headermap"
)

func (r Role) keyless() bool {
	switch r {
	case RoleBody, RoleQueryMap, RoleFieldMap, RoleHeaderMap:
		return true
	}
	return false
}

// Verb binds a method to an HTTP method and a path template.
// Use GET, POST, PUT and DELETE to create one.
type Verb struct {
	Method string `validate:"required"`

	// Path template, e.g. "/book/{id}". Every {key} must be provided by
	// a path parameter.
	Path string

	// ContentType of the request body. Defaults to ContentJSON.
	ContentType string
}

func GET(path string, contentType ...string) Verb {
	return newVerb(http.MethodGet, path, contentType)
}

func POST(path string, contentType ...string) Verb {
	return newVerb(http.MethodPost, path, contentType)
}

func PUT(path string, contentType ...string) Verb {
	return newVerb(http.MethodPut, path, contentType)
}

func DELETE(path string, contentType ...string) Verb {
	return newVerb(http.MethodDelete, path, contentType)
}

func newVerb(method, path string, contentType []string) Verb {
	v := Verb{Method: method, Path: path}
	if len(contentType) != 0 {
		v.ContentType = contentType[0]
	}
	return v
}

// Param declares the role of one argument of the method's function.
// Params are listed in the order of the function's arguments, not counting
// the optional leading context.Context.
type Param struct {
	Role Role   `validate:"oneof=query path header body field part querymap fieldmap headermap"`
	Key  string `validate:"required_if=Role query,required_if=Role path,required_if=Role header,required_if=Role field,required_if=Role part"`
}

func Query(key string) Param  { return Param{Role: RoleQuery, Key: key} }
func Path(key string) Param   { return Param{Role: RolePath, Key: key} }
func Header(key string) Param { return Param{Role: RoleHeader, Key: key} }
func Field(key string) Param  { return Param{Role: RoleField, Key: key} }
func PartParam(key string) Param {
	return Param{Role: RolePart, Key: key}
}
func Body() Param      { return Param{Role: RoleBody} }
func QueryMap() Param  { return Param{Role: RoleQueryMap} }
func FieldMap() Param  { return Param{Role: RoleFieldMap} }
func HeaderMap() Param { return Param{Role: RoleHeaderMap} }

// Method describes one endpoint of the remote API. Name must match the
// name of a function-typed field of the struct passed to Client.Bind.
type Method struct {
	Name   string  `validate:"required"`
	Verbs  []Verb  `validate:"dive"`
	Params []Param `validate:"dive"`
}

type shape int

const (
	shapeNone shape = iota
	shapeValue
	shapeWrapped
	shapeFuture
)

func (s shape) String() string {
	switch s {
	case shapeValue:
		return "value"
	case shapeWrapped:
		return "wrapped"
	case shapeFuture:
		return "future"
	default:
		return "none"
	}
}

// descriptor is a compiled Method. It is immutable and shared by all calls.
type descriptor struct {
	name        string
	verb        string
	path        string
	contentType string
	params      []Param
	pathKeys    []string

	// Filled by bind, from the function type.
	funcType   reflect.Type
	hasContext bool
	shape      shape
	// Type decoded from the response body: T of (T, error),
	// *Response[T] or *Future[T]. Nil for shapeNone.
	resultType reflect.Type
	// Declared first result type, e.g. *Response[Book].
	outType reflect.Type
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	wrapperType = reflect.TypeOf((*wrapper)(nil)).Elem()
	pendingType = reflect.TypeOf((*pending)(nil)).Elem()

	methodValidator = validator.New()
)

var knownVerbs = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// resolveVerb returns the only verb of the method.
func resolveVerb(m *Method) (Verb, error) {
	seen := make(map[string]bool, len(m.Verbs))
	for _, v := range m.Verbs {
		if !knownVerbs[v.Method] {
			return Verb{}, rcerrors.Config("method %s: unsupported verb %q, want one of GET, POST, PUT, DELETE", m.Name, v.Method)
		}
		seen[v.Method] = true
	}
	if len(m.Verbs) == 0 {
		return Verb{}, rcerrors.Config("method %s: no verb declared", m.Name)
	}
	if len(m.Verbs) > 1 {
		verbs := make([]string, 0, len(seen))
		for v := range seen {
			verbs = append(verbs, v)
		}
		sort.Strings(verbs)
		return Verb{}, rcerrors.Config("method %s: ambiguous verb, found %s", m.Name, strings.Join(verbs, ", "))
	}
	return m.Verbs[0], nil
}

// compileMethod validates the declaration and resolves its verb.
func compileMethod(m Method) (*descriptor, error) {
	if err := methodValidator.Struct(m); err != nil {
		return nil, rcerrors.Config("method %q: malformed declaration: %v", m.Name, err)
	}
	verb, err := resolveVerb(&m)
	if err != nil {
		return nil, err
	}
	contentType := verb.ContentType
	if contentType == "" {
		contentType = ContentJSON
	}

	declaredPath := make(map[string]bool)
	for i, p := range m.Params {
		if p.Role.keyless() && p.Key != "" {
			return nil, rcerrors.Config("method %s: parameter %d: role %s takes no key, got %q", m.Name, i, p.Role, p.Key)
		}
		if p.Role == RolePath {
			declaredPath[p.Key] = true
		}
	}
	pathKeys := findURLKeys(verb.Path)
	for _, key := range pathKeys {
		if !declaredPath[key] {
			return nil, rcerrors.Config("method %s: path %s uses {%s}, but no path parameter has this key", m.Name, verb.Path, key)
		}
	}

	return &descriptor{
		name:        m.Name,
		verb:        verb.Method,
		path:        verb.Path,
		contentType: contentType,
		params:      append([]Param(nil), m.Params...),
		pathKeys:    pathKeys,
	}, nil
}

// bindFunc checks the function type of the field the method is bound to.
// Accepted signatures (ctx is optional):
//
//	func(ctx, args...) error
//	func(ctx, args...) (T, error)
//	func(ctx, args...) (*Response[T], error)
//	func(ctx, args...) (*Future[T], error)
func (d *descriptor) bindFunc(funcType reflect.Type) error {
	if funcType.Kind() != reflect.Func {
		return rcerrors.Config("method %s: field is %s, want func", d.name, funcType.Kind())
	}
	if funcType.IsVariadic() {
		return rcerrors.Config("method %s: variadic functions are not supported", d.name)
	}

	numIn := funcType.NumIn()
	hasContext := numIn > 0 && funcType.In(0) == contextType
	args := numIn
	if hasContext {
		args--
	}
	if args != len(d.params) {
		return rcerrors.Config("method %s: function has %d arguments, but %d parameters are declared", d.name, args, len(d.params))
	}

	offset := 0
	if hasContext {
		offset = 1
	}
	for i, p := range d.params {
		argType := funcType.In(i + offset)
		if p.Role == RolePart && !argType.Implements(partType) {
			return rcerrors.Config("method %s: part parameter %q has type %s, want an implementation of restclient.Part", d.name, p.Key, argType)
		}
	}

	var (
		s          shape
		resultType reflect.Type
		outType    reflect.Type
	)
	switch funcType.NumOut() {
	case 1:
		if funcType.Out(0) != errorType {
			return rcerrors.Config("method %s: the only result must be error, got %s", d.name, funcType.Out(0))
		}
		s = shapeNone
	case 2:
		if funcType.Out(1) != errorType {
			return rcerrors.Config("method %s: second result must be error, got %s", d.name, funcType.Out(1))
		}
		outType = funcType.Out(0)
		switch {
		case outType.Implements(wrapperType):
			s = shapeWrapped
			resultType = reflect.New(outType.Elem()).Interface().(wrapper).valueType()
		case outType.Implements(pendingType):
			s = shapeFuture
			resultType = reflect.New(outType.Elem()).Interface().(pending).valueType()
		default:
			s = shapeValue
			resultType = outType
		}
	default:
		return rcerrors.Config("method %s: function must return error or (T, error), got %d results", d.name, funcType.NumOut())
	}

	d.funcType = funcType
	d.hasContext = hasContext
	d.shape = s
	d.resultType = resultType
	d.outType = outType
	return nil
}

func (d *descriptor) String() string {
	return fmt.Sprintf("%s %s %s (%s)", d.name, d.verb, d.path, d.shape)
}
