package restclient

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"

	rcerrors "github.com/starius/restclient/errors"
)

// Client implements declared methods on top of a Transport.
type Client struct {
	descriptors map[string]*descriptor
	dispatcher  *dispatcher
	config      *Config

	mu    sync.Mutex
	bound map[string]*descriptor
}

// NewClient creates new instance of client.
//
// The list of methods must provide all methods that this client is aware of.
// Method names must be unique. Path templates of the methods are appended
// to baseURL to generate final URL used by the transport. baseURL may be
// empty if WithBaseURLFunc is passed.
func NewClient(methods []Method, baseURL string, opts ...Option) (*Client, error) {
	descriptors := make(map[string]*descriptor, len(methods))
	for _, m := range methods {
		desc, err := compileMethod(m)
		if err != nil {
			return nil, err
		}
		if _, has := descriptors[desc.name]; has {
			return nil, rcerrors.Config("method %s is declared twice", desc.name)
		}
		descriptors[desc.name] = desc
	}

	config := NewDefaultConfig()
	if baseURL != "" {
		config.baseURL = func() string {
			return baseURL
		}
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.transport == nil {
		transport := NewHTTPTransport()
		if config.client != nil {
			transport.Client = config.client
		}
		config.transport = transport
	}
	if err := config.validate(); err != nil {
		return nil, rcerrors.Config("invalid client options: %v", err)
	}

	return &Client{
		descriptors: descriptors,
		dispatcher:  &dispatcher{config: config},
		config:      config,
		bound:       make(map[string]*descriptor),
	}, nil
}

// Bind fills every exported function-typed field of the struct pointed to
// by target with an implementation calling the remote method of the same
// name. A field tagged `restclient:"Name"` is bound to method Name, and
// `restclient:"-"` is skipped. Every declared method must be bound.
func (c *Client) Bind(target interface{}) error {
	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.IsNil() || targetValue.Elem().Kind() != reflect.Struct {
		return rcerrors.Config("bind target must be a non-nil pointer to struct, got %T", target)
	}
	structValue := targetValue.Elem()
	structType := structValue.Type()

	bound := make(map[string]*descriptor, len(c.descriptors))
	funcs := make(map[int]reflect.Value, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.PkgPath != "" || field.Type.Kind() != reflect.Func {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("restclient"); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}
		desc, has := c.descriptors[name]
		if !has {
			return rcerrors.Config("field %s.%s: no method %s declared", structType.Name(), field.Name, name)
		}
		if _, has := bound[name]; has {
			return rcerrors.Config("method %s is bound to more than one field of %s", name, structType.Name())
		}
		fieldDesc := *desc
		if err := fieldDesc.bindFunc(field.Type); err != nil {
			return err
		}
		bound[name] = &fieldDesc
		d := c.dispatcher
		funcs[i] = reflect.MakeFunc(field.Type, func(in []reflect.Value) []reflect.Value {
			return d.invoke(&fieldDesc, in)
		})
	}

	var missing []string
	for name := range c.descriptors {
		if _, has := bound[name]; !has {
			missing = append(missing, name)
		}
	}
	if len(missing) != 0 {
		sort.Strings(missing)
		return rcerrors.Config("%s has no fields for methods %v", structType.Name(), missing)
	}

	for i, fn := range funcs {
		structValue.Field(i).Set(fn)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, desc := range bound {
		c.bound[name] = desc
	}
	return nil
}

// Implement returns a new *T with all methods of the client bound.
func Implement[T any](c *Client) (*T, error) {
	target := new(T)
	if err := c.Bind(target); err != nil {
		return nil, err
	}
	return target, nil
}

// New is a shortcut for NewClient followed by Implement.
func New[T any](methods []Method, baseURL string, opts ...Option) (*T, *Client, error) {
	client, err := NewClient(methods, baseURL, opts...)
	if err != nil {
		return nil, nil, err
	}
	target, err := Implement[T](client)
	if err != nil {
		return nil, nil, err
	}
	return target, client, nil
}

func (c *Client) boundDescriptors() []*descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]*descriptor, 0, len(c.bound))
	for _, desc := range c.bound {
		result = append(result, desc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].name < result[j].name
	})
	return result
}

// Close releases the transport if it can be closed.
// With closingclient it cancels requests in flight.
func (c *Client) Close() error {
	if closer, ok := c.config.transport.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}
