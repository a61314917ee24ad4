package restclient

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	rcerrors "github.com/starius/restclient/errors"
)

// dispatcher runs every call of a client:
// classify -> build -> send (sync or async) -> status handlers -> decode.
type dispatcher struct {
	config *Config
}

func errorValue(err error) reflect.Value {
	if err == nil {
		return reflect.Zero(errorType)
	}
	return reflect.ValueOf(&err).Elem()
}

// results packs the function results for the shape of the method.
func (d *dispatcher) results(desc *descriptor, value reflect.Value, err error) []reflect.Value {
	if desc.shape == shapeNone {
		return []reflect.Value{errorValue(err)}
	}
	if !value.IsValid() {
		value = reflect.Zero(desc.outType)
	}
	return []reflect.Value{value, errorValue(err)}
}

func (d *dispatcher) invoke(desc *descriptor, in []reflect.Value) []reflect.Value {
	ctx := context.Background()
	args := in
	if desc.hasContext {
		if !in[0].IsNil() {
			ctx = in[0].Interface().(context.Context)
		}
		args = in[1:]
	}

	req, err := d.build(desc, args)
	if err != nil {
		return d.results(desc, reflect.Value{}, fmt.Errorf("%s: %w", desc.name, err))
	}

	d.config.logger.Debug("sending request",
		zap.String("method", desc.name),
		zap.String("verb", req.Method),
		zap.String("url", req.URL),
	)

	if desc.shape == shapeFuture {
		return d.dispatchAsync(ctx, desc, req)
	}
	return d.dispatchSync(ctx, desc, req)
}

// build classifies the arguments and assembles the request.
func (d *dispatcher) build(desc *descriptor, args []reflect.Value) (*Request, error) {
	query, err := extractValues(desc.params, args, RoleQuery, RoleQueryMap)
	if err != nil {
		return nil, rcerrors.Request(err)
	}
	form, err := extractValues(desc.params, args, RoleField, RoleFieldMap)
	if err != nil {
		return nil, rcerrors.Request(err)
	}
	pathParams, err := extractStrings(desc.params, args, RolePath)
	if err != nil {
		return nil, rcerrors.Request(err)
	}
	headers, err := extractHeaders(desc.params, args)
	if err != nil {
		return nil, rcerrors.Request(err)
	}
	parts := extractParts(desc.params, args)

	bodyText := ""
	if body, has := extractBody(desc.params, args); has {
		bodyText, err = d.config.encoder.Encode(body)
		if err != nil {
			return nil, rcerrors.Request(fmt.Errorf("failed to encode body: %w", err))
		}
	}

	clientHeader := make(map[string]string, len(d.config.headers))
	for _, h := range d.config.headers {
		value, err := h.supplier()
		if err != nil {
			return nil, rcerrors.Request(fmt.Errorf("failed to get value of header %s: %w", h.name, err))
		}
		clientHeader[h.name] = value
	}

	return buildRequest(&buildInput{
		baseURL:      d.config.baseURL(),
		path:         desc.path,
		verb:         desc.verb,
		contentType:  desc.contentType,
		query:        query,
		pathParams:   pathParams,
		headers:      headers,
		multipart:    parts,
		form:         form,
		body:         bodyText,
		clientHeader: clientHeader,
	})
}

// fail passes a failure of a synchronous call to the exception handler.
func (d *dispatcher) fail(desc *descriptor, err error) []reflect.Value {
	return d.results(desc, reflect.Value{}, d.config.exceptionHandler(fmt.Errorf("%s: %w", desc.name, err)))
}

func (d *dispatcher) dispatchSync(ctx context.Context, desc *descriptor, req *Request) []reflect.Value {
	env, err := d.config.transport.Send(ctx, req)
	if err != nil {
		return d.fail(desc, rcerrors.Transport(err))
	}
	d.config.logger.Debug("received response",
		zap.String("method", desc.name),
		zap.Int("status", env.StatusCode),
	)

	for _, route := range d.config.statusRoutes {
		if route.match(env.StatusCode) {
			route.handler(env.StatusCode, env.Body)
		}
	}

	switch desc.shape {
	case shapeNone:
		return d.results(desc, reflect.Value{}, nil)

	case shapeWrapped:
		out := reflect.New(desc.outType.Elem())
		if err := out.Interface().(wrapper).fill(env, d.config.decoder); err != nil {
			return d.fail(desc, rcerrors.Decode(err))
		}
		return d.results(desc, out, nil)

	default:
		if IsError(env.StatusCode) {
			return d.results(desc, reflect.Value{}, nil)
		}
		out := reflect.New(desc.resultType)
		if err := d.config.decoder.Decode(env.Body, out.Interface()); err != nil {
			return d.fail(desc, rcerrors.Decode(err))
		}
		return d.results(desc, out.Elem(), nil)
	}
}

// dispatchAsync returns a pending future at once. Status handlers are not
// run for asynchronous calls and the body is decoded whatever the status.
func (d *dispatcher) dispatchAsync(ctx context.Context, desc *descriptor, req *Request) []reflect.Value {
	src := d.config.transport.SendAsync(ctx, req)
	src.OnComplete(func(env *Envelope, err error) {
		if err != nil {
			d.config.logger.Debug("asynchronous request failed", zap.String("method", desc.name), zap.Error(err))
			return
		}
		d.config.logger.Debug("received response",
			zap.String("method", desc.name),
			zap.Int("status", env.StatusCode),
		)
	})

	out := reflect.New(desc.outType.Elem())
	out.Interface().(pending).decodeFrom(src, d.config.decoder)
	return d.results(desc, out, nil)
}
