package restclient

import (
	"net/http"
	"reflect"
)

// Envelope is the raw result of a completed request.
type Envelope struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// IsError reports whether the status code denotes a failure (>= 300).
func IsError(statusCode int) bool {
	return statusCode >= 300
}

// Response is the wrapped return shape: the decoded value together with
// the raw status and body. Declare a method returning
// (*Response[T], error) to get one.
type Response[T any] struct {
	value   T
	decoded bool
	status  int
	raw     string
}

// Get returns the decoded body. ok is false for error responses,
// whose bodies are not decoded.
func (r *Response[T]) Get() (value T, ok bool) {
	return r.value, r.decoded
}

// Value returns the decoded body or the zero value.
func (r *Response[T]) Value() T {
	return r.value
}

func (r *Response[T]) Raw() string {
	return r.raw
}

func (r *Response[T]) Status() int {
	return r.status
}

func (r *Response[T]) IsError() bool {
	return IsError(r.status)
}

// DecodeRaw decodes the raw body into target with the given decoder.
// Useful to parse error responses into an error type.
func (r *Response[T]) DecodeRaw(decoder Decoder, target interface{}) error {
	return decoder.Decode(r.raw, target)
}

type wrapper interface {
	valueType() reflect.Type
	fill(env *Envelope, decoder Decoder) error
}

func (r *Response[T]) valueType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (r *Response[T]) fill(env *Envelope, decoder Decoder) error {
	r.status = env.StatusCode
	r.raw = env.Body
	if IsError(env.StatusCode) {
		return nil
	}
	if err := decoder.Decode(env.Body, &r.value); err != nil {
		return err
	}
	r.decoded = true
	return nil
}
