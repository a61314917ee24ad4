package errors

import (
	"errors"
	"fmt"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/codes"
)

// Kind tells at which stage of a call an error happened.
type Kind int

const (
	// KindFatal is an error re-raised by the default exception handler.
	KindFatal Kind = iota

	// KindConfig means the method table or the client options are wrong.
	// Such errors are never retried.
	KindConfig

	// KindRequest means the outgoing request could not be assembled
	// (body encoding failed, header supplier failed, etc).
	KindRequest

	// KindTransport means sending the request or reading the response failed.
	KindTransport

	// KindDecode means the response body does not match the declared type.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindRequest:
		return "request"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return "fatal"
	}
}

type ClientError struct {
	kind Kind
	code codes.Code
	err  error
}

func (e *ClientError) Error() string {
	var inner *ClientError
	if errors.As(e.err, &inner) {
		return e.err.Error()
	}
	return e.kind.String() + " error: " + e.err.Error()
}

func (e *ClientError) Unwrap() error {
	return e.err
}

func (e *ClientError) Kind() Kind {
	return e.kind
}

func (e *ClientError) Code() codes.Code {
	return e.code
}

func (e *ClientError) HttpCode() int {
	return runtime.HTTPStatusFromCode(e.code)
}

func makeError(kind Kind, code codes.Code, err error) *ClientError {
	return &ClientError{
		kind: kind,
		code: code,
		err:  err,
	}
}

// Config reports a wrong method declaration or option.
func Config(format string, a ...interface{}) *ClientError {
	return makeError(KindConfig, codes.FailedPrecondition, fmt.Errorf(format, a...))
}

// Request wraps a failure to assemble the outgoing request.
func Request(err error) *ClientError {
	return makeError(KindRequest, codes.InvalidArgument, err)
}

// Transport wraps a failure of the underlying transport.
// The request may be retried by the caller; the client itself never retries.
func Transport(err error) *ClientError {
	return makeError(KindTransport, codes.Unavailable, err)
}

// Decode wraps a failure to decode a response body.
func Decode(err error) *ClientError {
	return makeError(KindDecode, codes.DataLoss, err)
}

// Fatal converts any error into a fatal client error.
// If the chain has a ClientError, its kind and code are kept.
func Fatal(err error) *ClientError {
	var ce *ClientError
	if errors.As(err, &ce) {
		return makeError(ce.kind, ce.code, err)
	}
	return makeError(KindFatal, codes.Unknown, err)
}

// KindOf returns the kind of the first ClientError in the chain.
func KindOf(err error) (Kind, bool) {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return 0, false
	}
	return ce.kind, true
}

func IsConfig(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindConfig
}

func IsTransport(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindTransport
}

func IsDecode(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindDecode
}
