package restclient

import (
	"context"
	"reflect"
	"sync"

	rcerrors "github.com/starius/restclient/errors"
)

// Future is the pending result of an asynchronous call.
// The zero value is an incomplete future.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	completed bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns an incomplete future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{}
}

// Completed returns a future holding the given result.
func Completed[T any](value T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Complete(value, err)
	return f
}

func (f *Future[T]) doneLocked() chan struct{} {
	if f.done == nil {
		f.done = make(chan struct{})
	}
	return f.done
}

// Complete sets the result. Callbacks registered with OnComplete run on
// the calling goroutine. Returns false if the future was already complete.
func (f *Future[T]) Complete(value T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.completed = true
	f.value = value
	f.err = err
	close(f.doneLocked())
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(value, err)
	}
	return true
}

// Done is closed when the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doneLocked()
}

// Get waits for the result or for ctx to be done.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.Done():
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to run once the result is available. If it
// already is, fn runs immediately on the calling goroutine.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	value, err := f.value, f.err
	f.mu.Unlock()
	fn(value, err)
}

// Then returns a future completed with fn applied to the result of f.
// fn is skipped if f fails.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := NewFuture[U]()
	f.OnComplete(func(value T, err error) {
		if err != nil {
			var zero U
			next.Complete(zero, err)
			return
		}
		next.Complete(fn(value))
	})
	return next
}

// pending is implemented by *Future[T] for the dispatcher, which only
// knows T through reflection.
type pending interface {
	valueType() reflect.Type
	decodeFrom(src *Future[*Envelope], decoder Decoder)
}

func (f *Future[T]) valueType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// decodeFrom completes f with the decoded body of src.
// The status code is not checked.
func (f *Future[T]) decodeFrom(src *Future[*Envelope], decoder Decoder) {
	src.OnComplete(func(env *Envelope, err error) {
		var value T
		if err != nil {
			f.Complete(value, rcerrors.Transport(err))
			return
		}
		if err := decoder.Decode(env.Body, &value); err != nil {
			f.Complete(value, rcerrors.Decode(err))
			return
		}
		f.Complete(value, nil)
	})
}
