package restclient

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ExceptionHandler receives transport and decode failures of synchronous
// calls. Its result becomes the error of the call; returning nil swallows
// the failure and the call returns the zero value.
type ExceptionHandler func(err error) error

// StatusHandler observes responses of synchronous calls.
type StatusHandler func(status int, body string)

// ValueSupplier produces a value per call, e.g. a rotating token.
// It may be called concurrently.
type ValueSupplier func() (string, error)

type statusRoute struct {
	match   func(status int) bool
	handler StatusHandler
}

type headerSupplier struct {
	name     string
	supplier ValueSupplier
}

type Config struct {
	baseURL          func() string
	encoder          Encoder
	decoder          Decoder
	exceptionHandler ExceptionHandler
	transport        Transport
	logger           *zap.Logger
	headers          []headerSupplier
	statusRoutes     []statusRoute
	client           HttpClient
}

func NewDefaultConfig() *Config {
	return &Config{
		encoder:          &JSONCodec{},
		decoder:          &JSONCodec{},
		exceptionHandler: DefaultExceptionHandler,
		logger:           zap.NewNop(),
	}
}

type Option func(*Config)

// WithBaseURLFunc sets a base URL evaluated before every call.
func WithBaseURLFunc(baseURL func() string) Option {
	return func(config *Config) {
		config.baseURL = baseURL
	}
}

func WithEncoder(encoder Encoder) Option {
	return func(config *Config) {
		config.encoder = encoder
	}
}

func WithDecoder(decoder Decoder) Option {
	return func(config *Config) {
		config.decoder = decoder
	}
}

func WithExceptionHandler(handler ExceptionHandler) Option {
	return func(config *Config) {
		config.exceptionHandler = handler
	}
}

// WithHeader adds a header to every request.
func WithHeader(name, value string) Option {
	return WithHeaderFunc(name, func() (string, error) {
		return value, nil
	})
}

// WithHeaderFunc adds a header whose value is obtained before every call.
// Header parameters of a call override it.
func WithHeaderFunc(name string, supplier ValueSupplier) Option {
	return func(config *Config) {
		config.headers = append(config.headers, headerSupplier{name: name, supplier: supplier})
	}
}

// WithStatusHandler registers a handler run for synchronous responses
// whose status matches. All matching handlers run.
func WithStatusHandler(match func(status int) bool, handler StatusHandler) Option {
	return func(config *Config) {
		config.statusRoutes = append(config.statusRoutes, statusRoute{match: match, handler: handler})
	}
}

func WithTransport(transport Transport) Option {
	return func(config *Config) {
		config.transport = transport
	}
}

// CustomClient replaces the HttpClient of the default transport.
// It has no effect together with WithTransport.
func CustomClient(client HttpClient) Option {
	return func(config *Config) {
		config.client = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(config *Config) {
		config.logger = logger
	}
}

// requiredOptions lists what every client must end up with after options
// are applied.
type requiredOptions struct {
	BaseURL          func() string    `validate:"required"`
	Encoder          Encoder          `validate:"required"`
	Decoder          Decoder          `validate:"required"`
	ExceptionHandler ExceptionHandler `validate:"required"`
	Transport        Transport        `validate:"required"`
	Logger           *zap.Logger      `validate:"required"`
}

var configValidator = validator.New()

func (config *Config) validate() error {
	return configValidator.Struct(requiredOptions{
		BaseURL:          config.baseURL,
		Encoder:          config.encoder,
		Decoder:          config.decoder,
		ExceptionHandler: config.exceptionHandler,
		Transport:        config.transport,
		Logger:           config.logger,
	})
}
