package restclient

import (
	"go.uber.org/zap"

	rcerrors "github.com/starius/restclient/errors"
)

// DefaultExceptionHandler re-raises every failure as a fatal client error.
func DefaultExceptionHandler(err error) error {
	return rcerrors.Fatal(err)
}

// LogStatusHandler returns a handler logging the status at error level.
// Register it with WithStatusHandler(IsError, LogStatusHandler(logger)).
func LogStatusHandler(logger *zap.Logger) StatusHandler {
	return func(status int, body string) {
		logger.Error("error occurred during request", zap.Int("status", status), zap.Int("body_len", len(body)))
	}
}

// StatusIn returns a predicate matching any of the given codes.
func StatusIn(codes ...int) func(status int) bool {
	set := make(map[int]bool, len(codes))
	for _, code := range codes {
		set[code] = true
	}
	return func(status int) bool {
		return set[status]
	}
}
