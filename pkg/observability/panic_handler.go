package observability

import (
	"fmt"
	"runtime/debug"
)

// RecoverPanic recovers a panic in the calling goroutine and logs it with the stack.
// Must be deferred directly:
//
//	defer observability.RecoverPanic(logger, "throttle sweeper")
//
// The panic is not re-raised.
func RecoverPanic(logger *Logger, where string) {
	if r := recover(); r != nil {
		logger.WithField("panic", fmt.Sprint(r)).
			WithField("stack", string(debug.Stack())).
			WithField("context", where).
			Error("PANIC recovered")
	}
}

// PanicError converts a recovered value into an error; nil stays nil.
func PanicError(r interface{}) error {
	if r != nil {
		return fmt.Errorf("panic: %v", r)
	}
	return nil
}
