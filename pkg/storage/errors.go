package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrInjectedFailure is raised by Retry when the policy's failure
	// probability fires. It only exists to exercise the retry path.
	ErrInjectedFailure = errors.New("storage: injected failure")
	// ErrInvalidKey reports a key a provider cannot store.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrProviderRequired is returned when an Adapter is built without a provider.
	ErrProviderRequired = errors.New("storage: provider is required")
)

// RetryError is returned once every attempt failed. It unwraps to the last
// attempt's error.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("storage: giving up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
