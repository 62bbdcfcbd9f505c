package builder

import "errors"

var (
	// ErrUnknownQuestion is returned when an id does not match any question.
	ErrUnknownQuestion = errors.New("builder: unknown question")
	// ErrInvalidValue is returned when a field update is rejected.
	ErrInvalidValue = errors.New("builder: invalid value")
	// ErrStoreRequired is returned when a Builder is built without a store.
	ErrStoreRequired = errors.New("builder: store is required")
)
