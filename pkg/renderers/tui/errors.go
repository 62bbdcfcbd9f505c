package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoQuestions is returned when asked to fill a form without questions.
	ErrNoQuestions = errors.New("tui: form has no questions")
	// ErrSessionRequired is returned when Fill is called without a session.
	ErrSessionRequired = errors.New("tui: session is required")
)
