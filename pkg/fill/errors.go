package fill

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// ErrUnknownQuestion is returned when an answer targets a question the form
// does not have.
var ErrUnknownQuestion = errors.New("fill: unknown question")

// SubmitError carries the answer errors that blocked a submission, keyed by
// question id.
type SubmitError struct {
	Errors validation.Errors
}

func (e *SubmitError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "fill: submission rejected"
	}
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, e.Errors[id]))
	}
	return "fill: submission rejected: " + strings.Join(parts, "; ")
}
