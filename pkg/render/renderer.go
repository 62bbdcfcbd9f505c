// Package render names the views a form can be turned into and keeps them in
// a registry so callers pick one by name.
package render

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// View is everything a renderer may show: the form and, optionally, the
// state of a fill-out session.
type View struct {
	Form      model.FormState
	Answers   []model.Answer
	Errors    validation.Errors
	Submitted bool
}

// Renderer converts a View into bytes (HTML, an OpenAPI document, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View) ([]byte, error)
}
