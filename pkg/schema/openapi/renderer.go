package openapi

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Format selects the serialization of a Renderer.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Renderer exposes Export through the render registry. Answers and errors in
// the view are ignored; only the form's questions shape the document.
type Renderer struct {
	format  Format
	options Options
}

// NewRenderer returns a renderer named "openapi-json" or "openapi-yaml".
func NewRenderer(format Format, opts Options) (*Renderer, error) {
	switch format {
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("openapi: unknown format %q", format)
	}
	return &Renderer{format: format, options: opts}, nil
}

func (r *Renderer) Name() string {
	return "openapi-" + string(r.format)
}

func (r *Renderer) ContentType() string {
	if r.format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

func (r *Renderer) Render(ctx context.Context, view render.View) ([]byte, error) {
	doc, err := Export(ctx, view.Form, r.options)
	if err != nil {
		return nil, err
	}
	if r.format == FormatYAML {
		return MarshalYAML(doc)
	}
	return MarshalJSON(doc)
}
