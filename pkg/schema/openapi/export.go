// Package openapi describes a form's submission payload as an OpenAPI 3
// document, so a backend receiving answers can validate them with standard
// tooling.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const (
	// SchemaName is the component schema holding the answers object.
	SchemaName = "FormAnswers"
	// DefaultPath is the path of the generated submit operation.
	DefaultPath = "/submissions"
	// DefaultVersion is used for info.version when none is given.
	DefaultVersion = "1.0.0"
)

// Options tunes the exported document.
type Options struct {
	Title       string
	Version     string
	Path        string
	OperationID string
	// IncludeHidden exports hidden questions too.
	IncludeHidden bool
}

func (o Options) withDefaults(form model.FormState) Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = strings.TrimSpace(form.FormName)
	}
	if o.Title == "" {
		o.Title = "Untitled form"
	}
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if !strings.HasPrefix(o.Path, "/") {
		o.Path = "/" + o.Path
	}
	if o.OperationID == "" {
		o.OperationID = "submitForm"
	}
	return o
}

// Export builds and validates the document for form.
func Export(ctx context.Context, form model.FormState, opts Options) (*openapi3.T, error) {
	opts = opts.withDefaults(form)

	answers, err := AnswersSchema(form, opts.IncludeHidden)
	if err != nil {
		return nil, err
	}
	ref := &openapi3.SchemaRef{Ref: "#/components/schemas/" + SchemaName, Value: answers}

	op := openapi3.NewOperation()
	op.OperationID = opts.OperationID
	op.Summary = "Submit answers to " + opts.Title
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithName("201", openapi3.NewResponse().WithDescription("Answers accepted")),
		openapi3.WithName("422", openapi3.NewResponse().WithDescription("Answers failed validation")),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   opts.Title,
			Version: opts.Version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{SchemaName: openapi3.NewSchemaRef("", answers)},
		},
	}
	doc.Paths.Set(opts.Path, &openapi3.PathItem{Post: op})

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: generated document is invalid: %w", err)
	}
	return doc, nil
}

// AnswersSchema returns the object schema of a submission: one property per
// question id.
func AnswersSchema(form model.FormState, includeHidden bool) (*openapi3.Schema, error) {
	obj := openapi3.NewObjectSchema()
	obj.Title = strings.TrimSpace(form.FormName)
	obj.Properties = openapi3.Schemas{}

	for _, q := range form.Questions {
		if q.Hidden && !includeHidden {
			continue
		}
		if q.ID == "" {
			return nil, errors.New("openapi: question without id")
		}
		prop, err := questionSchema(q)
		if err != nil {
			return nil, err
		}
		obj.Properties[q.ID] = openapi3.NewSchemaRef("", prop)
		if q.Required {
			obj.Required = append(obj.Required, q.ID)
		}
	}
	return obj, nil
}

func questionSchema(q model.Question) (*openapi3.Schema, error) {
	var s *openapi3.Schema
	switch q.Type {
	case model.QuestionTypeNumber:
		s = openapi3.NewFloat64Schema()
		if q.Min != nil {
			v := *q.Min
			s.Min = &v
		}
		if q.Max != nil {
			v := *q.Max
			s.Max = &v
		}
	case model.QuestionTypeSelect:
		s = openapi3.NewStringSchema()
		for _, opt := range q.Options {
			s.Enum = append(s.Enum, opt)
		}
	case model.QuestionTypeText, "":
		s = openapi3.NewStringSchema()
		if q.MaxLength != nil && *q.MaxLength > 0 {
			v := uint64(*q.MaxLength)
			s.MaxLength = &v
		}
		switch q.TextType {
		case model.TextTypeEmail:
			s.Format = "email"
		case model.TextTypePassword:
			s.Format = "password"
		}
	default:
		return nil, fmt.Errorf("openapi: question %q has unsupported type %q", q.ID, q.Type)
	}
	s.Title = q.Label
	s.Description = q.HelperText
	if !q.Required {
		s.Nullable = true
	}
	return s, nil
}

// MarshalJSON renders doc as indented JSON.
func MarshalJSON(doc *openapi3.T) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("openapi: document is nil")
	}
	return json.MarshalIndent(doc, "", "  ")
}

// MarshalYAML renders doc as YAML.
func MarshalYAML(doc *openapi3.T) ([]byte, error) {
	raw, err := MarshalJSON(doc)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("openapi: decode document: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode yaml: %w", err)
	}
	return out, nil
}
