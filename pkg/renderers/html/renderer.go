// Package html renders a read-only HTML preview of a form, optionally filled
// with answers and their errors.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/gotemplate"
)

const previewTemplate = "templates/preview.tmpl"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Preview is what the page shows.
type Preview = render.View

// Renderer renders Preview pages.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders the preview page.
func (r *Renderer) Render(ctx context.Context, p Preview) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	out, err := r.templates.RenderTemplate(previewTemplate, map[string]any{
		"form":      buildView(p),
		"submitted": p.Submitted,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

type optionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type questionView struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	Type       string       `json:"type"`
	InputType  string       `json:"inputType"`
	Required   bool         `json:"required"`
	Hidden     bool         `json:"hidden"`
	Paragraph  bool         `json:"paragraph"`
	HelperHTML string       `json:"helperHTML"`
	MaxLength  int          `json:"maxLength"`
	Min        string       `json:"min"`
	Max        string       `json:"max"`
	Options    []optionView `json:"options"`
	Value      string       `json:"value"`
	Error      string       `json:"error"`
}

type formView struct {
	Name      string         `json:"name"`
	Questions []questionView `json:"questions"`
}

func buildView(p Preview) formView {
	view := formView{Name: strings.TrimSpace(p.Form.FormName), Questions: []questionView{}}
	for _, q := range p.Form.Questions {
		value := model.FindAnswer(p.Answers, q.ID).String()
		qv := questionView{
			ID:         q.ID,
			Label:      q.Label,
			Type:       string(q.Type),
			InputType:  inputType(q.TextType),
			Required:   q.Required,
			Hidden:     q.Hidden,
			Paragraph:  q.IsParagraph,
			HelperHTML: sanitizeHelper(q.HelperText),
			Value:      value,
			Error:      p.Errors[q.ID],
			Options:    []optionView{},
		}
		if q.MaxLength != nil {
			qv.MaxLength = *q.MaxLength
		}
		if q.Min != nil {
			qv.Min = model.FormatNumber(*q.Min)
		}
		if q.Max != nil {
			qv.Max = model.FormatNumber(*q.Max)
		}
		for _, opt := range q.Options {
			qv.Options = append(qv.Options, optionView{Value: opt, Selected: opt == value})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

func inputType(t model.TextType) string {
	switch t {
	case model.TextTypeEmail:
		return "email"
	case model.TextTypePassword:
		return "password"
	default:
		return "text"
	}
}

var (
	helperPolicyOnce sync.Once
	helperPolicy     *bluemonday.Policy
)

// sanitizeHelper keeps basic formatting and links in helper text.
func sanitizeHelper(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helperPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		helperPolicy = policy
	})
	return strings.TrimSpace(helperPolicy.Sanitize(trimmed))
}
