// Package tui fills out a form in the terminal: one prompt per question,
// answers checked by the fill session as they are entered.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/fill"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

const defaultSkipLabel = "(no answer)"

// Renderer drives a fill.Session through a PromptDriver.
type Renderer struct {
	driver    PromptDriver
	theme     Theme
	logger    *slog.Logger
	skipLabel string
}

// New constructs a TUI renderer backed by the survey driver unless another
// driver is supplied.
func New(options ...Option) *Renderer {
	r := &Renderer{
		theme:     DefaultTheme,
		logger:    slog.Default(),
		skipLabel: defaultSkipLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Fill prompts every question of the session until its answer is accepted,
// submits, and prints the summary.
func (r *Renderer) Fill(ctx context.Context, session *fill.Session) (fill.Submission, error) {
	if ctx == nil {
		return fill.Submission{}, errors.New("tui: context is required")
	}
	if session == nil {
		return fill.Submission{}, ErrSessionRequired
	}

	form := session.Form()
	if len(form.Questions) == 0 {
		_ = r.info(ctx, "This form has no questions yet.")
		return fill.Submission{}, ErrNoQuestions
	}
	if name := strings.TrimSpace(form.FormName); name != "" {
		if err := r.info(ctx, name); err != nil {
			return fill.Submission{}, err
		}
	}

	for _, q := range form.Questions {
		if q.Hidden && !q.Required {
			continue
		}
		if err := r.answer(ctx, session, q); err != nil {
			return fill.Submission{}, err
		}
	}

	sub, err := session.Submit(ctx)
	if err != nil {
		var submitErr *fill.SubmitError
		if errors.As(err, &submitErr) {
			for id, msg := range submitErr.Errors {
				_ = r.fail(ctx, fmt.Sprintf("%s: %s", id, msg))
			}
		}
		return fill.Submission{}, err
	}

	if err := r.summary(ctx, session); err != nil {
		return fill.Submission{}, err
	}
	return sub, nil
}

// Run fills the session repeatedly while the user asks to fill it again.
func (r *Renderer) Run(ctx context.Context, session *fill.Session) ([]fill.Submission, error) {
	var subs []fill.Submission
	for {
		sub, err := r.Fill(ctx, session)
		if err != nil {
			return subs, err
		}
		subs = append(subs, sub)

		again, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Fill again?"})
		if err != nil {
			return subs, err
		}
		if !again {
			return subs, nil
		}
		session.FillAgain()
	}
}

func (r *Renderer) answer(ctx context.Context, session *fill.Session, q model.Question) error {
	for {
		value, err := r.ask(ctx, q)
		if err != nil {
			return err
		}
		errs, err := session.SetAnswer(q.ID, value)
		if err != nil {
			return err
		}
		msg, bad := errs[q.ID]
		if !bad {
			return nil
		}
		r.logger.DebugContext(ctx, "Answer rejected", "question", q.ID, "reason", msg)
		if err := r.fail(ctx, msg); err != nil {
			return err
		}
	}
}

func (r *Renderer) ask(ctx context.Context, q model.Question) (model.Value, error) {
	message := promptLabel(q)
	switch q.Type {
	case model.QuestionTypeSelect:
		options := append([]string(nil), q.Options...)
		offset := 0
		if !q.Required {
			options = append([]string{r.skipLabel}, options...)
			offset = 1
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: options, Help: q.HelperText})
		if err != nil {
			return model.Null(), err
		}
		if idx < offset || idx >= len(options) {
			return model.Null(), nil
		}
		return model.String(options[idx]), nil

	case model.QuestionTypeNumber:
		raw, err := r.driver.Input(ctx, InputConfig{Message: message, Help: numberHelp(q)})
		if err != nil {
			return model.Null(), err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return model.Null(), nil
		}
		if f, ok := model.String(raw).Float(); ok {
			return model.Number(f), nil
		}
		return model.String(raw), nil

	default:
		raw, err := r.askText(ctx, q, message)
		if err != nil {
			return model.Null(), err
		}
		return model.String(raw), nil
	}
}

func (r *Renderer) askText(ctx context.Context, q model.Question, message string) (string, error) {
	limit := maxLengthValidator(q.MaxLength)
	switch {
	case q.TextType == model.TextTypePassword:
		return r.driver.Password(ctx, InputConfig{Message: message, Help: q.HelperText, Validator: limit})
	case q.IsParagraph:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: q.HelperText, Validator: limit})
	default:
		return r.driver.Input(ctx, InputConfig{Message: message, Help: q.HelperText, Validator: limit})
	}
}

func (r *Renderer) summary(ctx context.Context, session *fill.Session) error {
	if err := r.info(ctx, "Form submitted."); err != nil {
		return err
	}
	for _, line := range session.Summary() {
		if err := r.info(ctx, fmt.Sprintf("%s: %s", line.Label, line.Display)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func promptLabel(q model.Question) string {
	label := strings.TrimSpace(q.Label)
	if q.Required {
		label += " *"
	}
	return label
}

func numberHelp(q model.Question) string {
	parts := []string{}
	if q.HelperText != "" {
		parts = append(parts, q.HelperText)
	}
	switch {
	case q.Min != nil && q.Max != nil:
		parts = append(parts, fmt.Sprintf("between %s and %s", model.FormatNumber(*q.Min), model.FormatNumber(*q.Max)))
	case q.Min != nil:
		parts = append(parts, "at least "+model.FormatNumber(*q.Min))
	case q.Max != nil:
		parts = append(parts, "at most "+model.FormatNumber(*q.Max))
	}
	return strings.Join(parts, " ")
}

// DefaultMaxLength caps text answers of questions without a maxLength.
const DefaultMaxLength = 200

func maxLengthValidator(limit *int) func(string) error {
	max := DefaultMaxLength
	if limit != nil && *limit > 0 {
		max = *limit
	}
	return func(s string) error {
		if n := len([]rune(s)); n > max {
			return fmt.Errorf("at most %d characters (got %d)", max, n)
		}
		return nil
	}
}
