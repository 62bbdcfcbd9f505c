package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/state"
)

// Editor menu entries, in display order.
const (
	MenuAdd    = "Add question"
	MenuEdit   = "Edit question"
	MenuDelete = "Delete question"
	MenuRename = "Rename form"
	MenuSave   = "Save"
	MenuReset  = "Reset form"
	MenuDone   = "Done"

	fieldBack = "Back"
)

var editorMenu = []string{MenuAdd, MenuEdit, MenuDelete, MenuRename, MenuSave, MenuReset, MenuDone}

// Edit runs the form editor until the user picks Done.
func (r *Renderer) Edit(ctx context.Context, b *builder.Builder) error {
	if b == nil {
		return errors.New("tui: builder is required")
	}
	for {
		idx, err := r.driver.Select(ctx, SelectConfig{Message: r.menuTitle(b), Options: editorMenu})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(editorMenu) {
			continue
		}

		switch editorMenu[idx] {
		case MenuAdd:
			q := b.AddQuestion(ctx)
			if err := r.editQuestion(ctx, b, q.ID); err != nil {
				return err
			}
		case MenuEdit:
			id, ok, err := r.pickQuestion(ctx, b, "Question to edit")
			if err != nil {
				return err
			}
			if ok {
				if err := r.editQuestion(ctx, b, id); err != nil {
					return err
				}
			}
		case MenuDelete:
			if err := r.deleteQuestion(ctx, b); err != nil {
				return err
			}
		case MenuRename:
			name, err := r.driver.Input(ctx, InputConfig{Message: "Form name", Default: b.Form().FormName})
			if err != nil {
				return err
			}
			b.SetFormName(ctx, name)
		case MenuSave:
			b.Save(ctx)
			if err := r.info(ctx, "Saving..."); err != nil {
				return err
			}
		case MenuReset:
			if err := r.reset(ctx, b); err != nil {
				return err
			}
		case MenuDone:
			return nil
		}
	}
}

func (r *Renderer) menuTitle(b *builder.Builder) string {
	form := b.Form()
	name := strings.TrimSpace(form.FormName)
	if name == "" {
		name = "Untitled form"
	}
	return fmt.Sprintf("%s (%d questions)", name, len(form.Questions))
}

func (r *Renderer) pickQuestion(ctx context.Context, b *builder.Builder, message string) (string, bool, error) {
	questions := b.Form().Questions
	if len(questions) == 0 {
		return "", false, r.info(ctx, "This form has no questions yet.")
	}
	options := make([]string, 0, len(questions)+1)
	for i, q := range questions {
		options = append(options, questionEntry(i, q))
	}
	options = append(options, fieldBack)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return "", false, err
	}
	if idx < 0 || idx >= len(questions) {
		return "", false, nil
	}
	return questions[idx].ID, true, nil
}

func (r *Renderer) deleteQuestion(ctx context.Context, b *builder.Builder) error {
	id, ok, err := r.pickQuestion(ctx, b, "Question to delete")
	if err != nil || !ok {
		return err
	}
	sure, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Delete this question?"})
	if err != nil {
		return err
	}
	if sure {
		b.DeleteQuestion(ctx, id)
	}
	return nil
}

func (r *Renderer) reset(ctx context.Context, b *builder.Builder) error {
	if !b.CanReset(ctx) {
		return r.info(ctx, "Nothing saved to reset.")
	}
	sure, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Discard the saved form?"})
	if err != nil {
		return err
	}
	if sure {
		b.Reset(ctx)
	}
	return nil
}

func (r *Renderer) editQuestion(ctx context.Context, b *builder.Builder, id string) error {
	for {
		q, ok := b.Form().Question(id)
		if !ok {
			return nil
		}
		fields := fieldsFor(q.Type)
		options := make([]string, 0, len(fields)+1)
		for _, f := range fields {
			options = append(options, fmt.Sprintf("%s: %s", f, describeField(q, f)))
		}
		options = append(options, fieldBack)

		idx, err := r.driver.Select(ctx, SelectConfig{Message: "Edit " + questionEntry(-1, q), Options: options})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(fields) {
			return nil
		}

		field := fields[idx]
		value, err := r.askField(ctx, q, field)
		if err != nil {
			return err
		}
		errs, err := b.UpdateQuestion(ctx, id, field, value)
		if err != nil {
			r.logger.DebugContext(ctx, "Edit rejected", "question", id, "field", field, "err", err)
			if err := r.fail(ctx, "Invalid value for "+string(field)); err != nil {
				return err
			}
			continue
		}
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := r.fail(ctx, errs[k]); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) askField(ctx context.Context, q model.Question, field state.Field) (any, error) {
	switch field {
	case state.FieldType:
		names := make([]string, len(model.QuestionTypes))
		current := 0
		for i, t := range model.QuestionTypes {
			names[i] = string(t)
			if t == q.Type {
				current = i
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: "Type", Options: names, DefaultIndex: current})
		if err != nil || idx < 0 || idx >= len(names) {
			return q.Type, err
		}
		return model.QuestionTypes[idx], nil

	case state.FieldTextType:
		names := make([]string, len(model.TextTypes))
		current := 0
		for i, t := range model.TextTypes {
			names[i] = string(t)
			if t == q.TextType {
				current = i
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: "Text type", Options: names, DefaultIndex: current})
		if err != nil || idx < 0 || idx >= len(names) {
			return q.TextType, err
		}
		return model.TextTypes[idx], nil

	case state.FieldRequired, state.FieldHidden, state.FieldIsParagraph:
		current := map[state.Field]bool{
			state.FieldRequired:    q.Required,
			state.FieldHidden:      q.Hidden,
			state.FieldIsParagraph: q.IsParagraph,
		}[field]
		return r.driver.Confirm(ctx, ConfirmConfig{Message: string(field) + "?", Default: current})

	case state.FieldMaxLength:
		raw, err := r.driver.Input(ctx, InputConfig{Message: "Max length (empty for none)", Default: describeField(q, field)})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "-" {
			return nil, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return raw, nil
		}
		return n, nil

	case state.FieldMin, state.FieldMax:
		raw, err := r.driver.Input(ctx, InputConfig{Message: string(field) + " (empty for none)", Default: describeField(q, field)})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "-" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		return f, nil

	case state.FieldOptions:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message: "Options",
			Help:    "Separate options with commas",
			Default: strings.Join(q.Options, ", "),
		})
		if err != nil {
			return nil, err
		}
		return splitOptions(raw), nil

	default:
		return r.driver.Input(ctx, InputConfig{Message: string(field), Default: describeField(q, field)})
	}
}

func fieldsFor(t model.QuestionType) []state.Field {
	common := []state.Field{state.FieldLabel, state.FieldType, state.FieldRequired, state.FieldHidden, state.FieldHelperText}
	switch t {
	case model.QuestionTypeNumber:
		return append(common, state.FieldMin, state.FieldMax)
	case model.QuestionTypeSelect:
		return append(common, state.FieldOptions)
	default:
		return append(common, state.FieldIsParagraph, state.FieldTextType, state.FieldMaxLength)
	}
}

func describeField(q model.Question, field state.Field) string {
	switch field {
	case state.FieldLabel:
		return q.Label
	case state.FieldHelperText:
		return q.HelperText
	case state.FieldType:
		return string(q.Type)
	case state.FieldTextType:
		return string(q.TextType)
	case state.FieldRequired:
		return strconv.FormatBool(q.Required)
	case state.FieldHidden:
		return strconv.FormatBool(q.Hidden)
	case state.FieldIsParagraph:
		return strconv.FormatBool(q.IsParagraph)
	case state.FieldMaxLength:
		if q.MaxLength == nil {
			return "-"
		}
		return strconv.Itoa(*q.MaxLength)
	case state.FieldMin:
		if q.Min == nil {
			return "-"
		}
		return model.FormatNumber(*q.Min)
	case state.FieldMax:
		if q.Max == nil {
			return "-"
		}
		return model.FormatNumber(*q.Max)
	case state.FieldOptions:
		return strings.Join(q.Options, ", ")
	}
	return ""
}

func questionEntry(i int, q model.Question) string {
	label := strings.TrimSpace(q.Label)
	if label == "" {
		label = "(no label)"
	}
	entry := fmt.Sprintf("%s [%s]", label, q.Type)
	if q.IsSaving {
		entry += " saving..."
	}
	if i >= 0 {
		entry = fmt.Sprintf("%d. %s", i+1, entry)
	}
	return entry
}

func splitOptions(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
