package state

import (
	"math"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Field names a patchable question attribute.
type Field string

const (
	FieldLabel       Field = "label"
	FieldType        Field = "type"
	FieldRequired    Field = "required"
	FieldHidden      Field = "hidden"
	FieldIsParagraph Field = "isParagraph"
	FieldHelperText  Field = "helperText"
	FieldTextType    Field = "textType"
	FieldMaxLength   Field = "maxLength"
	FieldMin         Field = "min"
	FieldMax         Field = "max"
	FieldOptions     Field = "options"
)

// Fields lists every patchable field.
var Fields = []Field{
	FieldLabel, FieldType, FieldRequired, FieldHidden, FieldIsParagraph,
	FieldHelperText, FieldTextType, FieldMaxLength, FieldMin, FieldMax, FieldOptions,
}

// patch returns q with field set to value. ok is false when the field is
// unknown or value has the wrong type; q is then returned as is.
func patch(q model.Question, field Field, value any) (model.Question, bool) {
	switch field {
	case FieldLabel:
		s, ok := value.(string)
		if !ok {
			return q, false
		}
		q.Label = s
	case FieldHelperText:
		s, ok := value.(string)
		if !ok {
			return q, false
		}
		q.HelperText = s
	case FieldType:
		t, ok := asQuestionType(value)
		if !ok {
			return q, false
		}
		q.Type = t
	case FieldTextType:
		t, ok := asTextType(value)
		if !ok {
			return q, false
		}
		q.TextType = t
	case FieldRequired, FieldHidden, FieldIsParagraph:
		b, ok := value.(bool)
		if !ok {
			return q, false
		}
		switch field {
		case FieldRequired:
			q.Required = b
		case FieldHidden:
			q.Hidden = b
		default:
			q.IsParagraph = b
		}
	case FieldMaxLength:
		n, ok := asIntPtr(value)
		if !ok {
			return q, false
		}
		q.MaxLength = n
	case FieldMin, FieldMax:
		f, ok := asFloatPtr(value)
		if !ok {
			return q, false
		}
		if field == FieldMin {
			q.Min = f
		} else {
			q.Max = f
		}
	case FieldOptions:
		switch v := value.(type) {
		case nil:
			q.Options = []string{}
		case []string:
			q.Options = append([]string{}, v...)
		default:
			return q, false
		}
	default:
		return q, false
	}
	return q, true
}

func asQuestionType(value any) (model.QuestionType, bool) {
	switch v := value.(type) {
	case model.QuestionType:
		return v, true
	case string:
		return model.QuestionType(v), true
	}
	return "", false
}

func asTextType(value any) (model.TextType, bool) {
	switch v := value.(type) {
	case model.TextType:
		return v, true
	case string:
		return model.TextType(v), true
	}
	return "", false
}

func asIntPtr(value any) (*int, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case *int:
		if v == nil {
			return nil, true
		}
		return model.IntPtr(*v), true
	case int:
		return model.IntPtr(v), true
	case int32:
		return model.IntPtr(int(v)), true
	case int64:
		return model.IntPtr(int(v)), true
	case float64:
		if v != math.Trunc(v) {
			return nil, false
		}
		return model.IntPtr(int(v)), true
	}
	return nil, false
}

func asFloatPtr(value any) (*float64, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case *float64:
		if v == nil {
			return nil, true
		}
		return model.FloatPtr(*v), true
	case float64:
		return model.FloatPtr(v), true
	case float32:
		return model.FloatPtr(float64(v)), true
	case int:
		return model.FloatPtr(float64(v)), true
	case int32:
		return model.FloatPtr(float64(v)), true
	case int64:
		return model.FloatPtr(float64(v)), true
	}
	return nil, false
}

// Accepts reports whether an UpdateQuestion carrying value for field would be
// applied.
func Accepts(field Field, value any) bool {
	_, ok := patch(model.NewQuestion(""), field, value)
	return ok
}
