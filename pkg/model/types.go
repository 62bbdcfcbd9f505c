package model

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeText   QuestionType = "text"
	QuestionTypeNumber QuestionType = "number"
	QuestionTypeSelect QuestionType = "select"
)

// QuestionTypes lists the supported types in display order.
var QuestionTypes = []QuestionType{QuestionTypeText, QuestionTypeNumber, QuestionTypeSelect}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeNumber, QuestionTypeSelect:
		return true
	default:
		return false
	}
}

// TextType selects the input flavour of a text question.
type TextType string

const (
	TextTypeNormal   TextType = "normal"
	TextTypeEmail    TextType = "email"
	TextTypePassword TextType = "password"
)

// TextTypes lists the supported text input flavours in display order.
var TextTypes = []TextType{TextTypeNormal, TextTypeEmail, TextTypePassword}

// Question is one field definition of a form. MaxLength only applies to text
// questions, Min/Max to number questions, and Options to select questions.
// IsSaving is a transient UI flag and carries no meaning once persisted.
type Question struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Type        QuestionType `json:"type"`
	Required    bool         `json:"required"`
	Hidden      bool         `json:"hidden"`
	IsParagraph bool         `json:"isParagraph"`
	HelperText  string       `json:"helperText"`
	TextType    TextType     `json:"textType"`
	MaxLength   *int         `json:"maxLength,omitempty"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Options     []string     `json:"options"`
	IsSaving    bool         `json:"isSaving,omitempty"`
}

// NewQuestion returns a blank text question with the given id.
func NewQuestion(id string) Question {
	return Question{
		ID:       id,
		Type:     QuestionTypeText,
		TextType: TextTypeNormal,
		Options:  []string{},
	}
}

// WithType returns the record that replaces q when its type changes to t. Only
// the id and label survive; every other field goes back to its default.
func WithType(q Question, t QuestionType) Question {
	next := NewQuestion(q.ID)
	next.Label = q.Label
	next.Type = t
	return next
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	out := q
	if q.MaxLength != nil {
		v := *q.MaxLength
		out.MaxLength = &v
	}
	if q.Min != nil {
		v := *q.Min
		out.Min = &v
	}
	if q.Max != nil {
		v := *q.Max
		out.Max = &v
	}
	if q.Options != nil {
		out.Options = append([]string{}, q.Options...)
	}
	return out
}

// FormState is the builder's draft: a name and an ordered list of questions.
type FormState struct {
	FormName  string     `json:"formName"`
	Questions []Question `json:"questions"`
}

// Empty returns the initial, blank form.
func Empty() FormState {
	return FormState{FormName: "", Questions: []Question{}}
}

// Clone returns a deep copy of s.
func (s FormState) Clone() FormState {
	out := FormState{FormName: s.FormName}
	if s.Questions == nil {
		return out
	}
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// Index returns the position of the question with id, or -1.
func (s FormState) Index(id string) int {
	for i, q := range s.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}

// Question returns the question with id.
func (s FormState) Question(id string) (Question, bool) {
	idx := s.Index(id)
	if idx < 0 {
		return Question{}, false
	}
	return s.Questions[idx], true
}

// Answer is a respondent's value for one question.
type Answer struct {
	QuestionID string `json:"questionId"`
	Value      Value  `json:"value"`
}

// NewAnswers returns one null answer per question, in question order.
func NewAnswers(questions []Question) []Answer {
	answers := make([]Answer, len(questions))
	for i, q := range questions {
		answers[i] = Answer{QuestionID: q.ID, Value: Null()}
	}
	return answers
}

// FindAnswer returns the value answered for questionID. Missing answers are
// reported as null.
func FindAnswer(answers []Answer, questionID string) Value {
	for _, a := range answers {
		if a.QuestionID == questionID {
			return a.Value
		}
	}
	return Null()
}

// IntPtr and FloatPtr are small helpers for the optional numeric settings.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
