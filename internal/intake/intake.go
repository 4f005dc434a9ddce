// Package intake defines AI-generated client intake forms: their schema,
// generation, and submission validation.
package intake

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Question types a form may contain. Choice types require Options.
const (
	TypeText     = "text"
	TypeTextarea = "textarea"
	TypeNumber   = "number"
	TypeRadio    = "radio"
	TypeCheckbox = "checkbox"
	TypeSelect   = "select"
)

// Option is one selectable value for a choice question.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is a single form field.
type Question struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// Section groups related questions.
type Section struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Form is the generated questionnaire schema stored on a ProjectForm row.
type Form struct {
	Sections []Section `json:"sections"`
}

var validTypes = map[string]bool{
	TypeText:     true,
	TypeTextarea: true,
	TypeNumber:   true,
	TypeRadio:    true,
	TypeCheckbox: true,
	TypeSelect:   true,
}

func isChoiceType(t string) bool {
	return t == TypeRadio || t == TypeCheckbox || t == TypeSelect
}

// Parse decodes a stored form schema.
func Parse(raw string) (*Form, error) {
	var f Form
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("intake: parse form: %w", err)
	}
	return &f, nil
}

// Encode serializes a form schema for storage.
func (f *Form) Encode() (string, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("intake: encode form: %w", err)
	}
	return string(raw), nil
}

// Validate checks that a form schema is structurally sound. Returns a list
// of validation errors (empty if valid).
func Validate(f *Form) []string {
	if f == nil {
		return []string{"form is nil"}
	}

	var errs []string
	if len(f.Sections) == 0 {
		errs = append(errs, "form has no sections")
	}

	ids := make(map[string]bool)
	for si, s := range f.Sections {
		if s.Title == "" {
			errs = append(errs, fmt.Sprintf("sections[%d]: title is required", si))
		}
		if len(s.Questions) == 0 {
			errs = append(errs, fmt.Sprintf("sections[%d]: at least one question is required", si))
		}
		for qi, q := range s.Questions {
			if q.ID == "" {
				errs = append(errs, fmt.Sprintf("sections[%d].questions[%d]: id is required", si, qi))
			}
			if q.Label == "" {
				errs = append(errs, fmt.Sprintf("sections[%d].questions[%d] (%s): label is required", si, qi, q.ID))
			}
			if !validTypes[q.Type] {
				errs = append(errs, fmt.Sprintf("sections[%d].questions[%d] (%s): invalid type %q", si, qi, q.ID, q.Type))
			}
			if isChoiceType(q.Type) && len(q.Options) == 0 {
				errs = append(errs, fmt.Sprintf("sections[%d].questions[%d] (%s): type %q requires options", si, qi, q.ID, q.Type))
			}
			if ids[q.ID] {
				errs = append(errs, fmt.Sprintf("sections[%d].questions[%d]: duplicate id %q", si, qi, q.ID))
			}
			ids[q.ID] = true
		}
	}
	return errs
}

// ValidateResponses checks a client submission against the form schema.
// Unknown question IDs are rejected; checkbox answers must be arrays of
// allowed option values; required questions must be answered.
func ValidateResponses(f *Form, responses map[string]interface{}) []string {
	var errs []string

	known := make(map[string]Question)
	for _, s := range f.Sections {
		for _, q := range s.Questions {
			known[q.ID] = q
		}
	}

	for id := range responses {
		if _, ok := known[id]; !ok {
			errs = append(errs, fmt.Sprintf("%s: unknown question", id))
		}
	}

	for _, s := range f.Sections {
		for _, q := range s.Questions {
			value, present := responses[q.ID]
			if !present || value == nil {
				if q.Required {
					errs = append(errs, fmt.Sprintf("%s: this field is required", q.ID))
				}
				continue
			}

			switch q.Type {
			case TypeCheckbox:
				list, ok := value.([]interface{})
				if !ok {
					errs = append(errs, fmt.Sprintf("%s: must be an array", q.ID))
					continue
				}
				if q.Required && len(list) == 0 {
					errs = append(errs, fmt.Sprintf("%s: this field is required", q.ID))
					continue
				}
				allowed := optionValues(q)
				for _, v := range list {
					sv, ok := v.(string)
					if !ok || !allowed[sv] {
						errs = append(errs, fmt.Sprintf("%s: invalid option selected", q.ID))
						break
					}
				}
			case TypeRadio, TypeSelect:
				sv, ok := value.(string)
				if !ok {
					errs = append(errs, fmt.Sprintf("%s: must be a string", q.ID))
					continue
				}
				if !optionValues(q)[sv] {
					errs = append(errs, fmt.Sprintf("%s: invalid option selected", q.ID))
				}
			case TypeNumber:
				if _, ok := value.(float64); !ok {
					errs = append(errs, fmt.Sprintf("%s: must be a number", q.ID))
				}
			default:
				sv, ok := value.(string)
				if !ok {
					errs = append(errs, fmt.Sprintf("%s: must be a string", q.ID))
					continue
				}
				if q.Required && strings.TrimSpace(sv) == "" {
					errs = append(errs, fmt.Sprintf("%s: this field is required", q.ID))
				}
			}
		}
	}
	return errs
}

func optionValues(q Question) map[string]bool {
	values := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		values[o.Value] = true
	}
	return values
}

// FormatResponses renders submitted answers as a Q&A block for inclusion
// in the timeline-generation prompt.
func FormatResponses(f *Form, responses map[string]interface{}) string {
	var b strings.Builder
	for _, s := range f.Sections {
		fmt.Fprintf(&b, "### %s\n", s.Title)
		if s.Description != "" {
			fmt.Fprintf(&b, "%s\n", s.Description)
		}
		for _, q := range s.Questions {
			value, ok := responses[q.ID]
			if !ok || value == nil {
				continue
			}
			fmt.Fprintf(&b, "Q: %s\n", q.Label)
			switch v := value.(type) {
			case []interface{}:
				parts := make([]string, 0, len(v))
				for _, item := range v {
					parts = append(parts, fmt.Sprintf("%v", item))
				}
				fmt.Fprintf(&b, "A: %s\n", strings.Join(parts, ", "))
			default:
				fmt.Fprintf(&b, "A: %v\n", v)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
