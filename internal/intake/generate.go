package intake

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/lanternworks/scopeline/internal/llm"
)

const promptTemplate = `You are an expert project consultant creating a client intake questionnaire for a {{ .ProjectType }} project.

**Project Brief**: {{ .Brief }}
{{ if .CustomInstructions }}
**Custom Instructions**: {{ .CustomInstructions }}
{{ end }}
Create a questionnaire that gathers everything needed to scope and estimate this project: goals, audience, feature priorities, content readiness, technical constraints, budget flexibility, and timeline expectations.

**Rules**:
- 3-5 sections, each with 3-6 questions
- Question types: text, textarea, number, radio, checkbox, select
- Choice questions (radio, checkbox, select) must include an options array of {"label", "value"} pairs
- Every question needs a unique snake_case id
- Mark genuinely essential questions as required

**IMPORTANT**: Respond with ONLY valid JSON matching this exact structure:

{
  "sections": [
    {
      "title": "Project Goals",
      "description": "Help us understand what success looks like",
      "questions": [
        {
          "id": "primary_goal",
          "label": "What is the primary goal of this project?",
          "type": "textarea",
          "required": true
        },
        {
          "id": "launch_target",
          "label": "When do you need to launch?",
          "type": "radio",
          "required": true,
          "options": [
            {"label": "Within 3 months", "value": "3_months"},
            {"label": "3-6 months", "value": "6_months"},
            {"label": "Flexible", "value": "flexible"}
          ]
        }
      ]
    }
  ]
}

Generate the questionnaire now:`

// PromptParams holds the inputs for rendering a form-generation prompt.
type PromptParams struct {
	ProjectType        string
	Brief              string
	CustomInstructions string
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// RenderPrompt generates the form-generation prompt.
func RenderPrompt(params PromptParams) (string, error) {
	tmpl, err := template.New("intake").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("intake: parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("intake: execute template: %w", err)
	}
	return buf.String(), nil
}

// Generate asks the completion service for an intake form and returns the
// validated schema.
func Generate(ctx context.Context, completer llm.Completer, params PromptParams) (*Form, error) {
	prompt, err := RenderPrompt(params)
	if err != nil {
		return nil, err
	}

	text, err := completer.Complete(ctx, "", []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("intake: generate: %w", err)
	}

	jsonText := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		jsonText = m[1]
	}

	form, err := Parse(strings.TrimSpace(jsonText))
	if err != nil {
		return nil, fmt.Errorf("intake: response was not valid JSON: %w", err)
	}
	if errs := Validate(form); len(errs) > 0 {
		return nil, fmt.Errorf("intake: generated form invalid: %s", strings.Join(errs, "; "))
	}
	return form, nil
}
