package negotiation

import (
	"bytes"
	"fmt"
	"text/template"
)

// systemPromptTemplate instructs the assistant on the dual response
// protocol: prose for questions, a scope_change JSON object for change
// requests. The full baseline timeline is embedded so impact estimates
// stay anchored to the approved plan.
const systemPromptTemplate = `You are an AI assistant helping a client explore scope changes for their project.

Project: {{ .ProjectName }}
Project Type: {{ .ProjectType }}
Current Budget: {{ .Budget }}
Current Timeline: {{ .EstimatedWeeks }} weeks
Hourly Rate: ${{ .HourlyRate }}

Current Project Timeline:
{{ .TimelineJSON }}

Your role:
1. Answer questions about the current scope and timeline
2. When the client suggests changes (adding features, extending timeline, etc.), calculate the impact
3. For scope changes, respond with a JSON proposal in this format:
{
  "type": "scope_change",
  "summary": "Brief description of the change",
  "changes": ["Change 1", "Change 2"],
  "deltaCost": 5000,
  "deltaWeeks": 2,
  "reasoning": "Explanation of the estimate"
}

4. For general questions, respond conversationally without the JSON format

Be helpful, professional, and transparent about costs and timeline impacts.`

// systemPromptParams holds the inputs for rendering the chat system prompt.
type systemPromptParams struct {
	ProjectName    string
	ProjectType    string
	Budget         string
	EstimatedWeeks float64
	HourlyRate     float64
	TimelineJSON   string
}

func renderSystemPrompt(params systemPromptParams) (string, error) {
	tmpl, err := template.New("chat").Parse(systemPromptTemplate)
	if err != nil {
		return "", fmt.Errorf("negotiation: parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("negotiation: execute prompt template: %w", err)
	}
	return buf.String(), nil
}
