package timeline

import (
	"bytes"
	"fmt"
	"text/template"
)

// promptTemplate is the generation prompt. The model must answer with bare
// JSON matching the Data schema.
const promptTemplate = `You are an expert project manager and estimator specializing in {{ .ProjectType }} projects.

Based on the project details and client's questionnaire responses below, generate a detailed project timeline with phases, tasks, and cost estimates.

**Client Name**: {{ .ClientName }}
**Project Type**: {{ .ProjectType }}
**Project Brief**: {{ .Brief }}
**Hourly Rate**: ${{ .HourlyRate }}/hour
{{ if .FormResponses }}
**Client Questionnaire Responses**:
{{ .FormResponses }}
{{ end }}{{ if .CustomInstructions }}
**Custom Instructions**: {{ .CustomInstructions }}
{{ end }}
Generate a comprehensive project timeline broken down into logical phases. For each phase:
1. Provide a unique ID (e.g., "phase-1", "phase-2")
2. Provide a clear, descriptive name
3. Estimate duration in weeks (decimals like 1.5 are fine)
4. List 3-7 high-level tasks or deliverables
5. Specify dependencies on other phase IDs

**Guidelines**:
- Include all typical phases for a {{ .ProjectType }} project (e.g., Discovery & Planning, Design, Development, Testing, Launch)
- Account for client review cycles and feedback iterations
- Include buffer time for unexpected challenges (typically 15-20%)
- Consider dependencies and parallel work where applicable
- Identify key assumptions and risks
- Ensure total_cost = total_hours * {{ .HourlyRate }}

**IMPORTANT**: Respond with ONLY valid JSON matching this exact structure:

{
  "phases": [
    {
      "id": "phase-1",
      "name": "Discovery & Planning",
      "duration_weeks": 2,
      "tasks": ["Requirements gathering", "Technical architecture design"],
      "dependencies": []
    },
    {
      "id": "phase-2",
      "name": "Design",
      "duration_weeks": 3,
      "tasks": ["Wireframes and mockups", "User interface design"],
      "dependencies": ["phase-1"]
    }
  ],
  "total_weeks": 12,
  "total_hours": 480,
  "total_cost": 72000,
  "assumptions": ["Client provides timely feedback within 2 business days"],
  "risks": ["Third-party API integration delays"]
}

Generate the timeline now:`

// PromptParams holds the inputs for rendering a generation prompt.
type PromptParams struct {
	ProjectType        string
	ClientName         string
	Brief              string
	HourlyRate         float64
	FormResponses      string // pre-formatted questionnaire Q&A block, may be empty
	CustomInstructions string // per-organization prompt override, may be empty
}

// RenderPrompt generates the timeline-generation prompt.
func RenderPrompt(params PromptParams) (string, error) {
	tmpl, err := template.New("timeline").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("timeline: parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("timeline: execute template: %w", err)
	}
	return buf.String(), nil
}
