package timeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lanternworks/scopeline/internal/llm"
)

// fencedJSON matches a ```json ... ``` (or bare ```) block.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// htmlEntities reverses entity escaping that models occasionally apply to
// JSON embedded in prose.
var htmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// Generate asks the completion service for a baseline timeline and returns
// the validated result. The model's response may wrap the JSON in a fenced
// code block or return it bare.
func Generate(ctx context.Context, completer llm.Completer, params PromptParams) (*Data, error) {
	prompt, err := RenderPrompt(params)
	if err != nil {
		return nil, err
	}

	text, err := completer.Complete(ctx, "", []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("timeline: generate: %w", err)
	}

	jsonText := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		jsonText = m[1]
	}
	jsonText = htmlEntities.Replace(strings.TrimSpace(jsonText))

	data, err := Parse(jsonText)
	if err != nil {
		return nil, fmt.Errorf("timeline: response was not valid JSON: %w", err)
	}

	if errs := Validate(data); len(errs) > 0 {
		return nil, fmt.Errorf("timeline: generated timeline invalid: %s", strings.Join(errs, "; "))
	}
	return data, nil
}
