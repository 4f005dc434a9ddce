package negotiation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ScopeChange is the structured delta the model emits when the client
// requests a scope change.
type ScopeChange struct {
	Type       string   `json:"type"`
	Summary    string   `json:"summary"`
	Changes    []string `json:"changes"`
	DeltaCost  float64  `json:"deltaCost"`
	DeltaWeeks float64  `json:"deltaWeeks"`
	Reasoning  string   `json:"reasoning"`
}

// ExtractScopeChange searches assistant text for an embedded scope_change
// JSON object and returns the validated payload, or nil when the text
// carries none. The object may be fenced, bare, or buried in prose; it
// need not be the entire response. Malformed candidates are skipped, never
// surfaced as errors — a prose-only answer is a normal outcome.
func ExtractScopeChange(text string) *ScopeChange {
	if !strings.Contains(text, "scope_change") {
		return nil
	}

	// Try each '{' as a candidate object start. json.Decoder reads exactly
	// one value and ignores trailing prose, which handles fenced blocks and
	// embedded objects alike.
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		sc, err := validateScopeChange(raw)
		if err != nil {
			continue
		}
		return sc
	}
	return nil
}

// validateScopeChange enforces the strict payload schema: exact type tag,
// non-empty summary, string change list, and numeric deltas. Field
// presence is checked explicitly so a missing delta is rejected rather
// than defaulting to zero.
func validateScopeChange(raw map[string]json.RawMessage) (*ScopeChange, error) {
	var sc ScopeChange

	if err := requireString(raw, "type", &sc.Type); err != nil {
		return nil, err
	}
	if sc.Type != "scope_change" {
		return nil, fmt.Errorf("type %q is not scope_change", sc.Type)
	}
	if err := requireString(raw, "summary", &sc.Summary); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sc.Summary) == "" {
		return nil, fmt.Errorf("summary is empty")
	}

	changesRaw, ok := raw["changes"]
	if !ok {
		return nil, fmt.Errorf("changes is missing")
	}
	if err := json.Unmarshal(changesRaw, &sc.Changes); err != nil {
		return nil, fmt.Errorf("changes is not a string array")
	}

	if err := requireNumber(raw, "deltaCost", &sc.DeltaCost); err != nil {
		return nil, err
	}
	if err := requireNumber(raw, "deltaWeeks", &sc.DeltaWeeks); err != nil {
		return nil, err
	}
	if err := requireString(raw, "reasoning", &sc.Reasoning); err != nil {
		return nil, err
	}

	return &sc, nil
}

func requireString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok {
		return fmt.Errorf("%s is missing", key)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("%s is not a string", key)
	}
	return nil
}

func requireNumber(raw map[string]json.RawMessage, key string, dst *float64) error {
	v, ok := raw[key]
	if !ok {
		return fmt.Errorf("%s is missing", key)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("%s is not a number", key)
	}
	return nil
}
