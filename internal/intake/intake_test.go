package intake

import (
	"strings"
	"testing"
)

func validForm() *Form {
	return &Form{
		Sections: []Section{
			{
				Title:       "Project Goals",
				Description: "What success looks like",
				Questions: []Question{
					{ID: "primary_goal", Label: "What is the primary goal?", Type: TypeTextarea, Required: true},
					{ID: "launch_target", Label: "When do you need to launch?", Type: TypeRadio, Required: true,
						Options: []Option{
							{Label: "Within 3 months", Value: "3_months"},
							{Label: "Flexible", Value: "flexible"},
						}},
					{ID: "page_count", Label: "Roughly how many pages?", Type: TypeNumber},
					{ID: "features", Label: "Which features matter?", Type: TypeCheckbox,
						Options: []Option{
							{Label: "Blog", Value: "blog"},
							{Label: "Search", Value: "search"},
						}},
				},
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if errs := Validate(validForm()); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Form)
		wantSub string
	}{
		{"no sections", func(f *Form) { f.Sections = nil }, "no sections"},
		{"missing title", func(f *Form) { f.Sections[0].Title = "" }, "title is required"},
		{"no questions", func(f *Form) { f.Sections[0].Questions = nil }, "at least one question"},
		{"missing id", func(f *Form) { f.Sections[0].Questions[0].ID = "" }, "id is required"},
		{"bad type", func(f *Form) { f.Sections[0].Questions[0].Type = "slider" }, `invalid type "slider"`},
		{"choice without options", func(f *Form) { f.Sections[0].Questions[1].Options = nil }, "requires options"},
		{"duplicate id", func(f *Form) { f.Sections[0].Questions[2].ID = "primary_goal" }, "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(f)
			errs := Validate(f)
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantSub) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v missing %q", errs, tt.wantSub)
			}
		})
	}
}

func TestValidateResponses(t *testing.T) {
	f := validForm()

	tests := []struct {
		name      string
		responses map[string]interface{}
		wantSub   string // empty means valid
	}{
		{
			"valid full submission",
			map[string]interface{}{
				"primary_goal":  "Launch a marketing site",
				"launch_target": "3_months",
				"page_count":    float64(12),
				"features":      []interface{}{"blog"},
			},
			"",
		},
		{
			"missing required",
			map[string]interface{}{"launch_target": "flexible"},
			"primary_goal: this field is required",
		},
		{
			"unknown question",
			map[string]interface{}{"primary_goal": "x", "launch_target": "flexible", "bogus": "y"},
			"bogus: unknown question",
		},
		{
			"invalid radio option",
			map[string]interface{}{"primary_goal": "x", "launch_target": "next_week"},
			"launch_target: invalid option",
		},
		{
			"checkbox wrong shape",
			map[string]interface{}{"primary_goal": "x", "launch_target": "flexible", "features": "blog"},
			"features: must be an array",
		},
		{
			"checkbox invalid value",
			map[string]interface{}{"primary_goal": "x", "launch_target": "flexible", "features": []interface{}{"payments"}},
			"features: invalid option",
		},
		{
			"number wrong type",
			map[string]interface{}{"primary_goal": "x", "launch_target": "flexible", "page_count": "twelve"},
			"page_count: must be a number",
		},
		{
			"required blank text",
			map[string]interface{}{"primary_goal": "   ", "launch_target": "flexible"},
			"primary_goal: this field is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateResponses(f, tt.responses)
			if tt.wantSub == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			found := false
			for _, e := range errs {
				if strings.Contains(e, tt.wantSub) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v missing %q", errs, tt.wantSub)
			}
		})
	}
}

func TestFormatResponses(t *testing.T) {
	f := validForm()
	out := FormatResponses(f, map[string]interface{}{
		"primary_goal":  "Launch a marketing site",
		"launch_target": "3_months",
		"features":      []interface{}{"blog", "search"},
	})

	for _, want := range []string{
		"### Project Goals",
		"Q: What is the primary goal?",
		"A: Launch a marketing site",
		"A: blog, search",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Roughly how many pages?") {
		t.Error("unanswered question should be omitted")
	}
}
