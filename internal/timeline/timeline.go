// Package timeline defines the baseline project timeline schema and its
// AI-assisted generation.
package timeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Phase is one stage of a project timeline. Dependencies reference other
// phase IDs within the same timeline.
type Phase struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	DurationWeeks float64  `json:"duration_weeks"`
	Tasks         []string `json:"tasks"`
	Dependencies  []string `json:"dependencies"`
}

// Data is the full timeline payload stored on a ProjectTimeline row.
// TotalWeeks/TotalHours/TotalCost are generated alongside the phases and
// become the authoritative display values once persisted.
type Data struct {
	Phases      []Phase  `json:"phases"`
	TotalWeeks  float64  `json:"total_weeks"`
	TotalHours  float64  `json:"total_hours"`
	TotalCost   float64  `json:"total_cost"`
	Assumptions []string `json:"assumptions"`
	Risks       []string `json:"risks"`
}

// Parse decodes a stored timeline JSON payload.
func Parse(raw string) (*Data, error) {
	var d Data
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("timeline: parse: %w", err)
	}
	return &d, nil
}

// Encode serializes a timeline payload for storage.
func (d *Data) Encode() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("timeline: encode: %w", err)
	}
	return string(raw), nil
}

// Validate checks that a timeline is structurally sound. Returns a list of
// validation errors (empty if valid).
func Validate(d *Data) []string {
	if d == nil {
		return []string{"timeline is nil"}
	}

	var errs []string

	if len(d.Phases) == 0 {
		errs = append(errs, "timeline has no phases")
	}

	ids := make(map[string]bool)
	for i, p := range d.Phases {
		if p.ID == "" {
			errs = append(errs, fmt.Sprintf("phases[%d]: id is required", i))
		}
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("phases[%d] (%s): name is required", i, p.ID))
		}
		if p.DurationWeeks <= 0 {
			errs = append(errs, fmt.Sprintf("phases[%d] (%s): duration_weeks must be positive", i, p.ID))
		}
		if len(p.Tasks) == 0 {
			errs = append(errs, fmt.Sprintf("phases[%d] (%s): at least one task is required", i, p.ID))
		}
		if ids[p.ID] {
			errs = append(errs, fmt.Sprintf("phases[%d]: duplicate id %q", i, p.ID))
		}
		ids[p.ID] = true
	}

	for i, p := range d.Phases {
		for _, dep := range p.Dependencies {
			if dep == p.ID {
				errs = append(errs, fmt.Sprintf("phases[%d] (%s): phase cannot depend on itself", i, p.ID))
			} else if !ids[dep] {
				errs = append(errs, fmt.Sprintf("phases[%d] (%s): dependency %q not found", i, p.ID, dep))
			}
		}
	}

	if cycle := detectCycle(d.Phases); cycle != nil {
		errs = append(errs, fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")))
	}

	if d.TotalWeeks <= 0 {
		errs = append(errs, "total_weeks must be positive")
	}
	if d.TotalHours <= 0 {
		errs = append(errs, "total_hours must be positive")
	}
	if d.TotalCost <= 0 {
		errs = append(errs, "total_cost must be positive")
	}

	return errs
}

// SumPhaseWeeks returns the sum of phase durations. The stored TotalWeeks
// may legitimately differ (parallel phases); callers use this only as a
// sanity signal, never to overwrite stored totals.
func SumPhaseWeeks(d *Data) float64 {
	var sum float64
	for _, p := range d.Phases {
		sum += p.DurationWeeks
	}
	return sum
}

// detectCycle checks for cycles in the phase dependency graph. Returns the
// cycle path if found, nil if none.
func detectCycle(phases []Phase) []string {
	graph := make(map[string][]string)
	for _, p := range phases {
		graph[p.ID] = append(graph[p.ID], p.Dependencies...)
	}

	// DFS with coloring: 0=unvisited, 1=in-progress, 2=done.
	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = 1
		for _, next := range graph[node] {
			if color[next] == 1 {
				path := []string{next, node}
				for cur := node; cur != next; {
					cur = parent[cur]
					if cur == "" {
						break
					}
					path = append(path, cur)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				path = append(path, path[0])
				return path
			}
			if color[next] == 0 {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = 2
		return nil
	}

	for _, p := range phases {
		if color[p.ID] == 0 {
			if cycle := dfs(p.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
