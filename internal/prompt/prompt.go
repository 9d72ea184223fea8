// Package prompt fills the fixed LLM prompt templates. The source text passed
// to every template is cut to that call site's character budget first.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"lesson-byte/internal/logger"

	"go.uber.org/zap"
)

// Vars are the values a template may reference. Context is the only field
// subject to truncation.
type Vars struct {
	Concept       string
	Context       string
	Scenario      string
	Answer        string
	QuestionCount int
	OptionCount   int
}

// Budgets maps a template id to the maximum number of context characters.
type Budgets map[string]int

// Registry holds parsed templates and their budgets.
type Registry struct {
	templates map[string]*template.Template
	budgets   Budgets
}

// NewRegistry parses the built-in templates. Budgets missing an id leave the
// context for that id untruncated.
func NewRegistry(budgets Budgets) (*Registry, error) {
	r := &Registry{
		templates: make(map[string]*template.Template, len(builtinTemplates)),
		budgets:   budgets,
	}
	for id, text := range builtinTemplates {
		tmpl, err := template.New(id).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", id, err)
		}
		r.templates[id] = tmpl
	}
	return r, nil
}

// Budget returns the context budget for id, or 0 when unlimited.
func (r *Registry) Budget(id string) int {
	return r.budgets[id]
}

// Render fills template id with vars after truncating vars.Context to the
// template's budget.
func (r *Registry) Render(id string, vars Vars) (string, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", id)
	}

	if budget := r.budgets[id]; budget > 0 {
		original := len([]rune(vars.Context))
		vars.Context = Truncate(vars.Context, budget)
		if original > budget {
			logger.Get().Debug("Truncated prompt context",
				zap.String("template", id),
				zap.Int("original_chars", original),
				zap.Int("kept_chars", budget))
		}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", id, err)
	}
	return sb.String(), nil
}

// Truncate returns the first n characters of s. Characters are runes, so a
// multi-byte character is never split.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
