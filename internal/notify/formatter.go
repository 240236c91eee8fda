package notify

import (
	"fmt"
	"regexp"
	"sort"

	"umkmorder/internal/entity"
)

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

type Formatter struct {
	templates map[string]string
}

// NewFormatter layers overrides on top of DefaultTemplates. Empty override
// values are ignored.
func NewFormatter(overrides map[string]string) *Formatter {
	templates := DefaultTemplates()
	for key, tmpl := range overrides {
		if tmpl != "" {
			templates[key] = tmpl
		}
	}
	return &Formatter{templates: templates}
}

// Render substitutes every {name} placeholder found in vars. Placeholders
// without a value are left as they are.
func (f *Formatter) Render(key string, vars map[string]string) (string, error) {
	const op = "notify.Formatter.Render"

	tmpl, ok := f.templates[key]
	if !ok {
		return "", fmt.Errorf("%s: template %q: %w", op, key, entity.ErrDataNotFound)
	}

	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	}), nil
}

func (f *Formatter) Keys() []string {
	keys := make([]string, 0, len(f.templates))
	for k := range f.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
