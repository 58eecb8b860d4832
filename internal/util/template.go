package util

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

var templateFuncs = template.FuncMap{
	"default": func(fallback, val any) any {
		if val == nil || val == "" {
			return fallback
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join": func(sep string, items any) string {
		switch v := items.(type) {
		case []string:
			return strings.Join(v, sep)
		case []any:
			out := make([]string, len(v))
			for i, item := range v {
				out[i] = fmt.Sprint(item)
			}
			return strings.Join(out, sep)
		default:
			return fmt.Sprint(items)
		}
	},
}

// parsed caches instruction templates by source text; agents render the same
// instruction on every turn.
var parsed sync.Map

// RenderTemplate fills {{.field}} references in an instruction from vars.
// Missing keys render as empty. Use default to substitute absent values:
//
//	{{default "unknown" .user_location}}
func RenderTemplate(text string, vars map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	var tmpl *template.Template
	if cached, ok := parsed.Load(text); ok {
		tmpl = cached.(*template.Template)
	} else {
		t, err := template.New("instruction").Funcs(templateFuncs).Option("missingkey=zero").Parse(text)
		if err != nil {
			return "", err
		}
		parsed.Store(text, t)
		tmpl = t
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}
