package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/folio/internal/store"
)

// text reads a string field. Numbers are formatted; anything else is "".
func text(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return ""
	}
}

func textOr(fields map[string]any, key, fallback string) string {
	if s := text(fields, key); s != "" {
		return s
	}
	return fallback
}

// flag reads a checkbox field.
func flag(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// list reads a list field. The store client has already split comma-encoded
// values; raw strings are still accepted for sources that bypass it.
func list(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return nonEmpty(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return nonEmpty(out)
	case string:
		return nonEmpty(store.SplitList(v))
	default:
		return []string{}
	}
}

// attachment reads an image field holding either an attachment array
// ([{url: ...}]), a list of refs or a plain ref, and returns the first ref.
func attachment(fields map[string]any, key string) string {
	refs := attachments(fields, key)
	if len(refs) == 0 {
		return ""
	}
	return refs[0]
}

// attachments reads every ref of an image field.
func attachments(fields map[string]any, key string) []string {
	v, ok := fields[key].([]any)
	if !ok {
		return list(fields, key)
	}
	out := make([]string, 0, len(v))
	for _, x := range v {
		switch a := x.(type) {
		case string:
			if s := strings.TrimSpace(a); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if u, ok := a["url"].(string); ok && strings.TrimSpace(u) != "" {
				out = append(out, strings.TrimSpace(u))
			}
		}
	}
	return out
}

func nonEmpty(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if x = strings.TrimSpace(x); x != "" {
			out = append(out, x)
		}
	}
	return out
}
