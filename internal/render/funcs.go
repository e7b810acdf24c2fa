package render

import (
	"strconv"
	"strings"
	"text/template"
)

// Versions in the render context are float64, so comparisons are numeric.
var funcMap = template.FuncMap{
	"versionAtLeast": func(min, v float64) bool { return v >= min },
	"versionBelow":   func(max, v float64) bool { return v < max },
	"join":           func(sep string, items []string) string { return strings.Join(items, sep) },
	"lower":          strings.ToLower,
	"upper":          strings.ToUpper,
	"quote":          strconv.Quote,
	"default":        defaultValue,
}

// defaultValue returns def when v is nil or an empty string.
func defaultValue(def, v any) any {
	switch val := v.(type) {
	case nil:
		return def
	case string:
		if val == "" {
			return def
		}
	}
	return v
}
