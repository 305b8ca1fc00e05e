// Package web holds the HTML templates of the dashboard pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page template.
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"contains": func(xs []string, x string) bool {
			for _, v := range xs {
				if v == x {
					return true
				}
			}
			return false
		},
		"num": func(x float64) string {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return ""
			}
			return strconv.FormatFloat(x, 'f', -1, 64)
		},
		"fixed": func(digits int, x float64) string {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return ""
			}
			return strconv.FormatFloat(x, 'f', digits, 64)
		},
		"pct": func(x float64) string {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return ""
			}
			return strconv.FormatFloat(x*100, 'f', 2, 64) + "%"
		},
	}
}
