package web

import (
	"embed"
	"html/template"
	"sync"
)

//go:embed *.html
var content embed.FS

var (
	tmpl *template.Template
	once sync.Once
)

// Templates returns the parsed page templates, embedded at build time.
// Pages are executed by file name: index.html, analyze.html.
func Templates() *template.Template {
	once.Do(func() {
		tmpl = template.Must(template.ParseFS(content, "*.html"))
	})
	return tmpl
}
