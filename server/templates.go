package server

import (
	"embed"
	"html/template"
	"io/fs"
	"sync"
)

//go:embed templates/*
var templateFiles embed.FS

// Templates are static per deployment, so parsed templates are cached
// for the process lifetime and never invalidated.
var (
	templateMu    sync.Mutex
	templateCache = make(map[string]*template.Template)
)

// ParseTemplate returns the parsed template for name, parsing it from
// the embedded filesystem on first access.
func ParseTemplate(name string) (*template.Template, error) {
	templateMu.Lock()
	defer templateMu.Unlock()

	if tmpl, ok := templateCache[name]; ok {
		return tmpl, nil
	}
	content, err := fs.ReadFile(templateFiles, "templates/"+name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, err
	}
	templateCache[name] = tmpl
	return tmpl, nil
}
