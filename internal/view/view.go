// Package view renders the HTML pages from embedded templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates
var files embed.FS

const layout = "layouts/base.html"

// Renderer holds one parsed template set per page, each sharing the layout
// and the includes.
type Renderer struct {
	pages map[string]*template.Template
}

// ImageURL maps a storage key to a public URL.
type ImageURL func(key string) string

func New(imageURL ImageURL) (*Renderer, error) {
	root, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, err
	}
	funcs := Funcs(imageURL)
	shared, err := fs.Glob(root, "includes/*.html")
	if err != nil {
		return nil, err
	}
	shared = append([]string{layout}, shared...)

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, dir := range []string{"posts", "users", "core"} {
		pages, err := fs.Glob(root, dir+"/*.html")
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			t, err := template.New(path.Base(page)).Funcs(funcs).ParseFS(root, append(shared, page)...)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", page, err)
			}
			r.pages[page] = t
		}
	}
	return r, nil
}

// Render executes page into w. Nothing is written when execution fails.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	body, err := r.Bytes(page, data)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func (r *Renderer) Bytes(page string, data any) ([]byte, error) {
	t, ok := r.pages[page]
	if !ok {
		return nil, fmt.Errorf("view: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layout, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Funcs(imageURL ImageURL) template.FuncMap {
	return template.FuncMap{
		"imageURL": func(key string) string {
			if key == "" || imageURL == nil {
				return ""
			}
			return imageURL(key)
		},
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"linebreaksbr": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(s)
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
		"truncate": func(n int, s string) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "…"
		},
		"idstr": func(id any) string {
			return fmt.Sprint(id)
		},
	}
}
