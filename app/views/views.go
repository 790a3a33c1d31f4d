// Package views renders the HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed templates
var files embed.FS

// Page names accepted by Render.
const (
	Index      = "posts/index"
	GroupList  = "posts/group_list"
	Profile    = "posts/profile"
	PostDetail = "posts/post_detail"
	CreatePost = "posts/create_post"
	Follow     = "posts/follow"
	NotFound   = "core/404"
)

var pages = []string{Index, GroupList, Profile, PostDetail, CreatePost, Follow, NotFound}

var shared = []string{
	"templates/layout.html",
	"templates/includes/post_card.html",
	"templates/includes/paginator.html",
}

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"truncate": truncate,
	"naturaltime": func(t time.Time) string {
		return humanize.Time(t)
	},
	"media": func(key string) string {
		return "/media/" + (&url.URL{Path: key}).EscapedPath()
	},
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if n < 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Renderer executes the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	return Load(files)
}

// Load parses templates from fsys, which must have the embedded layout.
func Load(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		patterns := append(append([]string{}, shared...), "templates/"+name+".html")
		t, err := template.New(name).Funcs(Funcs).ParseFS(fsys, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the named page. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
