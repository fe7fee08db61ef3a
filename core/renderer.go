package core

import (
	"bytes"
	"html/template"
	"io/fs"
	"sync"
)

const (
	layoutFile     = "layout.html"
	componentsGlob = "components/*.html"
	layoutTemplate = "layout"
	ReloadPath     = "/__orrery_reload"
	ReloadMessage  = "reload"
)

type Renderer interface {
	Render(page Page) ([]byte, error)
}

type PageData struct {
	Title      string
	Page       string
	Path       string
	Env        string
	LiveReload bool
	ReloadPath string
	Pages      []Page
}

type RendererOptions struct {
	Env        string
	Reload     bool
	LiveReload bool
	Minify     bool
}

// TemplateRenderer renders pages/<name>.html inside layout.html, with every
// components/*.html available to it.
type TemplateRenderer struct {
	fsys   fs.FS
	assets *AssetStore
	funcs  template.FuncMap
	opts   RendererOptions

	mu     sync.Mutex
	parsed map[string]*template.Template
}

func NewTemplateRenderer(fsys fs.FS, assets *AssetStore, opts RendererOptions) *TemplateRenderer {
	return &TemplateRenderer{
		fsys:   fsys,
		assets: assets,
		funcs:  SiteTemplateFuncs(assets),
		opts:   opts,
		parsed: make(map[string]*template.Template),
	}
}

func (r *TemplateRenderer) Render(page Page) ([]byte, error) {
	tmpl, err := r.lookup(page)
	if err != nil {
		return nil, err
	}

	data := PageData{
		Title:      page.Title,
		Page:       page.Template,
		Path:       page.Path,
		Env:        r.opts.Env,
		LiveReload: r.opts.LiveReload,
		ReloadPath: ReloadPath,
		Pages:      Pages,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		return nil, &RenderError{Page: page.Template, Err: err}
	}

	out := buf.Bytes()
	if r.opts.Minify && r.assets != nil {
		out = r.assets.MinifyHTML(out)
	}
	return out, nil
}

func (r *TemplateRenderer) lookup(page Page) (*template.Template, error) {
	if r.opts.Reload {
		return r.parse(page)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tmpl, ok := r.parsed[page.Template]; ok {
		return tmpl, nil
	}

	tmpl, err := r.parse(page)
	if err != nil {
		return nil, err
	}
	r.parsed[page.Template] = tmpl
	return tmpl, nil
}

func (r *TemplateRenderer) parse(page Page) (*template.Template, error) {
	pagePath := page.TemplatePath()
	if _, err := fs.Stat(r.fsys, pagePath); err != nil {
		return nil, &RenderError{Page: page.Template, Err: ErrTemplateNotFound}
	}

	files, err := fs.Glob(r.fsys, componentsGlob)
	if err != nil {
		return nil, &RenderError{Page: page.Template, Err: err}
	}
	files = append([]string{layoutFile}, files...)
	files = append(files, pagePath)

	tmpl, err := template.New(page.Template).Funcs(r.funcs).ParseFS(r.fsys, files...)
	if err != nil {
		return nil, &RenderError{Page: page.Template, Err: err}
	}
	return tmpl, nil
}

func (r *TemplateRenderer) Reset() {
	r.mu.Lock()
	r.parsed = make(map[string]*template.Template)
	r.mu.Unlock()
}
