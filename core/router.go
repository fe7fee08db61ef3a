package core

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type RuntimeContext struct {
	Env       string
	Templates fs.FS
	Assets    *AssetStore
}

type Resetter interface {
	Reset()
}

type Router struct {
	config   Config
	env      string
	renderer Renderer
	cache    *PageCache
	mux      *http.ServeMux
}

var NewRouter = func(config Config, ctx RuntimeContext) http.Handler {
	dev := ctx.Env == "dev"
	renderer := NewTemplateRenderer(ctx.Templates, ctx.Assets, RendererOptions{
		Env:        ctx.Env,
		Reload:     dev,
		LiveReload: dev,
		Minify:     !dev && config.MinifyEnabled(),
	})
	return newRouter(config, ctx.Env, renderer)
}

func newRouter(config Config, env string, renderer Renderer) *Router {
	r := &Router{
		config:   config,
		env:      env,
		renderer: renderer,
		cache:    NewPageCache(),
		mux:      http.NewServeMux(),
	}

	for _, page := range Pages {
		r.mux.HandleFunc(page.Pattern(), r.pageHandler(page))
	}

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) pageHandler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.servePage(w, req, page)
	}
}

func (r *Router) servePage(w http.ResponseWriter, req *http.Request, page Page) {
	if r.config.DebugHeaders {
		w.Header().Set("X-Orrery-Template", page.TemplatePath())
	}

	if r.env != "dev" {
		if cached, ok := r.cache.Get(page.Template); ok {
			r.writeCached(w, req, cached, "HIT")
			return
		}
	}

	html, err := r.renderer.Render(page)
	if err != nil {
		r.renderError(w, req, page, err)
		return
	}

	if r.env != "dev" {
		r.writeCached(w, req, r.cache.Put(page.Template, html), "MISS")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func (r *Router) writeCached(w http.ResponseWriter, req *http.Request, page *CachedPage, state string) {
	h := w.Header()
	if r.config.DebugHeaders {
		h.Set("X-Orrery-Cache", state)
	}
	h.Set("Cache-Control", "no-cache")
	h.Set("Vary", "Accept-Encoding")

	body, etag := page.HTML, page.ETag
	gz := AcceptsGzip(req) && page.Gzip != nil
	if gz {
		body, etag = page.Gzip, page.GzipETag
	}
	h.Set("ETag", etag)

	if etagMatches(req.Header.Get("If-None-Match"), page.ETag, page.GzipETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", "text/html; charset=utf-8")
	if gz {
		h.Set("Content-Encoding", "gzip")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Reset drops every cached page and parsed template so the next request
// renders from the current files.
func (r *Router) Reset() {
	r.cache.Reset()
	if rs, ok := r.renderer.(Resetter); ok {
		rs.Reset()
	}
}

func (r *Router) renderError(w http.ResponseWriter, req *http.Request, page Page, err error) {
	Log().Error("page render failed",
		zap.String("page", page.Template),
		zap.String("path", req.URL.Path),
		zap.Bool("not_found", IsNotFoundError(err)),
		zap.Error(err),
	)

	if r.env != "dev" {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprint(w, debugErrorPage(page, err))
}

func debugErrorPage(page Page, err error) string {
	var re *RenderError
	detail := err.Error()
	if errors.As(err, &re) {
		detail = re.Err.Error()
	}

	var b strings.Builder
	b.WriteString("<!doctype html><html><head><title>Template error</title></head><body>")
	fmt.Fprintf(&b, "<h1>500: template %s failed</h1>", template.HTMLEscapeString(page.TemplatePath()))
	fmt.Fprintf(&b, "<pre>%s</pre>", template.HTMLEscapeString(detail))
	b.WriteString("</body></html>")
	return b.String()
}

func AcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

func etagMatches(header string, etags ...string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(candidate), "W/"))
		if candidate == "*" {
			return true
		}
		for _, etag := range etags {
			if candidate == etag {
				return true
			}
		}
	}
	return false
}
