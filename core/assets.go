package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	minjs "github.com/tdewolff/minify/v2/js"
)

var now = time.Now

type Asset struct {
	Name        string
	Body        []byte
	Gzip        []byte
	ContentType string
	Version     string
}

// AssetStore serves files out of the static filesystem. In prod it minifies
// CSS and JS once and keeps gzip variants in memory.
type AssetStore struct {
	fsys   fs.FS
	env    string
	minify bool
	m      *minify.M

	mu     sync.RWMutex
	assets map[string]*Asset
}

func NewAssetStore(fsys fs.FS, env string, minifyOutput bool) *AssetStore {
	return &AssetStore{
		fsys:   fsys,
		env:    env,
		minify: minifyOutput,
		m:      newMinifier(),
		assets: make(map[string]*Asset),
	}
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("text/html", minhtml.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), minjs.Minify)
	return m
}

func (s *AssetStore) FS() fs.FS {
	return s.fsys
}

// Get returns the named asset. Names are relative to the static root and
// must be valid fs paths.
func (s *AssetStore) Get(name string) (*Asset, error) {
	if !fs.ValidPath(name) {
		return nil, fs.ErrInvalid
	}

	if s.env == "prod" {
		s.mu.RLock()
		a, ok := s.assets[name]
		s.mu.RUnlock()
		if ok {
			return a, nil
		}
	}

	a, err := s.load(name)
	if err != nil {
		return nil, err
	}

	if s.env == "prod" {
		s.mu.Lock()
		s.assets[name] = a
		s.mu.Unlock()
	}
	return a, nil
}

func (s *AssetStore) Reset() {
	s.mu.Lock()
	s.assets = make(map[string]*Asset)
	s.mu.Unlock()
}

func (s *AssetStore) load(name string) (*Asset, error) {
	original, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, err
	}

	a := &Asset{
		Name:        name,
		Body:        original,
		ContentType: DetectMimeType(name),
	}

	if s.env == "prod" {
		if s.minify {
			a.Body = s.minifyAsset(name, original)
		}
		a.Gzip = gzipBytes(a.Body)
	}

	a.Version = shortHash(a.Body)
	return a, nil
}

func (s *AssetStore) minifyAsset(name string, original []byte) []byte {
	var mediaType string
	switch path.Ext(name) {
	case ".css":
		mediaType = "text/css"
	case ".js":
		mediaType = "application/javascript"
	default:
		return original
	}

	if strings.Contains(path.Base(name), ".min.") {
		return original
	}

	var buf bytes.Buffer
	if err := s.m.Minify(mediaType, &buf, bytes.NewReader(original)); err != nil {
		Log().Sugar().Warnw("asset minify failed, serving original", "asset", name, "error", err)
		return original
	}
	return buf.Bytes()
}

// URL turns "/static/js/main.js" into "/static/js/main.js?v=1a2b3c".
func (s *AssetStore) URL(p string) string {
	if !strings.HasPrefix(p, "/static/") {
		return p
	}

	a, err := s.Get(strings.TrimPrefix(p, "/static/"))
	if err != nil {
		return p
	}

	var out strings.Builder
	fmt.Fprintf(&out, "%s?v=%s", p, a.Version)
	return out.String()
}

func (s *AssetStore) MinifyHTML(html []byte) []byte {
	var buf bytes.Buffer
	if err := s.m.Minify("text/html", &buf, bytes.NewReader(html)); err != nil {
		return html
	}
	return buf.Bytes()
}

func SiteTemplateFuncs(assets *AssetStore) template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["asset"] = assets.URL
	funcs["year"] = func() int {
		return now().Year()
	}
	return funcs
}

func DetectMimeType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".html":
		return "text/html; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".json":
		return "application/json"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".ico":
		return "image/x-icon"
	case ".glb":
		return "model/gltf-binary"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}

func shortHash(b []byte) string {
	h := md5.New()
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))[:6]
}

func gzipBytes(b []byte) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(b); err != nil {
		return nil
	}
	if err := gz.Close(); err != nil {
		return nil
	}
	return buf.Bytes()
}
