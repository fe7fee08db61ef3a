package core

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func staticFS() fstest.MapFS {
	return fstest.MapFS{
		"css/site.css":   {Data: []byte("body {  color : red ; }\n")},
		"js/main.js":     {Data: []byte("var   answer = 40 + 2 ;\n")},
		"js/app.min.js":  {Data: []byte("var   keep = 1 ;")},
		"js/broken.js":   {Data: []byte("function(){")},
		"img/planet.png": {Data: []byte("png")},
	}
}

func TestAssetStore_DevServesOriginalBytes(t *testing.T) {
	store := NewAssetStore(staticFS(), "dev", true)

	a, err := store.Get("css/site.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a.Body) != "body {  color : red ; }\n" {
		t.Errorf("expected original css in dev, got %q", a.Body)
	}
	if a.Gzip != nil {
		t.Error("expected no gzip variant in dev")
	}
}

func TestAssetStore_DevRereadsChanges(t *testing.T) {
	fsys := staticFS()
	store := NewAssetStore(fsys, "dev", true)

	first, _ := store.Get("js/main.js")
	fsys["js/main.js"] = &fstest.MapFile{Data: []byte("var changed = true;")}
	second, _ := store.Get("js/main.js")

	if first.Version == second.Version {
		t.Error("expected version to change after the file changed")
	}
}

func TestAssetStore_ProdMinifiesAndCaches(t *testing.T) {
	fsys := staticFS()
	store := NewAssetStore(fsys, "prod", true)

	a, err := store.Get("css/site.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a.Body) != "body{color:red}" {
		t.Errorf("expected minified css, got %q", a.Body)
	}

	gz, err := gzip.NewReader(bytes.NewReader(a.Gzip))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	unzipped, _ := io.ReadAll(gz)
	if !bytes.Equal(unzipped, a.Body) {
		t.Error("gzip variant does not match body")
	}

	fsys["css/site.css"] = &fstest.MapFile{Data: []byte("p { margin: 0 }")}
	again, _ := store.Get("css/site.css")
	if again != a {
		t.Error("expected prod asset to be served from memory")
	}

	store.Reset()
	reloaded, err := store.Get("css/site.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(reloaded.Body) != "p{margin:0}" {
		t.Errorf("expected edited css after reset, got %q", reloaded.Body)
	}
}

func TestAssetStore_ProdMinifyDisabled(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", false)

	a, _ := store.Get("js/main.js")
	if string(a.Body) != "var   answer = 40 + 2 ;\n" {
		t.Errorf("expected unminified js, got %q", a.Body)
	}
	if a.Gzip == nil {
		t.Error("expected gzip variant in prod")
	}
}

func TestAssetStore_AlreadyMinifiedUntouched(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	a, _ := store.Get("js/app.min.js")
	if string(a.Body) != "var   keep = 1 ;" {
		t.Errorf("expected .min.js untouched, got %q", a.Body)
	}
}

func TestAssetStore_MinifyErrorServesOriginal(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	a, err := store.Get("js/broken.js")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(a.Body) != "function(){" {
		t.Errorf("expected original for minify error, got %q", a.Body)
	}
}

func TestAssetStore_UnsupportedExtensionUntouched(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	a, _ := store.Get("img/planet.png")
	if string(a.Body) != "png" || a.ContentType != "image/png" {
		t.Errorf("unexpected asset: %q %q", a.Body, a.ContentType)
	}
}

func TestAssetStore_RejectsInvalidPaths(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	for _, name := range []string{"../secret", "/abs", "js/../../x"} {
		if _, err := store.Get(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestAssetStore_URLVersioned(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	result := store.URL("/static/js/main.js")
	if !strings.HasPrefix(result, "/static/js/main.js?v=") {
		t.Errorf("unexpected versioned path: %s", result)
	}
	if len(strings.TrimPrefix(result, "/static/js/main.js?v=")) != 6 {
		t.Errorf("expected 6 char version, got %s", result)
	}
}

func TestAssetStore_URLFallback(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	for _, input := range []string{"/static/missing.js", "https://cdn.example.com/three.js", "/other/x.js"} {
		if result := store.URL(input); result != input {
			t.Errorf("expected fallback to original path, got %s", result)
		}
	}
}

func TestAssetStore_MinifyHTML(t *testing.T) {
	store := NewAssetStore(staticFS(), "prod", true)

	out := store.MinifyHTML([]byte("<html>\n  <body>\n    <p>  hi  </p>\n  </body>\n</html>\n"))
	if bytes.Contains(out, []byte("\n  ")) {
		t.Errorf("expected whitespace collapsed, got %q", out)
	}
	if !bytes.Contains(out, []byte("hi")) {
		t.Errorf("expected content kept, got %q", out)
	}
}

func TestSiteTemplateFuncs_year(t *testing.T) {
	original := now
	now = func() time.Time { return time.Date(1969, time.July, 20, 20, 17, 0, 0, time.UTC) }
	t.Cleanup(func() { now = original })

	year := SiteTemplateFuncs(NewAssetStore(staticFS(), "dev", false))["year"].(func() int)

	if got := year(); got != 1969 {
		t.Errorf("expected 1969, got %d", got)
	}
}

func TestSiteTemplateFuncs_includesSprig(t *testing.T) {
	funcs := SiteTemplateFuncs(NewAssetStore(staticFS(), "dev", false))

	for _, name := range []string{"upper", "default", "asset", "year"} {
		if _, ok := funcs[name]; !ok {
			t.Errorf("expected %q in func map", name)
		}
	}
}

func TestDetectMimeType(t *testing.T) {
	tests := map[string]string{
		"file.css":     "text/css; charset=utf-8",
		"script.js":    "application/javascript",
		"robots.txt":   "text/plain; charset=utf-8",
		"image.webp":   "image/webp",
		"icon.svg":     "image/svg+xml",
		"photo.png":    "image/png",
		"photo.jpeg":   "image/jpeg",
		"earth.glb":    "model/gltf-binary",
		"font.woff":    "font/woff",
		"font.woff2":   "font/woff2",
		"unknown.file": "application/octet-stream",
	}

	for filename, expected := range tests {
		t.Run(filename, func(t *testing.T) {
			if mime := DetectMimeType(filename); mime != expected {
				t.Errorf("got %s, want %s", mime, expected)
			}
		})
	}
}
