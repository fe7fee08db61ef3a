package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/orrery-web/orrery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestCopyEmbeddedDir(t *testing.T) {
	src := fstest.MapFS{
		"templates/layout.html":   {Data: []byte("layout")},
		"static/css/site.css":     {Data: []byte("body{}")},
		"embed.go":                {Data: []byte("package web")},
		"static/js/simulation.js": {Data: []byte("//")},
	}
	dir := t.TempDir()

	n, err := copyEmbeddedDir(src, ".", dir, false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.FileExists(t, filepath.Join(dir, "templates", "layout.html"))
	assert.FileExists(t, filepath.Join(dir, "static", "css", "site.css"))
	assert.NoFileExists(t, filepath.Join(dir, "embed.go"))
}

func TestCopyEmbeddedDir_KeepsExistingFiles(t *testing.T) {
	src := fstest.MapFS{"templates/layout.html": {Data: []byte("new")}}
	dir := t.TempDir()
	target := filepath.Join(dir, "templates", "layout.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("edited"), 0o644))

	n, err := copyEmbeddedDir(src, ".", dir, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	data, _ := os.ReadFile(target)
	assert.Equal(t, "edited", string(data))

	n, err = copyEmbeddedDir(src, ".", dir, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	data, _ = os.ReadFile(target)
	assert.Equal(t, "new", string(data))
}

func TestInitCommand_WritesSiteAndConfig(t *testing.T) {
	dir := t.TempDir()
	siteDir := filepath.Join(dir, "site")
	configPath := filepath.Join(dir, "orrery.config.yml")

	app := &cli.App{Commands: []*cli.Command{InitCommand}}
	var err error
	out := captureOutput(t, func() {
		err = app.Run([]string{"orrery", "init", "--config", configPath, siteDir})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+configPath)
	assert.Contains(t, out, "Site files ready.")

	for _, name := range []string{
		"templates/layout.html",
		"templates/pages/simulation.html",
		"static/js/sandbox.js",
		"static/robots.txt",
	} {
		_, err := fs.Stat(os.DirFS(siteDir), name)
		assert.NoError(t, err, name)
	}

	config := core.LoadConfig(configPath)
	assert.Equal(t, filepath.ToSlash(filepath.Join(siteDir, "templates")), config.TemplateDir)
	assert.Equal(t, filepath.ToSlash(filepath.Join(siteDir, "static")), config.StaticDir)
	assert.True(t, config.DebugHeaders)
	assert.True(t, config.MinifyEnabled())
}

func TestInitCommand_KeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "orrery.config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("debugHeaders: false\n"), 0o644))

	app := &cli.App{Commands: []*cli.Command{InitCommand}}
	var err error
	out := captureOutput(t, func() {
		err = app.Run([]string{"orrery", "init", "--config", configPath, filepath.Join(dir, "site")})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Keeping existing")

	data, _ := os.ReadFile(configPath)
	assert.Equal(t, "debugHeaders: false\n", string(data))
}
