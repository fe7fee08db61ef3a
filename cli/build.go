package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/orrery-web/orrery/core"
	"github.com/orrery-web/orrery/web"
	"github.com/urfave/cli/v2"
)

var osWriteFileFunc = os.WriteFile
var osMkdirAllFunc = os.MkdirAll

var BuildCommand = &cli.Command{
	Name:      "build",
	Usage:     "Render every page and the static assets into a directory for static hosting",
	ArgsUsage: "[dir]",
	Flags:     []cli.Flag{ConfigFlag()},
	Action: func(c *cli.Context) error {
		outDir := c.Args().First()
		if outDir == "" {
			outDir = "dist"
		}

		config := core.LoadConfig(configPath(c))
		static := web.Resolve(config.StaticDir, web.Static)
		assets := core.NewAssetStore(static, "prod", config.MinifyEnabled())
		renderer := core.NewTemplateRenderer(web.Resolve(config.TemplateDir, web.Templates), assets, core.RendererOptions{
			Env:    "prod",
			Minify: config.MinifyEnabled(),
		})

		fmt.Println("📦 Building site into:", outDir)

		for _, page := range core.Pages {
			html, err := renderer.Render(page)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", page.Path, err)
			}
			target := filepath.Join(outDir, filepath.FromSlash(pageFile(page)))
			if err := writeFile(target, html); err != nil {
				return fmt.Errorf("failed to write %s: %w", page.Path, err)
			}
			fmt.Println("🔧 Rendered:", target)
		}

		n, err := exportAssets(assets, outDir)
		if err != nil {
			return err
		}
		fmt.Printf("🗂️  Copied %d static files\n", n)

		fmt.Println("✅ Site built successfully.")
		return nil
	},
}

// pageFile maps a route to the index.html a static host serves for it.
func pageFile(page core.Page) string {
	return path.Join(page.Path, "index.html")[1:]
}

func exportAssets(assets *core.AssetStore, outDir string) (int, error) {
	n := 0
	err := fs.WalkDir(assets.FS(), ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		a, err := assets.Get(name)
		if err != nil {
			return fmt.Errorf("failed to load asset %s: %w", name, err)
		}

		target := filepath.Join(outDir, "static", filepath.FromSlash(name))
		if name == "robots.txt" {
			target = filepath.Join(outDir, name)
		}
		if err := writeFile(target, a.Body); err != nil {
			return fmt.Errorf("failed to write asset %s: %w", name, err)
		}
		n++
		return nil
	})
	return n, err
}

func writeFile(target string, data []byte) error {
	if err := osMkdirAllFunc(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return osWriteFileFunc(target, data, 0o644)
}
