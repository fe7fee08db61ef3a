package cli

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/orrery-web/orrery/core"
	"github.com/orrery-web/orrery/web"
	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"
)

type routeInfo struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Template string `json:"template"`
}

type siteInfo struct {
	ConfigPath   string      `json:"configPath"`
	Templates    string      `json:"templates"`
	Static       string      `json:"static"`
	DebugHeaders bool        `json:"debugHeaders"`
	Minify       bool        `json:"minify"`
	Routes       []routeInfo `json:"routes"`
	TemplateN    int         `json:"templateFiles"`
	AssetN       int         `json:"assetFiles"`
}

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print the route table and site configuration",
	Flags: []cli.Flag{
		ConfigFlag(),
		&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
	},
	Action: func(c *cli.Context) error {
		cfgPath := configPath(c)
		config := core.LoadConfig(cfgPath)

		info := siteInfo{
			ConfigPath:   cfgPath,
			Templates:    sourceLabel(config.TemplateDir),
			Static:       sourceLabel(config.StaticDir),
			DebugHeaders: config.DebugHeaders,
			Minify:       config.MinifyEnabled(),
			TemplateN:    countFiles(web.Resolve(config.TemplateDir, web.Templates)),
			AssetN:       countFiles(web.Resolve(config.StaticDir, web.Static)),
		}
		for _, p := range core.Pages {
			info.Routes = append(info.Routes, routeInfo{Method: "GET", Path: p.Path, Template: p.TemplatePath()})
		}

		if c.Bool("json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Println("⚙️  Config:", info.ConfigPath)
		fmt.Println("📁 Templates:", info.Templates)
		fmt.Println("📁 Static:", info.Static)
		fmt.Println("🔁 Debug Headers Enabled:", info.DebugHeaders)
		fmt.Println("🗜️  Minify:", info.Minify)
		fmt.Println()

		fmt.Println("🗂️  Routes:")
		for _, r := range info.Routes {
			fmt.Printf("   %s %-12s → %s\n", r.Method, r.Path, r.Template)
		}
		fmt.Println()
		fmt.Println("📄 Template Files:", info.TemplateN)
		fmt.Println("📦 Static Files:", info.AssetN)

		return nil
	},
}

func sourceLabel(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

func countFiles(fsys fs.FS) int {
	n := 0
	fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return nil
	})
	return n
}
