package cli

import (
	"fmt"

	"github.com/orrery-web/orrery/core"
	"github.com/orrery-web/orrery/web"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and render every page template",
	Flags: []cli.Flag{ConfigFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(configPath(c))

		templates := web.Resolve(config.TemplateDir, web.Templates)
		static := web.Resolve(config.StaticDir, web.Static)
		renderer := core.NewTemplateRenderer(templates, core.NewAssetStore(static, "dev", false), core.RendererOptions{
			Env:    "dev",
			Reload: true,
		})

		var failed bool
		for _, page := range core.Pages {
			out, err := renderer.Render(page)
			switch {
			case err != nil:
				failed = true
				fmt.Printf("❌ %s → %v\n", page.Path, err)
			case len(out) == 0:
				failed = true
				fmt.Printf("❌ %s → rendered an empty page\n", page.Path)
			default:
				fmt.Printf("✅ %s (%s)\n", page.Path, page.TemplatePath())
			}
		}

		if failed {
			return cli.Exit("some templates failed to render", 1)
		}

		fmt.Println("✅ All templates validated successfully.")
		return nil
	},
}
