package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/orrery-web/orrery/core"
	"github.com/orrery-web/orrery/web"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var siteFiles = web.Files

var InitCommand = &cli.Command{
	Name:      "init",
	Usage:     "Copy the embedded templates and assets to disk for editing",
	ArgsUsage: "[dir]",
	Flags: []cli.Flag{
		ConfigFlag(),
		&cli.BoolFlag{Name: "force", Usage: "overwrite files that already exist"},
	},
	Action: func(c *cli.Context) error {
		targetDir := c.Args().First()
		if targetDir == "" {
			targetDir = "web"
		}
		fmt.Println("🚀 Copying site files to:", targetDir)

		written, err := copyEmbeddedDir(siteFiles(), ".", targetDir, c.Bool("force"))
		if err != nil {
			return fmt.Errorf("failed to copy site files: %w", err)
		}
		fmt.Printf("📄 %d files written\n", written)

		cfgPath := configPath(c)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := writeConfig(cfgPath, targetDir); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Println("⚙️  Created", cfgPath)
		} else {
			fmt.Println("⚙️  Keeping existing", cfgPath)
		}

		fmt.Println("✅ Site files ready.")
		fmt.Println("▶  Run: orrery dev")
		return nil
	},
}

func writeConfig(path, siteDir string) error {
	cfg := core.Config{
		TemplateDir:  filepath.ToSlash(filepath.Join(siteDir, "templates")),
		StaticDir:    filepath.ToSlash(filepath.Join(siteDir, "static")),
		DebugHeaders: true,
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, out, 0o644)
}

func copyEmbeddedDir(source fs.FS, sourceDir, targetDir string, overwrite bool) (int, error) {
	written := 0
	err := fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0o755)
		}
		if filepath.Ext(path) == ".go" {
			return nil
		}

		if !overwrite {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(targetPath, data, 0o644); err != nil {
			return err
		}
		written++
		return nil
	})
	return written, err
}
