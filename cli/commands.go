package cli

import (
	"fmt"

	"github.com/orrery-web/orrery"
	"github.com/orrery-web/orrery/core"
	"github.com/urfave/cli/v2"
)

func ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "interface to listen on",
			Value:   orrery.DefaultHost,
			EnvVars: []string{"ORRERY_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "port to listen on",
			Value:   orrery.DefaultPort,
			EnvVars: []string{"ORRERY_PORT"},
		},
		ConfigFlag(),
	}
}

func ConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the site config",
		Value:   core.DefaultConfigPath,
		EnvVars: []string{"ORRERY_CONFIG"},
	}
}

// lookup finds the nearest context in the command lineage where name was
// set, so `orrery --port 8080 dev` and `orrery dev --port 8080` agree.
func lookup(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx
		}
	}
	return c
}

func runtimeConfig(c *cli.Context, env string) orrery.RuntimeConfig {
	return orrery.RuntimeConfig{
		Env:        env,
		Host:       lookup(c, "host").String("host"),
		Port:       lookup(c, "port").Int("port"),
		ConfigPath: configPath(c),
	}
}

func serve(c *cli.Context, env string) error {
	cfg := runtimeConfig(c, env)
	if cfg.Port < 0 || cfg.Port > 65535 {
		return cli.Exit(fmt.Sprintf("invalid port %d", cfg.Port), 2)
	}

	siteConfig := core.LoadConfig(cfg.ConfigPath)
	if err := core.InitLogger(core.LogConfigFor(*siteConfig, cfg.Debug())); err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}

	orrery.Start(cfg)
	return nil
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start Orrery in debug mode (detailed error pages, live reload)",
	Flags: ServeFlags(),
	Action: func(c *cli.Context) error {
		return serve(c, "dev")
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start Orrery in production mode (cached, minified pages)",
	Flags: ServeFlags(),
	Action: func(c *cli.Context) error {
		return serve(c, "prod")
	},
}

// DebugFlag drives the bare `orrery` invocation, which defaults to debug mode.
func DebugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "debug",
		Usage:   "enable detailed error pages and live reload",
		Value:   true,
		EnvVars: []string{"ORRERY_DEBUG"},
	}
}

func DefaultAction(c *cli.Context) error {
	if c.Bool("debug") {
		return serve(c, "dev")
	}
	return serve(c, "prod")
}

func configPath(c *cli.Context) string {
	return lookup(c, "config").String("config")
}
