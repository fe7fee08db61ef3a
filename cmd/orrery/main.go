package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	orrerycli "github.com/orrery-web/orrery/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:   "orrery",
		Usage:  "Serve the Orrery solar system site",
		Flags:  append(orrerycli.ServeFlags(), orrerycli.DebugFlag()),
		Action: orrerycli.DefaultAction,
		Commands: []*clilib.Command{
			orrerycli.DevCommand,
			orrerycli.ProdCommand,
			orrerycli.CheckCommand,
			orrerycli.BuildCommand,
			orrerycli.InfoCommand,
			orrerycli.InitCommand,
		},
	}
	return app.Run(args)
}

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
