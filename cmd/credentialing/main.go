package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "credentialing",
		Usage: "Clinician credentialing workflow engine and tool server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-prefix",
				Aliases: []string{"p"},
				Usage:   "Environment variable prefix",
				Value:   "CREDENTIALING",
			},
		},
		Commands: []*cli.Command{
			serveCommand,
			httpCommand,
			seedCommand,
			timelineCommand,
			rolesCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
