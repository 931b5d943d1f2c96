package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var timelineCommand = &cli.Command{
	Name:      "timeline",
	Usage:     "Print a case with its documents, verifications, approvals and events",
	ArgsUsage: "<caseId>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty print instead of JSON",
		},
	},
	Action: func(c *cli.Context) error {
		caseID := c.Args().First()
		if caseID == "" {
			return fmt.Errorf("usage: credentialing timeline <caseId>")
		}

		config, logger, err := setup(c, false)
		if err != nil {
			return err
		}

		ctx := context.Background()

		app, err := newApplication(ctx, config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		timeline, err := app.registry.Timeline(ctx, caseID)
		if err != nil {
			return err
		}
		if timeline.Case == nil {
			return fmt.Errorf("case not found: %s", caseID)
		}

		if c.Bool("pretty") {
			printer := pp.New()
			printer.SetOutput(c.App.Writer)
			printer.SetColoringEnabled(false)
			printer.Println(timeline)
			return nil
		}

		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(timeline)
	},
}
