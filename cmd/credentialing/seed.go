package main

import (
	"context"
	"fmt"

	"credentialing/internal/seed"
	"credentialing/pkg/types"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Sync facility templates into the database",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "JSON file of templates (defaults to TEMPLATES_FILE, then the built-in catalog)",
		},
	},
	Action: func(c *cli.Context) error {
		config, logger, err := setup(c, false)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		app, err := newApplication(ctx, config, logger)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer app.Close()

		path := c.String("file")
		if path == "" {
			path = config.TemplatesFile
		}

		templates := seed.DefaultTemplates()
		if path != "" {
			if templates, err = seed.LoadTemplates(path); err != nil {
				return err
			}
		}

		report, err := seed.SyncTemplates(ctx, app.repos.Templates, templates, logger)
		if err != nil {
			return fmt.Errorf("failed to seed templates: %w", err)
		}

		fmt.Fprintf(c.App.Writer, "templates: %d created, %d updated, %d unchanged\n", report.Created, report.Updated, report.Unchanged)

		all, err := app.repos.Templates.QueryTemplates(ctx, types.TemplateFilter{})
		if err != nil {
			return err
		}
		for _, template := range all {
			fmt.Fprintf(c.App.Writer, "  %s  %-30s %s v%d\n", template.ID, template.Name, template.Jurisdiction, template.Version)
		}

		return nil
	},
}
