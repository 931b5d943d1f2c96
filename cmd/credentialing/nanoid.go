package main

import (
	"fmt"

	"credentialing/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate record IDs for template files",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "Length of each ID",
			Value:   utils.RecordIDSize,
		},
	},
	Action: func(c *cli.Context) error {
		for range c.Int("count") {
			id, err := utils.NanoIDSize(c.Int("size"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, id)
		}
		return nil
	},
}
