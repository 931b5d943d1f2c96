package main

import (
	"fmt"
	"strings"

	"credentialing/internal/tools"

	"github.com/urfave/cli/v2"
)

var rolesCommand = &cli.Command{
	Name:  "roles",
	Usage: "List agent roles and the tools each may call",
	Action: func(c *cli.Context) error {
		for _, role := range tools.Roles() {
			names, err := tools.RoleTools(role)
			if err != nil {
				return err
			}

			list := strings.Join(names, ", ")
			if list == "" {
				list = "(dispatch only)"
			}
			fmt.Fprintf(c.App.Writer, "%-16s %s\n", role, list)
		}
		return nil
	},
}
