package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

func (cli *commandLine) migrate(ctx context.Context, command string) error {
	switch command {
	case "up":
		applied, err := cli.migrator.MigrateFromDirectory(ctx, cli.migrationsDir)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cli.out, "%d migration(s) applied\n", applied)
		return nil

	case "status":
		statuses, err := cli.migrator.Status(ctx, cli.migrationsDir)
		if err != nil {
			return err
		}
		table := tablewriter.NewWriter(cli.out)
		table.SetHeader([]string{"Version", "File", "Applied"})
		for _, s := range statuses {
			table.Append([]string{s.Version, s.File, yesNo(s.Applied)})
		}
		table.Render()
		return nil

	default:
		return fmt.Errorf("%q: no such command", command)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
