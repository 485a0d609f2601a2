package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/services"
)

func (cli *commandLine) listApplications(ctx context.Context, rawStatus, search string, limit int) error {
	status, err := services.ParseStatusFilter(rawStatus)
	if err != nil {
		return err
	}
	if limit < 0 {
		limit = 0
	}

	apps, total, err := cli.appRepo.List(ctx, dto.ApplicationFilter{Search: search, Status: status, Limit: limit})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Applicant", "Email", "Course", "Status", "Documents", "Submitted"})
	for _, app := range apps {
		table.Append([]string{
			strconv.FormatInt(app.ID, 10),
			app.FullName(),
			app.Email,
			app.CourseName,
			string(app.Status),
			yesNo(app.DocumentsSubmitted),
			app.ApplicationDate.Format("2006-01-02"),
		})
	}
	table.Render()

	color.New(color.FgCyan).Fprintf(cli.out, "showing %d of %d application(s)\n", len(apps), total)
	return nil
}

func (cli *commandLine) stats(ctx context.Context) error {
	users, err := cli.usrRepo.Count(ctx)
	if err != nil {
		return err
	}
	courses, err := cli.courseRepo.Count(ctx)
	if err != nil {
		return err
	}
	counts, err := cli.appRepo.CountByStatus(ctx)
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintln(cli.out, "=== Eston Admissions ===")
	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Metric", "Count"})
	table.AppendBulk([][]string{
		{"Users", fmt.Sprint(users)},
		{"Courses", fmt.Sprint(courses)},
		{"Applications", fmt.Sprint(counts.Total())},
		{"  pending", fmt.Sprint(counts.Pending)},
		{"  approved", fmt.Sprint(counts.Approved)},
		{"  rejected", fmt.Sprint(counts.Rejected)},
	})
	table.Render()
	return nil
}
