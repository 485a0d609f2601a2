package main

import (
	"context"
	"strings"

	"github.com/fatih/color"

	"github.com/eston/admissions/internal/pkg/auth"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	usr, err := cli.usrRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(pwd)
	if err != nil {
		return err
	}
	if err := cli.usrRepo.UpdatePassword(ctx, usr.ID, hash); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cli.out, "password updated for %s\n", usr.Email)
	return nil
}
