package main

import (
	"context"
	"errors"
	"strings"

	"github.com/fatih/color"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/auth"
)

// createAdmin creates an admin account, or promotes and re-activates an existing one
func (cli *commandLine) createAdmin(ctx context.Context, email, first, last, pwd string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := auth.HashPassword(pwd)
	if err != nil {
		return err
	}

	usr, err := cli.usrRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		usr = &models.User{
			Email:     email,
			Password:  hash,
			FirstName: first,
			LastName:  last,
			Role:      models.RoleAdmin,
			IsActive:  true,
		}
		if err := cli.usrRepo.Create(ctx, usr); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cli.out, "admin %s created (id %d)\n", usr.Email, usr.ID)
		return nil
	case err != nil:
		return err
	}

	if usr.Role != models.RoleAdmin {
		if _, err := cli.usrRepo.UpdateRole(ctx, usr.ID, models.RoleAdmin); err != nil {
			return err
		}
	}
	if !usr.IsActive {
		if _, err := cli.usrRepo.ToggleActive(ctx, usr.ID); err != nil {
			return err
		}
	}
	if err := cli.usrRepo.UpdatePassword(ctx, usr.ID, hash); err != nil {
		return err
	}
	color.New(color.FgYellow).Fprintf(cli.out, "existing user %s promoted to admin\n", usr.Email)
	return nil
}
