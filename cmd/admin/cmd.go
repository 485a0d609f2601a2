package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/eston/admissions/internal/app/migrations"
	"github.com/eston/admissions/internal/app/repositories"
	"github.com/eston/admissions/internal/pkg/auth"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// migrator is the part of migrations.Migrator the CLI drives
type migrator interface {
	MigrateFromDirectory(ctx context.Context, dirPath string) (int, error)
	Status(ctx context.Context, dirPath string) ([]migrations.MigrationStatus, error)
}

type commandLine struct {
	out           io.Writer
	migrator      migrator
	migrationsDir string
	usrRepo       repositories.IUserRepository
	courseRepo    repositories.ICourseRepository
	appRepo       repositories.IApplicationRepository
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|status                                  - apply or list database migrations")
	fmt.Fprintln(cli.out, "  createadmin -email EMAIL [-first NAME] [-last NAME] - create or promote an admin account")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL                         - reset a user's password")
	fmt.Fprintln(cli.out, "  applications [-status STATUS] [-search TEXT] [-limit N] - list applications")
	fmt.Fprintln(cli.out, "  stats                                              - print admissions statistics")
}

// promptPassword reads a password from the terminal without echo
func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(pwd)), nil
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			fmt.Fprintln(cli.out, "Usage: migrate up|status")
			return errHelp
		}
		return cli.migrate(ctx, args[2])

	case "createadmin":
		fs := cli.newFlagSet("createadmin")
		email := fs.String("email", "", "The admin's email. The password will be prompted next.")
		first := fs.String("first", "System", "First name")
		last := fs.String("last", "Administrator", "Last name")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) < auth.MinPasswordLength {
			fmt.Fprintf(cli.out, "password must be at least %d characters\n", auth.MinPasswordLength)
			return errHelp
		}
		return cli.createAdmin(ctx, *email, *first, *last, pwd)

	case "resetpassword":
		fs := cli.newFlagSet("resetpassword")
		email := fs.String("email", "", "The user's email. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if len(pwd) < auth.MinPasswordLength {
			fmt.Fprintf(cli.out, "password must be at least %d characters\n", auth.MinPasswordLength)
			return errHelp
		}
		return cli.resetPassword(ctx, *email, pwd)

	case "applications":
		fs := cli.newFlagSet("applications")
		status := fs.String("status", "all", "pending, approved, rejected or all")
		search := fs.String("search", "", "Free text search")
		limit := fs.Int("limit", 20, "Maximum rows to print, 0 for all")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.listApplications(ctx, *status, *search, *limit)

	case "stats":
		return cli.stats(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}
