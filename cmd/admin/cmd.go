package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/password"

	"golang.org/x/term"
)

const minPasswordLength = 6

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
	errPasswordTooShort = fmt.Errorf("password must have at least %d characters", minPasswordLength)
)

type commandLine struct {
	accounts account.Repository
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  create-admin -code CODE [-email EMAIL] - create an administrator account")
	fmt.Fprintln(cli.out, "  reset-password -code CODE              - reset the password of any account")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	createAdminCode := createAdminCmd.String("code", "", "Login code of the new administrator.")
	createAdminEmail := createAdminCmd.String("email", "", "Optional email the administrator can also log in with.")

	resetPasswordCmd := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	resetPasswordCode := resetPasswordCmd.String("code", "", "Login code of the account. The password will be prompted next.")

	switch args[1] {
	case "create-admin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAdminCode == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.createAdmin(ctx, *createAdminCode, *createAdminEmail, pwd)

	case "reset-password":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordCode == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(ctx, *resetPasswordCode, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(cli.out, "Enter password:")
	first, err := readPasswordFunc(fd)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(first) < minPasswordLength {
		return "", errPasswordTooShort
	}

	fmt.Fprint(cli.out, "Confirm password:")
	second, err := readPasswordFunc(fd)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errPasswordMismatch
	}

	return string(first), nil
}

func (cli *commandLine) createAdmin(ctx context.Context, code, email, plaintext string) error {
	if _, err := cli.accounts.GetByLoginCode(ctx, code); err == nil {
		return fmt.Errorf("login code %q is already taken", code)
	} else if !errors.Is(err, account.ErrNotFound) {
		return err
	}

	digest, err := password.Hash(plaintext)
	if err != nil {
		return err
	}

	user := &account.User{
		LoginCode:    code,
		Email:        email,
		PasswordHash: digest,
		Role:         account.RoleAdministrator,
		Status:       account.StatusActive,
	}
	if err := cli.accounts.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}

	fmt.Fprintf(cli.out, "administrator %s created (id %d)\n", code, user.ID)
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, code, plaintext string) error {
	user, err := cli.accounts.GetByLoginCode(ctx, code)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return fmt.Errorf("no account with login code %q", code)
		}
		return err
	}

	digest, err := password.Hash(plaintext)
	if err != nil {
		return err
	}
	if err := cli.accounts.UpdatePassword(ctx, user.ID, digest); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Fprintf(cli.out, "password of %s updated\n", code)
	return nil
}
