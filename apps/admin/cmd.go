package main

import (
	"fmt"
	"io"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/user"
	ratesvc "github.com/trezcool/tutorhub/services/rates"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password cannot be empty")
)

type commandLine struct {
	db            *sqlx.DB
	engine        string
	usrSvc        *user.Service
	validate      *validator.Validate
	translator    ut.Translator
	rates         ratesvc.Provider
	ratesBase     string
	ratesTimeout  time.Duration
	logger        core.Logger
	runMigrations func(db *sqlx.DB, engine, command string, args ...string) error
	out           io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Tutorhub back-office administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.AddCommand(cli.addUserCmd(), cli.resetPasswordCmd(), cli.migrateCmd(), cli.quoteCmd())
	return root
}

// run executes the command line; args[0] is the program name.
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

func (cli *commandLine) promptPassword() (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}

// describe flattens validation errors for the terminal.
func (cli *commandLine) describe(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		msg := ""
		for _, vErr := range vErrs {
			msg += fmt.Sprintf("\n  %s: %s", vErr.Field(), vErr.Translate(cli.translator))
		}
		return fmt.Errorf("invalid user:%s", msg)
	}
	return err
}
