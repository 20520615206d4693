package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var name, uname, email string
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a back-office user, or reactivate it and set its password. The password is prompted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" && email == "" {
				return errors.New("one of --username or --email is required")
			}
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			usr, err := cli.addUser(cmd.Context(), name, uname, email, pwd, isAdmin)
			if err != nil {
				return cli.describe(err)
			}
			login := usr.Username
			if login == "" {
				login = usr.Email
			}
			_, _ = fmt.Fprintf(cli.out, "User %q saved (id %d)\n", login, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&uname, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email")
	cmd.Flags().BoolVar(&isAdmin, "admin", true, "grant all admin roles")
	return cmd
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, isAdmin bool) (user.User, error) {
	var roles []string
	if isAdmin {
		roles = user.AllRoles
	}

	lookup := core.CleanString(uname, true /* lower */)
	if lookup == "" {
		lookup = core.CleanString(email, true /* lower */)
	}
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, lookup)
	switch errors.Cause(err) {
	case nil:
		active := true
		data := user.UpdateUser{Name: name, Username: uname, Email: email, IsActive: &active, Roles: roles, Password: pwd, PasswordConfirm: pwd}
		if err := data.Validate(usr, cli.validate, cli.usrSvc); err != nil {
			return user.User{}, err
		}
		return cli.usrSvc.Update(ctx, usr.ID, data)
	case user.ErrNotFound:
		if name == "" {
			name = core.CleanString(uname + email)
		}
		data := user.NewUser{Name: name, Username: uname, Email: email, Password: pwd, PasswordConfirm: pwd, Roles: roles}
		if err := data.Validate(cli.validate, cli.usrSvc); err != nil {
			return user.User{}, err
		}
		return cli.usrSvc.Create(ctx, data)
	default:
		return user.User{}, err
	}
}
