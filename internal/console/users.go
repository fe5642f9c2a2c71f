package console

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/session"
)

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage team accounts (admins only)",
	}
	cmd.AddCommand(
		a.usersListCommand(),
		a.usersAddCommand(),
		a.usersDeleteCommand(),
		a.usersPasswdCommand(),
	)
	return cmd
}

func (a *app) requireAdmin() error {
	if !a.store.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}
	if !a.store.CanManageUsers() {
		return session.ErrForbidden
	}
	return nil
}

func (a *app) usersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List team accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := a.store.RefreshUsers(cmd.Context()); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.env.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tROLE")
			for _, u := range a.store.Users() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Name, u.Role)
			}
			return tw.Flush()
		},
	}
}

func (a *app) usersAddCommand() *cobra.Command {
	var user models.User
	var role string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a creator or admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			password, err := a.env.Password("Password for " + user.Username + ": ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			user.Password = password
			user.Role = models.Role(role)

			if err := a.store.AddUser(cmd.Context(), user); err != nil {
				return err
			}
			a.printf("User %s added\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.Username, "username", "", "login name")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name, shown as post author")
	cmd.Flags().StringVar(&role, "role", string(models.RoleCreator), "admin or creator")
	return cmd
}

func (a *app) usersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a team account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("User %s deleted\n", args[0])
			return nil
		},
	}
}

func (a *app) usersPasswdCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd ID",
		Short: "Set a new password for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			password, err := a.env.Password("New password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if err := a.store.ChangeUserPassword(cmd.Context(), args[0], password); err != nil {
				return err
			}
			a.printf("Password changed\n")
			return nil
		},
	}
}
