package console

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) loginCommand() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a creator or admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("--username is required")
			}
			password, err := a.env.Password("Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			ok, err := a.store.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if !ok {
				return errLoginRejected
			}
			user := a.store.Session().User
			a.printf("Signed in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.Logout(cmd.Context()); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			sess := a.store.Session()
			if !sess.Authenticated() {
				a.printf("Not signed in\n")
				return nil
			}
			a.printf("%s (%s, id %s)\n", sess.User.Name, sess.User.Role, sess.User.ID)
			return nil
		},
	}
}
