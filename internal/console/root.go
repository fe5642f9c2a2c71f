// Package console is the command-line workspace for blog creators and admins.
// Every command runs against a session.Store restored from the persisted
// token, so a login survives between invocations.
package console

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/newsletter"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/session"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/tokenstore"
)

// PasswordReader prompts for a secret without echoing it.
type PasswordReader func(prompt string) (string, error)

// Env is everything the commands need from the outside world.
type Env struct {
	Client   *api.Client
	Tokens   tokenstore.Store
	Log      zerolog.Logger
	In       io.Reader
	Out      io.Writer
	Password PasswordReader
}

type app struct {
	env        Env
	store      *session.Store
	newsletter *newsletter.Service
	viewer     bool
}

func newApp(env Env) *app {
	return &app{
		env:        env,
		newsletter: newsletter.NewService(env.Client, env.Log),
	}
}

func (a *app) rootCommand() *cobra.Command {
	env := a.env
	root := &cobra.Command{
		Use:           "gracectl",
		Short:         "Manage the Grace Mobility blog, team and mailing lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.store = session.New(env.Client, env.Tokens, env.Log)
			if err := a.store.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			if a.viewer {
				a.store.SetViewerMode(true)
			}
			return nil
		},
	}
	root.SetIn(env.In)
	root.SetOut(env.Out)
	root.SetErr(env.Out)
	root.PersistentFlags().BoolVar(&a.viewer, "as-visitor", false, "show pages the way a signed-out visitor sees them")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.postsCommand(),
		a.usersCommand(),
		a.subscribeCommand(),
		a.subscribeProductsCommand(),
		a.unsubscribeCommand(),
		a.chatCommand(),
	)
	return root
}

// Execute runs the console with args, prints the error the user should see
// and releases the token store.
func Execute(ctx context.Context, env Env, args []string) error {
	a := newApp(env)
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(env.Out, "Error:", describe(err))
	}
	closeTokens := env.Tokens.Close
	if a.store != nil {
		closeTokens = a.store.Close
	}
	if cerr := closeTokens(); cerr != nil {
		env.Log.Error().Err(cerr).Msg("close token store")
	}
	return err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.env.Out, format, args...)
}
