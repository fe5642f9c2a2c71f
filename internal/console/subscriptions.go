package console

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

func (a *app) subscribeCommand() *cobra.Command {
	return a.subscriberCommand("subscribe", "Add someone to the blog newsletter", a.newsletter.Subscribe)
}

func (a *app) subscribeProductsCommand() *cobra.Command {
	return a.subscriberCommand("subscribe-products", "Add someone to product update emails", a.newsletter.SubscribeToProducts)
}

func (a *app) subscriberCommand(
	use string,
	short string,
	subscribe func(ctx context.Context, email, name string) models.SubscriptionResult,
) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(subscribe(cmd.Context(), email, name))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "subscriber email")
	cmd.Flags().StringVar(&name, "name", "", "subscriber name")
	return cmd
}

func (a *app) unsubscribeCommand() *cobra.Command {
	var email, token string
	cmd := &cobra.Command{
		Use:   "unsubscribe",
		Short: "Remove someone from product updates using their unsubscribe token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.report(a.newsletter.Unsubscribe(cmd.Context(), email, token))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "subscriber email")
	cmd.Flags().StringVar(&token, "token", "", "token from the unsubscribe link")
	return cmd
}

func (a *app) report(result models.SubscriptionResult) error {
	if !result.Success {
		return errors.New(result.Message)
	}
	a.printf("%s\n", result.Message)
	return nil
}
