// Package newsletter handles the blog newsletter and product-update mailing
// lists. Results are always reported as a SubscriptionResult, never an error,
// so forms can show the message as-is.
package newsletter

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

const (
	msgMissingFields      = "Please enter both name and email"
	msgInvalidEmail       = "Please enter a valid email address"
	msgSubscribeFailed    = "Failed to subscribe"
	msgInvalidUnsubscribe = "Invalid unsubscribe link"
	msgUnsubscribeFailed  = "Failed to unsubscribe"
)

type Service struct {
	client *api.Client
	log    zerolog.Logger
}

func NewService(client *api.Client, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("component", "newsletter").Logger(),
	}
}

// Subscribe adds email to the blog newsletter.
func (s *Service) Subscribe(ctx context.Context, email, name string) models.SubscriptionResult {
	return s.subscribe(ctx, "newsletter", email, name, s.client.Subscribe)
}

// SubscribeToProducts adds email to product-update announcements.
func (s *Service) SubscribeToProducts(ctx context.Context, email, name string) models.SubscriptionResult {
	return s.subscribe(ctx, "products", email, name, s.client.SubscribeProducts)
}

func (s *Service) subscribe(
	ctx context.Context,
	list string,
	email string,
	name string,
	send func(context.Context, models.Subscriber) (string, error),
) models.SubscriptionResult {
	sub := models.Subscriber{
		Email: strings.TrimSpace(email),
		Name:  strings.TrimSpace(name),
	}
	if sub.Email == "" || sub.Name == "" {
		return models.SubscriptionResult{Message: msgMissingFields}
	}
	if err := models.Validate(sub, msgInvalidEmail); err != nil {
		return models.SubscriptionResult{Message: msgInvalidEmail}
	}

	message, err := send(ctx, sub)
	if err != nil {
		s.log.Error().Err(err).Str("list", list).Msg("subscription failed")
		return models.SubscriptionResult{Message: failureMessage(err, msgSubscribeFailed)}
	}
	return models.SubscriptionResult{Success: true, Message: message}
}

// Unsubscribe removes email from product updates using the token from the
// emailed unsubscribe link.
func (s *Service) Unsubscribe(ctx context.Context, email, token string) models.SubscriptionResult {
	email = strings.TrimSpace(email)
	token = strings.TrimSpace(token)
	if email == "" || token == "" {
		return models.SubscriptionResult{Message: msgInvalidUnsubscribe}
	}

	message, err := s.client.UnsubscribeProducts(ctx, email, token)
	if err != nil {
		s.log.Error().Err(err).Msg("unsubscribe failed")
		return models.SubscriptionResult{Message: failureMessage(err, msgUnsubscribeFailed)}
	}
	return models.SubscriptionResult{Success: true, Message: message}
}

func failureMessage(err error, fallback string) string {
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}
