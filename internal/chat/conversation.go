// Package chat drives the "Gracey" support assistant: a running transcript
// whose user turns are relayed to the backend chat endpoint.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

const (
	Greeting      = "Hello! I'm Gracey, your Grace Mobility assistant. How can I help?"
	FallbackReply = "I'm still learning! Try asking about services, contact info, or hours."
	OfflineReply  = "Sorry, I'm offline right now. Try again in a moment!"
)

var ErrEmptyMessage = errors.New("message is empty")

// Responder answers one chat message. *api.Client satisfies it.
type Responder interface {
	Chat(ctx context.Context, message string) (string, error)
}

type Conversation struct {
	responder Responder
	log       zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	messages []models.ChatMessage
}

func NewConversation(responder Responder, log zerolog.Logger) *Conversation {
	c := &Conversation{
		responder: responder,
		log:       log.With().Str("component", "chat").Logger(),
		now:       time.Now,
	}
	c.append(models.SenderBot, Greeting)
	return c
}

// Send records text as a user turn and returns the bot's answer, which is
// also recorded. The backend being unreachable is not an error: the answer is
// the offline reply.
func (c *Conversation) Send(ctx context.Context, text string) (models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	c.append(models.SenderUser, text)
	return c.append(models.SenderBot, Answer(ctx, c.responder, text, c.log)), nil
}

// Answer asks responder about text and never fails. An unreachable backend
// yields OfflineReply; an error status or a blank answer yields FallbackReply.
func Answer(ctx context.Context, responder Responder, text string, log zerolog.Logger) string {
	reply, err := responder.Chat(ctx, text)
	switch {
	case err != nil && api.StatusOf(err) != 0:
		log.Warn().Err(err).Int("status", api.StatusOf(err)).Msg("chat backend refused message")
		return FallbackReply
	case err != nil:
		log.Warn().Err(err).Msg("chat backend unavailable")
		return OfflineReply
	case strings.TrimSpace(reply) == "":
		return FallbackReply
	}
	return reply
}

func (c *Conversation) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

func (c *Conversation) append(sender models.Sender, text string) models.ChatMessage {
	msg := models.ChatMessage{
		ID:     ksuid.New().String(),
		Text:   text,
		Sender: sender,
		Time:   c.now(),
	}

	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}
