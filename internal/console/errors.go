package console

import (
	"errors"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/session"
)

var errLoginRejected = errors.New("invalid username or password")

// describe turns store and backend errors into one line for the terminal.
func describe(err error) string {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, session.ErrSessionExpired):
		return "your session has expired, run `gracectl login` again"
	case errors.Is(err, session.ErrNotAuthenticated):
		return "you are not signed in, run `gracectl login` first"
	case errors.Is(err, session.ErrForbidden):
		return "your account is not allowed to do that"
	}
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	return err.Error()
}
