// Package session holds the signed-in identity of a Grace Mobility creator or
// admin, decides which blog and user-management actions that identity may
// attempt, and keeps the posts and users collections in step with the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/security"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/tokenstore"
)

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrForbidden        = errors.New("action not permitted for this session")
	ErrSessionExpired   = errors.New("session expired, sign in again")
)

type Mode string

const (
	ModeAnonymous Mode = ""
	ModeViewer    Mode = "viewer"
	ModeCreator   Mode = "creator"
)

// Session is a point-in-time copy of the store's identity.
type Session struct {
	Token string
	User  *models.UserSummary
	Mode  Mode
}

func (s Session) Authenticated() bool {
	return s.User != nil
}

type Store struct {
	client *api.Client
	tokens tokenstore.Store
	log    zerolog.Logger

	mu    sync.RWMutex
	token string
	user  *models.UserSummary
	mode  Mode

	posts collection[models.Post]
	users collection[models.User]
}

func New(client *api.Client, tokens tokenstore.Store, log zerolog.Logger) *Store {
	return &Store{
		client: client,
		tokens: tokens,
		log:    log.With().Str("component", "session").Logger(),
	}
}

// Bootstrap loads the public posts and rehydrates a persisted token. The
// token is decoded locally and trusted until a privileged call says
// otherwise; a token that does not decode is deleted.
func (s *Store) Bootstrap(ctx context.Context) error {
	_ = s.RefreshPosts(ctx)

	token, err := s.tokens.Load(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}

	claims, err := security.DecodeClaims(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("discarding unreadable persisted token")
		if err := s.tokens.Delete(ctx); err != nil {
			return fmt.Errorf("discard persisted token: %w", err)
		}
		return nil
	}

	user := claims.Summary()
	s.setIdentity(token, user)
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session restored")

	if user.IsAdmin() {
		_ = s.RefreshUsers(ctx)
	}
	return nil
}

// Login exchanges credentials for a token. A rejection by the backend
// reports false with a nil error; only a failure to reach the backend (or
// to persist the token) returns an error.
func (s *Store) Login(ctx context.Context, username, password string) (bool, error) {
	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		status := api.StatusOf(err)
		if status >= 400 && status < 500 {
			s.log.Info().Int("status", status).Str("username", username).Msg("login rejected")
			return false, nil
		}
		s.log.Error().Err(err).Str("username", username).Msg("login failed")
		return false, fmt.Errorf("login: %w", err)
	}

	if res.Token == "" || res.User.ID == "" || res.User.Name == "" || !res.User.Role.Valid() {
		s.log.Warn().Str("username", username).Msg("login response missing identity")
		return false, nil
	}

	if err := s.tokens.Save(ctx, res.Token); err != nil {
		return false, fmt.Errorf("persist token: %w", err)
	}

	user := res.User
	s.setIdentity(res.Token, user)
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("signed in")

	_ = s.RefreshPosts(ctx)
	if user.IsAdmin() {
		_ = s.RefreshUsers(ctx)
	} else {
		s.users.clear()
	}
	return true, nil
}

// Logout forgets the identity and the users collection. Calling it on an
// empty session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	s.clearIdentity()
	s.users.clear()

	if err := s.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("delete persisted token: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.tokens.Close()
}

func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Session{Token: s.token, Mode: s.mode}
	if s.user != nil {
		u := *s.user
		out.User = &u
	}
	return out
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// SetViewerMode switches the presentation mode. It grants nothing: an
// authenticated session browsing as a viewer keeps its permissions.
func (s *Store) SetViewerMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case on:
		s.mode = ModeViewer
	case s.user != nil:
		s.mode = ModeCreator
	default:
		s.mode = ModeAnonymous
	}
}

func (s *Store) Posts() []models.Post {
	return s.posts.snapshot()
}

func (s *Store) Users() []models.User {
	return s.users.snapshot()
}

// PostsStale reports that the posts are being reloaded or that the last
// reload failed, so an empty list does not mean there are no posts.
func (s *Store) PostsStale() bool {
	return s.posts.isStale()
}

// Post returns the locally known post with id.
func (s *Store) Post(id string) (models.Post, bool) {
	for _, p := range s.posts.snapshot() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (s *Store) CanEdit(post models.Post) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return false
	}
	return s.user.IsAdmin() || s.user.Name == post.Author
}

func (s *Store) CanDelete(post models.Post) bool {
	return s.CanEdit(post)
}

func (s *Store) CanManageUsers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

// RefreshPosts reloads the public posts. On failure the collection is
// emptied and the error returned.
func (s *Store) RefreshPosts(ctx context.Context) error {
	s.posts.invalidate()
	if err := s.posts.reload(ctx, s.client.ListPosts); err != nil {
		s.log.Error().Err(err).Msg("failed to fetch posts")
		return err
	}
	return nil
}

// RefreshUsers reloads the user-management list. It needs an admin session.
func (s *Store) RefreshUsers(ctx context.Context) error {
	token, user, err := s.credentials()
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		return ErrForbidden
	}

	s.users.invalidate()
	err = s.users.reload(ctx, func(ctx context.Context) ([]models.User, error) {
		return s.client.ListUsers(ctx, token)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch users")
		if api.StatusOf(err) == http.StatusUnauthorized {
			s.expire(ctx, token)
			return fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return err
	}
	return nil
}

func (s *Store) AddPost(ctx context.Context, draft models.PostDraft) error {
	if err := models.Validate(draft, "Please fill in all fields"); err != nil {
		return err
	}
	token, user, err := s.credentials()
	if err != nil {
		return err
	}

	if err := s.client.CreatePost(ctx, token, draft.WithDefaults(user.Name)); err != nil {
		return s.writeFailed(ctx, "add post", token, err)
	}
	_ = s.RefreshPosts(ctx)
	return nil
}

// UpdatePost replaces the writable fields of post id. A post known locally
// keeps its author; otherwise the session user is recorded as author and
// the backend decides ownership.
func (s *Store) UpdatePost(ctx context.Context, id string, draft models.PostDraft) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Message: "Post id is required"}
	}
	if err := models.Validate(draft, "Please fill in all fields"); err != nil {
		return err
	}
	token, user, err := s.credentials()
	if err != nil {
		return err
	}

	author := user.Name
	if existing, ok := s.Post(id); ok {
		if !s.CanEdit(existing) {
			return ErrForbidden
		}
		author = existing.Author
	}

	if err := s.client.UpdatePost(ctx, token, id, draft.WithDefaults(author)); err != nil {
		return s.writeFailed(ctx, "update post", token, err)
	}
	_ = s.RefreshPosts(ctx)
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Message: "Post id is required"}
	}
	token, _, err := s.credentials()
	if err != nil {
		return err
	}
	if existing, ok := s.Post(id); ok && !s.CanDelete(existing) {
		return ErrForbidden
	}

	if err := s.client.DeletePost(ctx, token, id); err != nil {
		return s.writeFailed(ctx, "delete post", token, err)
	}
	_ = s.RefreshPosts(ctx)
	return nil
}

func (s *Store) AddUser(ctx context.Context, user models.User) error {
	user.ID = ""
	if err := models.Validate(user, "Please fill in all fields"); err != nil {
		return err
	}
	token, err := s.adminToken()
	if err != nil {
		return err
	}

	if err := s.client.RegisterUser(ctx, token, user); err != nil {
		return s.writeFailed(ctx, "add user", token, err)
	}
	_ = s.RefreshUsers(ctx)
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Message: "User id is required"}
	}
	token, err := s.adminToken()
	if err != nil {
		return err
	}

	if err := s.client.DeleteUser(ctx, token, id); err != nil {
		return s.writeFailed(ctx, "delete user", token, err)
	}
	_ = s.RefreshUsers(ctx)
	return nil
}

// ChangeUserPassword sets a new password for user id. Nothing is reloaded:
// passwords are never part of the users collection.
func (s *Store) ChangeUserPassword(ctx context.Context, id, newPassword string) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Message: "User id is required"}
	}
	if err := models.Validate(models.PasswordChange{NewPassword: newPassword}, "Please enter a new password"); err != nil {
		return err
	}
	token, err := s.adminToken()
	if err != nil {
		return err
	}

	if err := s.client.ChangePassword(ctx, token, id, newPassword); err != nil {
		return s.writeFailed(ctx, "change password", token, err)
	}
	return nil
}

func (s *Store) credentials() (string, models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil || s.token == "" {
		return "", models.UserSummary{}, ErrNotAuthenticated
	}
	return s.token, *s.user, nil
}

func (s *Store) adminToken() (string, error) {
	token, user, err := s.credentials()
	if err != nil {
		return "", err
	}
	if !user.IsAdmin() {
		return "", ErrForbidden
	}
	return token, nil
}

func (s *Store) setIdentity(token string, user models.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
	s.mode = ModeCreator
}

func (s *Store) clearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.mode = ModeAnonymous
}

// writeFailed logs a rejected write. A 401 means the token is no longer
// honored, so the session is dropped.
func (s *Store) writeFailed(ctx context.Context, op, token string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("backend write failed")

	if api.StatusOf(err) == http.StatusUnauthorized {
		s.expire(ctx, token)
		return fmt.Errorf("%s: %w: %w", op, ErrSessionExpired, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expire drops the session if it still holds token. A newer login made while
// the failing call was in flight is left alone.
func (s *Store) expire(ctx context.Context, token string) {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.mode = ModeAnonymous
	s.mu.Unlock()

	s.users.clear()
	if err := s.tokens.Delete(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete expired token")
	}
	s.log.Info().Msg("session expired")
}
