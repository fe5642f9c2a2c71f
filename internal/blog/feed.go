// Package blog keeps the public post listing served by the site gateway.
package blog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

type Source interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
}

type Status struct {
	Posts       int       `json:"posts"`
	RefreshedAt time.Time `json:"refreshedAt"`
	LastError   string    `json:"lastError,omitempty"`
}

// Feed is a read-only copy of the backend's posts. It is replaced wholesale
// on every refresh; a failed refresh leaves it empty.
type Feed struct {
	source Source
	log    zerolog.Logger

	mu          sync.RWMutex
	posts       []models.Post
	refreshedAt time.Time
	lastErr     error
}

func NewFeed(source Source, log zerolog.Logger) *Feed {
	return &Feed{
		source: source,
		log:    log.With().Str("component", "feed").Logger(),
	}
}

func (f *Feed) Refresh(ctx context.Context) error {
	posts, err := f.source.ListPosts(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshedAt = time.Now().UTC()
	f.lastErr = err
	if err != nil {
		f.posts = nil
		f.log.Error().Err(err).Msg("feed refresh failed")
		return err
	}
	f.posts = posts
	f.log.Debug().Int("posts", len(posts)).Msg("feed refreshed")
	return nil
}

func (f *Feed) Posts() []models.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out
}

func (f *Feed) Post(id string) (models.Post, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (f *Feed) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()

	st := Status{Posts: len(f.posts), RefreshedAt: f.refreshedAt}
	if f.lastErr != nil {
		st.LastError = f.lastErr.Error()
	}
	return st
}
