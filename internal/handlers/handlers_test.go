package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/backendtest"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/blog"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/chat"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/newsletter"
)

type fixture struct {
	backend *backendtest.Backend
	feed    *blog.Feed
	engine  *gin.Engine
}

func newFixture(t *testing.T, chatLimit int) *fixture {
	t.Helper()

	backend := backendtest.New(t)
	client := api.NewClientWithHTTP(backend.URL(), backend.HTTPClient(), zerolog.Nop())
	feed := blog.NewFeed(client, zerolog.Nop())

	cfg := &config.AppConfig{
		Environment: "test",
		RateLimit:   config.RateLimitConfig{Requests: chatLimit, Window: time.Minute},
	}
	set := NewHandlerSet(zerolog.Nop(), cfg, feed, newsletter.NewService(client, zerolog.Nop()), client)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	set.Register(engine.Group("/api"))

	return &fixture{backend: backend, feed: feed, engine: engine}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestPostsServedFromFeed(t *testing.T) {
	f := newFixture(t, 10)
	f.backend.SetPosts(
		models.Post{ID: "1", Title: "Wheelchair rides", Author: "Ana"},
		models.Post{ID: "2", Title: "Airport transfers", Author: "Ben"},
	)
	if err := f.feed.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/api/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if posts := decode[[]models.Post](t, rec); len(posts) != 2 {
		t.Fatalf("posts = %+v", posts)
	}

	rec = f.do(t, http.MethodGet, "/api/posts/2", "")
	if got := decode[models.Post](t, rec); rec.Code != http.StatusOK || got.Title != "Airport transfers" {
		t.Fatalf("get = %d %+v", rec.Code, got)
	}

	rec = f.do(t, http.MethodGet, "/api/posts/404", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown post status = %d", rec.Code)
	}
}

func TestHealthReportsBackendState(t *testing.T) {
	f := newFixture(t, 10)
	f.backend.Fail("GET /posts", http.StatusBadGateway, "")
	_ = f.feed.Refresh(context.Background())

	rec := f.do(t, http.MethodGet, "/api/healthz", "")
	got := decode[healthResponse](t, rec)
	if rec.Code != http.StatusOK || got.Backend != "error" || got.Posts != 0 || got.Environment != "test" {
		t.Fatalf("health = %d %+v", rec.Code, got)
	}
}

func TestChat(t *testing.T) {
	f := newFixture(t, 10)
	f.backend.SetChatReply("We serve the whole metro area.")

	rec := f.do(t, http.MethodPost, "/api/chat", `{"message":"where do you operate?"}`)
	if got := decode[chatResponse](t, rec); rec.Code != http.StatusOK || got.Reply != "We serve the whole metro area." {
		t.Fatalf("chat = %d %+v", rec.Code, got)
	}

	rec = f.do(t, http.MethodPost, "/api/chat", `{"message":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank message status = %d", rec.Code)
	}

	f.backend.Fail("POST /chat", http.StatusServiceUnavailable, "")
	rec = f.do(t, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	if got := decode[chatResponse](t, rec); got.Reply != chat.FallbackReply {
		t.Fatalf("error status reply = %+v", got)
	}
}

func TestChatRateLimited(t *testing.T) {
	f := newFixture(t, 1)

	if rec := f.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/chat", `{"message":"hi"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
}

func TestSubscriptions(t *testing.T) {
	f := newFixture(t, 10)
	body := `{"email":"rider@example.com","name":"Rider"}`

	rec := f.do(t, http.MethodPost, "/api/subscriptions", body)
	if got := decode[map[string]string](t, rec); rec.Code != http.StatusOK || got["message"] != "Subscribed" {
		t.Fatalf("subscribe = %d %+v", rec.Code, got)
	}

	rec = f.do(t, http.MethodPost, "/api/subscriptions", body)
	if got := decode[map[string]string](t, rec); rec.Code != http.StatusBadRequest || got["error"] != "Already subscribed" {
		t.Fatalf("duplicate = %d %+v", rec.Code, got)
	}

	rec = f.do(t, http.MethodPost, "/api/product-subscriptions", `{"email":"not-an-email","name":"Rider"}`)
	if got := decode[map[string]string](t, rec); got["error"] != "Please enter a valid email address" {
		t.Fatalf("invalid email = %+v", got)
	}

	if rec := f.do(t, http.MethodPost, "/api/product-subscriptions", body); rec.Code != http.StatusOK {
		t.Fatalf("product subscribe status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/product-subscriptions?email=rider@example.com&token=t1", "")
	if got := decode[map[string]string](t, rec); rec.Code != http.StatusOK || got["message"] != "You have been unsubscribed" {
		t.Fatalf("unsubscribe = %d %+v", rec.Code, got)
	}

	rec = f.do(t, http.MethodDelete, "/api/product-subscriptions?email=rider@example.com", "")
	if got := decode[map[string]string](t, rec); got["error"] != "Invalid unsubscribe link" {
		t.Fatalf("missing token = %+v", got)
	}
}
