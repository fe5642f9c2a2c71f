package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/api"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/backendtest"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/tokenstore"
)

var (
	adminUser   = models.UserSummary{ID: "a1", Name: "Grace Admin", Role: models.RoleAdmin}
	creatorUser = models.UserSummary{ID: "c1", Name: "Casey", Role: models.RoleCreator}
)

type fixture struct {
	backend *backendtest.Backend
	tokens  *tokenstore.Memory
	store   *Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendtest.New(t)
	backend.AddAccount("admin", "correctpass", adminUser)
	backend.AddAccount("casey", "caseypass", creatorUser)

	tokens := tokenstore.NewMemory()
	client := api.NewClientWithHTTP(backend.URL(), backend.HTTPClient(), zerolog.Nop())
	return &fixture{
		backend: backend,
		tokens:  tokens,
		store:   New(client, tokens, zerolog.Nop()),
	}
}

func (f *fixture) login(t *testing.T, username, password string) {
	t.Helper()
	ok, err := f.store.Login(context.Background(), username, password)
	if err != nil || !ok {
		t.Fatalf("login %s: ok=%v err=%v", username, ok, err)
	}
}

func validDraft(title string) models.PostDraft {
	return models.PostDraft{
		Title:    title,
		Content:  "<p>Body</p>",
		Excerpt:  "Body",
		ImageURL: "uploads/cover.png",
	}
}

func TestCanEditMatrix(t *testing.T) {
	own := models.Post{ID: "p1", Author: "Casey"}
	foreign := models.Post{ID: "p2", Author: "Robin"}

	cases := []struct {
		name        string
		login       func(t *testing.T, f *fixture)
		own, other  bool
		manageUsers bool
	}{
		{"anonymous", func(*testing.T, *fixture) {}, false, false, false},
		{"creator", func(t *testing.T, f *fixture) { f.login(t, "casey", "caseypass") }, true, false, false},
		{"admin", func(t *testing.T, f *fixture) { f.login(t, "admin", "correctpass") }, true, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tc.login(t, f)

			if got := f.store.CanEdit(own); got != tc.own {
				t.Errorf("CanEdit(own) = %v, want %v", got, tc.own)
			}
			if got := f.store.CanDelete(foreign); got != tc.other {
				t.Errorf("CanDelete(foreign) = %v, want %v", got, tc.other)
			}
			if got := f.store.CanManageUsers(); got != tc.manageUsers {
				t.Errorf("CanManageUsers = %v, want %v", got, tc.manageUsers)
			}
		})
	}
}

func TestBootstrapDiscardsMalformedToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.tokens.Save(ctx, "definitely.not.a-jwt"); err != nil {
		t.Fatal(err)
	}

	if err := f.store.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if f.store.IsAuthenticated() {
		t.Fatal("session should be empty")
	}
	if _, err := f.tokens.Load(ctx); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatalf("persisted token should be gone, load err = %v", err)
	}
}

func TestBootstrapDiscardsSchemaMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	token := f.backend.Issue(models.UserSummary{ID: "x1", Name: "Mallory", Role: "owner"})
	if err := f.tokens.Save(ctx, token); err != nil {
		t.Fatal(err)
	}

	if err := f.store.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if f.store.IsAuthenticated() {
		t.Fatal("token with unknown role must not authenticate")
	}
	if _, err := f.tokens.Load(ctx); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatalf("load err = %v", err)
	}
}

func TestBootstrapRestoresAdminWithoutValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SetPosts(models.Post{ID: "p1", Title: "Welcome", Author: "Grace Admin"})
	if err := f.tokens.Save(ctx, f.backend.Issue(adminUser)); err != nil {
		t.Fatal(err)
	}

	if err := f.store.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	sess := f.store.Session()
	if !sess.Authenticated() || *sess.User != adminUser || sess.Mode != ModeCreator {
		t.Fatalf("session = %+v", sess)
	}
	if f.backend.Calls("POST /users/login") != 0 {
		t.Fatal("bootstrap must not log in")
	}
	if f.backend.Calls("GET /users") != 1 {
		t.Fatalf("users fetched %d times", f.backend.Calls("GET /users"))
	}
	if len(f.store.Posts()) != 1 || len(f.store.Users()) != 2 {
		t.Fatalf("posts=%d users=%d", len(f.store.Posts()), len(f.store.Users()))
	}
}

func TestBootstrapCreatorSkipsUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.tokens.Save(ctx, f.backend.Issue(creatorUser)); err != nil {
		t.Fatal(err)
	}

	if err := f.store.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if !f.store.IsAuthenticated() {
		t.Fatal("expected creator session")
	}
	if n := f.backend.Calls("GET /users"); n != 0 {
		t.Fatalf("creator bootstrap fetched users %d times", n)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)

	ok, err := f.store.Login(context.Background(), "admin", "wrongpass")
	if err != nil {
		t.Fatalf("bad credentials must not error: %v", err)
	}
	if ok {
		t.Fatal("login should fail")
	}
	if f.store.IsAuthenticated() {
		t.Fatal("session should be empty")
	}
	if _, err := f.tokens.Load(context.Background()); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatal("no token should be persisted")
	}
}

func TestLoginAdmin(t *testing.T) {
	f := newFixture(t)

	ok, err := f.store.Login(context.Background(), "admin", "correctpass")
	if err != nil || !ok {
		t.Fatalf("login: ok=%v err=%v", ok, err)
	}

	sess := f.store.Session()
	if sess.User == nil || sess.User.Role != models.RoleAdmin {
		t.Fatalf("session = %+v", sess)
	}
	if n := f.backend.Calls("GET /users"); n != 1 {
		t.Fatalf("users fetched %d times, want 1", n)
	}
	if n := f.backend.Calls("GET /posts"); n != 1 {
		t.Fatalf("posts fetched %d times, want 1", n)
	}
	persisted, err := f.tokens.Load(context.Background())
	if err != nil || persisted != sess.Token {
		t.Fatalf("persisted token = %q, %v", persisted, err)
	}
}

func TestLoginTransportFailure(t *testing.T) {
	client := api.NewClientWithHTTP("http://127.0.0.1:1/api", http.DefaultClient, zerolog.Nop())
	store := New(client, tokenstore.NewMemory(), zerolog.Nop())

	ok, err := store.Login(context.Background(), "admin", "correctpass")
	if ok || err == nil {
		t.Fatalf("ok=%v err=%v, want false and an error", ok, err)
	}
	if store.IsAuthenticated() {
		t.Fatal("session should be empty")
	}
}

func TestLoginServerErrorIsReported(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail("POST /users/login", http.StatusBadGateway, "upstream down")

	ok, err := f.store.Login(context.Background(), "admin", "correctpass")
	if ok || api.StatusOf(err) != http.StatusBadGateway {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestAddPostReflectsRefetch(t *testing.T) {
	f := newFixture(t)
	f.login(t, "casey", "caseypass")

	canonical := []models.Post{
		{ID: "srv-1", Title: "Server truth", Author: "Casey"},
		{ID: "srv-2", Title: "Another", Author: "Robin"},
	}
	f.backend.PinPosts(canonical...)

	if err := f.store.AddPost(context.Background(), validDraft("My local draft")); err != nil {
		t.Fatalf("add post: %v", err)
	}

	got := f.store.Posts()
	if len(got) != len(canonical) {
		t.Fatalf("posts = %+v", got)
	}
	for i := range canonical {
		if got[i] != canonical[i] {
			t.Fatalf("post %d = %+v, want %+v", i, got[i], canonical[i])
		}
	}

	created := f.backend.Posts()
	if len(created) != 1 || created[0].Author != "Casey" || created[0].ReadTime != models.DefaultReadTime {
		t.Fatalf("backend received %+v", created)
	}
}

func TestAddPostValidationSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	f.login(t, "casey", "caseypass")

	err := f.store.AddPost(context.Background(), models.PostDraft{Title: "Only a title"})
	if !models.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if n := f.backend.Calls("POST /posts"); n != 0 {
		t.Fatalf("backend hit %d times", n)
	}
}

func TestMutationsRequireSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checks := map[string]error{
		"add post":    f.store.AddPost(ctx, validDraft("x")),
		"update post": f.store.UpdatePost(ctx, "p1", validDraft("x")),
		"delete post": f.store.DeletePost(ctx, "p1"),
		"add user":    f.store.AddUser(ctx, models.User{Username: "n", Password: "p", Name: "N", Role: models.RoleCreator}),
		"delete user": f.store.DeleteUser(ctx, "u1"),
		"password":    f.store.ChangeUserPassword(ctx, "u1", "newpass"),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestWriteFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.backend.SetPosts(models.Post{ID: "p1", Title: "Original", Author: "Casey"})
	f.login(t, "casey", "caseypass")
	before := f.store.Posts()
	postCalls := f.backend.Calls("GET /posts")

	f.backend.Fail("PUT /posts/:id", http.StatusInternalServerError, "database unavailable")
	err := f.store.UpdatePost(context.Background(), "p1", validDraft("Changed"))
	if api.MessageOf(err) != "database unavailable" {
		t.Fatalf("err = %v", err)
	}

	if got := f.store.Posts(); len(got) != 1 || got[0] != before[0] {
		t.Fatalf("posts changed: %+v", got)
	}
	if f.backend.Calls("GET /posts") != postCalls {
		t.Fatal("failed write must not trigger a reload")
	}
	if !f.store.IsAuthenticated() {
		t.Fatal("a 500 must not end the session")
	}
}

func TestCreatorCannotTouchForeignPost(t *testing.T) {
	f := newFixture(t)
	f.backend.SetPosts(models.Post{ID: "p9", Title: "Robin's", Author: "Robin"})
	f.login(t, "casey", "caseypass")
	ctx := context.Background()

	if err := f.store.UpdatePost(ctx, "p9", validDraft("hijack")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("update err = %v", err)
	}
	if err := f.store.DeletePost(ctx, "p9"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete err = %v", err)
	}
	if f.backend.Calls("PUT /posts/:id")+f.backend.Calls("DELETE /posts/:id") != 0 {
		t.Fatal("forbidden writes reached the backend")
	}
}

func TestAdminUpdateKeepsAuthor(t *testing.T) {
	f := newFixture(t)
	f.backend.SetPosts(models.Post{ID: "p9", Title: "Robin's", Author: "Robin"})
	f.login(t, "admin", "correctpass")

	if err := f.store.UpdatePost(context.Background(), "p9", validDraft("Edited by admin")); err != nil {
		t.Fatalf("update: %v", err)
	}
	post, ok := f.store.Post("p9")
	if !ok || post.Title != "Edited by admin" || post.Author != "Robin" {
		t.Fatalf("post = %+v, ok=%v", post, ok)
	}
}

func TestDeletePostRefreshes(t *testing.T) {
	f := newFixture(t)
	f.backend.SetPosts(
		models.Post{ID: "p1", Title: "Keep", Author: "Robin"},
		models.Post{ID: "p2", Title: "Drop", Author: "Casey"},
	)
	f.login(t, "casey", "caseypass")

	if err := f.store.DeletePost(context.Background(), "p2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.store.Posts(); len(got) != 1 || got[0].ID != "p1" {
		t.Fatalf("posts = %+v", got)
	}
}

func TestUserManagement(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin", "correctpass")
	ctx := context.Background()

	err := f.store.AddUser(ctx, models.User{Username: "robin", Password: "pw", Name: "Robin", Role: models.RoleCreator})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}

	var robin models.User
	for _, u := range f.store.Users() {
		if u.Username == "robin" {
			robin = u
		}
		if u.Password != "" {
			t.Fatalf("password leaked for %s", u.Username)
		}
	}
	if robin.ID == "" {
		t.Fatalf("users = %+v", f.store.Users())
	}

	usersCalls := f.backend.Calls("GET /users")
	if err := f.store.ChangeUserPassword(ctx, robin.ID, "fresh"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if f.backend.Password("robin") != "fresh" {
		t.Fatal("password not changed")
	}
	if f.backend.Calls("GET /users") != usersCalls {
		t.Fatal("password change must not reload users")
	}

	if err := f.store.DeleteUser(ctx, robin.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	for _, u := range f.store.Users() {
		if u.ID == robin.ID {
			t.Fatal("deleted user still listed")
		}
	}
}

func TestUserManagementValidation(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin", "correctpass")
	ctx := context.Background()

	if err := f.store.AddUser(ctx, models.User{Username: "x", Role: models.RoleCreator}); !models.IsValidation(err) {
		t.Fatalf("add user err = %v", err)
	}
	if err := f.store.ChangeUserPassword(ctx, "a1", ""); !models.IsValidation(err) {
		t.Fatalf("password err = %v", err)
	}
	if f.backend.Calls("POST /users/register")+f.backend.Calls("PUT /users/:id/password") != 0 {
		t.Fatal("validation failures reached the backend")
	}
}

func TestCreatorCannotManageUsers(t *testing.T) {
	f := newFixture(t)
	f.login(t, "casey", "caseypass")

	err := f.store.AddUser(context.Background(), models.User{Username: "n", Password: "p", Name: "N", Role: models.RoleAdmin})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(f.store.RefreshUsers(context.Background()), ErrForbidden) {
		t.Fatal("creator must not list users")
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin", "correctpass")
	ctx := context.Background()

	if err := f.store.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := f.store.Logout(ctx); err != nil {
		t.Fatalf("second logout: %v", err)
	}

	for _, p := range []models.Post{{Author: "Grace Admin"}, {Author: ""}, {Author: "Casey"}} {
		if f.store.CanEdit(p) {
			t.Fatalf("CanEdit(%+v) after logout", p)
		}
	}
	if len(f.store.Users()) != 0 {
		t.Fatal("users should be cleared")
	}
	if _, err := f.tokens.Load(ctx); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatal("token should be deleted")
	}
	if f.store.Session().Mode != ModeAnonymous {
		t.Fatal("mode should reset")
	}
}

func TestUnauthorizedWriteEndsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t, "casey", "caseypass")
	f.backend.Revoke(f.store.Session().Token)

	err := f.store.AddPost(context.Background(), validDraft("late"))
	if !errors.Is(err, ErrSessionExpired) || api.StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("err = %v", err)
	}
	if f.store.IsAuthenticated() {
		t.Fatal("session should be dropped after 401")
	}
	if _, err := f.tokens.Load(context.Background()); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Fatal("expired token should be deleted")
	}
}

func TestPostsReadDegradesToEmpty(t *testing.T) {
	f := newFixture(t)
	f.backend.SetPosts(models.Post{ID: "p1", Author: "Casey"})
	if err := f.store.RefreshPosts(context.Background()); err != nil {
		t.Fatal(err)
	}

	f.backend.Fail("GET /posts", http.StatusServiceUnavailable, "maintenance")
	if err := f.store.RefreshPosts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := f.store.Posts(); len(got) != 0 {
		t.Fatalf("posts = %+v, want empty", got)
	}
	if !f.store.PostsStale() {
		t.Fatal("failed reload should leave posts stale")
	}
}

func TestViewerMode(t *testing.T) {
	f := newFixture(t)

	f.store.SetViewerMode(true)
	if f.store.Session().Mode != ModeViewer {
		t.Fatal("expected viewer mode")
	}
	f.store.SetViewerMode(false)
	if f.store.Session().Mode != ModeAnonymous {
		t.Fatal("expected anonymous mode")
	}

	f.login(t, "casey", "caseypass")
	f.store.SetViewerMode(true)
	if !f.store.CanEdit(models.Post{Author: "Casey"}) {
		t.Fatal("viewer mode must not change permissions")
	}
	f.store.SetViewerMode(false)
	if f.store.Session().Mode != ModeCreator {
		t.Fatal("expected creator mode")
	}
}

func TestSessionSnapshotIsCopy(t *testing.T) {
	f := newFixture(t)
	f.login(t, "casey", "caseypass")

	snap := f.store.Session()
	snap.User.Role = models.RoleAdmin
	if f.store.CanManageUsers() {
		t.Fatal("mutating a snapshot changed the store")
	}
}

func TestSecondLoginReplacesIdentity(t *testing.T) {
	f := newFixture(t)
	f.login(t, "admin", "correctpass")
	f.login(t, "casey", "caseypass")

	if f.store.CanManageUsers() {
		t.Fatal("creator login must drop admin rights")
	}
	if len(f.store.Users()) != 0 {
		t.Fatal("users collection must be cleared for creators")
	}
}
