// Package backendtest runs an in-process stand-in for the Grace Mobility REST
// backend so packages can be tested against real HTTP round trips.
package backendtest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/security"
)

const signingSecret = "backendtest-secret"

type account struct {
	password string
	user     models.UserSummary
}

type failure struct {
	status  int
	message string
}

// Object is a file received on a presigned upload URL.
type Object struct {
	ContentType string
	Data        []byte
}

type Backend struct {
	mu sync.Mutex

	server   *httptest.Server
	accounts map[string]account
	tokens   map[string]models.UserSummary
	posts    []models.Post
	pinned   []models.Post
	users    []models.User
	subs     map[string]bool
	products map[string]bool
	objects  map[string]Object
	calls    map[string]int
	failures map[string]failure
	reply    string
	nextID   int
}

func New(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		accounts: make(map[string]account),
		tokens:   make(map[string]models.UserSummary),
		subs:     make(map[string]bool),
		products: make(map[string]bool),
		objects:  make(map[string]Object),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
	}

	engine := gin.New()
	engine.Use(b.record)
	b.register(engine.Group("/api"))
	engine.PUT("/objects/*key", b.putObject)

	b.server = httptest.NewServer(engine)
	t.Cleanup(b.server.Close)
	return b
}

// URL is the API base URL, including the /api prefix.
func (b *Backend) URL() string {
	return b.server.URL + "/api"
}

func (b *Backend) HTTPClient() *http.Client {
	return b.server.Client()
}

// AddAccount registers login credentials and returns the token the backend
// will issue for them.
func (b *Backend) AddAccount(username, password string, user models.UserSummary) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.accounts[username] = account{password: password, user: user}
	b.users = append(b.users, models.User{ID: user.ID, Username: username, Role: user.Role, Name: user.Name})
	return b.issueLocked(user)
}

// Issue returns a signed token the backend accepts for user.
func (b *Backend) Issue(user models.UserSummary) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(user)
}

func (b *Backend) issueLocked(user models.UserSummary) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, security.SessionClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	}).SignedString([]byte(signingSecret))
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	b.tokens[token] = user
	return token
}

// Revoke makes the backend reject token with 401 from now on.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

func (b *Backend) SetPosts(posts ...models.Post) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = append([]models.Post(nil), posts...)
}

// PinPosts makes GET /posts answer with posts regardless of writes.
func (b *Backend) PinPosts(posts ...models.Post) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pinned = append([]models.Post{}, posts...)
}

func (b *Backend) SetChatReply(reply string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reply = reply
}

// Fail makes the route ("METHOD /path" as registered, e.g. "POST /posts")
// answer status with {"error": message}.
func (b *Backend) Fail(route string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = failure{status: status, message: message}
}

// Calls reports how often route was hit.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *Backend) Object(key string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	return obj, ok
}

func (b *Backend) Posts() []models.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Post(nil), b.posts...)
}

func (b *Backend) Users() []models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.User(nil), b.users...)
}

func (b *Backend) Password(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[username].password
}

func (b *Backend) record(c *gin.Context) {
	route := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), "/api")

	b.mu.Lock()
	b.calls[route]++
	f, failing := b.failures[route]
	b.mu.Unlock()

	if failing {
		c.AbortWithStatusJSON(f.status, gin.H{"error": f.message})
		return
	}
	c.Next()
}

func (b *Backend) register(r *gin.RouterGroup) {
	r.POST("/users/login", b.login)
	r.GET("/posts", b.listPosts)
	r.POST("/subscriptions", b.subscribe(b.subs))
	r.POST("/product-subscriptions", b.subscribe(b.products))
	r.DELETE("/product-subscriptions", b.unsubscribe)
	r.POST("/chat", b.chat)

	authed := r.Group("")
	authed.Use(b.auth)
	authed.POST("/posts", b.createPost)
	authed.PUT("/posts/:id", b.updatePost)
	authed.DELETE("/posts/:id", b.deletePost)
	authed.POST("/posts/upload-url", b.uploadURL)

	admin := r.Group("")
	admin.Use(b.auth, b.requireAdmin)
	admin.GET("/users", b.listUsers)
	admin.POST("/users/register", b.registerUser)
	admin.DELETE("/users/:id", b.deleteUser)
	admin.PUT("/users/:id/password", b.changePassword)
}

func (b *Backend) auth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
		return
	}

	b.mu.Lock()
	user, ok := b.tokens[strings.TrimPrefix(header, "Bearer ")]
	b.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}
	c.Set("current_user", user)
	c.Next()
}

func (b *Backend) requireAdmin(c *gin.Context) {
	user := c.MustGet("current_user").(models.UserSummary)
	if !user.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.Next()
}

func (b *Backend) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acct, ok := b.accounts[req.Username]
	if !ok || acct.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": b.issueLocked(acct.user),
		"user":  acct.user,
	})
}

func (b *Backend) listPosts(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pinned != nil {
		c.JSON(http.StatusOK, b.pinned)
		return
	}
	posts := b.posts
	if posts == nil {
		posts = []models.Post{}
	}
	c.JSON(http.StatusOK, posts)
}

func (b *Backend) createPost(c *gin.Context) {
	var draft models.PostDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	post := models.Post{
		ID:       fmt.Sprintf("p%d", b.nextID),
		Title:    draft.Title,
		Content:  draft.Content,
		Excerpt:  draft.Excerpt,
		Author:   draft.Author,
		ImageURL: draft.ImageURL,
		Date:     "2026-10-15",
		ReadTime: draft.ReadTime,
	}
	b.posts = append(b.posts, post)
	c.JSON(http.StatusCreated, post)
}

func (b *Backend) updatePost(c *gin.Context) {
	var draft models.PostDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.posts {
		if b.posts[i].ID == c.Param("id") {
			b.posts[i].Title = draft.Title
			b.posts[i].Content = draft.Content
			b.posts[i].Excerpt = draft.Excerpt
			b.posts[i].ImageURL = draft.ImageURL
			b.posts[i].ReadTime = draft.ReadTime
			c.JSON(http.StatusOK, b.posts[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
}

func (b *Backend) deletePost(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.posts {
		if b.posts[i].ID == c.Param("id") {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
}

func (b *Backend) uploadURL(c *gin.Context) {
	var req struct {
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fileName required"})
		return
	}
	key := "uploads/" + req.FileName
	c.JSON(http.StatusOK, models.UploadTarget{
		URL: b.server.URL + "/objects/" + key,
		Key: key,
	})
}

func (b *Backend) putObject(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.objects[strings.TrimPrefix(c.Param("key"), "/")] = Object{
		ContentType: c.GetHeader("Content-Type"),
		Data:        data,
	}
	b.mu.Unlock()
	c.Status(http.StatusOK)
}

func (b *Backend) listUsers(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	users := make([]models.User, 0, len(b.users))
	users = append(users, b.users...)
	c.JSON(http.StatusOK, users)
}

func (b *Backend) registerUser(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[user.Username]; exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}
	b.nextID++
	user.ID = fmt.Sprintf("u%d", b.nextID)
	b.accounts[user.Username] = account{
		password: user.Password,
		user:     models.UserSummary{ID: user.ID, Name: user.Name, Role: user.Role},
	}
	user.Password = ""
	b.users = append(b.users, user)
	c.JSON(http.StatusCreated, user)
}

func (b *Backend) deleteUser(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.users {
		if b.users[i].ID == c.Param("id") {
			delete(b.accounts, b.users[i].Username)
			b.users = append(b.users[:i], b.users[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
}

func (b *Backend) changePassword(c *gin.Context) {
	var req models.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "newPassword required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, u := range b.users {
		if u.ID != c.Param("id") {
			continue
		}
		acct := b.accounts[u.Username]
		acct.password = req.NewPassword
		b.accounts[u.Username] = acct
		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
}

func (b *Backend) subscribe(list map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub models.Subscriber
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		if list[sub.Email] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already subscribed"})
			return
		}
		list[sub.Email] = true
		c.JSON(http.StatusOK, gin.H{"message": "Subscribed"})
	}
}

func (b *Backend) unsubscribe(c *gin.Context) {
	email := c.Query("email")

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.products[email] || c.Query("token") == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		return
	}
	delete(b.products, email)
	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed"})
}

func (b *Backend) chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b.mu.Lock()
	reply := b.reply
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
