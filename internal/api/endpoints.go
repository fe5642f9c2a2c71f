package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/users/login",
		body:   credentials{Username: username, Password: password},
		out:    &out,
	})
	return out, err
}

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.do(ctx, call{method: http.MethodGet, path: "/posts", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, draft models.PostDraft) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/posts", token: token, body: draft})
}

func (c *Client) UpdatePost(ctx context.Context, token, id string, draft models.PostDraft) error {
	return c.do(ctx, call{method: http.MethodPut, path: "/posts/" + url.PathEscape(id), token: token, body: draft})
}

func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/posts/" + url.PathEscape(id), token: token})
}

type uploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (c *Client) RequestUpload(ctx context.Context, token, fileName, contentType string) (models.UploadTarget, error) {
	var out models.UploadTarget
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/posts/upload-url",
		token:  token,
		body:   uploadRequest{FileName: fileName, ContentType: contentType},
		out:    &out,
	})
	return out, err
}

// PutObject uploads data straight to a presigned URL. The URL carries its own
// authorization, so no bearer token is sent.
func (c *Client) PutObject(ctx context.Context, target models.UploadTarget, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", target.Key, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: "upload rejected"}
	}
	return nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users", token: token, out: &out}); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Password = ""
	}
	return out, nil
}

func (c *Client) RegisterUser(ctx context.Context, token string, user models.User) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/users/register", token: token, body: user})
}

func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/users/" + url.PathEscape(id), token: token})
}

func (c *Client) ChangePassword(ctx context.Context, token, id, newPassword string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   "/users/" + url.PathEscape(id) + "/password",
		token:  token,
		body:   models.PasswordChange{NewPassword: newPassword},
	})
}

type messageBody struct {
	Message string `json:"message"`
}

func (c *Client) Subscribe(ctx context.Context, sub models.Subscriber) (string, error) {
	var out messageBody
	err := c.do(ctx, call{method: http.MethodPost, path: "/subscriptions", body: sub, out: &out})
	return out.Message, err
}

func (c *Client) SubscribeProducts(ctx context.Context, sub models.Subscriber) (string, error) {
	var out messageBody
	err := c.do(ctx, call{method: http.MethodPost, path: "/product-subscriptions", body: sub, out: &out})
	return out.Message, err
}

func (c *Client) UnsubscribeProducts(ctx context.Context, email, token string) (string, error) {
	var out messageBody
	err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/product-subscriptions",
		query:  url.Values{"email": {email}, "token": {token}},
		out:    &out,
	})
	return out.Message, err
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var out chatResponse
	err := c.do(ctx, call{method: http.MethodPost, path: "/chat", body: chatRequest{Message: message}, out: &out})
	return out.Reply, err
}
