// Package api is a client for the notekeeper REST API. It keeps the token
// pair of the signed-in user and, when a call is rejected with 401, refreshes
// the pair once and retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

const maxResponseBytes = 4 << 20

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// TokensFunc is called after the client obtained a new token pair on its own.
type TokensFunc func(ctx context.Context, access, refresh string)

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    TokensFunc
}

// New returns a client for baseURL, which includes the /api prefix, e.g.
// "http://localhost:5000/api".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// OnRefresh registers fn to be told about tokens obtained by an automatic
// refresh.
func (c *Client) OnRefresh(fn TokensFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, email, password string) (*models.AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", credentials{Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, path, "", body, &res); err != nil {
		return nil, err
	}
	if res.Session != nil {
		c.SetTokens(res.Session.AccessToken, res.Session.RefreshToken)
	}
	return &res, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (*models.AuthResult, error) {
	_, refresh := c.Tokens()
	if refresh == "" {
		return nil, common.ErrInvalidToken
	}
	return c.authenticate(ctx, "/auth/refresh", map[string]string{"refresh_token": refresh})
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.authed(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the session on the server and forgets the tokens locally, even
// when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	access, _ := c.Tokens()
	err := c.do(ctx, http.MethodPost, "/auth/logout", access, nil, nil)
	c.SetTokens("", "")
	return err
}

func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	var notes []models.Note
	if err := c.authed(ctx, http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := c.authed(ctx, http.MethodGet, "/notes/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (*models.Note, error) {
	var n models.Note
	body := map[string]string{"title": title, "content": content}
	if err := c.authed(ctx, http.MethodPost, "/notes", body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) SummarizeNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := c.authed(ctx, http.MethodPost, "/notes/"+url.PathEscape(id)+"/summarize", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	if err := c.authed(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// authed sends the access token and retries once after a refresh when the
// server answers 401.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	access, refresh := c.Tokens()

	err := c.do(ctx, method, path, access, body, out)
	if !IsStatus(err, http.StatusUnauthorized) || refresh == "" {
		return err
	}

	res, rerr := c.Refresh(ctx)
	if rerr != nil {
		return err
	}

	c.mu.Lock()
	fn := c.onRefresh
	c.mu.Unlock()
	if fn != nil && res.Session != nil {
		fn(ctx, res.Session.AccessToken, res.Session.RefreshToken)
	}

	access, _ = c.Tokens()
	return c.do(ctx, method, path, access, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &m)
		return &Error{Status: resp.StatusCode, Message: m.Message}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
