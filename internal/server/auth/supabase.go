package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseProvider delegates every operation to a Supabase project's GoTrue
// REST API. It holds no state besides the HTTP client and is safe for
// concurrent use.
type SupabaseProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseProvider builds a provider for the project at projectURL
// (e.g. https://xyz.supabase.co). A nil client means http.DefaultClient.
func NewSupabaseProvider(projectURL, apiKey string, client *http.Client) *SupabaseProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &SupabaseProvider{
		baseURL:    strings.TrimRight(projectURL, "/") + "/auth/v1",
		apiKey:     apiKey,
		httpClient: client,
	}
}

type supabaseUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u supabaseUser) identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// supabaseSession covers both token responses and the signup response, which
// is a bare user when email confirmation is pending.
type supabaseSession struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *supabaseUser `json:"user"`
	supabaseUser
}

func (s *supabaseSession) result() *AuthResult {
	res := &AuthResult{}
	if s.User != nil {
		res.User = s.User.identity()
	} else {
		res.User = s.supabaseUser.identity()
	}
	if s.AccessToken != "" {
		res.Session = &Session{
			AccessToken:  s.AccessToken,
			RefreshToken: s.RefreshToken,
			TokenType:    s.TokenType,
			ExpiresIn:    s.ExpiresIn,
			ExpiresAt:    s.ExpiresAt,
		}
	}
	return res
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register signs the user up and, when the project requires email
// confirmation and so returns no session, signs in right away.
func (p *SupabaseProvider) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	var out supabaseSession
	if err := p.do(ctx, http.MethodPost, "/signup", "", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}

	res := out.result()
	if res.Session != nil {
		return res, nil
	}

	signedIn, err := p.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	res.Session = signedIn.Session
	return res, nil
}

func (p *SupabaseProvider) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out supabaseSession
	if err := p.do(ctx, http.MethodPost, "/token?grant_type=password", "", credentials{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

func (p *SupabaseProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	var out supabaseUser
	if err := p.do(ctx, http.MethodGet, "/user", token, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "user not found"}
	}
	id := out.identity()
	return &id, nil
}

func (p *SupabaseProvider) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	var out supabaseSession
	body := map[string]string{"refresh_token": refreshToken}
	if err := p.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &out); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// Logout revokes the session behind accessToken. An empty token is a no-op.
func (p *SupabaseProvider) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	return p.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

// do performs one GoTrue call. Non-2xx answers become *Error carrying the
// upstream message; transport failures are internal errors.
func (p *SupabaseProvider) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return internal(err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return internal(err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return internal(fmt.Errorf("supabase %s %s: %w", method, redact(path), err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return internal(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: upstreamMessage(raw, resp.Status)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return internal(fmt.Errorf("decode supabase response: %w", err))
	}
	return nil
}

// upstreamMessage picks the human readable part of a GoTrue error body.
func upstreamMessage(raw []byte, fallback string) string {
	var e struct {
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil {
		for _, m := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fallback
}

func redact(path string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	return u.Path
}
