package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)

	return email, string(password), nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	res, err := a.api.Register(ctx, email, password)
	if err != nil {
		a.println("Registration failed: " + message(err))
		return err
	}

	if err := a.signedIn(ctx, res); err != nil {
		return err
	}
	a.println("Registered and signed in as " + a.email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.println("Login failed: " + message(err))
		return err
	}

	if err := a.signedIn(ctx, res); err != nil {
		return err
	}
	a.println("Signed in as " + a.email)
	return nil
}

func (a *App) signedIn(ctx context.Context, res *models.AuthResult) error {
	if res.Session == nil {
		a.println("No session returned; please log in.")
		return errors.New("no session")
	}
	a.email = res.User.Email
	return a.store.Save(ctx, &session.Session{
		Email:        res.User.Email,
		UserID:       res.User.ID,
		AccessToken:  res.Session.AccessToken,
		RefreshToken: res.Session.RefreshToken,
	})
}

// Logout forgets the local session even when the server is unreachable.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	if cerr := a.forget(ctx); cerr != nil {
		return cerr
	}
	if err != nil {
		a.println("Logged out locally; the server could not be reached.")
		return err
	}
	a.println("Logged out successfully")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return a.fail(ctx, "Failed to load profile.", err)
	}
	a.printf("%s (id %s)\n", u.Email, u.ID)
	return nil
}

func (a *App) forget(ctx context.Context) error {
	a.email = ""
	a.api.SetTokens("", "")
	return a.store.Clear(ctx)
}

// fail reports a failed note operation in one line. A 401 that survived the
// refresh attempt ends the local session.
func (a *App) fail(ctx context.Context, msg string, err error) error {
	if api.IsStatus(err, http.StatusUnauthorized) {
		_ = a.forget(ctx)
		a.println("Session expired. Please log in again.")
		return err
	}
	a.println(msg)
	return err
}

func message(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
