// Package services contains the application services the CLI drives.
// This file defines the authentication service: login, register and logout
// on top of the API client and the session.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the API and record the session.
//   - Register: create a new account; does not log in.
//   - Logout: forget the session locally.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	Logout(ctx context.Context)
}

// AuthAPI is the slice of the API client the auth service calls.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.LoginResponse, error)
	Register(ctx context.Context, name, email, password string) (string, error)
}

// Sessions is the slice of session.Manager the auth service mutates.
type Sessions interface {
	Login(ctx context.Context, cred string, user models.User) error
	Logout(ctx context.Context)
}

type authService struct {
	api      AuthAPI
	sessions Sessions
	logger   logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client
// and session.
func NewAuthService(api AuthAPI, sessions Sessions, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &authService{api: api, sessions: sessions, logger: logger.With("component", "auth")}
}

// Login sends the credentials and, on success, hands the returned token and
// profile to the session. Wrong credentials come back as
// common.ErrInvalidCredentials.
func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("login: %w: email and password are required", common.ErrInvalidArgument)
	}

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.logger.Info(ctx, "login failed", "email", email, "error", err)
		return models.User{}, err
	}

	if err := a.sessions.Login(ctx, resp.AccessToken, resp.User); err != nil {
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	return resp.User, nil
}

// Register creates a new account on the server and returns its message.
func (a *authService) Register(ctx context.Context, name, email, password string) (string, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return "", fmt.Errorf("register: %w: name, email and password are required", common.ErrInvalidArgument)
	}
	msg, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return "", err
	}
	a.logger.Info(ctx, "registered", "email", email)
	return msg, nil
}

// Logout clears the local session. The API has no logout endpoint.
func (a *authService) Logout(ctx context.Context) {
	a.sessions.Logout(ctx)
	a.logger.Info(ctx, "logged out")
}
