package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/models"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/client/pipeline"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// Login exchanges an email and password for a credential and profile.
func (c *Client) Login(ctx context.Context, email, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse

	o := c.sender.Send(ctx, pipeline.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   models.LoginRequest{Email: email, Password: password},
	})
	if o.Kind == pipeline.KindAuthFailure {
		return resp, fmt.Errorf("login: %w", common.ErrInvalidCredentials)
	}
	if err := o.Decode(&resp); err != nil {
		return resp, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return resp, fmt.Errorf("login: %w", common.ErrMalformedCredential)
	}
	return resp, nil
}

// Register creates an account and returns the server's acknowledgement.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var resp models.MessageResponse
	err := c.do(ctx, pipeline.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   models.RegisterRequest{Name: name, Email: email, Password: password},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return resp.Message, nil
}

// Me returns the profile bound to the stored credential.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var resp models.MeResponse
	if err := c.do(ctx, pipeline.Request{Method: http.MethodGet, Path: "/auth/me", RequiresAuth: true}, &resp); err != nil {
		return models.User{}, fmt.Errorf("who am i: %w", err)
	}
	if resp.User.ID == "" && resp.User.Email == "" {
		return models.User{}, fmt.Errorf("who am i: %w: empty profile", common.ErrServer)
	}
	return resp.User, nil
}

// WhoAmI lets the session validate a stored credential through the API.
func (c *Client) WhoAmI(ctx context.Context) (models.User, error) {
	return c.Me(ctx)
}
