package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
)

// Session reports whether the current cookie session is authenticated.
type Session struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	Username        string `json:"username"`
}

// User is the upstream account record.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the account-creation request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordChange is the change-password request body. The upstream verifies
// the current password and that the confirmation matches.
type PasswordChange struct {
	Current string `json:"current"`
	New     string `json:"new"`
	Confirm string `json:"confirm"`
}

// CheckAuth reports the state of the current session cookie.
func (c *Client) CheckAuth(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.get(ctx, "/api/check-auth/", nil, &s); err != nil {
		return nil, errors.Wrap(err, "check auth")
	}
	return &s, nil
}

// Login authenticates the session. The upstream sets the session cookie,
// which the client's jar retains for subsequent requests.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if err := c.sendJSON(ctx, http.MethodPost, "/api/login/", creds, nil); err != nil {
		return errors.Wrap(err, "login")
	}
	// Django rotates the CSRF token on login.
	c.dropCSRF()
	return nil
}

// Logout terminates the session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.sendJSON(ctx, http.MethodPost, "/api/logout/", struct{}{}, nil); err != nil {
		return errors.Wrap(err, "logout")
	}
	c.dropCSRF()
	return nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	if err := c.sendJSON(ctx, http.MethodPost, "/api/register/", reg, nil); err != nil {
		return errors.Wrap(err, "register")
	}
	return nil
}

// RequestPasswordReset asks the upstream to email a reset link to the given
// address. The endpoint sits outside the /api/ tree and is exempt from the
// CSRF scheme, so the request is built directly.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	data, err := json.Marshal(struct {
		Email string `json:"email"`
	}{Email: email})
	if err != nil {
		return errors.Wrap(err, "encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/password_reset/", nil), bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return errors.Wrap(err, "request password reset")
	}
	return nil
}

// ChangePassword rotates the password of the authenticated account.
func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	if err := c.sendJSON(ctx, http.MethodPost, "/api/change_password/", change, nil); err != nil {
		return errors.Wrap(err, "change password")
	}
	return nil
}

// CurrentUser returns the account behind the current session.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/api/current_user/", nil, &u); err != nil {
		return nil, errors.Wrap(err, "current user")
	}
	return &u, nil
}
