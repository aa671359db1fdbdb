package appwrite

import (
	"context"
	"net/http"
	"net/url"
)

// Account is the remote identity record, distinct from the profile
// document stored in the user collection.
type Account struct {
	ID    string `json:"$id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session proves a successful authentication. Secret is only returned at
// creation time and authorizes subsequent identity lookups.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
	Expire string `json:"expire"`
}

// CurrentSession addresses the session that authenticated the request.
const CurrentSession = "current"

func (c *Client) CreateAccount(ctx context.Context, userID, email, password, name string) (*Account, error) {
	body := map[string]string{
		"userId":   userID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var acct Account
	if err := c.call(ctx, http.MethodPost, "/account", nil, body, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (c *Client) CreateEmailSession(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var sess Session
	if err := c.call(ctx, http.MethodPost, "/account/sessions/email", nil, body, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GetAccount resolves the identity behind the client's session.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.call(ctx, http.MethodGet, "/account", nil, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, "/account/sessions/"+url.PathEscape(sessionID), nil, nil, nil)
}

// DeleteUser removes an identity with the server key. Used to compensate
// a half-completed sign-up.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.call(ctx, http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil, nil)
}
