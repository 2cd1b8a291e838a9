package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token pair. No stored credential is sent.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var pair TokenPair
	if err := c.doJSON(anonymous(ctx), http.MethodPost, "/accounts/login/", body, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Method: http.MethodPost, Path: "/accounts/login/", Detail: "response carried no access token"}
	}
	return &pair, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, reg Registration) (*Account, error) {
	var acct Account
	if err := c.doJSON(anonymous(ctx), http.MethodPost, "/accounts/register/", reg, &acct); err != nil {
		return nil, err
	}
	if acct.Username == "" {
		acct.Username = reg.Username
	}
	if acct.Email == "" {
		acct.Email = reg.Email
	}
	return &acct, nil
}

// GetProfile returns the signed-in account.
func (c *Client) GetProfile(ctx context.Context) (*Account, error) {
	var acct Account
	if err := c.doJSON(ctx, http.MethodGet, "/accounts/profile/", nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}
