package plaud

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	pnehttp "github.com/Wicz-Cloud/pai-note-exporter/http"
)

// ErrEmptyCredentials indicates login was attempted without an email or
// password.
var ErrEmptyCredentials = errors.New("email and password must be non-empty")

// Login exchanges credentials for a bearer token. It does not retry: a
// credential rejection comes back as *pnehttp.AuthError (fatal for the
// run), any other failure as a transport or API error the caller may
// retry.
func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	if email == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp loginResponse
	if err := c.http.Post(ctx, "/auth/login-email", body, &resp); err != nil {
		var apiErr *pnehttp.APIError
		if errors.As(err, &apiErr) {
			// 401/403 and business rejections are credential failures,
			// not transient faults.
			if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 || apiErr.BusinessFailure {
				return nil, &pnehttp.AuthError{Reason: apiErr.Message}
			}
		}
		return nil, err
	}

	if resp.AccessToken == "" {
		return nil, &pnehttp.AuthError{Reason: "login succeeded but no access token was returned"}
	}

	tok := &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if exp, ok := tokenExpiry(resp.AccessToken); ok {
		tok.Expiry = exp
	}

	c.logger.Info("login successful", "email", email, "token_expiry", tok.Expiry)
	return tok, nil
}

// tokenExpiry recovers the expiry claim from the bearer JWT without
// verifying the signature; the token is only inspected, never trusted
// locally.
func tokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
