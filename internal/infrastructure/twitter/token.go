package twitter

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ASongADay/internal/domain"
)

const tokenPath = "/2/oauth2/token"

type tokenResponse struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Refresh performs the refresh_token grant. Any non-200 answer becomes an
// AuthError carrying the raw body.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.clientID)

	req, err := newRequest(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	var tok tokenResponse
	if err := c.do(req, "token", isOK, &tok); err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			return domain.Credential{}, &domain.AuthError{Status: apiErr.Status, Body: apiErr.Body}
		}
		return domain.Credential{}, err
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return domain.Credential{}, &domain.AuthError{Status: http.StatusOK, Body: "token response without access_token or refresh_token"}
	}

	cred := domain.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Scope:        tok.Scope,
		ExpiresIn:    tok.ExpiresIn,
	}
	if tok.ExpiresIn > 0 {
		cred.Expiry = time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return cred, nil
}
