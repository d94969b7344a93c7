package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// secureTokenURL is the refresh endpoint for Identity Toolkit sessions.
const secureTokenURL = "https://securetoken.googleapis.com/v1/token"

// expirySlack refreshes tokens slightly before they actually expire.
const expirySlack = time.Minute

// sessionToken is the persisted identity session (token.json, mode 0600).
type sessionToken struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	Expiry       time.Time `json:"expiry"`
}

func (t *sessionToken) valid() bool {
	return t != nil && t.IDToken != "" && time.Now().Add(expirySlack).Before(t.Expiry)
}

func loadToken(path string) (*sessionToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t sessionToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.RefreshToken == "" {
		return nil, fmt.Errorf("missing refresh token")
	}
	return &t, nil
}

func saveToken(path string, t *sessionToken) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// tokenSource returns an auto-refreshing source yielding the user's ID token
// as the bearer credential. ReuseTokenSource keeps the hot path lock-free
// until the token is close to expiry.
func (c *Client) tokenSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, refreshSource{c: c})
}

type refreshSource struct {
	c *Client
}

// Token implements oauth2.TokenSource. Rotated refresh tokens are persisted
// immediately; losing one would sign the user out.
func (s refreshSource) Token() (*oauth2.Token, error) {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil {
		return nil, fmt.Errorf("not signed in")
	}
	if c.sess.valid() {
		return &oauth2.Token{AccessToken: c.sess.IDToken, Expiry: c.sess.Expiry}, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.sess.RefreshToken},
	}

	ctx, cancel := context.WithTimeout(context.Background(), APITimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		secureTokenURL+"?key="+url.QueryEscape(c.settings.APIKey),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh session: token expired or revoked (run: taskdeck login)")
	}

	var body struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	ttl, err := strconv.Atoi(strings.TrimSpace(body.ExpiresIn))
	if err != nil || ttl <= 0 {
		ttl = 3600
	}

	c.sess.IDToken = body.IDToken
	if body.RefreshToken != "" {
		c.sess.RefreshToken = body.RefreshToken
	}
	if body.UserID != "" {
		c.sess.UserID = body.UserID
	}
	c.sess.Expiry = time.Now().Add(time.Duration(ttl) * time.Second)

	if err := saveToken(c.cfg.TokenPath(), c.sess); err != nil {
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}

	c.log.Debug("refreshed identity session", "user", c.sess.UserID)
	return &oauth2.Token{AccessToken: c.sess.IDToken, Expiry: c.sess.Expiry}, nil
}

// staticTokenSource authorizes one-off store access with a single ID token,
// used during registration before any session is persisted.
func staticTokenSource(idToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: idToken})
}

// freshIDToken returns a currently valid ID token for identity API calls.
func (c *Client) freshIDToken() (string, error) {
	tok, err := refreshSource{c: c}.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
