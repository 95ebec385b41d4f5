package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// ErrNoVerifiedEmail is returned by Exchange when the GitHub account has no
// verified email address the blog could match against its users.
var ErrNoVerifiedEmail = errors.New("auth: GitHub account has no verified email")

const githubAPI = "https://api.github.com"

// GitHubUser is the part of the GitHub profile the blog uses.
// Email is always a verified address once Exchange returns.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GitHubProvider runs the OAuth 2.0 authorization code flow against GitHub.
//
// The blog only uses it to sign in accounts that already exist: the GitHub
// email is matched against registered users, nothing is created.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewGitHubProvider configures the flow. callbackURL must match the one
// registered with the GitHub OAuth app, e.g.
// "http://localhost:8080/auth/github/callback".
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPI,
	}
}

// AuthURL returns the GitHub authorization URL. state is echoed back on the
// callback and must match the value the server remembered in a cookie.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for an access token and loads the
// profile. When the profile hides its email, the verified primary address is
// taken from /user/emails.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}
	client := p.config.Client(ctx, token)

	var user GitHubUser
	if err := p.getJSON(client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("auth: GitHub returned an invalid user (ID = 0)")
	}

	email, err := p.primaryEmail(client)
	if err != nil {
		return nil, err
	}
	user.Email = email
	return &user, nil
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// primaryEmail picks the verified primary address, or failing that the
// first verified one. The profile's public email is not trusted since GitHub
// does not guarantee it is verified.
func (p *GitHubProvider) primaryEmail(client *http.Client) (string, error) {
	var emails []githubEmail
	if err := p.getJSON(client, "/user/emails", &emails); err != nil {
		return "", err
	}

	fallback := ""
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email, nil
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	if fallback == "" {
		return "", ErrNoVerifiedEmail
	}
	return fallback, nil
}

func (p *GitHubProvider) getJSON(client *http.Client, path string, dst any) error {
	resp, err := client.Get(strings.TrimRight(p.apiBase, "/") + path)
	if err != nil {
		return fmt.Errorf("auth: calling GitHub %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: GitHub %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("auth: decoding GitHub %s: %w", path, err)
	}
	return nil
}
