// Package plex implements the catalog interfaces against a Plex Media
// Server and the plex.tv account API.
package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mydehq/plextitler/internal/catalog"
	"github.com/mydehq/plextitler/internal/types"
)

const (
	accountBase = "https://plex.tv"

	product          = "plextitler"
	clientIdentifier = "plextitler-cli"

	requestTimeout = 30 * time.Second
)

// Client talks to the plex.tv account API.
type Client struct {
	base string
	http *http.Client
}

// New returns a client against the public plex.tv endpoint.
func New() *Client {
	return NewWithBase(accountBase)
}

// NewWithBase returns a client against an alternate account endpoint.
func NewWithBase(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

// userPayload is the account shape shared by sign-in and token
// validation responses.
type userPayload struct {
	AuthToken string `json:"authToken"`
	Username  string `json:"username"`
}

// SignIn authenticates with username and password, plus an optional
// second-factor code. Rejections come back as *catalog.AuthError so
// the caller can distinguish a bad password and a required
// verification code from transport failures.
func (c *Client) SignIn(ctx context.Context, username, password, code string) (catalog.Account, error) {
	form := url.Values{}
	form.Set("login", username)
	form.Set("password", password)
	if code != "" {
		form.Set("verificationCode", code)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/api/v2/users/signin", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.decorate(req, "")

	var user userPayload
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &Account{client: c, token: user.AuthToken, username: user.Username}, nil
}

// AccountFromToken validates a cached token and returns the account it
// belongs to. A rejected token yields *catalog.AuthError.
func (c *Client) AccountFromToken(ctx context.Context, token string) (catalog.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v2/user", nil)
	if err != nil {
		return nil, err
	}
	c.decorate(req, token)

	var user userPayload
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	if user.AuthToken == "" {
		user.AuthToken = token
	}
	return &Account{client: c, token: user.AuthToken, username: user.Username}, nil
}

// do executes the request and decodes a 2xx JSON body into out.
// 401/403 responses are decoded into the structured rejection the rest
// of the program dispatches on.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return decodeAuthError(resp.Body)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return types.ErrAPIError{
			Service:    "plex.tv",
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeAuthError turns the service's error list into an AuthError,
// keeping the first entry's code and message when present.
func decodeAuthError(body io.Reader) error {
	var payload struct {
		Errors []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && len(payload.Errors) > 0 {
		return &catalog.AuthError{
			Code:    payload.Errors[0].Code,
			Message: payload.Errors[0].Message,
		}
	}
	return &catalog.AuthError{Message: "invalid or expired credentials"}
}

// decorate sets the identification headers the service expects on
// every request.
func (c *Client) decorate(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	if token != "" {
		req.Header.Set("X-Plex-Token", token)
	}
}

// Account is an authenticated plex.tv account.
type Account struct {
	client   *Client
	token    string
	username string
}

func (a *Account) Username() string { return a.username }
func (a *Account) Token() string    { return a.token }

// Servers lists the media servers available on the account.
func (a *Account) Servers(ctx context.Context) ([]catalog.ServerRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.client.base+"/api/v2/resources?includeHttps=1", nil)
	if err != nil {
		return nil, err
	}
	a.client.decorate(req, a.token)

	var resources []struct {
		Name        string `json:"name"`
		Provides    string `json:"provides"`
		AccessToken string `json:"accessToken"`
		Connections []struct {
			URI string `json:"uri"`
		} `json:"connections"`
	}
	if err := a.client.do(req, &resources); err != nil {
		return nil, err
	}

	var refs []catalog.ServerRef
	for _, r := range resources {
		if !strings.Contains(r.Provides, "server") {
			continue
		}
		uris := make([]string, 0, len(r.Connections))
		for _, conn := range r.Connections {
			uris = append(uris, conn.URI)
		}
		token := r.AccessToken
		if token == "" {
			token = a.token
		}
		refs = append(refs, &ServerRef{name: r.Name, token: token, uris: uris})
	}
	return refs, nil
}

// ServerRef is an advertised server that has not been connected yet.
type ServerRef struct {
	name  string
	token string
	uris  []string
}

func (r *ServerRef) Name() string { return r.name }

// Connect tries each advertised connection URI in order and returns
// the first one that answers.
func (r *ServerRef) Connect(ctx context.Context) (catalog.Server, error) {
	var lastErr error
	for _, uri := range r.uris {
		srv := newServer(uri, r.token)
		srv.name = r.name
		if err := srv.ping(ctx); err != nil {
			lastErr = err
			continue
		}
		return srv, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("could not reach server %q: %w", r.name, lastErr)
	}
	return nil, fmt.Errorf("server %q has no advertised connections", r.name)
}
