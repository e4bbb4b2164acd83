// Package identity talks to the external WordPress JWT provider: it exchanges
// credentials for a token and resolves a token into a verified identity.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feedhub/internal/logs"

	"github.com/go-resty/resty/v2"
)

var ErrUnauthorized = errors.New("identity: invalid credentials or token")

// Identity — проверенный пользователь провайдера.
type Identity struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type Options struct {
	BaseURL      string
	TokenPath    string
	UserInfoPath string
	Timeout      time.Duration
	RetryCount   int
}

type Client struct {
	http *resty.Client
	opts Options
}

func NewClient(o Options) *Client {
	if o.TokenPath == "" {
		o.TokenPath = "/wp-json/jwt-auth/v1/token"
	}
	if o.UserInfoPath == "" {
		o.UserInfoPath = "/wp-json/wp/v2/users/me"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(o.BaseURL, "/")).
		SetTimeout(o.Timeout).
		SetRetryCount(o.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	// повторяем только сетевые ошибки и 5xx; 4xx — окончательный ответ
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
	})
	return &Client{http: c, opts: o}
}

// Token обменивает логин и пароль на JWT провайдера.
func (c *Client) Token(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post(c.opts.TokenPath)
	if err != nil {
		return "", fmt.Errorf("identity token request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || out.Token == "" {
		logs.With("identity").Debugf("token rejected: status %d", resp.StatusCode())
		return "", ErrUnauthorized
	}
	return out.Token, nil
}

// Me возвращает пользователя по токену. Роли берутся из user.roles,
// а если их там нет — из roles верхнего уровня.
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(c.opts.UserInfoPath)
	if err != nil {
		return nil, fmt.Errorf("identity user info request: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode() != http.StatusOK:
		return nil, fmt.Errorf("identity user info: unexpected status %d", resp.StatusCode())
	}
	return parseUser(resp.Body())
}

func parseUser(body []byte) (*Identity, error) {
	var raw struct {
		ID    int64    `json:"id"`
		Name  string   `json:"name"`
		Slug  string   `json:"slug"`
		Roles []string `json:"roles"`
		User  *struct {
			Roles []string `json:"roles"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("identity user info: %w", err)
	}
	id := &Identity{ID: raw.ID, Username: raw.Name, Roles: raw.Roles}
	if id.Username == "" {
		id.Username = raw.Slug
	}
	if raw.User != nil && len(raw.User.Roles) > 0 {
		id.Roles = raw.User.Roles
	}
	if id.Roles == nil {
		id.Roles = []string{}
	}
	return id, nil
}
