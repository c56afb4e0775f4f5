// Package api fetches users and recipes from the remote JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/validation"
)

const (
	defaultUserAgent = "larder/1.0 (https://github.com/pders01/larder)"
	defaultTimeout   = 30 * time.Second
	// maxBody bounds a single response; the full recipe list is well below it.
	maxBody = 16 << 20
)

// HTTPError reports a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d (%s)", e.StatusCode, e.URL)
}

// ErrDecode wraps payloads that are not the expected JSON document.
var ErrDecode = errors.New("decoding response")

type Client struct {
	client     *http.Client
	usersURL   string
	recipesURL string
	userAgent  string
	flight     singleflight.Group
}

// NewClient validates the configured base URL and builds a client for it.
func NewClient(cfg *config.Config) (*Client, error) {
	v := validation.NewEndpointValidator()
	if cfg.API.AllowLocal {
		v = validation.NewPermissiveEndpointValidator()
	}
	base, err := v.ValidateAndNormalize(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}

	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.API.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		client:     &http.Client{Timeout: timeout},
		usersURL:   base + cfg.API.UsersPath,
		recipesURL: base + cfg.API.RecipesPath,
		userAgent:  ua,
	}, nil
}

type recipesPayload struct {
	Recipes []domain.Recipe `json:"recipes"`
}

type usersPayload struct {
	Users []domain.User `json:"users"`
}

// Recipes fetches the whole recipe catalog. A payload without a recipes
// member yields an empty catalog.
func (c *Client) Recipes(ctx context.Context) ([]domain.Recipe, error) {
	v, err := c.once(ctx, c.recipesURL, func(body []byte) (any, error) {
		var p recipesPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if p.Recipes == nil {
			p.Recipes = []domain.Recipe{}
		}
		return p.Recipes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Recipe), nil
}

// Users fetches the user directory used for sign-in.
func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	v, err := c.once(ctx, c.usersURL, func(body []byte) (any, error) {
		var p usersPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if p.Users == nil {
			p.Users = []domain.User{}
		}
		return p.Users, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.User), nil
}

// once collapses concurrent requests for the same URL into one round trip.
func (c *Client) once(ctx context.Context, url string, decode func([]byte) (any, error)) (any, error) {
	v, err, shared := c.flight.Do(url, func() (any, error) {
		body, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}
		return decode(body)
	})
	if shared {
		debuglog.Debugf("joined in-flight request for %s", url)
	}
	return v, err
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	debuglog.WithFields(map[string]interface{}{
		"url":     url,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debugf("GET")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}
