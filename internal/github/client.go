package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client defines the GitHub REST API methods used by this application.
type Client interface {
	RateLimits(ctx context.Context) (*gh.RateLimits, *gh.Response, error)
}

// realClient wraps the go-github client to implement Client.
type realClient struct {
	inner *gh.Client
}

// NewClient creates a new GitHub API client authenticated with the given token.
// A non-empty enterpriseURL points the client at a GitHub Enterprise Server.
func NewClient(token, enterpriseURL string) (Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	inner := gh.NewClient(httpClient)
	if enterpriseURL != "" {
		var err error
		inner, err = inner.WithEnterpriseURLs(enterpriseURL, enterpriseURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URL %q: %w", enterpriseURL, err)
		}
	}
	return &realClient{inner: inner}, nil
}

func (c *realClient) RateLimits(ctx context.Context) (*gh.RateLimits, *gh.Response, error) {
	return c.inner.RateLimit.Get(ctx)
}

// Quota is the state of one rate-limited API resource.
type Quota struct {
	Resource  string    `json:"resource"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// FetchQuotas returns the core (REST) and graphql quotas, in that order.
func FetchQuotas(ctx context.Context, client Client) ([]Quota, error) {
	limits, _, err := client.RateLimits(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching rate limits: %w", err)
	}
	var quotas []Quota
	for _, r := range []struct {
		name string
		rate *gh.Rate
	}{
		{"core", limits.GetCore()},
		{"graphql", limits.GetGraphQL()},
	} {
		if r.rate == nil {
			continue
		}
		quotas = append(quotas, Quota{
			Resource:  r.name,
			Limit:     r.rate.Limit,
			Remaining: r.rate.Remaining,
			Reset:     r.rate.Reset.Time.UTC(),
		})
	}
	return quotas, nil
}
