package github

import (
	"context"
	"errors"
	"testing"
	"time"

	gh "github.com/google/go-github/v68/github"
)

func TestFetchQuotas(t *testing.T) {
	reset := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	client := &mockClient{
		rateLimitsFn: func(_ context.Context) (*gh.RateLimits, *gh.Response, error) {
			return &gh.RateLimits{
				Core:    &gh.Rate{Limit: 5000, Remaining: 4990, Reset: gh.Timestamp{Time: reset}},
				GraphQL: &gh.Rate{Limit: 5000, Remaining: 120, Reset: gh.Timestamp{Time: reset}},
			}, emptyResponse(), nil
		},
	}

	quotas, err := FetchQuotas(context.Background(), client)
	if err != nil {
		t.Fatal(err)
	}
	if len(quotas) != 2 {
		t.Fatalf("got %d quotas, want 2", len(quotas))
	}
	if quotas[0].Resource != "core" || quotas[0].Remaining != 4990 {
		t.Errorf("core quota = %+v", quotas[0])
	}
	if quotas[1].Resource != "graphql" || quotas[1].Remaining != 120 || !quotas[1].Reset.Equal(reset) {
		t.Errorf("graphql quota = %+v", quotas[1])
	}
}

func TestFetchQuotas_MissingResource(t *testing.T) {
	client := &mockClient{
		rateLimitsFn: func(_ context.Context) (*gh.RateLimits, *gh.Response, error) {
			return &gh.RateLimits{Core: &gh.Rate{Limit: 60, Remaining: 59}}, emptyResponse(), nil
		},
	}

	quotas, err := FetchQuotas(context.Background(), client)
	if err != nil {
		t.Fatal(err)
	}
	if len(quotas) != 1 || quotas[0].Resource != "core" {
		t.Errorf("got %+v, want core only", quotas)
	}
}

func TestFetchQuotas_Error(t *testing.T) {
	client := &mockClient{
		rateLimitsFn: func(_ context.Context) (*gh.RateLimits, *gh.Response, error) {
			return nil, nil, errors.New("bad credentials")
		},
	}

	if _, err := FetchQuotas(context.Background(), client); err == nil {
		t.Error("expected error from FetchQuotas")
	}
}

func TestNewClient_EnterpriseURL(t *testing.T) {
	if _, err := NewClient("token", "https://github.example.com/"); err != nil {
		t.Fatalf("NewClient with enterprise URL: %v", err)
	}
	if _, err := NewClient("token", ""); err != nil {
		t.Fatalf("NewClient: %v", err)
	}
}
