// Package graphql posts queries to the GitHub GraphQL endpoint.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	apperrors "github.com/stahnma/gh-repometa/internal/errors"
)

// DefaultEndpoint is the public GitHub GraphQL API.
const DefaultEndpoint = "https://api.github.com/graphql"

const userAgent = "gh-repometa/0.1"

// Client runs one GraphQL query and returns its data object.
type Client interface {
	Query(ctx context.Context, query string, variables map[string]any) (map[string]any, error)
}

// httpClient implements Client over an authenticated http.Client.
type httpClient struct {
	endpoint string
	http     *http.Client
	log      logrus.FieldLogger
}

// NewClient returns a Client sending the token as a bearer credential.
// timeout bounds every request; zero means no limit.
func NewClient(endpoint, token string, timeout time.Duration, log logrus.FieldLogger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = timeout
	return NewClientWithHTTP(endpoint, hc, log)
}

// NewClientWithHTTP uses hc as is. Tests point it at an httptest server.
func NewClientWithHTTP(endpoint string, hc *http.Client, log logrus.FieldLogger) Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &httpClient{endpoint: endpoint, http: hc, log: log}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   map[string]any          `json:"data"`
	Errors []apperrors.QueryError `json:"errors"`
}

func (c *httpClient) Query(ctx context.Context, query string, variables map[string]any) (map[string]any, error) {
	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting query: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"bytes":    len(payload),
		"duration": time.Since(start).String(),
	}).Debug("graphql query")

	var out response
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	decodeErr := dec.Decode(&out)

	if decodeErr == nil && len(out.Errors) > 0 {
		return nil, apperrors.NewRemoteQueryError(out.Errors)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("graphql endpoint returned status %d: %s", resp.StatusCode, truncate(payload, 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("graphql response carried no data")
	}
	return out.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
