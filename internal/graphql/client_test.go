package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/stahnma/gh-repometa/internal/errors"
)

func setupTestClient(t *testing.T, handler http.HandlerFunc) Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClientWithHTTP(server.URL, server.Client(), log)
}

func TestQuery_SendsQueryAndVariables(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "query { viewer { login } }", req.Query)
		assert.Equal(t, "w3c", req.Variables["login"])

		fmt.Fprintln(w, `{"data": {"viewer": {"login": "octocat", "id": 12345678901234}}}`)
	})

	data, err := client.Query(context.Background(), "query { viewer { login } }", map[string]any{"login": "w3c"})
	require.NoError(t, err)

	viewer := data["viewer"].(map[string]any)
	assert.Equal(t, "octocat", viewer["login"])
	assert.Equal(t, json.Number("12345678901234"), viewer["id"], "numbers are kept exact")
}

func TestQuery_RemoteErrors(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{
			"data": {"organization": null},
			"errors": [
				{"type": "NOT_FOUND", "message": "Could not resolve to an Organization with the login of 'nobody'.",
				 "locations": [{"line": 4, "column": 7}], "path": ["organization"]},
				{"message": "second problem"}
			]
		}`)
	})

	_, err := client.Query(context.Background(), "query", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindRemoteQuery, apperrors.KindOf(err))

	var rqe *apperrors.RemoteQueryError
	require.ErrorAs(t, err, &rqe)
	assert.Equal(t, "NOT_FOUND", rqe.Type)
	assert.Equal(t, 4, rqe.Line)
	assert.Contains(t, rqe.Message, "nobody")
	assert.Len(t, rqe.All, 2)
}

func TestQuery_ErrorsOnUnauthorized(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintln(w, `{"message": "Bad credentials"}`)
	})

	_, err := client.Query(context.Background(), "query", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, apperrors.KindUnknown, apperrors.KindOf(err))
}

func TestQuery_InvalidJSON(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `<html>`)
	})

	_, err := client.Query(context.Background(), "query", nil)
	assert.ErrorContains(t, err, "decoding response")
}

func TestQuery_NoData(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{}`)
	})

	_, err := client.Query(context.Background(), "query", nil)
	assert.ErrorContains(t, err, "no data")
}

func TestQuery_ContextCancelled(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"data": {}}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Query(ctx, "query", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
