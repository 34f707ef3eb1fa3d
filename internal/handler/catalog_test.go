package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSearchAuthors_EmptyQueryAllowed(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice")
	env.createUser(t, "bob")

	req := httptest.NewRequest(http.MethodGet, "/Snippets/SearchAuthors", nil)
	rr := httptest.NewRecorder()
	env.catalog.HandleSearchAuthors(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var authors []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &authors))
	assert.Len(t, authors, 2)
}

func TestHandleSearchTags_EmptyQueryRejected(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/Snippets/SearchTags?query=", nil)
	rr := httptest.NewRecorder()
	env.catalog.HandleSearchTags(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAddTag(t *testing.T) {
	env := newTestEnv(t)

	// The body is a bare JSON string, and so is the success response.
	req := httptest.NewRequest(http.MethodPost, "/api/tags/add", strings.NewReader(`"memoization"`))
	rr := httptest.NewRecorder()
	env.catalog.HandleAddTag(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var tagID string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tagID))
	assert.NotEmpty(t, tagID)
}

func TestHandleAddTag_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tags/add", strings.NewReader(`{"name":"x"}`))
	rr := httptest.NewRecorder()
	env.catalog.HandleAddTag(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleAddTag_EmptyName(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tags/add", strings.NewReader(`"  "`))
	rr := httptest.NewRecorder()
	env.catalog.HandleAddTag(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
