package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmptyBaseline(t *testing.T) {
	out, err := execute(t, "validate", "testdata/blog.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "has 3 errors")
	assert.Contains(t, out, "testdata/blog.yaml:2:5\n")
	assert.Contains(t, out, `You cannot delete content type "legacy" because it does not exist. [contentType/delete contentType/legacy/0]`)
	assert.Contains(t, out, `You cannot create the field with id "summary" on content type "blog" because it does not exist.`)
	assert.NotContains(t, out, `You cannot edit the field`)
}

func TestValidateWithSnapshot(t *testing.T) {
	out, err := execute(t, "validate", "testdata/blog.yaml", "--remote", "testdata/snapshot.json")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (4 actions, 2 chunks)")
}

func TestValidateWithCollectionSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	body := `{"total":2,"items":[{"sys":{"id":"blog"},"fields":[{"id":"title","type":"Symbol"}]},{"sys":{"id":"legacy"},"fields":[],"hasEntries":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := execute(t, "validate", "testdata/blog.yaml", "--remote", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFindings, resp.Error.Code)
	assert.Equal(t, `Content type with id "legacy" cannot be deleted because it still has entries.`, resp.Error.Message)
	assert.Equal(t, false, data["valid"])
	assert.Len(t, data["errors"], 1)
	assert.Equal(t, data["plan_hash"], resp.PlanHash)
}

func TestValidateBadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"total":0}`), 0o644))

	out, err := execute(t, "validate", "testdata/blog.yaml", "--remote", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E101]")

	_, err = execute(t, "validate", "testdata/blog.yaml", "--remote", "testdata/nope.json")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateRemoteAndLiveAreExclusive(t *testing.T) {
	_, err := execute(t, "validate", "testdata/blog.yaml", "--remote", "testdata/snapshot.json", "--live")
	require.Error(t, err)
}

// fakeService serves the content types and entries endpoints of one space.
func fakeService(t *testing.T, lookups *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("X-Contentful-User-Agent"), "app ctmigrate;")

		switch {
		case r.URL.Path == "/spaces/sp/environments/master/content_types":
			_, _ = w.Write([]byte(`{"total":2,"items":[
				{"sys":{"id":"blog"},"name":"Blog","fields":[{"id":"title","type":"Symbol"}]},
				{"sys":{"id":"legacy"},"name":"Legacy","fields":[]}]}`))
		case r.URL.Path == "/spaces/sp/environments/master/entries":
			lookups.Add(1)
			assert.Equal(t, "legacy", r.URL.Query().Get("sys.contentType.sys.id"))
			_, _ = w.Write([]byte(`{"total":1,"items":[{"sys":{"id":"entry-1"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func liveArgs(t *testing.T, srv *httptest.Server, extra ...string) []string {
	t.Helper()
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("https_proxy", "")
	t.Setenv("CONTENTFUL_MANAGEMENT_ACCESS_TOKEN", "")

	args := []string{
		"validate", "testdata/blog.yaml", "--live",
		"--space-id", "sp",
		"--host", strings.TrimPrefix(srv.URL, "http://"),
		"--insecure",
		"--access-token", "secret",
		"--config", filepath.Join(t.TempDir(), "missing.json"),
	}
	return append(args, extra...)
}

func TestValidateLive(t *testing.T) {
	var lookups atomic.Int32
	srv := fakeService(t, &lookups)
	defer srv.Close()

	out, err := execute(t, liveArgs(t, srv)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `Content type with id "legacy" cannot be deleted because it still has entries.`)
	assert.Equal(t, int32(1), lookups.Load())
}

func TestValidateLiveTokenFromEnv(t *testing.T) {
	var lookups atomic.Int32
	srv := fakeService(t, &lookups)
	defer srv.Close()

	args := liveArgs(t, srv)
	for i, a := range args {
		if a == "--access-token" {
			args = append(args[:i:i], args[i+2:]...)
			break
		}
	}
	t.Setenv("CONTENTFUL_MANAGEMENT_ACCESS_TOKEN", "secret")

	_, err := execute(t, args...)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, int32(1), lookups.Load())
}

func TestValidateLiveServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"The access token you sent could not be found or is invalid."}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	out, err := execute(t, liveArgs(t, srv)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E102]")
	assert.Contains(t, out, "401")
}

func TestValidateLiveRequiresSpace(t *testing.T) {
	srv := fakeService(t, &atomic.Int32{})
	defer srv.Close()

	args := liveArgs(t, srv)
	args[4] = "" // --space-id value
	out, err := execute(t, args...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E102]")
}

func TestValidatePersistsFindings(t *testing.T) {
	db := filepath.Join(t.TempDir(), "plans.db")

	_, err := execute(t, "validate", "testdata/blog.yaml", "--db", db, "--name", "blog-empty")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "blog-empty")
	assert.Contains(t, out, "SEQ")
}
