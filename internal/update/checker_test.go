package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, tag string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/owner/repo/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `","name":"release"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		tag       string
		available bool
	}{
		{"newer patch", "1.0.0", "v1.0.1", true},
		{"newer minor without prefix", "v1.2.9", "1.3.0", true},
		{"same", "1.2.3", "v1.2.3", false},
		{"ahead of release", "2.0.0", "v1.9.9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := releaseServer(t, tt.tag)
			c := NewChecker(WithBaseURL(srv.URL + "/"))
			res, err := c.Check(context.Background(), &CheckInput{Repo: "owner/repo", Version: tt.current})
			require.NoError(t, err)
			assert.Equal(t, tt.available, res.UpdateAvailable)
			assert.Equal(t, tt.tag, res.LatestVersion)
		})
	}
}

func TestCheckDevBuild(t *testing.T) {
	_, err := NewChecker().Check(context.Background(), &CheckInput{Repo: "owner/repo", Version: "(devel)"})
	assert.ErrorIs(t, err, ErrDevBuild)
}

func TestCheckBadTag(t *testing.T) {
	srv := releaseServer(t, "nightly")
	_, err := NewChecker(WithBaseURL(srv.URL)).Check(context.Background(), &CheckInput{Repo: "owner/repo", Version: "1.0.0"})
	assert.ErrorIs(t, err, ErrBadTag)
}

func TestCheckHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewChecker(WithBaseURL(srv.URL)).Check(context.Background(), &CheckInput{Repo: "owner/repo", Version: "1.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
