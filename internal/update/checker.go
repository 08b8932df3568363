package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const DefaultBaseURL = "https://api.github.com"

var (
	ErrDevBuild = errors.New("cannot check a development build")
	ErrBadTag   = errors.New("release tag is not a semantic version")
)

type Checker struct {
	baseURL string
	client  *http.Client
}

type Option func(*Checker)

func WithBaseURL(u string) Option {
	return func(c *Checker) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type CheckInput struct {
	// Repo is "owner/name".
	Repo    string
	Version string
}

type CheckResult struct {
	LatestVersion   string
	UpdateAvailable bool
}

type release struct {
	TagName string `json:"tag_name"`
}

// Check compares input.Version against the latest published release of input.Repo.
func (c *Checker) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	if input.Version == "" || input.Version == "(devel)" {
		return nil, ErrDevBuild
	}
	current := canonical(input.Version)
	if current == "" {
		return nil, fmt.Errorf("current version %q: %w", input.Version, ErrBadTag)
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.baseURL, input.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	latest := canonical(rel.TagName)
	if latest == "" {
		return nil, fmt.Errorf("%q: %w", rel.TagName, ErrBadTag)
	}

	return &CheckResult{
		LatestVersion:   rel.TagName,
		UpdateAvailable: semver.Compare(current, latest) < 0,
	}, nil
}

// canonical accepts "1.2.3" or "v1.2.3" and returns "v1.2.3", or "" if invalid.
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
