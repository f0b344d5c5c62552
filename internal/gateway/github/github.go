// Package github implements the repository gateway on the GitHub REST
// API. A PR ref is the pull request's HTML URL.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/felixgeelhaar/projector/internal/errors"
	"github.com/felixgeelhaar/projector/internal/log"
)

const defaultBaseURL = "https://api.github.com"

// Gateway creates branches and pull requests in a single repository.
type Gateway struct {
	token   string
	owner   string
	repo    string
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBaseURL overrides the GitHub API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(g *Gateway) {
		g.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithLogger sets the gateway logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// New creates a GitHub gateway for owner/repo.
func New(token, owner, repo string, opts ...Option) (*Gateway, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeGatewayConfig, "github token is required").
			WithSuggestion("Set github.token in the config file or PROJECTOR_GITHUB_TOKEN")
	}
	if owner == "" || repo == "" {
		return nil, errors.New(errors.ErrCodeGatewayConfig, "github owner and repo are required")
	}

	g := &Gateway{
		token:   token,
		owner:   owner,
		repo:    repo,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CreateBranch resolves the base branch's head commit and creates
// refs/heads/<name> pointing at it.
func (g *Gateway) CreateBranch(ctx context.Context, name, baseBranch string) error {
	if baseBranch == "" {
		baseBranch = "main"
	}

	refPath := fmt.Sprintf("/repos/%s/%s/git/ref/heads/%s", g.owner, g.repo, baseBranch)
	resp, status, err := g.do(ctx, http.MethodGet, refPath, "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("failed to resolve base branch %s", baseBranch), err)
	}
	if status >= 300 {
		return g.apiError(http.MethodGet, refPath, status, resp)
	}

	sha := gjson.Get(resp, "object.sha").String()
	if sha == "" {
		return errors.New(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("base branch %s has no head commit", baseBranch))
	}

	body, _ := sjson.Set("", "ref", "refs/heads/"+name)
	body, _ = sjson.Set(body, "sha", sha)

	refsPath := fmt.Sprintf("/repos/%s/%s/git/refs", g.owner, g.repo)
	resp, status, err = g.do(ctx, http.MethodPost, refsPath, body)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnprocessableEntity &&
		strings.Contains(gjson.Get(resp, "message").String(), "already exists"):
		// A retried admission pass may find the branch left over from a
		// rolled-back attempt. Creating a branch must be idempotent.
		g.logger.With("branch", name).Debug("github branch already exists")
		return nil
	case status >= 300:
		return g.apiError(http.MethodPost, refsPath, status, resp)
	}

	g.logger.With("branch", name, "base", baseBranch).Debug("github branch created")
	return nil
}

// CreatePullRequest opens a pull request and returns its HTML URL.
func (g *Gateway) CreatePullRequest(ctx context.Context, title, body, headBranch, baseBranch string) (string, error) {
	if baseBranch == "" {
		baseBranch = "main"
	}

	payload, _ := sjson.Set("", "title", title)
	payload, _ = sjson.Set(payload, "body", body)
	payload, _ = sjson.Set(payload, "head", headBranch)
	payload, _ = sjson.Set(payload, "base", baseBranch)

	path := fmt.Sprintf("/repos/%s/%s/pulls", g.owner, g.repo)
	resp, status, err := g.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}
	if status >= 300 {
		return "", g.apiError(http.MethodPost, path, status, resp)
	}

	url := gjson.Get(resp, "html_url").String()
	g.logger.With("pr", url, "head", headBranch).Debug("github pull request created")
	return url, nil
}

// do performs one API call and returns the response body and status.
// Only transport failures are errors; callers interpret the status.
func (g *Gateway) do(ctx context.Context, method, path, body string) (string, int, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeGatewayAPI, "failed to build github request", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeGatewayAPI,
			fmt.Sprintf("github %s %s request failed", method, path), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, errors.Wrap(errors.ErrCodeGatewayAPI, "failed to read github response", err)
	}
	return string(data), resp.StatusCode, nil
}

func (g *Gateway) apiError(method, path string, status int, body string) error {
	msg := gjson.Get(body, "message").String()
	if msg == "" {
		msg = http.StatusText(status)
	}
	return errors.New(errors.ErrCodeGatewayAPI,
		fmt.Sprintf("github %s %s returned %d: %s", method, path, status, msg))
}
