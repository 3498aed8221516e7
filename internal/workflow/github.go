package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

// EnvToken names the environment variable holding the API token.
const EnvToken = "GITHUB_TOKEN"

var (
	// ErrNotFound is returned when neither a tag nor a branch matches the ref.
	ErrNotFound = errors.New("ref not found")

	// ErrForbidden is returned on HTTP 403, which GitHub uses for rate
	// limiting and insufficient token scope.
	ErrForbidden = errors.New("GitHub API rate limit exceeded or token permissions insufficient")
)

// Resolver maps an action ref to a commit SHA.
type Resolver interface {
	Resolve(ctx context.Context, owner, repo, ref string) (string, error)
}

// GitHub resolves refs through the GitHub REST API.
type GitHub struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGitHub creates a client. An empty baseURL uses DefaultAPIURL.
func NewGitHub(baseURL, token string) *GitHub {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &GitHub{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type gitObject struct {
	SHA  string `json:"sha"`
	Type string `json:"type"`
}

type gitRef struct {
	Ref    string    `json:"ref"`
	SHA    string    `json:"sha"`
	Object gitObject `json:"object"`
}

type gitTag struct {
	SHA    string    `json:"sha"`
	Object gitObject `json:"object"`
}

// Resolve looks ref up as a tag, then as a branch.
func (g *GitHub) Resolve(ctx context.Context, owner, repo, ref string) (string, error) {
	for _, kind := range []string{"tags", "heads"} {
		var r gitRef
		path := fmt.Sprintf("/repos/%s/%s/git/ref/%s/%s", url.PathEscape(owner), url.PathEscape(repo), kind, escapeRef(ref))
		err := g.get(ctx, path, &r)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return "", err
		}

		sha := r.Object.SHA
		if sha == "" {
			sha = r.SHA
		}
		if sha == "" {
			return "", fmt.Errorf("no sha in response for %s/%s@%s", owner, repo, ref)
		}

		if r.Object.Type == "tag" {
			return g.peelTag(ctx, owner, repo, sha)
		}
		return sha, nil
	}
	return "", ErrNotFound
}

// peelTag follows annotated tag objects down to the commit.
func (g *GitHub) peelTag(ctx context.Context, owner, repo, sha string) (string, error) {
	for range 5 {
		var t gitTag
		path := fmt.Sprintf("/repos/%s/%s/git/tags/%s", url.PathEscape(owner), url.PathEscape(repo), sha)
		if err := g.get(ctx, path, &t); err != nil {
			return "", err
		}
		if t.Object.Type != "tag" {
			return t.Object.SHA, nil
		}
		sha = t.Object.SHA
	}
	return "", fmt.Errorf("tag chain too deep for %s/%s", owner, repo)
}

func (g *GitHub) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s", ErrForbidden, strings.TrimSpace(string(body)))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("github returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// escapeRef escapes each segment of a ref like "releases/v1".
func escapeRef(ref string) string {
	parts := strings.Split(ref, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
