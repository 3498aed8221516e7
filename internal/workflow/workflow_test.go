package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	checkoutSHA = "8f4b7f84864484a7bf31766abe9204da3cbe65b3"
	setupSHA    = "0a44ba7841725637a19e28fa30b79a866c81b0a6"
	tagObjSHA   = "1111111111111111111111111111111111111111"
	codeqlSHA   = "2222222222222222222222222222222222222222"
)

// fakeGitHub serves the git refs API for a handful of repos.
func fakeGitHub(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/actions/checkout/git/ref/tags/v4", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprintf(w, `{"ref":"refs/tags/v4","object":{"sha":%q,"type":"commit"}}`, checkoutSHA)
	})
	mux.HandleFunc("/repos/actions/setup-node/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"ref":"refs/heads/main","object":{"sha":%q,"type":"commit"}}`, setupSHA)
	})
	mux.HandleFunc("/repos/github/codeql-action/git/ref/tags/v3", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"ref":"refs/tags/v3","object":{"sha":%q,"type":"tag"}}`, tagObjSHA)
	})
	mux.HandleFunc("/repos/github/codeql-action/git/tags/"+tagObjSHA, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `{"sha":%q,"object":{"sha":%q,"type":"commit"}}`, tagObjSHA, codeqlSHA)
	})
	mux.HandleFunc("/repos/limited/repo/git/ref/tags/v1", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"API rate limit exceeded"}`)
	})
	mux.HandleFunc("/repos/broken/repo/git/ref/tags/v1", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHub_Resolve(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)
	gh := NewGitHub(srv.URL, "test-token")
	ctx := context.Background()

	tests := []struct {
		name    string
		owner   string
		repo    string
		ref     string
		want    string
		wantErr error
	}{
		{"tag", "actions", "checkout", "v4", checkoutSHA, nil},
		{"branch after missing tag", "actions", "setup-node", "main", setupSHA, nil},
		{"annotated tag", "github", "codeql-action", "v3", codeqlSHA, nil},
		{"missing", "nobody", "nothing", "v1", "", ErrNotFound},
		{"forbidden", "limited", "repo", "v1", "", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gh.Resolve(ctx, tt.owner, tt.repo, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGitHub_ServerError(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)

	_, err := NewGitHub(srv.URL, "test-token").Resolve(context.Background(), "broken", "repo", "v1")
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		t.Fatalf("Resolve() error = %v, want a plain status error", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q should mention the status", err)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		ref        string
		want       Action
		wantReason string
	}{
		{"actions/checkout@v4", Action{Owner: "actions", Repo: "checkout", Ref: "v4"}, ""},
		{"github/codeql-action/init@v3", Action{Owner: "github", Repo: "codeql-action", Path: "init", Ref: "v3"}, ""},
		{"actions/checkout", Action{}, "no version specified"},
		{"actions/checkout@", Action{}, "no version specified"},
		{"./.github/actions/build", Action{}, "local action"},
		{"docker://alpine:3.20", Action{}, "docker image"},
		{"actions/checkout@" + checkoutSHA, Action{}, "already pinned to a SHA"},
		{"checkout@v4", Action{}, "not an owner/repo reference"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, reason := ParseAction(tt.ref)
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseAction() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

const workflowYAML = `name: CI
on: [push]

jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Node
        uses: "actions/setup-node@main"  # toolchain
      - uses: ./.github/actions/local
      - uses: actions/checkout@v4
      - uses: github/codeql-action/init@v3
      - uses: nobody/nothing@v9
      - uses: actions/cache@` + checkoutSHA + `
`

func TestPin(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)

	res, err := Pin(context.Background(), workflowYAML, NewGitHub(srv.URL, "test-token"))
	if err != nil {
		t.Fatalf("Pin() error = %v", err)
	}

	wantLines := []string{
		"      - uses: actions/checkout@" + checkoutSHA + " # v4",
		`        uses: "actions/setup-node@` + setupSHA + `" # main  # toolchain`,
		"      - uses: ./.github/actions/local",
		"      - uses: github/codeql-action/init@" + codeqlSHA + " # v3",
		"      - uses: nobody/nothing@v9",
		"      - uses: actions/cache@" + checkoutSHA,
	}
	for _, want := range wantLines {
		if !strings.Contains(res.Content, want+"\n") {
			t.Errorf("content missing line %q:\n%s", want, res.Content)
		}
	}

	wantChanges := []Change{
		{Line: 8, Action: "actions/checkout", From: "v4", To: checkoutSHA},
		{Line: 10, Action: "actions/setup-node", From: "main", To: setupSHA},
		{Line: 12, Action: "actions/checkout", From: "v4", To: checkoutSHA},
		{Line: 13, Action: "github/codeql-action/init", From: "v3", To: codeqlSHA},
	}
	if diff := cmp.Diff(wantChanges, res.Changes); diff != "" {
		t.Errorf("Changes mismatch (-want +got):\n%s", diff)
	}

	var reasons []string
	for _, s := range res.Skipped {
		reasons = append(reasons, fmt.Sprintf("%d:%s", s.Line, s.Ref))
	}
	wantSkipped := []string{"11:./.github/actions/local", "14:nobody/nothing@v9", "15:actions/cache@" + checkoutSHA}
	if diff := cmp.Diff(wantSkipped, reasons); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}

	if !res.Changed() {
		t.Error("Changed() = false, want true")
	}
}

func TestPin_CachesLookups(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)

	content := "jobs:\n  a:\n    steps:\n      - uses: actions/checkout@v4\n      - uses: actions/checkout@v4\n"
	if _, err := Pin(context.Background(), content, NewGitHub(srv.URL, "test-token")); err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("API hits = %d, want 1", got)
	}
}

func TestPin_ForbiddenAborts(t *testing.T) {
	var hits atomic.Int32
	srv := fakeGitHub(t, &hits)

	content := "jobs:\n  a:\n    steps:\n      - uses: limited/repo@v1\n"
	_, err := Pin(context.Background(), content, NewGitHub(srv.URL, "test-token"))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Pin() error = %v, want ErrForbidden", err)
	}
}

func TestPin_NoJobs(t *testing.T) {
	content := "name: nothing here\non: push\n"
	res, err := Pin(context.Background(), content, NewGitHub("http://127.0.0.1:1", ""))
	if err != nil {
		t.Fatalf("Pin() error = %v", err)
	}
	if !res.NoJobs || res.Changed() || res.Content != content {
		t.Errorf("Pin() = %+v, want untouched NoJobs result", res)
	}
}

func TestPin_InvalidYAML(t *testing.T) {
	if _, err := Pin(context.Background(), "jobs: [unclosed\n", NewGitHub("http://127.0.0.1:1", "")); err == nil {
		t.Error("Pin() should fail on invalid YAML")
	}
}

func TestPin_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content := "jobs:\n  a:\n    steps:\n      - uses: actions/checkout@v4\n"
	if _, err := Pin(ctx, content, NewGitHub("http://127.0.0.1:1", "")); !errors.Is(err, context.Canceled) {
		t.Errorf("Pin() error = %v, want context.Canceled", err)
	}
}
