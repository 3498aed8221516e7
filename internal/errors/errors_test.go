package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ExitRemoteError, "upload failed", cause)

	if got, want := err.Error(), "upload failed: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want the cause", err.Unwrap())
	}
	if err.ExitCode() != ExitRemoteError {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitRemoteError)
	}

	bare := New(ExitGeneralError, "no cause")
	if bare.Error() != "no cause" || bare.Unwrap() != nil {
		t.Errorf("New() = %q, cause %v", bare.Error(), bare.Unwrap())
	}
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tests := []struct {
		name     string
		err      *LoomError
		wantCode int
		wantMsg  string
	}{
		{"findings", FindingsReported("dupes", 3), ExitFindings, "dupes: 3 finding(s) reported"},
		{"invalid path", InvalidPath("/nope"), ExitInvalidPath, `path "/nope" is not a valid file or directory`},
		{"config", ConfigError("bad config", cause), ExitConfigError, "bad config: boom"},
		{"parse", ParseError("main.tf", cause), ExitParseError, "failed to parse main.tf: boom"},
		{"remote", RemoteError("github", cause), ExitRemoteError, "github request failed: boom"},
		{"exists", FileExists("Dockerfile"), ExitRefuseOverride, "file already exists: Dockerfile (use --force to overwrite)"},
		{"validation", ValidationError("min-lines must be at least 1"), ExitGeneralError, "min-lines must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.wantCode)
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "LoomError",
			err:      InvalidPath("x"),
			wantCode: ExitInvalidPath,
		},
		{
			name:     "wrapped LoomError",
			err:      fmt.Errorf("outer: %w", ConfigError("bad", nil)),
			wantCode: ExitConfigError,
		},
		{
			name:     "regular error",
			err:      fmt.Errorf("some error"),
			wantCode: ExitGeneralError,
		},
		{
			name:     "nil error",
			err:      nil,
			wantCode: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestIsFindings(t *testing.T) {
	if !IsFindings(FindingsReported("srp", 1)) {
		t.Error("IsFindings() should be true for FindingsReported")
	}
	if !IsFindings(fmt.Errorf("run: %w", FindingsReported("srp", 1))) {
		t.Error("IsFindings() should see through wrapping")
	}
	if IsFindings(ConfigError("bad", nil)) {
		t.Error("IsFindings() should be false for config errors")
	}
	if IsFindings(fmt.Errorf("plain")) {
		t.Error("IsFindings() should be false for plain errors")
	}
}

func TestChain(t *testing.T) {
	root := fmt.Errorf("toml: line 3: expected '='")
	outer := fmt.Errorf("loading: %w", ConfigError("invalid .loom.toml", root))

	if !Is(outer, root) || !errors.Is(outer, root) {
		t.Error("the root cause should be reachable through the chain")
	}

	var loomErr *LoomError
	if !As(outer, &loomErr) {
		t.Fatal("As() should find the LoomError")
	}
	if loomErr.Code != ExitConfigError {
		t.Errorf("Code = %d, want %d", loomErr.Code, ExitConfigError)
	}

	if As(root, &loomErr) {
		t.Error("As() should be false for a plain error")
	}
}
