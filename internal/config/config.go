package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/maxfahl/Loom-sub002/internal/logging"
)

const (
	// FileName is the project configuration file looked up from the scan target upwards.
	FileName = ".loom.toml"

	// EnvConfig names the environment variable holding an explicit config path.
	EnvConfig = "LOOM_CONFIG"

	DefaultMinLines         = 5
	DefaultComplexity       = 10
	DefaultMaxFunctionLines = 40
	DefaultMinNameLength    = 1
	DefaultMaxPublicMethods = 5
	DefaultMinBranches      = 3
	DefaultMaxSnippetLines  = 20
	DefaultHistoryDir       = ".loom"
)

var (
	DefaultExtensions   = []string{".ts", ".js", ".tsx", ".jsx"}
	DefaultExcludeDirs  = []string{"node_modules", "dist", ".git", "build"}
	DefaultGenericNames = []string{"temp", "data", "val", "obj", "item", "arg", "param", "res", "ret", "e", "err", "cb", "fn"}
	DefaultDIPExcludes  = []string{"new Date", "new Error", "new RegExp", "new Map", "new Set", "new Promise"}
)

// Config is the contents of .loom.toml
type Config struct {
	Scan          ScanConfig          `toml:"scan"`
	Dupes         DupesConfig         `toml:"dupes"`
	Complexity    ComplexityConfig    `toml:"complexity"`
	LongFunctions LongFunctionsConfig `toml:"long_functions"`
	Names         NamesConfig         `toml:"names"`
	SRP           SRPConfig           `toml:"srp"`
	OCP           OCPConfig           `toml:"ocp"`
	DIP           DIPConfig           `toml:"dip"`
	Report        ReportConfig        `toml:"report"`
	History       HistoryConfig       `toml:"history"`

	// Path is the file this config was loaded from; empty for built-in defaults.
	Path string `toml:"-"`
}

// ScanConfig controls which files the analyzers look at.
type ScanConfig struct {
	Extensions  []string `toml:"extensions"`
	ExcludeDirs []string `toml:"exclude_dirs"`
	Exclude     []string `toml:"exclude"` // doublestar globs, relative to the scan root
	Workers     int      `toml:"workers"` // 0 means GOMAXPROCS
}

type DupesConfig struct {
	MinLines        int  `toml:"min_lines"`
	IgnoreBlank     bool `toml:"ignore_blank"`
	Merge           bool `toml:"merge"`
	MaxSnippetLines int  `toml:"max_snippet_lines"`
}

type ComplexityConfig struct {
	Threshold int `toml:"threshold"`
}

type LongFunctionsConfig struct {
	MaxLines int `toml:"max_lines"`
}

type NamesConfig struct {
	MinLength    int      `toml:"min_length"`
	GenericNames []string `toml:"generic_names"`
}

type SRPConfig struct {
	MaxPublicMethods int `toml:"max_public_methods"`
}

type OCPConfig struct {
	MinBranches int `toml:"min_branches"`
}

type DIPConfig struct {
	ExcludePatterns []string `toml:"exclude_patterns"`
}

// ReportConfig selects the output format and an optional upload destination.
type ReportConfig struct {
	Format     string `toml:"format"`
	Upload     string `toml:"upload"`      // s3://bucket/key
	S3Endpoint string `toml:"s3_endpoint"` // e.g. http://localhost:4566 for LocalStack
	S3Region   string `toml:"s3_region"`
}

// HistoryConfig controls the JSONL run history.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // relative to the directory holding .loom.toml
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Extensions:  append([]string(nil), DefaultExtensions...),
			ExcludeDirs: append([]string(nil), DefaultExcludeDirs...),
		},
		Dupes: DupesConfig{
			MinLines:        DefaultMinLines,
			IgnoreBlank:     true,
			MaxSnippetLines: DefaultMaxSnippetLines,
		},
		Complexity:    ComplexityConfig{Threshold: DefaultComplexity},
		LongFunctions: LongFunctionsConfig{MaxLines: DefaultMaxFunctionLines},
		Names: NamesConfig{
			MinLength:    DefaultMinNameLength,
			GenericNames: append([]string(nil), DefaultGenericNames...),
		},
		SRP:     SRPConfig{MaxPublicMethods: DefaultMaxPublicMethods},
		OCP:     OCPConfig{MinBranches: DefaultMinBranches},
		DIP:     DIPConfig{ExcludePatterns: append([]string(nil), DefaultDIPExcludes...)},
		Report:  ReportConfig{Format: "text"},
		History: HistoryConfig{Dir: DefaultHistoryDir},
	}
}

// Validate checks that the Config is usable.
func (c *Config) Validate() error {
	if c.Dupes.MinLines < 1 {
		return fmt.Errorf("dupes.min_lines must be at least 1 (got %d)", c.Dupes.MinLines)
	}
	if c.Dupes.MaxSnippetLines < 0 {
		return fmt.Errorf("dupes.max_snippet_lines cannot be negative")
	}
	if c.Complexity.Threshold < 1 {
		return fmt.Errorf("complexity.threshold must be at least 1 (got %d)", c.Complexity.Threshold)
	}
	if c.LongFunctions.MaxLines < 1 {
		return fmt.Errorf("long_functions.max_lines must be at least 1 (got %d)", c.LongFunctions.MaxLines)
	}
	if c.Names.MinLength < 0 {
		return fmt.Errorf("names.min_length cannot be negative")
	}
	if c.SRP.MaxPublicMethods < 0 {
		return fmt.Errorf("srp.max_public_methods cannot be negative")
	}
	if c.OCP.MinBranches < 2 {
		return fmt.Errorf("ocp.min_branches must be at least 2 (got %d)", c.OCP.MinBranches)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers cannot be negative")
	}
	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("scan.extensions cannot be empty")
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}

	validFormats := map[string]bool{"text": true, "json": true, "yaml": true, "markdown": true, "": true}
	if !validFormats[c.Report.Format] {
		return fmt.Errorf("invalid report format: %s (must be text, json, yaml, or markdown)", c.Report.Format)
	}
	if c.Report.Upload != "" && !strings.HasPrefix(c.Report.Upload, "s3://") {
		return fmt.Errorf("report.upload must be an s3:// URL (got %q)", c.Report.Upload)
	}

	if c.History.Dir != "" && filepath.IsAbs(c.History.Dir) {
		return fmt.Errorf("history.dir must be relative to the project root (got %q)", c.History.Dir)
	}

	return nil
}

// Root returns the directory the config file lives in, or "" for defaults.
func (c *Config) Root() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// Load reads a config file on top of the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, key := range meta.Undecoded() {
		logging.Warn("unknown config key", "key", key.String(), "file", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.Path = abs

	return cfg, nil
}

// Find walks up from start looking for FileName.
// It returns "" without error when no config file exists.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("invalid start path: %w", err)
	}

	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve picks the config to use: an explicit path, then $LOOM_CONFIG,
// then the nearest .loom.toml above target, then the defaults.
func Resolve(explicit, target string) (*Config, error) {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	if path == "" {
		found, err := Find(target)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if path == "" {
		logging.Debug("no config file found, using defaults", "target", target)
		return Default(), nil
	}

	logging.Debug("using config", "path", path)
	return Load(path)
}

// Encode renders the config as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes a default .loom.toml into dir with history enabled.
// It refuses to overwrite an existing file unless force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileName)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", os.ErrExist
		}
	}

	cfg := Default()
	cfg.History.Enabled = true

	data, err := cfg.Encode()
	if err != nil {
		return "", err
	}

	header := "# loom configuration. Command-line flags override these values.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}

// SplitList splits a comma-separated flag value, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
