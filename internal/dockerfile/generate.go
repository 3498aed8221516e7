package dockerfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	securejoin "github.com/cyphar/filepath-securejoin"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/system"
)

// DefaultFileName is the file Write creates when no name is given.
const DefaultFileName = "Dockerfile"

// GenerateOptions customizes a generated Dockerfile.
type GenerateOptions struct {
	// Port overrides the template's EXPOSE port when non-zero.
	Port int
	// Cmd is a shell-style command line, e.g. `node dist/server.js --port 80`.
	// Empty keeps the template's entry point.
	Cmd string
}

type kindDefaults struct {
	port int
	cmd  []string
	text string
}

type templateData struct {
	Port int
	Cmd  string
}

var kinds = map[string]kindDefaults{
	"nodejs": {port: 3000, cmd: []string{"node", "dist/main.js"}, text: nodeTemplate},
	"python": {port: 8000, cmd: []string{"python", "app.py"}, text: pythonTemplate},
	"go":     {port: 8080, cmd: []string{"./main"}, text: goTemplate},
}

// Kinds lists the application types Generate supports.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Generate renders the multi-stage Dockerfile for kind.
func Generate(kind string, opts GenerateOptions) (string, error) {
	def, ok := kinds[kind]
	if !ok {
		return "", errors.ValidationError(fmt.Sprintf("unknown application type %q (must be one of %s)", kind, strings.Join(Kinds(), ", ")))
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return "", errors.ValidationError(fmt.Sprintf("invalid port %d", opts.Port))
	}

	data := templateData{Port: def.port}
	if opts.Port != 0 {
		data.Port = opts.Port
	}

	args := def.cmd
	if opts.Cmd != "" {
		split, err := shellquote.Split(opts.Cmd)
		if err != nil {
			return "", errors.ValidationError(fmt.Sprintf("invalid command %q: %v", opts.Cmd, err))
		}
		if len(split) == 0 {
			return "", errors.ValidationError("command is empty")
		}
		args = split
	}

	cmd, err := execForm(args)
	if err != nil {
		return "", err
	}
	data.Cmd = cmd

	tmpl, err := template.New(kind).Parse(def.text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", kind, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", kind, err)
	}
	return buf.String(), nil
}

// execForm renders args as a JSON array for CMD.
func execForm(args []string) (string, error) {
	quoted := make([]string, len(args))
	for i, arg := range args {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(arg); err != nil {
			return "", fmt.Errorf("failed to encode command: %w", err)
		}
		quoted[i] = strings.TrimSpace(buf.String())
	}
	return "[" + strings.Join(quoted, ", ") + "]", nil
}

// Write stores content as name inside dir. The name is resolved inside dir,
// so "../x" cannot escape it. Existing files are only replaced with force.
func Write(fsys system.FileSystem, dir, name, content string, force bool) (string, error) {
	if name == "" {
		name = DefaultFileName
	}

	path, err := securejoin.SecureJoin(dir, name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	if fsys.Exists(path) && !force {
		return "", errors.FileExists(path)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

const nodeTemplate = `# Multi-stage Dockerfile for Node.js application

# Stage 1: Builder
FROM node:20-alpine AS builder

WORKDIR /app

COPY package.json package-lock.json ./
RUN npm install --production=false

COPY . .
# Replace with your actual build command (e.g. tsc, webpack)
RUN npm run build

# Stage 2: Production / Runtime
FROM node:20-alpine

WORKDIR /app

# Create a non-root user
RUN addgroup --system appgroup && adduser --system --ingroup appgroup appuser
USER appuser

# Copy only necessary files from builder stage
COPY --from=builder /app/node_modules ./node_modules
COPY --from=builder /app/dist ./dist
COPY --from=builder /app/package.json ./

EXPOSE {{.Port}}

CMD {{.Cmd}}
`

const pythonTemplate = `# Multi-stage Dockerfile for Python application

# Stage 1: Builder
FROM python:3.10-alpine AS builder

WORKDIR /app

COPY requirements.txt ./
RUN pip install --no-cache-dir -r requirements.txt

COPY . .
# If you have a build step (e.g. compiling assets), add it here
# RUN python setup.py build

# Stage 2: Production / Runtime
FROM python:3.10-alpine

WORKDIR /app

# Create a non-root user
RUN addgroup --system appgroup && adduser --system --ingroup appgroup appuser
USER appuser

# Copy only necessary files from builder stage
COPY --from=builder /usr/local/lib/python3.10/site-packages /usr/local/lib/python3.10/site-packages
COPY --from=builder /app ./

EXPOSE {{.Port}}

CMD {{.Cmd}}
`

const goTemplate = `# Multi-stage Dockerfile for Go application

# Stage 1: Builder
FROM golang:1.22-alpine AS builder

WORKDIR /app

COPY go.mod go.sum ./
RUN go mod download

COPY . .
RUN CGO_ENABLED=0 GOOS=linux go build -o main .

# Stage 2: Production / Runtime
# gcr.io/distroless/static-debian12 gives an even smaller image
FROM alpine:3.20

WORKDIR /app

# Create a non-root user
RUN addgroup --system appgroup && adduser --system --ingroup appgroup appuser
USER appuser

COPY --from=builder /app/main ./

EXPOSE {{.Port}}

CMD {{.Cmd}}
`
