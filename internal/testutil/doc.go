// Package testutil provides fixtures and a wired test environment.
//
// # Fixtures
//
// Small sample inputs are embedded using go:embed:
//
//	fixtures/dupes_a.ts, fixtures/dupes_b.ts  one shared five-line block
//	fixtures/complex.ts                       branching, a wide class, a new expression
//	fixtures/Dockerfile                       trips several lint rules
//	fixtures/ci.yml                           a workflow with unpinned actions
//	fixtures/main.tf                          two module blocks
//
// Load one with LoadFixture, or copy it into a directory with WriteFixture.
//
// # Test Environment
//
// NewTestEnv creates a temporary project directory and installs an app.App
// whose executor, GitHub resolver and S3 client are fakes:
//
//	env := testutil.NewTestEnv(t)
//	defer env.Cleanup()
//
//	env.AddFixture("dupes_a.ts", "src/a.ts")
//	env.Resolver.SHAs["actions/checkout@v4"] = strings.Repeat("a", 40)
package testutil
