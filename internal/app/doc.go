// Package app holds the process-wide dependencies of the loom commands.
//
// Commands read app.Default for the filesystem, the command executor, the
// GitHub resolver and the S3 uploader. Tests swap in fakes:
//
//	testApp := app.New(
//	    app.WithFS(system.NewMockFS()),
//	    app.WithResolver(fakeResolver),
//	)
//	app.SetDefault(testApp)
//	defer app.ResetDefault()
package app
