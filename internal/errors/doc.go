// Package errors maps loom failures to process exit codes.
//
// Every error a command returns is, or wraps, a *LoomError whose Code becomes
// the exit status:
//
//	0  nothing to report
//	1  an analyzer reported findings (FindingsReported)
//	2  anything else
//	3  the target path does not exist (InvalidPath)
//	4  .loom.toml or flags are invalid (ConfigError)
//	5  an input document failed to parse (ParseError)
//	6  GitHub or S3 failed (RemoteError)
//	7  a generator refused to overwrite a file (FileExists)
//
// main prints every error except findings, which the report already shows,
// and exits with GetExitCode(err).
package errors
