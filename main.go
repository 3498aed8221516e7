package main

import (
	"os"

	"github.com/maxfahl/Loom-sub002/cmd"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.IsFindings(err) {
			logging.UserError("%v", err)
		}
		os.Exit(errors.GetExitCode(err))
	}
}
