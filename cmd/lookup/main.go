package main

import (
	"os"

	"github.com/clipforge/clipforge/internal/logger"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Logs go to stderr so stdout stays valid JSON.
	envCfg := logger.LoadFromEnv()
	envCfg.Output = os.Stderr
	envCfg.ServiceName = "clipforge-lookup"
	logger.SetDefaultLogger(logger.New(envCfg))
	defer logger.Sync()

	if err := newCLIApp(os.Stdout).Run(os.Args); err != nil {
		return 1
	}
	return 0
}
