package main

import (
	"errors"
	"fmt"
	"os"

	"toggl-opsync/internal/cli"
	"toggl-opsync/internal/config"
	"toggl-opsync/internal/sync"
)

func main() {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(cli.ExitError)
	}

	root := cli.NewRootCommand(cfg)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, sync.ErrDeclined) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cli.UserMessage(err))
		}
		os.Exit(cli.ExitCode(err))
	}
}
