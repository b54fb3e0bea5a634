package main

import (
	"fmt"
	"io"
	"os"

	"github.com/handiism/artinject/internal/config"
	"github.com/handiism/artinject/internal/journal"
	"github.com/handiism/artinject/internal/logging"
	"github.com/handiism/artinject/internal/tui"
)

func main() {
	settings, err := config.LoadEnv("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal, so diagnostics go to a file
	// only when ARTINJECT_LOG_FILE asks for one.
	var out io.Writer = io.Discard
	if path := os.Getenv(config.EnvLogFile); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	logger, err := logging.New(out, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}

	var store journal.Store = journal.Nop{}
	if settings.JournalPath != "" {
		store, err = journal.OpenSQLite(settings.JournalPath, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	if err := tui.Run(settings, store, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
