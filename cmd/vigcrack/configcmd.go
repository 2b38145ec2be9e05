package main

import (
	"errors"
	"fmt"
	"os"

	"vigcrack/internal/config"
)

var errConfigExists = errors.New("config file already exists")

func cmdConfig(a *app, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "Usage: vigcrack config <init|path>")
		return exitUsage
	}

	switch args[0] {
	case "init":
		return cmdConfigInit(a, args[1:])
	case "path":
		fmt.Fprintln(a.stdout, a.configPath)
		return exitOK
	default:
		fmt.Fprintf(a.stderr, "Unknown config command: %s\n", args[0])
		return exitUsage
	}
}

// cmdConfigInit writes the default configuration to the config path.
func cmdConfigInit(a *app, args []string) int {
	fs := newFlagSet(a, "config init", "config init [-force]")
	force := fs.Bool("force", false, "overwrite an existing file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if _, err := os.Stat(a.configPath); err == nil && !*force {
		return a.fail(fmt.Errorf("%w: %s (use -force to overwrite)", errConfigExists, a.configPath))
	}
	if err := config.Save(config.DefaultConfig(), a.configPath); err != nil {
		return a.fail(fmt.Errorf("write config: %w", err))
	}
	fmt.Fprintf(a.stdout, "Wrote %s\n", a.configPath)
	return exitOK
}
