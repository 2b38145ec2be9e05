// vigcrack recovers the keyword and plaintext of Vigenère ciphertexts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type globalFlags struct {
	configPath   string
	format       string
	model        string
	maxKeyLength int
	logLevel     string
	dumpMetrics  bool
	noStore      bool
}

type command func(a *app, args []string) int

var commands = map[string]command{
	"crack":     cmdCrack,
	"keylength": cmdKeyLength,
	"decrypt":   cmdDecrypt,
	"encrypt":   cmdEncrypt,
	"history":   cmdHistory,
	"watch":     cmdWatch,
	"config":    cmdConfig,
	"metrics":   cmdMetrics,
	"selftest":  cmdSelfTest,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vigcrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }

	var g globalFlags
	fs.StringVar(&g.configPath, "config", "", "path to config file")
	fs.StringVar(&g.format, "format", "", "output format: text, json or markdown")
	fs.StringVar(&g.model, "model", "", "language model file (TOML, JSON or YAML)")
	fs.IntVar(&g.maxKeyLength, "max-keylen", 0, "largest key length to try")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&g.dumpMetrics, "metrics", false, "print metrics to stderr on exit")
	fs.BoolVar(&g.noStore, "no-store", false, "do not use the history database")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage(stderr)
		return exitUsage
	}

	name := fs.Arg(0)
	if name == "help" {
		usage(stdout)
		return exitOK
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", name)
		usage(stderr)
		return exitUsage
	}

	a, err := newApp(ctx, g, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer a.close()

	return cmd(a, fs.Args()[1:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `vigcrack - Vigenère ciphertext-only cracker

Usage: vigcrack [options] <command> [args]

Commands:
  crack [file]              Recover key length, keyword and plaintext
  keylength [file]          Print the key length candidate table
  decrypt -key K [file]     Decrypt with a known keyword
  encrypt -key K [file]     Encrypt the letters of a text
  history [-limit N]        List stored analyses
  watch [dir...]            Crack ciphertext files as they appear
  config init [-force]      Write the default config file
  config path               Print the config file path
  metrics [file]            Crack once and print the collected metrics
  selftest [-n N]           Crack random encryptions of a built-in passage
  help                      Show this help message

Without a file, the ciphertext is read as one line from stdin.

Options:
  -config <path>    Path to config file (default: platform config dir)
  -format <fmt>     Output format: text, json or markdown
  -model <path>     Language model file
  -max-keylen <n>   Largest key length to try
  -log-level <lvl>  Log level: debug, info, warn or error
  -metrics          Print metrics to stderr on exit
  -no-store         Do not use the history database`)
}

// newFlagSet returns a subcommand flag set that reports errors to stderr.
func newFlagSet(a *app, name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: vigcrack %s\n", synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses a subcommand's flags. ok is false when the command
// should return code immediately.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}
