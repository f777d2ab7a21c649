// Command rooster is a local, file-backed password manager: a single
// encrypted file holding named (username, password) entries, protected by
// one master password. See cmd/rooster's package comment-free source for
// the command surface; `rooster` with no arguments prints usage.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/barnettlynn/rooster/internal/clipboard"
	"github.com/barnettlynn/rooster/internal/config"
)

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	flag.Parse()
	configureLogging(*verbose, *logFormat)

	prefs, err := config.Load(preferencesFilePath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading preferences:", err)
		os.Exit(1)
	}

	d := &Dispatcher{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		FilePath:  resolveFilePath(),
		Prefs:     prefs,
		Clipboard: clipboard.New(),
	}
	os.Exit(d.Run(flag.Args()))
}

// configureLogging sets up the global slog default exactly as every
// nfctools binary does: -v selects Debug, --log-format picks the handler,
// both write to stderr so stdout stays clean for command output.
func configureLogging(verbose bool, logFormat string) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}

func clipboardPasteHint() string {
	return clipboard.PasteHint()
}
