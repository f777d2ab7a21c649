package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/clipboard"
	"github.com/barnettlynn/rooster/internal/config"
	"github.com/barnettlynn/rooster/internal/secret"
	"github.com/barnettlynn/rooster/internal/store"
	"github.com/barnettlynn/rooster/internal/upgrade"
)

// maxMasterPasswordAttempts bounds the wrong-password retry loop (spec.md
// §6, §8 property S3): three attempts per invocation, the third failure
// is reported as likely corruption rather than prompted again.
const maxMasterPasswordAttempts = 3

// Dispatcher threads a reader/writer pair, the password file path, and
// preferences through every subcommand (C8, spec.md §4.8). It owns no
// long-lived state across invocations — one Run call is one process.
type Dispatcher struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	FilePath  string
	Prefs     *config.Preferences
	Clipboard clipboard.Writer
}

// Run executes the state machine in spec.md §4.8 for one CLI invocation and
// returns the process exit code.
func (d *Dispatcher) Run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(d.Stderr, usageText)
		return 1
	}
	verb, rest := args[0], args[1:]

	if verb == "init" {
		if err := d.runInit(rest); err != nil {
			fmt.Fprintln(d.Stderr, "error:", err)
			return 1
		}
		return 0
	}

	raw, err := os.ReadFile(d.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(d.Stderr, "no rooster file found at %s; run `rooster init` first\n", d.FilePath)
			return 1
		}
		fmt.Fprintf(d.Stderr, "error reading %s: %v\n", d.FilePath, err)
		return 1
	}

	s, master, upgraded, err := d.decodeWithPrompt(raw)
	if err != nil {
		return d.reportDecodeFailure(err)
	}
	defer master.Zero()

	mutated, err := d.dispatchSubcommand(verb, rest, s)
	if err != nil {
		fmt.Fprintln(d.Stderr, "error:", err)
		return 1
	}
	if !mutated && !upgraded {
		return 0
	}

	encodeWith := master
	if pending := s.PendingMasterPassword(); pending != nil {
		encodeWith = pending
	}
	out, err := store.Encode(s, encodeWith)
	if err != nil {
		fmt.Fprintln(d.Stderr, "error encoding password file:", err)
		return 1
	}
	if err := writeFileAtomic(d.FilePath, out, 0o600); err != nil {
		fmt.Fprintln(d.Stderr, "error writing password file:", err)
		return 1
	}
	return 0
}

// decodeWithPrompt implements the "[Decode+Prompt loop]" box of spec.md
// §4.8: prompt for the master password, try to decode, and on
// WrongMasterPassword retry up to maxMasterPasswordAttempts times. A
// NeedUpgradeFromV1 result is routed through the interactive upgrade
// consent prompt before returning. The bool return reports whether the
// file was just upgraded from v1 in memory: Run must persist that
// regardless of whether the subcommand that follows also mutates.
func (d *Dispatcher) decodeWithPrompt(raw []byte) (*store.Store, *secret.String, bool, error) {
	for attempt := 1; attempt <= maxMasterPasswordAttempts; attempt++ {
		master, err := d.promptMasterPassword("Master password: ")
		if err != nil {
			return nil, nil, false, err
		}

		s, decErr := store.Decode(raw, master)
		if decErr == nil {
			slog.Debug("decoded rooster file", "attempt", attempt)
			return s, master, false, nil
		}

		if apperr.Is(decErr, apperr.KindNeedUpgradeFromV1) {
			return d.handleV1Upgrade(raw, master)
		}
		if apperr.Is(decErr, apperr.KindOutdatedBinary) || apperr.Is(decErr, apperr.KindCorruptionError) {
			master.Zero()
			return nil, nil, false, decErr
		}
		if !apperr.Is(decErr, apperr.KindWrongMasterPassword) {
			master.Zero()
			return nil, nil, false, decErr
		}

		master.Zero()
		slog.Debug("wrong master password", "attempt", attempt)
		if attempt == maxMasterPasswordAttempts {
			return nil, nil, false, apperr.ErrCorruptionLikely
		}
		fmt.Fprintln(d.Stderr, "wrong master password, try again")
	}
	return nil, nil, false, apperr.ErrCorruptionLikely
}

// handleV1Upgrade runs the "[Ask y/n]" branch of spec.md §4.8. Declining
// aborts the whole invocation with NoUpgrade; accepting decodes the legacy
// file and returns a store ready to be re-encoded as v2, with the upgraded
// flag set so Run persists it even if the subcommand that follows is
// read-only (spec.md §8 scenario S5).
func (d *Dispatcher) handleV1Upgrade(raw []byte, master *secret.String) (*store.Store, *secret.String, bool, error) {
	fmt.Fprintln(d.Stderr, "this password file uses the legacy v1 format.")
	ok, err := d.promptYesNo("Upgrade it to the current format now?")
	if err != nil {
		master.Zero()
		return nil, nil, false, err
	}
	if !ok {
		master.Zero()
		return nil, nil, false, apperr.ErrNoUpgrade
	}

	s, err := upgrade.FromV1(raw, master)
	if err != nil {
		master.Zero()
		return nil, nil, false, err
	}
	return s, master, true, nil
}

// reportDecodeFailure prints the fixed message for each terminal decode
// outcome and returns the dispatcher's exit code (always 1: every path
// into this function is a user-visible failure per spec.md §6).
func (d *Dispatcher) reportDecodeFailure(err error) int {
	switch {
	case errors.Is(err, apperr.ErrCorruptionLikely):
		fmt.Fprintln(d.Stderr, "three wrong master password attempts; this file is likely corrupted or was never yours")
	case errors.Is(err, apperr.ErrNoUpgrade):
		fmt.Fprintln(d.Stderr, "upgrade declined; no changes were made")
	case apperr.Is(err, apperr.KindOutdatedBinary):
		fmt.Fprintln(d.Stderr, "this rooster file was written by a newer version; upgrade rooster first:", err)
	case apperr.Is(err, apperr.KindCorruptionError):
		fmt.Fprintln(d.Stderr, "this rooster file appears to be corrupted:", err)
	default:
		fmt.Fprintln(d.Stderr, "error:", err)
	}
	return 1
}
