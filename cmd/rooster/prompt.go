package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/secret"
)

// noninteractiveMasterEnv is test-only plumbing: it lets the integration
// suite drive the master-password prompt without a real TTY. It is never
// mentioned in --help output and has no corresponding CLI flag.
const noninteractiveMasterEnv = "ROOSTER_NONINTERACTIVE_MASTER"

// promptMasterPassword reads one line, not echoed, per the interactive
// contract in spec.md §6. When ROOSTER_NONINTERACTIVE_MASTER is set, it
// reads the password from the environment instead of the terminal.
func (d *Dispatcher) promptMasterPassword(prompt string) (*secret.String, error) {
	if v, ok := os.LookupEnv(noninteractiveMasterEnv); ok {
		return secret.NewString(v), nil
	}

	fmt.Fprint(d.Stderr, prompt)
	raw, err := readPasswordLine(d.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading master password: %w", err)
	}
	fmt.Fprintln(d.Stderr)
	return secret.NewString(raw), nil
}

// readPasswordLine reads one non-echoed line from stdin when it's a real
// terminal, falling back to a plain read (e.g. when stdin is piped in a
// test) so the dispatcher still works outside an interactive shell. The
// fallback reads one byte at a time so that the lines after this one stay
// in r for the next prompt.
func readPasswordLine(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	var line []byte
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n == 1 && b[0] == '\n' {
			break
		}
		line = append(line, b[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(string(line), "\r"), nil
}

// promptYesNo asks question and repeats it until the answer starts with
// 'y' or 'n', per spec.md §6: "anything else repeats the question".
func (d *Dispatcher) promptYesNo(question string) (bool, error) {
	reader := bufio.NewReader(d.Stdin)
	for {
		fmt.Fprintf(d.Stderr, "%s [y/n] ", question)
		line, err := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(answer, "y"):
			return true, nil
		case strings.HasPrefix(answer, "n"):
			return false, nil
		}
		if err == io.EOF {
			return false, apperr.New(apperr.KindIO, "no answer given before end of input")
		}
		if err != nil {
			return false, err
		}
	}
}

// promptIndex reads a one-based index in [1, n] for disambiguating multiple
// fuzzy `get` matches (spec.md §6).
func (d *Dispatcher) promptIndex(n int) (int, error) {
	reader := bufio.NewReader(d.Stdin)
	for {
		fmt.Fprintf(d.Stderr, "Enter a number (1-%d): ", n)
		line, err := reader.ReadString('\n')
		idx, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && idx >= 1 && idx <= n {
			return idx, nil
		}
		if err == io.EOF {
			return 0, apperr.New(apperr.KindIO, "no valid selection given before end of input")
		}
		if err != nil {
			return 0, err
		}
		fmt.Fprintln(d.Stderr, "invalid selection")
	}
}
