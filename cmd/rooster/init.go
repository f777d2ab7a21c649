package main

import (
	"fmt"
	"os"

	"github.com/barnettlynn/rooster/internal/secret"
	"github.com/barnettlynn/rooster/internal/store"
)

// runInit is the "[Create]" box of spec.md §4.8: it's the only path that
// writes a new-format file without a prior decode.
func (d *Dispatcher) runInit(args []string) error {
	if _, err := os.Stat(d.FilePath); err == nil {
		return fmt.Errorf("a rooster file already exists at %s", d.FilePath)
	} else if !os.IsNotExist(err) {
		return err
	}

	master, err := d.promptNewMasterPassword()
	if err != nil {
		return err
	}
	defer master.Zero()

	s := store.New(d.scryptParams())
	out, err := store.Encode(s, master)
	if err != nil {
		return fmt.Errorf("encoding new password file: %w", err)
	}
	if err := writeFileAtomic(d.FilePath, out, 0o600); err != nil {
		return fmt.Errorf("writing new password file: %w", err)
	}
	fmt.Fprintf(d.Stdout, "created %s\n", d.FilePath)
	return nil
}

// promptNewMasterPassword prompts twice and requires the two entries to
// match, the double-entry contract original_source/'s init command uses
// for any newly set master password (both `init` and
// `set-master-password`). ROOSTER_NONINTERACTIVE_MASTER bypasses the
// double entry entirely, since it supplies the password directly.
func (d *Dispatcher) promptNewMasterPassword() (*secret.String, error) {
	if _, ok := os.LookupEnv(noninteractiveMasterEnv); ok {
		return d.promptMasterPassword("")
	}

	for {
		first, err := d.promptMasterPassword("New master password: ")
		if err != nil {
			return nil, err
		}
		second, err := d.promptMasterPassword("Confirm master password: ")
		if err != nil {
			first.Zero()
			return nil, err
		}
		if first.Equal(second) {
			second.Zero()
			return first, nil
		}
		first.Zero()
		second.Zero()
		fmt.Fprintln(d.Stderr, "passwords did not match, try again")
	}
}

// promptNewPassword prompts twice for a new entry password (add/change),
// requiring the two entries to match.
func (d *Dispatcher) promptNewPassword() (*secret.String, error) {
	if _, ok := os.LookupEnv(noninteractiveMasterEnv); ok {
		return d.promptMasterPassword("")
	}

	for {
		first, err := d.promptMasterPassword("Password: ")
		if err != nil {
			return nil, err
		}
		second, err := d.promptMasterPassword("Confirm password: ")
		if err != nil {
			first.Zero()
			return nil, err
		}
		if first.Equal(second) {
			second.Zero()
			return first, nil
		}
		first.Zero()
		second.Zero()
		fmt.Fprintln(d.Stderr, "passwords did not match, try again")
	}
}
