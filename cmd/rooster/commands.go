package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/generator"
	"github.com/barnettlynn/rooster/internal/importexport"
	"github.com/barnettlynn/rooster/internal/secret"
	"github.com/barnettlynn/rooster/internal/store"
)

const usageText = `usage: rooster [-v] [--log-format text|json] <command> [args]

commands:
  init
  add <name> <username>
  change [-g] [-a] [-l length] <name>
  delete <name>
  generate [-a] [-l length] <name> <username>
  regenerate [-a] [-l length] <name>
  get [-s] <name>
  rename <old-name> <new-name>
  transfer <name> <new-username>
  list
  import {json|csv|1password} <path>
  export {json|csv|1password}
  set-master-password
  set-scrypt-params <log2n> <r> <p> [--force]

command flags are only recognized before the positional arguments;
set-scrypt-params also accepts --force after them.`

// dispatchSubcommand runs verb against s and reports whether s was
// mutated, per the "[Run subcommand on store]" box of spec.md §4.8. Run
// re-encodes and writes back only mutated stores, or stores just upgraded
// from v1.
func (d *Dispatcher) dispatchSubcommand(verb string, args []string, s *store.Store) (bool, error) {
	switch verb {
	case "add":
		return d.cmdAdd(args, s)
	case "change":
		return d.cmdChange(args, s)
	case "delete":
		return d.cmdDelete(args, s)
	case "generate":
		return d.cmdGenerate(args, s)
	case "regenerate":
		return d.cmdRegenerate(args, s)
	case "get":
		return d.cmdGet(args, s)
	case "rename":
		return d.cmdRename(args, s)
	case "transfer":
		return d.cmdTransfer(args, s)
	case "list":
		return d.cmdList(args, s)
	case "import":
		return d.cmdImport(args, s)
	case "export":
		return d.cmdExport(args, s)
	case "set-master-password":
		return d.cmdSetMasterPassword(args, s)
	case "set-scrypt-params":
		return d.cmdSetScryptParams(args, s)
	default:
		return false, fmt.Errorf("unknown command %q", verb)
	}
}

func (d *Dispatcher) genAlphabet() generator.Alphabet {
	if d.Prefs != nil {
		return d.Prefs.GeneratorAlphabet()
	}
	return generator.Alnum
}

func (d *Dispatcher) genLength() int {
	if d.Prefs != nil && d.Prefs.Generator.Length != 0 {
		return d.Prefs.Generator.Length
	}
	return 32
}

// scryptParams resolves the scrypt cost parameters `init` should create a
// new password file with: the preferences override if one is set, otherwise
// cryptutil.DefaultScryptParams.
func (d *Dispatcher) scryptParams() cryptutil.ScryptParams {
	if d.Prefs != nil && d.Prefs.ScryptOverridden() {
		return d.Prefs.Scrypt.ScryptParams()
	}
	return cryptutil.DefaultScryptParams
}

// genFlags registers the -a/--alnum and -l/--length flags shared by
// generate/regenerate (spec.md §6).
func (d *Dispatcher) genFlags(fs *flag.FlagSet) (*bool, *int) {
	alnum := new(bool)
	fs.BoolVar(alnum, "a", false, "restrict to alphanumeric characters")
	fs.BoolVar(alnum, "alnum", false, "restrict to alphanumeric characters")
	length := new(int)
	*length = d.genLength()
	fs.IntVar(length, "l", d.genLength(), "generated password length")
	fs.IntVar(length, "length", d.genLength(), "generated password length")
	return alnum, length
}

func (d *Dispatcher) resolveAlphabet(alnumFlag bool) generator.Alphabet {
	if alnumFlag {
		return generator.Alnum
	}
	return d.genAlphabet()
}

// deliverPassword implements the `-s/--show` contract (spec.md §6): show
// the secret on stdout, or copy it to the clipboard and print the paste
// hint. A clipboard failure is reported but never turns a successful
// mutation into a failed command.
func (d *Dispatcher) deliverPassword(show bool, pw *secret.String) {
	if show {
		fmt.Fprintln(d.Stdout, pw.Expose())
		return
	}
	if d.Clipboard == nil {
		fmt.Fprintln(d.Stdout, pw.Expose())
		return
	}
	if err := d.Clipboard.Copy(pw.Expose()); err != nil {
		fmt.Fprintln(d.Stderr, "could not copy to clipboard, printing instead:", err)
		fmt.Fprintln(d.Stdout, pw.Expose())
		return
	}
	fmt.Fprintln(d.Stderr, "password copied to clipboard; paste with", clipboardPasteHint())
	d.clearClipboardAfterDelay()
}

// clearClipboardAfterDelay blocks until clipboard.clear_after_seconds has
// elapsed, then overwrites the clipboard with an empty string. A zero or
// unset timeout is a no-op: rooster never holds the process open unless
// asked to.
func (d *Dispatcher) clearClipboardAfterDelay() {
	if d.Prefs == nil || d.Prefs.Clipboard.ClearAfterSeconds <= 0 {
		return
	}
	wait := time.Duration(d.Prefs.Clipboard.ClearAfterSeconds) * time.Second
	fmt.Fprintf(d.Stderr, "clearing clipboard in %s...\n", wait)
	time.Sleep(wait)
	if err := d.Clipboard.Copy(""); err != nil {
		fmt.Fprintln(d.Stderr, "could not clear clipboard:", err)
	}
}

func (d *Dispatcher) cmdAdd(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	show := boolFlag(fs, "s", "show")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 2 {
		return false, fmt.Errorf("usage: add <name> <username>")
	}
	name, username := positional[0], positional[1]

	pw, err := d.promptNewPassword()
	if err != nil {
		return false, err
	}
	if err := s.Add(name, username, pw); err != nil {
		return false, err
	}
	d.deliverPassword(*show, pw)
	return true, nil
}

func (d *Dispatcher) cmdChange(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("change", flag.ContinueOnError)
	show := boolFlag(fs, "s", "show")
	gen := boolFlag(fs, "g", "generate")
	alnum, length := d.genFlags(fs)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 1 {
		return false, fmt.Errorf("usage: change <name>")
	}
	name := positional[0]

	var pw *secret.String
	var err error
	if *gen {
		pw, err = generator.Generate(*length, d.resolveAlphabet(*alnum))
	} else {
		pw, err = d.promptNewPassword()
	}
	if err != nil {
		return false, err
	}
	if err := s.ChangePassword(name, pw); err != nil {
		return false, err
	}
	d.deliverPassword(*show, pw)
	return true, nil
}

func (d *Dispatcher) cmdDelete(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 1 {
		return false, fmt.Errorf("usage: delete <name>")
	}
	if err := s.Delete(positional[0]); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) cmdGenerate(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	show := boolFlag(fs, "s", "show")
	alnum, length := d.genFlags(fs)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 2 {
		return false, fmt.Errorf("usage: generate <name> <username>")
	}
	name, username := positional[0], positional[1]

	pw, err := generator.Generate(*length, d.resolveAlphabet(*alnum))
	if err != nil {
		return false, err
	}
	if err := s.Add(name, username, pw); err != nil {
		return false, err
	}
	d.deliverPassword(*show, pw)
	return true, nil
}

func (d *Dispatcher) cmdRegenerate(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("regenerate", flag.ContinueOnError)
	show := boolFlag(fs, "s", "show")
	alnum, length := d.genFlags(fs)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 1 {
		return false, fmt.Errorf("usage: regenerate <name>")
	}
	name := positional[0]

	pw, err := generator.Generate(*length, d.resolveAlphabet(*alnum))
	if err != nil {
		return false, err
	}
	if err := s.ChangePassword(name, pw); err != nil {
		return false, err
	}
	d.deliverPassword(*show, pw)
	return true, nil
}

func (d *Dispatcher) cmdGet(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	show := boolFlag(fs, "s", "show")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 1 {
		return false, fmt.Errorf("usage: get <name>")
	}

	matches := s.SearchFuzzy(positional[0])
	if len(matches) == 0 {
		return false, apperr.New(apperr.KindAppNotFound, "no entry matches \""+positional[0]+"\"")
	}

	chosen := matches[0]
	if len(matches) > 1 {
		for i, m := range matches {
			fmt.Fprintf(d.Stderr, "%d. %s (%s)\n", i+1, m.Name, m.Username)
		}
		idx, err := d.promptIndex(len(matches))
		if err != nil {
			return false, err
		}
		chosen = matches[idx-1]
	}

	fmt.Fprintf(d.Stderr, "%s (%s)\n", chosen.Name, chosen.Username)
	d.deliverPassword(*show, chosen.Password)
	return false, nil
}

func (d *Dispatcher) cmdRename(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 2 {
		return false, fmt.Errorf("usage: rename <old-name> <new-name>")
	}
	if err := s.Rename(positional[0], positional[1]); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) cmdTransfer(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 2 {
		return false, fmt.Errorf("usage: transfer <name> <new-username>")
	}
	if err := s.ChangeUsername(positional[0], positional[1]); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) cmdList(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	for _, c := range s.List() {
		fmt.Fprintf(d.Stdout, "%s (%s)\n", c.Name, c.Username)
	}
	return false, nil
}

func (d *Dispatcher) cmdImport(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 2 {
		return false, fmt.Errorf("usage: import {json|csv|1password} <path>")
	}
	format := importexport.Format(positional[0])
	data, err := os.ReadFile(positional[1])
	if err != nil {
		return false, fmt.Errorf("reading import file: %w", err)
	}
	entries, err := importexport.Import(data, format)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if err := s.Add(e.Name, e.Username, e.Password); err != nil {
			return false, fmt.Errorf("importing %q: %w", e.Name, err)
		}
	}
	fmt.Fprintf(d.Stderr, "imported %d entries\n", len(entries))
	return len(entries) > 0, nil
}

func (d *Dispatcher) cmdExport(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	if len(positional) != 1 {
		return false, fmt.Errorf("usage: export {json|csv|1password}")
	}
	out, err := importexport.Export(s, importexport.Format(positional[0]))
	if err != nil {
		return false, err
	}
	d.Stdout.Write(out)
	return false, nil
}

func (d *Dispatcher) cmdSetMasterPassword(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("set-master-password", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	newMaster, err := d.promptNewMasterPassword()
	if err != nil {
		return false, err
	}
	s.ChangeMasterPassword(newMaster)
	return true, nil
}

func (d *Dispatcher) cmdSetScryptParams(args []string, s *store.Store) (bool, error) {
	fs := flag.NewFlagSet("set-scrypt-params", flag.ContinueOnError)
	force := boolFlag(fs, "force", "")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	positional := fs.Args()
	// --force may also follow the three numbers.
	if len(positional) > 3 {
		if err := fs.Parse(positional[3:]); err != nil {
			return false, err
		}
		positional = append(positional[:3:3], fs.Args()...)
	}
	if len(positional) != 3 {
		return false, fmt.Errorf("usage: set-scrypt-params <log2n> <r> <p> [--force]")
	}
	log2n, err := strconv.ParseUint(positional[0], 10, 32)
	if err != nil {
		return false, fmt.Errorf("invalid log2n: %w", err)
	}
	r, err := strconv.ParseUint(positional[1], 10, 32)
	if err != nil {
		return false, fmt.Errorf("invalid r: %w", err)
	}
	p, err := strconv.ParseUint(positional[2], 10, 32)
	if err != nil {
		return false, fmt.Errorf("invalid p: %w", err)
	}
	params := cryptutil.ScryptParams{Log2N: uint32(log2n), R: uint32(r), P: uint32(p)}
	if err := s.SetScryptParams(params, *force); err != nil {
		return false, err
	}
	return true, nil
}

// boolFlag registers a boolean flag under both a short and an optional long
// name, pointing at the same value, matching the repeated -a/--alnum,
// -s/--show, -l/--length pairs in spec.md §6. Pass an empty long name to
// register only the short form.
func boolFlag(fs *flag.FlagSet, short, long string) *bool {
	v := new(bool)
	fs.BoolVar(v, short, false, "")
	if long != "" {
		fs.BoolVar(v, long, false, "")
	}
	return v
}
