// Package importexport implements the thin, non-cryptographic adapters
// spec.md §1 calls out as external collaborators: "JSON/CSV import-export
// glue for third-party formats". Nothing here touches the envelope or the
// KDF; it only converts between a Store's entries and a third-party text
// format.
package importexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/barnettlynn/rooster/internal/secret"
	"github.com/barnettlynn/rooster/internal/store"
)

// Format names the supported external formats (spec.md §6 CLI surface:
// `import {json|csv|1password}`, `export {json|csv|1password}`).
type Format string

const (
	FormatJSON       Format = "json"
	FormatCSV        Format = "csv"
	Format1Password  Format = "1password"
)

// ImportedEntry is one row recovered from an external format, ready to be
// handed to Store.Add by the dispatcher.
type ImportedEntry struct {
	Name     string
	Username string
	Password *secret.String
}

type jsonEntry struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Export serializes every entry in s using format, in insertion order.
func Export(s *store.Store, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return exportJSON(s)
	case FormatCSV:
		return exportCSV(s, []string{"name", "username", "password"})
	case Format1Password:
		return exportCSV(s, []string{"Title", "Username", "Password"})
	default:
		return nil, fmt.Errorf("importexport: unsupported export format %q", format)
	}
}

// Import parses data in format into a list of entries the dispatcher can
// add to a store one at a time (so each add still goes through the usual
// name-collision check).
func Import(data []byte, format Format) ([]ImportedEntry, error) {
	switch format {
	case FormatJSON:
		return importJSON(data)
	case FormatCSV, Format1Password:
		return importCSV(data)
	default:
		return nil, fmt.Errorf("importexport: unsupported import format %q", format)
	}
}

func exportJSON(s *store.Store) ([]byte, error) {
	entries := s.List()
	out := make([]jsonEntry, len(entries))
	for i, c := range entries {
		out[i] = jsonEntry{Name: c.Name, Username: c.Username, Password: c.Password.Expose()}
	}
	return json.MarshalIndent(out, "", "  ")
}

func importJSON(data []byte) ([]ImportedEntry, error) {
	var raw []jsonEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("importexport: malformed json import: %w", err)
	}
	out := make([]ImportedEntry, len(raw))
	for i, e := range raw {
		out[i] = ImportedEntry{Name: e.Name, Username: e.Username, Password: secret.NewString(e.Password)}
	}
	return out, nil
}

func exportCSV(s *store.Store, header []string) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, c := range s.List() {
		if err := w.Write([]string{c.Name, c.Username, c.Password.Expose()}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func importCSV(data []byte) ([]ImportedEntry, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("importexport: malformed csv import: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	// Skip the header row; column order is always name/title, username,
	// password for every format this package accepts.
	out := make([]ImportedEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			return nil, fmt.Errorf("importexport: csv row has %d columns, want at least 3", len(row))
		}
		out = append(out, ImportedEntry{Name: row[0], Username: row[1], Password: secret.NewString(row[2])})
	}
	return out, nil
}
