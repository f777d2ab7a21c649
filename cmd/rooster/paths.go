package main

import (
	"os"
	"path/filepath"
)

// filePathEnv selects the password file path (spec.md §6, "Environment").
const filePathEnv = "ROOSTER_FILE"

// defaultFileName is the file rooster looks for under the user's home
// directory when ROOSTER_FILE isn't set.
const defaultFileName = ".rooster"

// resolveFilePath implements the ROOSTER_FILE / platform-default rule.
func resolveFilePath() string {
	if v, ok := os.LookupEnv(filePathEnv); ok && v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultFileName
	}
	return filepath.Join(home, defaultFileName)
}

// preferencesFilePath is where internal/config looks for the optional
// preferences file; unlike ROOSTER_FILE there is no environment override
// named in the CLI surface, so this always resolves to the same
// well-known location: rooster/preferences.yaml under the user's config
// directory, or ~/.rooster.yaml when no config directory is known.
func preferencesFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "rooster.yaml"
		}
		return filepath.Join(home, ".rooster.yaml")
	}
	return filepath.Join(dir, "rooster", "preferences.yaml")
}

// writeFileAtomic writes data to path by writing to a sibling temp file and
// renaming it into place, so the file on disk is always either the old
// complete snapshot or the new one (spec.md §5: "atomic-rename, ... no
// partially written file is ever exposed").
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
