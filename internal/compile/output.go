package compile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ssio/internal/dom"
)

// Doctype starts every written page.
const Doctype = "<!DOCTYPE html>"

// Serialize renders a finished page.
func Serialize(n dom.Node, pretty bool) string {
	if pretty {
		return Doctype + "\n" + dom.PrettyHTMLString(n)
	}
	return Doctype + dom.HTMLString(n)
}

// writeIfChanged writes content to path unless the file already holds exactly
// those bytes. It reports whether a write happened.
func writeIfChanged(path, content string) (bool, error) {
	current, err := os.ReadFile(path)
	if err == nil && bytes.Equal(current, []byte(content)) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // output is a public site
		return false, err
	}
	return true, nil
}

// ensureSymlink makes output a relative symlink to source. A link that already
// points there is left alone and a stale link is replaced; any other existing
// file is an error.
func ensureSymlink(source, output string) (bool, error) {
	rel, err := filepath.Rel(filepath.Dir(output), source)
	if err != nil {
		return false, fmt.Errorf("relative link target: %w", err)
	}
	info, err := os.Lstat(output)
	switch {
	case err == nil && info.Mode()&fs.ModeSymlink != 0:
		if current, readErr := os.Readlink(output); readErr == nil && current == rel {
			return false, nil
		}
		if err := os.Remove(output); err != nil {
			return false, err
		}
	case err == nil:
		return false, fmt.Errorf("%s exists and is not a symlink", output)
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return false, err
	}
	if err := os.Symlink(rel, output); err != nil {
		return false, err
	}
	return true, nil
}
