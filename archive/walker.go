// Package archive handles zip packages: walking entries, extracting into a
// directory and compressing a directory back with controlled entry order.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrUnsafePath is returned for entries which would land outside of the
// extraction directory.
var ErrUnsafePath = errors.New("unsafe path in archive")

// WalkFunc is called for every regular file visited by Walk. Returning an
// error stops the walk.
type WalkFunc func(file *zip.File) error

// Walk opens archive and visits its regular files whose names start with
// prefix in archive order. Any entry with unsafe name fails the walk before
// it is visited.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return fmt.Errorf("%s: %w", archive, ErrUnsafePath)
	}
	if err != nil {
		return err
	}
	defer r.Close()

	return WalkReader(&r.Reader, prefix, walkFn)
}

// WalkReader is Walk over already opened archive.
func WalkReader(r *zip.Reader, prefix string, walkFn WalkFunc) error {
	for _, f := range r.File {
		if err := CheckName(f.Name); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		if err := walkFn(f); err != nil {
			return err
		}
	}
	return nil
}

// CheckName rejects absolute entry names and names with ".." components.
// Both separators are checked since some writers produce backslashes.
func CheckName(name string) error {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return fmt.Errorf("zip entry %q: %w", name, ErrUnsafePath)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("zip entry %q: %w", name, ErrUnsafePath)
		}
	}
	return nil
}
