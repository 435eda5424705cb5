package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/multierr"
)

// CompressOptions controls layout of the produced archive.
type CompressOptions struct {
	// Order lists entries (slash separated, relative to the directory) to be
	// written first and in that order. Missing ones are ignored. Everything
	// else follows in lexical order.
	Order []string
	// Stored lists entries written without compression.
	Stored []string
}

// Compress packs every regular file under dir into a new archive. On failure
// the partially written archive is removed.
func Compress(dir, archive string, opts CompressOptions) (err error) {
	out, err := os.Create(archive)
	if err != nil {
		return fmt.Errorf("unable to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(archive))
		}
	}()

	zw := zip.NewWriter(out)
	if err = writeEntries(zw, dir, opts); err != nil {
		return multierr.Combine(err, zw.Close(), out.Close())
	}
	if err = zw.Close(); err != nil {
		return multierr.Append(fmt.Errorf("unable to finalize archive: %w", err), out.Close())
	}
	return out.Close()
}

func writeEntries(zw *zip.Writer, dir string, opts CompressOptions) error {
	names, err := listFiles(dir)
	if err != nil {
		return fmt.Errorf("unable to list %s: %w", dir, err)
	}

	written := make(map[string]bool, len(names))
	ordered := make([]string, 0, len(names))
	for _, name := range opts.Order {
		if !written[name] && slices.Contains(names, name) {
			written[name] = true
			ordered = append(ordered, name)
		}
	}
	for _, name := range names {
		if !written[name] {
			ordered = append(ordered, name)
		}
	}

	for _, name := range ordered {
		method := zip.Deflate
		if slices.Contains(opts.Stored, name) {
			method = zip.Store
		}
		if err := addFile(zw, dir, name, method); err != nil {
			return fmt.Errorf("unable to add %s: %w", name, err)
		}
	}
	return nil
}

// listFiles returns slash separated names of regular files under dir, sorted.
func listFiles(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			// ignore directories, links, etc.
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func addFile(zw *zip.Writer, dir, name string, method uint16) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: info.ModTime(),
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
