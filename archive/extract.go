package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Zip implements package level Extract and Compress as a value, so it could
// be handed to code expecting an archiver.
type Zip struct{}

func (Zip) Extract(archive, dir string) ([]string, error) {
	return Extract(archive, dir)
}

func (Zip) Compress(dir, archive string, opts CompressOptions) error {
	return Compress(dir, archive, opts)
}

// Extract unpacks all files of archive into dir and returns their names in
// archive order.
func Extract(archive, dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	err = Walk(archive, "", func(f *zip.File) error {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("zip entry %q: %w", f.Name, ErrUnsafePath)
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("zip entry %q: %w", f.Name, err)
		}
		names = append(names, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to extract %s: %w", archive, err)
	}
	return names, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if !f.Modified.IsZero() {
		return os.Chtimes(target, f.Modified, f.Modified)
	}
	return nil
}
