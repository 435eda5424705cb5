package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"

	"pandoc2hwpx/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty report. When destination could not be
// created report goes to the temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{artifacts: make(map[string]artifact), file: f}, nil
}

type artifactKind int

const (
	artifactFile artifactKind = iota
	artifactDir
	artifactData
)

// artifact is a single item of debug report. Directories are conversion work
// areas and are removed once archived.
type artifact struct {
	kind   artifactKind
	source string
	path   string
	stamp  time.Time
	data   []byte
}

// Report accumulates everything needed for the debug archive produced at the
// end of the run. Not safe for concurrent use.
type Report struct {
	artifacts map[string]artifact
	file      *os.File
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers file or directory to be put into the report under name.
// Nil report ignores the call.
func (r *Report) Store(name, source string) {
	if r == nil {
		return
	}
	if old, exists := r.artifacts[name]; exists && old.source != source {
		panic(fmt.Sprintf("report entry [%s] registered twice: %s and %s", name, old.source, source))
	}

	a := artifact{kind: artifactFile, source: source, path: source}
	if p, err := filepath.Abs(source); err == nil {
		a.path = p
	}
	if info, err := os.Stat(a.path); err == nil && info.IsDir() {
		a.kind = artifactDir
	}
	r.artifacts[name] = a
}

// StoreData registers in-memory content to be put into the report as a file.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.artifacts[name]; exists {
		panic(fmt.Sprintf("report entry [%s] registered twice", name))
	}
	r.artifacts[name] = artifact{kind: artifactData, data: data, stamp: time.Now()}
}

// Close writes the report archive and removes archived work directories.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	err := r.finalize()
	for _, a := range r.artifacts {
		if a.kind == artifactDir {
			err = multierr.Append(err, os.RemoveAll(a.path))
		}
	}
	return err
}

func (r *Report) names() []string {
	names := make([]string, 0, len(r.artifacts))
	for name := range r.artifacts {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		default:
			return 1
		}
	})
	return names
}

func (r *Report) finalize() error {
	zw := zip.NewWriter(r.file)

	now := time.Now()
	names := r.names()

	var manifest bytes.Buffer
	for _, name := range names {
		a := r.artifacts[name]
		stamp := a.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(&manifest, "%s\t%s\t%s : %s\n", stamp.UTC().Format(time.UnixDate), name, a.source, a.path)
	}
	if err := addEntry(zw, "MANIFEST", now, &manifest); err != nil {
		return multierr.Append(err, zw.Close())
	}

	for _, name := range names {
		if err := r.archive(zw, name, r.artifacts[name]); err != nil {
			return multierr.Append(err, zw.Close())
		}
	}
	return zw.Close()
}

// archive puts single artifact into the report. Vanished files are ignored.
func (r *Report) archive(zw *zip.Writer, name string, a artifact) error {
	switch a.kind {
	case artifactData:
		return addEntry(zw, name, a.stamp, bytes.NewReader(a.data))
	case artifactDir:
		if _, err := os.Stat(a.path); err != nil {
			return nil
		}
		return filepath.WalkDir(a.path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(a.path, p)
			if err != nil {
				return err
			}
			return addFile(zw, path.Join(name, filepath.ToSlash(rel)), p)
		})
	default:
		if _, err := os.Stat(a.path); err != nil {
			return nil
		}
		return addFile(zw, name, a.path)
	}
}

func addFile(zw *zip.Writer, name, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return addEntry(zw, name, info.ModTime(), f)
}

func addEntry(zw *zip.Writer, name string, stamp time.Time, src io.Reader) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: stamp})
	if err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	return nil
}
