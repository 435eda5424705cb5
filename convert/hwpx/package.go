package hwpx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"pandoc2hwpx/archive"
	"pandoc2hwpx/pandoc"
)

type packagePart struct {
	name string
	doc  *etree.Document
}

// assemble produces the three rewritten package parts. Header and manifest
// are updated after the body so they see every interned style and image.
func (c *conversion) assemble(tmpl *templateInfo, doc *pandoc.Document) ([]packagePart, error) {
	body := c.Compose(doc)
	section, err := buildSection(tmpl.section, body, c.cfg.Layout.LineSpacing)
	if err != nil {
		return nil, err
	}
	return []packagePart{
		{name: headerPath, doc: c.updateHeader(tmpl.header, tmpl.builtin)},
		{name: sectionPath, doc: section},
		{name: manifestPath, doc: c.updateManifest(tmpl.manifest, doc.Meta)},
	}, nil
}

// writePackage overwrites generated parts in the materialized template,
// copies image bytes into it and compresses the result into archivePath.
func (c *conversion) writePackage(arch Archiver, tmpl *templateInfo, parts []packagePart, archivePath string) error {
	if arch == nil {
		return ErrArchiverUnavailable
	}

	for _, p := range parts {
		if err := writePart(tmpl.dir, p); err != nil {
			return err
		}
	}

	for _, a := range c.images.Assets() {
		if a.Resolved == "" {
			continue
		}
		dst := filepath.Join(tmpl.dir, filepath.FromSlash(a.Href()))
		if err := copyFile(a.Resolved, dst); err != nil {
			c.log.Warn("Image not found, skipping", zap.String("image", a.Source), zap.Error(err))
		}
	}

	opts := archive.CompressOptions{
		Order:  append([]string{mimetypeName}, tmpl.entries...),
		Stored: []string{mimetypeName},
	}
	if err := arch.Compress(tmpl.dir, archivePath, opts); err != nil {
		return fmt.Errorf("unable to compress package: %w", err)
	}
	return nil
}

func writePart(dir string, p packagePart) error {
	path := filepath.Join(dir, filepath.FromSlash(p.name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := p.doc.WriteToFile(path); err != nil {
		return fmt.Errorf("unable to write %s: %w", p.name, err)
	}
	return nil
}

func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return out.Close()
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
