package hwpx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"pandoc2hwpx/archive"
	"pandoc2hwpx/config"
	"pandoc2hwpx/content"
	"pandoc2hwpx/misc"
	"pandoc2hwpx/state"
)

// Generate creates the HWPX output file.
func Generate(ctx context.Context, c *content.Content, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	return generate(ctx, c, outputPath, cfg, archive.Zip{}, log)
}

func generate(ctx context.Context, c *content.Content, outputPath string, cfg *config.DocumentConfig, arch Archiver, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	exists := false
	if _, err := os.Stat(outputPath); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputPath)
		}
		exists = true
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	log.Info("Generating HWPX", zap.String("output", outputPath), zap.Stringer("ref", c.RefID))

	scratch, err := os.MkdirTemp("", misc.GetAppName()+"-hwpx-")
	if err != nil {
		return fmt.Errorf("unable to create scratch directory: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(scratch); rerr != nil {
			log.Warn("Unable to remove scratch directory", zap.String("dir", scratch), zap.Error(rerr))
		}
	}()

	tmpl, err := materialize(arch, cfg.TemplatePath, filepath.Join(scratch, "package"))
	if err != nil {
		return err
	}

	conv := newConversion(*cfg, tmpl, c.InputDir, env.Now, log)
	parts, err := conv.assemble(tmpl, c.Doc)
	if err != nil {
		return fmt.Errorf("unable to assemble document: %w", err)
	}

	// Save generated parts for debugging
	if c.WorkDir != "" {
		for _, p := range parts {
			if err := p.doc.WriteToFile(filepath.Join(c.WorkDir, filepath.Base(p.name))); err != nil {
				return fmt.Errorf("unable to write %s for debugging: %w", p.name, err)
			}
		}
	}

	tmpName := filepath.Join(scratch, filepath.Base(outputPath))
	if err := conv.writePackage(arch, tmpl, parts, tmpName); err != nil {
		return err
	}

	if exists {
		log.Warn("Overwriting existing file", zap.String("file", outputPath))
	}
	if err := publish(tmpName, outputPath, cfg.FixZip); err != nil {
		return err
	}

	if c.WorkDir != "" {
		if err := copyFile(tmpName, filepath.Join(c.WorkDir, filepath.Base(outputPath))); err != nil {
			log.Warn("Unable to store result for debugging", zap.Error(err))
		}
	}

	log.Debug("HWPX package written",
		zap.Int("styles", len(conv.styles.Entries())),
		zap.Int("images", len(conv.images.Assets())),
		zap.Bool("builtin_template", tmpl.builtin))
	return nil
}

// publish stages finished package next to its destination and renames it
// into place, existing file is replaced only by complete output.
func publish(src, dst string, fixZip bool) error {
	staged, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("unable to stage output: %w", err)
	}
	name := staged.Name()
	staged.Close()

	if fixZip {
		err = copyZipWithoutDataDescriptors(src, name)
	} else {
		err = copyFile(src, name)
	}
	if err == nil {
		// temporary files are private, output is not
		err = os.Chmod(name, 0644)
	}
	if err == nil {
		err = os.Rename(name, dst)
	}
	if err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
