package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pandoc2hwpx/content"
	"pandoc2hwpx/convert/hwpx"
	"pandoc2hwpx/state"
)

const sourceExt = ".json"

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src != content.StdinName {
		if src, err = filepath.Abs(src); err != nil {
			return err
		}
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	env.TOC = cmd.Bool("toc")
	env.InputDir = cmd.String("input-dir")
	env.TemplatePath = cmd.String("template")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if src == content.StdinName {
		return processDocument(ctx, os.Stdin, content.StdinName, content.StdinName, dst, log)
	}
	return process(ctx, src, dst, log)
}

// process dispatches on source kind: directory or single document file.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	if fi.Mode().IsDir() {
		if err := processDir(ctx, src, dst, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		return nil
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}

	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open source: %w", err)
	}
	defer file.Close()

	return processDocument(ctx, file, src, filepath.Base(src), dst, log)
}

// processDir finds pandoc JSON files under dir and converts them in natural
// order. Failure of a single document is logged and does not stop the batch.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	var sources []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), sourceExt) {
			log.Debug("Skipping file, not a pandoc JSON document", zap.String("file", path))
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sources = append(sources, rel)
		return nil
	})
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}
	slices.SortFunc(sources, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	for _, rel := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, rel)
		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			continue
		}
		if err := processDocument(ctx, file, path, rel, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		file.Close()
	}
	return nil
}

// processDocument converts single source. "path" locates the source (images
// are resolved against it), "src" is its name relative to the original
// source argument and shapes output location. "dst" is the destination
// directory.
func processDocument(ctx context.Context, r io.Reader, path, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var refID, outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// a broken document must not stop the batch
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("ref_id", refID))
		}
	}(time.Now())

	c, err := content.Prepare(ctx, r, path, log)
	if err != nil {
		return fmt.Errorf("unable to parse pandoc source (%s): %w", src, err)
	}
	refID = c.RefID.String()

	outputName = buildOutputPath(c, src, dst, env)

	doc := env.Document()
	if err := hwpx.Generate(ctx, c, outputName, &doc, log.Named("hwpx")); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", refID, filepath.Ext(outputName)), outputName)
	}
	return nil
}
