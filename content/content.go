// Package content prepares source documents for conversion.
package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"pandoc2hwpx/misc"
	"pandoc2hwpx/pandoc"
	"pandoc2hwpx/state"
)

// StdinName is the source name used for documents read from standard input.
const StdinName = "-"

// Content is a parsed document together with everything conversion needs
// to know about where it came from.
type Content struct {
	SrcName string
	RefID   uuid.UUID
	Doc     *pandoc.Document

	// InputDir is base for relative image paths.
	InputDir string
	// WorkDir receives debug artifacts, empty when no report was requested.
	WorkDir string
}

// Prepare reads and parses pandoc JSON AST.
func Prepare(ctx context.Context, r io.Reader, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}

	doc, err := pandoc.Parse(data, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pandoc document: %w", err)
	}

	refID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate conversion id: %w", err)
	}

	c := &Content{
		SrcName:  srcName,
		RefID:    refID,
		Doc:      doc,
		InputDir: inputDir(env.Document().InputDir, srcName),
	}

	if env.Rpt == nil {
		return c, nil
	}

	tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary directory: %w", err)
	}
	env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), refID), tmpDir)
	c.WorkDir = tmpDir

	baseSrcName := "stdin.json"
	if srcName != StdinName && srcName != "" {
		baseSrcName = filepath.Base(srcName)
	}

	// Save input and parsed tree for debugging
	if err := os.WriteFile(filepath.Join(tmpDir, baseSrcName), pretty.Pretty(data), 0644); err != nil {
		return nil, fmt.Errorf("unable to write input doc for debugging: %w", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, baseSrcName+"_parsed"), []byte(c.String()), 0644); err != nil {
		return nil, fmt.Errorf("unable to write parsed doc for debugging: %w", err)
	}
	return c, nil
}

// inputDir picks base for relative image paths: configured directory, then
// source file directory. Standard input falls back to current directory.
func inputDir(configured, srcName string) string {
	if configured != "" {
		return configured
	}
	if srcName == StdinName || srcName == "" {
		return ""
	}
	return filepath.Dir(srcName)
}
