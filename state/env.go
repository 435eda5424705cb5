// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pandoc2hwpx/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by convert subcommand, non-empty values override configuration
	Overwrite    bool
	NoDirs       bool
	TOC          bool
	InputDir     string
	TemplatePath string

	// Now is the clock used for document timestamps.
	Now func() time.Time

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Document returns document configuration with command line overrides applied.
func (e *LocalEnv) Document() config.DocumentConfig {
	doc := e.Cfg.Document
	if e.TOC {
		doc.TOC.Enable = true
	}
	if e.InputDir != "" {
		doc.InputDir = e.InputDir
	}
	if e.TemplatePath != "" {
		doc.TemplatePath = e.TemplatePath
	}
	return doc
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
