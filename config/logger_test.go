package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pandoc2hwpx/misc"
)

func resetCrashOutput(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { debug.SetCrashOutput(nil, debug.CrashOptions{}) })
}

func TestLoggingPrepare_File(t *testing.T) {
	resetCrashOutput(t)
	dir := t.TempDir()

	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(dir, "conv.log"), Mode: "overwrite"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hidden detail")
	log.Info("Processing starting", zap.String("source", "a.json"))
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Processing starting") || !strings.Contains(text, "a.json") {
		t.Errorf("log file misses info entry:\n%s", text)
	}
	if strings.Contains(text, "hidden detail") {
		t.Errorf("normal level log contains debug entry:\n%s", text)
	}
	if !strings.Contains(text, misc.GetAppName()) {
		t.Errorf("logger is not named after program:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(dir, misc.GetAppName()+"-panic.log")); err != nil {
		t.Errorf("panic log is not created next to log file: %v", err)
	}
}

func TestLoggingPrepare_Append(t *testing.T) {
	resetCrashOutput(t)
	name := filepath.Join(t.TempDir(), "conv.log")
	if err := os.WriteFile(name, []byte("previous run\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, mode := range []string{"append", "overwrite"} {
		t.Run(mode, func(t *testing.T) {
			conf := LoggingConfig{FileLogger: LoggerConfig{Level: "debug", Destination: name, Mode: mode}}
			log, err := conf.Prepare(nil)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			log.Debug("run " + mode)
			_ = log.Sync()

			data, _ := os.ReadFile(name)
			kept := strings.Contains(string(data), "previous run")
			if kept != (mode == "append") {
				t.Errorf("mode %s kept previous content = %v:\n%s", mode, kept, data)
			}
		})
	}
}

func TestLoggingPrepare_ReportForcesDebug(t *testing.T) {
	resetCrashOutput(t)
	rpt, _ := newTestReport(t)
	t.Cleanup(func() { _ = rpt.Close() })

	conf := LoggingConfig{FileLogger: LoggerConfig{Level: "none", Destination: filepath.Join(t.TempDir(), "conv.log")}}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("debug entry")
	_ = log.Sync()

	for _, name := range []string{"final.log", "panic.log"} {
		if _, ok := rpt.artifacts[name]; !ok {
			t.Errorf("report misses %s", name)
		}
	}
	data, _ := os.ReadFile(conf.FileLogger.Destination)
	if !strings.Contains(string(data), "debug entry") {
		t.Errorf("debug entry is not logged when report is requested:\n%s", data)
	}
}

func TestLoggingPrepare_Redirected(t *testing.T) {
	resetCrashOutput(t)
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	conf := LoggingConfig{FileLogger: LoggerConfig{Level: "normal", Destination: filepath.Join(tmp, "missing", "conv.log")}}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	_ = log.Sync()

	matches, _ := filepath.Glob(filepath.Join(tmp, misc.GetAppName()+".*.log"))
	for _, m := range matches {
		data, _ := os.ReadFile(m)
		if strings.Contains(string(data), "Log file was redirected to new location") {
			return
		}
	}
	t.Error("redirected log file with warning not found")
}

func TestShortErrorEncoder(t *testing.T) {
	enc := newShortErrorEncoder(zap.NewDevelopmentEncoderConfig())
	wrapped := fmt.Errorf("unable to generate output: %w", errors.New("disk full"))

	buf, err := enc.Clone().EncodeEntry(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "Conversion failed"},
		[]zapcore.Field{zap.Error(wrapped), zap.String("file", "a.json")})
	if err != nil {
		t.Fatalf("EncodeEntry() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "unable to generate output: disk full") || !strings.Contains(out, "a.json") {
		t.Errorf("encoded entry = %q", out)
	}
	if strings.Contains(out, "errorVerbose") {
		t.Errorf("encoded entry has verbose error: %q", out)
	}
}

func TestConsoleCores_None(t *testing.T) {
	low, high := consoleCores("none")
	if low.Enabled(zapcore.ErrorLevel) || high.Enabled(zapcore.FatalLevel) {
		t.Error("console cores are enabled for level none")
	}
	low, high = consoleCores("normal")
	if low.Enabled(zapcore.DebugLevel) || !low.Enabled(zapcore.WarnLevel) || low.Enabled(zapcore.ErrorLevel) {
		t.Error("stdout core levels are wrong for normal")
	}
	if !high.Enabled(zapcore.ErrorLevel) || high.Enabled(zapcore.WarnLevel) {
		t.Error("stderr core levels are wrong for normal")
	}
}
