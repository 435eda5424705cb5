package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReport(t *testing.T) (*Report, string) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "report.zip")
	rc := ReporterConfig{Destination: name}
	r, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return r, name
}

func readReport(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestReportClose_Contents(t *testing.T) {
	r, name := newTestReport(t)

	workDir := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(filepath.Join(workDir, "parts"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "parts", "header.xml"), []byte("<head/>"), 0644); err != nil {
		t.Fatal(err)
	}
	result := filepath.Join(t.TempDir(), "result.hwpx")
	if err := os.WriteFile(result, []byte("PK"), 0644); err != nil {
		t.Fatal(err)
	}

	r.Store("pandoc2hwpx-10", workDir)
	r.Store("pandoc2hwpx-9", workDir+"-missing")
	r.Store("result-1.hwpx", result)
	r.StoreData("config/app.yaml", []byte("document: {}\n"))

	if got := r.Name(); got != name {
		t.Errorf("Name() = %q, want %q", got, name)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readReport(t, name)
	for entry, want := range map[string]string{
		"pandoc2hwpx-10/parts/header.xml": "<head/>",
		"result-1.hwpx":                   "PK",
		"config/app.yaml":                 "document: {}\n",
	} {
		if got, ok := files[entry]; !ok || got != want {
			t.Errorf("report entry %s = %q (present %v), want %q", entry, got, ok, want)
		}
	}

	manifest := strings.Split(strings.TrimSpace(files["MANIFEST"]), "\n")
	if len(manifest) != 4 {
		t.Fatalf("MANIFEST has %d lines, want 4:\n%s", len(manifest), files["MANIFEST"])
	}
	order := []string{"config/app.yaml", "pandoc2hwpx-9", "pandoc2hwpx-10", "result-1.hwpx"}
	for i, line := range manifest {
		if fields := strings.Split(line, "\t"); len(fields) < 2 || fields[1] != order[i] {
			t.Errorf("MANIFEST line %d = %q, want entry %s", i, line, order[i])
		}
	}

	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Errorf("work directory should be removed after report is closed, stat error = %v", err)
	}
	if _, err := os.Stat(result); err != nil {
		t.Errorf("stored file should stay in place: %v", err)
	}
}

func TestReportStore_Duplicates(t *testing.T) {
	r, _ := newTestReport(t)
	t.Cleanup(func() { _ = r.Close() })

	r.Store("final.log", "a.log")
	r.Store("final.log", "a.log")

	for name, fn := range map[string]func(){
		"different source": func() { r.Store("final.log", "b.log") },
		"data twice":       func() { r.StoreData("final.log", nil) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic on duplicate report entry")
				}
			}()
			fn()
		})
	}
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("c", []byte("d"))
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q, want empty", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() on nil report error = %v", err)
	}
	if err := (&Report{artifacts: map[string]artifact{}}).Close(); err != nil {
		t.Errorf("Close() without file error = %v", err)
	}
}

func TestReporterPrepare_FallbackToTemp(t *testing.T) {
	rc := ReporterConfig{Destination: filepath.Join(t.TempDir(), "missing", "report.zip")}
	r, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	name := r.Name()
	t.Cleanup(func() { os.Remove(name) })

	if !strings.Contains(filepath.Base(name), "-report.") {
		t.Errorf("Prepare() fallback name = %q", name)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if files := readReport(t, name); files["MANIFEST"] != "" {
		t.Errorf("empty report MANIFEST = %q, want empty", files["MANIFEST"])
	}
}
