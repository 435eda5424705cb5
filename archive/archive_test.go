package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, entries [][2]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		fw, err := w.Create(e[0])
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", e[0], err)
		}
		if _, err := fw.Write([]byte(e[1])); err != nil {
			t.Fatalf("Failed to write %s: %v", e[0], err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
}

func TestExtract(t *testing.T) {
	tmpDir := t.TempDir()
	zipPath := filepath.Join(tmpDir, "src.zip")
	writeZip(t, zipPath, [][2]string{
		{"mimetype", "application/hwp+zip"},
		{"Contents/section0.xml", "<sec/>"},
		{"Contents/header.xml", "<head/>"},
		{"META-INF/container.xml", "<container/>"},
	})

	dst := filepath.Join(tmpDir, "out")
	names, err := Extract(zipPath, dst)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"mimetype", "Contents/section0.xml", "Contents/header.xml", "META-INF/container.xml"}
	if !slices.Equal(names, want) {
		t.Errorf("Extract() names = %v, want %v", names, want)
	}

	data, err := os.ReadFile(filepath.Join(dst, "Contents", "header.xml"))
	if err != nil {
		t.Fatalf("Failed to read extracted file: %v", err)
	}
	if string(data) != "<head/>" {
		t.Errorf("extracted content = %q, want %q", data, "<head/>")
	}
}

func TestExtract_UnsafePath(t *testing.T) {
	tmpDir := t.TempDir()
	zipPath := filepath.Join(tmpDir, "evil.zip")
	writeZip(t, zipPath, [][2]string{
		{"ok.txt", "fine"},
		{"../escape.txt", "bad"},
	})

	if _, err := Extract(zipPath, filepath.Join(tmpDir, "out")); err == nil {
		t.Fatal("Extract() expected error for path traversal entry")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("entry escaped destination directory")
	}
}

func TestExtract_NotArchive(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "plain.txt")
	if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(path, filepath.Join(tmpDir, "out")); err == nil {
		t.Error("Extract() expected error for non-zip file")
	}
}

func TestCompress(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	files := map[string]string{
		"mimetype":              "application/hwp+zip",
		"BinData/image1.png":    "png",
		"Contents/header.xml":   "<head/>",
		"Contents/section0.xml": "<sec/>",
		"version.xml":           "<version/>",
	}
	for name, content := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	dst := filepath.Join(tmpDir, "out.zip")
	err := Compress(src, dst, CompressOptions{
		Order:  []string{"mimetype", "version.xml", "absent.xml"},
		Stored: []string{"mimetype"},
	})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	r, err := zip.OpenReader(dst)
	if err != nil {
		t.Fatalf("Failed to open result: %v", err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		wantMethod := zip.Deflate
		if f.Name == "mimetype" {
			wantMethod = zip.Store
		}
		if f.Method != wantMethod {
			t.Errorf("%s method = %d, want %d", f.Name, f.Method, wantMethod)
		}
	}
	want := []string{"mimetype", "version.xml", "BinData/image1.png", "Contents/header.xml", "Contents/section0.xml"}
	if !slices.Equal(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	if err := os.MkdirAll(filepath.Join(src, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "a", "b", "c.txt"), []byte("deep"), 0644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(tmpDir, "out.zip")
	if err := Compress(src, dst, CompressOptions{}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	names, err := Extract(dst, filepath.Join(tmpDir, "back"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !slices.Equal(names, []string{"a/b/c.txt"}) {
		t.Errorf("names = %v", names)
	}
	data, err := os.ReadFile(filepath.Join(tmpDir, "back", "a", "b", "c.txt"))
	if err != nil || string(data) != "deep" {
		t.Errorf("round trip content = %q, err = %v", data, err)
	}
}

func TestCompress_MissingSource(t *testing.T) {
	tmpDir := t.TempDir()
	dst := filepath.Join(tmpDir, "out.zip")

	err := Compress(filepath.Join(tmpDir, "nope"), dst, CompressOptions{})
	if err == nil {
		t.Fatal("Compress() expected error for missing source directory")
	}
	if !strings.Contains(err.Error(), "unable to list") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("partial archive left in place")
	}
}

func TestZip_ImplementsBoth(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "f"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var z Zip
	dst := filepath.Join(tmpDir, "z.zip")
	if err := z.Compress(src, dst, CompressOptions{}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	names, err := z.Extract(dst, filepath.Join(tmpDir, "z"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(names) != 1 || names[0] != "f" {
		t.Errorf("names = %v, want [f]", names)
	}
}
