package hwpx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"pandoc2hwpx/archive"
	"pandoc2hwpx/config"
	"pandoc2hwpx/content"
	"pandoc2hwpx/pandoc"
	"pandoc2hwpx/state"
)

type generateFixture struct {
	ctx     context.Context
	env     *state.LocalEnv
	cfg     *config.DocumentConfig
	content *content.Content
	png     []byte
	out     string
	scratch string
}

// newGenerateFixture isolates temporary directory so scratch cleanup can
// be observed.
func newGenerateFixture(t *testing.T) *generateFixture {
	t.Helper()

	scratch := t.TempDir()
	t.Setenv("TMPDIR", scratch)

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	env.Now = fixedNow

	input := t.TempDir()
	png := makePNG(64, 32)
	writeFile(t, input, "img/dot.png", png)

	doc := &pandoc.Document{
		Meta: pandoc.Meta{Title: "Sample", Author: "Kim"},
		Blocks: []pandoc.Block{
			header(1, str("Intro")),
			para(str("Hello"), space(), wrap(pandoc.InlineEmph, str("there"))),
			para(image("img/dot.png", nil)),
		},
	}
	return &generateFixture{
		ctx: ctx,
		env: env,
		cfg: &cfg.Document,
		content: &content.Content{
			SrcName:  filepath.Join(input, "sample.json"),
			RefID:    uuid.New(),
			Doc:      doc,
			InputDir: input,
		},
		png:     png,
		out:     filepath.Join(t.TempDir(), "nested", "sample.hwpx"),
		scratch: scratch,
	}
}

func (f *generateFixture) assertNoScratch(t *testing.T) {
	t.Helper()
	left, err := os.ReadDir(f.scratch)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("scratch directory not removed: %v", left)
	}
}

func readEntry(t *testing.T, f *zip.File) []byte {
	t.Helper()
	rc, err := f.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGenerate(t *testing.T) {
	f := newGenerateFixture(t)
	if err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	f.assertNoScratch(t)

	r, err := zip.OpenReader(f.out)
	if err != nil {
		t.Fatalf("output is not an archive: %v", err)
	}
	defer r.Close()

	var names []string
	entries := make(map[string]*zip.File)
	for _, zf := range r.File {
		names = append(names, zf.Name)
		entries[zf.Name] = zf
	}
	want := append(slices.Clone(skeletonOrder), "BinData/image1.png")
	if !slices.Equal(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}

	first := r.File[0]
	if first.Name != mimetypeName || first.Method != zip.Store {
		t.Errorf("first entry = %s (method %d), want stored mimetype", first.Name, first.Method)
	}
	if got := string(readEntry(t, first)); got != mimetypeContent {
		t.Errorf("mimetype = %q", got)
	}
	if entries[headerPath].Method != zip.Deflate {
		t.Error("header.xml must be compressed")
	}

	for _, name := range []string{"version.xml", "settings.xml", "META-INF/container.xml", "META-INF/manifest.xml"} {
		orig, err := skeletonFS.ReadFile("skeleton/" + name)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(readEntry(t, entries[name]), orig) {
			t.Errorf("%s changed while packaging", name)
		}
	}

	section := string(readEntry(t, entries[sectionPath]))
	for _, s := range []string{"Intro", ">Hello <", ">there<", `binaryItemIDRef="image1"`, "<hp:secPr"} {
		if !strings.Contains(section, s) {
			t.Errorf("section0.xml lacks %q", s)
		}
	}
	if hpf := string(readEntry(t, entries[manifestPath])); !strings.Contains(hpf, `href="BinData/image1.png"`) || !strings.Contains(hpf, ">Sample<") {
		t.Errorf("content.hpf does not describe document:\n%s", hpf)
	}
	if header := string(readEntry(t, entries[headerPath])); !strings.Contains(header, `<hh:charPr id="11"`) {
		t.Error("header.xml lacks interned style")
	}
	if !bytes.Equal(readEntry(t, entries["BinData/image1.png"]), f.png) {
		t.Error("image bytes differ")
	}
}

func TestGenerate_OutputExists(t *testing.T) {
	f := newGenerateFixture(t)
	if err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log); err != nil {
		t.Fatal(err)
	}

	err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("Generate() error = %v, want already exists", err)
	}

	f.env.Overwrite = true
	if err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log); err != nil {
		t.Fatalf("Generate() with overwrite error = %v", err)
	}
	f.assertNoScratch(t)
}

func TestGenerate_FixZip(t *testing.T) {
	f := newGenerateFixture(t)
	f.cfg.FixZip = true
	if err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	r, err := zip.OpenReader(f.out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.File[0].Name != mimetypeName || r.File[0].Method != zip.Store {
		t.Errorf("first entry = %s", r.File[0].Name)
	}
	for _, zf := range r.File {
		if zf.Flags&0x8 != 0 {
			t.Errorf("%s still uses data descriptor", zf.Name)
		}
	}
}

func TestGenerate_WorkDir(t *testing.T) {
	f := newGenerateFixture(t)
	f.content.WorkDir = t.TempDir()
	if err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, name := range []string{"header.xml", "section0.xml", "content.hpf", "sample.hwpx"} {
		if _, err := os.Stat(filepath.Join(f.content.WorkDir, name)); err != nil {
			t.Errorf("debug artifact %s: %v", name, err)
		}
	}
}

type failingArchiver struct {
	archive.Zip
}

var errDiskFull = errors.New("disk full")

func (failingArchiver) Compress(string, string, archive.CompressOptions) error {
	return errDiskFull
}

func TestGenerate_Failures(t *testing.T) {
	t.Run("compression", func(t *testing.T) {
		f := newGenerateFixture(t)
		err := generate(f.ctx, f.content, f.out, f.cfg, failingArchiver{}, f.env.Log)
		if !errors.Is(err, errDiskFull) {
			t.Fatalf("generate() error = %v, want %v", err, errDiskFull)
		}
		if _, err := os.Stat(f.out); !os.IsNotExist(err) {
			t.Error("partial output left behind")
		}
		f.assertNoScratch(t)
	})

	t.Run("overwrite keeps previous output", func(t *testing.T) {
		f := newGenerateFixture(t)
		previous := []byte("previous package")
		if err := os.MkdirAll(filepath.Dir(f.out), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(f.out, previous, 0644); err != nil {
			t.Fatal(err)
		}
		f.env.Overwrite = true
		err := generate(f.ctx, f.content, f.out, f.cfg, failingArchiver{}, f.env.Log)
		if !errors.Is(err, errDiskFull) {
			t.Fatalf("generate() error = %v, want %v", err, errDiskFull)
		}
		if data, err := os.ReadFile(f.out); err != nil || !bytes.Equal(data, previous) {
			t.Errorf("existing output = %q, %v", data, err)
		}
		entries, err := os.ReadDir(filepath.Dir(f.out))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("output directory holds %d entries, want only previous output", len(entries))
		}
		f.assertNoScratch(t)
	})

	t.Run("no archiver", func(t *testing.T) {
		f := newGenerateFixture(t)
		err := generate(f.ctx, f.content, f.out, f.cfg, nil, f.env.Log)
		if !errors.Is(err, ErrArchiverUnavailable) {
			t.Fatalf("generate() error = %v", err)
		}
		f.assertNoScratch(t)
	})

	t.Run("template missing", func(t *testing.T) {
		f := newGenerateFixture(t)
		f.cfg.TemplatePath = filepath.Join(t.TempDir(), "absent.hwpx")
		err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log)
		if !errors.Is(err, ErrTemplateMissing) {
			t.Fatalf("Generate() error = %v", err)
		}
		if _, err := os.Stat(f.out); !os.IsNotExist(err) {
			t.Error("output created for failed conversion")
		}
		f.assertNoScratch(t)
	})

	t.Run("canceled", func(t *testing.T) {
		f := newGenerateFixture(t)
		ctx, cancel := context.WithCancel(f.ctx)
		cancel()
		if err := Generate(ctx, f.content, f.out, f.cfg, f.env.Log); !errors.Is(err, context.Canceled) {
			t.Fatalf("Generate() error = %v", err)
		}
	})
}

func TestGenerate_ReferenceTemplate(t *testing.T) {
	f := newGenerateFixture(t)
	f.cfg.TemplatePath = referencePackage(t, nil)
	if err := Generate(f.ctx, f.content, f.out, f.cfg, f.env.Log); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	r, err := zip.OpenReader(f.out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	for _, zf := range r.File {
		if zf.Name != headerPath {
			continue
		}
		header := string(readEntry(t, zf))
		if strings.Contains(header, f.cfg.Fonts.Hangul) {
			t.Error("reference template fonts must be kept")
		}
		if !strings.Contains(header, f.cfg.Fonts.Code) {
			t.Error("code font not added to reference template")
		}
	}
}
