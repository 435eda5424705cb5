package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"pandoc2hwpx/config"
	"pandoc2hwpx/pandoc"
	"pandoc2hwpx/state"
)

const sampleJSON = `{"pandoc-api-version":[1,23,1],"meta":{"title":{"t":"MetaInlines","c":[{"t":"Str","c":"Sample"}]}},"blocks":[{"t":"Para","c":[{"t":"Str","c":"Hello"}]}]}`

func testContext(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Cfg = cfg
	env.Log = zaptest.NewLogger(t)
	return ctx, env
}

func TestPrepare(t *testing.T) {
	ctx, env := testContext(t)

	c, err := Prepare(ctx, strings.NewReader(sampleJSON), filepath.Join("docs", "sample.json"), env.Log)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if c.Doc == nil || c.Doc.Meta.Title != "Sample" {
		t.Errorf("Prepare() title = %+v", c.Doc)
	}
	if c.RefID == uuid.Nil || c.RefID.Version() != 7 {
		t.Errorf("Prepare() ref id = %v, want v7 uuid", c.RefID)
	}
	if c.InputDir != "docs" {
		t.Errorf("Prepare() input dir = %q, want %q", c.InputDir, "docs")
	}
	if c.WorkDir != "" {
		t.Errorf("Prepare() work dir = %q without report, want empty", c.WorkDir)
	}
}

func TestPrepare_InputDirOverride(t *testing.T) {
	ctx, env := testContext(t)
	env.InputDir = "/images"

	c, err := Prepare(ctx, strings.NewReader(sampleJSON), "docs/sample.json", env.Log)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if c.InputDir != "/images" {
		t.Errorf("Prepare() input dir = %q, want /images", c.InputDir)
	}
}

func TestPrepare_Errors(t *testing.T) {
	t.Run("not pandoc", func(t *testing.T) {
		ctx, env := testContext(t)
		_, err := Prepare(ctx, strings.NewReader(`{"a":1}`), StdinName, env.Log)
		if !errors.Is(err, pandoc.ErrNotPandoc) {
			t.Errorf("Prepare() error = %v, want ErrNotPandoc", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, env := testContext(t)
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := Prepare(ctx, strings.NewReader(sampleJSON), StdinName, env.Log); !errors.Is(err, context.Canceled) {
			t.Errorf("Prepare() error = %v, want context.Canceled", err)
		}
	})
}

func TestPrepare_WithReport(t *testing.T) {
	ctx, env := testContext(t)

	rc := config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare report error = %v", err)
	}
	env.Rpt = rpt
	t.Cleanup(func() {
		if err := rpt.Close(); err != nil {
			t.Errorf("report Close() error = %v", err)
		}
	})

	c, err := Prepare(ctx, strings.NewReader(sampleJSON), StdinName, env.Log)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if c.WorkDir == "" {
		t.Fatal("Prepare() work dir is empty with report")
	}
	if c.InputDir != "" {
		t.Errorf("Prepare() input dir for stdin = %q, want empty", c.InputDir)
	}

	for _, name := range []string{"stdin.json", "stdin.json_parsed"} {
		data, err := os.ReadFile(filepath.Join(c.WorkDir, name))
		if err != nil {
			t.Errorf("debug artifact %s missing: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("debug artifact %s is empty", name)
		}
	}
}

func TestContent_String(t *testing.T) {
	var nilContent *Content
	if got := nilContent.String(); got != "<nil Content>" {
		t.Errorf("nil String() = %q", got)
	}

	c := &Content{SrcName: "a.json", Doc: &pandoc.Document{Meta: pandoc.Meta{Title: "T"}}}
	out := c.String()
	for _, want := range []string{`source: "a.json"`, `title: "T"`} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q in:\n%s", want, out)
		}
	}
}
