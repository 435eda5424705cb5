package hwpx

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"pandoc2hwpx/config"
	"pandoc2hwpx/pandoc"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC) }

func testConfig(t *testing.T) config.DocumentConfig {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return cfg.Document
}

// builtinInfo mirrors facts of the built-in skeleton without touching disk.
func builtinInfo() *templateInfo {
	return &templateInfo{builtin: true, maxCharPr: 6, maxBorderFill: 2}
}

func newTestConversion(t *testing.T, inputDir string) *conversion {
	t.Helper()
	return newConversion(testConfig(t), builtinInfo(), inputDir, fixedNow, zaptest.NewLogger(t))
}

func observedConversion(t *testing.T, inputDir string) (*conversion, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return newConversion(testConfig(t), builtinInfo(), inputDir, fixedNow, zap.New(core)), logs
}

func str(s string) pandoc.Inline { return pandoc.Inline{Kind: pandoc.InlineStr, Text: s} }

func space() pandoc.Inline { return pandoc.Inline{Kind: pandoc.InlineSpace} }

func wrap(kind pandoc.InlineKind, children ...pandoc.Inline) pandoc.Inline {
	return pandoc.Inline{Kind: kind, Children: children}
}

func image(target string, kv map[string]string) pandoc.Inline {
	return pandoc.Inline{Kind: pandoc.InlineImage, Target: target, Attr: pandoc.Attr{KV: kv}}
}

func para(inlines ...pandoc.Inline) pandoc.Block {
	return pandoc.Block{Kind: pandoc.BlockPara, Inlines: inlines}
}

func plain(inlines ...pandoc.Inline) pandoc.Block {
	return pandoc.Block{Kind: pandoc.BlockPlain, Inlines: inlines}
}

func header(level int, inlines ...pandoc.Inline) pandoc.Block {
	return pandoc.Block{Kind: pandoc.BlockHeader, Level: level, Inlines: inlines}
}

func makePNG(w, h uint32) []byte {
	buf := new(bytes.Buffer)
	buf.Write([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	_ = binary.Write(buf, binary.BigEndian, uint32(13))
	buf.WriteString("IHDR")
	_ = binary.Write(buf, binary.BigEndian, w)
	_ = binary.Write(buf, binary.BigEndian, h)
	buf.Write([]byte{8, 6, 0, 0, 0})
	buf.Write(make([]byte, 4))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// textRuns returns (charPr, text) of text runs in order.
func textRuns(p *paragraph) [][2]any {
	var out [][2]any
	for _, r := range p.runs {
		if r.kind == runText {
			out = append(out, [2]any{r.charPr, r.text})
		}
	}
	return out
}
