package hwpx

import (
	"strconv"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"pandoc2hwpx/archive"
	"pandoc2hwpx/pandoc"
)

func referenceConversion(t *testing.T, edit func(root *etree.Element)) (*conversion, *templateInfo) {
	t.Helper()
	tmpl, err := materialize(archive.Zip{}, referencePackage(t, edit), t.TempDir())
	if err != nil {
		t.Fatalf("materialize() error = %v", err)
	}
	return newConversion(testConfig(t), tmpl, "", fixedNow, zaptest.NewLogger(t)), tmpl
}

func TestNativeList_Reference(t *testing.T) {
	c, tmpl := referenceConversion(t, nil)
	if tmpl.maxNumbering != 1 || tmpl.maxParaPr != 7 || !tmpl.normalParaPr {
		t.Fatalf("maxNumbering = %d, maxParaPr = %d, normalParaPr = %v", tmpl.maxNumbering, tmpl.maxParaPr, tmpl.normalParaPr)
	}

	out := c.Compose(&pandoc.Document{Blocks: []pandoc.Block{
		{Kind: pandoc.BlockOrderedList, ListStart: 3, Items: [][]pandoc.Block{
			{plain(str("a")), {Kind: pandoc.BlockBulletList, Items: [][]pandoc.Block{{plain(str("b"))}}}},
			{para(str("c"))},
		}},
	}})

	want := []struct {
		text   string
		paraPr int
	}{
		{"a", 8},
		{"b", 9},
		{"c", 8},
	}
	if len(out) != len(want) {
		t.Fatalf("got %d paragraphs, want %d", len(out), len(want))
	}
	for i, w := range want {
		if out[i].text != w.text || out[i].paraPr != w.paraPr || out[i].style != 0 {
			t.Errorf("paragraph %d = (%q, paraPr %d, style %d), want (%q, paraPr %d)",
				i, out[i].text, out[i].paraPr, out[i].style, w.text, w.paraPr)
		}
	}

	root := c.updateHeader(tmpl.header, tmpl.builtin).Root()
	if got := root.FindElement("//hh:numberings").SelectAttrValue("itemCnt", ""); got != "3" {
		t.Errorf("numberings itemCnt = %s, want 3", got)
	}
	if got := root.FindElement("//hh:paraProperties").SelectAttrValue("itemCnt", ""); got != "10" {
		t.Errorf("paraProperties itemCnt = %s, want 10", got)
	}

	ordered := root.FindElement("//hh:numberings/hh:numbering[@id='2']")
	if ordered == nil || ordered.SelectAttrValue("start", "") != "3" {
		t.Fatalf("ordered numbering = %v", ordered)
	}
	if head := ordered.SelectElement("hh:paraHead"); head.Text() != "^1." || head.SelectAttrValue("level", "") != "1" {
		t.Errorf("ordered head = %q level %s", head.Text(), head.SelectAttrValue("level", ""))
	}
	bullet := root.FindElement("//hh:numberings/hh:numbering[@id='3']")
	if bullet == nil {
		t.Fatal("bullet numbering not added")
	}
	if head := bullet.SelectElement("hh:paraHead"); head.Text() != bulletHead || head.SelectAttrValue("level", "") != "2" {
		t.Errorf("bullet head = %q level %s", head.Text(), head.SelectAttrValue("level", ""))
	}

	nested := root.FindElement("//hh:paraProperties/hh:paraPr[@id='9']")
	if nested == nil {
		t.Fatal("list paraPr 9 not added")
	}
	h := nested.SelectElement("hh:heading")
	if h.SelectAttrValue("type", "") != "NUMBER" || h.SelectAttrValue("idRef", "") != "3" || h.SelectAttrValue("level", "") != "1" {
		t.Errorf("heading = %v", h.Attr)
	}
	if v := nested.FindElement(".//hc:left").SelectAttrValue("value", ""); v != "4000" {
		t.Errorf("left = %s, want 4000", v)
	}
	if v := nested.FindElement(".//hc:intent").SelectAttrValue("value", ""); v != "-2000" {
		t.Errorf("intent = %s, want -2000", v)
	}
	if base := root.FindElement("//hh:paraProperties/hh:paraPr[@id='0']/hh:heading"); base.SelectAttrValue("type", "") != "NONE" {
		t.Error("normal paraPr modified")
	}
}

func TestNativeList_NoNormalParaPr(t *testing.T) {
	c, tmpl := referenceConversion(t, func(root *etree.Element) {
		root.FindElement("//hh:styles/hh:style[@id='0']").CreateAttr("paraPrIDRef", "99")
	})
	if c.lists != nil || tmpl.normalParaPr {
		t.Fatal("native numbering enabled without paraPr to clone")
	}
	out := c.block(&pandoc.Block{Kind: pandoc.BlockBulletList, Items: [][]pandoc.Block{{plain(str("x"))}}}, c.bodyContext())
	if len(out) != 1 || out[0].text != bulletMarker(0)+"x" {
		t.Errorf("fallback list = %+v", out)
	}
}

func TestTitleBlock_ReferenceStyles(t *testing.T) {
	// template reuses id 7 for unrelated small plain style
	c, tmpl := referenceConversion(t, func(root *etree.Element) {
		root.FindElement("//hh:charProperties").AddChild(newCharPr(charPrTitle, 500, false, uniformFontRefs(0)))
	})
	c.cfg.TOC.Enable = true

	out := c.Compose(&pandoc.Document{
		Meta:   pandoc.Meta{Title: "T", Subtitle: "S"},
		Blocks: []pandoc.Block{header(1, str("H"))},
	})
	bold := c.styles.intern(tmpl.normal.CharPr, FormatBold)
	if bold == charPrTitle || bold == charPrSubtitle {
		t.Fatalf("bold normal interned as %d", bold)
	}

	display := map[string]bool{"T": true, "S": true, c.cfg.TOC.Title: true}
	seen := 0
	for _, p := range out {
		if !display[p.text] {
			continue
		}
		seen++
		if p.runs[0].charPr != bold || p.paraPr != tmpl.normal.ParaPr || p.style != tmpl.normal.Style {
			t.Errorf("%q uses charPr %d paraPr %d style %d, want charPr %d", p.text, p.runs[0].charPr, p.paraPr, p.style, bold)
		}
	}
	if seen != 3 {
		t.Errorf("found %d display paragraphs, want 3", seen)
	}

	root := c.updateHeader(tmpl.header, tmpl.builtin).Root()
	if charPrByID(t, root, "7").SelectAttrValue("height", "") != "500" {
		t.Error("template charPr 7 changed")
	}
	if charPrByID(t, root, strconv.Itoa(bold)).SelectElement("hh:bold") == nil {
		t.Error("interned title style is not bold")
	}
}
