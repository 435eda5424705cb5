package hwpx

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"

	"pandoc2hwpx/archive"
)

//go:embed skeleton
var skeletonFS embed.FS

// skeletonOrder is entry order of packages made from the built-in skeleton.
var skeletonOrder = []string{
	mimetypeName,
	"version.xml",
	headerPath,
	sectionPath,
	"settings.xml",
	manifestPath,
	"META-INF/container.xml",
	"META-INF/manifest.xml",
}

// Archiver performs the two archive operations packaging depends on.
type Archiver interface {
	Extract(archive, dir string) ([]string, error)
	Compress(dir, archive string, opts archive.CompressOptions) error
}

// templateInfo is materialized package skeleton with parsed parts and facts
// collected from its header.
type templateInfo struct {
	dir     string
	entries []string
	builtin bool

	header   *etree.Document
	section  *etree.Document
	manifest *etree.Document

	maxCharPr     int
	maxBorderFill int
	maxParaPr     int
	maxNumbering  int
	outlineStyles map[int]headingStyle

	// normal is the default paragraph style, normalParaPr reports whether
	// its paragraph properties exist and may be cloned
	normal       headingStyle
	normalParaPr bool
}

// materialize lays out template package in dir: the built-in skeleton when
// templatePath is empty, otherwise the reference package extracted by arch.
func materialize(arch Archiver, templatePath, dir string) (*templateInfo, error) {
	info := &templateInfo{dir: dir}

	if templatePath == "" {
		sub, err := fs.Sub(skeletonFS, "skeleton")
		if err != nil {
			return nil, err
		}
		if err := os.CopyFS(dir, sub); err != nil {
			return nil, fmt.Errorf("unable to materialize built-in template: %w", err)
		}
		info.builtin = true
		info.entries = skeletonOrder
	} else {
		if arch == nil {
			return nil, ErrArchiverUnavailable
		}
		if _, err := os.Stat(templatePath); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTemplateMissing, err)
		}
		entries, err := arch.Extract(templatePath, dir)
		if err != nil {
			return nil, fmt.Errorf("unable to extract template %s: %w", templatePath, err)
		}
		info.entries = entries
	}

	var err error
	if info.header, err = readPart(dir, headerPath); err != nil {
		return nil, err
	}
	if info.section, err = readPart(dir, sectionPath); err != nil {
		return nil, err
	}
	if info.manifest, err = readPart(dir, manifestPath); err != nil {
		return nil, err
	}
	info.scan()
	return info, nil
}

func readPart(dir, name string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no %s", ErrTemplateMissing, name)
		}
		return nil, fmt.Errorf("unable to parse template %s: %w", name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: empty %s", ErrTemplateMissing, name)
	}
	return doc, nil
}

func (t *templateInfo) scan() {
	root := t.header.Root()
	t.maxCharPr = maxID(root.FindElement("//hh:charProperties"), "hh:charPr")
	t.maxBorderFill = max(maxID(root.FindElement("//hh:borderFills"), "hh:borderFill"), 0)
	t.maxParaPr = maxID(root.FindElement("//hh:paraProperties"), "hh:paraPr")
	t.maxNumbering = max(maxID(root.FindElement("//hh:numberings"), "hh:numbering"), 0)
	if !t.builtin {
		t.outlineStyles = outlineStyles(root)
		t.normal = normalStyle(root)
		t.normalParaPr = findByID(root.FindElement("//hh:paraProperties"), "hh:paraPr", t.normal.ParaPr) != nil
	}
}

// normalStyle returns ids of style 0, or of the first style when template
// renumbered its styles.
func normalStyle(root *etree.Element) headingStyle {
	s := root.FindElement("//hh:styles/hh:style[@id='0']")
	if s == nil {
		s = root.FindElement("//hh:styles/hh:style")
	}
	if s == nil {
		return headingStyle{}
	}
	var hs headingStyle
	hs.Style, _ = strconv.Atoi(s.SelectAttrValue("id", "0"))
	hs.ParaPr, _ = strconv.Atoi(s.SelectAttrValue("paraPrIDRef", "0"))
	hs.CharPr, _ = strconv.Atoi(s.SelectAttrValue("charPrIDRef", "0"))
	return hs
}

// outlineStyles maps heading level to the first style whose paragraph
// properties declare matching outline level. Outline levels are zero based.
func outlineStyles(root *etree.Element) map[int]headingStyle {
	levelParaPr := make(map[int]int)
	for _, pp := range root.FindElements("//hh:paraPr") {
		id, err := strconv.Atoi(pp.SelectAttrValue("id", ""))
		if err != nil {
			continue
		}
		for _, h := range pp.FindElements(".//hh:heading[@type='OUTLINE']") {
			level, err := strconv.Atoi(h.SelectAttrValue("level", ""))
			if err != nil {
				continue
			}
			if _, seen := levelParaPr[level]; !seen {
				levelParaPr[level] = id
			}
		}
	}

	byParaPr := make(map[int]headingStyle)
	for _, s := range root.FindElements("//hh:style") {
		sid, err1 := strconv.Atoi(s.SelectAttrValue("id", ""))
		pid, err2 := strconv.Atoi(s.SelectAttrValue("paraPrIDRef", ""))
		cid, err3 := strconv.Atoi(s.SelectAttrValue("charPrIDRef", ""))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if _, seen := byParaPr[pid]; !seen {
			byParaPr[pid] = headingStyle{Style: sid, ParaPr: pid, CharPr: cid}
		}
	}

	styles := make(map[int]headingStyle)
	for level, pid := range levelParaPr {
		if hs, ok := byParaPr[pid]; ok {
			styles[level+1] = hs
		}
	}
	return styles
}
