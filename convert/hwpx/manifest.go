package hwpx

import (
	"github.com/beevik/etree"

	"pandoc2hwpx/pandoc"
)

const modifiedDateLayout = "2006-01-02T15:04:05Z"

// updateManifest sets document metadata and lists every image asset.
func (c *conversion) updateManifest(hpf *etree.Document, meta pandoc.Meta) *etree.Document {
	doc := hpf.Copy()
	root := doc.Root()

	metadata := root.FindElement("//opf:metadata")
	if metadata == nil {
		metadata = root.CreateElement("opf:metadata")
	}
	if meta.Title != "" {
		title := metadata.SelectElement("opf:title")
		if title == nil {
			title = metadata.CreateElement("opf:title")
		}
		title.SetText(meta.Title)
	}
	if meta.Author != "" {
		setMeta(metadata, "creator", meta.Author)
		setMeta(metadata, "lastsaveby", meta.Author)
	}
	setMeta(metadata, "ModifiedDate", c.now().UTC().Format(modifiedDateLayout))
	if meta.Date != "" {
		setMeta(metadata, "date", meta.Date)
	}

	manifest := root.FindElement("//opf:manifest")
	if manifest == nil {
		manifest = root.CreateElement("opf:manifest")
	}
	for _, a := range c.images.Assets() {
		setAttrs(manifest.CreateElement("opf:item"),
			"id", a.ID,
			"href", a.Href(),
			"media-type", a.MediaType(),
			"isEmbeded", "1")
	}
	return doc
}

func setMeta(metadata *etree.Element, name, value string) {
	m := metadata.FindElement("opf:meta[@name='" + name + "']")
	if m == nil {
		m = setAttrs(metadata.CreateElement("opf:meta"), "name", name, "content", "text")
	}
	m.SetText(value)
}
