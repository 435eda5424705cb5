package hwpx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"pandoc2hwpx/utils/images"
)

// imageAsset is an image referenced by the document. Resolved is empty when
// the file could not be found, such asset is still listed in the manifest.
type imageAsset struct {
	ID       string
	Source   string
	Resolved string
	Ext      string
	Size     *images.Size
}

func (a *imageAsset) Href() string {
	return binDataDir + "/" + a.ID + "." + a.Ext
}

func (a *imageAsset) MediaType() string {
	return mediaType(a.Ext)
}

func imageExt(target string) string {
	lower := strings.ToLower(target)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "jpg"
	case strings.HasSuffix(lower, ".gif"):
		return "gif"
	case strings.HasSuffix(lower, ".bmp"):
		return "bmp"
	default:
		return "png"
	}
}

func mediaType(ext string) string {
	switch ext {
	case "jpg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

// imageRegistry keeps one asset per distinct image target.
type imageRegistry struct {
	inputDir string
	log      *zap.Logger

	assets   []*imageAsset
	byTarget map[string]*imageAsset
}

func newImageRegistry(inputDir string, log *zap.Logger) *imageRegistry {
	return &imageRegistry{
		inputDir: inputDir,
		log:      log,
		byTarget: make(map[string]*imageAsset),
	}
}

func (r *imageRegistry) Assets() []*imageAsset {
	return r.assets
}

func (r *imageRegistry) register(target string) *imageAsset {
	if a, ok := r.byTarget[target]; ok {
		return a
	}

	a := &imageAsset{
		ID:     "image" + strconv.Itoa(len(r.assets)+1),
		Source: target,
		Ext:    imageExt(target),
	}
	r.assets = append(r.assets, a)
	r.byTarget[target] = a

	a.Resolved = r.resolve(target)
	if a.Resolved == "" {
		r.log.Warn("Image not found, picture will have no data", zap.String("image", target))
		return a
	}

	if size, err := images.ReadSize(a.Resolved); err == nil {
		a.Size = &size
	} else if !errors.Is(err, images.ErrUnsupported) {
		r.log.Warn("Unable to read image dimensions", zap.String("image", target), zap.Error(err))
	}

	if ext, _, err := images.Sniff(a.Resolved); err == nil && ext != "" && normalizeExt(ext) != a.Ext {
		r.log.Warn("Image content does not match its extension",
			zap.String("image", target), zap.String("extension", a.Ext), zap.String("detected", ext))
	}
	return a
}

func normalizeExt(ext string) string {
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// resolve looks for the image as absolute path, relative to input
// directory and relative to current directory, in that order.
func (r *imageRegistry) resolve(target string) string {
	if target == "" || strings.Contains(target, "://") {
		return ""
	}
	candidates := make([]string, 0, 3)
	if filepath.IsAbs(target) {
		candidates = append(candidates, target)
	} else {
		if r.inputDir != "" {
			candidates = append(candidates, filepath.Join(r.inputDir, target))
		}
		candidates = append(candidates, target)
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// newPicture builds hp:pic for an asset displayed at w x h.
func newPicture(a *imageAsset, id, instID, w, h int) *etree.Element {
	ws, hs := strconv.Itoa(w), strconv.Itoa(h)

	pic := etree.NewElement("hp:pic")
	setAttrs(pic,
		"id", strconv.Itoa(id),
		"zOrder", "0",
		"numberingType", "NONE",
		"textWrap", "TOP_AND_BOTTOM",
		"textFlow", "BOTH_SIDES",
		"lock", "0",
		"dropcapstyle", "None",
		"href", "",
		"groupLevel", "0",
		"instid", strconv.Itoa(instID),
		"reverse", "0")

	setAttrs(pic.CreateElement("hp:offset"), "x", "0", "y", "0")
	setAttrs(pic.CreateElement("hp:orgSz"), "width", ws, "height", hs)
	setAttrs(pic.CreateElement("hp:curSz"), "width", ws, "height", hs)
	setAttrs(pic.CreateElement("hp:flip"), "horizontal", "0", "vertical", "0")
	setAttrs(pic.CreateElement("hp:rotationInfo"),
		"angle", "0", "centerX", "0", "centerY", "0", "rotateimage", "1")

	ri := pic.CreateElement("hp:renderingInfo")
	for _, m := range []string{"hc:transMatrix", "hc:scaMatrix", "hc:rotMatrix"} {
		setAttrs(ri.CreateElement(m), "e1", "1", "e2", "0", "e3", "0", "e4", "0", "e5", "1", "e6", "0")
	}

	setAttrs(pic.CreateElement("hc:img"),
		"binaryItemIDRef", a.ID, "bright", "0", "contrast", "0", "effect", "REAL_PIC", "alpha", "0")

	rect := pic.CreateElement("hp:imgRect")
	for i, pt := range [][2]string{{"0", "0"}, {ws, "0"}, {ws, hs}, {"0", hs}} {
		setAttrs(rect.CreateElement(fmt.Sprintf("hc:pt%d", i)), "x", pt[0], "y", pt[1])
	}
	setAttrs(pic.CreateElement("hp:imgClip"), "left", "0", "right", "0", "top", "0", "bottom", "0")
	setAttrs(pic.CreateElement("hp:inMargin"), "left", "0", "right", "0", "top", "0", "bottom", "0")
	setAttrs(pic.CreateElement("hp:imgDim"), "dimwidth", "0", "dimheight", "0")
	pic.CreateElement("hp:effects")

	setAttrs(pic.CreateElement("hp:sz"),
		"width", ws, "widthRelTo", "ABSOLUTE", "height", hs, "heightRelTo", "ABSOLUTE", "protect", "0")
	setAttrs(pic.CreateElement("hp:pos"),
		"treatAsChar", "1",
		"affectLSpacing", "0",
		"flowWithText", "1",
		"allowOverlap", "1",
		"holdAnchorAndSO", "0",
		"vertRelTo", "PARA",
		"horzRelTo", "COLUMN",
		"vertAlign", "TOP",
		"horzAlign", "LEFT",
		"vertOffset", "0",
		"horzOffset", "0")
	setAttrs(pic.CreateElement("hp:outMargin"), "left", "0", "right", "0", "top", "0", "bottom", "0")
	pic.CreateElement("hp:shapeComment")
	return pic
}

// setAttrs adds attribute pairs in order.
func setAttrs(e *etree.Element, kv ...string) *etree.Element {
	for i := 0; i+1 < len(kv); i += 2 {
		e.CreateAttr(kv[i], kv[i+1])
	}
	return e
}
