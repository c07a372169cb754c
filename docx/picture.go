package docx

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"path"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/beevik/etree"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// imageTypes maps decoder names to the extension and content type used for
// the media part.
var imageTypes = map[string]struct {
	ext         string
	contentType string
}{
	"png":  {"png", "image/png"},
	"jpeg": {"jpeg", "image/jpeg"},
	"gif":  {"gif", "image/gif"},
	"bmp":  {"bmp", "image/bmp"},
	"tiff": {"tiff", "image/tiff"},
}

// inlinePictureXML is the w:drawing element for an inline picture. The
// DrawingML namespaces are declared locally so the fragment is valid
// whatever the document root declares.
const inlinePictureXML = `<%[1]s:drawing>` +
	`<wp:inline xmlns:wp="` + nsWP + `" distT="0" distB="0" distL="0" distR="0">` +
	`<wp:extent cx="%[2]d" cy="%[3]d"/>` +
	`<wp:docPr id="%[4]d" name="Picture %[4]d"/>` +
	`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="` + nsA + `" noChangeAspect="1"/></wp:cNvGraphicFramePr>` +
	`<a:graphic xmlns:a="` + nsA + `"><a:graphicData uri="` + nsPic + `">` +
	`<pic:pic xmlns:pic="` + nsPic + `">` +
	`<pic:nvPicPr><pic:cNvPr id="0" name="%[5]s"/><pic:cNvPicPr/></pic:nvPicPr>` +
	`<pic:blipFill><a:blip xmlns:r="` + nsR + `" r:embed="%[6]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>` +
	`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[2]d" cy="%[3]d"/></a:xfrm>` +
	`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>` +
	`</pic:pic></a:graphicData></a:graphic></wp:inline></%[1]s:drawing>`

// AddPicture appends an inline picture to the run, scaled to width with the
// image's aspect ratio preserved. Identical image bytes share one media part.
func (r *Run) AddPicture(img []byte, width Length) error {
	if width <= 0 {
		return fmt.Errorf("%w: non-positive width %d", ErrUnsupportedImage, width)
	}

	cfg, kind, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty %s image", ErrUnsupportedImage, kind)
	}

	d := r.doc
	rID, partName, err := d.addImagePart(img, kind)
	if err != nil {
		return err
	}

	cx := width.EMU()
	cy := cx * int64(cfg.Height) / int64(cfg.Width)

	prefix := d.w
	if prefix == "" {
		prefix = "w"
	}
	fragment := fmt.Sprintf(inlinePictureXML, prefix, cx, cy, d.nextDrawingID(), path.Base(partName), rID)
	if d.w == "" {
		fragment = strings.Replace(fragment, "<w:drawing>", `<w:drawing xmlns:w="`+nsW+`">`, 1)
	}

	tmp := etree.NewDocument()
	if err := tmp.ReadFromString(fragment); err != nil {
		return fmt.Errorf("building drawing: %w", err)
	}
	r.el.AddChild(tmp.Root())
	d.touch()
	return nil
}

// addImagePart stores the image in the package and returns the relationship
// ID pointing at it from the main part.
func (d *Document) addImagePart(img []byte, kind string) (string, string, error) {
	sum := sha1.Sum(img)
	key := hex.EncodeToString(sum[:])
	if rID, ok := d.images[key]; ok {
		return rID, d.relTarget(rID), nil
	}

	it, ok := imageTypes[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %s images cannot be embedded", ErrUnsupportedImage, kind)
	}

	dir := path.Dir(d.mainPart)
	var partName string
	for n := 1; ; n++ {
		partName = path.Join(dir, "media", "image"+strconv.Itoa(n)+"."+it.ext)
		if !d.pkg.has(partName) {
			break
		}
	}
	d.pkg.add(partName, img)

	d.ensureDefaultContentType(it.ext, it.contentType)
	rID := d.addRelationship(relTypeImage, strings.TrimPrefix(partName, dir+"/"))
	d.images[key] = rID
	return rID, partName, nil
}

// relTarget returns the package part name a main-part relationship targets.
func (d *Document) relTarget(rID string) string {
	if d.rels == nil || d.rels.Root() == nil {
		return ""
	}
	for _, rel := range d.rels.Root().ChildElements() {
		if rel.SelectAttrValue("Id", "") == rID {
			return path.Join(path.Dir(d.mainPart), rel.SelectAttrValue("Target", ""))
		}
	}
	return ""
}

// addRelationship adds a relationship from the main part and returns its ID.
func (d *Document) addRelationship(relType, target string) string {
	if d.rels == nil {
		d.rels = etree.NewDocument()
		d.rels.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := d.rels.CreateElement("Relationships")
		root.CreateAttr("xmlns", nsPkgRels)
		d.ensureDefaultContentType("rels", "application/vnd.openxmlformats-package.relationships+xml")
	}

	root := d.rels.Root()
	next := 1
	for _, rel := range root.ChildElements() {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n >= next {
			next = n + 1
		}
	}

	rID := "rId" + strconv.Itoa(next)
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", rID)
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
	return rID
}

// ensureDefaultContentType registers a content type for a file extension.
func (d *Document) ensureDefaultContentType(ext, contentType string) {
	root := d.types.Root()
	for _, def := range root.ChildElements() {
		if def.Tag == "Default" && strings.EqualFold(def.SelectAttrValue("Extension", ""), ext) {
			return
		}
	}
	def := root.CreateElement("Default")
	def.CreateAttr("Extension", ext)
	def.CreateAttr("ContentType", contentType)
}

// nextDrawingID returns an id one above the largest wp:docPr id in the
// main part.
func (d *Document) nextDrawingID() int {
	highest := 0
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.Tag == "docPr" {
				if n, err := strconv.Atoi(c.SelectAttrValue("id", "")); err == nil && n > highest {
					highest = n
				}
			}
			walk(c)
		}
	}
	walk(d.main.Root())
	return highest + 1
}
