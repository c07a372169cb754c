// Package docx provides editable access to DOCX (Office Open XML) documents.
//
// A Document is opened from a byte buffer, exposes its body tables as a grid
// of rows and cells, lets callers rewrite cell text, paragraph alignment and
// embed pictures, and serializes back to a byte buffer. Parts that were not
// modified are copied verbatim on save, and XML the package does not model
// is preserved as-is.
package docx

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/beevik/etree"
)

// XML namespaces used in DOCX files
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic     = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

var (
	// ErrNotDOCX is returned when the input is not a ZIP-based OOXML package.
	ErrNotDOCX = errors.New("docx: not a DOCX package")
	// ErrMissingPart is returned when a required package part is absent.
	ErrMissingPart = errors.New("docx: missing required part")
	// ErrUnsupportedImage is returned when picture bytes cannot be embedded.
	ErrUnsupportedImage = errors.New("docx: unsupported image")
)

// Document is an editable DOCX document. It is not safe for concurrent use.
type Document struct {
	pkg      *pkg
	mainPart string
	main     *etree.Document
	rels     *etree.Document
	types    *etree.Document
	w        string // prefix bound to the wordprocessingml namespace

	tables []*Table
	cells  map[*etree.Element]*Cell
	images map[string]string // sha1 of image bytes -> relationship ID
	dirty  bool
}

// OpenFile reads and opens a DOCX file from disk.
func OpenFile(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	return Open(data)
}

// Open parses a DOCX document from its bytes.
func Open(data []byte) (*Document, error) {
	p, err := openPackage(data)
	if err != nil {
		return nil, err
	}

	d := &Document{
		pkg:    p,
		cells:  make(map[*etree.Element]*Cell),
		images: make(map[string]string),
	}

	// Validate required files exist
	if !p.has(contentTypesPart) {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, contentTypesPart)
	}
	d.mainPart = p.mainPartName()
	if !p.has(d.mainPart) {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, d.mainPart)
	}

	if d.main, err = p.parseXML(d.mainPart); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", d.mainPart, err)
	}
	if d.main.Root() == nil || d.main.Root().Tag != "document" {
		return nil, fmt.Errorf("%w: %s has no document element", ErrNotDOCX, d.mainPart)
	}
	if d.types, err = p.parseXML(contentTypesPart); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", contentTypesPart, err)
	}

	// Relationships of the main part are optional until a picture is added
	if relsName := relsPartFor(d.mainPart); p.has(relsName) {
		if d.rels, err = p.parseXML(relsName); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", relsName, err)
		}
	}

	d.w = prefixFor(d.main.Root(), nsW, "w")
	return d, nil
}

// prefixFor returns the prefix the element declares for namespace ns.
// An empty string means ns is the default namespace.
func prefixFor(root *etree.Element, ns, fallback string) string {
	for _, a := range root.Attr {
		if a.Value != ns {
			continue
		}
		if a.Space == "xmlns" {
			return a.Key
		}
		if a.Space == "" && a.Key == "xmlns" {
			return ""
		}
	}
	return fallback
}

// name returns the qualified tag for a wordprocessingml element.
func (d *Document) name(local string) string {
	if d.w == "" {
		return local
	}
	return d.w + ":" + local
}

// is reports whether el is the wordprocessingml element with the given local name.
func (d *Document) is(el *etree.Element, local string) bool {
	return el != nil && el.Tag == local && el.Space == d.w
}

// child returns the first child of el with the given wordprocessingml name.
func (d *Document) child(el *etree.Element, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if d.is(c, local) {
			return c
		}
	}
	return nil
}

// children returns all children of el with the given wordprocessingml name.
func (d *Document) children(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if d.is(c, local) {
			out = append(out, c)
		}
	}
	return out
}

// attr returns a wordprocessingml attribute value.
func (d *Document) attr(el *etree.Element, local string) string {
	return el.SelectAttrValue(d.name(local), "")
}

func (d *Document) body() *etree.Element {
	return d.child(d.main.Root(), "body")
}

// Tables returns the body-level tables in document order.
func (d *Document) Tables() []*Table {
	if d.tables != nil {
		return d.tables
	}
	body := d.body()
	if body == nil {
		return nil
	}
	d.tables = make([]*Table, 0)
	for _, el := range d.children(body, "tbl") {
		d.tables = append(d.tables, newTable(d, el, len(d.tables)))
	}
	return d.tables
}

// Text returns the plain text of the document body. Paragraphs become lines
// and table rows are rendered with their cells separated by " | ".
func (d *Document) Text() string {
	body := d.body()
	if body == nil {
		return ""
	}

	tables := make(map[*etree.Element]*Table)
	for _, t := range d.Tables() {
		tables[t.el] = t
	}

	var lines []string
	for _, el := range body.ChildElements() {
		switch {
		case d.is(el, "p"):
			lines = append(lines, (&Paragraph{doc: d, el: el}).Text())
		case d.is(el, "tbl"):
			for _, row := range tables[el].Rows() {
				var parts []string
				var prev *Cell
				for _, cell := range row.Cells() {
					if cell == prev {
						continue
					}
					prev = cell
					if text := strings.TrimSpace(cell.Text()); text != "" {
						parts = append(parts, strings.ReplaceAll(text, "\n", " "))
					}
				}
				if len(parts) > 0 {
					lines = append(lines, strings.Join(parts, " | "))
				}
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Modified reports whether the document has been changed since it was opened.
func (d *Document) Modified() bool {
	return d.dirty
}

func (d *Document) touch() {
	d.dirty = true
}

// cellFor returns the stable Cell wrapper for a w:tc element.
func (d *Document) cellFor(el *etree.Element) *Cell {
	if c, ok := d.cells[el]; ok {
		return c
	}
	c := &Cell{doc: d, el: el}
	d.cells[el] = c
	return c
}
