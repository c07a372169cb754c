package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

const (
	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"
	defaultMainPart  = "word/document.xml"
)

// pkg is the ZIP container of a DOCX document.
type pkg struct {
	zr    *zip.Reader
	files map[string]*zip.File
	added []addedPart
}

// addedPart is a part created after the package was opened.
type addedPart struct {
	name string
	data []byte
}

// relationshipsXML represents _rels/*.rels files
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"` // External or empty (internal)
}

func openPackage(data []byte) (*pkg, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrNotDOCX, err)
		}
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	p := &pkg{
		zr:    zr,
		files: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}
	return p, nil
}

func (p *pkg) has(name string) bool {
	if _, ok := p.files[name]; ok {
		return true
	}
	for _, a := range p.added {
		if a.name == name {
			return true
		}
	}
	return false
}

// getFileContent reads the content of a file from the ZIP archive.
func (p *pkg) getFileContent(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (p *pkg) parseXML(name string) (*etree.Document, error) {
	data, err := p.getFileContent(name)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	return doc, nil
}

// mainPartName resolves the officeDocument relationship from _rels/.rels.
// Packages without one fall back to word/document.xml.
func (p *pkg) mainPartName() string {
	data, err := p.getFileContent(packageRelsPart)
	if err != nil {
		return defaultMainPart
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return defaultMainPart
	}
	for _, rel := range rels.Relationships {
		if rel.Type == relTypeOfficeDocument && rel.TargetMode != "External" {
			return strings.TrimPrefix(path.Clean("/"+rel.Target), "/")
		}
	}
	return defaultMainPart
}

// relsPartFor returns the relationships part name for a source part,
// e.g. word/document.xml -> word/_rels/document.xml.rels.
func relsPartFor(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

func (p *pkg) add(name string, data []byte) {
	p.added = append(p.added, addedPart{name: name, data: data})
}
