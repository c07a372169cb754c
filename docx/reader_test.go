package docx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/formfill/internal/docxtest"
)

func TestOpen_NotDOCX(t *testing.T) {
	_, err := Open([]byte("this is not a zip archive"))
	if !errors.Is(err, ErrNotDOCX) {
		t.Fatalf("Open() error = %v, want ErrNotDOCX", err)
	}
}

func TestOpen_MissingDocumentPart(t *testing.T) {
	data := docxtest.Package(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
	})

	_, err := Open(data)
	if !errors.Is(err, ErrMissingPart) {
		t.Fatalf("Open() error = %v, want ErrMissingPart", err)
	}
}

func TestOpen_MissingContentTypes(t *testing.T) {
	data := docxtest.Package(t, map[string]string{
		"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body/></w:document>`,
	})

	_, err := Open(data)
	if !errors.Is(err, ErrMissingPart) {
		t.Fatalf("Open() error = %v, want ErrMissingPart", err)
	}
}

func TestOpen_MainPartFromRelationships(t *testing.T) {
	data := docxtest.Package(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"_rels/.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="/word/main.xml"/>
</Relationships>`,
		"word/main.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			docxtest.Table([]string{"only"}) + `</w:body></w:document>`,
	})

	doc, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := len(doc.Tables()); got != 1 {
		t.Fatalf("expected 1 table, got %d", got)
	}
}

func TestOpen_MalformedXML(t *testing.T) {
	data := docxtest.Package(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   `<w:document xmlns:w="x"><<w:body></w:document>`,
	})

	if _, err := Open(data); err == nil {
		t.Fatal("Open() expected error for truncated document.xml")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.docx")
	if err := os.WriteFile(path, docxtest.Build(t, docxtest.Table([]string{"a", "b"})), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if got := len(doc.Tables()[0].Rows()[0].Cells()); got != 2 {
		t.Errorf("expected 2 cells, got %d", got)
	}

	if _, err := OpenFile(filepath.Join(t.TempDir(), "missing.docx")); err == nil {
		t.Error("OpenFile() expected error for missing file")
	}
}

func TestSave_UnmodifiedIsIdentical(t *testing.T) {
	input := docxtest.Build(t, docxtest.Table([]string{"Name", ""}))

	doc, err := Open(input)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.Modified() {
		t.Error("freshly opened document reports Modified()")
	}

	output, err := doc.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if diff := cmp.Diff(docxtest.Parts(t, input), docxtest.Parts(t, output)); diff != "" {
		t.Errorf("parts changed without modification (-want +got):\n%s", diff)
	}
}

func TestSave_RoundTripPreservesUnknownMarkup(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Form</w:t></w:r></w:p>` +
		`<w:tbl><w:tblPr><w:tblStyle w:val="Grid"/></w:tblPr><w:tblGrid><w:gridCol w:w="100"/><w:gridCol w:w="100"/></w:tblGrid>` +
		`<w:tr><w:tc><w:tcPr><w:shd w:fill="EEEEEE"/></w:tcPr><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:tcPr/><w:p/></w:tc></w:tr></w:tbl>`
	doc, err := Open(docxtest.Build(t, body))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	doc.Tables()[0].Rows()[0].Cells()[1].SetText("Alice")
	out, err := doc.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	parts := docxtest.Parts(t, out)
	xml := parts["word/document.xml"]
	for _, want := range []string{
		`<w:pStyle w:val="Title"/>`,
		`<w:tblStyle w:val="Grid"/>`,
		`<w:shd w:fill="EEEEEE"/>`,
		`<w:sectPr/>`,
		`<w:t>Alice</w:t>`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("document.xml missing %s", want)
		}
	}
	if parts["word/styles.xml"] == "" {
		t.Error("styles.xml was dropped")
	}

	reopened, err := Open(out)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := reopened.Tables()[0].Rows()[0].Cells()[1].Text(); got != "Alice" {
		t.Errorf("reopened cell text = %q, want Alice", got)
	}
}

func TestDocument_Text(t *testing.T) {
	body := `<w:p><w:r><w:t>Resume</w:t></w:r></w:p>` +
		docxtest.Table(
			[]string{"Name", "Zhang San"},
			[]string{"City", ""},
		) +
		`<w:p><w:r><w:t>Likes</w:t><w:tab/><w:t>Go</w:t></w:r></w:p>`

	doc, err := Open(docxtest.Build(t, body))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := "Resume\nName | Zhang San\nCity\nLikes\tGo"
	if got := doc.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestRelsPartFor(t *testing.T) {
	tests := []struct {
		part string
		want string
	}{
		{"word/document.xml", "word/_rels/document.xml.rels"},
		{"word/main.xml", "word/_rels/main.xml.rels"},
		{"document.xml", "_rels/document.xml.rels"},
	}
	for _, tt := range tests {
		if got := relsPartFor(tt.part); got != tt.want {
			t.Errorf("relsPartFor(%q) = %q, want %q", tt.part, got, tt.want)
		}
	}
}

func TestCm(t *testing.T) {
	if got := Cm(3.5).EMU(); got != 1260000 {
		t.Errorf("Cm(3.5).EMU() = %d, want 1260000", got)
	}
	if got := Inch.Cm(); got != 2.54 {
		t.Errorf("Inch.Cm() = %v, want 2.54", got)
	}
}
