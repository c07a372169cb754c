package docx

import (
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/formfill/internal/docxtest"
)

func TestRun_AddPicture(t *testing.T) {
	doc := openBody(t, docxtest.Table([]string{"照片"}))
	cell := doc.Tables()[0].Rows()[0].Cells()[0]

	cell.SetText("")
	para := cell.Paragraphs()[0]
	para.SetAlignment(AlignCenter)
	if err := para.AddRun().AddPicture(docxtest.PNG(t, 100, 200), Cm(3.5)); err != nil {
		t.Fatalf("AddPicture() error = %v", err)
	}

	parts := docxtest.Parts(t, mustSave(t, doc))

	if _, ok := parts["word/media/image1.png"]; !ok {
		t.Fatal("media part word/media/image1.png not written")
	}
	if !strings.Contains(parts["word/_rels/document.xml.rels"], `Id="rId2" Type="`+relTypeImage+`" Target="media/image1.png"`) {
		t.Errorf("image relationship missing:\n%s", parts["word/_rels/document.xml.rels"])
	}
	if !strings.Contains(parts["[Content_Types].xml"], `<Default Extension="png" ContentType="image/png"/>`) {
		t.Errorf("png content type missing:\n%s", parts["[Content_Types].xml"])
	}

	xml := parts["word/document.xml"]
	for _, want := range []string{
		`<wp:extent cx="1260000" cy="2520000"/>`,
		`<wp:docPr id="1" name="Picture 1"/>`,
		`r:embed="rId2"`,
		`<w:jc w:val="center"/>`,
	} {
		if !strings.Contains(xml, want) {
			t.Errorf("document.xml missing %s", want)
		}
	}

	reopened, err := Open(mustSave(t, doc))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := reopened.Tables()[0].Rows()[0].Cells()[0].Text(); got != "" {
		t.Errorf("picture cell text = %q, want empty", got)
	}
}

func TestRun_AddPictureDeduplicatesMedia(t *testing.T) {
	doc := openBody(t, docxtest.Table([]string{"a", "b"}))
	img := docxtest.PNG(t, 40, 40)

	for _, cell := range doc.Tables()[0].Rows()[0].Cells() {
		if err := cell.Paragraphs()[0].AddRun().AddPicture(img, Cm(2)); err != nil {
			t.Fatalf("AddPicture() error = %v", err)
		}
	}

	parts := docxtest.Parts(t, mustSave(t, doc))
	if _, ok := parts["word/media/image2.png"]; ok {
		t.Error("identical image stored twice")
	}
	if n := strings.Count(parts["word/_rels/document.xml.rels"], relTypeImage); n != 1 {
		t.Errorf("expected 1 image relationship, got %d", n)
	}
	xml := parts["word/document.xml"]
	if !strings.Contains(xml, `<wp:docPr id="1"`) || !strings.Contains(xml, `<wp:docPr id="2"`) {
		t.Error("drawing ids are not unique")
	}
}

func TestRun_AddPictureCreatesRelationshipsPart(t *testing.T) {
	data := docxtest.Package(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml": `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			docxtest.Table([]string{"x"}) + `</w:body></w:document>`,
	})
	doc, err := Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := doc.Tables()[0].Rows()[0].Cells()[0].Paragraphs()[0].AddRun().AddPicture(docxtest.PNG(t, 10, 5), Cm(1)); err != nil {
		t.Fatalf("AddPicture() error = %v", err)
	}

	parts := docxtest.Parts(t, mustSave(t, doc))
	if !strings.Contains(parts["word/_rels/document.xml.rels"], `Id="rId1"`) {
		t.Errorf("relationships part not created:\n%s", parts["word/_rels/document.xml.rels"])
	}
	if !strings.Contains(parts["[Content_Types].xml"], `Extension="rels"`) {
		t.Error("rels content type not registered")
	}
	if !strings.Contains(parts["word/document.xml"], `cx="360000" cy="180000"`) {
		t.Error("extent does not keep the aspect ratio")
	}
}

func TestRun_AddPictureRejectsInvalidInput(t *testing.T) {
	doc := openBody(t, docxtest.Table([]string{"x"}))
	run := doc.Tables()[0].Rows()[0].Cells()[0].Paragraphs()[0].AddRun()

	if err := run.AddPicture([]byte("not an image"), Cm(3.5)); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("AddPicture(garbage) error = %v, want ErrUnsupportedImage", err)
	}
	if err := run.AddPicture(docxtest.PNG(t, 4, 4), 0); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("AddPicture(width 0) error = %v, want ErrUnsupportedImage", err)
	}
}
