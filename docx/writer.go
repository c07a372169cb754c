package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"
)

// Save serializes the document to DOCX bytes.
func (d *Document) Save() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the document as a DOCX package to w. Entries keep their
// original order. Unmodified entries are copied without recompression and
// parts created by the document are appended at the end.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	rewritten := make(map[string]*etree.Document)
	if d.dirty {
		rewritten[d.mainPart] = d.main
		rewritten[contentTypesPart] = d.types
		if d.rels != nil {
			rewritten[relsPartFor(d.mainPart)] = d.rels
		}
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, f := range d.pkg.zr.File {
		doc, ok := rewritten[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return cw.n, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		delete(rewritten, f.Name)
		if err := writeXMLPart(zw, f.Name, f.Modified, doc); err != nil {
			return cw.n, err
		}
	}

	// The main relationships part may have been created by AddPicture
	for name, doc := range rewritten {
		if err := writeXMLPart(zw, name, time.Now(), doc); err != nil {
			return cw.n, err
		}
	}

	for _, a := range d.pkg.added {
		if _, ok := d.pkg.files[a.name]; ok {
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     a.name,
			Method:   zip.Store,
			Modified: time.Now(),
		})
		if err != nil {
			return cw.n, fmt.Errorf("creating %s: %w", a.name, err)
		}
		if _, err := fw.Write(a.data); err != nil {
			return cw.n, fmt.Errorf("writing %s: %w", a.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("closing ZIP archive: %w", err)
	}
	return cw.n, nil
}

func writeXMLPart(zw *zip.Writer, name string, modified time.Time, doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", name, err)
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
