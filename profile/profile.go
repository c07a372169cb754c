// Package profile turns uploaded personal profiles into plain text for the
// completion prompt. Profiles may be plain text in UTF-8, UTF-16 or GB18030,
// HTML pages, DOCX résumés or scanned images.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tsawler/formfill/docx"
	"github.com/tsawler/formfill/format"
	"github.com/tsawler/formfill/ocr"
)

// ErrEmpty is returned when a profile holds no text.
var ErrEmpty = errors.New("profile is empty")

// recognize reads text from images.
var recognize = ocr.Recognize

type options struct {
	ocrLanguage string
}

// Option configures Load.
type Option func(*options)

// WithOCRLanguage sets the Tesseract languages ("chi_sim+eng") used for
// image profiles. Empty keeps ocr.DefaultLanguage.
func WithOCRLanguage(lang string) Option {
	return func(o *options) {
		o.ocrLanguage = lang
	}
}

// LoadFile reads a profile from disk. The format is taken from the file
// extension, falling back to the content.
func LoadFile(path string, opts ...Option) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading profile: %w", err)
	}
	return Load(data, filepath.Base(path), opts...)
}

// Load extracts the text of a profile. name is only used for its extension
// and may be empty.
func Load(data []byte, name string, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	f := format.Detect(name)
	if f == format.Unknown {
		f = format.DetectFromBytes(data)
	}

	var (
		text string
		err  error
	)
	switch {
	case f == format.DOCX:
		text, err = docxText(data)
	case f == format.HTML:
		text, err = htmlText(strings.NewReader(Decode(data)))
	case f.IsImage():
		text, err = recognize(data, o.ocrLanguage)
	default:
		text = Decode(data)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s profile: %w", f, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Decode converts raw profile bytes to a string. A UTF-8 or UTF-16 byte
// order mark selects that encoding; valid UTF-8 is used as is; anything
// else is read as GB18030.
func Decode(data []byte) string {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	}

	dec := unicode.BOMOverride(simplifiedchinese.GB18030.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(out)
}

func docxText(data []byte) (string, error) {
	doc, err := docx.Open(data)
	if err != nil {
		return "", err
	}
	return doc.Text(), nil
}
