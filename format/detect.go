// Package format provides input format detection for templates, profiles
// and photos.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// HTML indicates an HTML document.
	HTML
	// Text indicates plain text.
	Text
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// BMP indicates a Windows bitmap.
	BMP
	// TIFF indicates a TIFF image.
	TIFF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case HTML:
		return "HTML"
	case Text:
		return "Text"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case BMP:
		return "BMP"
	case TIFF:
		return "TIFF"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case HTML:
		return ".html"
	case Text:
		return ".txt"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case BMP:
		return ".bmp"
	case TIFF:
		return ".tiff"
	default:
		return ""
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case HTML:
		return "text/html; charset=utf-8"
	case Text:
		return "text/plain; charset=utf-8"
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// IsImage reports whether the format is a raster image.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, GIF, BMP, TIFF:
		return true
	}
	return false
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return DOCX
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".txt", ".text", ".md", ".markdown":
		return Text
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".gif":
		return GIF
	case ".bmp":
		return BMP
	case ".tif", ".tiff":
		return TIFF
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format.
// ZIP archives are reported as Unknown; use DetectFromBytes to look inside.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 26:
		return BMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case isZIP(data):
		return Unknown
	case detectHTMLMagic(data):
		return HTML
	}
	return Unknown
}

// DetectFromBytes inspects the content to determine format. ZIP archives
// are opened to tell DOCX apart from other packages. Anything without a
// recognizable signature is reported as Text.
func DetectFromBytes(data []byte) Format {
	if isZIP(data) {
		f, err := DetectFromReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return Unknown
		}
		return f
	}
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	return Text
}

// DetectFromReader inspects a ZIP archive and reports DOCX when it holds a
// WordprocessingML package.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	hasTypes := false
	hasWord := false
	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			hasTypes = true
		case strings.HasPrefix(f.Name, "word/"):
			hasWord = true
		}
	}
	if hasTypes && hasWord {
		return DOCX, nil
	}
	return Unknown, nil
}

func isZIP(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return false
	}
	if len(data) > 512 {
		data = data[:512]
	}

	// Check for common HTML signatures (case-insensitive for DOCTYPE)
	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}

	return false
}
