package format

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/tsawler/formfill/internal/docxtest"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{DOCX, "DOCX"},
		{HTML, "HTML"},
		{Text, "Text"},
		{PNG, "PNG"},
		{JPEG, "JPEG"},
		{GIF, "GIF"},
		{BMP, "BMP"},
		{TIFF, "TIFF"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{DOCX, ".docx"},
		{HTML, ".html"},
		{Text, ".txt"},
		{PNG, ".png"},
		{JPEG, ".jpg"},
		{TIFF, ".tiff"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_IsImage(t *testing.T) {
	for _, f := range []Format{PNG, JPEG, GIF, BMP, TIFF} {
		if !f.IsImage() {
			t.Errorf("%v.IsImage() = false", f)
		}
	}
	for _, f := range []Format{DOCX, HTML, Text, Unknown} {
		if f.IsImage() {
			t.Errorf("%v.IsImage() = true", f)
		}
	}
}

func TestFormat_ContentType(t *testing.T) {
	if got := DOCX.ContentType(); got != "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		t.Errorf("DOCX.ContentType() = %q", got)
	}
	if got := Unknown.ContentType(); got != "application/octet-stream" {
		t.Errorf("Unknown.ContentType() = %q", got)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"form.docx", DOCX},
		{"form.DOCX", DOCX},
		{"resume.html", HTML},
		{"resume.HTM", HTML},
		{"resume.txt", Text},
		{"resume.md", Text},
		{"photo.png", PNG},
		{"photo.JPG", JPEG},
		{"photo.jpeg", JPEG},
		{"photo.gif", GIF},
		{"photo.bmp", BMP},
		{"scan.tif", TIFF},
		{"form.pdf", Unknown},
		{"document", Unknown},
		{"", Unknown},
		{"/path/to/简历.docx", DOCX},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "PNG signature",
			data: []byte("\x89PNG\r\n\x1a\n\x00\x00"),
			want: PNG,
		},
		{
			name: "JPEG SOI",
			data: []byte{0xFF, 0xD8, 0xFF, 0xE0},
			want: JPEG,
		},
		{
			name: "GIF89a",
			data: []byte("GIF89a\x01\x00"),
			want: GIF,
		},
		{
			name: "TIFF little endian",
			data: []byte("II*\x00\x08\x00\x00\x00"),
			want: TIFF,
		},
		{
			name: "BMP header",
			data: append([]byte("BM"), make([]byte, 30)...),
			want: BMP,
		},
		{
			name: "BM prefix too short",
			data: []byte("BM"),
			want: Unknown,
		},
		{
			name: "ZIP magic bytes",
			data: []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00},
			want: Unknown, // ZIP needs further inspection
		},
		{
			name: "HTML with DOCTYPE",
			data: []byte("<!DOCTYPE html>\n<html>"),
			want: HTML,
		},
		{
			name: "HTML after BOM and whitespace",
			data: []byte("\xef\xbb\xbf  \n<html><body>"),
			want: HTML,
		},
		{
			name: "empty data",
			data: []byte{},
			want: Unknown,
		},
		{
			name: "text",
			data: []byte("姓名：张三"),
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromBytes(t *testing.T) {
	var other bytes.Buffer
	zw := zip.NewWriter(&other)
	if _, err := zw.Create("mimetype"); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"docx package", docxtest.Build(t, docxtest.Table([]string{"a"})), DOCX},
		{"other zip", other.Bytes(), Unknown},
		{"broken zip", []byte{0x50, 0x4B, 0x03, 0x04, 0x01}, Unknown},
		{"png", docxtest.PNG(t, 2, 2), PNG},
		{"html", []byte("<html><p>x</p></html>"), HTML},
		{"plain text", []byte("Name: Zhang San"), Text},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromBytes(tt.data); got != tt.want {
				t.Errorf("DetectFromBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromReader_NotZIP(t *testing.T) {
	data := []byte("Hello, World! This is plain text.")
	if _, err := DetectFromReader(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Error("DetectFromReader() expected error for non-zip input")
	}
}
