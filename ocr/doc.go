// Package ocr extracts text from scanned résumés and profile images.
//
// This package wraps the Tesseract OCR engine via gosseract and is only
// compiled in with the "ocr" build tag:
//
//	go build -tags ocr ./cmd/formfill
//
// It requires Tesseract and its chi_sim language data. On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-chi-sim
//
// Without the tag every operation returns ErrOCRNotEnabled.
package ocr

import (
	"errors"
	"fmt"
)

// DefaultLanguage is used when no language is given. Profiles are mostly
// Chinese with Latin names, emails and numbers mixed in.
const DefaultLanguage = "chi_sim+eng"

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognize runs OCR over a single image with a short-lived client. lang
// is a "+" separated list of Tesseract languages; empty means
// DefaultLanguage.
func Recognize(imageData []byte, lang string) (string, error) {
	c, err := New(lang)
	if err != nil {
		return "", err
	}
	defer c.Close()

	text, err := c.RecognizeImage(imageData)
	if err != nil {
		return "", fmt.Errorf("recognizing image: %w", err)
	}
	return text, nil
}
