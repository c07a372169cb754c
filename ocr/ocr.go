//go:build ocr

package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates an OCR client for lang, or DefaultLanguage when lang is empty.
// The client should be closed when no longer needed to release resources.
func New(lang string) (*Client, error) {
	c := &Client{client: gosseract.NewClient()}
	if lang == "" {
		lang = DefaultLanguage
	}
	if err := c.SetLanguage(lang); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set language %q: %w", lang, err)
	}
	return c, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// RecognizeImage performs OCR on image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition as a "+" separated
// list (e.g., "chi_sim+eng").
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(strings.Split(lang, "+")...)
}
