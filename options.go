package formfill

import (
	"go.uber.org/zap"

	"github.com/tsawler/formfill/docx"
	"github.com/tsawler/formfill/locate"
)

// DefaultPhotoWidth is the width of an embedded photo.
const DefaultPhotoWidth = 35 * docx.Centimeter / 10

// Options holds the configuration of a Filler.
type Options struct {
	logger      *zap.Logger
	photoWidth  docx.Length
	keywords    []string // nil means locate.DefaultKeywords
	ocrLanguage string
}

// Option configures a Filler.
type Option func(*Options)

// defaultOptions returns the default fill options.
func defaultOptions() Options {
	return Options{
		logger:     zap.NewNop(),
		photoWidth: DefaultPhotoWidth,
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPhotoWidth sets the width of embedded photos. Non-positive widths are
// ignored.
func WithPhotoWidth(width docx.Length) Option {
	return func(o *Options) {
		if width > 0 {
			o.photoWidth = width
		}
	}
}

// WithKeywords replaces the words that mark a cell as a photo slot.
func WithKeywords(keywords ...string) Option {
	return func(o *Options) {
		o.keywords = append([]string(nil), keywords...)
	}
}

// WithOCRLanguage sets the Tesseract languages FillFile uses for image
// profiles.
func WithOCRLanguage(lang string) Option {
	return func(o *Options) {
		o.ocrLanguage = lang
	}
}

func (o Options) scanOptions() []locate.Option {
	if o.keywords == nil {
		return nil
	}
	return []locate.Option{locate.WithKeywords(o.keywords...)}
}
