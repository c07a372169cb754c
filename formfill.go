// Package formfill fills the blank cells of a DOCX form from a free-text
// personal profile.
//
// Basic usage:
//
//	client := completion.New(completion.Config{APIKey: key})
//	out, err := formfill.New(client).Fill(ctx, template, profileText, photo)
//	if err != nil {
//	    // the template or photo could not be used
//	}
//
// Fill marks every empty table cell with a "{N}" placeholder, asks the
// completion model once for the values and writes them back. Cells whose
// label mentions a photo (照片, 相片, 证件照) receive the photo instead. A
// failed completion is not an error: the placeholders simply stay in the
// returned document.
package formfill

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/formfill/completion"
	"github.com/tsawler/formfill/docx"
	"github.com/tsawler/formfill/locate"
	"github.com/tsawler/formfill/profile"
)

var (
	// ErrInvalidTemplate wraps errors opening or saving the template.
	ErrInvalidTemplate = errors.New("formfill: invalid template")
	// ErrInvalidPhoto wraps errors embedding the photo.
	ErrInvalidPhoto = errors.New("formfill: invalid photo")
)

// Completer returns the values for the placeholders of a form.
// *completion.Client implements it.
type Completer interface {
	Complete(ctx context.Context, profile, formContext string) completion.Result
}

// Filler fills form templates. It holds no per-form state and is safe for
// concurrent use when its Completer is.
type Filler struct {
	completer Completer
	options   Options
}

// New returns a Filler asking completer for values.
func New(completer Completer, opts ...Option) *Filler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Filler{completer: completer, options: o}
}

// Fill returns template with its blanks filled from profile and photo
// embedded in its photo slots. photo may be nil.
func (f *Filler) Fill(ctx context.Context, template []byte, profile string, photo []byte) ([]byte, error) {
	log := f.options.logger

	doc, err := docx.Open(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	plan := locate.Scan(doc, f.options.scanOptions()...)
	log.Info("template scanned",
		zap.Int("tables", len(doc.Tables())),
		zap.Int("photo_slots", len(plan.Photos)),
		zap.Int("blanks", len(plan.Slots)),
	)

	if err := plan.ApplyPhotos(photo, f.options.photoWidth); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPhoto, err)
	}
	plan.ApplyMarkers()

	if plan.Empty() {
		log.Info("no blanks found, skipping completion")
		return save(doc)
	}
	if f.completer == nil {
		log.Warn("no completer configured, leaving placeholders")
		return save(doc)
	}

	log.Debug("form context", zap.Strings("rows", plan.Context))
	res := f.completer.Complete(ctx, profile, plan.ContextText())
	filled := FillBack(res.Values, plan.Placeholders())
	log.Info("form filled",
		zap.Stringer("completion", res.Status),
		zap.Int("filled", filled),
		zap.Int("blanks", len(plan.Slots)),
	)

	return save(doc)
}

// Inspect scans template without changing it and reports its photo slots,
// blanks and context lines.
func (f *Filler) Inspect(template []byte) (*locate.Plan, error) {
	doc, err := docx.Open(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return locate.Scan(doc, f.options.scanOptions()...), nil
}

// FillFile fills the template at templatePath from the profile at
// profilePath and writes the result to outPath. photoPath may be empty.
func (f *Filler) FillFile(ctx context.Context, templatePath, profilePath, photoPath, outPath string) error {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	text, err := profile.LoadFile(profilePath, profile.WithOCRLanguage(f.options.ocrLanguage))
	if err != nil {
		return err
	}
	var photo []byte
	if photoPath != "" {
		if photo, err = os.ReadFile(photoPath); err != nil {
			return fmt.Errorf("reading photo: %w", err)
		}
	}

	out, err := f.Fill(ctx, template, text, photo)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// FillBack writes values into the placeholder cells and left-aligns them.
// Keys may be bare ("1") or bracketed ("{1}"); keys without a placeholder
// are ignored. Keys are applied in sorted order, so "{1}" wins over "1".
// It returns the number of cells written.
func FillBack(values map[string]string, placeholders map[string]*docx.Cell) int {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	written := make(map[*docx.Cell]bool)
	for _, k := range keys {
		cell, ok := placeholders[locate.NormalizeKey(k)]
		if !ok {
			continue
		}
		cell.SetText(values[k])
		for _, p := range cell.Paragraphs() {
			p.SetAlignment(docx.AlignLeft)
		}
		written[cell] = true
	}
	return len(written)
}

func save(doc *docx.Document) ([]byte, error) {
	out, err := doc.Save()
	if err != nil {
		return nil, fmt.Errorf("%w: saving: %w", ErrInvalidTemplate, err)
	}
	return out, nil
}
