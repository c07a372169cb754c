// Package locate finds the blanks and photo slots of a form template.
//
// Scan classifies the cells of a document without touching it. The
// resulting Plan then drives two mutation passes: ApplyPhotos embeds the
// photo into every photo slot and ApplyMarkers writes the "{N}" markers into
// the blank cells. Photo slots are recognized on the original text of the
// whole document before anything is changed, so a cell emptied by photo
// insertion is never taken for a blank.
package locate

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/formfill/docx"
)

// PhotoToken stands in for a photo cell in row context lines.
const PhotoToken = "[照片]"

// DefaultKeywords mark a cell as a photo slot when its text contains one
// of them.
var DefaultKeywords = []string{"照片", "相片", "证件照"}

// Coord addresses a grid cell.
type Coord struct {
	Table int `json:"table"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("table %d row %d col %d", c.Table, c.Row, c.Col)
}

// Slot is a blank cell and the marker assigned to it. Coord is the first
// grid position at which the cell was visited.
type Slot struct {
	Marker string     `json:"marker"`
	Coord  Coord      `json:"coord"`
	Cell   *docx.Cell `json:"-"`
}

// Plan is the result of scanning a template.
type Plan struct {
	Photos  []Coord  `json:"photos"`
	Slots   []Slot   `json:"slots"`
	Context []string `json:"context"`

	photoCells []photoCell
}

type photoCell struct {
	coord Coord
	cell  *docx.Cell
}

// Option configures Scan.
type Option func(*scanner)

// WithKeywords replaces the photo slot keywords.
func WithKeywords(keywords ...string) Option {
	return func(s *scanner) {
		s.keywords = keywords
	}
}

type scanner struct {
	keywords []string
	lower    cases.Caser
}

func (s *scanner) isPhoto(text string) bool {
	text = s.lower.String(text)
	for _, k := range s.keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Scan classifies the cells of doc. It does not modify the document, so
// scanning the same document twice yields the same plan.
func Scan(doc *docx.Document, opts ...Option) *Plan {
	s := &scanner{keywords: DefaultKeywords, lower: cases.Lower(language.Und)}
	for _, opt := range opts {
		opt(s)
	}
	folded := make([]string, 0, len(s.keywords))
	for _, k := range s.keywords {
		if k = s.lower.String(strings.TrimSpace(k)); k != "" {
			folded = append(folded, k)
		}
	}
	s.keywords = folded

	plan := &Plan{}
	tables := doc.Tables()

	photo := make(map[Coord]bool)
	seen := make(map[*docx.Cell]bool)
	for ti, table := range tables {
		for ri, row := range table.Rows() {
			for ci, cell := range row.Cells() {
				if !s.isPhoto(cell.Text()) {
					continue
				}
				c := Coord{Table: ti, Row: ri, Col: ci}
				plan.Photos = append(plan.Photos, c)
				photo[c] = true
				if !seen[cell] {
					seen[cell] = true
					plan.photoCells = append(plan.photoCells, photoCell{coord: c, cell: cell})
				}
			}
		}
	}

	markers := make(map[*docx.Cell]string)
	for ti, table := range tables {
		for ri, row := range table.Rows() {
			cells := row.Cells()
			parts := make([]string, 0, len(cells))
			assigned := false

			for ci, cell := range cells {
				c := Coord{Table: ti, Row: ri, Col: ci}
				if photo[c] {
					parts = append(parts, PhotoToken)
					continue
				}
				if m, ok := markers[cell]; ok {
					parts = append(parts, m)
					continue
				}
				if text := strings.TrimSpace(cell.Text()); text != "" {
					parts = append(parts, strings.ReplaceAll(text, "\n", " "))
					continue
				}

				m := Marker(len(plan.Slots) + 1)
				markers[cell] = m
				plan.Slots = append(plan.Slots, Slot{Marker: m, Coord: c, Cell: cell})
				parts = append(parts, m)
				assigned = true
			}

			if assigned {
				plan.Context = append(plan.Context, strings.Join(parts, " | "))
			}
		}
	}

	return plan
}

// ApplyPhotos embeds photo, width wide and centered, into every photo slot.
// The slot's label text is removed. Nothing happens when photo is empty or
// the template has no photo slot.
func (p *Plan) ApplyPhotos(photo []byte, width docx.Length) error {
	if len(photo) == 0 {
		return nil
	}
	for _, pc := range p.photoCells {
		pc.cell.SetText("")
		para := pc.cell.Paragraphs()[0]
		para.SetAlignment(docx.AlignCenter)
		if err := para.AddRun().AddPicture(photo, width); err != nil {
			return fmt.Errorf("inserting photo at %s: %w", pc.coord, err)
		}
	}
	return nil
}

// ApplyMarkers writes each slot's marker into its cell.
func (p *Plan) ApplyMarkers() {
	for _, s := range p.Slots {
		s.Cell.SetText(s.Marker)
	}
}

// Placeholders maps each marker to its cell.
func (p *Plan) Placeholders() map[string]*docx.Cell {
	m := make(map[string]*docx.Cell, len(p.Slots))
	for _, s := range p.Slots {
		m[s.Marker] = s.Cell
	}
	return m
}

// ContextText joins the row context lines.
func (p *Plan) ContextText() string {
	return strings.Join(p.Context, "\n")
}

// Empty reports whether the template has no blank cell.
func (p *Plan) Empty() bool {
	return len(p.Slots) == 0
}

// Marker returns the placeholder for the n-th blank.
func Marker(n int) string {
	return "{" + strconv.Itoa(n) + "}"
}

// NormalizeKey turns a key of the model's answer into marker form: "1"
// becomes "{1}" and "{1}" is kept.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "{") {
		return key
	}
	return "{" + key + "}"
}
