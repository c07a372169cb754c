package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Alignment is a paragraph justification value (<w:jc w:val="...">).
type Alignment string

const (
	AlignNone    Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// pPr children that must follow w:jc.
var jcSuccessors = []string{
	"textDirection", "textAlignment", "textboxTightWrap", "outlineLvl",
	"divId", "cnfStyle", "rPr", "sectPr", "pPrChange",
}

// Cell is a table cell (<w:tc>).
type Cell struct {
	doc *Document
	el  *etree.Element
}

// Paragraph is a paragraph (<w:p>).
type Paragraph struct {
	doc *Document
	el  *etree.Element
}

// Run is a text run (<w:r>).
type Run struct {
	doc *Document
	el  *etree.Element
}

// Paragraphs returns the paragraphs directly inside the cell.
func (c *Cell) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, p := range c.doc.children(c.el, "p") {
		out = append(out, &Paragraph{doc: c.doc, el: p})
	}
	return out
}

// Text returns the cell text, one line per paragraph.
func (c *Cell) Text() string {
	paras := c.Paragraphs()
	parts := make([]string, len(paras))
	for i, p := range paras {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the cell content with a single paragraph holding s.
// Line breaks and tabs in s become w:br and w:tab. The properties of the
// first paragraph and of its first run are kept so the text picks up the
// template's formatting.
func (c *Cell) SetText(s string) {
	d := c.doc

	var pPr, rPr *etree.Element
	if first := d.child(c.el, "p"); first != nil {
		if props := d.child(first, "pPr"); props != nil {
			pPr = props.Copy()
		}
		if run := d.child(first, "r"); run != nil {
			if props := d.child(run, "rPr"); props != nil {
				rPr = props.Copy()
			}
		}
	}

	for _, child := range c.el.ChildElements() {
		if !d.is(child, "tcPr") {
			c.el.RemoveChild(child)
		}
	}

	p := c.el.CreateElement(d.name("p"))
	if pPr != nil {
		p.AddChild(pPr)
	}
	r := p.CreateElement(d.name("r"))
	if rPr != nil {
		r.AddChild(rPr)
	}
	(&Run{doc: d, el: r}).appendText(s)
	d.touch()
}

// Text returns the paragraph text. Runs inside hyperlinks, insertions,
// smart tags and simple fields are included.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	p.collectText(p.el, &sb)
	return sb.String()
}

func (p *Paragraph) collectText(el *etree.Element, sb *strings.Builder) {
	d := p.doc
	for _, c := range el.ChildElements() {
		switch {
		case d.is(c, "r"):
			sb.WriteString((&Run{doc: d, el: c}).Text())
		case d.is(c, "hyperlink"), d.is(c, "ins"), d.is(c, "smartTag"),
			d.is(c, "fldSimple"), d.is(c, "customXml"):
			p.collectText(c, sb)
		case d.is(c, "sdt"):
			if content := d.child(c, "sdtContent"); content != nil {
				p.collectText(content, sb)
			}
		}
	}
}

// Alignment returns the direct justification of the paragraph.
func (p *Paragraph) Alignment() Alignment {
	props := p.doc.child(p.el, "pPr")
	if props == nil {
		return AlignNone
	}
	jc := p.doc.child(props, "jc")
	if jc == nil {
		return AlignNone
	}
	return Alignment(p.doc.attr(jc, "val"))
}

// SetAlignment sets the paragraph justification, keeping w:pPr children in
// schema order.
func (p *Paragraph) SetAlignment(a Alignment) {
	d := p.doc
	props := d.child(p.el, "pPr")
	if props == nil {
		if a == AlignNone {
			return
		}
		props = etree.NewElement(d.name("pPr"))
		p.el.InsertChildAt(0, props)
	}

	jc := d.child(props, "jc")
	if a == AlignNone {
		if jc != nil {
			props.RemoveChild(jc)
			d.touch()
		}
		return
	}

	if jc == nil {
		jc = etree.NewElement(d.name("jc"))
		if succ := firstOf(d, props, jcSuccessors); succ != nil {
			props.InsertChildAt(succ.Index(), jc)
		} else {
			props.AddChild(jc)
		}
	}
	jc.CreateAttr(d.name("val"), string(a))
	d.touch()
}

// AddRun appends an empty run to the paragraph.
func (p *Paragraph) AddRun() *Run {
	r := p.el.CreateElement(p.doc.name("r"))
	p.doc.touch()
	return &Run{doc: p.doc, el: r}
}

// Text returns the run text with tabs and line breaks expanded.
func (r *Run) Text() string {
	d := r.doc
	var sb strings.Builder
	for _, c := range r.el.ChildElements() {
		switch {
		case d.is(c, "t"):
			sb.WriteString(c.Text())
		case d.is(c, "tab"), d.is(c, "ptab"):
			sb.WriteByte('\t')
		case d.is(c, "br"):
			if t := d.attr(c, "type"); t == "" || t == "textWrapping" {
				sb.WriteByte('\n')
			}
		case d.is(c, "cr"):
			sb.WriteByte('\n')
		case d.is(c, "noBreakHyphen"):
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// appendText writes s into the run as w:t, w:br and w:tab elements.
func (r *Run) appendText(s string) {
	d := r.doc
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		text := buf.String()
		t := r.el.CreateElement(d.name("t"))
		if strings.TrimSpace(text) != text {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(text)
		buf.Reset()
	}

	for _, ch := range s {
		switch ch {
		case '\n':
			flush()
			r.el.CreateElement(d.name("br"))
		case '\t':
			flush()
			r.el.CreateElement(d.name("tab"))
		case '\r':
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
}

// firstOf returns the first child of el whose local name is in names.
func firstOf(d *Document, el *etree.Element, names []string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Space != d.w {
			continue
		}
		for _, n := range names {
			if c.Tag == n {
				return c
			}
		}
	}
	return nil
}
