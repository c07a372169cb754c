package profile

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// htmlText returns the visible text of an HTML page, one line per block.
func htmlText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var sb strings.Builder
	writeText(doc, &sb)
	return tidyLines(sb.String()), nil
}

// shouldSkipElement returns true for elements that don't contain visible text.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "head", "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed":
		return true
	}
	return false
}

func isBlock(tagName string) bool {
	switch tagName {
	case "p", "div", "li", "dt", "dd", "tr", "table", "ul", "ol", "dl",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "article", "section", "header", "footer", "address":
		return true
	}
	return false
}

func writeText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if shouldSkipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			sb.WriteString("\n")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}

	if n.Type == html.ElementNode {
		switch {
		case n.Data == "td" || n.Data == "th":
			sb.WriteString(" ")
		case isBlock(n.Data):
			sb.WriteString("\n")
		}
	}
}

// tidyLines collapses runs of whitespace inside lines and drops blank lines.
func tidyLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
