package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const jsonLDType = "application/ld+json"

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {}, "dd": {}, "div": {},
	"dl": {}, "dt": {}, "fieldset": {}, "figcaption": {}, "footer": {}, "form": {}, "h1": {},
	"h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {}, "header": {}, "hr": {}, "li": {},
	"main": {}, "nav": {}, "ol": {}, "p": {}, "pre": {}, "section": {}, "table": {}, "tbody": {},
	"td": {}, "th": {}, "tr": {}, "ul": {},
}

// Document is a parsed page with scripts removed and its JSON-LD blocks set aside.
type Document struct {
	PageURL string
	Raw     string
	JSONLD  []string

	doc  *goquery.Document
	text string
}

// Parse builds a Document from raw HTML. JSON-LD bodies are captured before
// script, style and noscript elements are dropped from the tree.
func Parse(rawHTML, pageURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrapf(err, "extract: parse html for %s", pageURL)
	}

	d := &Document{PageURL: pageURL, Raw: rawHTML, doc: doc}
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		kind, _ := s.Attr("type")
		if !strings.EqualFold(strings.TrimSpace(kind), jsonLDType) {
			return
		}
		if body := strings.TrimSpace(s.Text()); body != "" {
			d.JSONLD = append(d.JSONLD, body)
		}
	})
	doc.Find("script, style, noscript, template").Remove()
	d.text = VisibleText(doc.Selection)
	return d, nil
}

// Find runs a CSS selector against the cleaned tree.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Text is the visible page text, one block element per line.
func (d *Document) Text() string {
	return d.text
}

// VisibleText flattens a selection into text. Block elements start a new line and
// runs of whitespace collapse to one space.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return normalizeLines(norm.NFKC.String(b.String()))
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}

	_, block := blockElements[n.Data]
	if block && n.Type == html.ElementNode {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block && n.Type == html.ElementNode {
		b.WriteByte('\n')
	}
}

func normalizeLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
