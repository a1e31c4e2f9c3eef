package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// Link is an anchor found in a page.
type Link struct {
	Href string
	Text string
}

// Parse parses raw HTML. Malformed markup never fails: the parser recovers
// the same way browsers do, and an empty string yields an empty document.
func Parse(raw string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return &Document{doc: doc}
}

// Title returns the trimmed <title> text.
func (d *Document) Title() string {
	return collapseSpaces(d.doc.Find("title").First().Text())
}

// MetaDescription returns the content of <meta name="description">.
func (d *Document) MetaDescription() string {
	var desc string
	d.doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		if strings.EqualFold(strings.TrimSpace(name), "description") {
			desc, _ = s.Attr("content")
			return false
		}
		return true
	})
	return strings.TrimSpace(desc)
}

// Links returns every anchor with an href, in document order.
func (d *Document) Links() []Link {
	var links []Link
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, Link{
			Href: strings.TrimSpace(href),
			Text: collapseSpaces(s.Text()),
		})
	})
	return links
}

// Text returns the visible text of the page, one text node per line.
// Script, style, noscript and iframe content is dropped.
func (d *Document) Text() string {
	d.doc.Find("script, style, noscript, iframe").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, collapseSpaces(t))
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range d.doc.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}

// CleanText parses raw HTML and returns its visible text.
func CleanText(raw string) string {
	return Parse(raw).Text()
}

var spaceRe = regexp.MustCompile(`[ \t\r\f\v\x{00a0}]+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ReplaceAll(s, "\n", " "), " "))
}

// Lines splits text into trimmed lines, stripping bullet characters, and
// keeps those whose length in runes is within [minLen, maxLen].
func Lines(text string, minLen, maxLen int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(line, " -•\t")
		n := len([]rune(line))
		if n >= minLen && n <= maxLen {
			out = append(out, line)
		}
	}
	return out
}
