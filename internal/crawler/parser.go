package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseResult contains the references extracted from an HTML page.
// Links and assets are returned exactly as written in the markup;
// resolution and validation are the URL engine's job, not the parser's.
//
// Design decision: We return a single result struct from one parsing pass
// rather than exposing per-element methods, because the caller always
// wants everything and a single DOM walk is cheaper.
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links are the raw href values of anchor elements.
	Links []string

	// Assets are the raw reference values of images, stylesheets, and
	// scripts. The content processor re-validates these before embedding
	// them in output.
	Assets []string

	// MetaTags maps meta names to their content values.
	MetaTags map[string]string
}

// Parser extracts references from HTML content.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML common on real documentation
// sites and gives a proper node tree to walk.
type Parser struct{}

// NewParser creates a new HTML parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses HTML content and extracts all link and asset references.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links:    make([]string, 0),
		Assets:   make([]string, 0),
		MetaTags: make(map[string]string),
	}
	p.walk(doc, result)
	return result, nil
}

// walk traverses the node tree, collecting references per element type.
func (p *Parser) walk(n *html.Node, result *ParseResult) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				result.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "a":
			if href := attrValue(n, "href"); href != "" {
				result.Links = append(result.Links, href)
			}
		case "img", "script":
			if src := attrValue(n, "src"); src != "" {
				result.Assets = append(result.Assets, src)
			}
		case "link":
			if href := attrValue(n, "href"); href != "" {
				result.Assets = append(result.Assets, href)
			}
		case "meta":
			name := attrValue(n, "name")
			if name == "" {
				name = attrValue(n, "property")
			}
			if name != "" {
				result.MetaTags[name] = attrValue(n, "content")
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, result)
	}
}

// attrValue returns the trimmed value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}
