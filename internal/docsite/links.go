package docsite

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"

	"github.com/geostab/slopekit/internal/errors"
)

// LinkKind classifies an extracted link.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
	LinkKindHTML   LinkKind = "html"
)

// Link is a link-like construct found in a page.
type Link struct {
	Kind        LinkKind
	Destination string
	Text        string
}

// ExtractMarkdownLinks parses a markdown body and extracts link destinations.
// This is an analysis API; it does not re-render the markdown.
func ExtractMarkdownLinks(body []byte) ([]Link, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	links := make([]Link, 0)
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDocs, errors.SeverityError,
			"failed to walk markdown ast")
	}
	return links, nil
}

// ExtractHTMLLinks extracts anchor, image, script, and stylesheet references
// from generated HTML, for verifying a built site.
func ExtractHTMLLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDocs, errors.SeverityError,
			"failed to parse html")
	}

	var links []Link
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := attr(n, "href"); href != "" {
					links = append(links, Link{Kind: LinkKindHTML, Destination: href, Text: nodeText(n)})
				}
			case "img", "script":
				if src := attr(n, "src"); src != "" {
					links = append(links, Link{Kind: LinkKindHTML, Destination: src})
				}
			case "link":
				if href := attr(n, "href"); href != "" {
					links = append(links, Link{Kind: LinkKindHTML, Destination: href})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return links, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return strings.TrimSpace(b.String())
}
