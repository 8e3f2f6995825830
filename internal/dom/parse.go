package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse reads an HTML document into a tree. Comments and doctypes are
// dropped; everything else keeps its position so Path() is stable.
func Parse(r io.Reader) (*Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	doc := &Node{Type: DocumentNode}
	convertChildren(root, doc)
	return doc, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func convertChildren(src *html.Node, dst *Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el := &Node{Type: ElementNode, Tag: strings.ToLower(c.Data), Attrs: make(map[string]string, len(c.Attr))}
			for _, a := range c.Attr {
				el.Attrs[strings.ToLower(a.Key)] = a.Val
			}
			dst.appendChild(el)
			convertChildren(c, el)
		case html.TextNode:
			dst.appendChild(&Node{Type: TextNode, Text: c.Data})
		case html.DocumentNode:
			convertChildren(c, dst)
		}
	}
}
