// Package dom is a small, renderer-independent content tree.
//
// Detection heuristics operate on *Node only, so the rule tables can be
// exercised from plain HTML fixtures without a browser.
package dom

import (
	"strconv"
	"strings"
	"sync"
)

// NodeType distinguishes documents, elements and text.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
)

// Node is one vertex of the content tree.
type Node struct {
	Type     NodeType
	Tag      string            // lower-case element name, empty for text/document
	Attrs    map[string]string // lower-case keys
	Text     string            // text nodes only
	Parent   *Node
	Children []*Node

	// root-only: treeMu orders mutations against readers on other
	// goroutines, observers receive mutation callbacks
	treeMu    sync.RWMutex
	obsMu     sync.Mutex
	observers map[int]func(*Node)
	obsNext   int
}

// NewDocument returns an empty document root holding children.
func NewDocument(children ...*Node) *Node {
	doc := &Node{Type: DocumentNode}
	for _, c := range children {
		doc.appendChild(c)
	}
	return doc
}

// NewElement builds an element. attrs may be nil.
func NewElement(tag string, attrs map[string]string, children ...*Node) *Node {
	n := &Node{Type: ElementNode, Tag: strings.ToLower(tag), Attrs: map[string]string{}}
	for k, v := range attrs {
		n.Attrs[strings.ToLower(k)] = v
	}
	for _, c := range children {
		n.appendChild(c)
	}
	return n
}

// NewText builds a text node.
func NewText(s string) *Node {
	return &Node{Type: TextNode, Text: s}
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool { return n != nil && n.Type == ElementNode }

// Attr returns the attribute value or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[strings.ToLower(name)]
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.Attr("id") }

// ClassName returns the raw class attribute.
func (n *Node) ClassName() string { return n.Attr("class") }

// Root walks up to the top of the tree.
func (n *Node) Root() *Node {
	cur := n
	for cur != nil && cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Closest returns n or the nearest ancestor element matching pred.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.IsElement() && pred(cur) {
			return cur
		}
	}
	return nil
}

// Walk visits n and its descendants in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first descendant element (excluding n) matching pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	for _, c := range n.Children {
		c.Walk(func(x *Node) bool {
			if found != nil {
				return false
			}
			if x.IsElement() && pred(x) {
				found = x
				return false
			}
			return true
		})
		if found != nil {
			break
		}
	}
	return found
}

// Body returns the <body> element, or the root when there is none.
func (n *Node) Body() *Node {
	root := n.Root()
	if root.IsElement() && root.Tag == "body" {
		return root
	}
	if b := root.Find(func(x *Node) bool { return x.Tag == "body" }); b != nil {
		return b
	}
	return root
}

// Path addresses n by child indices from the root, e.g. "0/1/3".
// The root itself has an empty path.
func (n *Node) Path() string {
	var idx []string
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		for i, sib := range cur.Parent.Children {
			if sib == cur {
				idx = append(idx, strconv.Itoa(i))
				break
			}
		}
	}
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return strings.Join(idx, "/")
}

// At resolves a Path() string relative to n. It returns nil when the path
// does not exist.
func (n *Node) At(path string) *Node {
	path = strings.Trim(path, "/")
	if path == "" {
		return n
	}
	cur := n
	for _, part := range strings.Split(path, "/") {
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 || i >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[i]
	}
	return cur
}
