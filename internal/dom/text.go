package dom

import (
	"strings"
)

// hiddenTags never contribute visible text.
var hiddenTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
	"title":    true,
}

// blockTags break lines in rendered text.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tr": true, "td": true, "th": true, "ul": true,
}

// TextContent concatenates every descendant text node, like DOM textContent.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.Walk(func(x *Node) bool {
		if x.Type == TextNode {
			b.WriteString(x.Text)
		}
		return true
	})
	return b.String()
}

// InnerText approximates rendered text: hidden subtrees are skipped, block
// elements start new lines and whitespace runs collapse to one space.
func (n *Node) InnerText() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var visit func(*Node)
	visit = func(x *Node) {
		switch x.Type {
		case TextNode:
			b.WriteString(x.Text)
			return
		case ElementNode:
			if hiddenTags[x.Tag] {
				return
			}
			if x.Tag == "input" && x.Attr("value") != "" {
				b.WriteString(" " + x.Attr("value") + " ")
			}
		}
		block := x.Type == ElementNode && blockTags[x.Tag]
		if block {
			b.WriteByte('\n')
		}
		for _, c := range x.Children {
			visit(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	visit(n)
	return normalizeLines(b.String())
}

// Label is the lower-cased, trimmed text a user sees on a control: its
// text content, or the value attribute for inputs.
func (n *Node) Label() string {
	text := strings.TrimSpace(n.TextContent())
	if text == "" {
		text = strings.TrimSpace(n.Attr("value"))
	}
	return strings.ToLower(collapseSpaces(text))
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(collapseSpaces(line))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
