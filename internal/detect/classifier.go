package detect

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/MrSnakeDoc/subguard/internal/dom"
)

var currencyMarks = []string{"$", "€", "£"}

// Classifier decides which clickable elements commit the user to a
// subscription. It remembers every element it has classified so rescans of
// a mutated tree only look at new nodes.
type Classifier struct {
	e       *Engine
	pageURL string

	mu   sync.Mutex
	seen map[*dom.Node]struct{}
}

// NewClassifier returns a classifier bound to one page.
func (e *Engine) NewClassifier(pageURL string) *Classifier {
	return &Classifier{e: e, pageURL: pageURL, seen: map[*dom.Node]struct{}{}}
}

// Scan classifies every clickable element under root that has not been
// classified before and returns the ones that matched, in document order.
// Elements with an empty label are left for a later scan.
func (c *Classifier) Scan(root *dom.Node) []*dom.Node {
	var out []*dom.Node
	root.Walk(func(n *dom.Node) bool {
		if !c.e.IsClickable(n) {
			return true
		}
		label := n.Label()
		if label == "" {
			return true
		}

		c.mu.Lock()
		_, done := c.seen[n]
		if !done {
			c.seen[n] = struct{}{}
		}
		c.mu.Unlock()
		if done {
			return true
		}

		if utf8.RuneCountInString(label) <= c.e.rs.MaxLabelLen && c.IsCandidate(label, n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Seen reports whether n was already classified.
func (c *Classifier) Seen(n *dom.Node) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[n]
	return ok
}

// IsCandidate tests the label text of n against every signal, cheapest
// first. text must already be trimmed and lower-cased.
func (c *Classifier) IsCandidate(text string, n *dom.Node) bool {
	rs := c.e.rs
	if text == "" || utf8.RuneCountInString(text) > rs.MaxLabelLen {
		return false
	}

	// a. trigger vocabulary on the visible label
	if containsAny(text, rs.TriggerPhrases) {
		return true
	}

	// b. the same vocabulary on accessibility text
	aria := strings.ToLower(n.Attr("aria-label"))
	title := strings.ToLower(n.Attr("title"))
	if containsAny(aria, rs.TriggerPhrases) || containsAny(title, rs.TriggerPhrases) {
		return true
	}

	// c. link target
	if href := n.Attr("href"); href != "" && rs.hrefIntent.MatchString(href) {
		return true
	}

	// d. confirmation wording on a payment page
	if rs.pageIntent.MatchString(c.pageURL) && containsAny(text, rs.ConfirmWords) {
		return true
	}

	// e. short commit verb or price inside an offer card
	offer := n.Closest(func(x *dom.Node) bool {
		return containsAny(strings.ToLower(x.ClassName()), rs.OfferAncestors)
	})
	if offer != nil && utf8.RuneCountInString(text) < rs.ShortLabelLen {
		if containsAny(text, rs.CommitVerbs) || containsAny(text, currencyMarks) {
			return true
		}
	}

	return false
}

// IsClickable reports whether n is something a user would press.
func (e *Engine) IsClickable(n *dom.Node) bool {
	if !n.IsElement() {
		return false
	}
	switch n.Tag {
	case "button", "a":
		return true
	case "input":
		t := strings.ToLower(n.Attr("type"))
		if t == "submit" || t == "button" {
			return true
		}
	}
	if strings.EqualFold(n.Attr("role"), "button") {
		return true
	}
	return containsAny(strings.ToLower(n.ClassName()), e.rs.ClickableHints)
}
