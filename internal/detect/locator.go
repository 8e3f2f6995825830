package detect

import (
	"strings"

	"github.com/MrSnakeDoc/subguard/internal/dom"
)

// Locate finds the region that most plausibly describes the offer behind an
// activated element. It walks up from the parent looking for an offer
// container; when none is found within LocatorDepth levels it settles for an
// ancestor FallbackHops above the parent. It returns nil only for a node with
// no parent.
func (e *Engine) Locate(n *dom.Node) *dom.Node {
	if n == nil || n.Parent == nil {
		return nil
	}

	cur := n.Parent
	for depth := 0; cur != nil && depth < e.rs.LocatorDepth; depth++ {
		if e.isContainer(cur) {
			return cur
		}
		cur = cur.Parent
	}

	fallback := n.Parent
	for hop := 0; hop < e.rs.FallbackHops; hop++ {
		if fallback.Parent == nil || fallback.Parent.Type == dom.DocumentNode {
			break
		}
		fallback = fallback.Parent
	}
	return fallback
}

func (e *Engine) isContainer(n *dom.Node) bool {
	if !n.IsElement() {
		return false
	}
	if containsAny(strings.ToLower(n.ClassName()), e.rs.ContainerClasses) {
		return true
	}
	if containsAny(strings.ToLower(n.ID()), e.rs.ContainerIDs) {
		return true
	}
	for _, tag := range e.rs.ContainerTags {
		if n.Tag == tag {
			return true
		}
	}
	return false
}
