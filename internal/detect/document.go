package detect

import (
	"errors"

	"github.com/MrSnakeDoc/subguard/internal/dom"
	"github.com/MrSnakeDoc/subguard/internal/domain"
)

var (
	// ErrNoSuchNode is returned when a path does not resolve in the tree.
	ErrNoSuchNode = errors.New("no element at path")
	// ErrNotControl is returned when the element is not a commitment control.
	ErrNotControl = errors.New("element is not a commitment control")
)

// Control is a matched commitment control, addressed by its tree path.
type Control struct {
	Path  string `json:"path"`
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

// Controls classifies a whole document once and lists the matches in
// document order.
func (e *Engine) Controls(root *dom.Node, pageURL string) []Control {
	matched := e.NewClassifier(pageURL).Scan(root)
	out := make([]Control, 0, len(matched))
	for _, n := range matched {
		out = append(out, Control{Path: n.Path(), Tag: n.Tag, Label: n.Label()})
	}
	return out
}

// DetectAt simulates one activation of the element at path. The element
// must be a matched control, like a live session would require.
func (e *Engine) DetectAt(root *dom.Node, pageURL, path string) (domain.DetectionMessage, error) {
	n := root.At(path)
	if n == nil || !n.IsElement() {
		return domain.DetectionMessage{}, ErrNoSuchNode
	}
	for _, m := range e.NewClassifier(pageURL).Scan(root) {
		if m == n {
			return e.Message(n, pageURL), nil
		}
	}
	return domain.DetectionMessage{}, ErrNotControl
}
