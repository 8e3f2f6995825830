package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingPage = `<!doctype html>
<html><head><title>Pricing</title><style>.x{}</style></head>
<body>
  <section class="Pricing-Grid">
    <div class="plan-card" id="pro">
      <h3>Pro</h3>
      <p>$14.99<span>/mo</span></p>
      <script>var tracking = "$99";</script>
      <button class="btn">Start free trial</button>
    </div>
  </section>
  <input type="submit" value="Pay now">
</body></html>`

func mustParse(t *testing.T, s string) *Node {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestParseBuildsElementTree(t *testing.T) {
	doc := mustParse(t, pricingPage)

	body := doc.Body()
	require.NotNil(t, body)
	assert.Equal(t, "body", body.Tag)

	card := doc.Find(func(n *Node) bool { return n.ID() == "pro" })
	require.NotNil(t, card)
	assert.Equal(t, "plan-card", card.ClassName())
	assert.Equal(t, "div", card.Tag)
}

func TestInnerTextSkipsHiddenAndBreaksBlocks(t *testing.T) {
	doc := mustParse(t, pricingPage)
	card := doc.Find(func(n *Node) bool { return n.ID() == "pro" })
	require.NotNil(t, card)

	text := card.InnerText()
	assert.Contains(t, text, "Pro")
	assert.Contains(t, text, "$14.99/mo")
	assert.NotContains(t, text, "$99")
	assert.NotContains(t, doc.Body().InnerText(), ".x{}")
}

func TestLabelFallsBackToValue(t *testing.T) {
	doc := mustParse(t, pricingPage)

	btn := doc.Find(func(n *Node) bool { return n.Tag == "button" })
	require.NotNil(t, btn)
	assert.Equal(t, "start free trial", btn.Label())

	input := doc.Find(func(n *Node) bool { return n.Tag == "input" })
	require.NotNil(t, input)
	assert.Equal(t, "pay now", input.Label())
}

func TestPathRoundTrip(t *testing.T) {
	doc := mustParse(t, pricingPage)
	btn := doc.Find(func(n *Node) bool { return n.Tag == "button" })
	require.NotNil(t, btn)

	path := btn.Path()
	assert.NotEmpty(t, path)
	assert.Same(t, btn, doc.At(path))
	assert.Same(t, doc, doc.At(""))
	assert.Nil(t, doc.At("99/0"))
	assert.Nil(t, doc.At("x"))
}

func TestClosestIncludesSelf(t *testing.T) {
	doc := mustParse(t, pricingPage)
	btn := doc.Find(func(n *Node) bool { return n.Tag == "button" })
	require.NotNil(t, btn)

	assert.Same(t, btn, btn.Closest(func(n *Node) bool { return n.Tag == "button" }))
	section := btn.Closest(func(n *Node) bool { return n.Tag == "section" })
	require.NotNil(t, section)
	assert.Equal(t, "Pricing-Grid", section.ClassName())
	assert.Nil(t, btn.Closest(func(n *Node) bool { return n.Tag == "table" }))
}

func TestObserveReceivesMutations(t *testing.T) {
	doc := NewDocument(NewElement("body", nil))
	body := doc.Body()

	var seen []*Node
	unsubscribe := doc.Observe(func(changed *Node) { seen = append(seen, changed) })

	btn := NewElement("button", nil, NewText("Subscribe"))
	body.AppendChild(btn)
	require.Len(t, seen, 1)
	assert.Same(t, btn, seen[0])

	body.RemoveChild(btn)
	assert.Len(t, seen, 2)
	assert.Nil(t, btn.Parent)

	unsubscribe()
	body.AppendChild(NewElement("a", nil))
	assert.Len(t, seen, 2)
}

func TestAppendChildReparents(t *testing.T) {
	a := NewElement("div", nil)
	b := NewElement("div", nil)
	child := NewElement("span", nil)

	a.AppendChild(child)
	b.AppendChild(child)

	assert.Empty(t, a.Children)
	assert.Same(t, b, child.Parent)
}

func TestSetAttrLowerCasesName(t *testing.T) {
	doc := NewDocument(NewElement("button", nil))
	btn := doc.Children[0]

	var changed int
	doc.Observe(func(*Node) { changed++ })

	btn.SetAttr("Aria-Label", "Start trial")
	assert.Equal(t, "Start trial", btn.Attr("aria-label"))
	assert.Equal(t, "Start trial", btn.Attr("ARIA-LABEL"))
	assert.Equal(t, 1, changed)

	btn.RemoveChild(NewText("not a child"))
	assert.Equal(t, 1, changed, "removing a stranger is not a mutation")
}

func TestViewIsolatesReadersFromMutations(t *testing.T) {
	doc := mustParse(t, pricingPage)
	card := doc.Find(func(n *Node) bool { return n.ID() == "pro" })
	require.NotNil(t, card)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			card.View(func() { _ = card.InnerText() })
		}
	}()

	for i := 0; i < 200; i++ {
		p := NewElement("p", nil, NewText("Billed annually"))
		card.AppendChild(p)
		card.SetAttr("data-n", "x")
		if i%2 == 0 {
			card.RemoveChild(p)
		}
	}
	<-done

	card.View(func() {
		assert.Contains(t, card.InnerText(), "Billed annually")
	})
}
