package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offerPage = `<html><body>
	<nav><a href="/about">About us</a></nav>
	<div class="pricing-card">
		<h3>Premium</h3>
		<p>$14.99/mo after your 7-day free trial</p>
		<button id="go">Start free trial</button>
	</div>
</body></html>`

func TestControlsListsMatchesByPath(t *testing.T) {
	e := Default()
	doc := parse(t, offerPage)

	controls := e.Controls(doc, "https://www.netflix.com/plans")
	require.Len(t, controls, 1)
	assert.Equal(t, "button", controls[0].Tag)
	assert.Equal(t, "start free trial", controls[0].Label)
	assert.Same(t, findID(t, doc, "go"), doc.At(controls[0].Path))
}

func TestDetectAt(t *testing.T) {
	e := Default()
	doc := parse(t, offerPage)
	path := findID(t, doc, "go").Path()

	msg, err := e.DetectAt(doc, "https://www.netflix.com/plans", path)
	require.NoError(t, err)
	assert.Equal(t, "Netflix — Premium", msg.ServiceName)
	assert.True(t, msg.TrialDetected)
	assert.Equal(t, 7, *msg.TrialDays)

	// same markup parsed again resolves to the same element
	again := parse(t, offerPage)
	_, err = e.DetectAt(again, "https://www.netflix.com/plans", path)
	assert.NoError(t, err)
}

func TestDetectAtRejects(t *testing.T) {
	e := Default()
	doc := parse(t, offerPage)

	_, err := e.DetectAt(doc, "https://x.com", "9/9/9")
	assert.ErrorIs(t, err, ErrNoSuchNode)

	about := findTag(t, doc, "a")
	_, err = e.DetectAt(doc, "https://x.com", about.Path())
	assert.ErrorIs(t, err, ErrNotControl)
}
