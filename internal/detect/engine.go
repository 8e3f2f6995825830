// Package detect finds subscription offers in a content tree: which elements
// commit the user, where the offer around them lives, and what it costs.
package detect

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MrSnakeDoc/subguard/internal/dom"
	"github.com/MrSnakeDoc/subguard/internal/domain"
)

// Engine holds a compiled rule set. It is immutable and safe to share.
type Engine struct {
	rs *ruleset
}

// New compiles rules into an engine.
func New(rules Rules) (*Engine, error) {
	rs, err := compile(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rs: rs}, nil
}

// Default returns an engine over DefaultRules.
func Default() *Engine {
	e, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("built-in rules do not compile: %v", err))
	}
	return e
}

// Policy returns the scoring policy in use.
func (e *Engine) Policy() Policy { return e.rs.Policy }

const unknownService = "Unknown Service"

// ServiceNameFromURL derives a display name from a page address:
// "https://www.netflix.com/signup" gives "Netflix".
func ServiceNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return unknownService
	}
	host := strings.Replace(u.Hostname(), "www.", "", 1)
	parts := strings.Split(host, ".")
	if len(parts) > 1 && parts[0] != "" {
		r, size := utf8.DecodeRuneInString(parts[0])
		return string(unicode.ToUpper(r)) + parts[0][size:]
	}
	return host
}

// DisplayName joins the site and plan ("Netflix — Premium") unless the plan
// heading is long or looks like a page title rather than a plan.
func (e *Engine) DisplayName(site, plan string) string {
	plan = strings.TrimSpace(plan)
	if plan == "" || utf8.RuneCountInString(plan) >= 30 || e.rs.headingStop.MatchString(plan) {
		return site
	}
	return site + " — " + plan
}

// PageKey identifies a page for duplicate suppression: host plus path.
func PageKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Host + u.Path
}

// Message runs the extractor on an activated node and wraps the result with
// its origin.
func (e *Engine) Message(node *dom.Node, pageURL string) domain.DetectionMessage {
	d := e.Extract(node)
	site := ServiceNameFromURL(pageURL)
	return domain.DetectionMessage{
		Detection:   d,
		URL:         pageURL,
		ServiceName: e.DisplayName(site, d.PlanName),
	}
}
