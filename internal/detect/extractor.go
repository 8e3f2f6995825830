package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/subguard/internal/dom"
	"github.com/MrSnakeDoc/subguard/internal/domain"
)

// scope names a text region the extractor can read.
type scope int

const (
	scopeContainer scope = iota
	scopePage
	scopeParent
)

var (
	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[\$€£]\s*(\d{1,6}(?:[.,]\d{1,2})?)`),
		regexp.MustCompile(`(?i)(\d{1,6}(?:[.,]\d{1,2})?)\s*(?:USD|EUR|GBP)`),
		regexp.MustCompile(`(?i)(\d{1,6}(?:[.,]\d{1,2})?)\s*/\s*(?:mo|month|yr|year|week)`),
	}
	priceScopes = []scope{scopeContainer, scopePage, scopeParent}

	cycleRules = []struct {
		cycle domain.BillingCycle
		re    *regexp.Regexp
	}{
		{domain.CycleYearly, regexp.MustCompile(`/\s*year|per\s*year|billed\s*annual|/yr|annually`)},
		{domain.CycleWeekly, regexp.MustCompile(`/\s*week|per\s*week|weekly`)},
	}

	// numeric lengths come before bare phrasing so the length is captured
	trialRules = []struct {
		re       *regexp.Regexp
		unitDays int // 0 when the pattern carries no length
	}{
		{regexp.MustCompile(`(?i)(\d+)\s*[-–]?\s*days?\s+(?:free\s+)?trial`), 1},
		{regexp.MustCompile(`(?i)(\d+)\s*[-–]?\s*weeks?\s+(?:free\s+)?trial`), 7},
		{regexp.MustCompile(`(?i)(\d+)\s*[-–]?\s*months?\s+(?:free\s+)?trial`), 30},
		{regexp.MustCompile(`(?i)free\s+trial`), 0},
		{regexp.MustCompile(`(?i)try\s+(?:it\s+)?free`), 0},
		{regexp.MustCompile(`(?i)start\s+(?:your\s+)?(?:free\s+)?trial`), 0},
	}
	trialLabelWords = []string{"trial", "try free"}
)

const trialKeyword = "free trial"

// texts lazily renders the regions around an activated node so the page
// body is only walked when an attempt needs it.
type texts struct {
	node      *dom.Node
	container *dom.Node

	cache map[scope]string
}

func (t *texts) get(s scope) string {
	if v, ok := t.cache[s]; ok {
		return v
	}
	var v string
	switch s {
	case scopeContainer:
		v = t.container.InnerText()
	case scopePage:
		v = t.node.Body().InnerText()
	case scopeParent:
		v = t.node.Parent.InnerText()
	}
	t.cache[s] = v
	return v
}

// Extract reads the commercial terms of the offer around an activated
// element. It never fails: anything it cannot find is left empty.
func (e *Engine) Extract(n *dom.Node) domain.Detection {
	d := domain.Detection{
		Detected:     true,
		Cycle:        domain.CycleMonthly,
		DarkPatterns: []string{},
		Keywords:     []string{},
	}
	if n == nil {
		d.RiskScore = e.rs.Policy.Score(0, false, nil)
		return d
	}

	t := &texts{node: n, container: e.Locate(n), cache: map[scope]string{}}
	containerText := t.get(scopeContainer)

	d.PlanName = e.planName(t.container)
	d.Price, d.Currency = extractPrice(t)
	d.Cycle = extractCycle(containerText, t)
	d.TrialDetected, d.TrialDays = extractTrial(containerText, n)
	if d.TrialDetected {
		d.Keywords = append(d.Keywords, trialKeyword)
	}

	lowerContainer := strings.ToLower(containerText)
	lowerPage := strings.ToLower(t.get(scopePage))
	for _, dp := range e.rs.darkPatterns {
		if dp.re.MatchString(lowerContainer) || dp.re.MatchString(lowerPage) {
			d.DarkPatterns = append(d.DarkPatterns, dp.label)
		}
	}

	d.RiskScore = e.rs.Policy.Score(len(d.DarkPatterns), d.TrialDetected, d.TrialDays)
	return d
}

func (e *Engine) planName(container *dom.Node) string {
	if container == nil {
		return ""
	}
	heading := container.Find(func(x *dom.Node) bool {
		for _, tag := range e.rs.HeadingTags {
			if x.Tag == tag {
				return true
			}
		}
		return containsAny(strings.ToLower(x.ClassName()), e.rs.HeadingClasses)
	})
	if heading == nil {
		return ""
	}
	return strings.TrimSpace(heading.TextContent())
}

// extractPrice returns the first non-zero price found, widening scope on each
// miss. A zero price is kept only when nothing better turns up.
func extractPrice(t *texts) (*decimal.Decimal, string) {
	var (
		found    *decimal.Decimal
		currency string
	)
	for _, s := range priceScopes {
		if s == scopeParent && t.node.Parent == nil {
			continue
		}
		text := t.get(s)
		for _, re := range pricePatterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			p, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
			if err != nil {
				continue
			}
			found = &p
			currency = domain.DefaultCurrency
			if s != scopeParent {
				currency = currencyOf(text)
			}
			break
		}
		if found != nil && !found.IsZero() {
			break
		}
	}
	if found == nil {
		return nil, ""
	}
	return found, currency
}

func currencyOf(text string) string {
	switch {
	case strings.Contains(text, "€"):
		return "EUR"
	case strings.Contains(text, "£"):
		return "GBP"
	default:
		return domain.DefaultCurrency
	}
}

func extractCycle(containerText string, t *texts) domain.BillingCycle {
	text := containerText
	if text == "" {
		text = t.get(scopePage)
	}
	text = strings.ToLower(text)
	for _, r := range cycleRules {
		if r.re.MatchString(text) {
			return r.cycle
		}
	}
	return domain.CycleMonthly
}

// extractTrial only trusts the container: a trial mentioned elsewhere on the
// page usually belongs to a different plan.
func extractTrial(containerText string, n *dom.Node) (bool, *int) {
	for _, r := range trialRules {
		m := r.re.FindStringSubmatch(containerText)
		if m == nil {
			continue
		}
		if r.unitDays > 0 && len(m) > 1 {
			if num, err := strconv.Atoi(m[1]); err == nil {
				days := num * r.unitDays
				return true, &days
			}
		}
		return true, nil
	}

	if containsAny(strings.ToLower(n.TextContent()), trialLabelWords) {
		return true, nil
	}
	return false, nil
}
