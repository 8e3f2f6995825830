package detect

import (
	"fmt"
	"regexp"
	"strings"
)

// DarkPatternRule pairs a finding label with the text that reveals it.
type DarkPatternRule struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// Rules holds every heuristic table the engine uses. Tables are data so they
// can be tuned from a YAML file without touching control flow.
type Rules struct {
	// Classifier vocabulary
	TriggerPhrases []string `yaml:"trigger_phrases"`
	HrefIntent     string   `yaml:"href_intent"`
	PageIntent     string   `yaml:"page_intent"`
	ConfirmWords   []string `yaml:"confirm_words"`
	CommitVerbs    []string `yaml:"commit_verbs"`
	OfferAncestors []string `yaml:"offer_ancestors"`
	ClickableHints []string `yaml:"clickable_hints"`
	MaxLabelLen    int      `yaml:"max_label_len"`
	ShortLabelLen  int      `yaml:"short_label_len"`

	// Locator vocabulary
	ContainerClasses []string `yaml:"container_classes"`
	ContainerIDs     []string `yaml:"container_ids"`
	ContainerTags    []string `yaml:"container_tags"`
	LocatorDepth     int      `yaml:"locator_depth"`
	FallbackHops     int      `yaml:"fallback_hops"`

	// Extractor vocabulary
	HeadingTags     []string          `yaml:"heading_tags"`
	HeadingClasses  []string          `yaml:"heading_classes"`
	DarkPatterns    []DarkPatternRule `yaml:"dark_patterns"`
	PlanHeadingStop string            `yaml:"plan_heading_stop"`

	Policy Policy `yaml:"policy"`
}

// DefaultRules returns the built-in tables.
func DefaultRules() Rules {
	return Rules{
		TriggerPhrases: []string{
			// trials
			"trial", "try free", "try it", "try now", "try for",
			"try premium", "try pro", "try plus", "try basic",
			// subscribe / buy
			"subscribe", "buy now", "buy plan", "purchase",
			"complete purchase", "confirm purchase",
			"order now", "checkout", "check out",
			// plan selection
			"choose plan", "select plan", "choose this", "select this",
			"get plan", "get this plan", "current plan",
			// start / get
			"get started", "get premium", "get pro", "get plus",
			"get basic", "get business", "get enterprise",
			"go premium", "go pro",
			"start plan", "start now", "start free",
			// upgrade / join
			"upgrade", "join now", "join free", "join premium",
			"enroll", "sign up", "signup",
			// payment / confirm
			"proceed to payment", "continue to payment", "pay now",
			"add to cart", "confirm plan", "place order",
			"complete order", "submit order", "confirm and pay",
			"start my", "activate",
			// price-per-period markers
			"/mo", "/yr", "/year", "/month", "/week",
			"per month", "per year",
			"billed monthly", "billed annually", "billed yearly",
		},
		HrefIntent:     `subscribe|checkout|purchase|pricing|plan|trial|upgrade|signup|sign-up|billing|payment`,
		PageIntent:     `checkout|payment|billing|subscribe|pricing|upgrade|plan`,
		ConfirmWords:   []string{"continue", "confirm", "complete", "submit", "place order", "pay", "finish", "done"},
		CommitVerbs:    []string{"continue", "select", "choose", "start", "begin", "get", "join", "enroll", "activate", "confirm"},
		OfferAncestors: []string{"pricing", "plan", "card", "tier", "package", "checkout", "payment"},
		ClickableHints: []string{"btn", "button", "cta"},
		MaxLabelLen:    80,
		ShortLabelLen:  30,

		ContainerClasses: []string{"pricing", "plan", "card", "tier", "package", "checkout", "payment", "summary", "order"},
		ContainerIDs:     []string{"pricing", "plan", "checkout", "payment"},
		ContainerTags:    []string{"article", "section"},
		LocatorDepth:     8,
		FallbackHops:     3,

		HeadingTags:    []string{"h1", "h2", "h3", "h4"},
		HeadingClasses: []string{"plan-name", "plan", "title"},
		DarkPatterns: []DarkPatternRule{
			{Label: "auto-renew pre-checked", Pattern: `auto[\s-]?renew`},
			{Label: "limited time pressure", Pattern: `limited\s+time|offer\s+ends|only\s+today|act\s+now`},
			{Label: "hidden extras", Pattern: `additional\s+\$|extra\s+\$`},
			{Label: "confusing cancellation", Pattern: `cancel.*(?:48|24)\s*hours?\s*before`},
			{Label: "no refund policy", Pattern: `no\s+refunds?`},
		},
		PlanHeadingStop: `summary|payment|checkout|billing|order`,

		Policy: DefaultPolicy(),
	}
}

// ruleset is Rules with every pattern compiled and vocabularies normalised.
type ruleset struct {
	Rules

	hrefIntent   *regexp.Regexp
	pageIntent   *regexp.Regexp
	darkPatterns []compiledDarkPattern
	headingStop  *regexp.Regexp
}

type compiledDarkPattern struct {
	label string
	re    *regexp.Regexp
}

func compile(r Rules) (*ruleset, error) {
	rs := &ruleset{Rules: r}

	var err error
	if rs.hrefIntent, err = regexp.Compile("(?i)" + r.HrefIntent); err != nil {
		return nil, fmt.Errorf("invalid href_intent: %w", err)
	}
	if rs.pageIntent, err = regexp.Compile("(?i)" + r.PageIntent); err != nil {
		return nil, fmt.Errorf("invalid page_intent: %w", err)
	}
	if rs.headingStop, err = regexp.Compile("(?i)" + r.PlanHeadingStop); err != nil {
		return nil, fmt.Errorf("invalid plan_heading_stop: %w", err)
	}
	for _, dp := range r.DarkPatterns {
		re, err := regexp.Compile("(?i)" + dp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid dark pattern %q: %w", dp.Label, err)
		}
		rs.darkPatterns = append(rs.darkPatterns, compiledDarkPattern{label: dp.Label, re: re})
	}

	rs.TriggerPhrases = lowerAll(r.TriggerPhrases)
	rs.ConfirmWords = lowerAll(r.ConfirmWords)
	rs.CommitVerbs = lowerAll(r.CommitVerbs)
	rs.OfferAncestors = lowerAll(r.OfferAncestors)
	rs.ClickableHints = lowerAll(r.ClickableHints)
	rs.ContainerClasses = lowerAll(r.ContainerClasses)
	rs.ContainerIDs = lowerAll(r.ContainerIDs)
	rs.ContainerTags = lowerAll(r.ContainerTags)
	rs.HeadingTags = lowerAll(r.HeadingTags)
	rs.HeadingClasses = lowerAll(r.HeadingClasses)

	if rs.MaxLabelLen <= 0 {
		rs.MaxLabelLen = 80
	}
	if rs.ShortLabelLen <= 0 {
		rs.ShortLabelLen = 30
	}
	if rs.LocatorDepth <= 0 {
		rs.LocatorDepth = 8
	}
	if rs.FallbackHops < 0 {
		rs.FallbackHops = 0
	}
	return rs, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
