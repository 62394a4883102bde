package usecase

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/tastelens/backend/internal/domain"
)

const (
	// DefaultMinDescriptionLength is the description length above which no label is suggested
	DefaultMinDescriptionLength = 20

	maxLabelTitleLength = 60

	justificationOrganized = "Already organized"
	justificationNoMatch   = "No classification match"
)

// signal identifies which field of a block produced a match
type signal string

const (
	signalURL         signal = "URL"
	signalTitle       signal = "title"
	signalDescription signal = "description"
	signalContent     signal = "content"
	signalSourceTitle signal = "source title"
)

// OrganizedPredicate reports whether a block already lives in a managed location
type OrganizedPredicate func(domain.Block) bool

// CanonicalTargets returns a predicate that is true when one of the block's known
// connections is one of the targets, compared case-insensitively by channel title or by
// the target's slug appearing inside the connection slug.
func CanonicalTargets(targets []domain.Destination) OrganizedPredicate {
	return func(block domain.Block) bool {
		for _, conn := range block.Connections {
			title := strings.ToLower(strings.TrimSpace(conn.Title))
			slug := strings.ToLower(conn.Slug)
			for _, target := range targets {
				if title != "" && title == strings.ToLower(target.ChannelTitle()) {
					return true
				}
				if targetSlug := target.ChannelSlug(); targetSlug != "" && strings.Contains(slug, targetSlug) {
					return true
				}
			}
		}
		return false
	}
}

// ClassifierConfig holds configuration for the rule-based classifier
type ClassifierConfig struct {
	MinDescriptionLength int
}

// Classifier routes blocks to destinations using a static rule table.
// Keyword signals run through one Aho-Corasick automaton built over every rule keyword.
type Classifier struct {
	rules                []domain.ClassificationRule
	minDescriptionLength int

	mu        sync.Mutex // ahocorasick.Matcher keeps per-call state
	matcher   *ahocorasick.Matcher
	keywords  []string
	kwToRules map[string][]int
}

// NewClassifier builds a classifier over the given rules
func NewClassifier(rules []domain.ClassificationRule, config ClassifierConfig) *Classifier {
	minLen := config.MinDescriptionLength
	if minLen <= 0 {
		minLen = DefaultMinDescriptionLength
	}

	c := &Classifier{
		rules:                rules,
		minDescriptionLength: minLen,
		kwToRules:            make(map[string][]int),
	}

	for idx, rule := range rules {
		for _, kw := range rule.Keywords {
			normalized := strings.ToLower(strings.TrimSpace(kw))
			if normalized == "" {
				continue
			}
			if _, exists := c.kwToRules[normalized]; !exists {
				c.keywords = append(c.keywords, normalized)
			}
			c.kwToRules[normalized] = appendUnique(c.kwToRules[normalized], idx)
		}
	}
	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}

	return c
}

// Rules returns the rule table the classifier was built with
func (c *Classifier) Rules() []domain.ClassificationRule {
	return c.rules
}

// ruleHit is one rule triggered by one pattern
type ruleHit struct {
	rule    int
	pattern string
}

// Classify decides where a block belongs. Blocks the predicate reports as organized
// get no destinations. A label is suggested independently of the routing outcome.
func (c *Classifier) Classify(block domain.Block, organized OrganizedPredicate) domain.ClassificationDecision {
	decision := domain.ClassificationDecision{
		BlockID:        block.ID,
		Destinations:   []domain.Destination{},
		SuggestedLabel: c.SuggestLabel(block),
	}

	if organized != nil && organized(block) {
		decision.Justification = justificationOrganized
		return decision
	}

	type signalHits struct {
		signal signal
		hits   []ruleHit
	}
	signals := []signalHits{
		{signalURL, c.matchDomain(block.SourceURL())},
		{signalTitle, c.matchKeywords(block.Title)},
		{signalDescription, c.matchKeywords(block.Description)},
	}
	if block.Class == domain.BlockText && block.Content != "" {
		signals = append(signals, signalHits{signalContent, c.matchKeywords(block.Content)})
	}
	signals = append(signals, signalHits{signalSourceTitle, c.matchKeywords(block.SourceTitle())})

	seen := make(map[string]bool)
	var fragments []string
	for _, s := range signals {
		if len(s.hits) == 0 {
			continue
		}
		fragments = append(fragments, c.describe(s.signal, s.hits))
		for _, hit := range s.hits {
			dest := c.rules[hit.rule].Destination
			if !seen[dest.Key()] {
				seen[dest.Key()] = true
				decision.Destinations = append(decision.Destinations, dest)
			}
		}
	}

	if len(fragments) == 0 {
		decision.Justification = justificationNoMatch
		return decision
	}
	decision.Justification = strings.Join(fragments, "; ")
	return decision
}

// matchDomain compares the source URL's host against every rule domain.
// Containment is accepted in both directions. Unparseable URLs match nothing.
func (c *Classifier) matchDomain(rawURL string) []ruleHit {
	domainName := extractDomain(rawURL)
	if domainName == "" {
		return nil
	}

	var hits []ruleHit
	for idx, rule := range c.rules {
		for _, pattern := range rule.Domains {
			pattern = strings.ToLower(strings.TrimSpace(pattern))
			if pattern == "" {
				continue
			}
			if strings.Contains(domainName, pattern) || strings.Contains(pattern, domainName) {
				hits = append(hits, ruleHit{rule: idx, pattern: pattern})
				break
			}
		}
	}
	return hits
}

// matchKeywords finds every rule keyword occurring in text, case-insensitively.
// Hits are ordered by rule, then by keyword registration order.
func (c *Classifier) matchKeywords(text string) []ruleHit {
	if c.matcher == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	found := c.matcher.Match([]byte(strings.ToLower(text)))
	c.mu.Unlock()

	sort.Ints(found)

	var hits []ruleHit
	matchedRules := make(map[int]bool)
	for _, kwIdx := range found {
		if kwIdx >= len(c.keywords) {
			continue
		}
		keyword := c.keywords[kwIdx]
		for _, ruleIdx := range c.kwToRules[keyword] {
			if matchedRules[ruleIdx] {
				continue
			}
			matchedRules[ruleIdx] = true
			hits = append(hits, ruleHit{rule: ruleIdx, pattern: keyword})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].rule < hits[j].rule
	})
	return hits
}

func (c *Classifier) describe(s signal, hits []ruleHit) string {
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("%q → %s", hit.pattern, c.rules[hit.rule].Destination.Key()))
	}
	if s == signalURL {
		return "URL matches " + strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s contains %s", strings.ToUpper(string(s[:1]))+string(s[1:]), strings.Join(parts, ", "))
}

// SuggestLabel proposes a description for blocks that lack a meaningful one.
// The label starts with a bracketed provider, domain or type tag and continues with the
// source title, truncated, when it differs from the block title.
func (c *Classifier) SuggestLabel(block domain.Block) string {
	if utf8.RuneCountInString(strings.TrimSpace(block.Description)) > c.minDescriptionLength {
		return ""
	}

	var tag string
	switch {
	case block.Source != nil && block.Source.Provider != "":
		tag = block.Source.Provider
	case extractDomain(block.SourceURL()) != "":
		tag = extractDomain(block.SourceURL())
	case block.Class != "":
		tag = strings.ToLower(string(block.Class))
	}

	var parts []string
	if tag != "" {
		parts = append(parts, "["+tag+"]")
	}

	sourceTitle := strings.TrimSpace(block.SourceTitle())
	if sourceTitle != "" && !strings.EqualFold(sourceTitle, strings.TrimSpace(block.Title)) {
		parts = append(parts, truncate(sourceTitle, maxLabelTitleLength))
	}

	return strings.Join(parts, " ")
}

// extractDomain returns the lowercase host of rawURL without a leading "www.",
// or an empty string when the URL cannot be parsed or carries no host.
func extractDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}

func appendUnique(list []int, v int) []int {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
