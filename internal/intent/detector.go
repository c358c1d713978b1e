package intent

import "strings"

// Detector evaluates the per-tag rule tables against message text.
// It is pure and deterministic given its tables; the zero-dependency
// construction makes it safe to share across requests.
type Detector struct {
	rules            []tagRule
	decisionWords    []string
	uncertaintyWords []string
}

// NewDetector creates a detector with the default rule tables
func NewDetector() *Detector {
	return &Detector{
		rules:            defaultRules,
		decisionWords:    decisionWords,
		uncertaintyWords: uncertaintyWords,
	}
}

// Detect returns the set of tags the message triggers, in the fixed
// vocabulary order. Detectors are independent and non-exclusive: a
// message may trigger zero, one or many tags.
func (d *Detector) Detect(message string) []Tag {
	lower := strings.ToLower(message)

	var tags []Tag
	for _, rule := range d.rules {
		if matchRule(rule, message, lower) {
			tags = append(tags, rule.tag)
			continue
		}
		if rule.tag == TagBias && d.matchesCompoundBias(lower) {
			tags = append(tags, TagBias)
		}
	}

	return tags
}

// Has reports whether the detection result contains the tag
func Has(tags []Tag, tag Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// matchRule fires when any keyword substring or any pattern matches
func matchRule(rule tagRule, original, lower string) bool {
	for _, kw := range rule.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, pattern := range rule.patterns {
		if pattern.MatchString(original) {
			return true
		}
	}
	return false
}

// matchesCompoundBias fires when the message pairs a decision word with
// an uncertainty word, even absent explicit bias vocabulary.
func (d *Detector) matchesCompoundBias(lower string) bool {
	return containsAny(lower, d.decisionWords) && containsAny(lower, d.uncertaintyWords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
