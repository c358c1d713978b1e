// Package intent classifies free-text chat messages into domain tags.
// Detection is table-driven: each tag owns a curated keyword list and a
// set of compiled patterns, and a generic evaluator fires the tag when
// any keyword or any pattern matches. Extending a tag means editing its
// table, not the control flow.
package intent

// Tag is one of the fixed domain classifications a message may trigger.
// A message can carry zero, one or many tags.
type Tag string

const (
	// TagBias marks decision-anxiety and cognitive-bias territory
	TagBias Tag = "bias"
	// TagRiskGuard marks risk assessment and downside questions
	TagRiskGuard Tag = "risk_guard"
	// TagMarketNews marks market, news and competitor questions
	TagMarketNews Tag = "nm"
	// TagPerformance marks performance evaluation questions
	TagPerformance Tag = "aisg"
	// TagCompliance marks regulatory and legal questions
	TagCompliance Tag = "compliance"
	// TagSolidGroup marks internal organization context
	TagSolidGroup Tag = "solid_group"
)

// AllTags lists the vocabulary in detection order
var AllTags = []Tag{
	TagBias,
	TagRiskGuard,
	TagMarketNews,
	TagPerformance,
	TagCompliance,
	TagSolidGroup,
}
