package models

import "time"

// FragmentName identifies a prompt fragment. Fragments are resolved by
// enum, not by free-form filename, so a typo cannot silently load the
// wrong node instructions.
type FragmentName string

const (
	// FragmentBase is the mandatory base instruction block. A chat turn
	// cannot proceed without it.
	FragmentBase FragmentName = "base"
	// FragmentNodeBias holds the cognitive-bias reflection node instructions
	FragmentNodeBias FragmentName = "node_bias"
	// FragmentNodeRiskGuard holds the risk-guard node instructions
	FragmentNodeRiskGuard FragmentName = "node_risk_guard"
	// FragmentNodeMarket holds the market/news node instructions
	FragmentNodeMarket FragmentName = "node_nm"
	// FragmentNodePerformance holds the performance-evaluation node instructions
	FragmentNodePerformance FragmentName = "node_aisg"
	// FragmentNodeCompliance holds the compliance node instructions
	FragmentNodeCompliance FragmentName = "node_compliance"
	// FragmentNodeSolidGroup holds the organization-context node instructions
	FragmentNodeSolidGroup FragmentName = "node_solid_group"
)

// FragmentNames lists every known fragment
var FragmentNames = []FragmentName{
	FragmentBase,
	FragmentNodeBias,
	FragmentNodeRiskGuard,
	FragmentNodeMarket,
	FragmentNodePerformance,
	FragmentNodeCompliance,
	FragmentNodeSolidGroup,
}

// IsValid reports whether the name is a known fragment
func (n FragmentName) IsValid() bool {
	for _, known := range FragmentNames {
		if n == known {
			return true
		}
	}
	return false
}

// PromptFragment is a named instruction block stored in the database
// and managed by operators through the configure CLI. Missing fragments
// degrade silently except for the base fragment.
type PromptFragment struct {
	Name      FragmentName `json:"name"`
	Content   string       `json:"content"`
	UpdatedAt time.Time    `json:"updated_at"`
}
