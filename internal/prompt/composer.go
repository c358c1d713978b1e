package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arka-labs/strategist-api/internal/intent"
)

// ErrBaseFragmentMissing means the mandatory base instructions could
// not be loaded. No chat turn can proceed without them.
var ErrBaseFragmentMissing = errors.New("base prompt fragment missing")

// nodePriority is the fixed order node fragments are appended in.
// BIAS leads because reflective framing must precede analytical nodes;
// the order is load-bearing for how the model weighs the instructions.
var nodePriority = []intent.Tag{
	intent.TagBias,
	intent.TagRiskGuard,
	intent.TagMarketNews,
	intent.TagPerformance,
	intent.TagCompliance,
	intent.TagSolidGroup,
}

const (
	multiNodeBiasInstruction = `CATATAN MULTI-NODE: Beberapa konteks aktif sekaligus dan node BIAS termasuk di antaranya.
Turunkan semua perilaku memberi saran: utamakan framing reflektif, bantu pengguna memeriksa asumsinya sendiri sebelum menyentuh analisis dari node lain.`

	multiNodeGenericInstruction = `CATATAN MULTI-NODE: Beberapa konteks aktif sekaligus.
Sajikan beberapa sudut pandang, beri batasan pada tiap klaim, dan hindari kesimpulan tunggal yang terlalu percaya diri.`
)

// Composer assembles the system prompt from the base fragment and the
// node fragments of the active tags.
type Composer struct {
	loader FragmentLoader
}

// NewComposer creates a composer using the given fragment loader
func NewComposer(loader FragmentLoader) *Composer {
	return &Composer{loader: loader}
}

// Compose builds the system prompt for the active tags and reports
// which nodes contributed. A tag counts as used only when its fragment
// actually loaded and was appended; a detected tag with a missing
// fragment contributes nothing and is not reported.
func (c *Composer) Compose(ctx context.Context, tags []intent.Tag) (string, []string, error) {
	base, err := c.loader.Load(ctx, "base")
	if err != nil {
		return "", nil, fmt.Errorf("failed to load base fragment: %w", err)
	}
	if base == "" {
		return "", nil, ErrBaseFragmentMissing
	}

	var sb strings.Builder
	sb.WriteString(base)

	var nodesUsed []string
	riskActive := intent.Has(tags, intent.TagRiskGuard)

	for _, tag := range nodePriority {
		if !intent.Has(tags, tag) {
			continue
		}

		fragment, err := c.loader.Load(ctx, nodeFragments[tag])
		if err != nil || fragment == "" {
			// Optional fragments degrade silently
			continue
		}

		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf("=== KONTEKS NODE AKTIF: %s ===\n", strings.ToUpper(string(tag))))
		if tag == intent.TagMarketNews && riskActive {
			sb.WriteString("(Node ini subordinat terhadap RISK_GUARD: konteks pasar melayani analisis risiko, bukan sebaliknya.)\n")
		}
		sb.WriteString(fragment)

		nodesUsed = append(nodesUsed, string(tag))
	}

	if len(nodesUsed) > 1 {
		sb.WriteString("\n\n")
		if containsString(nodesUsed, string(intent.TagBias)) {
			sb.WriteString(multiNodeBiasInstruction)
		} else {
			sb.WriteString(multiNodeGenericInstruction)
		}
	}

	return sb.String(), nodesUsed, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
