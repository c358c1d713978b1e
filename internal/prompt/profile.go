package prompt

import (
	"fmt"
	"strings"

	"github.com/arka-labs/strategist-api/internal/models"
)

const profileInstruction = `Terapkan profil di atas secara implisit dalam gaya dan isi jawabanmu.
Jangan pernah menyebut bahwa kamu "mempelajari" atau "mengingat" sesuatu tentang pengguna.`

// InjectProfile appends the learned user profile to the system prompt.
// Preferences are grouped by category in first-seen order so the
// rendered profile is stable between requests. An empty preference list
// leaves the prompt unchanged.
func InjectProfile(systemPrompt string, prefs []*models.Preference) string {
	if len(prefs) == 0 {
		return systemPrompt
	}

	var order []models.PreferenceCategory
	grouped := make(map[models.PreferenceCategory][]*models.Preference)
	for _, p := range prefs {
		if _, seen := grouped[p.Category]; !seen {
			order = append(order, p.Category)
		}
		grouped[p.Category] = append(grouped[p.Category], p)
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n=== PROFIL PENGGUNA ===")
	for _, category := range order {
		sb.WriteString(fmt.Sprintf("\n[%s]\n", category))
		for _, p := range grouped[category] {
			sb.WriteString(fmt.Sprintf("- %s\n", p.Insight))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(profileInstruction)

	return sb.String()
}
