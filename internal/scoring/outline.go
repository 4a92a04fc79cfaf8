package scoring

import (
	"strings"

	"github.com/mkarpov/interview-coach/internal/i18n"
)

// Outline produces the fixed-template STAR coaching outline for an answer,
// including the list of missing elements. Pure text formatting; it does not
// affect scoring.
func Outline(answer string) string {
	cov := starCoverage(answer)
	var missing []string
	for _, el := range starElements {
		if !cov[el.name] {
			missing = append(missing, strings.ToUpper(el.name))
		}
	}

	parts := i18n.T("OutlineAllPresent")
	if len(missing) > 0 {
		parts = strings.Join(missing, " / ")
	}

	lines := []string{
		i18n.T("OutlineTitle"),
		i18n.T("OutlineSituation"),
		i18n.T("OutlineTask"),
		i18n.T("OutlineAction"),
		i18n.T("OutlineResult"),
		i18n.Td("OutlineMissing", map[string]any{"Parts": parts}),
	}
	return strings.Join(lines, "\n")
}
