package content

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatTitle turns a slug like "neonatal-jaundice" into display form
// ("Neonatal Jaundice"). Pure; safe to apply to already-formatted input.
//
// NoLower keeps non-leading letters as-is, matching the portal's display
// rule (only the first letter of each word changes case). That also makes
// FormatTitle idempotent. The Caser is built per call: a Caser carries
// transform state and is not safe for concurrent use, and FormatTitle runs
// inside concurrent discovery and resolution fetches.
func FormatTitle(slug string) string {
	caser := cases.Title(language.English, cases.NoLower)
	return caser.String(strings.ReplaceAll(slug, "-", " "))
}
