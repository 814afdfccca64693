// Package report renders screening case records as markdown and PDF.
package report

import (
	"fmt"
	"strings"

	"github.com/joelkehle/sanctionguard/internal/screening"
)

const Title = "SanctionGuard AI // Tribunal Record"

const Disclaimer = "This record is produced by automated name matching and language-model argument. " +
	"A name match is not an identity match. Confirm with additional identifiers before acting."

// BuildMarkdown renders a case record. Records without a verdict still render
// their status and message.
func BuildMarkdown(rec screening.CaseRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "## CASE: %s\n\n", strings.ToUpper(rec.Query))
	fmt.Fprintf(&b, "- Case ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "- Date: %s\n", rec.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Country: %s\n", rec.Country)
	fmt.Fprintf(&b, "- Status: %s\n\n", rec.Status)

	if rec.Verdict != nil {
		fmt.Fprintf(&b, "## VERDICT: %s (%d%%)\n\n", rec.Verdict.Label, rec.Verdict.Confidence)
	} else {
		fmt.Fprintf(&b, "## VERDICT: %s\n\n", screening.NoVerdict)
	}

	if rec.Match != nil {
		fmt.Fprintf(&b, "- Match: %s (%d%%)\n", rec.Match.Name, rec.ScorePercent())
		if len(rec.Match.Programs) > 0 {
			fmt.Fprintf(&b, "- Programs: %s\n", strings.Join(rec.Match.Programs, ", "))
		}
		if len(rec.Match.Addresses) > 0 {
			fmt.Fprintf(&b, "- Addresses: %s\n", strings.Join(rec.Match.Addresses, "; "))
		}
	} else {
		fmt.Fprintf(&b, "- Best score: %d%%\n", rec.ScorePercent())
	}
	switch {
	case rec.Verdict != nil:
		fmt.Fprintf(&b, "- Reasoning: %s\n\n", rec.Verdict.Reasoning)
	case rec.Message != "":
		fmt.Fprintf(&b, "- Reasoning: %s\n\n", rec.Message)
	default:
		b.WriteString("\n")
	}

	if rec.Prosecution != "" {
		fmt.Fprintf(&b, "## PROSECUTION\n\n%s\n\n", rec.Prosecution)
	}
	if rec.Defense != "" {
		fmt.Fprintf(&b, "## DEFENSE\n\n%s\n\n", rec.Defense)
	}
	fmt.Fprintf(&b, "---\n\n_%s_\n", Disclaimer)
	return b.String()
}
