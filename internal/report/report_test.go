package report

import (
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/sanctionguard/internal/sanctions"
	"github.com/joelkehle/sanctionguard/internal/screening"
	"github.com/joelkehle/sanctionguard/internal/tribunal"
)

func flagged() screening.CaseRecord {
	return screening.CaseRecord{
		ID:          "c-1",
		CreatedAt:   time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		Query:       "Pegah Aluminum",
		Country:     "Iran",
		Status:      screening.StatusFlagged,
		Score:       97.4,
		Match:       &sanctions.Entity{Name: "PEGAH ALUMINUM CO", Programs: []string{"IRAN"}, Addresses: []string{"Tehran, Iran"}},
		Prosecution: "Your Honor, this is a clear match.",
		Defense:     "Your Honor, I object.",
		Verdict:     &tribunal.Verdict{Label: tribunal.HighRisk, Confidence: 87, Reasoning: "strong match"},
	}
}

func TestBuildMarkdownFlagged(t *testing.T) {
	md := BuildMarkdown(flagged())
	for _, want := range []string{
		"# SanctionGuard AI // Tribunal Record",
		"## CASE: PEGAH ALUMINUM",
		"- Date: 2026-10-16",
		"## VERDICT: HIGH RISK (87%)",
		"- Match: PEGAH ALUMINUM CO (97%)",
		"- Reasoning: strong match",
		"## PROSECUTION\n\nYour Honor, this is a clear match.",
		"## DEFENSE\n\nYour Honor, I object.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestBuildMarkdownError(t *testing.T) {
	rec := flagged()
	rec.Status = screening.StatusError
	rec.Verdict = nil
	rec.Prosecution, rec.Defense = "", ""
	rec.Message = screening.JudicialErrorMessage
	md := BuildMarkdown(rec)
	if !strings.Contains(md, "## VERDICT: N/A") || !strings.Contains(md, screening.JudicialErrorMessage) {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if strings.Contains(md, "PROSECUTION") {
		t.Fatal("empty arguments should be omitted")
	}
}

func TestBuildHTMLAppliesHooks(t *testing.T) {
	out, err := buildHTML(BuildMarkdown(flagged()), "<div>meta</div>")
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	for _, want := range []string{
		`data-verdict="high"`,
		`data-section="prosecution"`,
		`data-section="defense"`,
		"<div>meta</div>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("html missing %q", want)
		}
	}
}

func TestApplyPrintLayoutHooksLowRisk(t *testing.T) {
	out := applyPrintLayoutHooks("<h2>VERDICT: LOW RISK (20%)</h2>")
	if out != `<h2 data-verdict="low">VERDICT: LOW RISK (20%)</h2>` {
		t.Fatalf("unexpected: %s", out)
	}
}

func TestApplyPrintLayoutHooksNoopWithoutVerdict(t *testing.T) {
	in := "<h2>VERDICT: N/A</h2><p>x</p>"
	if out := applyPrintLayoutHooks(in); out != in {
		t.Fatalf("expected no change, got %s", out)
	}
}

func TestNewPDFRendererKeepsExplicitPath(t *testing.T) {
	r := NewPDFRenderer("/opt/chrome")
	if r.chromePath != "/opt/chrome" {
		t.Fatalf("chromePath %q", r.chromePath)
	}
}

func TestPrintParamsFooterCarriesDisclaimer(t *testing.T) {
	p := printParams()
	if p.PaperWidth != 8.5 || p.PaperHeight != 11 {
		t.Fatalf("expected letter paper, got %vx%v", p.PaperWidth, p.PaperHeight)
	}
	if !strings.Contains(p.FooterTemplate, "pageNumber") {
		t.Fatalf("footer missing page number: %s", p.FooterTemplate)
	}
	if !strings.Contains(p.FooterTemplate, "automated name matching") {
		t.Fatalf("footer missing disclaimer: %s", p.FooterTemplate)
	}
}
