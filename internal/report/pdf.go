package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/sanctionguard/internal/screening"
)

const reportCSS = `
body{font-family:Arial,Helvetica,sans-serif;color:#1c1917;background:#fff;margin:0;padding:0.6rem;font-size:11pt;}
.pdf-wrap{max-width:1000px;margin:0 auto;}
.report-meta{color:#44403c;font-size:0.85rem;margin-bottom:0.5rem;}
h1{text-align:center;font-size:1.1rem;border-bottom:1px solid #a8a29e;padding-bottom:0.4rem;}
h2{font-size:1rem;margin-top:1.2rem;}
h2[data-verdict="high"]{color:#dc2626;}
h2[data-verdict="low"]{color:#15803d;}
h2[data-section="prosecution"]{color:#c83232;}
h2[data-section="defense"]{color:#3232c8;}
table{width:100%;border-collapse:collapse;border:1px solid #a8a29e;font-size:0.8rem;}
th,td{border:1px solid #a8a29e;padding:0.35rem 0.45rem;text-align:left;vertical-align:top;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
@media print{ @page{size:auto;margin:12mm;} body{padding:0;} }
`

// PDFRenderer turns report markdown into a PDF through headless Chromium.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

// NewPDFRenderer uses chromePath, or the first Chromium found on the usual
// paths when it is empty.
func NewPDFRenderer(chromePath string) *PDFRenderer {
	if strings.TrimSpace(chromePath) == "" {
		chromePath = detectChromePath()
	}
	return &PDFRenderer{chromePath: chromePath, timeout: 30 * time.Second}
}

func (r *PDFRenderer) RenderCase(ctx context.Context, rec screening.CaseRecord) ([]byte, error) {
	meta := fmt.Sprintf("<div><strong>Reference:</strong> %s</div><div><strong>Generated:</strong> %s</div>",
		html.EscapeString(rec.ID), html.EscapeString(time.Now().Format("January 2, 2006 at 3:04 PM MST")))
	return r.render(ctx, BuildMarkdown(rec), meta)
}

func (r *PDFRenderer) Render(ctx context.Context, markdown string) ([]byte, error) {
	return r.render(ctx, markdown, "")
}

func (r *PDFRenderer) render(ctx context.Context, markdown, metaHTML string) ([]byte, error) {
	htmlDoc, err := buildHTML(markdown, metaHTML)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := printParams().Do(ctx)
			pdf = out
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

// printParams lays the case out on US Letter with the disclaimer and page
// number in the footer.
func printParams() *page.PrintToPDFParams {
	footer := `<div style="width:100%;padding:0 0.45in;font-size:7px;color:#78716c;font-style:italic;display:flex;justify-content:space-between;">` +
		`<span>` + html.EscapeString(Disclaimer) + `</span><span>Page <span class="pageNumber"></span> of <span class="totalPages"></span></span></div>`
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithDisplayHeaderFooter(true).
		WithHeaderTemplate(`<div></div>`).
		WithFooterTemplate(footer).
		WithPaperWidth(8.5).
		WithPaperHeight(11).
		WithMarginTop(0.6).
		WithMarginBottom(0.8).
		WithMarginLeft(0.6).
		WithMarginRight(0.6)
}

func buildHTML(markdown, metaHTML string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(Title) + "</title>" +
		"<style>" + reportCSS + "</style></head><body><div class='pdf-wrap'>" +
		"<div class='report-meta'>" + metaHTML + "</div>" +
		"<div class='report-html'>" + applyPrintLayoutHooks(content.String()) + "</div>" +
		"</div></body></html>", nil
}

var (
	reVerdictHeading = regexp.MustCompile(`<h2([^>]*)>\s*(VERDICT:[^<]*)</h2>`)
	reSectionHeading = regexp.MustCompile(`<h2([^>]*)>\s*(PROSECUTION|DEFENSE)\s*</h2>`)
)

// applyPrintLayoutHooks tags the verdict heading with its risk level and the
// argument headings with their side, for colouring.
func applyPrintLayoutHooks(contentHTML string) string {
	out := reVerdictHeading.ReplaceAllStringFunc(contentHTML, func(m string) string {
		parts := reVerdictHeading.FindStringSubmatch(m)
		level := "low"
		if strings.Contains(parts[2], "HIGH") {
			level = "high"
		} else if strings.Contains(parts[2], screening.NoVerdict) {
			return m
		}
		return `<h2` + parts[1] + ` data-verdict="` + level + `">` + parts[2] + `</h2>`
	})
	return reSectionHeading.ReplaceAllStringFunc(out, func(m string) string {
		parts := reSectionHeading.FindStringSubmatch(m)
		return `<h2` + parts[1] + ` data-section="` + strings.ToLower(parts[2]) + `">` + parts[2] + `</h2>`
	})
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
