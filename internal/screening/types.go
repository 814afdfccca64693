package screening

import (
	"strings"
	"time"

	"github.com/joelkehle/sanctionguard/internal/sanctions"
	"github.com/joelkehle/sanctionguard/internal/tribunal"
)

type Status string

const (
	StatusClear   Status = "CLEAR"
	StatusFlagged Status = "FLAGGED"
	StatusError   Status = "ERROR"
)

const (
	NoMatchReasoning     = "No close match found."
	JudicialErrorMessage = "Judicial Error: Could not reach a verdict."
	NoVerdict            = "N/A"
)

type Input struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// CaseRecord is the outcome of one single-entity screening.
type CaseRecord struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	Query       string            `json:"query"`
	Country     string            `json:"country"`
	Status      Status            `json:"status"`
	Threshold   int               `json:"threshold"`
	Score       float64           `json:"score"`
	Match       *sanctions.Entity `json:"match,omitempty"`
	Prosecution string            `json:"prosecution,omitempty"`
	Defense     string            `json:"defense,omitempty"`
	Verdict     *tribunal.Verdict `json:"verdict,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// ScorePercent is the score as shown to users.
func (c CaseRecord) ScorePercent() int { return int(c.Score) }

// HighRisk reports a flagged case with a HIGH RISK verdict.
func (c CaseRecord) HighRisk() bool {
	return c.Status == StatusFlagged && c.Verdict != nil && c.Verdict.Label == tribunal.HighRisk
}

// ReportFilename is the download name for the case PDF.
func (c CaseRecord) ReportFilename() string {
	return "SanctionGuard_Case_" + strings.ReplaceAll(c.Query, " ", "_") + ".pdf"
}

// BatchRow is one line of batch output.
type BatchRow struct {
	EntityName string `json:"entity_name"`
	Country    string `json:"country,omitempty"`
	Status     Status `json:"status"`
	MatchScore int    `json:"match_score"`
	Verdict    string `json:"verdict"`
	Reasoning  string `json:"reasoning"`
}

type BatchProgressFn func(done, total int, name string)

type Stats struct {
	Entities    int    `json:"entities"`
	Degraded    bool   `json:"degraded"`
	LastUpdated string `json:"last_updated,omitempty"`
	Threshold   int    `json:"threshold"`
}
