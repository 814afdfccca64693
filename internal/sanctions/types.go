// Package sanctions holds the consolidated sanctions database model shared by
// the builder, the matcher and the screening session.
package sanctions

import "time"

const (
	SourceOFAC = "US_OFAC"

	DefaultID      = "N/A"
	DefaultName    = "Unknown"
	DefaultType    = "Entity"
	DefaultCountry = "Unknown"

	DefaultDatabaseFile = "consolidated_sanctions.json"

	// TimestampLayout is the last_updated format written by the builder.
	TimestampLayout = "2006-01-02 15:04:05"
)

type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
)

type Entity struct {
	Source    string   `json:"source"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Programs  []string `json:"programs"`
	Addresses []string `json:"addresses"`
	Remarks   string   `json:"remarks"`
}

type RiskCountry struct {
	Name      string    `json:"name"`
	RiskLevel RiskLevel `json:"risk_level"`
	Reason    string    `json:"reason"`
}

type Database struct {
	LastUpdated     string                 `json:"last_updated"`
	RiskDefinitions map[string]RiskCountry `json:"risk_definitions"`
	Entities        []Entity               `json:"entities"`
}

// NewDatabase stamps a database document with the build time and the static
// risk table.
func NewDatabase(entities []Entity, builtAt time.Time) Database {
	if entities == nil {
		entities = []Entity{}
	}
	return Database{
		LastUpdated:     builtAt.Format(TimestampLayout),
		RiskDefinitions: HighRiskCountries(),
		Entities:        entities,
	}
}
