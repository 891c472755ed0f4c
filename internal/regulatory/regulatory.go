// Package regulatory provides the seeded catalog of regulatory updates
// served by the API. Updates are static reference data; the catalog only
// filters, it never scores.
package regulatory

import "strings"

// Update describes a single regulatory change and the actions it requires.
type Update struct {
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Jurisdiction string   `json:"jurisdiction"`
	Category     string   `json:"category"`
	Summary      string   `json:"summary"`
	ActionItems  []string `json:"actionItems,omitempty"`
}

// Catalog holds the update set and answers filtered queries.
type Catalog struct {
	updates []Update
}

// NewCatalog returns a catalog seeded with the bundled update set.
func NewCatalog() *Catalog {
	return &Catalog{updates: seedUpdates()}
}

// NewCatalogWith returns a catalog over the given updates. Used by tests
// and by deployments that load updates from an external feed.
func NewCatalogWith(updates []Update) *Catalog {
	return &Catalog{updates: updates}
}

// All returns every update in the catalog.
func (c *Catalog) All() []Update {
	out := make([]Update, len(c.updates))
	copy(out, c.updates)
	return out
}

// Filter returns updates matching both filters. Empty filter values match
// everything; comparisons are case-insensitive. Unknown values yield an
// empty slice, never an error.
func (c *Catalog) Filter(jurisdiction, category string) []Update {
	out := make([]Update, 0, len(c.updates))
	for _, u := range c.updates {
		if jurisdiction != "" && !strings.EqualFold(u.Jurisdiction, jurisdiction) {
			continue
		}
		if category != "" && !strings.EqualFold(u.Category, category) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func seedUpdates() []Update {
	return []Update{
		{
			Title:        "New AML Reporting Requirements",
			Date:         "2025-03-01",
			Jurisdiction: "United States",
			Category:     "Anti-Money Laundering",
			Summary:      "The Financial Crimes Enforcement Network (FinCEN) has issued new guidelines for reporting suspicious transactions related to cryptocurrency exchanges.",
			ActionItems: []string{
				"Update AML monitoring systems",
				"Train compliance staff on new requirements",
				"Implement enhanced due diligence for crypto transactions",
			},
		},
		{
			Title:        "ESG Disclosure Framework",
			Date:         "2025-02-15",
			Jurisdiction: "European Union",
			Category:     "ESG Compliance",
			Summary:      "The European Securities and Markets Authority (ESMA) has finalized the new ESG disclosure framework for financial products.",
			ActionItems: []string{
				"Assess current ESG reporting capabilities",
				"Implement new disclosure templates",
				"Review investment products for compliance",
			},
		},
		{
			Title:        "Beneficial Ownership Registry Deadline",
			Date:         "2025-01-10",
			Jurisdiction: "United States",
			Category:     "Customer Due Diligence",
			Summary:      "FinCEN reminds covered institutions of the beneficial ownership information reporting deadline under the Corporate Transparency Act.",
			ActionItems: []string{
				"Verify beneficial ownership records for corporate customers",
				"File outstanding beneficial ownership reports",
			},
		},
		{
			Title:        "Travel Rule Threshold Consultation",
			Date:         "2024-11-20",
			Jurisdiction: "United Kingdom",
			Category:     "Anti-Money Laundering",
			Summary:      "The FCA has opened a consultation on lowering the wire transfer information-sharing threshold for virtual asset service providers.",
			ActionItems: []string{
				"Review cross-border transfer data capture",
				"Respond to the consultation before the closing date",
			},
		},
		{
			Title:        "Marketing Communications Guidance",
			Date:         "2024-10-05",
			Jurisdiction: "European Union",
			Category:     "Conduct",
			Summary:      "ESMA guidance clarifies that performance projections in retail marketing must carry balanced risk statements and must not imply guaranteed returns.",
			ActionItems: []string{
				"Audit outbound marketing templates",
				"Retrain client-facing staff on permitted language",
			},
		},
	}
}
