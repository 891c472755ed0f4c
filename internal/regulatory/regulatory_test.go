package regulatory

import "testing"

func TestFilterConjunctive(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		name         string
		jurisdiction string
		category     string
		want         int
	}{
		{"no filters returns all", "", "", len(catalog.All())},
		{"jurisdiction only", "United States", "", 2},
		{"category only", "", "Anti-Money Laundering", 2},
		{"both filters", "United States", "Anti-Money Laundering", 1},
		{"case insensitive", "united states", "anti-money laundering", 1},
		{"unknown jurisdiction", "Atlantis", "", 0},
		{"unknown category", "", "Quantum Compliance", 0},
		{"mismatched pair", "European Union", "Anti-Money Laundering", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Filter(tt.jurisdiction, tt.category)
			if len(got) != tt.want {
				t.Errorf("Filter(%q, %q) returned %d updates, want %d",
					tt.jurisdiction, tt.category, len(got), tt.want)
			}
		})
	}
}

func TestFilterReturnsMatchingUpdate(t *testing.T) {
	catalog := NewCatalog()

	got := catalog.Filter("United States", "Anti-Money Laundering")
	if len(got) != 1 {
		t.Fatalf("expected 1 update, got %d", len(got))
	}
	if got[0].Title != "New AML Reporting Requirements" {
		t.Errorf("unexpected update: %s", got[0].Title)
	}
	if len(got[0].ActionItems) == 0 {
		t.Error("expected action items on the update")
	}
}

func TestAllReturnsCopy(t *testing.T) {
	catalog := NewCatalog()

	all := catalog.All()
	all[0].Title = "mutated"

	if catalog.All()[0].Title == "mutated" {
		t.Error("All must not expose the internal slice")
	}
}
