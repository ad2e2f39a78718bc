package identity

import (
	"regexp"
	"testing"
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

func TestCompany_Deterministic(t *testing.T) {
	a := Company("NVIDIA", "NVDA")
	b := Company("NVIDIA", "NVDA")
	if a != b {
		t.Errorf("same input produced different ids: %s vs %s", a, b)
	}
	if !idPattern.MatchString(a) {
		t.Errorf("id is not 24 lowercase hex chars: %q", a)
	}
}

func TestCompany_Normalization(t *testing.T) {
	base := Company("NVIDIA", "NVDA")

	tests := []struct {
		name   string
		ticker string
		want   bool // same id as base
	}{
		{"nvidia", "nvda", true},
		{"  NVIDIA  ", " NVDA ", true},
		{"NVIDIA", "", false},
		{"NVIDIA Corp", "NVDA", false},
	}
	for _, tt := range tests {
		got := Company(tt.name, tt.ticker)
		if (got == base) != tt.want {
			t.Errorf("Company(%q, %q): same-as-base=%v, want %v", tt.name, tt.ticker, got == base, tt.want)
		}
	}
}

func TestEvent_FieldOrderMatters(t *testing.T) {
	companyID := Company("NVIDIA", "NVDA")

	a := Event(companyID, "earnings", "Q3-2025")
	b := Event(companyID, "earnings", "Q3-2025")
	if a != b {
		t.Error("identical event inputs produced different ids")
	}

	// Swapping type and period must change the id.
	c := Event(companyID, "Q3-2025", "earnings")
	if a == c {
		t.Error("swapped fields produced the same id")
	}

	// Event ids are case-sensitive in the period label.
	d := Event(companyID, "earnings", "q3-2025")
	if a == d {
		t.Error("period label casing should affect event id")
	}
}

func TestSource_TrimmedNotLowercased(t *testing.T) {
	a := Source("https://example.com/NVDA-Recap")
	b := Source("  https://example.com/NVDA-Recap  ")
	if a != b {
		t.Error("surrounding whitespace should not affect source id")
	}

	c := Source("https://example.com/nvda-recap")
	if a == c {
		t.Error("URL paths are case-sensitive; ids must differ")
	}
}

func TestClaim_Normalization(t *testing.T) {
	base := Claim("NVIDIA", "Q3-2025", "guidance", "", "Guidance was raised.")

	tests := []struct {
		name                                  string
		company, period, typ, timeframe, text string
		same                                  bool
	}{
		{"identical", "NVIDIA", "Q3-2025", "guidance", "", "Guidance was raised.", true},
		{"case-insensitive", "nvidia", "q3-2025", "GUIDANCE", "", "guidance was raised.", true},
		{"trimmed", " NVIDIA ", " Q3-2025 ", " guidance ", "  ", " Guidance was raised. ", true},
		{"timeframe distinguishes", "NVIDIA", "Q3-2025", "guidance", "next quarter", "Guidance was raised.", false},
		{"text distinguishes", "NVIDIA", "Q3-2025", "guidance", "", "Guidance was lowered.", false},
		{"type distinguishes", "NVIDIA", "Q3-2025", "revenue", "", "Guidance was raised.", false},
		{"period distinguishes", "NVIDIA", "Q2-2025", "guidance", "", "Guidance was raised.", false},
	}
	for _, tt := range tests {
		got := Claim(tt.company, tt.period, tt.typ, tt.timeframe, tt.text)
		if (got == base) == tt.same {
			continue
		}
		t.Errorf("%s: same-as-base=%v, want %v", tt.name, got == base, tt.same)
	}
}

func TestClaim_InternalWhitespacePreserved(t *testing.T) {
	a := Claim("NVIDIA", "Q3-2025", "demand", "", "demand stayed strong")
	b := Claim("NVIDIA", "Q3-2025", "demand", "", "demand  stayed strong")
	if a == b {
		t.Error("internal whitespace is identity-relevant; ids must differ")
	}
}

func TestSignal_Deterministic(t *testing.T) {
	companyID := Company("Tesla", "TSLA")
	eventID := Event(companyID, "earnings", "Q3-2025")

	a := Signal(companyID, eventID, "sentiment", "post_earnings_7d")
	b := Signal(companyID, eventID, "sentiment", "post_earnings_7d")
	if a != b {
		t.Error("identical signal inputs produced different ids")
	}
	if a == Signal(companyID, eventID, "sentiment", "post_earnings_30d") {
		t.Error("window must distinguish signal ids")
	}
}

func TestSchemes_DoNotCollide(t *testing.T) {
	// The literal kind prefix keeps entity kinds in separate id spaces.
	company := Company("x", "y")
	event := Event("x", "y", "")
	if company == event {
		t.Error("company and event id spaces collided")
	}
}
