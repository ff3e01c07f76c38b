package refurbish

import "testing"

func warnings(n int) []Indicator {
	out := make([]Indicator, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Indicator{Name: "w", Detected: true, Description: "code", Severity: SeverityWarning})
	}
	return out
}

func infos(n int) []Indicator {
	out := make([]Indicator, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Indicator{Name: "i", Detected: true, Description: "code", Severity: SeverityInfo})
	}
	return out
}

func TestScoreConfidence(t *testing.T) {
	critical := Indicator{Name: "c", Detected: true, Description: "code", Severity: SeverityCritical}

	tests := []struct {
		name       string
		indicators []Indicator
		want       Confidence
	}{
		{name: "none", indicators: nil, want: ConfidenceLow},
		{name: "one info", indicators: infos(1), want: ConfidenceLow},
		{name: "two info", indicators: infos(2), want: ConfidenceMedium},
		{name: "one warning", indicators: warnings(1), want: ConfidenceMedium},
		{name: "two warnings", indicators: warnings(2), want: ConfidenceHigh},
		{name: "three warnings", indicators: warnings(3), want: ConfidenceHigh},
		{name: "lone critical", indicators: []Indicator{critical}, want: ConfidenceHigh},
		{name: "warning plus info", indicators: append(warnings(1), infos(1)...), want: ConfidenceMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.indicators, Signals{}).Confidence; got != tt.want {
				t.Fatalf("confidence = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScoreVerdictContributors(t *testing.T) {
	tests := []struct {
		name       string
		indicators []Indicator
		signals    Signals
		want       bool
	}{
		{name: "nothing", want: false},
		{name: "info only", indicators: infos(3), want: false},
		{name: "program signal", signals: Signals{Program: true}, want: true},
		{name: "parts replaced without warnings", indicators: infos(1), signals: Signals{PartsReplaced: true}, want: true},
		{name: "single warning", indicators: warnings(1), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.indicators, tt.signals).IsRefurbished; got != tt.want {
				t.Fatalf("is_refurbished = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreNeverHighWithoutIndicators(t *testing.T) {
	v := Score(nil, Signals{Program: true, PartsReplaced: true})
	if v.Confidence == ConfidenceHigh {
		t.Fatalf("confidence must not be high with zero indicators")
	}
	if v.Confidence != ConfidenceLow {
		t.Fatalf("confidence = %s, want low", v.Confidence)
	}
}

func TestTally(t *testing.T) {
	in := append(warnings(2), infos(1)...)
	in = append(in, Indicator{Severity: SeverityCritical})
	c := Tally(in)
	if c.Critical != 1 || c.Warning != 2 || c.Total != 4 {
		t.Fatalf("unexpected tally: %+v", c)
	}
}

func TestSeverityRank(t *testing.T) {
	if !(SeverityInfo.Rank() < SeverityWarning.Rank() && SeverityWarning.Rank() < SeverityCritical.Rank()) {
		t.Fatalf("severity ranks out of order")
	}
	if Severity("bogus").Rank() != 0 {
		t.Fatalf("unknown severity should rank 0")
	}
}
