package engine

import "testing"

func TestExtractDurations(t *testing.T) {
	ex := NewExtractor(DefaultCatalog())

	cases := []struct {
		text   string
		days   int
		weeks  int
		months int
	}{
		{"training ended 10 days ago", 10, 0, 0},
		{"ça fait 3 semaines que j'attends", 0, 3, 0},
		{"it has been 2 months and 5 days", 5, 0, 2},
		{"formation terminée il y a 1 jour", 1, 0, 0},
		{"waiting for 6 weeks now", 0, 6, 0},
	}
	for _, tc := range cases {
		facts := ex.Extract(Normalize(tc.text))
		if got := intOrZero(facts.DurationDays); got != tc.days {
			t.Fatalf("%q: days=%d, want %d", tc.text, got, tc.days)
		}
		if got := intOrZero(facts.DurationWeeks); got != tc.weeks {
			t.Fatalf("%q: weeks=%d, want %d", tc.text, got, tc.weeks)
		}
		if got := intOrZero(facts.DurationMonths); got != tc.months {
			t.Fatalf("%q: months=%d, want %d", tc.text, got, tc.months)
		}
	}
}

func TestExtractKeepsFirstMatchPerUnit(t *testing.T) {
	ex := NewExtractor(DefaultCatalog())
	facts := ex.Extract("it ended 10 days ago, or maybe 12 days ago")
	if got := intOrZero(facts.DurationDays); got != 10 {
		t.Fatalf("expected first day match, got %d", got)
	}
}

func TestExtractNoDuration(t *testing.T) {
	ex := NewExtractor(DefaultCatalog())
	facts := ex.Extract("i have not been paid yet")
	if facts.HasDuration() {
		t.Fatalf("expected no duration, got %+v", facts)
	}
	if facts.DayEquivalents() != 0 {
		t.Fatal("absent duration must convert to zero")
	}
}

func TestDetectFinancingPriority(t *testing.T) {
	ex := NewExtractor(DefaultCatalog())

	cases := []struct {
		text string
		want FinancingType
	}{
		// Direct wins even when the account is mentioned too.
		{"j'ai payé la formation moi-même, pas avec mon cpf", FinancingDirect},
		{"i financed it myself out of my own pocket", FinancingDirect},
		{"le financement opco n'est pas arrivé", FinancingTypeB},
		{"paiement via mon cpf", FinancingTypeA},
		{"where is my money", FinancingUnknown},
	}
	for _, tc := range cases {
		if got := ex.Extract(Normalize(tc.text)).Financing; got != tc.want {
			t.Fatalf("%q: financing=%s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestDayAndMonthEquivalents(t *testing.T) {
	one, two, three := 1, 2, 3
	f := ExtractedFacts{DurationDays: &three, DurationWeeks: &two, DurationMonths: &one}
	if got := f.DayEquivalents(); got != 3+2*7+1*30 {
		t.Fatalf("day equivalents = %d", got)
	}
	months := f.MonthEquivalents()
	want := 1.0 + 2.0*4.0/12.0 + 3.0/30.0
	if diff := months - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("month equivalents = %v, want %v", months, want)
	}
}

func TestMergePrefersNewFacts(t *testing.T) {
	ten, sixty := 10, 60
	prior := ExtractedFacts{Financing: FinancingTypeA, DurationDays: &sixty}
	next := ExtractedFacts{Financing: FinancingUnknown, DurationDays: &ten}

	merged := next.Merge(prior)
	if merged.Financing != FinancingTypeA {
		t.Fatalf("expected prior financing kept, got %s", merged.Financing)
	}
	if *merged.DurationDays != 10 {
		t.Fatalf("expected new duration to win, got %d", *merged.DurationDays)
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
