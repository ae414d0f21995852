package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// FinancingType identifies how the customer's training was funded. The
// escalation thresholds differ per type.
type FinancingType string

const (
	FinancingUnknown FinancingType = "unknown"
	FinancingDirect  FinancingType = "direct"
	FinancingTypeA   FinancingType = "cpf"
	FinancingTypeB   FinancingType = "opco"
)

// ExtractedFacts is what the extractor could read out of a single message.
// Duration fields are nil when the message never mentioned that unit, which
// is distinct from an explicit zero.
type ExtractedFacts struct {
	DurationDays   *int          `json:"duration_days,omitempty"`
	DurationWeeks  *int          `json:"duration_weeks,omitempty"`
	DurationMonths *int          `json:"duration_months,omitempty"`
	Financing      FinancingType `json:"financing_type"`
}

func (f ExtractedFacts) HasDuration() bool {
	return f.DurationDays != nil || f.DurationWeeks != nil || f.DurationMonths != nil
}

func (f ExtractedFacts) HasFinancing() bool {
	return f.Financing != FinancingUnknown && f.Financing != ""
}

// DayEquivalents flattens the duration into days: days + weeks*7 + months*30.
func (f ExtractedFacts) DayEquivalents() int {
	total := 0
	if f.DurationDays != nil {
		total += *f.DurationDays
	}
	if f.DurationWeeks != nil {
		total += *f.DurationWeeks * 7
	}
	if f.DurationMonths != nil {
		total += *f.DurationMonths * 30
	}
	return total
}

// MonthEquivalents flattens the duration into months:
// months + weeks*4/12 + days/30.
func (f ExtractedFacts) MonthEquivalents() float64 {
	total := 0.0
	if f.DurationMonths != nil {
		total += float64(*f.DurationMonths)
	}
	if f.DurationWeeks != nil {
		total += float64(*f.DurationWeeks) * 4.0 / 12.0
	}
	if f.DurationDays != nil {
		total += float64(*f.DurationDays) / 30.0
	}
	return total
}

// Merge overlays f on top of prior facts remembered from earlier turns.
// Values present in f win; gaps fall back to the prior turn.
func (f ExtractedFacts) Merge(prior ExtractedFacts) ExtractedFacts {
	merged := f
	if merged.DurationDays == nil {
		merged.DurationDays = prior.DurationDays
	}
	if merged.DurationWeeks == nil {
		merged.DurationWeeks = prior.DurationWeeks
	}
	if merged.DurationMonths == nil {
		merged.DurationMonths = prior.DurationMonths
	}
	if !merged.HasFinancing() && prior.HasFinancing() {
		merged.Financing = prior.Financing
	}
	return merged
}

var (
	dayPattern   = regexp.MustCompile(`(\d+)\s*(?:jours?|days?)\b`)
	weekPattern  = regexp.MustCompile(`(\d+)\s*(?:semaines?|weeks?)\b`)
	monthPattern = regexp.MustCompile(`(\d+)\s*(?:mois|months?)\b`)
)

// Extractor reads durations and financing types out of normalized text with
// literal patterns only. No inference: a fact is either written in the
// message or absent.
type Extractor struct {
	catalog *Catalog
}

func NewExtractor(catalog *Catalog) *Extractor {
	return &Extractor{catalog: catalog}
}

func (e *Extractor) Extract(text string) ExtractedFacts {
	facts := ExtractedFacts{Financing: e.detectFinancing(text)}
	if v, ok := firstNumber(dayPattern, text); ok {
		facts.DurationDays = &v
	}
	if v, ok := firstNumber(weekPattern, text); ok {
		facts.DurationWeeks = &v
	}
	if v, ok := firstNumber(monthPattern, text); ok {
		facts.DurationMonths = &v
	}
	return facts
}

// detectFinancing checks the most specific signals first: explicit
// self-funding phrases, then the skills-operator vocabulary, then a bare
// "cpf" mention. A message matching an earlier rule never falls through.
func (e *Extractor) detectFinancing(text string) FinancingType {
	switch {
	case e.catalog.DirectFinancing.Matches(text):
		return FinancingDirect
	case e.catalog.TypeBFinancing.Matches(text):
		return FinancingTypeB
	case strings.Contains(text, e.catalog.TypeAToken):
		return FinancingTypeA
	default:
		return FinancingUnknown
	}
}

func firstNumber(pattern *regexp.Regexp, text string) (int, bool) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return value, true
}
