// Package signals resolves the latest fit verdict for a set of résumés or
// postings. Lookups are best-effort enrichment: a failed lookup is the same as
// "not analyzed yet".
package signals

import "strings"

// Signal is the traffic-light verdict of an analysis.
type Signal string

const (
	Green  Signal = "green"
	Yellow Signal = "yellow"
	Red    Signal = "red"
)

// Parse accepts green, yellow and red in any case. Anything else is absence.
func Parse(raw string) (Signal, bool) {
	switch Signal(strings.ToLower(strings.TrimSpace(raw))) {
	case Green:
		return Green, true
	case Yellow:
		return Yellow, true
	case Red:
		return Red, true
	}
	return "", false
}

// Label is the list-view badge text.
func (s Signal) Label() string {
	switch s {
	case Green:
		return "양호"
	case Yellow:
		return "주의"
	case Red:
		return "위험"
	}
	return "분석 전"
}

// Verdict is the analysis-detail wording.
func (s Signal) Verdict() string {
	switch s {
	case Green:
		return "적합 (Good)"
	case Yellow:
		return "보류 (Hold)"
	case Red:
		return "부적합 (Risk)"
	}
	return "-"
}
