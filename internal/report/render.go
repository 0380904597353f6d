// Package report renders an analysis session for the terminal and exports it
// as a markdown document.
package report

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"fitgap-client/internal/analyses"
	"fitgap-client/internal/signals"
)

const (
	defaultSummary = "공고와 서류를 비교한 결과입니다."
	noFitItems     = "매칭 포인트가 없습니다."
	noGapItems     = "보완이 필요한 항목이 없습니다."
)

// Sanitizer strips markup from server-provided text. The policy is safe for
// concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes every tag and returns plain text with entities decoded.
func (s *Sanitizer) Clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// Markdown renders a session the way the detail view lays it out: score and
// verdict, one-line summary, fit points and gaps.
func (s *Sanitizer) Markdown(sess analyses.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 분석 결과 %s\n\n", s.Clean(sess.AnalysisID.String()))

	sig, ok := signals.Parse(sess.Signal)
	verdict := "-"
	if ok {
		verdict = sig.Verdict()
	}
	fmt.Fprintf(&b, "- Total Score: %s\n", strconv.FormatFloat(sess.OverallScore, 'f', -1, 64))
	fmt.Fprintf(&b, "- Signal: %s\n", verdict)
	if c := s.Clean(sess.Confidence); c != "" {
		fmt.Fprintf(&b, "- Confidence: %s\n", c)
	}

	summary := s.Clean(sess.Summary)
	if summary == "" {
		summary = defaultSummary
	}
	fmt.Fprintf(&b, "\n%s\n", summary)

	s.writeItems(&b, "매칭 포인트", sess.FitItems, noFitItems)
	s.writeItems(&b, "보완 필요", sess.GapItems, noGapItems)
	return b.String()
}

func (s *Sanitizer) writeItems(b *strings.Builder, title string, items []string, empty string) {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		if c := s.Clean(item); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	fmt.Fprintf(b, "\n## %s (%d)\n\n", title, len(cleaned))
	if len(cleaned) == 0 {
		fmt.Fprintf(b, "%s\n", empty)
		return
	}
	for _, item := range cleaned {
		fmt.Fprintf(b, "- %s\n", strings.ReplaceAll(item, "\n", " "))
	}
}
