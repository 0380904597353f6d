package analyses

import "fitgap-client/internal/gateway"

// Session is one immutable pairing of a résumé with a posting.
type Session struct {
	AnalysisID   gateway.ID `json:"analysis_id"`
	OverallScore float64    `json:"overall_score"`
	Signal       string     `json:"signal"`
	FitItems     []string   `json:"fit_items"`
	GapItems     []string   `json:"gap_items"`
	Summary      string     `json:"summary,omitempty"`
	Confidence   string     `json:"confidence,omitempty"`
}

// CreateRequest pairs a posting and/or résumé. Either id may be omitted; the
// server pairs with the account's counterpart when it can.
type CreateRequest struct {
	PostingID string `json:"posting_id,omitempty"`
	ResumeID  string `json:"resume_id,omitempty"`
}

// CreateResult carries the new analysis id, or only a signal when the pair
// could not be completed yet.
type CreateResult struct {
	AnalysisID gateway.ID `json:"analysis_id"`
	Signal     string     `json:"signal"`
}

type latestResponse struct {
	Analysis *struct {
		AnalysisID gateway.ID `json:"analysis_id"`
		Signal     string     `json:"signal"`
	} `json:"analysis"`
}

// Localized fallbacks.
const (
	msgCreateFailed = "분석 실패"
	msgGetFailed    = "분석 결과 조회 실패"
)
