package analyses

import (
	"context"

	"fitgap-client/internal/shared/metrics"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/signals"
)

// PairOutcome is the best-effort result of the follow-on analysis call made
// after a résumé or posting was created.
type PairOutcome struct {
	AnalysisID string
	Signal     signals.Signal
	HasSignal  bool
	Err        error
}

// Paired reports whether an analysis session was created.
func (o PairOutcome) Paired() bool {
	return o.AnalysisID != ""
}

// Pair creates an analysis session and never fails the caller: an error or an
// incomplete pair is reported in the outcome, so the originating create stands.
func (c *Client) Pair(ctx context.Context, req CreateRequest) PairOutcome {
	res, err := c.Create(ctx, req)
	if err != nil {
		metrics.IncAnalysisPairing("failed")
		telemetry.Warn("analyses.pair_failed", map[string]any{
			"posting_id": req.PostingID,
			"resume_id":  req.ResumeID,
			"error":      err,
		})
		return PairOutcome{Err: err}
	}
	out := PairOutcome{AnalysisID: res.AnalysisID.String()}
	out.Signal, out.HasSignal = signals.Parse(res.Signal)
	switch {
	case out.Paired():
		metrics.IncAnalysisPairing("created")
	case out.HasSignal:
		metrics.IncAnalysisPairing("signal_only")
	default:
		metrics.IncAnalysisPairing("unpaired")
	}
	return out
}
