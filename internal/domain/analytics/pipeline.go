package analytics

import (
	"math"

	"github.com/rcm/rcm/internal/domain/claim"
)

// PipelineMetrics summarizes the submission pipeline: how many claims are
// stuck in review with failing issues, how many the clearinghouse bounced,
// and the share of submitted claims that made it through.
type PipelineMetrics struct {
	ClaimsMissingInfo  int `json:"claims_missing_info"`
	ScrubberRejects    int `json:"scrubber_rejects"`
	SuccessRatePercent int `json:"success_rate_percent"`
}

// CalculateSubmissionPipelineMetrics derives the pipeline snapshot from the
// current claim set. The success rate counts submitted/awaiting/accepted/paid
// claims against every claim that reached the pipeline at all, as a rounded
// integer percent; an empty pipeline reports 0.
func CalculateSubmissionPipelineMetrics(claims []*claim.Claim) PipelineMetrics {
	var m PipelineMetrics
	succeeded, entered := 0, 0
	for _, c := range claims {
		if c == nil {
			continue
		}
		switch c.Status {
		case claim.StatusNeedsReview:
			if c.FailingIssueCount() > 0 {
				m.ClaimsMissingInfo++
			}
		case claim.StatusRejected277CA:
			m.ScrubberRejects++
			entered++
		case claim.StatusSubmitted, claim.StatusAwaiting277CA, claim.StatusAccepted277CA, claim.StatusPaid:
			succeeded++
			entered++
		case claim.StatusDenied:
			entered++
		}
	}
	if entered > 0 {
		m.SuccessRatePercent = int(math.Round(float64(succeeded) / float64(entered) * 100))
	}
	return m
}
