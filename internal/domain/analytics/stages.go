package analytics

import (
	"math"
	"time"

	"github.com/rcm/rcm/internal/domain/claim"
)

// OutcomeBreakdown splits submitted claims by their first payer outcome.
// Rates are fractions of the submitted count, rounded to 2 decimals.
type OutcomeBreakdown struct {
	AcceptedRate float64 `json:"accepted_rate"`
	RejectedRate float64 `json:"rejected_rate"`
	DeniedRate   float64 `json:"denied_rate"`
}

// StageAnalytics reports how long claims spend in each pipeline stage and
// how they come out the other end. Durations are calendar-day averages
// rounded to 1 decimal; rates to 2.
type StageAnalytics struct {
	TotalClaims              int              `json:"total_claims"`
	AvgBuildToSubmitDays     float64          `json:"avg_build_to_submit_days"`
	AvgSubmitToOutcomeDays   float64          `json:"avg_submit_to_outcome_days"`
	AvgAcceptedToPaidDays    float64          `json:"avg_accepted_to_paid_days"`
	AvgProcessingDays        float64          `json:"avg_processing_days"`
	SubmitToOutcomeBreakdown OutcomeBreakdown `json:"submit_to_outcome_breakdown"`
	OverallSuccessRate       float64          `json:"overall_success_rate"`
}

// gapDays is the calendar-day ceiling of to − from, or -1 when the interval
// runs backwards. Negative gaps are excluded from averages, not clamped.
func gapDays(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return -1
	}
	if d == 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

// meanDays averages a list of whole-day gaps to 1 decimal; empty lists
// average to 0.
func meanDays(gaps []int) float64 {
	if len(gaps) == 0 {
		return 0
	}
	sum := 0
	for _, g := range gaps {
		sum += g
	}
	return round1(float64(sum) / float64(len(gaps)))
}

// firstOutcome picks the claim's payer outcome milestone, preferring
// accepted over rejected over denied when the history carries several.
func firstOutcome(c *claim.Claim) (claim.Status, time.Time, bool) {
	for _, s := range []claim.Status{claim.StatusAccepted277CA, claim.StatusRejected277CA, claim.StatusDenied} {
		if at, ok := c.MilestoneAt(s); ok {
			return s, at, true
		}
	}
	return "", time.Time{}, false
}

// ComputeStageAnalytics derives stage durations and outcome rates from each
// claim's state history. Milestone timestamps are the most recent entry per
// state; claim pairs missing either milestone, or with a negative gap, drop
// out of that particular average. Nil input yields the zero result.
func ComputeStageAnalytics(claims []*claim.Claim) StageAnalytics {
	var a StageAnalytics
	var buildToSubmit, submitToOutcome, acceptedToPaid, processing []int
	submittedCount := 0
	outcomes := map[claim.Status]int{}
	paidCount := 0

	for _, c := range claims {
		if c == nil {
			continue
		}
		a.TotalClaims++

		builtAt, hasBuilt := c.MilestoneAt(claim.StatusBuilt)
		submittedAt, hasSubmitted := c.MilestoneAt(claim.StatusSubmitted)
		acceptedAt, hasAccepted := c.MilestoneAt(claim.StatusAccepted277CA)
		paidAt, hasPaid := c.MilestoneAt(claim.StatusPaid)

		if hasPaid {
			paidCount++
		}
		if hasSubmitted {
			submittedCount++
		}

		if hasBuilt && hasSubmitted {
			if g := gapDays(builtAt, submittedAt); g >= 0 {
				buildToSubmit = append(buildToSubmit, g)
			}
		}

		if outcome, outcomeAt, ok := firstOutcome(c); ok && hasSubmitted {
			outcomes[outcome]++
			if g := gapDays(submittedAt, outcomeAt); g >= 0 {
				submitToOutcome = append(submitToOutcome, g)
			}
		}

		if hasAccepted && hasPaid {
			if g := gapDays(acceptedAt, paidAt); g >= 0 {
				acceptedToPaid = append(acceptedToPaid, g)
			}
		}

		startAt, hasStart := builtAt, hasBuilt
		if !hasStart {
			startAt, hasStart = c.MilestoneAt(claim.StatusNeedsReview)
		}
		endAt, hasEnd := paidAt, hasPaid
		if !hasEnd {
			endAt, hasEnd = c.MilestoneAt(claim.StatusDenied)
		}
		if hasStart && hasEnd {
			if g := gapDays(startAt, endAt); g >= 0 {
				processing = append(processing, g)
			}
		}
	}

	a.AvgBuildToSubmitDays = meanDays(buildToSubmit)
	a.AvgSubmitToOutcomeDays = meanDays(submitToOutcome)
	a.AvgAcceptedToPaidDays = meanDays(acceptedToPaid)
	a.AvgProcessingDays = meanDays(processing)

	if submittedCount > 0 {
		n := float64(submittedCount)
		a.SubmitToOutcomeBreakdown = OutcomeBreakdown{
			AcceptedRate: round2(float64(outcomes[claim.StatusAccepted277CA]) / n),
			RejectedRate: round2(float64(outcomes[claim.StatusRejected277CA]) / n),
			DeniedRate:   round2(float64(outcomes[claim.StatusDenied]) / n),
		}
	}
	if a.TotalClaims > 0 {
		a.OverallSuccessRate = round2(float64(paidCount) / float64(a.TotalClaims))
	}
	return a
}
