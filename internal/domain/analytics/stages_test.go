package analytics

import (
	"testing"
	"time"

	"github.com/rcm/rcm/internal/domain/claim"
)

func historyClaim(entries ...claim.StateHistoryEntry) *claim.Claim {
	return &claim.Claim{StateHistory: entries}
}

func at(day int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
}

func entry(s claim.Status, day int) claim.StateHistoryEntry {
	return claim.StateHistoryEntry{State: s, At: at(day)}
}

func TestComputeStageAnalytics_FullLifecycle(t *testing.T) {
	// built day 0, submitted day 1, accepted day 3, paid day 10.
	c := historyClaim(
		entry(claim.StatusNeedsReview, 0),
		entry(claim.StatusBuilt, 0),
		entry(claim.StatusSubmitted, 1),
		entry(claim.StatusAccepted277CA, 3),
		entry(claim.StatusPaid, 10),
	)
	c.Status = claim.StatusPaid

	a := ComputeStageAnalytics([]*claim.Claim{c})

	if a.TotalClaims != 1 {
		t.Fatalf("expected 1 claim, got %d", a.TotalClaims)
	}
	if a.AvgBuildToSubmitDays != 1.0 {
		t.Errorf("expected build->submit 1.0, got %v", a.AvgBuildToSubmitDays)
	}
	if a.AvgSubmitToOutcomeDays != 2.0 {
		t.Errorf("expected submit->outcome 2.0, got %v", a.AvgSubmitToOutcomeDays)
	}
	if a.AvgAcceptedToPaidDays != 7.0 {
		t.Errorf("expected accepted->paid 7.0, got %v", a.AvgAcceptedToPaidDays)
	}
	if a.AvgProcessingDays != 10.0 {
		t.Errorf("expected processing 10.0, got %v", a.AvgProcessingDays)
	}
	if a.SubmitToOutcomeBreakdown.AcceptedRate != 1.0 {
		t.Errorf("expected accepted rate 1.0, got %v", a.SubmitToOutcomeBreakdown.AcceptedRate)
	}
	if a.OverallSuccessRate != 1.0 {
		t.Errorf("expected success rate 1.0, got %v", a.OverallSuccessRate)
	}
}

func TestComputeStageAnalytics_SameDayTransitions(t *testing.T) {
	// Everything at the same instant: every gap is 0, not dropped.
	c := historyClaim(
		entry(claim.StatusBuilt, 0),
		entry(claim.StatusSubmitted, 0),
		entry(claim.StatusAccepted277CA, 0),
		entry(claim.StatusPaid, 0),
	)

	a := ComputeStageAnalytics([]*claim.Claim{c})
	if a.AvgBuildToSubmitDays != 0.0 || a.AvgSubmitToOutcomeDays != 0.0 || a.AvgAcceptedToPaidDays != 0.0 {
		t.Errorf("expected zero-day averages, got %+v", a)
	}
	if a.OverallSuccessRate != 1.0 {
		t.Errorf("expected success rate 1.0, got %v", a.OverallSuccessRate)
	}
}

func TestComputeStageAnalytics_AveragesAcrossClaims(t *testing.T) {
	// Claim 1: built->submitted same day. Claim 2: built->submitted next day.
	// Average 0.5.
	c1 := historyClaim(entry(claim.StatusBuilt, 0), entry(claim.StatusSubmitted, 0))
	c2 := historyClaim(entry(claim.StatusBuilt, 0), entry(claim.StatusSubmitted, 1))

	a := ComputeStageAnalytics([]*claim.Claim{c1, c2})
	if a.AvgBuildToSubmitDays != 0.5 {
		t.Errorf("expected 0.5, got %v", a.AvgBuildToSubmitDays)
	}
}

func TestComputeStageAnalytics_OutcomePriority(t *testing.T) {
	// Rejected then later accepted: accepted wins the outcome slot.
	c := historyClaim(
		entry(claim.StatusSubmitted, 0),
		entry(claim.StatusRejected277CA, 1),
		entry(claim.StatusBuilt, 2),
		entry(claim.StatusSubmitted, 3),
		entry(claim.StatusAccepted277CA, 5),
	)

	a := ComputeStageAnalytics([]*claim.Claim{c})
	if a.SubmitToOutcomeBreakdown.AcceptedRate != 1.0 {
		t.Errorf("expected accepted to win, got %+v", a.SubmitToOutcomeBreakdown)
	}
	if a.SubmitToOutcomeBreakdown.RejectedRate != 0.0 {
		t.Errorf("expected rejected rate 0, got %v", a.SubmitToOutcomeBreakdown.RejectedRate)
	}
	// Most recent submitted (day 3) to accepted (day 5) = 2 days.
	if a.AvgSubmitToOutcomeDays != 2.0 {
		t.Errorf("expected 2.0, got %v", a.AvgSubmitToOutcomeDays)
	}
}

func TestComputeStageAnalytics_NegativeGapDiscarded(t *testing.T) {
	// Resubmission after denial: the most recent submitted milestone is later
	// than the denial, so the submit->outcome gap runs backwards and drops out.
	c := historyClaim(
		entry(claim.StatusSubmitted, 0),
		entry(claim.StatusDenied, 2),
		entry(claim.StatusBuilt, 3),
		entry(claim.StatusSubmitted, 4),
	)

	a := ComputeStageAnalytics([]*claim.Claim{c})
	if a.AvgSubmitToOutcomeDays != 0.0 {
		t.Errorf("expected backwards gap dropped, got %v", a.AvgSubmitToOutcomeDays)
	}
	// The outcome itself still counts in the breakdown.
	if a.SubmitToOutcomeBreakdown.DeniedRate != 1.0 {
		t.Errorf("expected denied rate 1.0, got %v", a.SubmitToOutcomeBreakdown.DeniedRate)
	}
}

func TestComputeStageAnalytics_ProcessingFallbacks(t *testing.T) {
	// No built milestone: processing starts at needs_review. No paid: ends at
	// denied.
	c := historyClaim(
		entry(claim.StatusNeedsReview, 0),
		entry(claim.StatusSubmitted, 1),
		entry(claim.StatusDenied, 4),
	)

	a := ComputeStageAnalytics([]*claim.Claim{c})
	if a.AvgProcessingDays != 4.0 {
		t.Errorf("expected processing 4.0, got %v", a.AvgProcessingDays)
	}
}

func TestComputeStageAnalytics_UnsubmittedOutcomeIgnored(t *testing.T) {
	// A denial without a submitted milestone contributes no outcome.
	c := historyClaim(
		entry(claim.StatusNeedsReview, 0),
		entry(claim.StatusDenied, 1),
	)

	a := ComputeStageAnalytics([]*claim.Claim{c})
	if a.SubmitToOutcomeBreakdown != (OutcomeBreakdown{}) {
		t.Errorf("expected empty breakdown, got %+v", a.SubmitToOutcomeBreakdown)
	}
}

func TestComputeStageAnalytics_BreakdownRates(t *testing.T) {
	accepted := historyClaim(entry(claim.StatusSubmitted, 0), entry(claim.StatusAccepted277CA, 1))
	rejected := historyClaim(entry(claim.StatusSubmitted, 0), entry(claim.StatusRejected277CA, 1))
	denied := historyClaim(entry(claim.StatusSubmitted, 0), entry(claim.StatusDenied, 1))

	a := ComputeStageAnalytics([]*claim.Claim{accepted, rejected, denied})
	b := a.SubmitToOutcomeBreakdown
	if b.AcceptedRate != 0.33 || b.RejectedRate != 0.33 || b.DeniedRate != 0.33 {
		t.Errorf("expected thirds rounded to 2 decimals, got %+v", b)
	}
}

func TestComputeStageAnalytics_Empty(t *testing.T) {
	if a := ComputeStageAnalytics(nil); a != (StageAnalytics{}) {
		t.Errorf("expected zero analytics, got %+v", a)
	}

	a := ComputeStageAnalytics([]*claim.Claim{nil})
	if a != (StageAnalytics{}) {
		t.Errorf("expected zero analytics for nil claim, got %+v", a)
	}
}

func TestGapDays(t *testing.T) {
	base := at(0)
	if g := gapDays(base, base); g != 0 {
		t.Errorf("zero interval: expected 0, got %d", g)
	}
	if g := gapDays(base, base.Add(-time.Hour)); g != -1 {
		t.Errorf("backwards interval: expected -1, got %d", g)
	}
	if g := gapDays(base, base.Add(time.Hour)); g != 1 {
		t.Errorf("partial day: expected ceiling 1, got %d", g)
	}
	if g := gapDays(base, base.AddDate(0, 0, 3)); g != 3 {
		t.Errorf("three days: expected 3, got %d", g)
	}
}
