package playbook

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rcm/rcm/internal/domain/claim"
)

func deniedClaimWithID(carc string) claim.Claim {
	c := deniedClaim(carc)
	c.ID = uuid.New()
	return c
}

func TestProcessor_AtMostOnce(t *testing.T) {
	p := NewProcessor()
	cfg := DefaultConfig()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("197")

	first := p.Process(c, cfg, now)
	if first.Action != ActionAutoResubmit {
		t.Fatalf("expected auto_resubmit, got %s", first.Action)
	}
	if !p.Processed(c.ID) {
		t.Error("expected claim marked processed")
	}

	second := p.Process(c, cfg, now)
	if second.Action != ActionAlreadyProcessed {
		t.Errorf("expected already_processed, got %s", second.Action)
	}
	if second.Changed {
		t.Error("re-processing must not change the claim")
	}

	// A fresh processor has its own set.
	third := NewProcessor().Process(c, cfg, now)
	if third.Action != ActionAutoResubmit {
		t.Errorf("fresh processor should act again, got %s", third.Action)
	}
}

func TestProcessor_ConcurrentAtMostOnce(t *testing.T) {
	// One processor is shared by every request handler, so concurrent
	// evaluations of the same claim must serialize on the processed set:
	// exactly one caller acts, the rest see already_processed.
	p := NewProcessor()
	cfg := DefaultConfig()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("197")

	const workers = 64
	outcomes := make(chan Outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- p.Process(c, cfg, now)
		}()
	}
	wg.Wait()
	close(outcomes)

	acted, skipped := 0, 0
	for out := range outcomes {
		switch out.Action {
		case ActionAutoResubmit:
			acted++
		case ActionAlreadyProcessed:
			skipped++
		default:
			t.Errorf("unexpected action %s", out.Action)
		}
	}
	if acted != 1 {
		t.Errorf("expected exactly 1 auto_resubmit, got %d", acted)
	}
	if skipped != workers-1 {
		t.Errorf("expected %d already_processed, got %d", workers-1, skipped)
	}
}

func TestProcessor_NonDeniedNotMarked(t *testing.T) {
	p := NewProcessor()
	c := deniedClaimWithID("197")
	c.Status = claim.StatusPaid

	out := p.Process(c, DefaultConfig(), time.Now())
	if out.Action != ActionNone || out.Changed {
		t.Errorf("expected untouched no-op, got %+v", out)
	}
	if p.Processed(c.ID) {
		t.Error("non-denied claims must not consume their at-most-once slot")
	}
}

func TestProcessor_NoMatchingRule(t *testing.T) {
	p := NewProcessor()
	c := deniedClaimWithID("45")

	out := p.Process(c, DefaultConfig(), time.Now())
	if out.Action != ActionNone || out.Changed {
		t.Errorf("expected none, got %+v", out)
	}
	// Evaluation still consumes the slot.
	if !p.Processed(c.ID) {
		t.Error("expected claim marked processed even without a rule match")
	}
}

func TestProcessor_IneligibleAutoResubmit(t *testing.T) {
	p := NewProcessor()
	cfg := DefaultConfig()
	c := deniedClaimWithID("197")
	c.AttemptCount = cfg.MaxRetryAttempts

	out := p.Process(c, cfg, time.Now())
	if out.Action != ActionNone {
		t.Errorf("expected none for exhausted budget, got %s", out.Action)
	}
	if out.RuleCode != "197" {
		t.Errorf("expected the matched rule code surfaced, got %q", out.RuleCode)
	}
	if out.Changed {
		t.Error("ineligible claim must not be changed")
	}
}

func TestProcessor_ManualReview(t *testing.T) {
	p := NewProcessor()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("29")

	out := p.Process(c, DefaultConfig(), now)
	if out.Action != ActionManualReview || !out.Changed {
		t.Fatalf("expected changed manual_review, got %+v", out)
	}
	if out.Claim.Status != claim.StatusDenied {
		t.Errorf("manual review keeps the claim denied, got %s", out.Claim.Status)
	}
	last := out.Claim.StateHistory[len(out.Claim.StateHistory)-1]
	if last.Note != "Flagged for manual review (rule: 29)" {
		t.Errorf("unexpected note %q", last.Note)
	}
	if !out.Claim.UpdatedAt.Equal(now) {
		t.Error("expected UpdatedAt restamped")
	}
}

func TestProcessor_Notify(t *testing.T) {
	p := NewProcessor()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("96")

	out := p.Process(c, DefaultConfig(), now)
	if out.Action != ActionNotify || !out.Changed {
		t.Fatalf("expected changed notify, got %+v", out)
	}
	last := out.Claim.StateHistory[len(out.Claim.StateHistory)-1]
	if last.Note != "Notification sent (rule: 96)" {
		t.Errorf("unexpected note %q", last.Note)
	}
}

func TestMarkForResubmit(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("197")
	c.AttemptCount = 1

	out := MarkForResubmit(c, Rule{Code: "197", Strategy: StrategyAutoResubmit, Enabled: true}, now)

	if out.Status != claim.StatusBuilt {
		t.Errorf("expected built, got %s", out.Status)
	}
	if !out.AutoSubmitted {
		t.Error("expected auto_submitted flag set")
	}
	// AttemptCount is incremented by the submission itself, not here.
	if out.AttemptCount != 1 {
		t.Errorf("marking must not count an attempt, got %d", out.AttemptCount)
	}
	last := out.StateHistory[len(out.StateHistory)-1]
	if last.Note != "Automatic resubmission attempt #2" {
		t.Errorf("unexpected note %q", last.Note)
	}
	if !out.UpdatedAt.Equal(now) {
		t.Error("expected UpdatedAt restamped")
	}
}

func TestMarkForResubmit_AutoFixAppliesOutstandingFixes(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("197")
	c.AttemptCount = 1
	c.Codes = claim.CodeSet{POS: "02"}
	c.Issues = []claim.Issue{{Field: "pos", Severity: claim.SeverityFail, Message: "bad pos"}}
	c.SuggestedFixes = []claim.SuggestedFix{{Field: "pos", Value: "10", Source: claim.FixSourceRule}}

	out := MarkForResubmit(c, Rule{Code: "197", Strategy: StrategyAutoResubmit, Enabled: true, AutoFix: true}, now)

	if out.Codes.POS != "10" {
		t.Errorf("expected playbook fix applied, got POS %s", out.Codes.POS)
	}
	if !out.SuggestedFixes[0].Applied {
		t.Error("expected fix marked applied")
	}
	// The fix note and the resubmission note both land under built, so the
	// same-state merge leaves the resubmission note as the final word.
	last := out.StateHistory[len(out.StateHistory)-1]
	if last.Note != "Automatic resubmission attempt #2" {
		t.Errorf("unexpected final note %q", last.Note)
	}
	for _, h := range out.StateHistory {
		if strings.Contains(h.Note, "(rule:") && h.State != claim.StatusBuilt {
			t.Errorf("rule-tagged note must be under built, got %s", h.State)
		}
	}
}

func TestMarkForResubmit_NoAutoFixLeavesFixesAlone(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := deniedClaimWithID("197")
	c.SuggestedFixes = []claim.SuggestedFix{{Field: "pos", Value: "10"}}

	out := MarkForResubmit(c, Rule{Code: "197", Strategy: StrategyAutoResubmit, Enabled: true}, now)
	if out.SuggestedFixes[0].Applied {
		t.Error("autoFix off: fixes must stay unapplied")
	}
	if out.Status != claim.StatusBuilt || !out.AutoSubmitted {
		t.Errorf("expected built and flagged regardless, got %s / %v", out.Status, out.AutoSubmitted)
	}
}
