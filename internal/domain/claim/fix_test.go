package claim

import (
	"strings"
	"testing"
	"time"
)

func fixableClaim() Claim {
	return Claim{
		Status: StatusNeedsReview,
		Codes: CodeSet{
			ICD10: []string{"E11.9"},
			CPT:   []CPTLine{{Code: "99213", Amount: 150, Modifiers: []string{"25"}}},
			POS:   "02",
		},
		Issues: []Issue{
			{Field: "pos", Code: "POS-TELEHEALTH", Severity: SeverityFail, Message: "POS 02 invalid for in-office visit"},
		},
		SuggestedFixes: []SuggestedFix{
			{Field: "pos", Value: "10", Source: FixSourceRule, Confidence: 0.98},
		},
		ValidationResults: []ValidationResult{
			{Field: "pos", Severity: SeverityFail, Message: "place of service mismatch"},
		},
	}
}

func TestApplyFix_AlreadyAppliedIsNoOp(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := fixableClaim()
	c.SuggestedFixes[0].Applied = true
	c.UpdatedAt = now.Add(-time.Hour)

	out := ApplyFix(c, c.SuggestedFixes[0], "", now)

	if out.Issues[0].Severity != SeverityFail {
		t.Error("no-op should not touch issues")
	}
	if !out.UpdatedAt.Equal(c.UpdatedAt) {
		t.Error("no-op should not restamp UpdatedAt")
	}
	if out.Status != StatusNeedsReview {
		t.Errorf("no-op should not change status, got %s", out.Status)
	}
}

func TestApplyFix_ClearsLastFailingIssueAndAdvances(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := fixableClaim()

	out := ApplyFix(c, c.SuggestedFixes[0], "", now)

	if out.Codes.POS != "10" {
		t.Errorf("expected POS replaced with 10, got %s", out.Codes.POS)
	}
	if !out.SuggestedFixes[0].Applied {
		t.Error("expected fix marked applied")
	}
	if out.Issues[0].Severity != SeverityPass {
		t.Errorf("expected fail issue downgraded to pass, got %s", out.Issues[0].Severity)
	}
	if !strings.HasSuffix(out.Issues[0].Message, " (resolved)") {
		t.Errorf("expected issue message suffixed, got %q", out.Issues[0].Message)
	}
	if out.ValidationResults[0].Severity != SeverityPass {
		t.Errorf("expected validation result resolved, got %s", out.ValidationResults[0].Severity)
	}
	if !strings.HasSuffix(out.ValidationResults[0].Message, " — resolved") {
		t.Errorf("expected validation message suffixed, got %q", out.ValidationResults[0].Message)
	}
	if out.Status != StatusBuilt {
		t.Errorf("expected needs_review -> built, got %s", out.Status)
	}
	if len(out.StateHistory) != 1 || out.StateHistory[0].Note != DefaultFixNote {
		t.Errorf("expected built history entry with default note, got %+v", out.StateHistory)
	}
	if !out.UpdatedAt.Equal(now) {
		t.Errorf("expected UpdatedAt restamped to %v, got %v", now, out.UpdatedAt)
	}

	// Input claim untouched.
	if c.Codes.POS != "02" || c.SuggestedFixes[0].Applied || c.Status != StatusNeedsReview {
		t.Error("input claim was mutated")
	}
}

func TestApplyFix_RemainingFailureBlocksAdvance(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := fixableClaim()
	c.Issues = append(c.Issues, Issue{Field: "member_id", Severity: SeverityFail, Message: "member id missing"})

	out := ApplyFix(c, c.SuggestedFixes[0], "", now)

	if out.Status != StatusNeedsReview {
		t.Errorf("expected status held at needs_review, got %s", out.Status)
	}
	if len(out.StateHistory) != 0 {
		t.Errorf("expected no history entry, got %+v", out.StateHistory)
	}
	if !out.UpdatedAt.Equal(now) {
		t.Error("expected UpdatedAt restamped even without status change")
	}
}

func TestApplyFix_CustomNote(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := fixableClaim()

	out := ApplyFix(c, c.SuggestedFixes[0], "Corrected POS per coder review", now)
	if out.StateHistory[0].Note != "Corrected POS per coder review" {
		t.Errorf("expected custom note, got %q", out.StateHistory[0].Note)
	}
}

func TestApplyFix_ModifiersUnion(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Claim{
		Status: StatusNeedsReview,
		Codes: CodeSet{CPT: []CPTLine{
			{Code: "99213", Modifiers: []string{"25"}},
			{Code: "90471", Modifiers: []string{"95"}},
		}},
		SuggestedFixes: []SuggestedFix{{Field: "modifiers", Value: "95"}},
	}

	out := ApplyFix(c, c.SuggestedFixes[0], "", now)

	if got := out.Codes.CPT[0].Modifiers; len(got) != 2 || got[1] != "95" {
		t.Errorf("expected 95 unioned into first line, got %v", got)
	}
	// Already present: no duplicate.
	if got := out.Codes.CPT[1].Modifiers; len(got) != 1 {
		t.Errorf("expected no duplicate modifier, got %v", got)
	}
}

func TestApplyFix_ICD10Union(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Claim{
		Status:         StatusNeedsReview,
		Codes:          CodeSet{ICD10: []string{"E11.9"}},
		SuggestedFixes: []SuggestedFix{{Field: "icd10", Value: "I10"}},
	}

	out := ApplyFix(c, c.SuggestedFixes[0], "", now)
	if got := out.Codes.ICD10; len(got) != 2 || got[1] != "I10" {
		t.Errorf("expected I10 appended, got %v", got)
	}

	again := ApplyFix(c, SuggestedFix{Field: "icd10", Value: "E11.9"}, "", now)
	if got := again.Codes.ICD10; len(got) != 1 {
		t.Errorf("expected no duplicate diagnosis, got %v", got)
	}
}

func TestApplyFix_UnknownFieldLeavesCodesAlone(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := fixableClaim()
	c.SuggestedFixes = []SuggestedFix{{Field: "member_id", Value: "M123"}}
	c.Issues = []Issue{{Field: "member_id", Severity: SeverityFail, Message: "member id missing"}}
	c.ValidationResults = nil

	out := ApplyFix(c, c.SuggestedFixes[0], "", now)
	if out.Codes.POS != "02" || len(out.Codes.ICD10) != 1 {
		t.Errorf("expected codes untouched, got %+v", out.Codes)
	}
	if out.Status != StatusBuilt {
		t.Errorf("expected advance once last failure cleared, got %s", out.Status)
	}
}

func TestApplyAllFixes_AppliesInOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Claim{
		Status: StatusNeedsReview,
		Codes:  CodeSet{POS: "02"},
		Issues: []Issue{
			{Field: "pos", Severity: SeverityFail, Message: "bad pos"},
			{Field: "icd10", Severity: SeverityFail, Message: "missing dx"},
		},
		SuggestedFixes: []SuggestedFix{
			{Field: "pos", Value: "10"},
			{Field: "icd10", Value: "I10"},
		},
	}

	out := ApplyAllFixes(c, "", now)

	if out.Codes.POS != "10" {
		t.Errorf("expected POS fixed, got %s", out.Codes.POS)
	}
	if len(out.Codes.ICD10) != 1 || out.Codes.ICD10[0] != "I10" {
		t.Errorf("expected dx added, got %v", out.Codes.ICD10)
	}
	for _, f := range out.SuggestedFixes {
		if !f.Applied {
			t.Errorf("expected all fixes applied, %s is not", f.Field)
		}
	}
	if out.Status != StatusBuilt {
		t.Errorf("expected built after clearing all failures, got %s", out.Status)
	}
}

func TestApplyAllFixes_Idempotent(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := fixableClaim()

	once := ApplyAllFixes(c, "", now)
	twice := ApplyAllFixes(once, "", now.Add(time.Hour))

	if twice.Codes.POS != once.Codes.POS {
		t.Error("expected codes unchanged on second pass")
	}
	if len(twice.StateHistory) != len(once.StateHistory) {
		t.Errorf("expected history unchanged, got %d then %d entries",
			len(once.StateHistory), len(twice.StateHistory))
	}
	if !twice.UpdatedAt.Equal(once.UpdatedAt) {
		t.Error("second pass with no unapplied fixes should not restamp")
	}
}

func TestApplyAllFixes_SameFieldTwiceAppliesOnce(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := Claim{
		Status: StatusNeedsReview,
		Codes:  CodeSet{POS: "02"},
		SuggestedFixes: []SuggestedFix{
			{Field: "pos", Value: "10"},
			{Field: "pos", Value: "11"},
		},
	}

	// The first fix marks every "pos" fix applied, so the second is skipped.
	out := ApplyAllFixes(c, "", now)
	if out.Codes.POS != "10" {
		t.Errorf("expected first fix to win, got POS %s", out.Codes.POS)
	}
}
