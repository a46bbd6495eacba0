package claim

import (
	"time"
)

// DefaultFixNote is the history note used when a fix application clears the
// last blocking issue and no note is supplied.
const DefaultFixNote = "Validation cleared"

// ApplyFix applies one suggested fix to a claim and returns the updated
// claim. The input claim is not mutated.
//
// Applying a fix that is already marked applied is a no-op. Otherwise the
// matching suggested fix (matched by field name) is marked applied, every
// "fail" issue on that field is downgraded to "pass", every non-"pass"
// validation result on that field is resolved, and the structured codes are
// updated according to the fix's field:
//
//   - "pos": the place-of-service code is replaced with the fix value
//   - "modifiers": the fix value is unioned into every CPT line's modifiers
//   - "icd10": the fix value is unioned into the ICD-10 list
//   - anything else: codes are left unchanged
//
// When no "fail" issues remain afterwards and the claim is in needs_review,
// the status advances to built and a history entry is recorded with the
// given note (DefaultFixNote when empty). UpdatedAt is restamped on every
// applied fix, whether or not the status changed.
func ApplyFix(c Claim, fix SuggestedFix, note string, now time.Time) Claim {
	if fix.Applied {
		return c
	}

	out := c
	out.SuggestedFixes = make([]SuggestedFix, len(c.SuggestedFixes))
	copy(out.SuggestedFixes, c.SuggestedFixes)
	for i := range out.SuggestedFixes {
		if out.SuggestedFixes[i].Field == fix.Field {
			out.SuggestedFixes[i].Applied = true
		}
	}

	out.Issues = make([]Issue, len(c.Issues))
	copy(out.Issues, c.Issues)
	for i := range out.Issues {
		if out.Issues[i].Field == fix.Field && out.Issues[i].Severity == SeverityFail {
			out.Issues[i].Severity = SeverityPass
			out.Issues[i].Message += " (resolved)"
		}
	}

	out.ValidationResults = make([]ValidationResult, len(c.ValidationResults))
	copy(out.ValidationResults, c.ValidationResults)
	for i := range out.ValidationResults {
		if out.ValidationResults[i].Field == fix.Field && out.ValidationResults[i].Severity != SeverityPass {
			out.ValidationResults[i].Severity = SeverityPass
			out.ValidationResults[i].Message += " — resolved"
		}
	}

	out.Codes = applyCodeFix(c.Codes, fix)

	if out.FailingIssueCount() == 0 && out.Status == StatusNeedsReview {
		out.Status = StatusBuilt
		if note == "" {
			note = DefaultFixNote
		}
		out.StateHistory = AppendHistory(out.StateHistory, StatusBuilt, note, now)
	}

	out.UpdatedAt = now
	return out
}

// ApplyAllFixes applies every currently-unapplied suggested fix in list
// order. Equivalent to repeated single application.
func ApplyAllFixes(c Claim, note string, now time.Time) Claim {
	// Re-read each fix from the current claim so fixes flipped to applied by
	// an earlier iteration (same field) short-circuit as no-ops.
	for i := range c.SuggestedFixes {
		if f := c.SuggestedFixes[i]; !f.Applied {
			c = ApplyFix(c, f, note, now)
		}
	}
	return c
}

func applyCodeFix(codes CodeSet, fix SuggestedFix) CodeSet {
	out := codes
	out.ICD10 = append([]string(nil), codes.ICD10...)
	out.CPT = make([]CPTLine, len(codes.CPT))
	for i, line := range codes.CPT {
		out.CPT[i] = line
		out.CPT[i].Modifiers = append([]string(nil), line.Modifiers...)
	}

	switch fix.Field {
	case "pos":
		out.POS = fix.Value
	case "modifiers":
		for i := range out.CPT {
			out.CPT[i].Modifiers = unionString(out.CPT[i].Modifiers, fix.Value)
		}
	case "icd10":
		out.ICD10 = unionString(out.ICD10, fix.Value)
	}
	return out
}

// unionString appends v unless already present.
func unionString(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
