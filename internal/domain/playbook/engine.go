package playbook

import (
	"fmt"

	"github.com/rcm/rcm/internal/domain/claim"
)

// DenialReasonCode extracts the denial reason code from a claim, in priority
// order: CARC from the payer response, CARC from the rejection response,
// then RARC from either. Returns "" when the claim carries no code.
func DenialReasonCode(c claim.Claim) string {
	if c.PayerResponse != nil && len(c.PayerResponse.CARCCodes) > 0 {
		return c.PayerResponse.CARCCodes[0]
	}
	if c.RejectionResponse != nil && len(c.RejectionResponse.CARCCodes) > 0 {
		return c.RejectionResponse.CARCCodes[0]
	}
	if c.PayerResponse != nil && len(c.PayerResponse.RARCCodes) > 0 {
		return c.PayerResponse.RARCCodes[0]
	}
	if c.RejectionResponse != nil && len(c.RejectionResponse.RARCCodes) > 0 {
		return c.RejectionResponse.RARCCodes[0]
	}
	return ""
}

// FindMatchingRule returns the first enabled rule whose code equals the
// claim's denial reason code, or nil when the claim has no code or nothing
// matches. List order decides precedence between duplicate codes.
func FindMatchingRule(c claim.Claim, cfg Config) *Rule {
	code := DenialReasonCode(c)
	if code == "" {
		return nil
	}
	for i := range cfg.CustomRules {
		r := &cfg.CustomRules[i]
		if r.Enabled && r.Code == code {
			return r
		}
	}
	return nil
}

// EligibleForAutoResubmit reports whether the playbook may auto-resubmit the
// claim. All of the following must hold: retries are globally enabled, the
// attempt budget is not exhausted, the claim is denied, and an enabled
// auto_resubmit rule matches its denial code. Malformed input is simply
// ineligible; this never errors.
func EligibleForAutoResubmit(c claim.Claim, cfg Config) bool {
	if !cfg.AutoRetryEnabled {
		return false
	}
	if c.AttemptCount >= cfg.MaxRetryAttempts {
		return false
	}
	if c.Status != claim.StatusDenied {
		return false
	}
	rule := FindMatchingRule(c, cfg)
	return rule != nil && rule.Strategy == StrategyAutoResubmit
}

// HistoryEntry builds the history entry the playbook records when it acts on
// a claim: note "<message> (rule: <code>) - <detail>" under state built.
func HistoryEntry(message, ruleCode, detail string) claim.StateHistoryEntry {
	note := fmt.Sprintf("%s (rule: %s)", message, ruleCode)
	if detail != "" {
		note = fmt.Sprintf("%s - %s", note, detail)
	}
	return claim.StateHistoryEntry{State: claim.StatusBuilt, Note: note}
}
