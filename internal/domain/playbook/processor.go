package playbook

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rcm/rcm/internal/domain/claim"
)

// Action is what the processor decided to do with a denied claim.
type Action string

const (
	// ActionNone: no enabled rule matched, or the claim was not actionable.
	ActionNone Action = "none"
	// ActionAlreadyProcessed: the claim id was seen by this processor before.
	ActionAlreadyProcessed Action = "already_processed"
	ActionAutoResubmit     Action = "auto_resubmit"
	ActionManualReview     Action = "manual_review"
	ActionNotify           Action = "notify"
)

// Outcome is the result of processing one denial.
type Outcome struct {
	Action   Action      `json:"action"`
	RuleCode string      `json:"rule_code,omitempty"`
	Claim    claim.Claim `json:"claim"`
	// Changed is true when the returned claim differs from the input and
	// must be persisted by the caller.
	Changed bool `json:"changed"`
}

// Processor runs denial-playbook decisions. It owns the processed-claim-id
// set, so each claim is acted on at most once per processor lifetime;
// repeated evaluation of the same claim is a no-op. The set is explicit
// state on the processor, not package state, so tests and callers control
// its scope. A mutex guards the set: one processor is shared across
// concurrent requests and sweeps, and marking must be a single
// test-and-set so racing callers cannot both act on a claim.
//
// Auto-resubmission is a two-step protocol: Process marks the claim built
// and ready (applying playbook fixes when the rule asks for them); the
// caller's scheduler performs the actual submission later. Process itself
// never blocks or waits.
type Processor struct {
	mu        sync.Mutex
	processed map[uuid.UUID]struct{}
}

func NewProcessor() *Processor {
	return &Processor{processed: make(map[uuid.UUID]struct{})}
}

// Processed reports whether the claim id has already been handled.
func (p *Processor) Processed(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.processed[id]
	return ok
}

// markProcessed records the claim id and reports whether it was already
// present. The test-and-set is atomic under the processor mutex.
func (p *Processor) markProcessed(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.processed[id]; ok {
		return true
	}
	p.processed[id] = struct{}{}
	return false
}

// Process evaluates one denied claim against the playbook and returns the
// outcome. Claims that are not denied, carry no matching enabled rule, or
// were already processed are left untouched.
func (p *Processor) Process(c claim.Claim, cfg Config, now time.Time) Outcome {
	if c.Status != claim.StatusDenied {
		return Outcome{Action: ActionNone, Claim: c}
	}
	if p.markProcessed(c.ID) {
		return Outcome{Action: ActionAlreadyProcessed, Claim: c}
	}

	rule := FindMatchingRule(c, cfg)
	if rule == nil {
		return Outcome{Action: ActionNone, Claim: c}
	}

	switch rule.Strategy {
	case StrategyAutoResubmit:
		if !EligibleForAutoResubmit(c, cfg) {
			return Outcome{Action: ActionNone, RuleCode: rule.Code, Claim: c}
		}
		return Outcome{
			Action:   ActionAutoResubmit,
			RuleCode: rule.Code,
			Claim:    MarkForResubmit(c, *rule, now),
			Changed:  true,
		}

	case StrategyManualReview:
		c.StateHistory = claim.AppendHistory(c.StateHistory, claim.StatusDenied,
			fmt.Sprintf("Flagged for manual review (rule: %s)", rule.Code), now)
		c.UpdatedAt = now
		return Outcome{Action: ActionManualReview, RuleCode: rule.Code, Claim: c, Changed: true}

	case StrategyNotify:
		c.StateHistory = claim.AppendHistory(c.StateHistory, claim.StatusDenied,
			fmt.Sprintf("Notification sent (rule: %s)", rule.Code), now)
		c.UpdatedAt = now
		return Outcome{Action: ActionNotify, RuleCode: rule.Code, Claim: c, Changed: true}
	}

	return Outcome{Action: ActionNone, RuleCode: rule.Code, Claim: c}
}

// MarkForResubmit is step one of the auto-resubmission protocol: it applies
// the claim's outstanding fixes when the rule carries autoFix, loops the
// claim back to built, and flags it auto-submitted. The note lands as
// "Auto-resubmitted via playbook (rule: <code>) - attempt #<N>" where N is
// the upcoming attempt number. Step two, the actual submission, is the
// caller's scheduler invoking the claim service.
func MarkForResubmit(c claim.Claim, rule Rule, now time.Time) claim.Claim {
	attempt := c.AttemptCount + 1

	if rule.AutoFix && len(c.UnappliedFixes()) > 0 {
		c = claim.ApplyAllFixes(c, "", now)
		entry := HistoryEntry("Auto-resubmitted via playbook", rule.Code, fmt.Sprintf("attempt #%d", attempt))
		c.StateHistory = claim.AppendHistory(c.StateHistory, entry.State, entry.Note, now)
	}

	c.Status = claim.StatusBuilt
	c.AutoSubmitted = true
	c.StateHistory = claim.AppendHistory(c.StateHistory, claim.StatusBuilt,
		fmt.Sprintf("Automatic resubmission attempt #%d", attempt), now)
	c.UpdatedAt = now
	return c
}
