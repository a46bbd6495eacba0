package claim

import (
	"time"

	"github.com/google/uuid"
)

// Status is the claim workflow status. The set is closed; Rank defines the
// default sort order used by claim listings.
type Status string

const (
	StatusNeedsReview   Status = "needs_review"
	StatusRejected277CA Status = "rejected_277ca"
	StatusDenied        Status = "denied"
	StatusBuilt         Status = "built"
	StatusSubmitted     Status = "submitted"
	StatusAwaiting277CA Status = "awaiting_277ca"
	StatusAccepted277CA Status = "accepted_277ca"
	StatusPaid          Status = "paid"
)

var statusOrder = map[Status]int{
	StatusNeedsReview:   0,
	StatusRejected277CA: 1,
	StatusDenied:        2,
	StatusBuilt:         3,
	StatusSubmitted:     4,
	StatusAwaiting277CA: 5,
	StatusAccepted277CA: 6,
	StatusPaid:          7,
}

// Rank returns the position of s in the fixed status ordering. Unknown
// statuses sort last.
func (s Status) Rank() int {
	if r, ok := statusOrder[s]; ok {
		return r
	}
	return len(statusOrder)
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Severity of an issue or validation result.
type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// FixSource identifies where a suggested fix came from.
type FixSource string

const (
	FixSourceRule FixSource = "rule"
	FixSourceLLM  FixSource = "llm"
)

// ResponseType is the transaction type of a payer or clearinghouse response.
type ResponseType string

const (
	Response277CA ResponseType = "277CA"
	Response835   ResponseType = "835"
)

// CPTLine is a single CPT service line on a claim.
type CPTLine struct {
	Code      string   `json:"code"`
	Amount    float64  `json:"amount"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// CodeSet holds the structured billing codes for a claim.
type CodeSet struct {
	ICD10 []string  `json:"icd10,omitempty"`
	CPT   []CPTLine `json:"cpt,omitempty"`
	POS   string    `json:"pos,omitempty"`
}

// Issue is a review finding tied to a claim field. Issues, suggested fixes
// and validation results are linked solely by field-name equality.
type Issue struct {
	Field    string   `json:"field"`
	Code     string   `json:"code,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SuggestedFix is a proposed correction for a claim field.
type SuggestedFix struct {
	Field                string    `json:"field"`
	Value                string    `json:"value"`
	Source               FixSource `json:"source"`
	Confidence           float64   `json:"confidence"`
	Applied              bool      `json:"applied"`
	RequiresConfirmation bool      `json:"requires_confirmation,omitempty"`
}

// ValidationResult is the outcome of a scrubbing rule for a claim field.
type ValidationResult struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// StateHistoryEntry records one status transition. The history list is
// ordered by time ascending.
type StateHistoryEntry struct {
	State Status    `json:"state"`
	At    time.Time `json:"at"`
	Note  string    `json:"note,omitempty"`
}

// PayerResponse carries a clearinghouse acknowledgment (277CA) or a payer
// remittance (835) attached to a claim.
type PayerResponse struct {
	Type      ResponseType `json:"type"`
	Accepted  bool         `json:"accepted"`
	CARCCodes []string     `json:"carc_codes,omitempty"`
	RARCCodes []string     `json:"rarc_codes,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// ScrubResult is a single scrubber finding recorded at submission time.
type ScrubResult struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
}

// Claim maps to the claim table. Nested review artifacts and history are
// stored as JSONB.
type Claim struct {
	ID                uuid.UUID           `db:"id" json:"id"`
	ClaimNumber       string              `db:"claim_number" json:"claim_number"`
	EncounterID       string              `db:"encounter_id" json:"encounter_id"`
	PatientID         string              `db:"patient_id" json:"patient_id"`
	PatientName       string              `db:"patient_name" json:"patient_name"`
	PayerID           string              `db:"payer_id" json:"payer_id"`
	PayerName         string              `db:"payer_name" json:"payer_name"`
	MemberID          *string             `db:"member_id" json:"member_id,omitempty"`
	RenderingProvider string              `db:"rendering_provider" json:"rendering_provider"`
	DateOfService     time.Time           `db:"date_of_service" json:"date_of_service"`
	VisitType         string              `db:"visit_type" json:"visit_type"`
	State             string              `db:"state" json:"state"`
	TotalCharge       float64             `db:"total_charge" json:"total_charge"`
	PaidAmount        float64             `db:"paid_amount" json:"paid_amount"`
	Codes             CodeSet             `db:"codes" json:"codes"`
	Status            Status              `db:"status" json:"status"`
	PriorAuthStatus   *string             `db:"prior_auth_status" json:"prior_auth_status,omitempty"`
	Confidence        float64             `db:"confidence" json:"confidence"`
	FieldConfidence   map[string]float64  `db:"field_confidence" json:"field_confidence,omitempty"`
	Issues            []Issue             `db:"issues" json:"issues,omitempty"`
	SuggestedFixes    []SuggestedFix      `db:"suggested_fixes" json:"suggested_fixes,omitempty"`
	ValidationResults []ValidationResult  `db:"validation_results" json:"validation_results,omitempty"`
	AutoSubmitted     bool                `db:"auto_submitted" json:"auto_submitted"`
	AttemptCount      int                 `db:"attempt_count" json:"attempt_count"`
	StateHistory      []StateHistoryEntry `db:"state_history" json:"state_history,omitempty"`
	PayerResponse     *PayerResponse      `db:"payer_response" json:"payer_response,omitempty"`
	RejectionResponse *PayerResponse      `db:"rejection_response" json:"rejection_response,omitempty"`
	ScrubResults      []ScrubResult       `db:"scrub_results" json:"scrub_results,omitempty"`
	CreatedAt         time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updated_at"`
}

// OutstandingBalance is the charge amount net of payments. Aging math uses
// this, never the raw charge.
func (c *Claim) OutstandingBalance() float64 {
	return c.TotalCharge - c.PaidAmount
}

// FailingIssueCount returns the number of issues with severity "fail".
func (c *Claim) FailingIssueCount() int {
	n := 0
	for _, is := range c.Issues {
		if is.Severity == SeverityFail {
			n++
		}
	}
	return n
}

// UnappliedFixes returns the suggested fixes not yet applied, in list order.
func (c *Claim) UnappliedFixes() []SuggestedFix {
	var out []SuggestedFix
	for _, f := range c.SuggestedFixes {
		if !f.Applied {
			out = append(out, f)
		}
	}
	return out
}

// MilestoneAt returns the most recent history timestamp for the given state,
// or false when the claim never reached it.
func (c *Claim) MilestoneAt(s Status) (time.Time, bool) {
	var at time.Time
	found := false
	for _, h := range c.StateHistory {
		if h.State == s && (!found || h.At.After(at)) {
			at = h.At
			found = true
		}
	}
	return at, found
}
