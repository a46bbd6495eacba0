package playbook

import "time"

// Strategy is the remediation strategy a denial rule maps to.
type Strategy string

const (
	StrategyAutoResubmit Strategy = "auto_resubmit"
	StrategyManualReview Strategy = "manual_review"
	StrategyNotify       Strategy = "notify"
)

// Valid reports whether s is a member of the closed strategy set.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyAutoResubmit, StrategyManualReview, StrategyNotify:
		return true
	}
	return false
}

// Rule maps one denial reason code (CARC/RARC) to a remediation strategy.
// Rule order determines precedence when codes are duplicated.
type Rule struct {
	Code        string   `json:"code"`
	Description string   `json:"description,omitempty"`
	Strategy    Strategy `json:"strategy"`
	Enabled     bool     `json:"enabled"`
	AutoFix     bool     `json:"auto_fix"`
}

// Config is the denial playbook configuration. It is supplied wholesale on
// every decision and never mutated by the engine.
type Config struct {
	AutoRetryEnabled bool      `json:"auto_retry_enabled"`
	MaxRetryAttempts int       `json:"max_retry_attempts"`
	CustomRules      []Rule    `json:"custom_rules"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// DefaultConfig is the playbook shipped before any operator customization:
// retries on, three attempts, and a starter rule set covering the most
// common remediable CARC codes.
func DefaultConfig() Config {
	return Config{
		AutoRetryEnabled: true,
		MaxRetryAttempts: 3,
		CustomRules: []Rule{
			{Code: "197", Description: "Precertification/authorization absent", Strategy: StrategyAutoResubmit, Enabled: true, AutoFix: true},
			{Code: "16", Description: "Claim lacks information", Strategy: StrategyAutoResubmit, Enabled: true, AutoFix: true},
			{Code: "29", Description: "Time limit for filing has expired", Strategy: StrategyManualReview, Enabled: true},
			{Code: "96", Description: "Non-covered charge", Strategy: StrategyNotify, Enabled: true},
		},
	}
}
