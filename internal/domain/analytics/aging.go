package analytics

import (
	"math"
	"time"

	"github.com/rcm/rcm/internal/domain/claim"
)

// AgingBucket accumulates outstanding claims by count and balance.
type AgingBucket struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// AgingBuckets is the fixed four-way partition of claim age in days.
type AgingBuckets struct {
	Days0To30  AgingBucket `json:"0-30"`
	Days31To60 AgingBucket `json:"31-60"`
	Days61To90 AgingBucket `json:"61-90"`
	Days90Plus AgingBucket `json:"90+"`
}

// RCMMetrics is the accounts-receivable snapshot for the outstanding claim
// set. TotalOutstandingAR always equals the sum of the bucket amounts.
type RCMMetrics struct {
	OutstandingClaims  int          `json:"outstanding_claims"`
	TotalOutstandingAR float64      `json:"total_outstanding_ar"`
	DaysInAR           int          `json:"days_in_ar"`
	MaxDaysOld         int          `json:"max_days_old"`
	Buckets            AgingBuckets `json:"aging_buckets"`
}

// ageInDays is the calendar-day ceiling of now − t. A service performed
// earlier today already counts as one day old.
func ageInDays(t, now time.Time) int {
	d := now.Sub(t)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// outstanding reports whether a claim counts toward AR: anything not denied
// that still carries a positive balance.
func outstanding(c *claim.Claim) bool {
	return c.Status != claim.StatusDenied && c.OutstandingBalance() > 0
}

// CalculateRCMMetrics buckets the outstanding claims by age and totals their
// balances. A nil or empty claim set yields the zero-valued result rather
// than an error; dashboards render it as an empty AR.
func CalculateRCMMetrics(claims []*claim.Claim, now time.Time) RCMMetrics {
	var m RCMMetrics
	daysSum := 0
	for _, c := range claims {
		if c == nil || !outstanding(c) {
			continue
		}
		balance := c.OutstandingBalance()
		days := ageInDays(c.DateOfService, now)

		var b *AgingBucket
		switch {
		case days <= 30:
			b = &m.Buckets.Days0To30
		case days <= 60:
			b = &m.Buckets.Days31To60
		case days <= 90:
			b = &m.Buckets.Days61To90
		default:
			b = &m.Buckets.Days90Plus
		}
		b.Count++
		b.Amount += balance

		m.OutstandingClaims++
		m.TotalOutstandingAR += balance
		daysSum += days
		if days > m.MaxDaysOld {
			m.MaxDaysOld = days
		}
	}
	if m.OutstandingClaims > 0 {
		m.DaysInAR = int(math.Round(float64(daysSum) / float64(m.OutstandingClaims)))
	}
	return m
}
