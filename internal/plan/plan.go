// Package plan holds the subscription tiers and their monthly comprobante
// quotas. Quotas are display-only; nothing here enforces them server-side.
package plan

import (
	"time"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
)

// Unlimited marks a plan with no monthly cap.
const Unlimited = -1

var monthlyLimits = map[string]int{
	models.PlanBasico:      150,
	models.PlanProfesional: 600,
	models.PlanNegocios:    Unlimited,
}

// MonthlyLimit returns the comprobante quota for a plan. Unknown plans fall
// back to the basic tier.
func MonthlyLimit(plan string) int {
	if limit, ok := monthlyLimits[plan]; ok {
		return limit
	}
	return monthlyLimits[models.PlanBasico]
}

// UsagePercent maps a current count onto [0,100]. Unlimited plans always
// report 0, regardless of the actual count.
func UsagePercent(current, limit int) float64 {
	if limit == Unlimited {
		return 0
	}
	if limit <= 0 {
		return 0
	}
	pct := float64(current) / float64(limit)
	if pct > 1 {
		pct = 1
	}
	return pct * 100
}

// MonthBounds returns the first and last calendar day of the month containing
// now, as YYYY-MM-DD strings matching Comprobante.Fecha.
func MonthBounds(now time.Time) (string, string) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}

// Usage is the current-month consumption of a user against their quota.
// Invalidos is derived as Total-Validos from two independent count queries;
// under concurrent writes the two counts can observe different snapshots.
type Usage struct {
	Total     int     `json:"total"`
	Validos   int     `json:"validos"`
	Invalidos int     `json:"invalidos"`
	Plan      string  `json:"plan"`
	Limit     int     `json:"limite"`
	Percent   float64 `json:"porcentaje"`
}

// BuildUsage assembles the usage report for a plan from the two raw counts.
func BuildUsage(planName string, total, validos int) Usage {
	limit := MonthlyLimit(planName)
	return Usage{
		Total:     total,
		Validos:   validos,
		Invalidos: total - validos,
		Plan:      planName,
		Limit:     limit,
		Percent:   UsagePercent(total, limit),
	}
}
