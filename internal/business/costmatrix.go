// internal/business/costmatrix.go
package business

import "github.com/churnsight/churnsight-backend/internal/model"

// Default assumptions behind the retention economics. CLV assumes the
// average saved customer stays another 24 months; a retention offer
// costs $50 per contact and saves 1 in 4 at-risk customers.
const (
	DefaultLifetimeMonths       = 24
	DefaultRetentionCost        = 50
	DefaultRetentionSuccessRate = 0.25
)

// CostMatrix prices each cell of the confusion matrix:
// TP = saved revenue minus the offer, FP = a wasted offer,
// FN = the revenue we could have saved, TN = no action, no cost.
type CostMatrix struct {
	CLV                  float64 `json:"clv"`
	RetentionCost        float64 `json:"retention_cost"`
	RetentionSuccessRate float64 `json:"retention_success_rate"`
	TP                   float64 `json:"tp"`
	FP                   float64 `json:"fp"`
	FN                   float64 `json:"fn"`
	TN                   float64 `json:"tn"`
}

// NewCostMatrix builds the matrix for a given customer lifetime value.
func NewCostMatrix(clv, retentionCost, successRate float64) CostMatrix {
	return CostMatrix{
		CLV:                  clv,
		RetentionCost:        retentionCost,
		RetentionSuccessRate: successRate,
		TP:                   clv*successRate - retentionCost,
		FP:                   -retentionCost,
		FN:                   -(clv * successRate),
		TN:                   0,
	}
}

// DefaultCostMatrix uses the standard retention assumptions.
func DefaultCostMatrix(clv float64) CostMatrix {
	return NewCostMatrix(clv, DefaultRetentionCost, DefaultRetentionSuccessRate)
}

// WithCLV reprices the matrix for a segment-specific lifetime value,
// keeping the offer cost and success rate.
func (m CostMatrix) WithCLV(clv float64) CostMatrix {
	return NewCostMatrix(clv, m.RetentionCost, m.RetentionSuccessRate)
}

// AverageCLV is mean MonthlyCharges times the assumed remaining lifetime.
func AverageCLV(customers []model.Customer, lifetimeMonths int) float64 {
	if len(customers) == 0 {
		return 0
	}
	var sum float64
	for _, c := range customers {
		sum += c.MonthlyCharges
	}
	return sum / float64(len(customers)) * float64(lifetimeMonths)
}
