// internal/business/threshold.go
package business

import "math"

// Sweep bounds mirror the analysis notebooks: 0.10 up to (not including)
// 0.95 in steps of 0.05.
const (
	SweepStart = 0.10
	SweepEnd   = 0.95
	SweepStep  = 0.05
)

// ThresholdMetrics is one row of the decision table: the confusion
// counts at a classification threshold plus their dollar consequences.
type ThresholdMetrics struct {
	Threshold          float64 `json:"threshold"`
	CustomersContacted int     `json:"customers_contacted"`
	TP                 int     `json:"tp"`
	FP                 int     `json:"fp"`
	FN                 int     `json:"fn"`
	TN                 int     `json:"tn"`
	Precision          float64 `json:"precision"`
	Recall             float64 `json:"recall"`
	RetentionCost      float64 `json:"retention_cost"`
	RevenueSaved       float64 `json:"revenue_saved"`
	OpportunityCost    float64 `json:"opportunity_cost"`
	NetROI             float64 `json:"net_roi"`
}

// Metrics evaluates one threshold. A customer is contacted when their
// churn probability is at or above the threshold; the economics follow
// the cost matrix.
func Metrics(churned []bool, probs []float64, threshold float64, cm CostMatrix) ThresholdMetrics {
	m := ThresholdMetrics{Threshold: threshold}
	for i, p := range probs {
		flagged := p >= threshold
		switch {
		case flagged && churned[i]:
			m.TP++
		case flagged && !churned[i]:
			m.FP++
		case !flagged && churned[i]:
			m.FN++
		default:
			m.TN++
		}
	}

	m.CustomersContacted = m.TP + m.FP
	m.RetentionCost = float64(m.CustomersContacted) * cm.RetentionCost
	m.RevenueSaved = float64(m.TP) * cm.RetentionSuccessRate * cm.CLV
	m.OpportunityCost = float64(m.FN) * cm.RetentionSuccessRate * cm.CLV
	m.NetROI = m.RevenueSaved - m.RetentionCost

	if m.TP+m.FP > 0 {
		m.Precision = float64(m.TP) / float64(m.TP+m.FP)
	}
	if m.TP+m.FN > 0 {
		m.Recall = float64(m.TP) / float64(m.TP+m.FN)
	}
	return m
}

// Sweep evaluates every threshold in [start, end) on the given grid.
func Sweep(churned []bool, probs []float64, cm CostMatrix, start, end, step float64) []ThresholdMetrics {
	var rows []ThresholdMetrics
	for i := 0; ; i++ {
		t := start + float64(i)*step
		if t >= end-1e-9 {
			break
		}
		rows = append(rows, Metrics(churned, probs, t, cm))
	}
	return rows
}

// DefaultSweep runs the standard 0.10..0.90 grid.
func DefaultSweep(churned []bool, probs []float64, cm CostMatrix) []ThresholdMetrics {
	return Sweep(churned, probs, cm, SweepStart, SweepEnd, SweepStep)
}

// OptimalRow picks the threshold with the highest net ROI. Ties keep the
// earlier (lower) threshold.
func OptimalRow(sweep []ThresholdMetrics) ThresholdMetrics {
	best := sweep[0]
	for _, row := range sweep[1:] {
		if row.NetROI > best.NetROI {
			best = row
		}
	}
	return best
}

// RowAt snaps a requested threshold to the closest row of the sweep.
func RowAt(sweep []ThresholdMetrics, threshold float64) ThresholdMetrics {
	best := sweep[0]
	for _, row := range sweep[1:] {
		if math.Abs(row.Threshold-threshold) < math.Abs(best.Threshold-threshold) {
			best = row
		}
	}
	return best
}
