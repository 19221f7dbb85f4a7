// internal/business/roi.go
package business

// ModelComparison is the model-selection decision: which candidate
// maximizes net ROI at its own optimal threshold.
type ModelComparison struct {
	Model     string           `json:"model"`
	Threshold float64          `json:"threshold"`
	NetROI    float64          `json:"net_roi"`
	Optimal   ThresholdMetrics `json:"optimal"`
}

// CompareModels picks the better of two candidates by optimal net ROI.
// Ties go to the second model, matching the original selection logic.
func CompareModels(nameA string, sweepA []ThresholdMetrics, nameB string, sweepB []ThresholdMetrics) ModelComparison {
	optA := OptimalRow(sweepA)
	optB := OptimalRow(sweepB)
	if optA.NetROI > optB.NetROI {
		return ModelComparison{Model: nameA, Threshold: optA.Threshold, NetROI: optA.NetROI, Optimal: optA}
	}
	return ModelComparison{Model: nameB, Threshold: optB.Threshold, NetROI: optB.NetROI, Optimal: optB}
}
