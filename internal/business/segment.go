// internal/business/segment.go
package business

import (
	"sort"

	"github.com/churnsight/churnsight-backend/internal/model"
)

const (
	SegmentHighValue = "High-Value"
	SegmentLowValue  = "Low-Value"
)

// MedianMonthlyCharge is the split point between value segments.
func MedianMonthlyCharge(customers []model.Customer) float64 {
	if len(customers) == 0 {
		return 0
	}
	charges := make([]float64, len(customers))
	for i, c := range customers {
		charges[i] = c.MonthlyCharges
	}
	sort.Float64s(charges)
	n := len(charges)
	if n%2 == 1 {
		return charges[n/2]
	}
	return (charges[n/2-1] + charges[n/2]) / 2
}

// ValueSegment assigns a customer to a segment: at or above the median
// monthly charge is High-Value.
func ValueSegment(c model.Customer, median float64) string {
	if c.MonthlyCharges >= median {
		return SegmentHighValue
	}
	return SegmentLowValue
}

// SplitByValue partitions customers around the median monthly charge.
func SplitByValue(customers []model.Customer) (high, low []model.Customer, median float64) {
	median = MedianMonthlyCharge(customers)
	for _, c := range customers {
		if ValueSegment(c, median) == SegmentHighValue {
			high = append(high, c)
		} else {
			low = append(low, c)
		}
	}
	return high, low, median
}

// StrategyComparison contrasts one global threshold against
// segment-specific optimal thresholds.
type StrategyComparison struct {
	SingleThreshold float64          `json:"single_threshold"`
	SingleHighROI   float64          `json:"single_high_roi"`
	SingleLowROI    float64          `json:"single_low_roi"`
	SingleTotalROI  float64          `json:"single_total_roi"`
	HighOptimal     ThresholdMetrics `json:"high_value_optimal"`
	LowOptimal      ThresholdMetrics `json:"low_value_optimal"`
	SegmentTotalROI float64          `json:"segment_total_roi"`
	Improvement     float64          `json:"improvement"`
}

// CompareStrategies measures what per-segment thresholds buy over the
// best single threshold applied to everyone.
func CompareStrategies(highSweep, lowSweep []ThresholdMetrics, singleThreshold float64) StrategyComparison {
	highOpt := OptimalRow(highSweep)
	lowOpt := OptimalRow(lowSweep)

	singleHigh := RowAt(highSweep, singleThreshold).NetROI
	singleLow := RowAt(lowSweep, singleThreshold).NetROI
	singleTotal := singleHigh + singleLow
	segmentTotal := highOpt.NetROI + lowOpt.NetROI

	return StrategyComparison{
		SingleThreshold: singleThreshold,
		SingleHighROI:   singleHigh,
		SingleLowROI:    singleLow,
		SingleTotalROI:  singleTotal,
		HighOptimal:     highOpt,
		LowOptimal:      lowOpt,
		SegmentTotalROI: segmentTotal,
		Improvement:     segmentTotal - singleTotal,
	}
}
