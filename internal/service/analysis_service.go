// internal/service/analysis_service.go
package service

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/churnsight/churnsight-backend/internal/business"
	"github.com/churnsight/churnsight-backend/internal/model"
	"github.com/churnsight/churnsight-backend/internal/repository"
	"github.com/churnsight/churnsight-backend/internal/scoring"
)

// AnalysisService turns the loaded churn snapshot and the pre-fitted
// models into the business-impact reports: executive overview, decision
// table, segment strategy, contact list, and explainability.
type AnalysisService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	Models       *scoring.Registry

	LifetimeMonths       int
	RetentionCost        float64
	RetentionSuccessRate float64
}

func NewAnalysisService(customers repository.CustomerRepositoryInterface, models *scoring.Registry) *AnalysisService {
	return &AnalysisService{
		CustomerRepo:         customers,
		Models:               models,
		LifetimeMonths:       business.DefaultLifetimeMonths,
		RetentionCost:        business.DefaultRetentionCost,
		RetentionSuccessRate: business.DefaultRetentionSuccessRate,
	}
}

type Overview struct {
	TotalCustomers   int     `json:"total_customers"`
	Churners         int     `json:"churners"`
	ChurnRate        float64 `json:"churn_rate"`
	CLV              float64 `json:"clv"`
	RevenueAtRisk    float64 `json:"revenue_at_risk"`
	BestModel        string  `json:"best_model"`
	OptimalThreshold float64 `json:"optimal_threshold"`
	NetROISingle     float64 `json:"net_roi_single"`
	NetROISegmented  float64 `json:"net_roi_segmented"`
}

type Decision struct {
	Model     string                      `json:"model"`
	Requested business.ThresholdMetrics   `json:"requested"`
	Optimal   business.ThresholdMetrics   `json:"optimal"`
	Sweep     []business.ThresholdMetrics `json:"sweep"`
}

type SegmentSummary struct {
	Segment          string  `json:"segment"`
	Count            int     `json:"count"`
	ChurnRate        float64 `json:"churn_rate"`
	AvgMonthlyCharge float64 `json:"avg_monthly_charge"`
	CLV              float64 `json:"clv"`
	OptimalThreshold float64 `json:"optimal_threshold"`
	NetROI           float64 `json:"net_roi"`
}

type SegmentReport struct {
	Model        string                      `json:"model"`
	ChargeMedian float64                     `json:"charge_median"`
	Segments     []SegmentSummary            `json:"segments"`
	Strategy     business.StrategyComparison `json:"strategy"`
}

type Contact struct {
	CustomerID       string  `json:"customerID"`
	Segment          string  `json:"value_segment"`
	MonthlyCharges   float64 `json:"MonthlyCharges"`
	Contract         string  `json:"Contract"`
	Tenure           int     `json:"tenure"`
	ChurnProbability float64 `json:"churn_probability"`
}

type ModelSummary struct {
	Model              string  `json:"model"`
	OptimalThreshold   float64 `json:"optimal_threshold"`
	NetROI             float64 `json:"net_roi"`
	Precision          float64 `json:"precision"`
	Recall             float64 `json:"recall"`
	CustomersContacted int     `json:"customers_contacted"`
}

type ModelSelection struct {
	Candidates  []ModelSummary `json:"candidates"`
	Recommended ModelSummary   `json:"recommended"`
}

type Explanation struct {
	Model   string           `json:"model"`
	Drivers []scoring.Driver `json:"drivers"`
}

func (s *AnalysisService) snapshot() ([]model.Customer, error) {
	customers, err := s.CustomerRepo.ListAll()
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, errors.New("no customers loaded; import the dataset first")
	}
	return customers, nil
}

func (s *AnalysisService) costMatrix(customers []model.Customer) business.CostMatrix {
	clv := business.AverageCLV(customers, s.LifetimeMonths)
	return business.NewCostMatrix(clv, s.RetentionCost, s.RetentionSuccessRate)
}

func churnLabels(customers []model.Customer) []bool {
	labels := make([]bool, len(customers))
	for i := range customers {
		labels[i] = customers[i].Churned()
	}
	return labels
}

func (s *AnalysisService) sweepFor(m scoring.Model, customers []model.Customer, cm business.CostMatrix) []business.ThresholdMetrics {
	return business.DefaultSweep(churnLabels(customers), scoring.ScoreAll(m, customers), cm)
}

// bestModel sweeps every loaded model and keeps the one with the
// highest optimal net ROI.
func (s *AnalysisService) bestModel(customers []model.Customer, cm business.CostMatrix) (scoring.Model, []business.ThresholdMetrics, error) {
	var (
		best      scoring.Model
		bestSweep []business.ThresholdMetrics
	)
	for _, name := range s.Models.Names() {
		m, err := s.Models.Get(name)
		if err != nil {
			return nil, nil, err
		}
		sweep := s.sweepFor(m, customers, cm)
		if best == nil || business.OptimalRow(sweep).NetROI >= business.OptimalRow(bestSweep).NetROI {
			best, bestSweep = m, sweep
		}
	}
	if best == nil {
		return nil, nil, errors.New("no models loaded")
	}
	return best, bestSweep, nil
}

// Overview is the executive snapshot: is this worth caring about?
func (s *AnalysisService) Overview() (*Overview, error) {
	customers, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cm := s.costMatrix(customers)

	o := &Overview{
		TotalCustomers: len(customers),
		CLV:            cm.CLV,
	}
	for i := range customers {
		if customers[i].Churned() {
			o.Churners++
		}
	}
	o.ChurnRate = float64(o.Churners) / float64(len(customers))
	o.RevenueAtRisk = float64(o.Churners) * cm.CLV

	best, bestSweep, err := s.bestModel(customers, cm)
	if err != nil {
		return nil, err
	}
	opt := business.OptimalRow(bestSweep)
	o.BestModel = best.Name()
	o.OptimalThreshold = opt.Threshold
	o.NetROISingle = opt.NetROI

	strategy, err := s.segmentStrategy(customers, best, cm, opt.Threshold)
	if err != nil {
		return nil, err
	}
	o.NetROISegmented = strategy.SegmentTotalROI

	return o, nil
}

// DecisionTable evaluates one model at one threshold, with the full
// sweep alongside so a caller can explore the trade-off. An empty model
// name picks the best loaded model.
func (s *AnalysisService) DecisionTable(modelName string, threshold float64) (*Decision, error) {
	customers, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cm := s.costMatrix(customers)

	var m scoring.Model
	var sweep []business.ThresholdMetrics
	if modelName == "" {
		m, sweep, err = s.bestModel(customers, cm)
	} else {
		m, err = s.Models.Get(modelName)
		if err == nil {
			sweep = s.sweepFor(m, customers, cm)
		}
	}
	if err != nil {
		return nil, err
	}
	optimal := business.OptimalRow(sweep)
	requested := optimal
	if threshold > 0 {
		requested = business.RowAt(sweep, threshold)
	}

	return &Decision{
		Model:     m.Name(),
		Requested: requested,
		Optimal:   optimal,
		Sweep:     sweep,
	}, nil
}

func (s *AnalysisService) segmentStrategy(customers []model.Customer, m scoring.Model, cm business.CostMatrix, singleThreshold float64) (business.StrategyComparison, error) {
	high, low, _ := business.SplitByValue(customers)
	highSweep := s.sweepFor(m, high, cm.WithCLV(business.AverageCLV(high, s.LifetimeMonths)))
	lowSweep := s.sweepFor(m, low, cm.WithCLV(business.AverageCLV(low, s.LifetimeMonths)))
	return business.CompareStrategies(highSweep, lowSweep, singleThreshold), nil
}

// Segments reports the value-segment breakdown and what per-segment
// thresholds buy over a single global one.
func (s *AnalysisService) Segments(modelName string) (*SegmentReport, error) {
	customers, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cm := s.costMatrix(customers)

	var m scoring.Model
	var globalSweep []business.ThresholdMetrics
	if modelName == "" {
		m, globalSweep, err = s.bestModel(customers, cm)
	} else {
		m, err = s.Models.Get(modelName)
		if err == nil {
			globalSweep = s.sweepFor(m, customers, cm)
		}
	}
	if err != nil {
		return nil, err
	}
	singleThreshold := business.OptimalRow(globalSweep).Threshold

	high, low, median := business.SplitByValue(customers)
	strategy, err := s.segmentStrategy(customers, m, cm, singleThreshold)
	if err != nil {
		return nil, err
	}

	report := &SegmentReport{
		Model:        m.Name(),
		ChargeMedian: median,
		Strategy:     strategy,
		Segments: []SegmentSummary{
			summarizeSegment(business.SegmentHighValue, high, s.LifetimeMonths, strategy.HighOptimal),
			summarizeSegment(business.SegmentLowValue, low, s.LifetimeMonths, strategy.LowOptimal),
		},
	}
	return report, nil
}

func summarizeSegment(name string, customers []model.Customer, lifetimeMonths int, optimal business.ThresholdMetrics) SegmentSummary {
	sum := SegmentSummary{
		Segment:          name,
		Count:            len(customers),
		OptimalThreshold: optimal.Threshold,
		NetROI:           optimal.NetROI,
	}
	if len(customers) == 0 {
		return sum
	}
	churners := 0
	var charges float64
	for i := range customers {
		if customers[i].Churned() {
			churners++
		}
		charges += customers[i].MonthlyCharges
	}
	sum.ChurnRate = float64(churners) / float64(len(customers))
	sum.AvgMonthlyCharge = charges / float64(len(customers))
	sum.CLV = sum.AvgMonthlyCharge * float64(lifetimeMonths)
	return sum
}

// Contacts lists the customers a model flags at a threshold, highest
// risk first. An empty model name picks the best loaded model; a zero
// threshold uses that model's optimal.
func (s *AnalysisService) Contacts(modelName string, threshold float64, topN int) ([]Contact, error) {
	customers, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cm := s.costMatrix(customers)

	var m scoring.Model
	var sweep []business.ThresholdMetrics
	if modelName == "" {
		m, sweep, err = s.bestModel(customers, cm)
	} else {
		m, err = s.Models.Get(modelName)
		if err == nil {
			sweep = s.sweepFor(m, customers, cm)
		}
	}
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = business.OptimalRow(sweep).Threshold
	}
	if topN <= 0 {
		topN = 20
	}
	if topN > 100 {
		topN = 100
	}

	_, _, median := business.SplitByValue(customers)
	probs := scoring.ScoreAll(m, customers)

	contacts := []Contact{}
	for i := range customers {
		if probs[i] < threshold {
			continue
		}
		contacts = append(contacts, Contact{
			CustomerID:       customers[i].CustomerID,
			Segment:          business.ValueSegment(customers[i], median),
			MonthlyCharges:   customers[i].MonthlyCharges,
			Contract:         customers[i].Contract,
			Tenure:           customers[i].Tenure,
			ChurnProbability: probs[i],
		})
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].ChurnProbability > contacts[j].ChurnProbability
	})
	if len(contacts) > topN {
		contacts = contacts[:topN]
	}
	return contacts, nil
}

// CompareModels ranks every loaded model by optimal net ROI.
func (s *AnalysisService) CompareModels() (*ModelSelection, error) {
	customers, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	cm := s.costMatrix(customers)

	sel := &ModelSelection{}
	for _, name := range s.Models.Names() {
		m, err := s.Models.Get(name)
		if err != nil {
			return nil, err
		}
		opt := business.OptimalRow(s.sweepFor(m, customers, cm))
		sel.Candidates = append(sel.Candidates, ModelSummary{
			Model:              name,
			OptimalThreshold:   opt.Threshold,
			NetROI:             opt.NetROI,
			Precision:          opt.Precision,
			Recall:             opt.Recall,
			CustomersContacted: opt.CustomersContacted,
		})
	}
	if len(sel.Candidates) == 0 {
		return nil, errors.New("no models loaded")
	}
	sel.Recommended = sel.Candidates[0]
	for _, c := range sel.Candidates[1:] {
		if c.NetROI >= sel.Recommended.NetROI {
			sel.Recommended = c
		}
	}
	return sel, nil
}

// Explain reports the top churn drivers of a model. An empty model
// name picks the best loaded model.
func (s *AnalysisService) Explain(modelName string, topN int) (*Explanation, error) {
	var m scoring.Model
	var err error
	if modelName == "" {
		customers, snapErr := s.snapshot()
		if snapErr != nil {
			return nil, snapErr
		}
		m, _, err = s.bestModel(customers, s.costMatrix(customers))
	} else {
		m, err = s.Models.Get(modelName)
	}
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 10
	}
	return &Explanation{Model: m.Name(), Drivers: m.Drivers(topN)}, nil
}
