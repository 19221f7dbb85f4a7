// internal/scoring/logistic.go
package scoring

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// LogisticModel evaluates an exported logistic regression: features are
// standardized with the fitted scaler, then passed through the linear
// model and a sigmoid.
type LogisticModel struct {
	ModelName    string    `json:"name"`
	Features     []string  `json:"features"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	ScalerMean   []float64 `json:"scaler_mean"`
	ScalerScale  []float64 `json:"scaler_scale"`
}

func parseLogistic(raw []byte, path string) (*LogisticModel, error) {
	var m LogisticModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "fail to parse logistic artifact %s", path)
	}
	n := len(m.Features)
	if n == 0 || len(m.Coefficients) != n || len(m.ScalerMean) != n || len(m.ScalerScale) != n {
		return nil, errors.Errorf("logistic artifact %s: features/coefficients/scaler lengths disagree", path)
	}
	return &m, nil
}

func (m *LogisticModel) Name() string {
	return m.ModelName
}

func (m *LogisticModel) PredictProba(c model.Customer) float64 {
	x := FeatureVector(c, m.Features)
	z := m.Intercept
	for i, coef := range m.Coefficients {
		scale := m.ScalerScale[i]
		if scale == 0 {
			scale = 1
		}
		z += coef * (x[i] - m.ScalerMean[i]) / scale
	}
	return 1 / (1 + math.Exp(-z))
}

// Drivers returns the topN coefficients by magnitude, tagged with the
// direction they push churn risk.
func (m *LogisticModel) Drivers(topN int) []Driver {
	drivers := make([]Driver, len(m.Features))
	for i, f := range m.Features {
		d := Driver{Feature: f, Weight: m.Coefficients[i], Direction: "increases churn"}
		if d.Weight < 0 {
			d.Direction = "decreases churn"
		}
		drivers[i] = d
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return math.Abs(drivers[i].Weight) > math.Abs(drivers[j].Weight)
	})
	if topN > 0 && topN < len(drivers) {
		drivers = drivers[:topN]
	}
	return drivers
}
