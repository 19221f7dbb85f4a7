// internal/scoring/features.go
package scoring

import (
	"strings"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// FeatureVector turns a customer record into the numeric vector a model
// artifact expects, in the artifact's feature order. Three kinds of
// feature names are understood:
//
//   - numeric columns passed through (tenure, MonthlyCharges, ...);
//   - Yes/No columns mapped to 1/0 (Partner, PaperlessBilling, ...);
//   - one-hot names in the Column_Value convention the feature
//     engineering used, e.g. "Contract_Month-to-month" or
//     "PaymentMethod_Electronic check".
//
// Unknown names contribute 0 so an artifact with a stray feature scores
// conservatively instead of panicking.
func FeatureVector(c model.Customer, names []string) []float64 {
	vec := make([]float64, len(names))
	for i, name := range names {
		vec[i] = featureValue(c, name)
	}
	return vec
}

func featureValue(c model.Customer, name string) float64 {
	switch name {
	case "tenure":
		return float64(c.Tenure)
	case "MonthlyCharges":
		return c.MonthlyCharges
	case "TotalCharges":
		if c.TotalCharges == nil {
			return 0
		}
		return *c.TotalCharges
	case "SeniorCitizen":
		return float64(c.SeniorCitizen)
	case "numAdminTickets":
		return float64(c.NumAdminTickets)
	case "numTechTickets":
		return float64(c.NumTechTickets)
	case "gender":
		// Encoded as Male=1 in the original feature set.
		return yesNo(c.Gender == "Male")
	case "Partner":
		return yesNo(c.Partner == "Yes")
	case "Dependents":
		return yesNo(c.Dependents == "Yes")
	case "PhoneService":
		return yesNo(c.PhoneService == "Yes")
	case "PaperlessBilling":
		return yesNo(c.PaperlessBilling == "Yes")
	}

	if col, val, ok := strings.Cut(name, "_"); ok {
		if field, known := columnValue(c, col); known {
			return yesNo(field == val)
		}
	}
	return 0
}

func yesNo(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// columnValue resolves a categorical column by its CSV name.
func columnValue(c model.Customer, column string) (string, bool) {
	switch column {
	case "gender":
		return c.Gender, true
	case "Partner":
		return c.Partner, true
	case "Dependents":
		return c.Dependents, true
	case "PhoneService":
		return c.PhoneService, true
	case "MultipleLines":
		return c.MultipleLines, true
	case "InternetService":
		return c.InternetService, true
	case "OnlineSecurity":
		return c.OnlineSecurity, true
	case "OnlineBackup":
		return c.OnlineBackup, true
	case "DeviceProtection":
		return c.DeviceProtection, true
	case "TechSupport":
		return c.TechSupport, true
	case "StreamingTV":
		return c.StreamingTV, true
	case "StreamingMovies":
		return c.StreamingMovies, true
	case "Contract":
		return c.Contract, true
	case "PaperlessBilling":
		return c.PaperlessBilling, true
	case "PaymentMethod":
		return c.PaymentMethod, true
	}
	return "", false
}
