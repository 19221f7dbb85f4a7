// internal/dataset/schema.go
package dataset

// Columns is the documented header of data/raw/churn.csv, in order.
// The validator rejects any file whose header does not match exactly.
var Columns = []string{
	"customerID",
	"gender",
	"SeniorCitizen",
	"Partner",
	"Dependents",
	"tenure",
	"PhoneService",
	"MultipleLines",
	"InternetService",
	"OnlineSecurity",
	"OnlineBackup",
	"DeviceProtection",
	"TechSupport",
	"StreamingTV",
	"StreamingMovies",
	"Contract",
	"PaperlessBilling",
	"PaymentMethod",
	"MonthlyCharges",
	"TotalCharges",
	"Churn",
	"numAdminTickets",
	"numTechTickets",
}

// Documented class balance: roughly 73% No / 27% Yes. Drift beyond the
// tolerance is reported as a warning, not a failure.
const (
	ExpectedChurnRate  = 0.27
	ChurnRateTolerance = 0.05
)
