// internal/model/customer.go
package model

// Customer is one row of the churn snapshot: one record per customerID,
// frozen at extraction time. TotalCharges is nullable because brand-new
// customers (tenure 0) have not been billed yet.
type Customer struct {
	CustomerID       string   `db:"customer_id" json:"customerID"`
	Gender           string   `db:"gender" json:"gender"`
	SeniorCitizen    int      `db:"senior_citizen" json:"SeniorCitizen"`
	Partner          string   `db:"partner" json:"Partner"`
	Dependents       string   `db:"dependents" json:"Dependents"`
	Tenure           int      `db:"tenure" json:"tenure"`
	PhoneService     string   `db:"phone_service" json:"PhoneService"`
	MultipleLines    string   `db:"multiple_lines" json:"MultipleLines"`
	InternetService  string   `db:"internet_service" json:"InternetService"`
	OnlineSecurity   string   `db:"online_security" json:"OnlineSecurity"`
	OnlineBackup     string   `db:"online_backup" json:"OnlineBackup"`
	DeviceProtection string   `db:"device_protection" json:"DeviceProtection"`
	TechSupport      string   `db:"tech_support" json:"TechSupport"`
	StreamingTV      string   `db:"streaming_tv" json:"StreamingTV"`
	StreamingMovies  string   `db:"streaming_movies" json:"StreamingMovies"`
	Contract         string   `db:"contract" json:"Contract"`
	PaperlessBilling string   `db:"paperless_billing" json:"PaperlessBilling"`
	PaymentMethod    string   `db:"payment_method" json:"PaymentMethod"`
	MonthlyCharges   float64  `db:"monthly_charges" json:"MonthlyCharges"`
	TotalCharges     *float64 `db:"total_charges" json:"TotalCharges,omitempty"`
	Churn            string   `db:"churn" json:"Churn"`
	NumAdminTickets  int      `db:"num_admin_tickets" json:"numAdminTickets"`
	NumTechTickets   int      `db:"num_tech_tickets" json:"numTechTickets"`
}

// Churned reports whether the record carries the positive label.
func (c *Customer) Churned() bool {
	return c.Churn == "Yes"
}
