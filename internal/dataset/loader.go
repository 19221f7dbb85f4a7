// internal/dataset/loader.go
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// Report collects everything the consistency checks found while loading
// a churn CSV. Errors are schema violations that make the file unusable;
// Warnings are drift signals an analyst should look at.
type Report struct {
	Rows      int      `json:"rows"`
	Churners  int      `json:"churners"`
	ChurnRate float64  `json:"churn_rate"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

func (r *Report) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// LoadFile reads and validates a churn CSV from disk.
func LoadFile(path string) ([]model.Customer, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fail to open dataset %s", path)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a churn CSV and runs the documented consistency checks:
// exact column set, unique customerID, Churn in {Yes, No}, TotalCharges
// blank only on tenure-0 rows, and class balance near the documented
// split. Parse errors are collected into the report rather than aborting
// the whole load, so a single bad row does not hide the rest.
func Load(r io.Reader) ([]model.Customer, *Report, error) {
	cr := csv.NewReader(r)
	report := &Report{}

	header, err := cr.Read()
	if err != nil {
		return nil, nil, errors.Wrap(err, "fail to read dataset header")
	}
	if !checkHeader(header, report) {
		// Without the documented header the row positions mean nothing.
		return nil, report, nil
	}

	seen := make(map[string]int)
	customers := []model.Customer{}
	rowNum := 1 // header is row 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "fail to read dataset row")
		}
		rowNum++

		c, ok := parseRow(rec, rowNum, report)
		if !ok {
			continue
		}
		if prev, dup := seen[c.CustomerID]; dup {
			report.errorf("row %d: duplicate customerID %s (first seen at row %d)", rowNum, c.CustomerID, prev)
			continue
		}
		seen[c.CustomerID] = rowNum

		report.Rows++
		if c.Churned() {
			report.Churners++
		}
		customers = append(customers, c)
	}

	if report.Rows > 0 {
		report.ChurnRate = float64(report.Churners) / float64(report.Rows)
		if report.ChurnRate < ExpectedChurnRate-ChurnRateTolerance ||
			report.ChurnRate > ExpectedChurnRate+ChurnRateTolerance {
			report.warnf("churn rate %.1f%% is outside the documented ~%.0f%% band",
				report.ChurnRate*100, ExpectedChurnRate*100)
		}
	}

	return customers, report, nil
}

func checkHeader(header []string, report *Report) bool {
	if len(header) != len(Columns) {
		report.errorf("expected %d columns, got %d", len(Columns), len(header))
		return false
	}
	for i, name := range header {
		if strings.TrimSpace(name) != Columns[i] {
			report.errorf("column %d: expected %q, got %q", i+1, Columns[i], name)
		}
	}
	return len(report.Errors) == 0
}

func parseRow(rec []string, rowNum int, report *Report) (model.Customer, bool) {
	var c model.Customer
	before := len(report.Errors)

	c.CustomerID = strings.TrimSpace(rec[0])
	if c.CustomerID == "" {
		report.errorf("row %d: empty customerID", rowNum)
	}
	c.Gender = rec[1]
	c.SeniorCitizen = parseIntField(rec[2], "SeniorCitizen", rowNum, report)
	c.Partner = rec[3]
	c.Dependents = rec[4]
	c.Tenure = parseIntField(rec[5], "tenure", rowNum, report)
	c.PhoneService = rec[6]
	c.MultipleLines = rec[7]
	c.InternetService = rec[8]
	c.OnlineSecurity = rec[9]
	c.OnlineBackup = rec[10]
	c.DeviceProtection = rec[11]
	c.TechSupport = rec[12]
	c.StreamingTV = rec[13]
	c.StreamingMovies = rec[14]
	c.Contract = rec[15]
	c.PaperlessBilling = rec[16]
	c.PaymentMethod = rec[17]
	c.MonthlyCharges = parseFloatField(rec[18], "MonthlyCharges", rowNum, report)

	// TotalCharges may legitimately be blank, but only for customers who
	// have not completed a billing cycle yet (tenure = 0).
	if strings.TrimSpace(rec[19]) == "" {
		if c.Tenure != 0 {
			report.errorf("row %d: blank TotalCharges with tenure %d", rowNum, c.Tenure)
		}
		c.TotalCharges = nil
	} else {
		v := parseFloatField(rec[19], "TotalCharges", rowNum, report)
		c.TotalCharges = &v
	}

	c.Churn = strings.TrimSpace(rec[20])
	if c.Churn != "Yes" && c.Churn != "No" {
		report.errorf("row %d: Churn must be Yes or No, got %q", rowNum, rec[20])
	}
	c.NumAdminTickets = parseIntField(rec[21], "numAdminTickets", rowNum, report)
	c.NumTechTickets = parseIntField(rec[22], "numTechTickets", rowNum, report)

	return c, len(report.Errors) == before
}

func parseIntField(s, name string, rowNum int, report *Report) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		report.errorf("row %d: invalid %s %q", rowNum, name, s)
		return 0
	}
	return v
}

func parseFloatField(s, name string, rowNum int, report *Report) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		report.errorf("row %d: invalid %s %q", rowNum, name, s)
		return 0
	}
	return v
}
