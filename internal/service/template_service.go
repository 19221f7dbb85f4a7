// internal/service/template_service.go
package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// RenderTemplate substitutes {placeholder} tokens. Empty values render
// as <unknown> so a half-filled record never produces a blank message.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		if v == "" {
			v = "<unknown>"
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// CustomerPlaceholders exposes the churn fields retention templates can
// reference.
func CustomerPlaceholders(c *model.Customer) map[string]string {
	return map[string]string{
		"customer_id":      c.CustomerID,
		"contract":         c.Contract,
		"tenure":           strconv.Itoa(c.Tenure),
		"monthly_charges":  fmt.Sprintf("%.2f", c.MonthlyCharges),
		"internet_service": c.InternetService,
		"payment_method":   c.PaymentMethod,
	}
}
