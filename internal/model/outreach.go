// internal/model/outreach.go
package model

import "time"

type OutreachMessage struct {
	ID              int       `db:"id" json:"id"`
	CampaignID      int       `db:"campaign_id" json:"campaign_id"`
	CustomerID      string    `db:"customer_id" json:"customer_id"`
	IdempotencyKey  string    `db:"idempotency_key" json:"idempotency_key"`
	Status          string    `db:"status" json:"status"` // pending, sent, failed
	RenderedContent string    `db:"rendered_content" json:"rendered_content"`
	LastError       string    `db:"last_error,omitempty" json:"last_error,omitempty"`
	RetryCount      int       `db:"retry_count" json:"retry_count"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
