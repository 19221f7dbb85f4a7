// internal/repository/campaign_repository.go
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	appErrors "github.com/churnsight/churnsight-backend/internal/errors"
	"github.com/churnsight/churnsight-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	ListCampaigns(offset, limit int, channel, status string) ([]*model.RetentionCampaign, int, error)
	GetByID(id int) (*model.RetentionCampaign, error)
	UpdateStatus(campaignID int, status string) error
	Create(c *model.RetentionCampaign) error

	// Outreach messages
	CreateOutreachMessage(campaignID int, customerID, idempotencyKey string) (*model.OutreachMessage, error)
	GetOutreachMessage(campaignID int, customerID string) (*model.OutreachMessage, error)
	GetOutreachMessageByID(id int) (*model.OutreachMessage, error)
	UpdateOutreachStatus(id int, status, lastError string) error
	UpdateOutreachContent(id int, content string) error
	GetCampaignStats(campaignID int) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sqlx.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) Create(c *model.RetentionCampaign) error {
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = "draft"
	}
	query := `
        INSERT INTO retention_campaigns (name, channel, status, base_template, scheduled_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.DB.QueryRow(query, c.Name, c.Channel, c.Status, c.BaseTemplate, c.ScheduledAt, c.CreatedAt).Scan(&c.ID)
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	query := `UPDATE retention_campaigns SET status=$1, updated_at=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, status, time.Now(), campaignID)
	return err
}

func (r *CampaignRepository) GetByID(id int) (*model.RetentionCampaign, error) {
	query := `
        SELECT id, name, channel, status, base_template, scheduled_at, created_at, updated_at
        FROM retention_campaigns WHERE id=$1
    `
	var c model.RetentionCampaign
	err := r.DB.Get(&c, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, channel, status string) ([]*model.RetentionCampaign, int, error) {
	campaigns := []*model.RetentionCampaign{}
	query := `SELECT id, name, channel, status, base_template, scheduled_at, created_at, updated_at FROM retention_campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if channel != "" {
		query += fmt.Sprintf(" AND channel=$%d", argPos)
		args = append(args, channel)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	if err := r.DB.Select(&campaigns, query, args...); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM retention_campaigns WHERE 1=1`
	argsCount := []interface{}{}
	argPosCount := 1
	if channel != "" {
		countQuery += fmt.Sprintf(" AND channel=$%d", argPosCount)
		argsCount = append(argsCount, channel)
		argPosCount++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPosCount)
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.Get(&total, countQuery, argsCount...); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ====================== Outreach Messages ======================

const outreachColumns = `id, campaign_id, customer_id, idempotency_key, status, rendered_content, last_error, retry_count, created_at, updated_at`

// CreateOutreachMessage is an idempotent insert: one message per
// campaign and customer, so resending a campaign never duplicates
// outreach.
func (r *CampaignRepository) CreateOutreachMessage(campaignID int, customerID, idempotencyKey string) (*model.OutreachMessage, error) {
	existing, err := r.GetOutreachMessage(campaignID, customerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	query := `
        INSERT INTO outreach_messages (campaign_id, customer_id, idempotency_key, status, retry_count, created_at, updated_at)
        VALUES ($1, $2, $3, 'pending', 0, NOW(), NOW())
        RETURNING ` + outreachColumns
	var msg model.OutreachMessage
	if err := r.DB.Get(&msg, query, campaignID, customerID, idempotencyKey); err != nil {
		return nil, errors.Wrapf(err, "fail to create outreach message for campaign %d customer %s", campaignID, customerID)
	}
	return &msg, nil
}

func (r *CampaignRepository) GetOutreachMessage(campaignID int, customerID string) (*model.OutreachMessage, error) {
	query := `SELECT ` + outreachColumns + `
              FROM outreach_messages
              WHERE campaign_id=$1 AND customer_id=$2`
	var msg model.OutreachMessage
	err := r.DB.Get(&msg, query, campaignID, customerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *CampaignRepository) GetOutreachMessageByID(id int) (*model.OutreachMessage, error) {
	query := `SELECT ` + outreachColumns + ` FROM outreach_messages WHERE id=$1`
	var msg model.OutreachMessage
	err := r.DB.Get(&msg, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *CampaignRepository) UpdateOutreachStatus(id int, status, lastError string) error {
	query := `UPDATE outreach_messages SET status=$1, last_error=$2, retry_count=retry_count+1, updated_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, status, lastError, id)
	return err
}

func (r *CampaignRepository) UpdateOutreachContent(id int, content string) error {
	query := `UPDATE outreach_messages SET rendered_content=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.DB.Exec(query, content, id)
	return err
}

func (r *CampaignRepository) GetCampaignStats(campaignID int) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM outreach_messages WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, nil
}
