// internal/service/campaign_service.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/churnsight/churnsight-backend/internal/errors"
	"github.com/churnsight/churnsight-backend/internal/model"
	"github.com/churnsight/churnsight-backend/internal/queue"
	"github.com/churnsight/churnsight-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	Queue        queue.Queue
}

// Result struct for SendCampaign
type SendCampaignResult struct {
	CampaignID     int
	MessagesQueued int
	Status         string
	MessageIDs     []int
}

type CampaignDetails struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Channel      string         `json:"channel"`
	Status       string         `json:"status"`
	BaseTemplate string         `json:"base_template"`
	ScheduledAt  *time.Time     `json:"scheduled_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    *time.Time     `json:"updated_at"`
	Stats        map[string]int `json:"stats"`
}

func (s *CampaignService) RenderPreview(campaignID int, customerID string, overrideTemplate *string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return "", err
	}

	customer, err := s.CustomerRepo.GetByID(customerID)
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "", appErrors.NewCustomerNotFound(customerID)
	}

	template := campaign.BaseTemplate
	if overrideTemplate != nil && strings.TrimSpace(*overrideTemplate) != "" {
		template = *overrideTemplate
	}
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("template cannot be empty")
	}

	return RenderTemplate(template, CustomerPlaceholders(customer)), nil
}

func (s *CampaignService) SendCampaign(campaignID int, customerIDs []string) (*SendCampaignResult, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status != "draft" && campaign.Status != "scheduled" && campaign.Status != "sending" {
		return nil, fmt.Errorf("campaign cannot be sent in status: %s", campaign.Status)
	}

	result := &SendCampaignResult{
		CampaignID:     campaignID,
		MessagesQueued: 0,
		Status:         "sending",
		MessageIDs:     []int{},
	}

	for _, customerID := range customerIDs {
		// Idempotent create (returns existing if already exists)
		msg, err := s.CampaignRepo.CreateOutreachMessage(campaignID, customerID, uuid.NewString())
		if err != nil {
			log.Println("⚠️ failed to create/get outreach message:", err)
			continue
		}

		if msg.RenderedContent == "" {
			rendered, err := s.RenderPreview(campaignID, customerID, nil)
			if err != nil {
				log.Println("⚠️ failed to render message for customer", customerID, ":", err)
				continue
			}

			if err := s.CampaignRepo.UpdateOutreachContent(msg.ID, rendered); err != nil {
				log.Println("⚠️ failed to update rendered content:", err)
				continue
			}
			msg.RenderedContent = rendered
		}

		if err := s.Queue.Publish(queue.OutreachTopic, queue.OutreachJob{OutreachMessageID: msg.ID}); err != nil {
			log.Println("⚠️ failed to enqueue message ID", msg.ID, ":", err)
			continue
		}

		result.MessageIDs = append(result.MessageIDs, msg.ID)
		result.MessagesQueued++
	}

	if campaign.Status != "sending" {
		if err := s.CampaignRepo.UpdateStatus(campaignID, "sending"); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (s *CampaignService) CreateCampaign(name, channel, baseTemplate string, scheduledAt *string) (*model.RetentionCampaign, error) {
	c := &model.RetentionCampaign{
		Name:         name,
		Channel:      channel,
		BaseTemplate: baseTemplate,
		Status:       "draft",
	}

	if scheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *scheduledAt)
		if err != nil {
			return nil, err
		}
		c.ScheduledAt = &t
	}

	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}

	return c, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, channel, status string) ([]model.RetentionCampaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, channel, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.RetentionCampaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(campaignID int) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.CampaignRepo.GetCampaignStats(campaignID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range stats {
		total += n
	}
	stats["total"] = total

	return &CampaignDetails{
		ID:           campaign.ID,
		Name:         campaign.Name,
		Channel:      campaign.Channel,
		Status:       campaign.Status,
		BaseTemplate: campaign.BaseTemplate,
		ScheduledAt:  campaign.ScheduledAt,
		CreatedAt:    campaign.CreatedAt,
		UpdatedAt:    campaign.UpdatedAt,
		Stats:        stats,
	}, nil
}
