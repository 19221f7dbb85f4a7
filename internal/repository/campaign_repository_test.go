package repository

import (
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	appErrors "github.com/churnsight/churnsight-backend/internal/errors"
)

var outreachCols = []string{
	"id", "campaign_id", "customer_id", "idempotency_key", "status",
	"rendered_content", "last_error", "retry_count", "created_at", "updated_at",
}

func TestCampaignGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM retention_campaigns WHERE id").
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(42)
	if _, ok := err.(*appErrors.ErrCampaignNotFound); !ok {
		t.Errorf("GetByID() error = %v, want ErrCampaignNotFound", err)
	}
}

func TestCreateOutreachMessageInsertsWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM outreach_messages").
		WithArgs(1, "7590-VHVEG").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO outreach_messages").
		WillReturnRows(sqlmock.NewRows(outreachCols).
			AddRow(7, 1, "7590-VHVEG", "key-1", "pending", "", "", 0, now, now))

	msg, err := repo.CreateOutreachMessage(1, "7590-VHVEG", "key-1")
	if err != nil {
		t.Fatalf("CreateOutreachMessage() error = %v", err)
	}
	if msg.ID != 7 || msg.Status != "pending" || msg.IdempotencyKey != "key-1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateOutreachMessageReturnsExisting(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM outreach_messages").
		WithArgs(1, "7590-VHVEG").
		WillReturnRows(sqlmock.NewRows(outreachCols).
			AddRow(7, 1, "7590-VHVEG", "key-1", "sent", "Hi!", "", 0, now, now))

	msg, err := repo.CreateOutreachMessage(1, "7590-VHVEG", "key-2")
	if err != nil {
		t.Fatalf("CreateOutreachMessage() error = %v", err)
	}
	// The existing message keeps its original idempotency key.
	if msg.ID != 7 || msg.Status != "sent" || msg.IdempotencyKey != "key-1" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetCampaignStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &CampaignRepository{DB: db}

	mock.ExpectQuery("SELECT status, COUNT(.+) FROM outreach_messages").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("sent", 5).
			AddRow("failed", 2))

	stats, err := repo.GetCampaignStats(3)
	if err != nil {
		t.Fatalf("GetCampaignStats() error = %v", err)
	}
	if stats["sent"] != 5 || stats["failed"] != 2 || stats["pending"] != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
