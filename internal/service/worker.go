// internal/service/worker.go
package service

import (
	"log"

	"github.com/cenkalti/backoff"

	"github.com/churnsight/churnsight-backend/internal/model"
)

// OutreachRepository defines the methods the worker needs
type OutreachRepository interface {
	GetOutreachMessageByID(id int) (*model.OutreachMessage, error)
	UpdateOutreachStatus(id int, status, lastError string) error
}

// Worker processes queued outreach sends from a job channel.
type Worker struct {
	Repo     OutreachRepository
	JobChan  <-chan int
	SendFunc func(msg string) error
}

func NewWorker(repo OutreachRepository, jobChan <-chan int, sendFunc func(msg string) error) *Worker {
	return &Worker{
		Repo:     repo,
		JobChan:  jobChan,
		SendFunc: sendFunc,
	}
}

// Start begins processing jobs. Each send is retried with exponential
// backoff before the message is marked failed.
func (w *Worker) Start() {
	for jobID := range w.JobChan {
		msg, err := w.Repo.GetOutreachMessageByID(jobID)
		if err != nil {
			log.Println("Failed to get outreach message:", err)
			continue
		}
		if msg == nil {
			log.Println("Outreach message not found for ID:", jobID)
			continue
		}

		err = backoff.Retry(func() error {
			return w.SendFunc(msg.RenderedContent)
		}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))

		if err != nil {
			if err := w.Repo.UpdateOutreachStatus(msg.ID, "failed", err.Error()); err != nil {
				log.Println("Failed to update outreach status:", err)
			}
			continue
		}
		if err := w.Repo.UpdateOutreachStatus(msg.ID, "sent", ""); err != nil {
			log.Println("Failed to update outreach status:", err)
		}
	}
}
