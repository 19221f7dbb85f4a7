// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/churnsight/churnsight-backend/internal/controller"
	"github.com/churnsight/churnsight-backend/internal/db"
	"github.com/churnsight/churnsight-backend/internal/handler"
	"github.com/churnsight/churnsight-backend/internal/queue"
	"github.com/churnsight/churnsight-backend/internal/repository"
	"github.com/churnsight/churnsight-backend/internal/scoring"
	"github.com/churnsight/churnsight-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		modelDir = "models"
	}
	models, err := scoring.LoadDir(modelDir)
	if err != nil {
		log.Fatalf("failed to load model artifacts from %s: %v", modelDir, err)
	}
	log.Println("✅ Loaded models:", models.Names())

	customerRepo := &repository.CustomerRepository{DB: db.DB}
	campaignRepo := &repository.CampaignRepository{DB: db.DB}

	analysisService := service.NewAnalysisService(customerRepo, models)

	var q queue.Queue
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		q = &queue.AMQPQueue{URL: amqpURL}
		log.Println("✅ Publishing outreach jobs to RabbitMQ")
	} else {
		// No broker configured: process sends in this process.
		mem := queue.NewInMemoryQueue()
		jobs := make(chan int, 100)
		mem.Subscribe(queue.OutreachTopic, func(payload any) error {
			job, ok := payload.(queue.OutreachJob)
			if !ok {
				return nil
			}
			jobs <- job.OutreachMessageID
			return nil
		})
		worker := service.NewWorker(campaignRepo, jobs, func(msg string) error {
			log.Println("📤 Sending outreach:", msg)
			return nil
		})
		go worker.Start()
		q = mem
		log.Println("⚠️ AMQP_URL not set, processing outreach in-process")
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		CustomerRepo: customerRepo,
		Queue:        q,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		AnalysisService: analysisService,
	}

	analysisHandler := handler.NewAnalysisHandler(analysisService, os.Getenv("DATASET_PATH"))

	r := chi.NewRouter()

	// Analysis routes
	r.Get("/overview", analysisHandler.OverviewHandler)
	r.Get("/decision", analysisHandler.DecisionHandler)
	r.Get("/segments", analysisHandler.SegmentsHandler)
	r.Get("/segments/contacts", analysisHandler.ContactsHandler)
	r.Get("/explainability", analysisHandler.ExplainabilityHandler)
	r.Get("/models", analysisHandler.ModelsHandler)
	r.Get("/dataset/report", analysisHandler.DatasetReportHandler)

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignController.GetCampaignDetails)
	r.Post("/campaigns/{id}/send", campaignController.SendCampaign)
	r.Post("/campaigns/{id}/personalized-preview", campaignController.PersonalizedPreview)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Println("🚀 Server running on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
