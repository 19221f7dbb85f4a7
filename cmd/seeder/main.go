// cmd/seeder/main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/churnsight/churnsight-backend/internal/dataset"
	"github.com/churnsight/churnsight-backend/internal/db"
	"github.com/churnsight/churnsight-backend/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	db.Init()

	if schemaPath := os.Getenv("SCHEMA_PATH"); schemaPath != "" {
		content, err := os.ReadFile(schemaPath)
		if err != nil {
			log.Fatalf("failed to read %s: %v", schemaPath, err)
		}
		if _, err := db.DB.Exec(string(content)); err != nil {
			log.Fatalf("failed to execute %s: %v", schemaPath, err)
		}
		log.Println("✅ Applied schema:", schemaPath)
	}

	path := os.Getenv("DATASET_PATH")
	if path == "" {
		path = "data/raw/churn.csv"
	}

	customers, report, err := dataset.LoadFile(path)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}
	for _, warning := range report.Warnings {
		log.Println("⚠️", warning)
	}
	if !report.OK() {
		for _, e := range report.Errors {
			log.Println("❌", e)
		}
		log.Fatalf("%s failed validation with %d error(s), refusing to seed", path, len(report.Errors))
	}

	repo := &repository.CustomerRepository{DB: db.DB}
	if err := repo.ReplaceAll(customers); err != nil {
		log.Fatalf("failed to load customers: %v", err)
	}

	log.Printf("✅ Seeded %d customers (%.1f%% churn) from %s\n", report.Rows, report.ChurnRate*100, path)
}
