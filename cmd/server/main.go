package main

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evdash/evdash-backend-go/internal/api"
	"github.com/evdash/evdash-backend-go/internal/config"
	"github.com/evdash/evdash-backend-go/internal/database"
	"github.com/evdash/evdash-backend-go/internal/handler"
	"github.com/evdash/evdash-backend-go/internal/ingest"
	"github.com/evdash/evdash-backend-go/internal/observability/metrics"
	"github.com/evdash/evdash-backend-go/internal/repository"
	"github.com/evdash/evdash-backend-go/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("Invalid timezone:", err)
	}

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	metrics.Init(prometheus.DefaultRegisterer)

	tripRepo := repository.NewTripRepository(db)
	fileRepo := repository.NewFileRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	ingestSvc := service.NewIngestService(tripRepo, fileRepo, ingest.NewReader(loc))
	tripSvc := service.NewTripService(tripRepo)
	statsSvc := service.NewStatsService(statsRepo)
	energySvc := service.NewEnergyService(tripRepo, cfg.Energy)
	backupSvc := service.NewBackupService(db, tripRepo, fileRepo)
	statusSvc := service.NewStatusService(tripRepo, fileRepo, cfg.DBPath, cfg.Timezone)

	router := api.SetupRouter(cfg, api.Handlers{
		Trips:  handler.NewTripHandler(tripSvc),
		Upload: handler.NewUploadHandler(ingestSvc, cfg.UploadDir),
		Stats:  handler.NewStatsHandler(statsSvc),
		Energy: handler.NewEnergyHandler(energySvc),
		Backup: handler.NewBackupHandler(backupSvc),
		Status: handler.NewStatusHandler(statusSvc, cfg.Timezone),
		Export: handler.NewExportHandler(tripSvc, statsSvc),
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
