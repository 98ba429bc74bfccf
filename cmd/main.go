package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	datapuur "github.com/genaimavericks/datapuur-export"
	"github.com/genaimavericks/datapuur-export/internal/api/handler/endpoints"
	"github.com/genaimavericks/datapuur-export/internal/api/models"
	"github.com/genaimavericks/datapuur-export/internal/api/repo"
	"github.com/genaimavericks/datapuur-export/internal/api/service"
	"github.com/genaimavericks/datapuur-export/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	datapuur.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if datapuur.GetConfig().Mode == "dev" {
		if err := datapuur.DB.AutoMigrate(
			&models.DataConnection{},
			&models.Dataset{},
		); err != nil {
			datapuur.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		datapuur.Logger.Info().Msg("Database migrated successfully")
		seedDevCatalog()
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(datapuur.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	activity, err := service.NewActivityPublisher(datapuur.GetConfig().NatsURL)
	if err != nil {
		datapuur.Logger.Warn().Err(err).Msg("Activity publisher disabled")
	}
	defer activity.Close()

	exportService := service.NewExportService(activity)
	endpoints.ExportHandler(router, exportService)

	datapuur.Logger.Debug().Msgf("Starting export API on port %s", datapuur.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		datapuur.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

// seedDevCatalog registers a sample dataset so the export endpoints have
// something to serve in dev mode. Ingestion owns the catalog in production.
func seedDevCatalog() {
	datasetRepo := repo.NewDatasetRepository()

	var count int64
	datasetRepo.Db.Model(&models.Dataset{}).Count(&count)
	if count > 0 {
		return
	}

	cfg := datapuur.GetConfig().MainDatabase
	conn := models.DataConnection{
		Name:         "main",
		DbType:       models.DBTypePostgres,
		Host:         cfg.Host,
		Port:         5432,
		User:         cfg.User,
		Password:     cfg.Password,
		DatabaseName: cfg.DatabaseName,
		SSLMode:      cfg.SSLMode,
	}
	if err := datasetRepo.Db.Create(&conn).Error; err != nil {
		datapuur.Logger.Warn().Err(err).Msg("Failed to seed dev connection")
		return
	}

	dataset := models.Dataset{
		ID:           uuid.NewString(),
		Name:         "telco_churn.csv",
		DatasetName:  "Telco Churn",
		Type:         "csv",
		SizeBytes:    954880,
		UploadedAt:   time.Now(),
		UploadedBy:   "dev",
		SourceType:   models.SourceTypeFile,
		RowCount:     pkg.ToPtr(int64(7043)),
		ConnectionID: conn.ID,
		TableName:    "telco_churn",
	}
	if err := datasetRepo.Create(&dataset); err != nil {
		datapuur.Logger.Warn().Err(err).Msg("Failed to seed dev dataset")
		return
	}
	datapuur.Logger.Info().Str("datasetId", dataset.ID).Msg("Seeded dev dataset")
}
