package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/classify"
	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/config"
	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/handlers"
	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/mailer"
	"github.com/nganaremba-rem/plant-disease-detection-backend/internal/model"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Mail credentials come from the environment; a local .env is honored
	// when present.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using process environment")
	}

	cfg := config.Load("config.yaml", logger)
	if cfg.Defaulted {
		logger.Warn("running with built-in default configuration")
	}

	mailCfg, err := config.LoadMail()
	if err != nil {
		logger.Fatal("mail configuration incomplete", zap.Error(err))
	}

	logger.Info("loading model", zap.String("path", cfg.ModelPath))
	classifier, err := model.New(cfg.ModelPath, cfg.MetadataPath)
	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}
	defer classifier.Close()
	logger.Info("model loaded", zap.Strings("classes", classifier.Classes()))

	alerts, err := mailer.New(mailCfg, cfg.TemplateDir, cfg.MailTimeout(), logger)
	if err != nil {
		logger.Fatal("failed to initialize mailer", zap.Error(err))
	}

	validator := classify.NewValidator(cfg.AllowedExtensions, cfg.MaxFileSizeBytes())
	pipeline := classify.NewPipeline(validator, classifier, logger)

	handler := handlers.NewHandler(pipeline, alerts, classifier.Name(),
		cfg.MaxFileSizeBytes(), cfg.InferenceTimeout(), logger)
	router := handlers.NewRouter(handler, logger)

	logger.Info("server starting", zap.String("addr", cfg.Addr()))
	if err := router.Run(cfg.Addr()); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}
