package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/expense-compliance-agent/internal/agent"
	"github.com/garyjia/expense-compliance-agent/internal/config"
	"github.com/garyjia/expense-compliance-agent/internal/extractor"
	"github.com/garyjia/expense-compliance-agent/internal/finance"
	"github.com/garyjia/expense-compliance-agent/internal/ledger"
	"github.com/garyjia/expense-compliance-agent/internal/policy"
	"github.com/garyjia/expense-compliance-agent/internal/report"
	"github.com/garyjia/expense-compliance-agent/internal/server"
	"github.com/garyjia/expense-compliance-agent/internal/taxi"
	"github.com/garyjia/expense-compliance-agent/pkg/database"
	"github.com/garyjia/expense-compliance-agent/pkg/utils"
)

func main() {
	// Credentials such as OPENAI_API_KEY come from the environment or
	// a local .env file.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting expense compliance agent",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{Path: cfg.Database.Path}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	requestLedger, err := ledger.New(db, logger)
	if err != nil {
		logger.Fatal("Failed to initialize request ledger", zap.Error(err))
	}

	catalog := policy.NewCatalog()
	if cfg.Policy.PoliciesPath != "" {
		catalog, err = policy.LoadCatalog(cfg.Policy.PoliciesPath)
		if err != nil {
			logger.Fatal("Failed to load policy catalog", zap.Error(err))
		}
		logger.Info("Policy catalog loaded",
			zap.String("path", cfg.Policy.PoliciesPath))
	}

	var expenseExtractor agent.ExpenseExtractor
	var taxiExtractor agent.TaxiExtractor
	if cfg.ExtractionEnabled() {
		x := extractor.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
		expenseExtractor = x
		taxiExtractor = x
		logger.Info("Free-text extraction enabled", zap.String("model", cfg.OpenAI.Model))
	} else {
		logger.Info("Free-text extraction disabled, structured queries only")
	}

	financeAgent := agent.NewFinanceAgent(
		finance.NewEvaluator(catalog, logger), expenseExtractor, logger)
	taxiAgent := agent.NewTaxiAgent(
		taxi.NewService(requestLedger, logger), taxiExtractor, logger)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create report output directory", zap.Error(err))
	}
	reportWriter := report.NewWriter(cfg.Report.CompanyName, logger)

	baseURL := fmt.Sprintf("http://%s:%d/", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(server.DefaultCard(baseURL),
		[]agent.Agent{financeAgent, taxiAgent},
		reportWriter, cfg.Report.OutputDir, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
