package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aashish23092/receipt-capture/client"
	"github.com/Aashish23092/receipt-capture/config"
	"github.com/Aashish23092/receipt-capture/handler"
	"github.com/Aashish23092/receipt-capture/logger"
	"github.com/Aashish23092/receipt-capture/service"
	"github.com/Aashish23092/receipt-capture/utils"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger.Configure(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	parserCfg, err := config.LoadParserConfig(cfg.ParserConfigPath)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("path", cfg.ParserConfigPath).Msg("Failed to load parser config")
	}
	parser, err := utils.NewReceiptParser(parserCfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid parser config")
	}

	// Initialize OCR engine
	var detector service.TextDetector
	switch cfg.OCREngine {
	case config.EnginePaddle:
		detector = client.NewPaddleClient(cfg.PaddleAPIURL, 0)
	default:
		tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguages...)
		defer tesseractClient.Close()
		detector = tesseractClient
	}

	sheetClient := client.NewSheetClient(cfg.Sheet)
	if !sheetClient.Enabled() {
		logger.Log.Warn().Msg("SHEET_ENDPOINT not set, receipt submission disabled")
	}

	// Initialize service layer
	receiptService := service.NewReceiptService(
		detector,
		service.NewPDFProcessor(),
		parser,
		sheetClient,
		parserCfg,
		cfg.BlankScanPolicy,
	)
	exportService := service.NewExportService()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ParserConfigPath != "" {
		err := config.WatchParserConfig(ctx, cfg.ParserConfigPath, func(pc config.ParserConfig) {
			p, err := utils.NewReceiptParser(pc)
			if err != nil {
				logger.Log.Error().Err(err).Msg("Reloaded parser config rejected")
				return
			}
			receiptService.SetParser(p, pc)
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Parser config hot reload disabled")
		}
	}

	// Initialize handler layer
	receiptHandler := handler.NewReceiptHandler(receiptService, exportService, cfg.MaxFileSize)
	router := handler.NewRouter(receiptHandler, cfg.MaxFileSize)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.ServerPort).
			Str("ocr_engine", cfg.OCREngine).
			Str("blank_scan_policy", cfg.BlankScanPolicy).
			Msg("Starting Receipt Capture Service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()

	logger.Log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server shutdown failed")
	}
}
