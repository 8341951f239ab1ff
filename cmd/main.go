package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"hilalbot/internal/entities"
	"hilalbot/internal/infrastructure"
	"hilalbot/internal/interfaces"
	httpapi "hilalbot/internal/interfaces/http"
	"hilalbot/internal/repository"
	"hilalbot/internal/usecases"
)

func main() {
	cfg, err := infrastructure.LoadConfig()
	if err != nil {
		infrastructure.Log.Fatalf("config: %v", err)
	}
	infrastructure.InitLogger(cfg)

	// Storage
	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL)
	if err != nil {
		infrastructure.Log.Fatalf("database: %v", err)
	}
	defer pgClient.Close()

	codeStore, err := infrastructure.NewCodeStore(cfg.CodeStorePath)
	if err != nil {
		infrastructure.Log.Fatalf("code store: %v", err)
	}
	defer codeStore.Close()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		infrastructure.Log.Fatalf("upload dir: %v", err)
	}

	// Repositories
	adminRepo := repository.NewAdminRepository(pgClient.Pool)
	subscriberRepo := repository.NewSubscriberRepository(pgClient.Pool)
	channelRepo := repository.NewChannelRepository(pgClient.Pool)
	postRepo := repository.NewPostRepository(pgClient.Pool)
	usageRepo := repository.NewUsageRepository(pgClient.Pool)

	// Provider adapters
	openai := infrastructure.NewOpenAIClient(cfg.OpenAIKey)
	gemini := infrastructure.NewGeminiClient(cfg.GeminiKeys)
	languageTool := infrastructure.NewLanguageToolClient()
	assembly := infrastructure.NewAssemblyAIClient(cfg.AssemblyAIKey)
	deepgram := infrastructure.NewDeepgramClient(cfg.DeepgramKey)
	tesseract := infrastructure.NewTesseractClient()
	basic := usecases.NewBasicChecker()

	correction := usecases.NewCorrectionService(
		[]interfaces.GrammarChecker{openai, gemini, languageTool, basic},
		[]interfaces.Transcriber{openai, assembly, deepgram, gemini},
		[]usecases.ImageScanner{openai},
		[]interfaces.TextExtractor{gemini, tesseract},
	)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(adminRepo, codeStore, cfg)
	if err := authUsecase.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		infrastructure.Log.Warnf("ensure admin user: %v", err)
	}
	statsUsecase := usecases.NewStatsUsecase(subscriberRepo, usageRepo)

	// Bots
	manager := infrastructure.NewBotManager()
	limiter := infrastructure.NewMessageRateLimiter(0.5, 3)
	botService := usecases.NewBotService(cfg, manager, correction, authUsecase,
		statsUsecase, subscriberRepo, channelRepo, usageRepo, limiter)
	manager.UpdateHandler = botService.HandleUpdate

	if cfg.TurkishBotToken != "" {
		if _, err := manager.Start(entities.BotTurkish, cfg.TurkishBotToken); err != nil {
			infrastructure.Log.Fatalf("turkish bot: %v", err)
		}
	} else {
		infrastructure.Log.Warn("BOT_TOKEN not set, turkish bot disabled")
	}
	if cfg.KoreanBotToken != "" {
		if _, err := manager.Start(entities.BotKorean, cfg.KoreanBotToken); err != nil {
			infrastructure.Log.Errorf("korean bot: %v", err)
		}
	}
	defer manager.StopAll()

	// Scheduled post dispatcher
	dispatcher := usecases.NewDispatcher(postRepo, botService, cfg.DispatchSpec)
	if err := dispatcher.Start(); err != nil {
		infrastructure.Log.Fatalf("dispatcher: %v", err)
	}
	defer dispatcher.Stop()

	// HTTP admin API
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	handler := httpapi.NewHandler(authUsecase, statsUsecase, botService, dispatcher,
		channelRepo, postRepo, cfg.UploadDir)
	httpapi.SetupRoutes(r, handler, httpapi.NewMiddleware(cfg.JWTSecret))

	go func() {
		infrastructure.Log.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			infrastructure.Log.Fatalf("HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	infrastructure.Log.Info("shutting down")
}
