package api

import (
	"log"

	authUsecasePkg "prepmail-backend/internal/auth/usecase"
	interviewDelivery "prepmail-backend/internal/interview/delivery"
	interviewRepo "prepmail-backend/internal/interview/repository"
	interviewUsecasePkg "prepmail-backend/internal/interview/usecase"
	mailUsecasePkg "prepmail-backend/internal/mail/usecase"
	syncDelivery "prepmail-backend/internal/sync/delivery"
	syncRepo "prepmail-backend/internal/sync/repository"
	syncUsecasePkg "prepmail-backend/internal/sync/usecase"
	taskDelivery "prepmail-backend/internal/task/delivery"
	taskRepoPkg "prepmail-backend/internal/task/repository"
	taskUsecasePkg "prepmail-backend/internal/task/usecase"
	"prepmail-backend/pkg/ai"
	"prepmail-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecasePkg.AuthUsecase
	config      *config.Config
	taskHandler *taskDelivery.TaskHandler
	prepHandler *interviewDelivery.PrepHandler
	syncHandler *syncDelivery.SyncHandler
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	taskUc taskUsecasePkg.TaskUsecase,
	taskRepository taskRepoPkg.TaskRepository,
	prepRepository interviewRepo.PrepRepository,
	statusStore syncRepo.StatusStore,
	fetcher mailUsecasePkg.MessageFetcher,
	cfg *config.Config,
) *Handler {
	// AI extractor drives both sync extraction and interview prep
	aiService, err := ai.NewExtractorService(ai.Config{
		Provider:     ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey: cfg.GeminiApiKey,
		OpenAIAPIKey: cfg.OpenAIApiKey,
		OpenAIModel:  cfg.OpenAIModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v. Sync and interview prep will not be available.", err)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	}

	taskHandler := taskDelivery.NewTaskHandler(taskUc)

	var prepHandler *interviewDelivery.PrepHandler
	var syncHandler *syncDelivery.SyncHandler
	if aiService != nil {
		prepUc := interviewUsecasePkg.NewPrepUsecase(prepRepository, taskUc, aiService)
		prepHandler = interviewDelivery.NewPrepHandler(prepUc)

		syncUc := syncUsecasePkg.NewSyncUsecase(statusStore, taskRepository, taskUc, fetcher, aiService, cfg.SyncMaxEmails, cfg.SyncBatchPause)
		syncHandler = syncDelivery.NewSyncHandler(syncUc)
		log.Println("Sync orchestrator initialized")
	}

	return &Handler{
		authUsecase: authUc,
		config:      cfg,
		taskHandler: taskHandler,
		prepHandler: prepHandler,
		syncHandler: syncHandler,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.taskHandler, h.prepHandler, h.syncHandler)

	return r.Run(addr)
}
