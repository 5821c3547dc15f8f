package main

import (
	"log"

	api "prepmail-backend/cmd/api"
	authdomain "prepmail-backend/internal/auth/domain"
	authRepo "prepmail-backend/internal/auth/repository"
	authUsecase "prepmail-backend/internal/auth/usecase"
	interviewdomain "prepmail-backend/internal/interview/domain"
	interviewRepo "prepmail-backend/internal/interview/repository"
	mailUsecase "prepmail-backend/internal/mail/usecase"
	syncRepo "prepmail-backend/internal/sync/repository"
	taskdomain "prepmail-backend/internal/task/domain"
	taskRepo "prepmail-backend/internal/task/repository"
	taskScheduler "prepmail-backend/internal/task/scheduler"
	taskUsecase "prepmail-backend/internal/task/usecase"
	"prepmail-backend/pkg/cache"
	"prepmail-backend/pkg/config"
	"prepmail-backend/pkg/database"
	"prepmail-backend/pkg/fcm"
	"prepmail-backend/pkg/gmail"
	"prepmail-backend/pkg/imap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&taskdomain.Task{},
		&interviewdomain.InterviewPrep{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Cache backs the sync status blackboard and the task list cache.
	// Without Redis the in-memory fallback keeps a single instance working.
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		cacheClient = redisCache
		log.Println("Connected to Redis")
	} else {
		cacheClient = cache.NewMemoryCache()
		log.Println("REDIS_URL not set, using in-memory cache")
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	fcmTokenRepository := authRepo.NewFCMTokenRepository(db)
	taskRepository := taskRepo.NewGormTaskRepository(db)
	prepRepository := interviewRepo.NewGormPrepRepository(db)
	statusStore := syncRepo.NewStatusStore(cacheClient, cfg.SyncStatusTTL)

	// Mail providers
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	imapService := imap.NewService()
	fetcher := mailUsecase.NewAccountFetcher(userRepository, gmailService, imapService, cfg.EncryptionKey)

	// FCM client (optional, reminders are disabled without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("Warning: Failed to initialize FCM client (push reminders disabled): %v", err)
		}
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, fcmTokenRepository, cfg)
	taskUsecaseInstance := taskUsecase.NewTaskUsecase(taskRepository, cacheClient)

	// Deadline reminder scheduler
	reminderScheduler := taskScheduler.NewDeadlineReminderScheduler(taskRepository, fcmTokenRepository, fcmClient)
	reminderScheduler.Start()
	defer reminderScheduler.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, taskUsecaseInstance, taskRepository, prepRepository, statusStore, fetcher, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
