package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/exam-api/internal/config"
	"github.com/yourusername/exam-api/internal/handler"
	"github.com/yourusername/exam-api/internal/middleware"
	pgRepo "github.com/yourusername/exam-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/exam-api/internal/repository/redis"
	"github.com/yourusername/exam-api/internal/service"
	"github.com/yourusername/exam-api/pkg/auth"
	"github.com/yourusername/exam-api/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Root context tied to the process lifetime; cancelling it stops the
	// attempt deadline watchers.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	userRepo := pgRepo.NewUserRepo(db)
	examRepo := pgRepo.NewExamRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Auth
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Email
	var emailService service.EmailService
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("[Main] email sending disabled, using noop service")
	}

	// Question generation
	generator, err := service.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Printf("Failed to initialize Gemini generator: %v", err)
		os.Exit(1)
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtService, emailService, cfg.Email.VerifyURL)
	examService := service.NewExamService(examRepo, questionRepo, resultRepo, cacheRepo, generator, db)

	watcher := service.NewDeadlineWatcher()
	attemptService := service.NewAttemptService(attemptRepo, answerRepo, examRepo, questionRepo, resultRepo, cacheRepo, watcher, db, ctx)

	// Rearm deadline timers for attempts that were in progress before the
	// restart; expired ones get auto-submitted right away.
	go func() {
		if err := attemptService.RearmWatchers(ctx); err != nil {
			log.Printf("Failed to rearm attempt watchers: %v", err)
		}
	}()

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	examinerHandler := handler.NewExaminerHandler(examService)
	studentHandler := handler.NewStudentHandler(attemptService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.Default()

	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/verify-email", authHandler.VerifyEmail)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/profile", authHandler.GetProfile)
			}
		}

		examiner := api.Group("/examiner")
		examiner.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("examiner"))
		{
			examiner.POST("/exams", examinerHandler.CreateExam)
			examiner.GET("/exams", examinerHandler.GetMyExams)

			examWithID := examiner.Group("/exams/:examId")
			examWithID.Use(middleware.ExtractUintParam("examId", "examID"))
			{
				examWithID.GET("/preview", examinerHandler.GetExamPreview)
				examWithID.PUT("/title", examinerHandler.UpdateExamTitle)
				examWithID.POST("/publish", examinerHandler.PublishExam)
				examWithID.DELETE("", examinerHandler.DeleteExam)
				examWithID.GET("/analytics", examinerHandler.GetExamAnalytics)
				examWithID.GET("/leaderboard", examinerHandler.GetExamLeaderboard)
				examWithID.GET("/results/export", examinerHandler.ExportExamResults)
			}

			questionWithID := examiner.Group("/questions/:questionId")
			questionWithID.Use(middleware.ExtractUintParam("questionId", "questionID"))
			{
				questionWithID.PUT("", examinerHandler.UpdateQuestion)
			}
		}

		student := api.Group("/student")
		student.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("student"))
		{
			student.GET("/exams", studentHandler.GetAvailableExams)
			student.POST("/answers", studentHandler.SubmitAnswer)
			student.GET("/results", studentHandler.GetMyResults)

			studentExam := student.Group("/exams/:examId")
			studentExam.Use(middleware.ExtractUintParam("examId", "examID"))
			{
				studentExam.POST("/start", studentHandler.StartExam)
				studentExam.GET("/active", studentHandler.GetActiveAttempt)
				studentExam.GET("/result", studentHandler.GetExamResult)
			}

			studentAttempt := student.Group("/attempts/:attemptId")
			studentAttempt.Use(middleware.ExtractUintParam("attemptId", "attemptID"))
			{
				studentAttempt.POST("/submit", studentHandler.SubmitExam)
				studentAttempt.GET("/review", studentHandler.GetReview)
				studentAttempt.GET("/time", studentHandler.GetRemainingTime)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
