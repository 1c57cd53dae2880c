package main

import (
	"context"
	"net/http"
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/config"
	"github.com/abyansyah052/asisya-web-pipe-sub001/database"
	adminctrl "github.com/abyansyah052/asisya-web-pipe-sub001/internal/controller/admin"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/controller/middleware"
	userctrl "github.com/abyansyah052/asisya-web-pipe-sub001/internal/controller/user"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/logger"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/repository"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Assessment Attempt & Scoring API
// @version 1.0
// @description Timed psychometric assessments: attempt lifecycle, idempotent answer persistence and scheme-based scoring.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
			service.NewSystemClock,
		),

		// Repositories layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
		),

		// Services layer
		fx.Provide(
			service.NewCatalogService,
			service.NewAttemptService,
			func(
				examRepo repository.ExamRepository,
				attemptRepo repository.AttemptRepository,
				answerRepo repository.AnswerRepository,
				clock service.Clock,
				db *gorm.DB,
			) service.SubmissionService {
				return service.NewSubmissionService(examRepo, attemptRepo, answerRepo, clock, db)
			},
		),

		// API controllers layer
		fx.Provide(
			adminctrl.NewAdminExamController,
			userctrl.NewAttemptController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(MigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Participant-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminExamCtrl *adminctrl.AdminExamController,
	attemptCtrl *userctrl.AttemptController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/exams", adminExamCtrl.CreateExam)
	}

	submitLimiter := middleware.NewSubmitRateLimiter(1, 5)

	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/exams", attemptCtrl.GetAllExams)
		userAPIGroup.GET("/exams/:exam_id", attemptCtrl.GetExamByID)
		userAPIGroup.POST("/exams/:exam_id/attempts", attemptCtrl.BeginOrResumeAttempt)
		userAPIGroup.PUT("/attempts/:attempt_id/answers", attemptCtrl.SaveAnswer)
		userAPIGroup.POST("/attempts/:attempt_id/submit", submitLimiter.Handler(), attemptCtrl.SubmitAttempt)
		userAPIGroup.GET("/attempts/:attempt_id", attemptCtrl.GetAttemptResult)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Assessment API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// MigrateDB runs the schema migration plus the partial unique index backing
// the one-open-attempt-per-(participant, exam) invariant.
func MigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.Option{},
		&model.Attempt{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	if err := db.Exec(repository.UniqueInProgressIndexSQL).Error; err != nil {
		log.Error().Err(err).Msg("Partial unique index migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
