package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/izdhan/examcenter/config"
	"github.com/izdhan/examcenter/database"
	_ "github.com/izdhan/examcenter/docs" // Swagger docs - auto-generated
	adminctrl "github.com/izdhan/examcenter/internal/controller/admin"
	userctrl "github.com/izdhan/examcenter/internal/controller/user"
	"github.com/izdhan/examcenter/internal/logger"
	"github.com/izdhan/examcenter/internal/middleware"
	"github.com/izdhan/examcenter/internal/model"
	"github.com/izdhan/examcenter/internal/repository"
	"github.com/izdhan/examcenter/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Exam Center API
// @version 1.0
// @description Exam lifecycle, attempt and marking API with island-wide ranking.
// @contact.name API Support
// @contact.email support@example.com
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewRankingRepository,
			repository.NewUserRepository,
			repository.NewNotificationRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewNotifier,
			service.NewRankingService,
			service.NewRankingQueue,
			service.NewExamService,
			service.NewQuestionService,
			service.NewAttemptService,
			service.NewGradingService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewExamController,
			adminctrl.NewGradingController,
			userctrl.NewExamController,
		),

		fx.Invoke(StartRankingQueue),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

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
		AllowOrigins:     []string{"*"}, // Be more specific in production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartRankingQueue ties the background ranking worker to the application
// lifecycle.
func StartRankingQueue(lc fx.Lifecycle, queue *service.RankingQueue) {
	lc.Append(fx.Hook{
		OnStart: queue.Start,
		OnStop:  queue.Stop,
	})
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	adminExamCtrl *adminctrl.ExamController,
	adminGradingCtrl *adminctrl.GradingController,
	userExamCtrl *userctrl.ExamController,
) {
	auth := middleware.RequireAuth(cfg)

	// Admin/Teacher routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin", auth)
	{
		examsGroup := adminAPIGroup.Group("/exams")
		examsGroup.POST("", adminExamCtrl.CreateExam)
		examsGroup.GET("", adminExamCtrl.ListMyExams)
		examsGroup.GET("/:exam_id", adminExamCtrl.GetExam)
		examsGroup.PUT("/:exam_id", adminExamCtrl.UpdateExam)
		examsGroup.DELETE("/:exam_id", adminExamCtrl.DeleteExam)
		examsGroup.POST("/:exam_id/approve", adminExamCtrl.ApproveExam)
		examsGroup.POST("/:exam_id/reject", adminExamCtrl.RejectExam)
		examsGroup.POST("/:exam_id/publish", adminExamCtrl.PublishExam)
		examsGroup.POST("/:exam_id/force-close", adminExamCtrl.ForceCloseExam)

		examsGroup.GET("/:exam_id/questions", adminExamCtrl.GetQuestions)
		examsGroup.POST("/:exam_id/questions", adminExamCtrl.AddQuestion)
		examsGroup.POST("/:exam_id/questions/bulk", adminExamCtrl.BulkAddQuestions)
		examsGroup.POST("/:exam_id/questions/reorder", adminExamCtrl.ReorderQuestions)
		examsGroup.POST("/:exam_id/sections", adminExamCtrl.AddSection)
		examsGroup.POST("/:exam_id/groups", adminExamCtrl.AddGroup)

		examsGroup.GET("/:exam_id/attempts", adminGradingCtrl.ListSubmissions)
		examsGroup.POST("/:exam_id/auto-assign-marks", adminGradingCtrl.AutoAssignMarks)
		examsGroup.POST("/:exam_id/publish-results", adminGradingCtrl.PublishResults)
		examsGroup.GET("/:exam_id/rankings", adminGradingCtrl.GetRankings)
		examsGroup.POST("/:exam_id/rankings/recalculate", adminGradingCtrl.RecalculateRankings)

		adminAPIGroup.PUT("/questions/:question_id", adminExamCtrl.UpdateQuestion)
		adminAPIGroup.DELETE("/questions/:question_id", adminExamCtrl.RemoveQuestion)
		adminAPIGroup.POST("/answers/:answer_id/grade", adminGradingCtrl.GradeAnswer)
	}

	// Student routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1", auth)
	{
		userAPIGroup.GET("/exams", userExamCtrl.ListExams)
		userAPIGroup.POST("/exams/:exam_id/start", userExamCtrl.StartExam)
		userAPIGroup.GET("/exams/:exam_id/my-ranking", userExamCtrl.MyRanking)

		userAPIGroup.GET("/attempts", userExamCtrl.MyAttempts)
		userAPIGroup.GET("/attempts/:attempt_id", userExamCtrl.GetAttempt)
		userAPIGroup.POST("/attempts/:attempt_id/submit", userExamCtrl.SubmitExam)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Exam Center API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
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

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Class{},
		&model.Enrollment{},
		&model.TeacherSubjectAssignment{},
		&model.Exam{},
		&model.ExamSection{},
		&model.QuestionGroup{},
		&model.ExamQuestion{},
		&model.ExamAttempt{},
		&model.ExamAnswer{},
		&model.ExamRanking{},
		&model.Notification{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
