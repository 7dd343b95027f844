package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fbes-dev/enrollment-api/api/swagger"
	"github.com/fbes-dev/enrollment-api/internal/handler"
	"github.com/fbes-dev/enrollment-api/internal/middleware"
	"github.com/fbes-dev/enrollment-api/internal/models"
	"github.com/fbes-dev/enrollment-api/internal/repository"
	"github.com/fbes-dev/enrollment-api/internal/service"
	"github.com/fbes-dev/enrollment-api/pkg/cache"
	"github.com/fbes-dev/enrollment-api/pkg/config"
	"github.com/fbes-dev/enrollment-api/pkg/database"
	"github.com/fbes-dev/enrollment-api/pkg/logger"
	"github.com/fbes-dev/enrollment-api/pkg/mail"
	corsmiddleware "github.com/fbes-dev/enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fbes-dev/enrollment-api/pkg/middleware/requestid"
	"github.com/fbes-dev/enrollment-api/pkg/storage"
)

// @title School Enrollment API
// @version 1.0.0
// @description Enrollment and staffing administration for an elementary school
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	documents, err := storage.NewDocumentStore(cfg.Uploads.StorageDir, cfg.Uploads.MaxFileSizeBytes)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	var sender mail.Sender
	if cfg.Mail.Provider == "sendgrid" {
		sender = mail.NewSendgridSender(cfg.Mail)
	} else {
		sender = mail.NewConsoleSender(logr)
	}

	validate := validator.New()

	users := repository.NewUserRepository(db)
	tokens := repository.NewTokenRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	subjectEnrollments := repository.NewSubjectEnrollmentRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	capacities := repository.NewSectionCapacityRepository(db)
	codes := repository.NewCodeRepository(redisClient)
	statsCache := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	verificationSvc := service.NewVerificationService(codes, cfg.Security.VerificationCodeTTL, logr)
	mailerSvc := service.NewMailerService(sender, cfg.Enrollment.SchoolName, cfg.Mail.SendTimeout, 2, logr)
	authSvc := service.NewAuthService(users, tokens, verificationSvc, mailerSvc, metricsSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:   cfg.JWT.Secret,
		AccessTokenExpiry:   cfg.JWT.Expiration,
		RefreshTokenExpiry:  cfg.JWT.RefreshExpiration,
		MaxLoginAttempts:    cfg.Security.MaxLoginAttempts,
		LockoutDuration:     cfg.Security.LockoutDuration,
		PasswordHistorySize: cfg.Security.PasswordHistorySize,
	})
	assignmentSvc := service.NewAssignmentService(users, assignments, subjectEnrollments, metricsSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollments, subjectEnrollments, capacities, documents, assignmentSvc, users, mailerSvc, metricsSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(enrollments, users, statsCache, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(enrollments, subjectEnrollments, cfg.Enrollment.SchoolName, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mailerSvc.Start(rootCtx)
	defer mailerSvc.Stop()

	// Hourly sweep of refresh tokens past their expiry. Revoked rows are
	// kept until then so replayed tokens keep failing loudly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				removed, err := tokens.DeleteExpired(rootCtx, time.Now().UTC())
				if err != nil {
					logr.Sugar().Errorw("refresh token sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					logr.Sugar().Infow("expired refresh tokens removed", "count", removed)
				}
			}
		}
	}()

	authHandler := handler.NewAuthHandler(authSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc, dashboardSvc, documents, signer, cfg.APIPrefix+"/documents/download")
	professorHandler := handler.NewProfessorHandler(assignmentSvc)
	sectionHandler := handler.NewSectionHandler(enrollmentSvc, assignmentSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-code", authHandler.ResendCode)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	api.GET("/documents/download", enrollmentHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	adminOnly := middleware.RBAC(models.RoleAdmin)

	enroll := protected.Group("/enrollments")
	{
		enroll.GET("", adminOnly, enrollmentHandler.List)
		enroll.POST("", middleware.RBAC(models.RoleStudent), enrollmentHandler.Submit)
		enroll.GET("/me", middleware.RBAC(models.RoleStudent), enrollmentHandler.My)
		enroll.GET("/me/summary.pdf", middleware.RBAC(models.RoleStudent), enrollmentHandler.SummaryPDF)
		enroll.GET("/:id", enrollmentHandler.Get)
		enroll.PUT("/:id", middleware.RBAC(models.RoleStudent), enrollmentHandler.Edit)
		enroll.DELETE("/:id", middleware.RBAC(models.RoleStudent), enrollmentHandler.Reset)
		enroll.POST("/:id/approve", adminOnly, enrollmentHandler.Approve)
		enroll.POST("/:id/reject", adminOnly, enrollmentHandler.Reject)
		enroll.POST("/:id/reassign", adminOnly, enrollmentHandler.Reassign)
		enroll.DELETE("/:id/record", adminOnly, enrollmentHandler.Remove)
		enroll.GET("/:id/professor-options", adminOnly, enrollmentHandler.ProfessorOptions)
		enroll.GET("/:id/documents/:kind", enrollmentHandler.Document)
	}

	professors := protected.Group("/professors")
	{
		professors.GET("", adminOnly, professorHandler.List)
		professors.POST("", adminOnly, professorHandler.Create)
		professors.GET("/:id", professorHandler.Get)
		professors.PUT("/:id", adminOnly, professorHandler.Update)
		professors.DELETE("/:id", adminOnly, professorHandler.Delete)
		professors.PUT("/:id/grade-level", adminOnly, professorHandler.AssignGradeLevel)
		professors.GET("/:id/assignments", professorHandler.ListAssignments)
		professors.POST("/:id/assignments", adminOnly, professorHandler.AddAssignment)
		professors.DELETE("/:id/assignments/:aid", adminOnly, professorHandler.RemoveAssignment)
		professors.GET("/:id/students", professorHandler.Students)
	}

	sections := protected.Group("/sections")
	{
		sections.GET("", adminOnly, sectionHandler.Overview)
		sections.GET("/taken", adminOnly, sectionHandler.Taken)
		sections.GET("/:grade/:section/students", adminOnly, sectionHandler.Students)
		sections.GET("/:grade/:section/roster.csv", adminOnly, sectionHandler.RosterCSV)
	}

	protected.GET("/rooms/:grade", middleware.RBAC(models.RoleAdmin, models.RoleProfessor), sectionHandler.Rooms)
	protected.GET("/dashboard", adminOnly, dashboardHandler.Stats)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
