package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/handler"
	"github.com/talentflow/talentflow-backend/internal/middleware"
	"github.com/talentflow/talentflow-backend/internal/response"
	"github.com/talentflow/talentflow-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Assessment *handler.AssessmentHandler
	Builder    *handler.BuilderHandler
	Response   *handler.ResponseHandler
	Score      *handler.ScoreHandler
	Media      *handler.MediaHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	loginLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Uploaded answer files never change under their uuid names.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)
		auth.GET("/me", middleware.RequireRecruiterJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Recruiter Group (JWT) ──────────────────────────────────────
	recruiterAPI := router.Group("/api/v1")
	recruiterAPI.Use(middleware.RequireRecruiterJWT(authService), middleware.NoStore())
	{
		recruiterAPI.GET("/system/metrics", handlers.System.MetricsSSE)

		recruiterAPI.GET("/jobs/:job_id/assessments", handlers.Assessment.ListAssessments)
		recruiterAPI.POST("/jobs/:job_id/assessments", handlers.Assessment.CreateAssessment)

		recruiterAPI.GET("/assessments/:id", handlers.Assessment.GetAssessment)
		recruiterAPI.PUT("/assessments/:id", handlers.Assessment.ReplaceAssessment)
		recruiterAPI.PATCH("/assessments/:id", handlers.Assessment.PatchAssessment)
		recruiterAPI.DELETE("/assessments/:id", handlers.Assessment.DeleteAssessment)
		recruiterAPI.POST("/assessments/:id/preview", handlers.Assessment.PreviewAssessment)
		recruiterAPI.POST("/assessments/:id/invites", handlers.Auth.CreateInvite)

		recruiterAPI.GET("/assessments/:id/responses", handlers.Response.ListResponses)
		recruiterAPI.GET("/assessments/:id/responses/:candidate_id", handlers.Response.GetCandidateResponse)
		recruiterAPI.GET("/assessments/:id/results", handlers.Score.GetResults)
		recruiterAPI.DELETE("/responses/:response_id", handlers.Response.DeleteResponse)
		recruiterAPI.GET("/responses/:response_id/score", handlers.Score.GetScore)

		// Builder draft
		draft := recruiterAPI.Group("/assessments/:id/draft")
		{
			draft.POST("", handlers.Builder.OpenDraft)
			draft.GET("", handlers.Builder.GetDraft)
			draft.DELETE("", handlers.Builder.DiscardDraft)
			draft.POST("/commit", handlers.Builder.CommitDraft)
			draft.POST("/preview", handlers.Builder.PreviewDraft)
			draft.POST("/activate/:section_id", handlers.Builder.ActivateSection)

			draft.POST("/sections", handlers.Builder.AddSection)
			draft.PATCH("/sections/:section_id", handlers.Builder.UpdateSection)
			draft.DELETE("/sections/:section_id", handlers.Builder.DeleteSection)

			draft.POST("/sections/:section_id/questions", handlers.Builder.AddQuestion)
			draft.PATCH("/sections/:section_id/questions/:question_id", handlers.Builder.UpdateQuestion)
			draft.DELETE("/sections/:section_id/questions/:question_id", handlers.Builder.DeleteQuestion)

			options := draft.Group("/sections/:section_id/questions/:question_id/options")
			options.POST("", handlers.Builder.AddOption)
			options.POST("/reorder", handlers.Builder.ReorderOptions)
			options.PUT("/:index", handlers.Builder.UpdateOption)
			options.DELETE("/:index", handlers.Builder.RemoveOption)
		}
	}

	// ─── 3. Candidate Group (Invite Token) ─────────────────────────────
	candidateAPI := router.Group("/api/v1")
	candidateAPI.Use(middleware.RequireCandidateJWT(authService))
	{
		candidateAPI.POST("/uploads", handlers.Media.Upload)
	}

	// ─── 4. WebSocket Group (Invite Token, scoped to the assessment) ───
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireCandidateJWT(authService))
	{
		ws.GET("/assessments/:id/take", middleware.RequireAssessmentScope(), handlers.WS.TakeAssessment)
	}

	return router
}
