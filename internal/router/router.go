package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anooppatell7/education-pixel-backend/internal/config"
	"github.com/anooppatell7/education-pixel-backend/internal/handler"
	"github.com/anooppatell7/education-pixel-backend/internal/middleware"
	"github.com/anooppatell7/education-pixel-backend/internal/response"
	"github.com/anooppatell7/education-pixel-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Identity *handler.IdentityHandler
	Test     *handler.TestHandler
	Attempt  *handler.AttemptHandler
	Result   *handler.ResultHandler
	Verify   *handler.VerifyHandler
	Operator *handler.OperatorHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	identity *service.IdentityService,
	operators middleware.OperatorSource,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

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

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Public Group (No Auth, Rate Limited) ───────────────────────
	// Verification is hit by anyone scanning a printed QR code.
	verifyLimiter := middleware.NewRateLimiter(30, time.Minute)
	public := router.Group("/api/v1")
	{
		public.POST("/identity", handlers.Identity.IssueIdentity)
		public.GET("/tests", middleware.CacheControl(60), handlers.Test.ListTests)
		public.GET("/verify/:serial", verifyLimiter.Middleware(), handlers.Verify.VerifyCertificate)
	}

	// ─── 2. Candidate Group (Identity Token) ───────────────────────────
	candidateAPI := router.Group("/api/v1")
	candidateAPI.Use(middleware.RequireCandidateToken(identity))
	{
		candidateAPI.GET("/tests/:test_id/paper", handlers.Test.GetPaper)

		candidateAPI.POST("/tests/:test_id/attempt/start", handlers.Attempt.StartAttempt)
		candidateAPI.GET("/tests/:test_id/attempt/state", handlers.Attempt.GetAttemptState)
		candidateAPI.POST("/tests/:test_id/attempt/answer", handlers.Attempt.SelectAnswer)
		candidateAPI.POST("/tests/:test_id/attempt/review", handlers.Attempt.ToggleReview)
		candidateAPI.POST("/tests/:test_id/attempt/position", handlers.Attempt.Navigate)
		candidateAPI.POST("/tests/:test_id/attempt/submit", handlers.Attempt.SubmitAttempt)

		candidateAPI.GET("/results/:result_id", handlers.Result.GetResult)
		candidateAPI.GET("/results/practice/:key", handlers.Result.GetPracticeResult)
	}

	// ─── 3. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireCandidateWSAuth(identity))
	{
		ws.GET("/tests/:test_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Operator Group (Basic Auth) ────────────────────────────────
	operatorAPI := router.Group("/api/v1/operator")
	operatorAPI.Use(middleware.RequireOperator(operators))
	{
		operatorAPI.POST("/attempts/reset", handlers.Operator.ResetAttempt)
		operatorAPI.POST("/tests/:test_id/warm-cache", handlers.Operator.WarmTestCache)
	}

	return router
}
