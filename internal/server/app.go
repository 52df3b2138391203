package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"banortesmart/backend/internal/assistant"
	"banortesmart/backend/internal/config"
	"banortesmart/backend/internal/consumption"
	"banortesmart/backend/internal/logging"
	"banortesmart/backend/internal/payment"
	"banortesmart/backend/internal/session"
)

const sessionContextKey = "session"

type Deps struct {
	Catalog      *consumption.Catalog
	Sessions     *session.Manager
	Conversation *assistant.Conversation
	Payments     *payment.Processor
}

type App struct {
	cfg          config.Config
	catalog      *consumption.Catalog
	sessions     *session.Manager
	conversation *assistant.Conversation
	payments     *payment.Processor
}

func New(cfg config.Config, deps Deps) *App {
	payments := deps.Payments
	if payments == nil {
		payments = payment.NewProcessor()
	}
	return &App{
		cfg:          cfg,
		catalog:      deps.Catalog,
		sessions:     deps.Sessions,
		conversation: deps.Conversation,
		payments:     payments,
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)

	public := router.Group(a.cfg.APIPrefix)
	public.GET("/health", a.health)
	public.POST("/auth/login", a.login)

	api := router.Group(a.cfg.APIPrefix)
	api.Use(a.authMiddleware())

	api.POST("/auth/logout", a.logout)
	api.GET("/session/me", a.getSession)
	api.POST("/session/consent", a.acceptConsent)
	api.POST("/services/:utility/link", a.linkService)

	api.GET("/consumption/:utility/weeks", a.listWeeks)
	api.GET("/consumption/:utility/weeks/:index", a.getWeek)
	api.GET("/consumption/:utility/summary", a.getSummary)

	api.POST("/payments/quote", a.quotePayment)
	api.POST("/payments/process", a.processPayment)
	api.POST("/payments/combined", a.processCombinedPayment)

	api.GET("/chat/quick-questions", a.quickQuestions)
	api.GET("/chat/messages", a.listMessages)
	api.POST("/chat/messages", a.sendMessage)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "maya-api",
	})
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
		if tokenString == "" {
			writeError(c, http.StatusUnauthorized, "Bearer token required")
			return
		}

		s, err := a.sessions.Parse(tokenString)
		if errors.Is(err, session.ErrSessionRevoked) {
			writeError(c, http.StatusUnauthorized, "Session has been closed")
			return
		}
		if err != nil {
			writeError(c, http.StatusUnauthorized, "Invalid bearer token")
			return
		}

		c.Set(sessionContextKey, s)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) (session.Session, bool) {
	raw, ok := c.Get(sessionContextKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := raw.(session.Session)
	return s, ok
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// writeDomainError maps package sentinel errors to HTTP statuses.
func writeDomainError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logging.Errorw("request failed", "path", c.FullPath(), "error", err)
		writeError(c, status, "Internal server error")
		return
	}
	writeError(c, status, err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrMissingCredentials),
		errors.Is(err, assistant.ErrEmptyQuestion),
		errors.Is(err, payment.ErrBelowMinimum),
		errors.Is(err, payment.ErrUnknownMode),
		errors.Is(err, consumption.ErrUnknownUtility):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrSessionRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrConsentRequired),
		errors.Is(err, session.ErrUtilityNotLinked):
		return http.StatusForbidden
	case errors.Is(err, consumption.ErrWeekNotFound):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrTurnInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// linkedUtility resolves a utility path or body value and checks that the
// session has linked it. It writes the error response itself.
func linkedUtility(c *gin.Context, s session.Session, raw string) (consumption.Utility, bool) {
	utility, err := consumption.ParseUtility(raw)
	if err != nil {
		writeDomainError(c, err)
		return "", false
	}
	if err := s.Authorize(utility); err != nil {
		writeDomainError(c, err)
		return "", false
	}
	return utility, true
}
