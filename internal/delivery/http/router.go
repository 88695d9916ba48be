package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"journal-backend/internal/repository"
	"journal-backend/internal/usecase"
)

type RouterDeps struct {
	Debug          bool
	AllowedOrigins []string
	Logger         *zap.Logger

	Verifier  TokenVerifier
	Store     Pinger
	Accounts  *usecase.AccountService
	Trades    *usecase.TradeService
	Analytics *usecase.AnalyticsService
	Tokens    *repository.TokenRepository

	// Stream serves GET /ws/trades when set.
	Stream http.HandlerFunc
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(corsMiddleware(d.AllowedOrigins))

	(&HealthHandler{Store: d.Store}).Register(engine)

	authHandler := &AuthHandler{Accounts: d.Accounts}
	public := engine.Group("/api")
	authHandler.RegisterPublic(public)

	api := engine.Group("/api", RequireAuth(d.Verifier))
	authHandler.Register(api)
	(&AnalyticsHandler{Analytics: d.Analytics}).Register(api)
	(&TradeHandler{Trades: d.Trades}).Register(api)
	(&ToolsHandler{}).Register(api)
	if d.Tokens != nil {
		(&TokenHandler{Tokens: d.Tokens}).Register(api)
	}

	if d.Stream != nil {
		engine.GET("/ws/trades", gin.WrapF(d.Stream))
	}
	return engine
}
