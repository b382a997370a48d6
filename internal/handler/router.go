package handler

import (
	"net/http"

	"github.com/eaglebank/ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Users       *UserHandler
	Accounts    *AccountHandler
	Auth        middleware.Authenticator
	Idempotency middleware.IdempotencyStore
	Logger      *zap.Logger
}

// NewRouter wires every route behind logging and panic recovery.
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware(d.Logger), middleware.Recovery(d.Logger))

	auth := middleware.AuthMiddleware(d.Auth)
	idempotent := middleware.Idempotency(d.Idempotency, d.Logger)

	users := router.Group("/v1/users")
	{
		users.POST("", d.Users.Register)
		users.GET("/me", auth, d.Users.GetMe)
	}

	accounts := router.Group("/v1/accounts", auth, idempotent)
	{
		accounts.POST("/deposit", d.Accounts.Deposit)
		accounts.POST("/transfer", d.Accounts.Transfer)
		accounts.POST("/withdraw", d.Accounts.Withdraw)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
