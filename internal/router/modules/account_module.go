package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwisetyawan/account-service/internal/container"
	handlers "github.com/dwisetyawan/account-service/internal/interface/http"
	"github.com/dwisetyawan/account-service/internal/interface/middleware"
)

// AccountModule wires the account HTTP handlers into routes under /api.
type AccountModule struct {
	Handler *handlers.AccountHandler
}

func NewAccountModule(h *handlers.AccountHandler) *AccountModule {
	return &AccountModule{Handler: h}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	registerLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP(), nil)
	mutateLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	readLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.POST("/users", registerLimiter, m.Handler.Register)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	rg.GET("/users", readLimiter, m.Handler.List)
	rg.GET("/users/search", readLimiter, m.Handler.Search)
	rg.GET("/users/:id", readLimiter, m.Handler.Get)

	rg.PUT("/users/:id/password", mutateLimiter, m.Handler.ChangePassword)
	rg.PUT("/users/:id/username", mutateLimiter, m.Handler.ChangeUsername)
	rg.PUT("/users/:id/image", mutateLimiter, m.Handler.ChangeImage)
}
