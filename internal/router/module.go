package router

import "github.com/gin-gonic/gin"

// Module is a routable feature unit. Each module attaches its own endpoints
// to the shared API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
