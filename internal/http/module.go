package http

import (
	"crm_backoffice/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context (leads, clients, projects, audit) that owns its
// routes. The router mounts every module in App.Modules at startup.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the groups they may mount on. Protected routes
// carry the acting user id; Admin additionally requires the admin role.
type RouterContext struct {
	Engine    *gin.Engine
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup
	Config    config.JWTConfig
	// AuthMiddleware is the same AuthRequired handler applied to Protected,
	// for modules that need it on a group of their own.
	AuthMiddleware gin.HandlerFunc
}
