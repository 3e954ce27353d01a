package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/postboard/internal/interface/http"
	"github.com/oksasatya/postboard/internal/interface/middleware"
)

// UserModule wires registration and authentication routes.
// Public: POST /api/users, POST /api/auth
// Protected: GET /api/auth, POST /api/auth/logout
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, tokens middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Handler.Register)
	rg.POST("/auth", m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Tokens))
	{
		auth.GET("/auth", m.Handler.Me)
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
