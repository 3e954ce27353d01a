package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/postboard/internal/interface/http"
	"github.com/oksasatya/postboard/internal/interface/middleware"
)

// PostModule wires the post, comment and like routes. Every route requires
// a valid token.
type PostModule struct {
	Handler *handlers.PostHandler
	Tokens  middleware.TokenVerifier
}

func NewPostModule(h *handlers.PostHandler, tokens middleware.TokenVerifier) *PostModule {
	return &PostModule{Handler: h, Tokens: tokens}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	posts.Use(middleware.Auth(m.Tokens))
	{
		posts.POST("", m.Handler.Create)
		posts.GET("", m.Handler.List)
		posts.GET("/:id", m.Handler.Get)
		posts.DELETE("/:id", m.Handler.Delete)

		posts.POST("/comment/:id", m.Handler.AddComment)
		posts.DELETE("/comment/:id/:comment_id", m.Handler.RemoveComment)

		posts.PUT("/like/:id", m.Handler.Like)
		posts.PUT("/unlike/:id", m.Handler.Unlike)
	}
}
