package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/postboard/pkg/apperror"
	"github.com/oksasatya/postboard/pkg/helpers"
	"github.com/oksasatya/postboard/pkg/response"
)

// CtxUserIDKey holds the authenticated user id in the gin context.
const CtxUserIDKey = "userID"

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*helpers.Claims, error)
}

// Auth rejects requests without a valid access token before any handler
// runs. The token is read from the Authorization bearer header, then the
// x-auth-token header, then the access_token cookie.
func Auth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			response.Fail(c, apperror.New(apperror.KindMissingToken, "no token, authorization denied"))
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			response.Fail(c, apperror.Wrap(apperror.KindInvalidToken, "token is not valid", err))
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the id set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if tok := strings.TrimSpace(c.GetHeader("x-auth-token")); tok != "" {
		return tok
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}
