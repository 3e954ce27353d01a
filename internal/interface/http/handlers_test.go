package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/postboard/internal/application"
	"github.com/oksasatya/postboard/internal/domain/entity"
	"github.com/oksasatya/postboard/internal/infrastructure/memory"
	"github.com/oksasatya/postboard/internal/interface/middleware"
	"github.com/oksasatya/postboard/pkg/helpers"
	"github.com/oksasatya/postboard/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type server struct {
	engine *gin.Engine
	jwt    *helpers.JWTManager
}

func newServer(t *testing.T) *server {
	t.Helper()
	users := memory.NewUserRepository()
	posts := memory.NewPostRepository()
	jwt := helpers.NewJWTManager(helpers.TokenConfig{Secret: "test", TTL: time.Hour})

	uh := NewUserHandler(application.NewUserService(users, jwt, nil, nil), nil, "", false)
	ph := NewPostHandler(application.NewPostService(posts, users, nil, nil, 3))

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api")
	api.POST("/users", uh.Register)
	api.POST("/auth", uh.Login)

	auth := api.Group("/", middleware.Auth(jwt))
	auth.GET("/auth", uh.Me)
	auth.POST("/auth/logout", uh.Logout)
	auth.POST("/posts", ph.Create)
	auth.GET("/posts", ph.List)
	auth.GET("/posts/:id", ph.Get)
	auth.DELETE("/posts/:id", ph.Delete)
	auth.POST("/posts/comment/:id", ph.AddComment)
	auth.DELETE("/posts/comment/:id/:comment_id", ph.RemoveComment)
	auth.PUT("/posts/like/:id", ph.Like)
	auth.PUT("/posts/unlike/:id", ph.Unlike)
	return &server{engine: r, jwt: jwt}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (s *server) register(t *testing.T, name, email string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/users", "", map[string]string{"name": name, "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	return tok.Token
}

func decodePost(t *testing.T, env envelope) entity.Post {
	t.Helper()
	var p entity.Post
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestRegisterAndLogin(t *testing.T) {
	s := newServer(t)
	tok := s.register(t, "Ada", "ada@example.com")
	assert.NotEmpty(t, tok)

	w, env := s.do(t, http.MethodPost, "/api/users", "", map[string]string{"name": "Ada", "email": "ADA@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_IDENTITY", env.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), helpers.AccessTokenCookie+"=")

	w, env = s.do(t, http.MethodPost, "/api/auth", "", map[string]string{"email": "ada@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/auth", tok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada@example.com", me["email"])
	assert.NotContains(t, me, "password")
}

func TestRegister_ValidationDetails(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodPost, "/api/users", "", map[string]string{"name": " ", "email": "nope", "password": "123"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters long", details["password"])
}

func TestPostRoutes(t *testing.T) {
	s := newServer(t)
	ada := s.register(t, "Ada", "ada@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	w, env := s.do(t, http.MethodPost, "/api/posts", ada, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decodePost(t, env)
	assert.Equal(t, "hello", p.Text)
	assert.Equal(t, "Ada", p.Name)

	w, env = s.do(t, http.MethodPost, "/api/posts/comment/"+p.ID, bob, map[string]string{"text": "hi"})
	require.Equal(t, http.StatusCreated, w.Code)
	p = decodePost(t, env)
	require.Len(t, p.Comments, 1)
	commentID := p.Comments[0].ID

	w, env = s.do(t, http.MethodPut, "/api/posts/like/"+p.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodePost(t, env).Likes, 1)

	w, env = s.do(t, http.MethodPut, "/api/posts/like/"+p.ID, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALREADY_LIKED", env.Code)

	w, env = s.do(t, http.MethodDelete, "/api/posts/comment/"+p.ID+"/"+commentID, ada, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Code)

	w, env = s.do(t, http.MethodDelete, "/api/posts/comment/"+p.ID+"/"+commentID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodePost(t, env).Comments)

	w, env = s.do(t, http.MethodPut, "/api/posts/unlike/"+p.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodePost(t, env).Likes)

	w, env = s.do(t, http.MethodPut, "/api/posts/unlike/"+p.ID, bob, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NOT_LIKED", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/posts", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []entity.Post
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = s.do(t, http.MethodDelete, "/api/posts/"+p.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/posts/"+p.ID, ada, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/posts/"+p.ID, ada, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCreatePost_BlankText(t *testing.T) {
	s := newServer(t)
	ada := s.register(t, "Ada", "ada@example.com")

	w, env := s.do(t, http.MethodPost, "/api/posts", ada, map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestPostRoutes_RequireToken(t *testing.T) {
	s := newServer(t)
	w, env := s.do(t, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "MISSING_TOKEN", env.Code)

	w, env = s.do(t, http.MethodGet, "/api/posts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", env.Code)
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	r := gin.New()
	r.GET("/ok", NewHealthHandler(map[string]Check{"db": ok}).Health)
	r.GET("/bad", NewHealthHandler(map[string]Check{"db": ok, "cache": down}).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"cache":"down"`)
}
