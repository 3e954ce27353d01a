package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/postboard/pkg/apperror"
)

func init() { gin.SetMode(gin.TestMode) }

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse[map[string]any] {
	t.Helper()
	var body APIResponse[map[string]any]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")

	Success(c, http.StatusCreated, map[string]any{"id": "p1"}, "created", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, "rid-1", body.RequestID)
	assert.Equal(t, "p1", body.Data["id"])
}

func TestFail_TranslatesKinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", apperror.NotFound("post not found"), http.StatusNotFound, "NOT_FOUND", "post not found"},
		{"forbidden", apperror.Forbidden("not authorized"), http.StatusForbidden, "FORBIDDEN", "not authorized"},
		{"already liked", apperror.New(apperror.KindAlreadyLiked, "post already liked"), http.StatusBadRequest, "ALREADY_LIKED", "post already liked"},
		{"invalid token", apperror.New(apperror.KindInvalidToken, "invalid access token"), http.StatusUnauthorized, "INVALID_TOKEN", "invalid access token"},
		{"unexpected", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "INTERNAL", "server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Fail(c, tt.err)

			assert.True(t, c.IsAborted())
			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, w.Body.String(), "relation does not exist")
		})
	}
}
