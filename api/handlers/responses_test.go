package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpress/dto"
	"inkpress/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, err)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound, "resource not found"},
		{"permission denied", services.ErrPermissionDenied, http.StatusForbidden, "permission denied"},
		{"business rule", services.ErrPostNotPublished, http.StatusBadRequest, "post is not published"},
		{"infrastructure", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := performError(t, tc.err)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.wantMsg, resp.Message)
		})
	}
}

func TestRespondErrorValidationFields(t *testing.T) {
	err := &services.ValidationError{Fields: map[string]string{
		"title":   "is required",
		"content": "is required",
	}}

	w, resp := performError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "is required", resp.Errors["title"])
	assert.Equal(t, "is required", resp.Errors["content"])
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	_, resp := performError(t, errors.New("dial tcp 10.0.0.5:27017: i/o timeout"))
	assert.NotContains(t, resp.Message, "27017")
}

func TestBindAndValidateReportsJSONFieldNames(t *testing.T) {
	r := gin.New()
	r.POST("/posts", func(c *gin.Context) {
		var req CreatePostRequest
		if !bindAndValidate(c, &req) {
			return
		}
		c.JSON(http.StatusOK, dto.OK("ok", nil))
	})

	body := `{"title": "", "content": "", "status": "live"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "is required", resp.Errors["title"])
	assert.Equal(t, "is required", resp.Errors["content"])
	assert.Equal(t, "must be one of draft, published, archived", resp.Errors["status"])
}

func TestBindAndValidateRejectsMalformedJSON(t *testing.T) {
	r := gin.New()
	r.POST("/posts", func(c *gin.Context) {
		var req CreatePostRequest
		if !bindAndValidate(c, &req) {
			return
		}
		c.JSON(http.StatusOK, dto.OK("ok", nil))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
