package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestHasAllowedReferer(t *testing.T) {
	r := gin.New()
	r.POST("/", HasAllowedReferer([]string{"https://cybershield.id", " "}), okHandler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Referer", "https://cybershield.id/daftar")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Referer", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHasAllowedReferer_EmptyListAllowsAll(t *testing.T) {
	r := gin.New()
	r.POST("/", HasAllowedReferer([]string{""}), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHasValidSessionID(t *testing.T) {
	r := gin.New()
	r.GET("/sessions/:sessionID", HasValidSessionID(), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/7d444840-9dc0-11d1-b245-5ffdce74fad2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePayload(t *testing.T) {
	r := gin.New()
	r.POST("/", RequirePayload(), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimitPayload(t *testing.T) {
	r := gin.New()
	r.POST("/", LimitPayload(4), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusOK, w.Code)
}
