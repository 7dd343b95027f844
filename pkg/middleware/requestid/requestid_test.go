package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, incoming string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if incoming != "" {
		req.Header.Set(Header, incoming)
	}
	r.ServeHTTP(w, req)
	return w, seen
}

func TestAssignsFreshID(t *testing.T) {
	w, seen := serve(t, "")
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(Header))
}

func TestReusesCallerID(t *testing.T) {
	w, seen := serve(t, "trace-42")
	assert.Equal(t, "trace-42", seen)
	assert.Equal(t, "trace-42", w.Header().Get(Header))
}

func TestReplacesOversizeID(t *testing.T) {
	_, seen := serve(t, strings.Repeat("x", 200))
	require.NotEmpty(t, seen)
	assert.Less(t, len(seen), 128)
}
