package middlewares

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGzipRouter(calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GzipMiddleware())
	router.POST("/echo", func(ctx *gin.Context) {
		*calls++
		body, _ := io.ReadAll(ctx.Request.Body)
		ctx.String(http.StatusOK, string(body))
	})
	router.GET("/hello", func(ctx *gin.Context) {
		*calls++
		ctx.String(http.StatusOK, "hello world")
	})
	return router
}

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err := gzw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}

func TestGzipMiddleware_CompressesResponse(t *testing.T) {
	var calls int
	router := newGzipRouter(&calls)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	// Обработчик за middleware выполняется ровно один раз.
	assert.Equal(t, 1, calls)

	gzr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(gzr)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(decoded))
}

func TestGzipMiddleware_PassthroughWithoutAcceptEncoding(t *testing.T) {
	var calls int
	router := newGzipRouter(&calls)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hello", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "hello world", w.Body.String())
	assert.Equal(t, 1, calls)
}

func TestGzipMiddleware_DecompressesRequestBody(t *testing.T) {
	var calls int
	router := newGzipRouter(&calls)

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(gzipBytes(t, "payload")))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payload", w.Body.String())
	assert.Equal(t, 1, calls)
}

func TestGzipMiddleware_RejectsMalformedBody(t *testing.T) {
	var calls int
	router := newGzipRouter(&calls)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("not gzip at all"))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, calls)
}
