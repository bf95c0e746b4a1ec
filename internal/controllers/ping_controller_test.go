package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/linkstats/internal/services/smocks"
)

func TestPingController_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		connErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "ok", connErr: nil, wantStatus: http.StatusOK, wantBody: "pong"},
		{name: "storage down", connErr: assert.AnError, wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connMock := new(smocks.ConnCheckerMock)
			connMock.On("CheckConnection", mock.Anything).Return(tt.connErr)

			router := gin.New()
			router.GET("/ping", NewPingController(connMock).Ping)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
