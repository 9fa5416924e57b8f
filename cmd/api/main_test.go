package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/dbmysql"
	"smsvault/internal/logger"
	"smsvault/internal/sms"
	"smsvault/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *wire.Application {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Security: config.SecurityConfig{AuthKey: "gateway-key", EncryptionKey: "0123456789abcdef0123456789abcdef"},
		Logging:  config.LoggingConfig{Level: "error"},
	}
	log := logger.NewNop()

	db, err := dbmysql.NewDatabase(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	service := sms.NewService(cfg, dbmysql.NewMessageRepository(db), nil, log)
	return &wire.Application{Config: cfg, Logger: log, Handler: sms.NewHandler(service, log)}
}

func TestSetupRouter(t *testing.T) {
	router := setupRouter(newTestApp(t))
	auth := common.CisabCredential("gateway-key")

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       string
		wantStatus int
	}{
		{name: "health is public", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "list needs auth", method: http.MethodGet, path: "/get", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", method: http.MethodGet, path: "/get", auth: "Cisab nope", wantStatus: http.StatusUnauthorized},
		{name: "list", method: http.MethodGet, path: "/get", auth: auth, wantStatus: http.StatusOK},
		{name: "set", method: http.MethodPost, path: "/set", auth: auth, body: `{"sender":"Bank","sms":"hi","ts":"t"}`, wantStatus: http.StatusCreated},
		{name: "preflight", method: http.MethodOptions, path: "/set", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}
