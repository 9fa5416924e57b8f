package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smsvault/internal/codec"
	"smsvault/internal/common"
	"smsvault/internal/config"
	"smsvault/internal/dbmysql"
	"smsvault/internal/format"
	"smsvault/internal/logger"
	"smsvault/internal/sms"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAuthKey       = "gateway-key"
	testEncryptionKey = "0123456789abcdef0123456789abcdef"
)

// newTestServer runs the real router over an in-memory SQLite store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Security: config.SecurityConfig{AuthKey: testAuthKey, EncryptionKey: testEncryptionKey},
		Logging:  config.LoggingConfig{Level: "error"},
	}
	log := logger.NewNop()

	db, err := dbmysql.NewDatabase(cfg, log)
	require.NoError(t, err)

	service := sms.NewService(cfg, dbmysql.NewMessageRepository(db), nil, log)
	router := mux.NewRouter()
	router.Use(common.AuthMiddleware(cfg.Security.AuthKey, log))
	sms.NewHandler(service, log).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return server
}

func TestClient_SendListGet(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL+"/", testAuthKey, []byte(testEncryptionKey), logger.NewNop())
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	firstID, err := c.Send(ctx, common.Message{Sender: "Bank", SMS: "Your code is 1234", TS: "2024-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "1", firstID)

	hexBody, err := format.EncodeUTF16Hex("مرحبا")
	require.NoError(t, err)
	secondID, err := c.Send(ctx, common.Message{Sender: "Mom", SMS: hexBody, TS: "2024-01-02T00:00:00Z"})
	require.NoError(t, err)
	assert.Equal(t, "2", secondID)

	all, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2", *all[0].ID)
	assert.Equal(t, "مرحبا", all[0].SMS)
	assert.Equal(t, "Your code is 1234", all[1].SMS)

	got, err := c.Get(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "Bank", got.Sender)
	assert.Equal(t, "Your code is 1234", got.SMS)

	_, err = c.Get(ctx, "99")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClient_SendEmpty(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL, testAuthKey, nil, logger.NewNop())

	_, err := c.Send(context.Background(), common.Message{Sender: "Bank", SMS: " ", TS: "t"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Bad Request: SMS content cannot be empty", apiErr.Body)
}

func TestClient_WrongKey(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL, "not-the-key", nil, logger.NewNop())

	_, err := c.List(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// health stays reachable
	assert.NoError(t, c.Health(context.Background()))
}

func TestClient_Bearer(t *testing.T) {
	server := newTestServer(t)

	token, err := common.GenerateToken([]byte(testAuthKey), "inbox", time.Minute)
	require.NoError(t, err)

	c := New(server.URL, "", nil, logger.NewNop())
	c.UseBearer(token)

	messages, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestClient_DecryptsWhatAnOlderServerReturns(t *testing.T) {
	envelope, err := codec.Encrypt("Your code is 1234", []byte(testEncryptionKey))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Cisab yek-yawetag", r.Header.Get("Authorization"))
		id := "1"
		json.NewEncoder(w).Encode([]common.Message{{ID: &id, Sender: "Bank", SMS: envelope, TS: "t"}})
	}))
	defer server.Close()

	messages, err := New(server.URL, testAuthKey, []byte(testEncryptionKey), logger.NewNop()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Your code is 1234", messages[0].SMS)

	// without a key the body is shown as served
	messages, err = New(server.URL, testAuthKey, nil, logger.NewNop()).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, envelope, messages[0].SMS)
}

func TestClient_SendWithoutLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	_, err := New(server.URL, testAuthKey, nil, logger.NewNop()).Send(context.Background(), common.Message{SMS: "x"})
	assert.Error(t, err)
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 500, Body: "Internal Server Error"}
	assert.Equal(t, "unexpected status 500: Internal Server Error", err.Error())
}
