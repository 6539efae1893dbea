package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"rentproof_backend/database"
	"rentproof_backend/internal/app"
	"rentproof_backend/internal/auth"
	"rentproof_backend/internal/config"
	"rentproof_backend/internal/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Server   *httptest.Server
	DB       *gorm.DB
	verifier *auth.Verifier
}

// NewTestServer поднимает приложение поверх реальной БД из DATABASE_URL.
// Without DATABASE_URL the calling test is skipped.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "testdata/none.yaml"
	}
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Server.Env = "test"
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Storage.BaseURL = "/api/v1/files"
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "integration-secret"
	}
	logger.Init(cfg.Server.Env)

	db, err := database.Connect(cfg.Database.DSN, cfg.Database.MaxOpenConns, false)
	require.NoError(t, err, "test database unavailable")
	require.NoError(t, database.AutoMigrate(db))

	application, err := app.New(cfg, db)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	application.Start(ctx)

	ts := &TestServer{
		Server:   httptest.NewServer(application.Router),
		DB:       db,
		verifier: auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
	}
	t.Cleanup(func() {
		ts.Server.Close()
		cancel()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return ts
}

// Token выпускает access token для стороны.
func (ts *TestServer) Token(t *testing.T, partyID string) string {
	t.Helper()
	token, err := ts.verifier.IssueToken(partyID, time.Hour)
	require.NoError(t, err)
	return token
}

// SendJSON sends body as JSON (nil for none) and decodes the response into out when given.
func (ts *TestServer) SendJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.do(t, req, token, out)
}

// Upload отправляет одно доказательство multipart-формой.
func (ts *TestServer) Upload(t *testing.T, rentalID, token string, fields map[string]string, contentType string, data []byte, out any) int {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="evidence"`)
	h.Set("Content-Type", contentType)
	w, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/v1/rentals/"+rentalID+"/evidence", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(t, req, token, out)
}

func (ts *TestServer) do(t *testing.T, req *http.Request, token string, out any) int {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), "response: %s", raw)
	}
	return res.StatusCode
}
