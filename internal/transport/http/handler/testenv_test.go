package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-recipe-api/internal/core/auth"
	"go-recipe-api/internal/core/cache"
	"go-recipe-api/internal/core/config"
	"go-recipe-api/internal/domain"
	"go-recipe-api/internal/transport/http/router"
	"go-recipe-api/pkg/utils"
)

type testEnv struct {
	engine    *gin.Engine
	db        *gorm.DB
	jwter     *auth.JWTer
	mediaRoot string
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvCache(t, nil)
}

// newTestEnvCache cch 非 nil 时 detail 路径走 redis 读穿
func newTestEnvCache(t *testing.T, cch *cache.Cache) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Tag{}, &domain.Ingredient{}, &domain.Recipe{},
	))

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Media.Root = t.TempDir()
	cfg.Media.URL = "/media"

	env := &testEnv{
		db:        db,
		jwter:     jwter,
		mediaRoot: cfg.Media.Root,
	}
	env.engine = router.NewAPIEngine(cfg, zap.NewNop(), db, jwter, cch)
	return env
}

func (e *testEnv) createUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        utils.NormalizeEmail(email),
		Name:         "Test User",
		PasswordHash: utils.HashPassword(password),
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) token(t *testing.T, u *domain.User) string {
	t.Helper()
	tok, err := e.jwter.Issue(u.ID)
	require.NoError(t, err)
	return tok
}

// doJSON token 为空则不带 Authorization 头
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
