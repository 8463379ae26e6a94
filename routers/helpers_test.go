package routers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"lexorial/config"
	"lexorial/database"
	"lexorial/middleware"
	"lexorial/models"
	"lexorial/utils"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	config.AppConfig = &config.Config{
		AllowedOrigins:      "*",
		JWTKey:              "test-secret",
		StorageBucket:       "lesson-slides",
		MaxUploadMB:         1,
		ProgressRateLimit:   30,
		ProgressMaxAttempts: 3,
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	database.Database = database.DbInstance{Db: db}
	utils.Storage = nil

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return &testEnv{t: t, app: NewApp(middleware.NewRateLimiter(nil)), db: db}
}

func (e *testEnv) token(userID uuid.UUID) string {
	e.t.Helper()
	tok, err := middleware.GenerateJWT(userID, "learner@example.com")
	require.NoError(e.t, err)
	return tok
}

// admin creates an ADMIN profile and returns its token
func (e *testEnv) admin() string {
	e.t.Helper()
	id := uuid.New()
	require.NoError(e.t, e.db.Create(&models.Profile{UserID: id.String(), Email: "admin@example.com", Role: models.RoleAdmin}).Error)
	return e.token(id)
}

func (e *testEnv) do(req *http.Request, token string) (int, envelope) {
	e.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	var env envelope
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (e *testEnv) request(method, path string, body interface{}, token string) (int, envelope) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.do(req, token)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func level(v int) *int { return &v }

func (e *testEnv) seedModule(title string, lvl *int, lessons int) (models.Module, []models.Lesson) {
	e.t.Helper()
	m := models.Module{Title: title, Level: lvl}
	require.NoError(e.t, e.db.Create(&m).Error)
	out := make([]models.Lesson, lessons)
	for i := range out {
		out[i] = models.Lesson{ModuleID: m.ID, Title: fmt.Sprintf("%s %d", title, i+1), OrderIndex: i + 1}
		require.NoError(e.t, e.db.Create(&out[i]).Error)
	}
	return m, out
}

func (e *testEnv) setProgress(userID uuid.UUID, lvl, levelLesson int) {
	e.t.Helper()
	require.NoError(e.t, e.db.Create(&models.UserProgress{
		UserID: userID.String(), Level: lvl, LevelLesson: levelLesson, Version: 1,
	}).Error)
}
