package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"recipe-share/internal/core/ai/provider"
	recipeService "recipe-share/internal/core/recipe"
	"recipe-share/internal/infrastructure/config"
	"recipe-share/internal/infrastructure/database"
	"recipe-share/internal/infrastructure/store"
	"recipe-share/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProvider struct {
	content string
	err     error
}

func (p *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &provider.Response{Content: p.content, Model: "fake"}, nil
}

func (p *fakeProvider) GetModel() string          { return "fake" }
func (p *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (p *fakeProvider) Close() error              { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Debug: true, Version: "test", Env: "test"},
		Queue:     config.QueueConfig{Workers: 1, MaxSize: 10},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Recipe: config.RecipeConfig{
			FetchConcurrency: 4,
			MaxBodySize:      1 << 20,
			RequestTimeout:   5 * time.Second,
		},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
		DedupWindow: time.Second,
	}
}

func newSQLiteStore(t *testing.T) recipeService.RecordStore {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DSN:         ":memory:",
		LogLevel:    "silent",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return store.NewGormStore(db)
}

func newTestRouter(t *testing.T, cfg *config.Config, s recipeService.RecordStore, p provider.Provider) *gin.Engine {
	t.Helper()
	svc := NewServices(cfg, s, nil, p)
	t.Cleanup(svc.Close)
	return SetupRouter(cfg, svc)
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRecipes_CreateThenRead(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	w := doJSON(r, http.MethodPost, "/api/recipes",
		`{"title":"Test","ingredients":[{"name":"Egg","amount":"2"}],"steps":[{"description":"Boil"},{"description":"Peel"}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created recipeService.CreateResult
	decode(t, w, &created)
	assert.Equal(t, "Recipe created successfully", created.Message)
	require.NotEmpty(t, created.RecipeID)

	w = doJSON(r, http.MethodGet, "/api/recipes/"+created.RecipeID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var view recipeService.Recipe
	decode(t, w, &view)
	assert.Equal(t, "Test", view.Title)
	assert.Equal(t, recipeService.AnonymousAuthorName, view.Author.Name)
	assert.Equal(t, "0", view.Author.Followers)
	assert.Equal(t, "0", view.Stats.Views)
	assert.Equal(t, []recipeService.Ingredient{{RecipeID: created.RecipeID, Name: "Egg", Amount: "2"}}, view.Ingredients)
	require.Len(t, view.Steps, 2)
	assert.Equal(t, 1, view.Steps[0].Number)
	assert.Equal(t, "Boil", view.Steps[0].Description)
	assert.Equal(t, 2, view.Steps[1].Number)
	for _, step := range view.Steps {
		assert.Equal(t, created.RecipeID, step.RecipeID)
	}

	var raw struct {
		Ingredients []map[string]interface{} `json:"ingredients"`
		Steps       []map[string]interface{} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, created.RecipeID, raw.Ingredients[0]["recipeId"])
	assert.Equal(t, created.RecipeID, raw.Steps[0]["recipeId"])

	w = doJSON(r, http.MethodGet, "/api/recipes", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []recipeService.Recipe
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.RecipeID, list[0].ID)
}

func TestRecipes_ListEmptyIsArray(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	w := doJSON(r, http.MethodGet, "/api/recipes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRecipes_MinimalRecipeHasEmptyArrays(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	w := doJSON(r, http.MethodPost, "/api/recipes", `{"title":"Plain"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created recipeService.CreateResult
	decode(t, w, &created)

	w = doJSON(r, http.MethodGet, "/api/recipes/"+created.RecipeID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, []interface{}{}, body["ingredients"])
	assert.Equal(t, []interface{}{}, body["steps"])
	assert.Equal(t, []interface{}{}, body["tags"])
}

func TestRecipes_ConcurrentAnonymousCreates(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = doJSON(r, http.MethodPost, "/api/recipes", fmt.Sprintf(`{"title":"Recipe %d"}`, i)).Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}

	w := doJSON(r, http.MethodGet, "/api/recipes", "")
	var list []recipeService.Recipe
	decode(t, w, &list)
	assert.Len(t, list, 5)
}

func TestRecipes_Errors(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "missing recipe", method: http.MethodGet, path: "/api/recipes/does-not-exist", status: http.StatusNotFound, code: common.ErrCodeNotFound},
		{name: "blank title", method: http.MethodPost, path: "/api/recipes", body: `{"title":"  "}`, status: http.StatusBadRequest, code: common.ErrCodeValidation},
		{name: "malformed body", method: http.MethodPost, path: "/api/recipes", body: `{"title":`, status: http.StatusBadRequest, code: common.ErrCodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp common.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRecipes_DuplicatePostRejected(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	body := `{"title":"Twice"}`
	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/recipes", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(r, http.MethodPost, "/api/recipes", body).Code)
}

func TestRecipes_RejectedPostCanBeRetried(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	body := `{"title":"  "}`
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/recipes", body).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/api/recipes", body).Code)
}

func TestRecipes_StoreNotConfigured(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)

	for _, w := range []*httptest.ResponseRecorder{
		doJSON(r, http.MethodGet, "/api/recipes", ""),
		doJSON(r, http.MethodGet, "/api/recipes/abc", ""),
		doJSON(r, http.MethodPost, "/api/recipes", `{"title":"x"}`),
	} {
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp common.ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, common.ErrCodeServiceUnavailable, resp.Code)
	}
}

func TestGemini_Generate(t *testing.T) {
	p := &fakeProvider{content: "```json\n{\"title\":\"番茄炒蛋\",\"description\":\"快手菜\",\"ingredients\":[{\"name\":\"番茄\",\"amount\":\"2個\"}],\"steps\":[{\"description\":\"炒蛋\"}]}\n```"}
	r := newTestRouter(t, testConfig(), nil, p)

	w := doJSON(r, http.MethodPost, "/api/gemini/generate", `{"ingredients":"番茄, 雞蛋"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var idea recipeService.Idea
	decode(t, w, &idea)
	assert.Equal(t, "番茄炒蛋", idea.Title)
	assert.Equal(t, []recipeService.IdeaStep{{Description: "炒蛋"}}, idea.Steps)
}

func TestGemini_GenerateErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider provider.Provider
		body     string
		status   int
		code     string
	}{
		{name: "blank ingredients", provider: &fakeProvider{content: "{}"}, body: `{"ingredients":"  "}`, status: http.StatusBadRequest, code: common.ErrCodeValidation},
		{name: "empty body", provider: &fakeProvider{content: "{}"}, body: "", status: http.StatusBadRequest, code: common.ErrCodeInvalidRequest},
		{name: "provider failure", provider: &fakeProvider{err: errors.New("quota exceeded")}, body: `{"ingredients":"egg"}`, status: http.StatusInternalServerError, code: common.ErrCodeGeneration},
		{name: "not json", provider: &fakeProvider{content: "no idea"}, body: `{"ingredients":"egg"}`, status: http.StatusInternalServerError, code: common.ErrCodeGeneration},
		{name: "not configured", provider: nil, body: `{"ingredients":"egg"}`, status: http.StatusInternalServerError, code: common.ErrCodeGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, testConfig(), nil, tt.provider)

			w := doJSON(r, http.MethodPost, "/api/gemini/generate", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp common.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotContains(t, resp.Error, "quota")
		})
	}
}

func TestGemini_StepImagePrompt(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)

	w := doJSON(r, http.MethodPost, "/api/gemini/step-image-prompt", `{"description":"切番茄"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"prompt":"A high quality, appetizing real-life photo of cooking step: 切番茄"}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/gemini/step-image-prompt", `{"description":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGemini_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute, Burst: 1}
	r := newTestRouter(t, cfg, nil, &fakeProvider{content: `{"title":"x"}`})

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/gemini/generate", `{"ingredients":"egg"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(r, http.MethodPost, "/api/gemini/generate", `{"ingredients":"rice"}`).Code)
}

func TestHealthEndpoints(t *testing.T) {
	withStore := newTestRouter(t, testConfig(), newSQLiteStore(t), &fakeProvider{})
	withoutStore := newTestRouter(t, testConfig(), nil, nil)

	w := doJSON(withStore, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","database":"ok"}`, w.Body.String())

	w = doJSON(withoutStore, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","database":"disabled"}`, w.Body.String())

	w = doJSON(withStore, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])
	assert.Contains(t, health, "queue")

	w = doJSON(withoutStore, http.MethodGet, "/live", "")
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

type failingPinger struct {
	recipeService.RecordStore
}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealth_ReadyWhenDatabaseDown(t *testing.T) {
	r := newTestRouter(t, testConfig(), failingPinger{}, nil)

	w := doJSON(r, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"not_ready","database":"unreachable"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig(), newSQLiteStore(t), nil)

	w := doJSON(r, http.MethodPost, "/api/recipes", `{"title":"Counted"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipes_created_total 1")
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",path="/api/recipes",status_code="201"} 1`)
}

func TestCORSHeaders(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
