package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/cache"
	adapterHTTP "github.com/goalchallenge/weekly-goals-engine/internal/adapters/handler/http"
	"github.com/goalchallenge/weekly-goals-engine/internal/adapters/repository"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
}

func (g *stubGenerator) Generate(ctx context.Context, req domain.ReportRequest) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

type reportTestEnv struct {
	router   *gin.Engine
	gen      *stubGenerator
	profiles *repository.InMemoryProfileRepository
}

func setupReportRouter(t *testing.T, profileID string) *reportTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	weeks := repository.NewInMemoryWeekRepository()
	templates := repository.NewInMemoryTemplateRepository()
	local := cache.NewMemoryLocalStore()
	reports := repository.NewInMemoryReportRepository()
	events := repository.NewInMemoryEventRepository()
	profiles := repository.NewInMemoryProfileRepository()
	gen := &stubGenerator{text: "# Your Week in Review\n\nSolid progress."}

	weekSvc := services.NewWeekService(weeks, templates, local)
	reportSvc := services.NewReportService(reports, events, gen)
	profileSvc := services.NewProfileService(profiles, nil)

	handler := adapterHTTP.NewReportHandler(reportSvc, weekSvc, profileSvc)

	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(identityMiddleware(profileID, false))
	handler.RegisterRoutes(group)

	return &reportTestEnv{router: r, gen: gen, profiles: profiles}
}

func TestGenerateReport(t *testing.T) {
	stamp := domain.CurrentWeekStamp(time.Now())

	t.Run("Success: generates and persists", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		req, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Your Week in Review")
		assert.Contains(t, w.Body.String(), `"regenerated":true`)
		assert.Equal(t, 1, env.gen.calls)
	})

	t.Run("Success: unchanged metrics reuse the saved report", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		first, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, first)
		require.Equal(t, http.StatusOK, w.Code)

		second, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, second)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"regenerated":false`)
		assert.Equal(t, 1, env.gen.calls)
	})

	t.Run("Success: force regenerates regardless", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		first, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, first)
		require.Equal(t, http.StatusOK, w.Code)

		body := bytes.NewBufferString(`{"force":true}`)
		second, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", body)
		second.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, second)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"regenerated":true`)
		assert.Equal(t, 2, env.gen.calls)
	})

	t.Run("Fail: 502 when the generator is down", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")
		env.gen.err = errors.New("connection refused")

		req, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "try again")
	})

	t.Run("Fail: 400 on malformed stamp", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		req, _ := http.NewRequest("POST", "/api/v1/weeks/nope/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLatestReport(t *testing.T) {
	stamp := domain.CurrentWeekStamp(time.Now())

	t.Run("Success: null body before any generation", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "null", w.Body.String())
	})

	t.Run("Success: returns the saved report", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		gen, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, gen)
		require.Equal(t, http.StatusOK, w.Code)

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var saved domain.SavedWeeklyReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
		assert.Equal(t, "user-1", saved.ProfileID)
		assert.Equal(t, stamp, saved.WeekStamp)
		assert.Contains(t, saved.Report, "Your Week in Review")
	})
}

func TestReportHistory(t *testing.T) {
	stamp := domain.CurrentWeekStamp(time.Now())

	t.Run("Success: newest first, bounded by max", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		for i := 0; i < 3; i++ {
			req, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", bytes.NewBufferString(`{"force":true}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report/history?max=2", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var history []*domain.SavedWeeklyReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
		assert.Len(t, history, 2)
	})

	t.Run("Success: empty history is a JSON array", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report/history", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("Fail: 400 on non-numeric max", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report/history?max=lots", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDownloadReport(t *testing.T) {
	stamp := domain.CurrentWeekStamp(time.Now())

	t.Run("Success: markdown attachment with derived name", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")
		require.NoError(t, env.profiles.Upsert(context.Background(), "user-1", &domain.Profile{Name: "Asha Rao"}))

		gen, _ := http.NewRequest("POST", "/api/v1/weeks/"+stamp+"/report", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, gen)
		require.Equal(t, http.StatusOK, w.Code)

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report/download", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "goal-challenge_report_asha_rao_"+stamp+".md")
		assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
		assert.Contains(t, w.Body.String(), "Your Week in Review")
	})

	t.Run("Fail: 404 before any generation", func(t *testing.T) {
		env := setupReportRouter(t, "user-1")

		req, _ := http.NewRequest("GET", "/api/v1/weeks/"+stamp+"/report/download", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
