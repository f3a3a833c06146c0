package http_test

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
)

type authTestEnv struct {
	router *gin.Engine
	tokens *services.TokenService
	local  *cache.MemoryLocalStore
}

func setupAuthRouter(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewInMemoryUserRepository()
	profiles := repository.NewInMemoryProfileRepository()
	local := cache.NewMemoryLocalStore()

	authSvc := services.NewAuthService(users)
	tokenSvc := services.NewTokenService("test-secret", "weekly-goals-engine", time.Hour, users)
	profileSvc := services.NewProfileService(profiles, nil)

	handler := adapterHTTP.NewAuthHandler(authSvc, tokenSvc, profileSvc, local)

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))

	return &authTestEnv{router: r, tokens: tokenSvc, local: local}
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const registerBody = `{"email": "asha@example.com", "password": "s3cret-pass", "displayName": "Asha"}`

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Success: 201 with a usable token", func(t *testing.T) {
		env := setupAuthRouter(t)

		w := postJSON(t, env.router, "/api/v1/auth/register", registerBody)
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "asha@example.com", resp.User.Email)

		subject, err := env.tokens.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.False(t, subject.Anonymous)
	})

	t.Run("Fail: 409 on duplicate email", func(t *testing.T) {
		env := setupAuthRouter(t)

		w := postJSON(t, env.router, "/api/v1/auth/register", registerBody)
		require.Equal(t, http.StatusCreated, w.Code)

		w = postJSON(t, env.router, "/api/v1/auth/register", registerBody)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Fail: 400 on short password", func(t *testing.T) {
		env := setupAuthRouter(t)

		w := postJSON(t, env.router, "/api/v1/auth/register", `{"email": "a@b.com", "password": "short", "displayName": "A"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("Success: token for the right password", func(t *testing.T) {
		env := setupAuthRouter(t)
		require.Equal(t, http.StatusCreated, postJSON(t, env.router, "/api/v1/auth/register", registerBody).Code)

		w := postJSON(t, env.router, "/api/v1/auth/login", `{"email": "asha@example.com", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token"`)
	})

	t.Run("Fail: 401 on a wrong password", func(t *testing.T) {
		env := setupAuthRouter(t)
		require.Equal(t, http.StatusCreated, postJSON(t, env.router, "/api/v1/auth/register", registerBody).Code)

		w := postJSON(t, env.router, "/api/v1/auth/login", `{"email": "asha@example.com", "password": "wrong-pass"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Fail: 401 on an unknown email", func(t *testing.T) {
		env := setupAuthRouter(t)

		w := postJSON(t, env.router, "/api/v1/auth/login", `{"email": "ghost@example.com", "password": "whatever1"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Success: pending anonymous id surfaces once", func(t *testing.T) {
		env := setupAuthRouter(t)
		require.NoError(t, env.local.SetProfileID(context.Background(), "anon-42"))
		require.Equal(t, http.StatusCreated, postJSON(t, env.router, "/api/v1/auth/register", registerBody).Code)

		w := postJSON(t, env.router, "/api/v1/auth/login", `{"email": "asha@example.com", "password": "s3cret-pass"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"anonymousProfileId":"anon-42"`)
	})
}

func TestAnonymousSessionEndpoint(t *testing.T) {
	t.Run("Success: anonymous token and stored profile id", func(t *testing.T) {
		env := setupAuthRouter(t)

		w := postJSON(t, env.router, "/api/v1/session/anonymous", "")
		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Token     string `json:"token"`
			ProfileID string `json:"profileId"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.ProfileID)

		subject, err := env.tokens.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.True(t, subject.Anonymous)
		assert.Equal(t, resp.ProfileID, subject.ProfileID)

		stored, err := env.local.GetProfileID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, resp.ProfileID, stored)
	})
}
