package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/model"
	"project-tracker/internal/pkg/config"
	"project-tracker/internal/pkg/crypto"
	"project-tracker/internal/pkg/database/dbtest"
	"project-tracker/internal/repository"
	"project-tracker/pkg/constants"
)

type silentNotifier struct{}

func (silentNotifier) Send(context.Context, *notification.NotificationMessage) error { return nil }
func (silentNotifier) Name() string                                                   { return "silent" }

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	store  *storage.MemoryStore
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	store := storage.NewMemoryStore("http://cdn.test")
	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "test", PublicURL: "http://track.test", MaxBodyMB: 8},
		Storage: config.StorageConfig{MaxImages: constants.MaxLogImages, MaxFileSize: 1 << 20},
		Auth: config.AuthConfig{
			JWT:   config.JWTConfig{Secret: "router-test", AccessTokenExpire: 600, RefreshTokenExpire: 3600},
			Local: config.LocalConfig{Enabled: true},
		},
		Track:    config.TrackConfig{RatePerSecond: 1000, Burst: 1000},
		Pipeline: config.PipelineConfig{MaxRetries: 3},
	}
	dispatcher := notification.NewDispatcher(silentNotifier{}, time.Second, zap.NewNop())
	t.Cleanup(dispatcher.Wait)

	engine := Setup(cfg, Deps{
		DB:         db,
		Stager:     storage.NewMediaStager(store, zap.NewNop()),
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})

	hash, err := crypto.HashPassword("admin123")
	require.NoError(t, err)
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &model.User{
		AuthProvider: constants.AuthTypeLocal,
		Username:     "admin",
		Password:     hash,
		BaseStatus:   model.BaseStatus{Status: constants.StatusEnabled},
	}))

	s := &testServer{engine: engine, db: db, store: store}
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	s.token = login.AccessToken
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) multipart(t *testing.T, path string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createProject(t *testing.T) (int64, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"clientName":  "Siti",
		"clientPhone": "081234567890",
		"projectName": "Toko Online",
		"deadline":    "2025-03-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	project := body["project"].(map[string]interface{})
	assert.Equal(t, true, body["whatsapp"].(map[string]interface{})["sent"])
	return int64(project["id"].(float64)), project["accessToken"].(string)
}

func TestRouter_HealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	s.token = ""
	w = s.do(t, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CreateProjectValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"clientName": "Siti", "clientPhone": "081234567890", "projectName": "X", "deadline": "tomorrow",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", decode(t, w)["reason"])
}

func TestRouter_MultipartLogTransitionsPhase(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createProject(t)

	links := `[{"label":"Figma","url":"javascript:alert(1)"},{"label":"Drive","url":"https://drive.example/x"}]`
	w := s.multipart(t, "/api/v1/projects/"+itoa(id)+"/logs", map[string]string{
		"title":             "Go live",
		"description":       "Semua fitur selesai",
		"percentage":        "100",
		"workPhase":         "DEVELOPMENT",
		"visualDescription": "Screenshot halaman utama",
		"links":             links,
	}, map[string][]byte{"home.png": []byte("png")})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, float64(100), body["percentage"])
	update := body["progressUpdate"].(map[string]interface{})
	require.Len(t, update["links"], 1)
	assert.Equal(t, "https://drive.example/x", update["links"].([]interface{})[0].(map[string]interface{})["url"])
	require.Len(t, update["images"], 1)
	assert.Equal(t, 1, s.store.Len())

	w = s.do(t, http.MethodGet, "/api/v1/projects/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	project := decode(t, w)
	assert.Equal(t, "MAINTENANCE", project["currentPhase"])
	assert.Equal(t, float64(60), project["overallProgress"])
	assert.NotNil(t, project["developmentCompletedAt"])

	var stored model.Project
	require.NoError(t, s.db.First(&stored, id).Error)
	assert.Equal(t, constants.ProjectStatusDone, stored.Status)
}

func TestRouter_JSONLogRejections(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createProject(t)
	path := "/api/v1/projects/" + itoa(id) + "/logs"

	w := s.do(t, http.MethodPost, path, map[string]interface{}{
		"title": "t", "description": "d", "percentage": 50, "workPhase": "MAINTENANCE",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PHASE_LOCKED", decode(t, w)["reason"])

	w = s.do(t, http.MethodPost, path, map[string]interface{}{"title": "t", "description": "d", "percentage": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]interface{}{"title": "t", "description": "d", "percentage": 101})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]interface{}{"title": "t", "description": "d"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/projects/999/logs", map[string]interface{}{"title": "t", "description": "d", "percentage": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]interface{}{"title": "t", "description": "d", "percentage": "40"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Nil(t, decode(t, w)["progressUpdate"])

	w = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
}

func TestRouter_PhaseEndpoint(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createProject(t)

	w := s.do(t, http.MethodPost, "/api/v1/projects/"+itoa(id)+"/phase", map[string]string{"phase": "MAINTENANCE"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INCOMPLETE_DEVELOPMENT", decode(t, w)["reason"])

	w = s.do(t, http.MethodPost, "/api/v1/projects/"+itoa(id)+"/phase", map[string]string{"phase": "LAUNCH"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_TrackFlow(t *testing.T) {
	s := newTestServer(t)
	id, token := s.createProject(t)

	w := s.multipart(t, "/api/v1/projects/"+itoa(id)+"/logs", map[string]string{
		"title": "Desain", "description": "Mockup", "percentage": "30", "visualDescription": "Mockup v1",
	}, map[string][]byte{"mock.png": []byte("m")})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	imageID := decode(t, w)["progressUpdate"].(map[string]interface{})["images"].([]interface{})[0].(map[string]interface{})["id"].(float64)

	s.token = ""
	w = s.do(t, http.MethodPost, "/api/v1/track/validate", map[string]string{"token": token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["valid"])

	w = s.do(t, http.MethodPost, "/api/v1/track/validate", map[string]string{"token": "unknown"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["valid"])

	w = s.do(t, http.MethodGet, "/api/v1/track/"+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, "Toko Online", view["project"].(map[string]interface{})["projectName"])
	assert.NotContains(t, view["project"], "clientPhone")
	assert.Len(t, view["logs"], 1)

	w = s.do(t, http.MethodGet, "/api/v1/track/"+token+"/updates/images/"+itoa(int64(imageID)), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "http://cdn.test/"))

	w = s.do(t, http.MethodPost, "/api/v1/track/"+token+"/feedback", map[string]string{"message": "Mantap"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_ArtifactRequiresFileOrLink(t *testing.T) {
	s := newTestServer(t)
	id, _ := s.createProject(t)
	path := "/api/v1/projects/" + itoa(id) + "/artifacts"

	w := s.do(t, http.MethodPost, path, map[string]string{"title": "Notes", "phase": "DISCOVERY"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]string{"title": "Notes", "phase": "NOPE", "sourceLinkUrl": "https://x.example"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path, map[string]string{"title": "Notes", "phase": "DISCOVERY", "sourceLinkUrl": "https://x.example"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	artifactID := int64(decode(t, w)["id"].(float64))

	w = s.do(t, http.MethodPatch, path+"/"+itoa(artifactID), map[string]string{"title": "Kickoff notes"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kickoff notes", decode(t, w)["title"])

	w = s.do(t, http.MethodDelete, path+"/"+itoa(artifactID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
