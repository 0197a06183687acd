package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecofix/backend/go/internal/config"
	"ecofix/backend/go/internal/database/sqldb"
	"ecofix/backend/go/internal/geocoding"
	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/tracker_service/service"
	"ecofix/backend/go/internal/tracker_service/store"
	"ecofix/backend/go/pkg/circuitbreaker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC)

type scriptedModel struct {
	text string
	err  error
}

func (m *scriptedModel) Generate(context.Context, string) (*models.ModelResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ModelResponse{Text: m.text}, nil
}

type stubGeocoder struct{}

func (stubGeocoder) Geocode(_ context.Context, address string) (*geocoding.Location, error) {
	if address == "Berlin" {
		return &geocoding.Location{Latitude: 52.52, Longitude: 13.405}, nil
	}
	return nil, geocoding.ErrNotFound
}

type testServer struct {
	router *gin.Engine
	model  *scriptedModel
	store  *store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqldb.Open(config.SQLConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, sqldb.Migrate(db))
	t.Cleanup(func() { _ = sqldb.Close(db) })

	st := store.NewStore(db)
	model := &scriptedModel{}
	svc := service.NewService(service.Deps{
		Store:    st,
		Model:    model,
		Geocoder: stubGeocoder{},
	}, service.Options{JWTSecret: "test-secret", Now: func() time.Time { return testNow }})

	h := NewHandler(svc, nil, func(ctx context.Context) error { return sqldb.HealthCheck(ctx, db) })
	return &testServer{router: SetupRouter(h), model: model, store: st}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username, "email": username + "@example.com", "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": username, "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct{ Token string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/activities", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/activities", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.login(t, "ada")

	w = s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "ada", "email": "ada2@example.com", "password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "ada", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/activities", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/activities", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "ada", "email": "ada@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "password", body["field"])
}

func TestCreateActivity(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ada")
	s.model.text = "Estimated 7.25 kg CO2e."

	w := s.do(t, http.MethodPost, "/api/v1/activities", token, gin.H{
		"date": "2024-06-29", "transportation": "train", "diet": "vegetarian", "energy_usage": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Activity  models.UserActivity
		Footprint *models.ParsedFootprint
		Note      string
	}
	decode(t, w, &resp)
	require.NotNil(t, resp.Footprint)
	assert.Equal(t, 7.25, resp.Footprint.Value)
	assert.Equal(t, "kg CO2e", resp.Footprint.Unit)
	assert.Equal(t, "2024-06-29", resp.Activity.Date.Format(models.DateLayout))

	s.model.text = "no number here"
	w = s.do(t, http.MethodPost, "/api/v1/activities", token, gin.H{
		"transportation": "train", "diet": "vegetarian", "energy_usage": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var second map[string]interface{}
	decode(t, w, &second)
	assert.Nil(t, second["footprint"])
	assert.Equal(t, "could not compute", second["note"])

	w = s.do(t, http.MethodPost, "/api/v1/activities", token, gin.H{"transportation": "car", "diet": "meat"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "energy_usage is required")

	w = s.do(t, http.MethodPost, "/api/v1/activities", token, gin.H{
		"date": "29/06/2024", "transportation": "car", "diet": "meat", "energy_usage": 3,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/activities", token, nil)
	var list struct{ Activities []models.UserActivity }
	decode(t, w, &list)
	assert.Len(t, list.Activities, 2)
}

func TestSustainabilityAndChart(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ada")

	w := s.do(t, http.MethodGet, "/api/v1/sustainability/chart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	s.model.text = "1 kg CO2e"
	for _, d := range []string{"2024-06-20", "2024-06-28"} {
		w = s.do(t, http.MethodPost, "/api/v1/activities", token, gin.H{
			"date": d, "transportation": "bus", "diet": "vegan", "energy_usage": 4,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	s.model.text = "Your score: 85\nTransportation: 20\nDiet: 10\n- Use public transport\n- Reduce meat"
	w = s.do(t, http.MethodGet, "/api/v1/sustainability", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		Score       *int
		Breakdown   []models.BreakdownEntry
		Suggestions []string
	}
	decode(t, w, &report)
	require.NotNil(t, report.Score)
	assert.Equal(t, 85, *report.Score)
	assert.Len(t, report.Breakdown, 2)
	assert.Equal(t, []string{"Use public transport", "Reduce meat"}, report.Suggestions)

	w = s.do(t, http.MethodGet, "/api/v1/sustainability/chart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var points []models.ChartPoint
	decode(t, w, &points)
	assert.Equal(t, []models.ChartPoint{
		{Date: "2024-06-28", EnergyUsage: 4, Score: 85},
		{Date: "2024-06-20", EnergyUsage: 4, Score: 85},
	}, points)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ada")

	w := s.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		User struct {
			Username string
			Password string
		}
		Score *models.SustainabilityScore
	}
	decode(t, w, &profile)
	assert.Equal(t, "ada", profile.User.Username)
	assert.Empty(t, profile.User.Password)
	assert.Nil(t, profile.Score)
}

func TestModelFailures(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ada")

	s.model.err = circuitbreaker.ErrCircuitOpen
	w := s.do(t, http.MethodGet, "/api/v1/sustainability", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.model.err = errors.New("boom")
	w = s.do(t, http.MethodGet, "/api/v1/sustainability", token, nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sustainability/chart", token, nil)
	assert.Equal(t, http.StatusOK, w.Code, "no activities means no model call")

	w = s.do(t, http.MethodPost, "/api/v1/simulate", token, gin.H{"action": "use_public_transport"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSimulate(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ada")
	s.model.text = "Projected score: 90"

	w := s.do(t, http.MethodPost, "/api/v1/simulate", token, gin.H{"action": "reduce_meat_consumption"})
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, float64(90), body["score"])
	assert.Equal(t, "reduce_meat_consumption", body["action"])

	w = s.do(t, http.MethodPost, "/api/v1/simulate", token, gin.H{"action": "fly_less"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartObservation(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.bin")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *testServer) postObservation(t *testing.T, token string, fields map[string]string, photo []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartObservation(t, fields, photo)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/observations", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestObservations(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ada")

	w := s.postObservation(t, token, map[string]string{
		"observation_type": "water_quality", "description": "Oil sheen", "location": "Atlantis",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var errBody map[string]string
	decode(t, w, &errBody)
	assert.Equal(t, "Invalid location. Please enter a valid address.", errBody["error"])

	for i := 0; i < 12; i++ {
		w = s.postObservation(t, token, map[string]string{
			"observation_type": "water_quality", "description": fmt.Sprintf("report %d", i), "location": "Berlin",
		}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// 未配置对象存储时拒绝照片
	w = s.postObservation(t, token, map[string]string{"observation_type": "other", "location": "Berlin"}, []byte("\xff\xd8\xff\xe0"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/observations/map", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var markers []map[string]interface{}
	decode(t, w, &markers)
	require.Len(t, markers, 12)
	assert.Equal(t, "water_quality", markers[0]["observation_type"])
	assert.Equal(t, 52.52, markers[0]["latitude"])

	w = s.do(t, http.MethodGet, "/api/v1/observations?type=water_quality&page=abc", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page store.Page
	decode(t, w, &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 10)

	w = s.do(t, http.MethodGet, "/api/v1/observations?page=7", token, nil)
	decode(t, w, &page)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 2)

	w = s.do(t, http.MethodGet, "/api/v1/observations?type=radioactivity", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "radioactivity"))
}
