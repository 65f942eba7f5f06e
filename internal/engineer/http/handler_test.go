package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
	"github.com/nekogravitycat/studio-booking-backend/internal/booking"
	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
)

type stubEngineers struct {
	engineer.Service
	engineers []*engineer.Engineer
	lastSet   engineer.SetAvailabilityRequest
}

func (s *stubEngineers) List(ctx context.Context, filter engineer.Filter) ([]*engineer.Engineer, int, error) {
	return s.engineers, len(s.engineers), nil
}

func (s *stubEngineers) SetAvailability(ctx context.Context, engineerID string, req engineer.SetAvailabilityRequest) (*engineer.Availability, error) {
	s.lastSet = req
	return &engineer.Availability{EngineerID: engineerID, Date: req.Date, Status: req.Status, Reason: req.Reason}, nil
}

type stubChecker struct {
	busy map[string]bool
}

func (s *stubChecker) CheckEngineerAvailability(ctx context.Context, engineerID string, date time.Time, window clock.Interval) (*booking.EngineerAvailability, error) {
	if s.busy[engineerID] {
		return &booking.EngineerAvailability{Conflicts: []*booking.Booking{{ID: "b1"}}}, nil
	}
	return &booking.EngineerAvailability{Available: true}, nil
}

func newEngineerEngine(t *testing.T, role auth.Role) (*gin.Engine, *stubEngineers, *stubChecker, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager := auth.NewJWTManager("test-secret", time.Minute)
	token, err := jwtManager.GenerateAccessToken(auth.Principal{ID: uuid.NewString(), Name: "Tester", Role: role})
	require.NoError(t, err)

	svc := &stubEngineers{}
	checker := &stubChecker{busy: map[string]bool{}}
	engine := gin.New()
	RegisterRoutes(engine.Group("/v1"), NewHandler(svc, checker), auth.AuthRequired(jwtManager))
	return engine, svc, checker, token
}

func TestListEngineersWithAvailability(t *testing.T) {
	engine, svc, checker, token := newEngineerEngine(t, auth.RoleStaff)
	svc.engineers = []*engineer.Engineer{
		{ID: "eng-alex", Name: "Alex", IsActive: true},
		{ID: "eng-jamie", Name: "Jamie", IsActive: true},
	}
	checker.busy["eng-jamie"] = true

	req := httptest.NewRequest(http.MethodGet, "/v1/engineers?date=2024-06-01&start_time=10:00&end_time=12:00", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []EngineerResponse `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.True(t, *body.Items[0].IsAvailable)
	assert.False(t, *body.Items[1].IsAvailable)
}

func TestSetAvailability(t *testing.T) {
	engine, svc, _, token := newEngineerEngine(t, auth.RoleManager)

	payload, err := json.Marshal(gin.H{"date": "2024-06-01", "status": "TIME_OFF", "reason": "vacation"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/v1/engineers/"+uuid.NewString()+"/availability", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, engineer.AvailabilityTimeOff, svc.lastSet.Status)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), svc.lastSet.Date)
	assert.Contains(t, w.Body.String(), `"date":"2024-06-01"`)
}

func TestEngineerWritesRequireManageEngineers(t *testing.T) {
	engine, _, _, token := newEngineerEngine(t, auth.RoleStaff)

	payload := []byte(`{"room_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/engineers/"+uuid.NewString()+"/rooms", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
