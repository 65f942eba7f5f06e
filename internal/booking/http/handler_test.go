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
)

// stubService implements the calls exercised here; the embedded interface
// panics on anything else.
type stubService struct {
	booking.Service

	lastActor auth.Principal
	create    func(req booking.CreateRequest) (*booking.Booking, error)
	swapRoom  func(id, roomID string) (*booking.Booking, error)
	payment   func(id string, req booking.PaymentRequest) (*booking.PaymentResult, error)
}

func (s *stubService) Create(ctx context.Context, actor auth.Principal, req booking.CreateRequest) (*booking.Booking, error) {
	s.lastActor = actor
	return s.create(req)
}

func (s *stubService) SwapRoom(ctx context.Context, actor auth.Principal, id, roomID string) (*booking.Booking, error) {
	s.lastActor = actor
	return s.swapRoom(id, roomID)
}

func (s *stubService) RecordPayment(ctx context.Context, actor auth.Principal, id string, req booking.PaymentRequest) (*booking.PaymentResult, error) {
	s.lastActor = actor
	return s.payment(id, req)
}

type testServer struct {
	engine *gin.Engine
	svc    *stubService
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager := auth.NewJWTManager("test-secret", time.Minute)
	token, err := jwtManager.GenerateAccessToken(auth.Principal{ID: "u-staff", Name: "Sid", Role: auth.RoleStaff})
	require.NoError(t, err)

	svc := &stubService{}
	engine := gin.New()
	RegisterRoutes(engine.Group("/v1"), NewHandler(svc), auth.AuthRequired(jwtManager))

	return &testServer{engine: engine, svc: svc, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func sampleBooking(id string) *booking.Booking {
	return &booking.Booking{
		ID:         id,
		ClientName: "Riley",
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		RoomID:     uuid.NewString(),
		RoomName:   "Studio A",
		StartTime:  "10:00",
		EndTime:    "12:00",
		Status:     booking.StatusPending,
		Version:    1,
	}
}

func TestCreateBooking(t *testing.T) {
	s := newTestServer(t)
	roomID := uuid.NewString()

	var got booking.CreateRequest
	s.svc.create = func(req booking.CreateRequest) (*booking.Booking, error) {
		got = req
		return sampleBooking(uuid.NewString()), nil
	}

	w, body := s.do(t, http.MethodPost, "/v1/bookings", gin.H{
		"client_name": "Riley",
		"date":        "2024-06-01",
		"room_id":     roomID,
		"start_time":  "10:00",
		"end_time":    "12:00",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2024-06-01", body["date"])
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, roomID, got.RoomID)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, "u-staff", s.svc.lastActor.ID)
	assert.Equal(t, auth.RoleStaff, s.svc.lastActor.Role)
}

func TestCreateBookingRejectsBadBody(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/v1/bookings", gin.H{
		"client_name": "Riley",
		"date":        "06/01/2024",
		"room_id":     uuid.NewString(),
		"start_time":  "10:00",
		"end_time":    "12:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingRendersConflicts(t *testing.T) {
	s := newTestServer(t)
	existing := sampleBooking(uuid.NewString())
	s.svc.create = func(req booking.CreateRequest) (*booking.Booking, error) {
		return nil, &booking.ConflictError{Err: booking.ErrSlotTaken, Conflicts: []*booking.Booking{existing}}
	}

	w, body := s.do(t, http.MethodPost, "/v1/bookings", gin.H{
		"client_name": "Riley",
		"date":        "2024-06-01",
		"room_id":     uuid.NewString(),
		"start_time":  "11:00",
		"end_time":    "13:00",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, booking.ErrSlotTaken.Message, body["error"])
	conflicts, ok := body["conflicts"].([]any)
	require.True(t, ok)
	require.Len(t, conflicts, 1)
	assert.Equal(t, existing.ID, conflicts[0].(map[string]any)["id"])
}

func TestSwapRoomRendersAssignedRooms(t *testing.T) {
	s := newTestServer(t)
	s.svc.swapRoom = func(id, roomID string) (*booking.Booking, error) {
		return nil, &booking.ConflictError{
			Err:           booking.ErrEngineerNotAssigned,
			AssignedRooms: []engineer.Assignment{{RoomID: "room-a", RoomName: "Studio A", IsPrimary: true}},
		}
	}

	w, body := s.do(t, http.MethodPost, "/v1/bookings/"+uuid.NewString()+"/swap-room", gin.H{"room_id": uuid.NewString()})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Engineer is not assigned to this room", body["error"])
	rooms, ok := body["assigned_rooms"].([]any)
	require.True(t, ok)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Studio A", rooms[0].(map[string]any)["room_name"])
}

func TestRecordPayment(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()
	s.svc.payment = func(bookingID string, req booking.PaymentRequest) (*booking.PaymentResult, error) {
		b := sampleBooking(bookingID)
		b.Status = booking.StatusConfirmed
		return &booking.PaymentResult{
			Payment:        &booking.PaymentSplit{ID: uuid.NewString(), BookingID: bookingID, Method: req.Method, Amount: req.Amount},
			Booking:        b,
			Reconciliation: booking.Reconcile(450, 450),
		}, nil
	}

	w, body := s.do(t, http.MethodPost, "/v1/bookings/"+id+"/payments", gin.H{"method": "ZELLE", "amount": 450})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["is_fully_paid"])
	assert.Equal(t, "PAID", body["payment_status"])
	assert.Equal(t, "CONFIRMED", body["booking_status"])
	assert.Equal(t, 450.0, body["total_paid"])
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/v1/bookings/"+uuid.NewString()+"/payments", gin.H{"method": "BITCOIN", "amount": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.token = "not-a-token"

	w, _ := s.do(t, http.MethodGet, "/v1/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExtendRejectsHoursOutOfRange(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	for _, hours := range []int{0, 25, 1_000_000} {
		w, _ := s.do(t, http.MethodPost, "/v1/bookings/"+id+"/extend", gin.H{"additional_hours": hours})
		assert.Equal(t, http.StatusBadRequest, w.Code, "hours=%d", hours)
	}
}
