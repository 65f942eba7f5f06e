package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/studio-booking-backend/internal/app"
	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
	bookingHttp "github.com/nekogravitycat/studio-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/studio-booking-backend/internal/db"
	roomHttp "github.com/nekogravitycat/studio-booking-backend/internal/room/http"
	"github.com/nekogravitycat/studio-booking-backend/internal/user"
)

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
	jwtManager *auth.JWTManager
)

// TestMain wires the full container against TEST_DB_DSN. Without it the
// tests in this file skip.
func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	if err := db.Migrate(ctx, testPool); err != nil {
		log.Fatalf("Unable to migrate database: %v\n", err)
	}

	container := app.NewContainer(app.Config{
		DBPool:         testPool,
		JWTSecret:      "integration-secret",
		JWTTTL:         30 * time.Minute,
		BcryptCost:     4,
		RequestTimeout: 10 * time.Second,
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	testRouter = container.Router
	jwtManager = container.JWTManager

	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	testPool.Close()
	os.Exit(exitCode)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DB_DSN not set")
	}
}

func clearTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		"TRUNCATE TABLE public.bookings, public.rooms, public.users CASCADE")
	require.NoError(t, err)
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func createTestUser(t *testing.T, email string, role auth.Role) (*user.User, string) {
	t.Helper()
	hash, err := auth.NewBcryptPasswordHasherWithCost(4).Hash("password123")
	require.NoError(t, err)

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  email,
		Role:         role,
		IsActive:     true,
	}
	repo := user.NewPgxRepository(testPool)
	require.NoError(t, repo.Create(context.Background(), u))

	saved, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err)

	token, err := jwtManager.GenerateAccessToken(saved.Principal())
	require.NoError(t, err)
	return saved, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestBookingLifecycleAgainstPostgres(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, managerToken := createTestUser(t, "manager@studio.test", auth.RoleManager)
	_, staffToken := createTestUser(t, "staff@studio.test", auth.RoleStaff)
	alex, _ := createTestUser(t, "alex@studio.test", auth.RoleEngineer)

	rate := 150.0
	w := executeRequest("POST", "/v1/rooms", roomHttp.CreateRoomRequest{Name: "Studio A", BaseRate: &rate}, managerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomA := decode[roomHttp.RoomResponse](t, w)

	w = executeRequest("POST", "/v1/engineers/"+alex.ID+"/rooms", gin.H{"room_id": roomA.ID, "is_primary": true}, managerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var bookingID string

	t.Run("Create", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			ClientName: "The Band", Date: "2030-06-01", RoomID: roomA.ID,
			StartTime: "10:00", EndTime: "13:00", EngineerID: alex.ID,
		}, staffToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		b := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "PENDING", string(b.Status))
		bookingID = b.ID
	})

	t.Run("Overlapping slot is rejected", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
			ClientName: "Late Band", Date: "2030-06-01", RoomID: roomA.ID,
			StartTime: "12:00", EndTime: "14:00",
		}, staffToken)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("Concurrent creates for one slot admit exactly one", func(t *testing.T) {
		const attempts = 5
		codes := make([]int, attempts)
		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := executeRequest("POST", "/v1/bookings", bookingHttp.CreateBookingRequest{
					ClientName: "Racer", Date: "2030-06-01", RoomID: roomA.ID,
					StartTime: "15:00", EndTime: "17:00",
				}, staffToken)
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		created := 0
		for _, code := range codes {
			if code == http.StatusCreated {
				created++
			} else {
				assert.Equal(t, http.StatusConflict, code)
			}
		}
		assert.Equal(t, 1, created)
	})

	t.Run("Extend", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/extend", bookingHttp.ExtendRequest{AdditionalHours: 1}, staffToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decode[bookingHttp.ExtendResponse](t, w)
		assert.Equal(t, "14:00", res.Booking.EndTime)
		assert.Equal(t, "13:00", res.Extension.OriginalEndTime)
		assert.InDelta(t, 150.0, res.AdditionalCost, 0.001)

		// 15:00 is taken by the concurrent winner.
		w = executeRequest("POST", "/v1/bookings/"+bookingID+"/extend", bookingHttp.ExtendRequest{AdditionalHours: 2}, staffToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("Payments confirm the booking once fully paid", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings/"+bookingID+"/payments", bookingHttp.RecordPaymentRequest{Method: "CASH", Amount: 200}, staffToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res := decode[bookingHttp.PaymentResultResponse](t, w)
		assert.Equal(t, "PARTIAL", string(res.PaymentStatus))
		assert.Equal(t, "PENDING", string(res.BookingStatus))

		w = executeRequest("POST", "/v1/bookings/"+bookingID+"/payments", bookingHttp.RecordPaymentRequest{Method: "ZELLE", Amount: 400}, staffToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res = decode[bookingHttp.PaymentResultResponse](t, w)
		assert.Equal(t, "PAID", string(res.PaymentStatus))
		assert.Equal(t, "CONFIRMED", string(res.BookingStatus))
		assert.InDelta(t, 600.0, res.ExpectedAmount, 0.001)
	})

	t.Run("Details", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/"+bookingID, nil, staffToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		details := decode[bookingHttp.BookingDetailsResponse](t, w)
		assert.Len(t, details.Extensions, 1)
		assert.Len(t, details.Payments, 2)
		assert.True(t, details.Summary.IsFullyPaid)
	})
}
