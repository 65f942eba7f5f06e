package room

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rooms    map[string]*Room
	lockouts []*Lockout
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{rooms: map[string]*Room{}}
}

func (m *memRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memRepo) Create(ctx context.Context, r *Room) error {
	for _, existing := range m.rooms {
		if existing.Name == r.Name {
			return ErrNameTaken
		}
	}
	r.ID = m.nextID("room")
	cp := *r
	m.rooms[r.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	var out []*Room
	for _, r := range m.rooms {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(ctx context.Context, r *Room) error {
	if _, ok := m.rooms[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.rooms[r.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	delete(m.rooms, id)
	return nil
}

func (m *memRepo) CreateLockout(ctx context.Context, l *Lockout) error {
	l.ID = m.nextID("lockout")
	cp := *l
	m.lockouts = append(m.lockouts, &cp)
	return nil
}

func (m *memRepo) ListLockouts(ctx context.Context, roomID string) ([]*Lockout, error) {
	var out []*Lockout
	for _, l := range m.lockouts {
		if l.RoomID == roomID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteLockout(ctx context.Context, roomID, lockoutID string) error {
	for i, l := range m.lockouts {
		if l.ID == lockoutID && l.RoomID == roomID {
			m.lockouts = append(m.lockouts[:i], m.lockouts[i+1:]...)
			return nil
		}
	}
	return ErrLockoutNotFound
}

func (m *memRepo) LockoutOn(ctx context.Context, roomID string, date time.Time) (*Lockout, error) {
	for _, l := range m.lockouts {
		if l.RoomID == roomID && l.Covers(date) {
			return l, nil
		}
	}
	return nil, nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateDefaultsToAvailable(t *testing.T) {
	svc, _ := newTestService()

	rm, err := svc.Create(context.Background(), CreateRequest{Name: " Studio A ", BaseRate: ptr(120.0)})
	require.NoError(t, err)
	assert.Equal(t, "Studio A", rm.Name)
	assert.Equal(t, StatusAvailable, rm.Status)
	assert.Equal(t, 120.0, rm.HourlyBaseRate())
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Create(ctx, CreateRequest{Name: "B", Status: "open"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Create(ctx, CreateRequest{Name: "B", RateWithEngineer: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestHourlyBaseRateDefault(t *testing.T) {
	assert.Equal(t, DefaultHourlyRate, (&Room{}).HourlyBaseRate())
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rm, err := svc.Create(ctx, CreateRequest{Name: "Studio B"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, rm.ID, UpdateRequest{Status: ptr(StatusMaintenance)})
	require.NoError(t, err)
	assert.Equal(t, StatusMaintenance, updated.Status)

	_, err = svc.Update(ctx, rm.ID, UpdateRequest{Status: ptr(Status("broken"))})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Update(ctx, "missing", UpdateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLockoutIsInclusive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rm, err := svc.Create(ctx, CreateRequest{Name: "Studio C"})
	require.NoError(t, err)

	_, err = svc.AddLockout(ctx, rm.ID, LockoutRequest{
		StartDate: day("2024-06-03"),
		EndDate:   day("2024-06-05"),
		Reason:    "floor refinishing",
	})
	require.NoError(t, err)

	for _, d := range []string{"2024-06-03", "2024-06-04", "2024-06-05"} {
		l, err := svc.ActiveLockout(ctx, rm.ID, day(d))
		require.NoError(t, err)
		require.NotNil(t, l, d)
		assert.Equal(t, "floor refinishing", l.Reason)
	}

	l, err := svc.ActiveLockout(ctx, rm.ID, day("2024-06-06"))
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestAddLockoutRejectsReversedRange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rm, err := svc.Create(ctx, CreateRequest{Name: "Studio D"})
	require.NoError(t, err)

	_, err = svc.AddLockout(ctx, rm.ID, LockoutRequest{StartDate: day("2024-06-05"), EndDate: day("2024-06-03")})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.AddLockout(ctx, "missing", LockoutRequest{StartDate: day("2024-06-03"), EndDate: day("2024-06-03")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteLockout(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rm, err := svc.Create(ctx, CreateRequest{Name: "Studio E"})
	require.NoError(t, err)
	l, err := svc.AddLockout(ctx, rm.ID, LockoutRequest{StartDate: day("2024-06-03"), EndDate: day("2024-06-03")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLockout(ctx, rm.ID, l.ID))
	assert.ErrorIs(t, svc.DeleteLockout(ctx, rm.ID, l.ID), ErrLockoutNotFound)

	got, err := svc.ActiveLockout(ctx, rm.ID, day("2024-06-03"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
