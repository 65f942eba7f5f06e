package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nekogravitycat/studio-booking-backend/internal/engineer"
	"github.com/nekogravitycat/studio-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/studio-booking-backend/internal/room"
)

// memStore implements Repository and Tx in memory. WithTx holds a single
// mutex for the whole transaction and restores a snapshot on error.
type memStore struct {
	mu         sync.Mutex
	bookings   map[string]*Booking
	extensions []*SessionExtension
	payments   []*PaymentSplit
	seq        int

	// updateErr, when set, fails every Update inside a transaction.
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]*Booking{}}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func copyBooking(b *Booking) *Booking {
	cp := *b
	return &cp
}

// put inserts a booking directly, bypassing every check.
func (m *memStore) put(b *Booking) *Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = m.nextID("bk")
	}
	if b.Version == 0 {
		b.Version = 1
	}
	m.bookings[b.ID] = copyBooking(b)
	return copyBooking(b)
}

func (m *memStore) get(id string) *Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil
	}
	return copyBooking(b)
}

func (m *memStore) extensionsFor(id string) []*SessionExtension {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*SessionExtension
	for _, e := range m.extensions {
		if e.BookingID == id {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) active(match func(*Booking) bool, date time.Time) []*Booking {
	var out []*Booking
	for _, b := range m.bookings {
		if b.Status.Terminal() || !clock.SameDate(b.Date, date) || !match(b) {
			continue
		}
		out = append(out, copyBooking(b))
	}
	return out
}

func (m *memStore) activeForRoom(roomID string, date time.Time) []*Booking {
	return m.active(func(b *Booking) bool { return b.RoomID == roomID }, date)
}

func (m *memStore) activeForEngineer(engineerID string, date time.Time) []*Booking {
	return m.active(func(b *Booking) bool { return b.EngineerID != nil && *b.EngineerID == engineerID }, date)
}

func (m *memStore) sumPayments(bookingID string) float64 {
	var total float64
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			total += p.Amount
		}
	}
	return total
}

func (m *memStore) ActiveForRoom(ctx context.Context, roomID string, date time.Time) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeForRoom(roomID, date), nil
}

func (m *memStore) ActiveForEngineer(ctx context.Context, engineerID string, date time.Time) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeForEngineer(engineerID, date), nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	b := m.get(id)
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

func (m *memStore) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, copyBooking(b))
	}
	return out, len(out), nil
}

func (m *memStore) ListPayments(ctx context.Context, bookingID string) ([]*PaymentSplit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*PaymentSplit
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) ListExtensions(ctx context.Context, bookingID string) ([]*SessionExtension, error) {
	return m.extensionsFor(bookingID), nil
}

func (m *memStore) SumPayments(ctx context.Context, bookingID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumPayments(bookingID), nil
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bookings := make(map[string]*Booking, len(m.bookings))
	for id, b := range m.bookings {
		bookings[id] = copyBooking(b)
	}
	extensions := append([]*SessionExtension(nil), m.extensions...)
	payments := append([]*PaymentSplit(nil), m.payments...)

	if err := fn(&memTx{m: m}); err != nil {
		m.bookings = bookings
		m.extensions = extensions
		m.payments = payments
		return err
	}
	return nil
}

// memTx runs with memStore.mu already held.
type memTx struct {
	m *memStore
}

func (t *memTx) ActiveForRoom(ctx context.Context, roomID string, date time.Time) ([]*Booking, error) {
	return t.m.activeForRoom(roomID, date), nil
}

func (t *memTx) ActiveForEngineer(ctx context.Context, engineerID string, date time.Time) ([]*Booking, error) {
	return t.m.activeForEngineer(engineerID, date), nil
}

func (t *memTx) LockBooking(ctx context.Context, id string) (*Booking, error) {
	b, ok := t.m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

func (t *memTx) LockRoomDay(ctx context.Context, roomID string, date time.Time) error {
	return nil
}

func (t *memTx) LockEngineerDay(ctx context.Context, engineerID string, date time.Time) error {
	return nil
}

func (t *memTx) Create(ctx context.Context, b *Booking) error {
	b.ID = t.m.nextID("bk")
	b.Version = 1
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	t.m.bookings[b.ID] = copyBooking(b)
	return nil
}

func (t *memTx) Update(ctx context.Context, b *Booking) error {
	if t.m.updateErr != nil {
		return t.m.updateErr
	}
	stored, ok := t.m.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != b.Version {
		return ErrConcurrentModification
	}
	b.Version++
	b.UpdatedAt = time.Now()
	t.m.bookings[b.ID] = copyBooking(b)
	return nil
}

func (t *memTx) CreateExtension(ctx context.Context, e *SessionExtension) error {
	e.ID = t.m.nextID("ext")
	e.CreatedAt = time.Now()
	t.m.extensions = append(t.m.extensions, e)
	return nil
}

func (t *memTx) CreatePayment(ctx context.Context, p *PaymentSplit) error {
	p.ID = t.m.nextID("pay")
	p.CreatedAt = time.Now()
	t.m.payments = append(t.m.payments, p)
	return nil
}

func (t *memTx) SumPayments(ctx context.Context, bookingID string) (float64, error) {
	return t.m.sumPayments(bookingID), nil
}

type fakeRooms struct {
	rooms    map[string]*room.Room
	lockouts []*room.Lockout
}

func (f *fakeRooms) GetByID(ctx context.Context, id string) (*room.Room, error) {
	rm, ok := f.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	cp := *rm
	return &cp, nil
}

func (f *fakeRooms) ActiveLockout(ctx context.Context, roomID string, date time.Time) (*room.Lockout, error) {
	for _, l := range f.lockouts {
		if l.RoomID == roomID && l.Covers(date) {
			return l, nil
		}
	}
	return nil, nil
}

type fakeEngineers struct {
	engineers    map[string]*engineer.Engineer
	assignments  map[string][]engineer.Assignment
	availability map[string]*engineer.Availability
}

func availabilityKey(engineerID string, date time.Time) string {
	return engineerID + "|" + clock.FormatDate(date)
}

func (f *fakeEngineers) GetByID(ctx context.Context, id string) (*engineer.Engineer, error) {
	e, ok := f.engineers[id]
	if !ok {
		return nil, engineer.ErrNotFound
	}
	return e, nil
}

func (f *fakeEngineers) FindByName(ctx context.Context, name string) (*engineer.Engineer, error) {
	var found []*engineer.Engineer
	for _, e := range f.engineers {
		if e.IsActive && strings.EqualFold(e.Name, name) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return nil, engineer.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, engineer.ErrAmbiguousName
	}
}

func (f *fakeEngineers) IsAssigned(ctx context.Context, engineerID, roomID string) (bool, error) {
	for _, a := range f.assignments[engineerID] {
		if a.RoomID == roomID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEngineers) AssignedRooms(ctx context.Context, engineerID string) ([]engineer.Assignment, error) {
	return f.assignments[engineerID], nil
}

func (f *fakeEngineers) GetAvailability(ctx context.Context, engineerID string, date time.Time) (*engineer.Availability, error) {
	return f.availability[availabilityKey(engineerID, date)], nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := v.(Event); !ok {
		return errors.New("unexpected event payload")
	}
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, k := range p.keys {
		if k == key {
			n++
		}
	}
	return n
}
