package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/studio-booking-backend/internal/db"
)

type Repository interface {
	BookingReader

	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListPayments(ctx context.Context, bookingID string) ([]*PaymentSplit, error)
	ListExtensions(ctx context.Context, bookingID string) ([]*SessionExtension, error)
	SumPayments(ctx context.Context, bookingID string) (float64, error)

	// WithTx runs fn in a single read-committed transaction.
	// Any error returned by fn rolls back every write made through tx.
	// Deadlocks and serialization failures surface as ErrConcurrentModification.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write side of the store. Mutations lock before they check.
type Tx interface {
	BookingReader

	// LockBooking loads a booking and holds its row lock until commit.
	LockBooking(ctx context.Context, id string) (*Booking, error)
	// LockRoomDay and LockEngineerDay serialize writers competing for the
	// same resource on the same date, including inserts of new rows.
	LockRoomDay(ctx context.Context, roomID string, date time.Time) error
	LockEngineerDay(ctx context.Context, engineerID string, date time.Time) error

	Create(ctx context.Context, b *Booking) error
	// Update writes b if its Version is still current and bumps it.
	Update(ctx context.Context, b *Booking) error
	CreateExtension(ctx context.Context, e *SessionExtension) error
	CreatePayment(ctx context.Context, p *PaymentSplit) error
	SumPayments(ctx context.Context, bookingID string) (float64, error)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"b.id", "b.client_name", "b.client_email", "b.client_phone", "b.notes", "b.date",
	"b.room_id", "r.name", "b.original_room_id", "b.room_swapped_at",
	"b.start_time", "b.end_time",
	"b.engineer_id", "b.engineer_name", "b.original_engineer_id", "b.original_engineer_name", "b.engineer_swapped_at",
	"b.status", "b.discount_percent", "b.price_override",
	"b.created_by", "b.version", "b.created_at", "b.updated_at",
}

func selectBookings() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(bookingColumns...).
		From("public.bookings b").
		Join("public.rooms r ON r.id = b.room_id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.ClientName, &b.ClientEmail, &b.ClientPhone, &b.Notes, &b.Date,
		&b.RoomID, &b.RoomName, &b.OriginalRoomID, &b.RoomSwappedAt,
		&b.StartTime, &b.EndTime,
		&b.EngineerID, &b.EngineerName, &b.OriginalEngineerID, &b.OriginalEngineerName, &b.EngineerSwappedAt,
		&b.Status, &b.DiscountPercent, &b.PriceOverride,
		&b.CreatedBy, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func getBooking(ctx context.Context, q querier, id string, forUpdate bool) (*Booking, error) {
	sb := selectBookings().Where(squirrel.Eq{"b.id": id})
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE OF b")
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func listActive(ctx context.Context, q querier, column, id string, date time.Time) ([]*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b." + column: id}).
		Where("b.date = ?::date", date).
		Where(squirrel.NotEq{"b.status": []Status{StatusCancelled, StatusCompleted}}).
		OrderBy("b.start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active bookings query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func sumPayments(ctx context.Context, q querier, bookingID string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM public.payment_splits WHERE booking_id = $1`

	var total float64
	if err := q.QueryRow(ctx, query, bookingID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum payments failed: %w", err)
	}
	return total, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getBooking(ctx, r.pool, id, false)
}

func (r *pgxRepository) ActiveForRoom(ctx context.Context, roomID string, date time.Time) ([]*Booking, error) {
	return listActive(ctx, r.pool, "room_id", roomID, date)
}

func (r *pgxRepository) ActiveForEngineer(ctx context.Context, engineerID string, date time.Time) ([]*Booking, error) {
	return listActive(ctx, r.pool, "engineer_id", engineerID, date)
}

func (r *pgxRepository) SumPayments(ctx context.Context, bookingID string) (float64, error) {
	return sumPayments(ctx, r.pool, bookingID)
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	sb := selectBookings().Column("count(*) OVER() AS total_count")

	if filter.Date != nil {
		sb = sb.Where("b.date = ?::date", *filter.Date)
	}
	if filter.RoomID != "" {
		sb = sb.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.EngineerID != "" {
		sb = sb.Where(squirrel.Eq{"b.engineer_id": filter.EngineerID})
	}
	if filter.Status != "" {
		sb = sb.Where(squirrel.Eq{"b.status": filter.Status})
	}

	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	sb = sb.OrderBy("b.date "+orderDir, "b.start_time "+orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	sb = sb.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	return result, total, rows.Err()
}

func (r *pgxRepository) ListPayments(ctx context.Context, bookingID string) ([]*PaymentSplit, error) {
	const query = `
		SELECT id, booking_id, method, amount, reference, notes, recorded_by, recorded_by_name, created_at
		FROM public.payment_splits
		WHERE booking_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments failed: %w", err)
	}
	defer rows.Close()

	var result []*PaymentSplit
	for rows.Next() {
		var p PaymentSplit
		if err := rows.Scan(
			&p.ID, &p.BookingID, &p.Method, &p.Amount, &p.Reference, &p.Notes,
			&p.RecordedBy, &p.RecordedByName, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment failed: %w", err)
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

func (r *pgxRepository) ListExtensions(ctx context.Context, bookingID string) ([]*SessionExtension, error) {
	const query = `
		SELECT id, booking_id, original_end_time, new_end_time, additional_hours, additional_cost, created_by, created_at
		FROM public.session_extensions
		WHERE booking_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list extensions failed: %w", err)
	}
	defer rows.Close()

	var result []*SessionExtension
	for rows.Next() {
		var e SessionExtension
		if err := rows.Scan(
			&e.ID, &e.BookingID, &e.OriginalEndTime, &e.NewEndTime,
			&e.AdditionalHours, &e.AdditionalCost, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan extension failed: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

func (r *pgxRepository) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return mapTxError(db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxTx{tx: tx})
	}))
}

// mapTxError reports deadlocks and serialization failures as a concurrent
// modification so callers get a retryable 409 instead of a 500.
func mapTxError(err error) error {
	if err != nil && db.IsRetryable(err) {
		return ErrConcurrentModification
	}
	return err
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) LockBooking(ctx context.Context, id string) (*Booking, error) {
	return getBooking(ctx, t.tx, id, true)
}

// advisoryLock takes a transaction-scoped lock released at commit or rollback.
func (t *pgxTx) advisoryLock(ctx context.Context, key string) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("advisory lock %q failed: %w", key, err)
	}
	return nil
}

func (t *pgxTx) LockRoomDay(ctx context.Context, roomID string, date time.Time) error {
	return t.advisoryLock(ctx, "room:"+roomID+":"+date.Format(time.DateOnly))
}

func (t *pgxTx) LockEngineerDay(ctx context.Context, engineerID string, date time.Time) error {
	return t.advisoryLock(ctx, "engineer:"+engineerID+":"+date.Format(time.DateOnly))
}

func (t *pgxTx) ActiveForRoom(ctx context.Context, roomID string, date time.Time) ([]*Booking, error) {
	return listActive(ctx, t.tx, "room_id", roomID, date)
}

func (t *pgxTx) ActiveForEngineer(ctx context.Context, engineerID string, date time.Time) ([]*Booking, error) {
	return listActive(ctx, t.tx, "engineer_id", engineerID, date)
}

func (t *pgxTx) SumPayments(ctx context.Context, bookingID string) (float64, error) {
	return sumPayments(ctx, t.tx, bookingID)
}

func (t *pgxTx) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"client_name", "client_email", "client_phone", "notes", "date", "room_id",
			"start_time", "end_time", "engineer_id", "engineer_name",
			"status", "discount_percent", "price_override", "created_by",
		).
		Values(
			b.ClientName, b.ClientEmail, b.ClientPhone, b.Notes, b.Date, b.RoomID,
			b.StartTime, b.EndTime, b.EngineerID, b.EngineerName,
			b.Status, b.DiscountPercent, b.PriceOverride, b.CreatedBy,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (t *pgxTx) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		SetMap(map[string]any{
			"client_name":            b.ClientName,
			"client_email":           b.ClientEmail,
			"client_phone":           b.ClientPhone,
			"notes":                  b.Notes,
			"room_id":                b.RoomID,
			"original_room_id":       b.OriginalRoomID,
			"room_swapped_at":        b.RoomSwappedAt,
			"start_time":             b.StartTime,
			"end_time":               b.EndTime,
			"engineer_id":            b.EngineerID,
			"engineer_name":          b.EngineerName,
			"original_engineer_id":   b.OriginalEngineerID,
			"original_engineer_name": b.OriginalEngineerName,
			"engineer_swapped_at":    b.EngineerSwappedAt,
			"status":                 b.Status,
			"discount_percent":       b.DiscountPercent,
			"price_override":         b.PriceOverride,
			"version":                squirrel.Expr("version + 1"),
			"updated_at":             squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": b.ID, "version": b.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&b.Version, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (t *pgxTx) CreateExtension(ctx context.Context, e *SessionExtension) error {
	const query = `
		INSERT INTO public.session_extensions
			(booking_id, original_end_time, new_end_time, additional_hours, additional_cost, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		e.BookingID, e.OriginalEndTime, e.NewEndTime, e.AdditionalHours, e.AdditionalCost, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create extension failed: %w", err)
	}
	return nil
}

func (t *pgxTx) CreatePayment(ctx context.Context, p *PaymentSplit) error {
	const query = `
		INSERT INTO public.payment_splits
			(booking_id, method, amount, reference, notes, recorded_by, recorded_by_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		p.BookingID, p.Method, p.Amount, p.Reference, p.Notes, p.RecordedBy, p.RecordedByName,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if db.IsCheckViolation(err) {
			return ErrInvalidAmount
		}
		return fmt.Errorf("create payment failed: %w", err)
	}
	return nil
}
