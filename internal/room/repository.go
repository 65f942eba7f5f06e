package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/studio-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	Update(ctx context.Context, r *Room) error
	Delete(ctx context.Context, id string) error

	CreateLockout(ctx context.Context, l *Lockout) error
	ListLockouts(ctx context.Context, roomID string) ([]*Lockout, error)
	DeleteLockout(ctx context.Context, roomID, lockoutID string) error
	// LockoutOn returns the first lockout covering date, or nil.
	LockoutOn(ctx context.Context, roomID string, date time.Time) (*Lockout, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const roomColumns = `id, name, status, base_rate, rate_with_engineer, rate_without_engineer, created_at, updated_at`

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var r Room
	dest := []any{
		&r.ID, &r.Name, &r.Status, &r.BaseRate, &r.RateWithEngineer,
		&r.RateWithoutEngineer, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *pgxRepository) Create(ctx context.Context, rm *Room) error {
	const query = `
		INSERT INTO public.rooms (name, status, base_rate, rate_with_engineer, rate_without_engineer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		rm.Name, rm.Status, rm.BaseRate, rm.RateWithEngineer, rm.RateWithoutEngineer,
	).Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query := `SELECT ` + roomColumns + ` FROM public.rooms WHERE id = $1`

	rm, err := scanRoom(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return rm, nil
}

var roomSortColumns = map[string]string{
	"name":       "name",
	"status":     "status",
	"created_at": "created_at",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(roomColumns, "count(*) OVER() AS total_count").From("public.rooms")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	orderBy, ok := roomSortColumns[filter.SortBy]
	if !ok {
		orderBy = "name"
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var result []*Room
	var total int
	for rows.Next() {
		rm, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		result = append(result, rm)
	}

	return result, total, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, rm *Room) error {
	const query = `
		UPDATE public.rooms
		SET name = $1, status = $2, base_rate = $3, rate_with_engineer = $4,
		    rate_without_engineer = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		rm.Name, rm.Status, rm.BaseRate, rm.RateWithEngineer, rm.RateWithoutEngineer, rm.ID,
	).Scan(&rm.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return ErrNameTaken
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM public.rooms WHERE id = $1`
	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrRoomInUse
		}
		return fmt.Errorf("delete room failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const lockoutColumns = `id, room_id, start_date, end_date, reason, created_by, created_at`

func scanLockout(row pgx.Row) (*Lockout, error) {
	var l Lockout
	if err := row.Scan(&l.ID, &l.RoomID, &l.StartDate, &l.EndDate, &l.Reason, &l.CreatedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *pgxRepository) CreateLockout(ctx context.Context, l *Lockout) error {
	const query = `
		INSERT INTO public.room_lockouts (room_id, start_date, end_date, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, l.RoomID, l.StartDate, l.EndDate, l.Reason, l.CreatedBy).
		Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("create lockout failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListLockouts(ctx context.Context, roomID string) ([]*Lockout, error) {
	query := `SELECT ` + lockoutColumns + ` FROM public.room_lockouts WHERE room_id = $1 ORDER BY start_date`

	rows, err := r.pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("list lockouts failed: %w", err)
	}
	defer rows.Close()

	var result []*Lockout
	for rows.Next() {
		l, err := scanLockout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lockout failed: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (r *pgxRepository) DeleteLockout(ctx context.Context, roomID, lockoutID string) error {
	const query = `DELETE FROM public.room_lockouts WHERE id = $1 AND room_id = $2`
	ct, err := r.pool.Exec(ctx, query, lockoutID, roomID)
	if err != nil {
		return fmt.Errorf("delete lockout failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrLockoutNotFound
	}
	return nil
}

func (r *pgxRepository) LockoutOn(ctx context.Context, roomID string, date time.Time) (*Lockout, error) {
	query := `SELECT ` + lockoutColumns + `
		FROM public.room_lockouts
		WHERE room_id = $1 AND start_date <= $2::date AND end_date >= $2::date
		ORDER BY start_date
		LIMIT 1`

	l, err := scanLockout(r.pool.QueryRow(ctx, query, roomID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lockout lookup failed: %w", err)
	}
	return l, nil
}
