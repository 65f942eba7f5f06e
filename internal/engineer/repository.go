package engineer

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
	GetByID(ctx context.Context, id string) (*Engineer, error)
	FindByName(ctx context.Context, name string) ([]*Engineer, error)
	List(ctx context.Context, filter Filter) ([]*Engineer, int, error)

	ListAssignments(ctx context.Context, engineerID string) ([]Assignment, error)
	IsAssigned(ctx context.Context, engineerID, roomID string) (bool, error)
	Assign(ctx context.Context, a *Assignment) error
	Unassign(ctx context.Context, engineerID, roomID string) error

	GetAvailability(ctx context.Context, engineerID string, date time.Time) (*Availability, error)
	UpsertAvailability(ctx context.Context, a *Availability) error
	ListAvailability(ctx context.Context, engineerID string, from, to time.Time) ([]*Availability, error)

	UpsertRate(ctx context.Context, r *Rate) error
	ListRates(ctx context.Context, engineerID string) ([]*Rate, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

const engineerColumns = `u.id, u.display_name, u.email, u.is_active`

func scanEngineer(row pgx.Row, extra ...any) (*Engineer, error) {
	var e Engineer
	dest := []any{&e.ID, &e.Name, &e.Email, &e.IsActive}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Engineer, error) {
	query := `SELECT ` + engineerColumns + ` FROM public.users u WHERE u.id = $1 AND u.role = 'engineer'`

	e, err := scanEngineer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get engineer failed: %w", err)
	}
	return e, nil
}

func (r *pgxRepository) FindByName(ctx context.Context, name string) ([]*Engineer, error) {
	query := `SELECT ` + engineerColumns + `
		FROM public.users u
		WHERE u.role = 'engineer' AND u.is_active AND lower(u.display_name) = lower($1)`

	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("find engineer by name failed: %w", err)
	}
	defer rows.Close()

	var result []*Engineer
	for rows.Next() {
		e, err := scanEngineer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan engineer failed: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Engineer, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(engineerColumns, "count(*) OVER() AS total_count").
		From("public.users u").
		Where(squirrel.Eq{"u.role": "engineer", "u.is_active": true})

	if filter.RoomID != "" {
		query = query.Join("public.engineer_rooms er ON er.engineer_id = u.id").
			Where(squirrel.Eq{"er.room_id": filter.RoomID})
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"u.display_name": "%" + filter.Name + "%"})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.OrderBy("u.display_name ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list engineers query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list engineers failed: %w", err)
	}
	defer rows.Close()

	var result []*Engineer
	var total int
	for rows.Next() {
		e, err := scanEngineer(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan engineer failed: %w", err)
		}
		result = append(result, e)
	}
	return result, total, rows.Err()
}

func (r *pgxRepository) ListAssignments(ctx context.Context, engineerID string) ([]Assignment, error) {
	const query = `
		SELECT er.engineer_id, er.room_id, r.name, er.is_primary, er.created_at
		FROM public.engineer_rooms er
		JOIN public.rooms r ON r.id = er.room_id
		WHERE er.engineer_id = $1
		ORDER BY er.is_primary DESC, r.name
	`
	rows, err := r.pool.Query(ctx, query, engineerID)
	if err != nil {
		return nil, fmt.Errorf("list assignments failed: %w", err)
	}
	defer rows.Close()

	var result []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.EngineerID, &a.RoomID, &a.RoomName, &a.IsPrimary, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment failed: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *pgxRepository) IsAssigned(ctx context.Context, engineerID, roomID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM public.engineer_rooms WHERE engineer_id = $1 AND room_id = $2)`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, engineerID, roomID).Scan(&ok); err != nil {
		return false, fmt.Errorf("assignment lookup failed: %w", err)
	}
	return ok, nil
}

func (r *pgxRepository) Assign(ctx context.Context, a *Assignment) error {
	const query = `
		INSERT INTO public.engineer_rooms (engineer_id, room_id, is_primary)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, a.EngineerID, a.RoomID, a.IsPrimary).Scan(&a.CreatedAt)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return ErrAlreadyAssigned
		case db.IsForeignKeyViolation(err):
			return ErrRoomNotFound
		}
		return fmt.Errorf("assign engineer failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Unassign(ctx context.Context, engineerID, roomID string) error {
	const query = `DELETE FROM public.engineer_rooms WHERE engineer_id = $1 AND room_id = $2`
	ct, err := r.pool.Exec(ctx, query, engineerID, roomID)
	if err != nil {
		return fmt.Errorf("unassign engineer failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

const availabilityColumns = `id, engineer_id, date, status, reason, updated_at`

func scanAvailability(row pgx.Row) (*Availability, error) {
	var a Availability
	if err := row.Scan(&a.ID, &a.EngineerID, &a.Date, &a.Status, &a.Reason, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *pgxRepository) GetAvailability(ctx context.Context, engineerID string, date time.Time) (*Availability, error) {
	query := `SELECT ` + availabilityColumns + `
		FROM public.engineer_availability
		WHERE engineer_id = $1 AND date = $2::date`

	a, err := scanAvailability(r.pool.QueryRow(ctx, query, engineerID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability failed: %w", err)
	}
	return a, nil
}

// UpsertAvailability relies on UNIQUE (engineer_id, date) so repeated writes
// for the same day replace the previous record.
func (r *pgxRepository) UpsertAvailability(ctx context.Context, a *Availability) error {
	const query = `
		INSERT INTO public.engineer_availability (engineer_id, date, status, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (engineer_id, date)
		DO UPDATE SET status = EXCLUDED.status, reason = EXCLUDED.reason, updated_at = now()
		RETURNING id, updated_at
	`
	err := r.pool.QueryRow(ctx, query, a.EngineerID, a.Date, a.Status, a.Reason).Scan(&a.ID, &a.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("upsert availability failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListAvailability(ctx context.Context, engineerID string, from, to time.Time) ([]*Availability, error) {
	query := `SELECT ` + availabilityColumns + `
		FROM public.engineer_availability
		WHERE engineer_id = $1 AND date BETWEEN $2::date AND $3::date
		ORDER BY date`

	rows, err := r.pool.Query(ctx, query, engineerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list availability failed: %w", err)
	}
	defer rows.Close()

	var result []*Availability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability failed: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *pgxRepository) UpsertRate(ctx context.Context, rt *Rate) error {
	const query = `
		INSERT INTO public.engineer_rates (engineer_id, room_id, hourly_rate, min_rate, max_rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (engineer_id, room_id)
		DO UPDATE SET hourly_rate = EXCLUDED.hourly_rate, min_rate = EXCLUDED.min_rate,
		              max_rate = EXCLUDED.max_rate, updated_at = now()
		RETURNING updated_at
	`
	err := r.pool.QueryRow(ctx, query, rt.EngineerID, rt.RoomID, rt.HourlyRate, rt.MinRate, rt.MaxRate).
		Scan(&rt.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("upsert rate failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) ListRates(ctx context.Context, engineerID string) ([]*Rate, error) {
	const query = `
		SELECT engineer_id, room_id, hourly_rate, min_rate, max_rate, updated_at
		FROM public.engineer_rates
		WHERE engineer_id = $1
	`
	rows, err := r.pool.Query(ctx, query, engineerID)
	if err != nil {
		return nil, fmt.Errorf("list rates failed: %w", err)
	}
	defer rows.Close()

	var result []*Rate
	for rows.Next() {
		var rt Rate
		if err := rows.Scan(&rt.EngineerID, &rt.RoomID, &rt.HourlyRate, &rt.MinRate, &rt.MaxRate, &rt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rate failed: %w", err)
		}
		result = append(result, &rt)
	}
	return result, rows.Err()
}
