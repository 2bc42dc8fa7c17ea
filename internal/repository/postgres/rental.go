package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"

	"github.com/lib/pq"
)

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, user_id, car_id, agent_id, start_date, end_date, total_price_cents, guarantee_amount_cents, status, payment_status, request_date, approval_date, completion_date, updated_at`

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	var approval, completion sql.NullTime
	err := row.Scan(&rt.ID, &rt.UserID, &rt.CarID, &rt.AgentID, &rt.StartDate, &rt.EndDate, &rt.TotalPrice, &rt.GuaranteeAmount, &rt.Status, &rt.PaymentStatus, &rt.RequestDate, &approval, &completion, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rt.StartDate = rt.StartDate.UTC()
	rt.EndDate = rt.EndDate.UTC()
	if approval.Valid {
		t := approval.Time
		rt.ApprovalDate = &t
	}
	if completion.Valid {
		t := completion.Time
		rt.CompletionDate = &t
	}
	return rt, nil
}

func activeStatuses() any {
	s := make([]string, len(domain.ActiveRentalStatuses))
	for i, st := range domain.ActiveRentalStatuses {
		s[i] = string(st)
	}
	return pq.Array(s)
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (user_id, car_id, agent_id, start_date, end_date, total_price_cents, guarantee_amount_cents, status, payment_status, request_date, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	now := time.Now().UTC()
	if rt.RequestDate.IsZero() {
		rt.RequestDate = now
	}
	rt.UpdatedAt = now

	logger.DatabaseCall("INSERT", "rentals", "userID", rt.UserID, "carID", rt.CarID)
	err := r.db.QueryRowContext(ctx, query, rt.UserID, rt.CarID, rt.AgentID, rt.StartDate, rt.EndDate, rt.TotalPrice, rt.GuaranteeAmount, rt.Status, rt.PaymentStatus, rt.RequestDate, rt.UpdatedAt).Scan(&rt.ID)
	logger.DatabaseResult("INSERT", 1, err, "rentalID", rt.ID)
	return err
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrRentalNotFound, nil)
	}
	return rt, nil
}

// Update persists the mutable lifecycle fields. Dates and prices are fixed at
// creation and never rewritten.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET status=$1, payment_status=$2, approval_date=$3, completion_date=$4, updated_at=$5 WHERE id=$6`
	rt.UpdatedAt = time.Now().UTC()

	logger.DatabaseCall("UPDATE", "rentals", "rentalID", rt.ID, "status", rt.Status)
	res, err := r.db.ExecContext(ctx, query, rt.Status, rt.PaymentStatus, rt.ApprovalDate, rt.CompletionDate, rt.UpdatedAt, rt.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", rt.ID)
		return err
	}
	n, err := expectAffected(res, domain.ErrRentalNotFound)
	logger.DatabaseResult("UPDATE", n, err, "rentalID", rt.ID)
	return err
}

func (r *rentalRepository) List(ctx context.Context, f domain.RentalFilter) ([]domain.Rental, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != 0 {
		add("user_id = $%d", f.UserID)
	}
	if f.AgentID != 0 {
		add("agent_id = $%d", f.AgentID)
	}
	if f.CarID != 0 {
		add("car_id = $%d", f.CarID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}

	query := `SELECT ` + rentalColumns + ` FROM rentals`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY request_date DESC"
	return r.list(ctx, query, args...)
}

func (r *rentalRepository) ListActiveForCar(ctx context.Context, carID int64, from, to time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE car_id = $1 AND status = ANY($2) AND start_date <= $3 AND end_date >= $4`
	return r.list(ctx, query, carID, activeStatuses(), to, from)
}

func (r *rentalRepository) ListActiveForUser(ctx context.Context, userID int64, from, to time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE user_id = $1 AND status = ANY($2) AND start_date <= $3 AND end_date >= $4`
	return r.list(ctx, query, userID, activeStatuses(), to, from)
}

func (r *rentalRepository) ListApprovedEndedBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND end_date < $2 ORDER BY end_date`
	return r.list(ctx, query, domain.RentalStatusApproved, date)
}

func (r *rentalRepository) ListPendingStartedBefore(ctx context.Context, date time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE status = $1 AND start_date < $2 ORDER BY start_date`
	return r.list(ctx, query, domain.RentalStatusPending, date)
}

func (r *rentalRepository) HasRentalForCar(ctx context.Context, userID, carID int64, statuses []domain.RentalStatus) (bool, error) {
	s := make([]string, len(statuses))
	for i, st := range statuses {
		s[i] = string(st)
	}
	query := `SELECT EXISTS (SELECT 1 FROM rentals WHERE user_id = $1 AND car_id = $2 AND status = ANY($3))`

	logger.DatabaseCall("SELECT", "rentals", "userID", userID, "carID", carID)
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, carID, pq.Array(s)).Scan(&exists)
	logger.DatabaseResult("SELECT", 1, err, "exists", exists)
	return exists, err
}

// Stats aggregates rental counts and completed revenue, platform-wide when
// agentID is nil.
func (r *rentalRepository) Stats(ctx context.Context, agentID *int64) (*domain.RentalStats, error) {
	query := `SELECT
	            COUNT(*),
	            COUNT(*) FILTER (WHERE status = 'pending'),
	            COUNT(*) FILTER (WHERE status = 'approved'),
	            COUNT(*) FILTER (WHERE status = 'completed'),
	            COUNT(*) FILTER (WHERE status = 'cancelled'),
	            COALESCE(SUM(total_price_cents) FILTER (WHERE status = 'completed'), 0)
	          FROM rentals`
	var args []any
	if agentID != nil {
		query += ` WHERE agent_id = $1`
		args = append(args, *agentID)
	}

	logger.DatabaseCall("SELECT", "rentals", "stats", true)
	st := &domain.RentalStats{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&st.Total, &st.Pending, &st.Approved, &st.Completed, &st.Cancelled, &st.TotalRevenue)
	logger.DatabaseResult("SELECT", 1, err)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *rentalRepository) list(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	logger.DatabaseCall("SELECT", "rentals")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	logger.DatabaseResult("SELECT", int64(len(rentals)), rows.Err())
	return rentals, rows.Err()
}
