package postgres

import (
	"context"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"
)

type statsRepository struct {
	db DBTX
}

func NewStatsRepository(db DBTX) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	query := `SELECT
	            (SELECT count(*) FROM users WHERE role = 'user'),
	            (SELECT count(*) FROM agents),
	            (SELECT count(*) FROM agents WHERE account_status IN ('pending', 'in_verification')),
	            (SELECT count(*) FROM cars),
	            (SELECT count(*) FROM rentals),
	            (SELECT count(*) FROM rentals WHERE status = 'completed'),
	            (SELECT COALESCE(SUM(total_price_cents), 0) FROM rentals WHERE status = 'completed')`

	logger.DatabaseCall("SELECT", "platform_stats")
	st := &domain.PlatformStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(&st.TotalUsers, &st.TotalAgents, &st.PendingAgents, &st.TotalCars, &st.TotalRentals, &st.CompletedRentals, &st.TotalRevenue)
	logger.DatabaseResult("SELECT", 1, err)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// RevenueByAgent reports completed-rental earnings per agent, highest first.
func (r *statsRepository) RevenueByAgent(ctx context.Context) ([]domain.AgentRevenue, error) {
	query := `SELECT a.id, a.agency_name, a.email,
	            (SELECT count(*) FROM cars c WHERE c.agent_id = a.id),
	            count(rt.id),
	            count(rt.id) FILTER (WHERE rt.status = 'completed'),
	            COALESCE(SUM(rt.total_price_cents) FILTER (WHERE rt.status = 'completed'), 0) AS earnings
	          FROM agents a
	          LEFT JOIN rentals rt ON rt.agent_id = a.id
	          GROUP BY a.id, a.agency_name, a.email
	          ORDER BY earnings DESC, a.id`

	logger.DatabaseCall("SELECT", "agent_revenue")
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.AgentRevenue
	for rows.Next() {
		var ar domain.AgentRevenue
		if err := rows.Scan(&ar.AgentID, &ar.AgencyName, &ar.Email, &ar.TotalCars, &ar.TotalRentals, &ar.CompletedRentals, &ar.TotalEarnings); err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	logger.DatabaseResult("SELECT", int64(len(out)), rows.Err())
	return out, rows.Err()
}

func (r *statsRepository) CarEarningsByAgent(ctx context.Context, agentID int64, limit int) ([]domain.CarEarnings, error) {
	query := `SELECT c.id, c.brand, c.model, count(rt.id),
	            COALESCE(SUM(rt.total_price_cents) FILTER (WHERE rt.status = 'completed'), 0) AS revenue
	          FROM cars c
	          LEFT JOIN rentals rt ON rt.car_id = c.id
	          WHERE c.agent_id = $1
	          GROUP BY c.id, c.brand, c.model
	          ORDER BY revenue DESC, c.id
	          LIMIT $2`

	logger.DatabaseCall("SELECT", "car_earnings", "agentID", agentID)
	rows, err := r.db.QueryContext(ctx, query, agentID, limit)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.CarEarnings
	for rows.Next() {
		var ce domain.CarEarnings
		if err := rows.Scan(&ce.CarID, &ce.Brand, &ce.Model, &ce.RentalCount, &ce.TotalRevenue); err != nil {
			return nil, err
		}
		out = append(out, ce)
	}
	logger.DatabaseResult("SELECT", int64(len(out)), rows.Err())
	return out, rows.Err()
}
