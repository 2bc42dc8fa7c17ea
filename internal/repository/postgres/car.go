package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"karhubty-backend/internal/domain"
	"karhubty-backend/internal/logger"
	"karhubty-backend/internal/repository"

	"github.com/lib/pq"
)

type carRepository struct {
	db DBTX
}

func NewCarRepository(db DBTX) repository.CarRepository {
	return &carRepository{db: db}
}

const carColumns = `id, agent_id, brand, model, year, color, license_plate, fuel_type, transmission, seats, price_per_day_cents, guarantee_price_cents, category, images, is_available, average_rating, created_at, updated_at`

func scanCar(row rowScanner) (*domain.Car, error) {
	c := &domain.Car{}
	err := row.Scan(&c.ID, &c.AgentID, &c.Brand, &c.Model, &c.Year, &c.Color, &c.LicensePlate, &c.FuelType, &c.Transmission, &c.Seats, &c.PricePerDay, &c.GuaranteePrice, &c.Category, pq.Array(&c.Images), &c.IsAvailable, &c.AverageRating, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	query := `INSERT INTO cars (agent_id, brand, model, year, color, license_plate, fuel_type, transmission, seats, price_per_day_cents, guarantee_price_cents, category, images, is_available, average_rating, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	logger.DatabaseCall("INSERT", "cars", "agentID", c.AgentID, "licensePlate", c.LicensePlate)
	err := r.db.QueryRowContext(ctx, query, c.AgentID, c.Brand, c.Model, c.Year, c.Color, c.LicensePlate, c.FuelType, c.Transmission, c.Seats, c.PricePerDay, c.GuaranteePrice, c.Category, pq.Array(c.Images), c.IsAvailable, c.AverageRating, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	logger.DatabaseResult("INSERT", 1, err, "carID", c.ID)
	return mapError(err, nil, domain.ErrLicensePlateTaken)
}

func (r *carRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	c, err := scanCar(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, domain.ErrCarNotFound, nil)
	}
	return c, nil
}

func (r *carRepository) GetByLicensePlate(ctx context.Context, plate string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE license_plate = $1`
	c, err := scanCar(r.db.QueryRowContext(ctx, query, plate))
	if err != nil {
		return nil, mapError(err, domain.ErrCarNotFound, nil)
	}
	return c, nil
}

func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET brand=$1, model=$2, year=$3, color=$4, fuel_type=$5, transmission=$6, seats=$7, price_per_day_cents=$8, guarantee_price_cents=$9, category=$10, images=$11, updated_at=$12 WHERE id=$13`
	c.UpdatedAt = time.Now().UTC()

	logger.DatabaseCall("UPDATE", "cars", "carID", c.ID)
	res, err := r.db.ExecContext(ctx, query, c.Brand, c.Model, c.Year, c.Color, c.FuelType, c.Transmission, c.Seats, c.PricePerDay, c.GuaranteePrice, c.Category, pq.Array(c.Images), c.UpdatedAt, c.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "carID", c.ID)
		return err
	}
	n, err := expectAffected(res, domain.ErrCarNotFound)
	logger.DatabaseResult("UPDATE", n, err, "carID", c.ID)
	return err
}

func (r *carRepository) Delete(ctx context.Context, id int64) error {
	logger.DatabaseCall("DELETE", "cars", "carID", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "carID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrCarNotFound)
	logger.DatabaseResult("DELETE", n, err, "carID", id)
	return err
}

func (r *carRepository) List(ctx context.Context, f domain.CarFilter) ([]domain.Car, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeUnavailable {
		conds = append(conds, "is_available = TRUE")
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.MinPrice > 0 {
		conds = append(conds, "price_per_day_cents >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conds = append(conds, "price_per_day_cents <= "+arg(f.MaxPrice))
	}
	if f.Transmission != "" {
		conds = append(conds, "transmission = "+arg(f.Transmission))
	}
	if f.FuelType != "" {
		conds = append(conds, "fuel_type = "+arg(f.FuelType))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(brand ILIKE %s OR model ILIKE %s)", p, p))
	}

	query := `SELECT ` + carColumns + ` FROM cars`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	return r.list(ctx, query, args...)
}

func (r *carRepository) ListByAgent(ctx context.Context, agentID int64) ([]domain.Car, error) {
	return r.list(ctx, `SELECT `+carColumns+` FROM cars WHERE agent_id = $1 ORDER BY created_at DESC`, agentID)
}

func (r *carRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Car, error) {
	return r.list(ctx, `SELECT `+carColumns+` FROM cars WHERE is_available = TRUE ORDER BY average_rating DESC, created_at DESC LIMIT $1`, limit)
}

func (r *carRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	query := `UPDATE cars SET is_available=$1, updated_at=$2 WHERE id=$3`
	logger.DatabaseCall("UPDATE", "cars", "carID", id, "available", available)
	res, err := r.db.ExecContext(ctx, query, available, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "carID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrCarNotFound)
	logger.DatabaseResult("UPDATE", n, err, "carID", id)
	return err
}

func (r *carRepository) UpdateRating(ctx context.Context, id int64, rating float64) error {
	query := `UPDATE cars SET average_rating=$1, updated_at=$2 WHERE id=$3`
	logger.DatabaseCall("UPDATE", "cars", "carID", id, "rating", rating)
	res, err := r.db.ExecContext(ctx, query, rating, time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "carID", id)
		return err
	}
	n, err := expectAffected(res, domain.ErrCarNotFound)
	logger.DatabaseResult("UPDATE", n, err, "carID", id)
	return err
}

func (r *carRepository) list(ctx context.Context, query string, args ...any) ([]domain.Car, error) {
	logger.DatabaseCall("SELECT", "cars")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, *c)
	}
	logger.DatabaseResult("SELECT", int64(len(cars)), rows.Err())
	return cars, rows.Err()
}
